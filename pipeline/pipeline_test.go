package pipeline

import (
	"errors"
	"testing"
)

func boolPtr(b bool) *bool { return &b }

func TestNextFollowsFixedChain(t *testing.T) {
	cases := []struct {
		area string
		next string
	}{
		{area: AreaExtrusion, next: EstadoEnCorte},
		{area: AreaCorte, next: EstadoEnLaminado},
		{area: AreaLaminado, next: EstadoEnSellado},
		{area: AreaSellado, next: EstadoEnImpresion},
	}
	for _, tc := range cases {
		got, err := Next(tc.area, nil)
		if err != nil {
			t.Fatalf("Next(%s): %v", tc.area, err)
		}
		if got != tc.next {
			t.Fatalf("Next(%s) expected %s got %s", tc.area, tc.next, got)
		}
	}
}

func TestNextImpresionRequiresExplicitDecision(t *testing.T) {
	if _, err := Next(AreaImpresion, nil); !errors.Is(err, ErrDerivarCalidadRequired) {
		t.Fatalf("expected ErrDerivarCalidadRequired, got %v", err)
	}

	got, err := Next(AreaImpresion, boolPtr(true))
	if err != nil {
		t.Fatalf("Next(impresion, true): %v", err)
	}
	if got != EstadoControlCalidad {
		t.Fatalf("expected %s got %s", EstadoControlCalidad, got)
	}

	got, err = Next(AreaImpresion, boolPtr(false))
	if err != nil {
		t.Fatalf("Next(impresion, false): %v", err)
	}
	if got != EstadoCompletada {
		t.Fatalf("expected %s got %s", EstadoCompletada, got)
	}
}

func TestNextUnknownArea(t *testing.T) {
	if _, err := Next("pintura", nil); !errors.Is(err, ErrUnknownArea) {
		t.Fatalf("expected ErrUnknownArea, got %v", err)
	}
}

func TestExpectedArea(t *testing.T) {
	cases := []struct {
		estado string
		area   string
		ok     bool
	}{
		{estado: EstadoCreada, area: AreaExtrusion, ok: true},
		{estado: EstadoEnExtrusion, area: AreaExtrusion, ok: true},
		{estado: EstadoEnCorte, area: AreaCorte, ok: true},
		{estado: EstadoEnLaminado, area: AreaLaminado, ok: true},
		{estado: EstadoEnSellado, area: AreaSellado, ok: true},
		{estado: EstadoEnImpresion, area: AreaImpresion, ok: true},
		{estado: EstadoControlCalidad, ok: false},
		{estado: EstadoCompletada, ok: false},
	}
	for _, tc := range cases {
		area, ok := ExpectedArea(tc.estado)
		if ok != tc.ok || area != tc.area {
			t.Fatalf("ExpectedArea(%s) = (%q, %v), expected (%q, %v)", tc.estado, area, ok, tc.area, tc.ok)
		}
	}
}

func TestRoleForArea(t *testing.T) {
	for _, area := range Areas() {
		role, err := RoleForArea(area)
		if err != nil {
			t.Fatalf("RoleForArea(%s): %v", area, err)
		}
		if role != "operario_"+area {
			t.Fatalf("RoleForArea(%s) = %s", area, role)
		}
	}
	if _, err := RoleForArea("bodega"); err == nil {
		t.Fatal("expected error for unknown area")
	}
}

func TestValidateParametros(t *testing.T) {
	cases := []struct {
		name   string
		area   string
		params Parametros
		ok     bool
	}{
		{
			name: "extrusion complete",
			area: AreaExtrusion,
			params: Parametros{
				"temperatura": 180.0,
				"presion":     2.4,
				"velocidad":   55.0,
			},
			ok: true,
		},
		{
			name:   "extrusion missing presion",
			area:   AreaExtrusion,
			params: Parametros{"temperatura": 180.0, "velocidad": 55.0},
			ok:     false,
		},
		{
			name:   "corte requires machine config",
			area:   AreaCorte,
			params: Parametros{"velocidad": 30.0, "configuracionMaquina": "cuchilla-7"},
			ok:     true,
		},
		{
			name:   "laminado requires adhesive",
			area:   AreaLaminado,
			params: Parametros{"temperatura": 120.0, "tipoAdhesivo": ""},
			ok:     false,
		},
		{
			name:   "sellado complete",
			area:   AreaSellado,
			params: Parametros{"temperatura": 150.0, "presion": 3.1},
			ok:     true,
		},
		{
			name:   "impresion requires ink type",
			area:   AreaImpresion,
			params: Parametros{"velocidad": 40.0},
			ok:     false,
		},
		{
			name:   "impresion complete with extras",
			area:   AreaImpresion,
			params: Parametros{"velocidad": 40.0, "tipoTinta": "flexo-azul", "numeroColores": 3.0},
			ok:     true,
		},
		{
			name:   "numeric field rejects text",
			area:   AreaSellado,
			params: Parametros{"temperatura": "caliente", "presion": 3.0},
			ok:     false,
		},
		{
			name:   "negative numeric rejected",
			area:   AreaSellado,
			params: Parametros{"temperatura": -1.0, "presion": 3.0},
			ok:     false,
		},
	}

	for _, tc := range cases {
		err := ValidateParametros(tc.area, tc.params)
		if tc.ok && err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.name, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
	}
}
