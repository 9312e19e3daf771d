package rbac

import (
	"net/http"
	"testing"

	"fichaflow/infrastructure/cache"
)

func TestMatchPathWildcardSegments(t *testing.T) {
	cases := []struct {
		pattern string
		path    string
		ok      bool
	}{
		{pattern: "/api/fichas/*/avance/extrusion", path: "/api/fichas/1/avance/extrusion", ok: true},
		{pattern: "/api/fichas/*/avance/extrusion", path: "/api/fichas/1/avance/corte", ok: false},
		{pattern: "/api/fichas/*/inspeccion-calidad", path: "/api/fichas/12/inspeccion-calidad", ok: true},
		{pattern: "/api/pedidos/*/estado", path: "/api/pedidos/3/estado", ok: true},
		{pattern: "/api/pedidos", path: "/api/pedidos", ok: true},
		{pattern: "/api/pedidos", path: "/api/pedidos/3", ok: false},
		{pattern: "/api/reportes/*", path: "/api/reportes/avances.csv", ok: true},
	}

	for _, tc := range cases {
		if got := matchPath(tc.pattern, tc.path); got != tc.ok {
			t.Fatalf("pattern=%s path=%s expected=%v got=%v", tc.pattern, tc.path, tc.ok, got)
		}
	}
}

func TestAllowedHonorsRoleSeparation(t *testing.T) {
	c := cache.NewRbacRolesCache()
	r := New(c)

	r.Add(RoleJefeProduccion, "FICHAS_CREATE", http.MethodPost, "/api/fichas")
	r.Add(RoleOperarioCorte, "FICHAS_AVANCE_CORTE", http.MethodPut, "/api/fichas/*/avance/corte")

	if !r.Allowed(RoleJefeProduccion, "/api/fichas", http.MethodPost) {
		t.Fatal("jefe should create fichas")
	}
	if r.Allowed(RoleOperarioCorte, "/api/fichas", http.MethodPost) {
		t.Fatal("operario must not create fichas")
	}
	if !r.Allowed(RoleOperarioCorte, "/api/fichas/7/avance/corte", http.MethodPut) {
		t.Fatal("corte operator should record corte advances")
	}
	if r.Allowed(RoleOperarioCorte, "/api/fichas/7/avance/sellado", http.MethodPut) {
		t.Fatal("corte operator must not record sellado advances")
	}
}
