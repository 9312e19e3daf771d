// Package pipeline owns the ficha técnica state machine: the fixed
// production chain extrusión → corte → laminado → sellado → impresión,
// the quality-control gate behind impresión, and the area-specific
// production parameter requirements.
package pipeline

import (
	"errors"
	"fmt"
)

// Ficha states, in pipeline order.
const (
	EstadoCreada         = "creada"
	EstadoEnExtrusion    = "en_extrusion"
	EstadoEnCorte        = "en_corte"
	EstadoEnLaminado     = "en_laminado"
	EstadoEnSellado      = "en_sellado"
	EstadoEnImpresion    = "en_impresion"
	EstadoControlCalidad = "control_calidad"
	EstadoCompletada     = "completada"
)

// Production areas.
const (
	AreaExtrusion = "extrusion"
	AreaCorte     = "corte"
	AreaLaminado  = "laminado"
	AreaSellado   = "sellado"
	AreaImpresion = "impresion"
)

// Inspection verdicts.
const (
	ResultadoAprobado  = "aprobado"
	ResultadoRechazado = "rechazado"
	ResultadoRevision  = "revision"
)

var (
	ErrUnknownArea = errors.New("unknown production area")

	// ErrDerivarCalidadRequired is returned when the impresión advance
	// omits the explicit quality-routing decision.
	ErrDerivarCalidadRequired = errors.New("derivarCalidad is required for the impresion area")
)

// Areas lists the production areas in pipeline order.
func Areas() []string {
	return []string{AreaExtrusion, AreaCorte, AreaLaminado, AreaSellado, AreaImpresion}
}

// ValidArea reports whether area names a production area.
func ValidArea(area string) bool {
	switch area {
	case AreaExtrusion, AreaCorte, AreaLaminado, AreaSellado, AreaImpresion:
		return true
	}
	return false
}

// ValidResultado reports whether resultado names an inspection verdict.
func ValidResultado(resultado string) bool {
	switch resultado {
	case ResultadoAprobado, ResultadoRechazado, ResultadoRevision:
		return true
	}
	return false
}

// ExpectedArea returns the only area whose advance a ficha in the given
// state accepts. A freshly created ficha expects extrusión. Terminal and
// quality states accept no advance (ok is false).
func ExpectedArea(estado string) (area string, ok bool) {
	switch estado {
	case EstadoCreada, EstadoEnExtrusion:
		return AreaExtrusion, true
	case EstadoEnCorte:
		return AreaCorte, true
	case EstadoEnLaminado:
		return AreaLaminado, true
	case EstadoEnSellado:
		return AreaSellado, true
	case EstadoEnImpresion:
		return AreaImpresion, true
	}
	return "", false
}

// Next computes the ficha state after completing an area. For impresión
// the caller must carry the explicit quality-routing decision;
// derivarCalidad is ignored for every other area.
func Next(area string, derivarCalidad *bool) (string, error) {
	switch area {
	case AreaExtrusion:
		return EstadoEnCorte, nil
	case AreaCorte:
		return EstadoEnLaminado, nil
	case AreaLaminado:
		return EstadoEnSellado, nil
	case AreaSellado:
		return EstadoEnImpresion, nil
	case AreaImpresion:
		if derivarCalidad == nil {
			return "", ErrDerivarCalidadRequired
		}
		if *derivarCalidad {
			return EstadoControlCalidad, nil
		}
		return EstadoCompletada, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownArea, area)
}

// RoleForArea returns the operator role allowed to record advances for an
// area. The production manager role is additionally allowed everywhere;
// that is wired at the route level.
func RoleForArea(area string) (string, error) {
	if !ValidArea(area) {
		return "", fmt.Errorf("%w: %q", ErrUnknownArea, area)
	}
	return "operario_" + area, nil
}
