package pipeline

import (
	"fmt"
	"strings"
)

// Parametros is the production parameter bag recorded with an advance.
// It stays an open map on the wire, but each area has required keys that
// are validated before anything is persisted.
type Parametros map[string]any

// Keys that must be numeric when present.
var numericParams = map[string]bool{
	"temperatura": true,
	"presion":     true,
	"velocidad":   true,
}

var requiredParamsByArea = map[string][]string{
	AreaExtrusion: {"temperatura", "presion", "velocidad"},
	AreaCorte:     {"velocidad", "configuracionMaquina"},
	AreaLaminado:  {"temperatura", "tipoAdhesivo"},
	AreaSellado:   {"temperatura", "presion"},
	AreaImpresion: {"velocidad", "tipoTinta"},
}

// ValidateParametros checks the parameter bag against the area's required
// keys and basic value shapes. Extra keys are allowed; the bag is stored
// as-is once validated.
func ValidateParametros(area string, params Parametros) error {
	required, ok := requiredParamsByArea[area]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownArea, area)
	}

	missing := make([]string, 0)
	for _, key := range required {
		v, present := params[key]
		if !present || isEmptyValue(v) {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("parametros de %s incompletos: falta %s", area, strings.Join(missing, ", "))
	}

	for key, v := range params {
		if !numericParams[key] {
			continue
		}
		switch n := v.(type) {
		case float64:
			if n < 0 {
				return fmt.Errorf("parametro %s no puede ser negativo", key)
			}
		case int, int64:
			// JSON decoding yields float64; accept ints from direct callers.
		default:
			return fmt.Errorf("parametro %s debe ser numerico", key)
		}
	}
	return nil
}

func isEmptyValue(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}
