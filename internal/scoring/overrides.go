package scoring

import (
	"encoding/json"
	"fmt"
	"math"
)

// ApplyOverrides substitutes recognized feature values into v. Unknown names are
// ignored. A recognized name with a non-numeric or non-finite value fails the
// whole call; numeric strings are not coerced.
func ApplyOverrides(v FeatureVector, overrides map[string]interface{}) (FeatureVector, map[string]float64, error) {
	applied := make(map[string]float64, len(overrides))
	for name, raw := range overrides {
		i, ok := featureIndex[name]
		if !ok {
			continue
		}
		value, err := overrideValue(raw)
		if err != nil {
			return v, nil, fmt.Errorf("%w: %s: %v", ErrInvalidOverride, name, err)
		}
		v[i] = value
		applied[name] = value
	}
	return v, applied, nil
}

func overrideValue(raw interface{}) (float64, error) {
	var f float64
	switch val := raw.(type) {
	case float64:
		f = val
	case float32:
		f = float64(val)
	case int:
		f = float64(val)
	case int32:
		f = float64(val)
	case int64:
		f = float64(val)
	case json.Number:
		parsed, err := val.Float64()
		if err != nil {
			return 0, err
		}
		f = parsed
	default:
		return 0, fmt.Errorf("value %v (%T) is not a number", raw, raw)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("value %v is not finite", f)
	}
	return f, nil
}
