package maputil

import (
	"encoding/json"
	"fmt"
	"strings"

	"myfxreport/internal/pkg/convert"
)

// String returns params[key] as text, or fallback when the key is absent or null.
func String(params map[string]any, key, fallback string) string {
	if params == nil {
		return fallback
	}
	raw, ok := params[key]
	if !ok || raw == nil {
		return fallback
	}
	switch v := raw.(type) {
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		if _, err := v.Int64(); err == nil {
			return v.String()
		}
		if f, ok := convert.ToFloat64(v); ok {
			return convert.FormatNumber(f)
		}
		return v.String()
	case float64:
		return convert.FormatNumber(v)
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", v))
	}
}

// Float returns params[key] coerced to float64, or def when missing or unparsable.
func Float(params map[string]any, key string, def float64) float64 {
	if params == nil {
		return def
	}
	return convert.FloatOr(params[key], def)
}

// Map returns params[key] when it is itself an object.
func Map(params map[string]any, key string) (map[string]any, bool) {
	if params == nil {
		return nil, false
	}
	m, ok := params[key].(map[string]any)
	return m, ok
}
