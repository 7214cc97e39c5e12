package llmutil

import "strconv"

// The alias helpers implement lenient multi-key lookup: each field of a reply
// schema is resolved through an ordered alias list, taking the first present,
// non-empty value. Precedence is the order of the keys argument.

// FirstString returns the first non-empty string value among the aliased keys.
func FirstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		v, ok := m[k]
		if !ok {
			continue
		}
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// FirstNumber returns the first numeric value among the aliased keys. Models
// occasionally quote numbers, so numeric strings are accepted too.
func FirstNumber(m map[string]any, keys ...string) (float64, bool) {
	for _, k := range keys {
		v, ok := m[k]
		if !ok {
			continue
		}
		switch n := v.(type) {
		case float64:
			return n, true
		case int:
			return float64(n), true
		case int64:
			return float64(n), true
		case string:
			if f, err := strconv.ParseFloat(n, 64); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}

// FirstInt is FirstNumber truncated to int.
func FirstInt(m map[string]any, keys ...string) (int, bool) {
	f, ok := FirstNumber(m, keys...)
	return int(f), ok
}

// FirstSlice returns the first non-empty list value among the aliased keys.
func FirstSlice(m map[string]any, keys ...string) []any {
	for _, k := range keys {
		v, ok := m[k]
		if !ok {
			continue
		}
		if s, ok := v.([]any); ok && len(s) > 0 {
			return s
		}
	}
	return nil
}

// AsMap narrows an any to a JSON object, returning nil for anything else.
func AsMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}
