package core

import "fmt"

// Variables carries per-request context values (user id, rendered wine
// collection, ...) to instruction providers and tool handlers.
type Variables map[string]any

// String returns the value for key formatted as text, or "" when absent.
func (v Variables) String(key string) string {
	val, ok := v[key]
	if !ok || val == nil {
		return ""
	}
	if s, ok := val.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", val)
}

// Clone returns a shallow copy that is safe to extend.
func (v Variables) Clone() Variables {
	out := make(Variables, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}
