package manifest

import "regexp"

var spaceRunPattern = regexp.MustCompile(`[ ]+`)

// Normalize canonicalizes m in place and returns it: a string main becomes a
// one-element array and every run of spaces in name becomes a single
// underscore. Other fields are left alone. Normalize is idempotent.
func Normalize(m Manifest) Manifest {
	if main, ok := m["main"].(string); ok {
		m["main"] = []any{main}
	}

	if name, ok := m["name"].(string); ok && name != "" {
		m["name"] = spaceRunPattern.ReplaceAllString(name, "_")
	}

	return m
}

// deepCopy copies JSON-compatible values; scalars are immutable and shared
func deepCopy(v any) any {
	switch val := v.(type) {
	case Manifest:
		return Manifest(deepCopyMap(val))
	case map[string]any:
		return deepCopyMap(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = deepCopy(item)
		}
		return out
	case []string:
		return append([]string(nil), val...)
	default:
		return val
	}
}

func deepCopyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = deepCopy(v)
	}
	return out
}
