package merge

import "github.com/nbcatalog/nbcatalog/yamldoc"

// Maps deep-merges overlay onto defaults and returns a new map.
//
// Keys only in defaults are inherited; keys only in overlay are kept; when a
// key is present in both and both values are map[string]any, the values are
// merged recursively, otherwise the overlay value wins. Nested maps are
// copied, never aliased, so the result shares no mutable state with either
// input.
func Maps(defaults, overlay map[string]any) map[string]any {
	out := make(map[string]any, len(defaults)+len(overlay))
	for k, v := range defaults {
		out[k] = copyValue(v)
	}
	for k, ov := range overlay {
		dv, both := out[k]
		if both {
			dm, dok := dv.(map[string]any)
			om, ook := ov.(map[string]any)
			if dok && ook {
				out[k] = Maps(dm, om)
				continue
			}
		}
		out[k] = copyValue(ov)
	}
	return out
}

// Mappings is Maps over the order-preserving tree form. Inherited keys keep
// the defaults' order, followed by overlay-only keys in their own order.
func Mappings(defaults, overlay *yamldoc.Mapping) *yamldoc.Mapping {
	out := yamldoc.NewMapping()
	for _, k := range defaults.Keys() {
		v, _ := defaults.Get(k)
		out.Set(k, v)
	}
	for _, k := range overlay.Keys() {
		ov, _ := overlay.Get(k)
		if dv, both := out.Get(k); both {
			dm, dok := dv.(*yamldoc.Mapping)
			om, ook := ov.(*yamldoc.Mapping)
			if dok && ook {
				out.Set(k, Mappings(dm, om))
				continue
			}
		}
		out.Set(k, ov)
	}
	return out
}

// copyValue deep-copies nested maps and slices; scalars pass through.
func copyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = copyValue(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = copyValue(e)
		}
		return out
	default:
		return v
	}
}
