package payload

import (
	"fmt"
	"sort"

	"github.com/giantswarm/schemaform/pkg/schema"
)

// TransformArraysIntoObjects turns the key/value entry arrays of transformed
// schema nodes back into maps. Entries without a key are skipped. Values
// nested under transformedPropertyValue are unwrapped, object entries keep
// their remaining fields.
func TransformArraysIntoObjects(data any, node, root map[string]any) any {
	return walker{root: root}.toObjects(data, node)
}

func (w walker) toObjects(value any, node map[string]any) any {
	node = w.resolve(node)
	switch typed := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, child := range typed {
			out[key] = w.toObjects(child, w.property(node, key))
		}
		return out
	case []any:
		items := w.items(node)
		if !schema.IsTransformed(node) {
			out := make([]any, len(typed))
			for idx, child := range typed {
				out[idx] = w.toObjects(child, items)
			}
			return out
		}
		valueSchema, wrapped := wrappedValue(items)
		out := make(map[string]any, len(typed))
		for _, child := range typed {
			entry, ok := child.(map[string]any)
			if !ok {
				continue
			}
			key, ok := entryKey(entry)
			if !ok {
				continue
			}
			rest := make(map[string]any, len(entry))
			for field, val := range entry {
				if field != schema.TransformedPropertyKey {
					rest[field] = val
				}
			}
			if wrapped || (items == nil && isWrappedEntry(rest)) {
				out[key] = w.toObjects(rest[schema.TransformedPropertyValue], valueSchema)
				continue
			}
			out[key] = w.toObjects(rest, items)
		}
		return out
	default:
		return value
	}
}

// TransformObjectsIntoArrays shapes persisted map data into the entry arrays
// the transformed schema expects, sorted by key. Data that already has the
// array shape is left as it is.
func TransformObjectsIntoArrays(data any, node, root map[string]any) any {
	return walker{root: root}.toArrays(data, node)
}

func (w walker) toArrays(value any, node map[string]any) any {
	node = w.resolve(node)
	switch typed := value.(type) {
	case map[string]any:
		if !schema.IsTransformed(node) {
			out := make(map[string]any, len(typed))
			for key, child := range typed {
				out[key] = w.toArrays(child, w.property(node, key))
			}
			return out
		}
		items := w.items(node)
		valueSchema, wrapped := wrappedValue(items)
		keys := make([]string, 0, len(typed))
		for key := range typed {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		out := make([]any, 0, len(typed))
		for _, key := range keys {
			entry := map[string]any{schema.TransformedPropertyKey: key}
			spread, isObject := typed[key].(map[string]any)
			if !wrapped && isObject {
				spread, isObject = w.toArrays(spread, items).(map[string]any)
			}
			if wrapped || !isObject {
				entry[schema.TransformedPropertyValue] = w.toArrays(typed[key], valueSchema)
			} else {
				for field, val := range spread {
					entry[field] = val
				}
			}
			out = append(out, entry)
		}
		return out
	case []any:
		items := w.items(node)
		out := make([]any, len(typed))
		for idx, child := range typed {
			out[idx] = w.toArrays(child, items)
		}
		return out
	default:
		return value
	}
}

// wrappedValue reports whether entries of items nest their value under
// transformedPropertyValue, and returns that value's schema.
func wrappedValue(items map[string]any) (map[string]any, bool) {
	props := schema.Properties(items)
	if props == nil {
		return nil, false
	}
	valueSchema, ok := props[schema.TransformedPropertyValue].(map[string]any)
	return valueSchema, ok
}

func isWrappedEntry(rest map[string]any) bool {
	_, ok := rest[schema.TransformedPropertyValue]
	return ok && len(rest) == 1
}

func entryKey(entry map[string]any) (string, bool) {
	raw, ok := entry[schema.TransformedPropertyKey]
	if !ok || raw == nil {
		return "", false
	}
	if key, isString := raw.(string); isString {
		return key, true
	}
	return fmt.Sprint(raw), true
}

// Output is the persisted form of cleaned form data: the difference from the
// defaults with transformed arrays restored to maps.
func Output(data any, node, root map[string]any) any {
	return TransformArraysIntoObjects(CleanPayloadFromDefaults(data, node, root), node, root)
}
