package payload

import (
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/giantswarm/schemaform/pkg/schema"
)

var defaultEquality = cmp.Options{
	cmpopts.EquateEmpty(),
	cmpopts.EquateNaNs(),
}

// CleanPayloadFromDefaults omits every value that equals the default declared
// for its position, leaving the difference from the defaults. A default
// applies to its node and, through its keys and indexes, to the node's
// children unless they declare their own. Containers left empty are omitted.
// Array items are never omitted individually; an item with a default at its
// index is reduced against it, any other item is kept as-is. Entries of
// transformed maps are matched by key instead of index.
func CleanPayloadFromDefaults(data any, node, root map[string]any) any {
	d := differ{walker: walker{root: root}}
	out, keep := d.diff(data, node, nil, false)
	if !keep {
		if _, isMap := data.(map[string]any); isMap {
			return map[string]any{}
		}
		return nil
	}
	return out
}

type differ struct {
	walker
}

func (d differ) diff(value any, node map[string]any, inherited any, hasDefault bool) (any, bool) {
	node = d.resolve(node)
	def, ok := schema.Default(node)
	if !ok {
		def, ok = inherited, hasDefault
	}
	if ok && cmp.Equal(value, def, defaultEquality) {
		return nil, false
	}

	switch typed := value.(type) {
	case map[string]any:
		if len(typed) == 0 {
			return typed, true
		}
		defaults, _ := def.(map[string]any)
		out := make(map[string]any, len(typed))
		for key, child := range typed {
			childDefault, childHas := defaults[key]
			if next, keep := d.diff(child, d.property(node, key), childDefault, childHas); keep {
				out[key] = next
			}
		}
		if len(out) == 0 {
			return nil, false
		}
		return out, true
	case []any:
		if schema.IsTransformed(node) {
			return d.diffEntries(typed, node, def)
		}
		defaults, _ := def.([]any)
		items := d.items(node)
		out := make([]any, len(typed))
		for idx, child := range typed {
			out[idx] = child
			if idx >= len(defaults) {
				continue
			}
			if next, keep := d.diff(child, items, defaults[idx], true); keep {
				out[idx] = next
			}
		}
		return out, true
	default:
		return value, true
	}
}

// diffEntries reduces the entries of a transformed map against the default
// entry with the same key. Entries equal to their default are omitted, the
// key of every other entry is kept.
func (d differ) diffEntries(entries []any, node map[string]any, def any) (any, bool) {
	items := d.items(node)
	defaults := make(map[string]map[string]any)
	list, _ := def.([]any)
	for _, raw := range list {
		entry, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		if key, ok := entryKey(entry); ok {
			defaults[key] = entry
		}
	}

	out := make([]any, 0, len(entries))
	for _, raw := range entries {
		entry, _ := raw.(map[string]any)
		key, hasKey := entryKey(entry)
		base, hasBase := defaults[key]
		if !hasKey || !hasBase {
			out = append(out, raw)
			continue
		}
		next, keep := d.diff(entry, items, base, true)
		if !keep {
			continue
		}
		reduced, ok := next.(map[string]any)
		if !ok {
			out = append(out, raw)
			continue
		}
		reduced[schema.TransformedPropertyKey] = entry[schema.TransformedPropertyKey]
		out = append(out, reduced)
	}
	if len(out) == 0 && len(entries) > 0 {
		return nil, false
	}
	return out, true
}
