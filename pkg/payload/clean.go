// Package payload turns raw form data into the data kept in the form and the
// minimal payload that is persisted.
package payload

import "math"

// CleanOptions selects which empty values CleanPayload removes.
type CleanOptions struct {
	EmptyStrings bool
	NullValues   bool
	// UndefinedValues has nothing to remove in decoded Go data, where an
	// undefined value is an absent key. It is kept so option sets can be
	// shared with other form shells.
	UndefinedValues bool
	EmptyArrays     bool
	EmptyObjects    bool
	NaNValues       bool
	// IsException keeps a value that would otherwise be removed. cleaned is
	// the value after its children were cleaned; isArrayItem is true when the
	// value sits directly inside an array.
	IsException func(value, cleaned any, isArrayItem bool) bool
}

// DefaultCleanOptions enables every toggle and keeps array items, since
// removing one shifts the index of every following item.
func DefaultCleanOptions() CleanOptions {
	return CleanOptions{
		EmptyStrings:    true,
		NullValues:      true,
		UndefinedValues: true,
		EmptyArrays:     true,
		EmptyObjects:    true,
		NaNValues:       true,
		IsException:     KeepArrayItems,
	}
}

// KeepArrayItems is an IsException predicate that never removes array items.
func KeepArrayItems(_, _ any, isArrayItem bool) bool {
	return isArrayItem
}

// CleanPayload removes empty values from data. node is the schema of data and
// root the document its $refs resolve against; values without a schema are
// cleaned by their data shape alone. A map at the top level is always
// returned, even when everything in it was removed.
func CleanPayload(data any, node, root map[string]any, opts CleanOptions) any {
	c := cleaner{walker: walker{root: root}, opts: opts}
	out, keep := c.clean(data, node, false)
	if !keep {
		if _, isMap := data.(map[string]any); isMap {
			return map[string]any{}
		}
		return nil
	}
	return out
}

type cleaner struct {
	walker
	opts CleanOptions
}

func (c cleaner) clean(value any, node map[string]any, isArrayItem bool) (any, bool) {
	node = c.resolve(node)

	var (
		cleaned = value
		empty   bool
	)
	switch typed := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, child := range typed {
			if next, keep := c.clean(child, c.property(node, key), false); keep {
				out[key] = next
			}
		}
		cleaned = out
		empty = c.opts.EmptyObjects && len(out) == 0
	case []any:
		// Children of a slice are array items whatever the schema declares, so
		// KeepArrayItems holds even for untyped or mismatched nodes.
		items := c.items(node)
		out := make([]any, 0, len(typed))
		for _, child := range typed {
			if next, keep := c.clean(child, items, true); keep {
				out = append(out, next)
			}
		}
		cleaned = out
		empty = c.opts.EmptyArrays && len(out) == 0
	case string:
		empty = c.opts.EmptyStrings && typed == ""
	case float64:
		empty = c.opts.NaNValues && math.IsNaN(typed)
	case nil:
		empty = c.opts.NullValues
	}

	if empty && (c.opts.IsException == nil || !c.opts.IsException(value, cleaned, isArrayItem)) {
		return nil, false
	}
	return cleaned, true
}
