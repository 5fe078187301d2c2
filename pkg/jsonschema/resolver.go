package jsonschema

import (
	"strings"

	"github.com/go-openapi/jsonpointer"
)

const maxRefDepth = 64

// ResolveRef follows local $ref chains ("#/$defs/name") against root and
// returns the target schema. Keywords that sit next to a $ref override the
// target's, matching how the form renderer merges them. Unresolvable, remote,
// or cyclic references leave the node as-is. The returned map may be shared
// with root and must be cloned before it is modified.
func ResolveRef(node, root map[string]any) map[string]any {
	current := node
	seen := make(map[string]struct{}, 2)
	for depth := 0; depth < maxRefDepth; depth++ {
		ref := strings.TrimSpace(readString(current, "$ref"))
		if ref == "" {
			return current
		}
		if _, loop := seen[ref]; loop {
			return current
		}
		seen[ref] = struct{}{}

		target, ok := lookupRef(root, ref)
		if !ok {
			return current
		}
		current = mergeRefSiblings(target, current)
	}
	return current
}

func lookupRef(root map[string]any, ref string) (map[string]any, bool) {
	if root == nil || !strings.HasPrefix(ref, "#") {
		return nil, false
	}
	fragment := strings.TrimPrefix(ref, "#")
	if fragment == "" {
		return root, true
	}
	pointer, err := jsonpointer.New(fragment)
	if err != nil {
		return nil, false
	}
	target, _, err := pointer.Get(root)
	if err != nil {
		return nil, false
	}
	resolved, ok := target.(map[string]any)
	return resolved, ok
}

func mergeRefSiblings(target, refNode map[string]any) map[string]any {
	if len(refNode) <= 1 {
		return target
	}
	merged := make(map[string]any, len(target)+len(refNode))
	for key, value := range target {
		merged[key] = value
	}
	for key, value := range refNode {
		if key == "$ref" {
			continue
		}
		merged[key] = value
	}
	return merged
}

// Clone deep-copies JSON-compatible values. Maps and slices are copied,
// scalars are shared.
func Clone(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, val := range typed {
			out[key] = Clone(val)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for idx, val := range typed {
			out[idx] = Clone(val)
		}
		return out
	default:
		return typed
	}
}

// CloneSchema deep-copies a schema object.
func CloneSchema(node map[string]any) map[string]any {
	if node == nil {
		return nil
	}
	return Clone(node).(map[string]any)
}

func readString(payload map[string]any, key string) string {
	if payload == nil {
		return ""
	}
	str, _ := payload[key].(string)
	return str
}

func joinPointer(path string, segments ...string) string {
	if path == "" {
		path = "#"
	}
	for _, segment := range segments {
		path = path + "/" + jsonpointer.Escape(segment)
	}
	return path
}
