package payload

import (
	"github.com/giantswarm/schemaform/pkg/jsonschema"
	"github.com/giantswarm/schemaform/pkg/schema"
)

// walker carries the root every $ref is resolved against.
type walker struct {
	root map[string]any
}

func (w walker) resolve(node map[string]any) map[string]any {
	if node == nil {
		return nil
	}
	return jsonschema.ResolveRef(node, w.root)
}

// property returns the schema of key in an object node, falling back to an
// object-valued additionalProperties.
func (w walker) property(node map[string]any, key string) map[string]any {
	node = w.resolve(node)
	if child := schema.Property(node, key); child != nil {
		return w.resolve(child)
	}
	if extra, ok := node["additionalProperties"].(map[string]any); ok {
		return w.resolve(extra)
	}
	return nil
}

func (w walker) items(node map[string]any) map[string]any {
	return w.resolve(schema.Items(w.resolve(node)))
}
