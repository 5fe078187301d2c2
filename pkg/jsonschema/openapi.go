package jsonschema

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

const componentRefPrefix = "#/components/schemas/"

// FromOpenAPIComponent extracts a named component schema from an OpenAPI 3
// document and returns it as a standalone JSON Schema. Every component is
// copied into $defs and "#/components/schemas/X" references are rewritten to
// "#/$defs/X" so the result resolves without the surrounding document.
func FromOpenAPIComponent(ctx context.Context, raw []byte, name string) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("jsonschema openapi: component name is required")
	}

	loader := &openapi3.Loader{Context: ctx}
	spec, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("jsonschema openapi: load document: %w", err)
	}
	if spec.Components == nil || len(spec.Components.Schemas) == 0 {
		return nil, errors.New("jsonschema openapi: document has no component schemas")
	}

	target, ok := spec.Components.Schemas[name]
	if !ok || target == nil || target.Value == nil {
		return nil, fmt.Errorf("jsonschema openapi: component %q not found", name)
	}

	root, err := schemaToMap(target.Value)
	if err != nil {
		return nil, fmt.Errorf("jsonschema openapi: component %q: %w", name, err)
	}

	defs := make(map[string]any, len(spec.Components.Schemas))
	keys := make([]string, 0, len(spec.Components.Schemas))
	for key := range spec.Components.Schemas {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		ref := spec.Components.Schemas[key]
		if ref == nil || ref.Value == nil {
			continue
		}
		converted, err := schemaToMap(ref.Value)
		if err != nil {
			return nil, fmt.Errorf("jsonschema openapi: component %q: %w", key, err)
		}
		defs[key] = rewriteComponentRefs(converted)
	}

	out := rewriteComponentRefs(root).(map[string]any)
	out["$defs"] = defs
	return out, nil
}

func schemaToMap(value *openapi3.Schema) (map[string]any, error) {
	encoded, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(encoded, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func rewriteComponentRefs(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		for key, child := range typed {
			if key == "$ref" {
				if ref, ok := child.(string); ok && strings.HasPrefix(ref, componentRefPrefix) {
					typed[key] = "#/$defs/" + strings.TrimPrefix(ref, componentRefPrefix)
				}
				continue
			}
			typed[key] = rewriteComponentRefs(child)
		}
		return typed
	case []any:
		for idx, child := range typed {
			typed[idx] = rewriteComponentRefs(child)
		}
		return typed
	default:
		return value
	}
}
