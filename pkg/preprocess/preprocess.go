// Package preprocess normalizes a JSON Schema so a generic object/array form
// renderer can drive it: unions collapse to one concrete subschema, open maps
// become arrays of key/value entries, and internal-only fields are removed.
package preprocess

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/go-openapi/jsonpointer"
	"github.com/google/go-cmp/cmp"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/giantswarm/schemaform/pkg/jsonschema"
	"github.com/giantswarm/schemaform/pkg/schema"
)

// DefaultInternalPath is the schema path of the internal-only subtree. It is
// removed by default and doubles as the source of shadow defaults.
const DefaultInternalPath = "properties.internal"

const transformedDefSuffix = "_transformed"

type options struct {
	fieldsToRemove []string
	internalPath   string
}

// Option configures Preprocess.
type Option func(*options)

// WithFieldsToRemove replaces the list of dotted schema paths deleted before
// the rewrite, e.g. "properties.internal" or
// "properties.arrayFields.properties.list.items.properties.age". Paths use
// gjson syntax; keys containing dots must be escaped with a backslash.
func WithFieldsToRemove(paths ...string) Option {
	return func(opts *options) {
		opts.fieldsToRemove = append([]string(nil), paths...)
	}
}

// WithInternalPath changes where shadow defaults are looked up. An empty path
// disables the lookup.
func WithInternalPath(path string) Option {
	return func(opts *options) {
		opts.internalPath = strings.TrimSpace(path)
	}
}

// Preprocess returns a normalized copy of raw. The input is never modified.
func Preprocess(raw map[string]any, opts ...Option) (map[string]any, error) {
	cfg := options{
		fieldsToRemove: []string{DefaultInternalPath},
		internalPath:   DefaultInternalPath,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if raw == nil {
		return nil, errors.New("preprocess: schema is nil")
	}

	original, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("preprocess: encode schema: %w", err)
	}

	encoded := original
	for _, path := range cfg.fieldsToRemove {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}
		encoded, err = sjson.DeleteBytes(encoded, path)
		if err != nil {
			return nil, fmt.Errorf("preprocess: remove %q: %w", path, err)
		}
	}

	var working map[string]any
	if err := json.Unmarshal(encoded, &working); err != nil {
		return nil, fmt.Errorf("preprocess: decode schema: %w", err)
	}

	p := &preprocessor{
		root:         working,
		original:     original,
		internalPath: cfg.internalPath,
		visitedDefs:  make(map[string]struct{}),
	}
	p.visit(working, "")
	return working, nil
}

type preprocessor struct {
	// root is the working copy. Synthesized $defs are written here and $refs
	// resolve against it during the same pass.
	root map[string]any
	// original is the encoded input before field removal, used for shadow
	// default lookups under the internal path.
	original     []byte
	internalPath string
	visitedDefs  map[string]struct{}
}

// visit rewrites node before descending so children synthesized by the
// rewrite are visited as well.
func (p *preprocessor) visit(node map[string]any, path string) {
	if node == nil {
		return
	}

	collapseUnion(node)
	p.transformOpenMap(node, path)

	if props := schema.Properties(node); props != nil {
		for _, key := range sortedKeys(props) {
			if child, ok := props[key].(map[string]any); ok {
				p.visit(child, joinPath(path, "properties", key))
			}
		}
	}
	if items := schema.Items(node); items != nil {
		p.visit(items, joinPath(path, "items"))
	}
	p.visitDefs(node, path)
}

// visitDefs keeps going until no unvisited definition is left, because
// visiting one definition can synthesize another.
func (p *preprocessor) visitDefs(node map[string]any, path string) {
	for {
		defs, ok := node["$defs"].(map[string]any)
		if !ok {
			return
		}
		pending := make([]string, 0, len(defs))
		for _, key := range sortedKeys(defs) {
			if _, done := p.visitedDefs[joinPath(path, "$defs", key)]; !done {
				pending = append(pending, key)
			}
		}
		if len(pending) == 0 {
			return
		}
		for _, key := range pending {
			defPath := joinPath(path, "$defs", key)
			p.visitedDefs[defPath] = struct{}{}
			if child, ok := defs[key].(map[string]any); ok {
				p.visit(child, defPath)
			}
		}
	}
}

// collapseUnion merges the first non-deprecated anyOf/oneOf candidate into an
// untyped node. The renderer supports one concrete shape per field, and the
// alternatives only differ in validation constraints.
func collapseUnion(node map[string]any) {
	for schema.KindOf(node) == schema.KindUnion {
		var choice map[string]any
		for _, keyword := range []string{"anyOf", "oneOf"} {
			if choice == nil {
				choice = firstViable(node[keyword])
			}
			delete(node, keyword)
		}
		for key, value := range choice {
			node[key] = value
		}
	}
}

func firstViable(raw any) map[string]any {
	list, _ := raw.([]any)
	for _, entry := range list {
		candidate, ok := entry.(map[string]any)
		if !ok || schema.Deprecated(candidate) {
			continue
		}
		return candidate
	}
	return nil
}

func (p *preprocessor) transformOpenMap(node map[string]any, path string) {
	if schema.TypeOf(node) != "object" {
		return
	}
	valueSchema, pattern, ok := openMapValue(node)
	if !ok {
		return
	}

	keyProperty := map[string]any{"type": "string"}
	if pattern != "" {
		keyProperty["pattern"] = pattern
	}

	var (
		items  map[string]any
		spread bool
	)
	if _, isRef := valueSchema["$ref"]; isRef {
		resolved := jsonschema.ResolveRef(valueSchema, p.root)
		if schema.KindOf(resolved) == schema.KindObject {
			name := p.synthesizeDef(valueSchema, resolved, keyProperty)
			items = map[string]any{"$ref": "#/$defs/" + jsonpointer.Escape(name)}
			spread = true
		}
	}
	if items == nil {
		items = map[string]any{
			"type": "object",
			"properties": map[string]any{
				schema.TransformedPropertyKey:   keyProperty,
				schema.TransformedPropertyValue: valueSchema,
			},
			"required": []any{schema.TransformedPropertyKey, schema.TransformedPropertyValue},
		}
	}

	def, hasDefault := p.defaultFor(node, path)

	delete(node, "additionalProperties")
	delete(node, "patternProperties")
	node["type"] = "array"
	node["items"] = items
	node["$comment"] = schema.TransformedPropertyMarker

	if hasDefault {
		node["default"] = convertDefault(def, spread)
	}
}

// openMapValue returns the value schema of an open map. patternProperties wins
// over additionalProperties because it also carries the key pattern; only the
// first pattern (in key order) is honoured.
func openMapValue(node map[string]any) (map[string]any, string, bool) {
	if patterns, ok := node["patternProperties"].(map[string]any); ok && len(patterns) > 0 {
		for _, pattern := range sortedKeys(patterns) {
			if value, ok := patterns[pattern].(map[string]any); ok {
				return value, pattern, true
			}
			break
		}
	}
	if value, ok := node["additionalProperties"].(map[string]any); ok && len(value) > 0 {
		return value, "", true
	}
	return nil, "", false
}

// synthesizeDef stores a copy of the referenced object schema extended with
// the key property, leaving the shared definition untouched.
func (p *preprocessor) synthesizeDef(ref, resolved, keyProperty map[string]any) string {
	def := jsonschema.CloneSchema(resolved)
	delete(def, "$ref")

	props := schema.Properties(def)
	if props == nil {
		props = make(map[string]any)
	}
	props[schema.TransformedPropertyKey] = keyProperty
	def["properties"] = props
	def["required"] = appendRequired(def["required"], schema.TransformedPropertyKey)

	defs, ok := p.root["$defs"].(map[string]any)
	if !ok {
		defs = make(map[string]any)
		p.root["$defs"] = defs
	}

	base := refName(ref) + transformedDefSuffix
	name := base
	for idx := 2; ; idx++ {
		existing, taken := defs[name]
		if !taken {
			defs[name] = def
			return name
		}
		if cmp.Equal(existing, def) {
			return name
		}
		name = base + "_" + strconv.Itoa(idx)
	}
}

func refName(ref map[string]any) string {
	value, _ := ref["$ref"].(string)
	value = strings.TrimRight(value, "/")
	if idx := strings.LastIndex(value, "/"); idx >= 0 {
		value = value[idx+1:]
	}
	value = jsonpointer.Unescape(strings.TrimPrefix(value, "#"))
	if value == "" {
		return "root"
	}
	return value
}

func appendRequired(raw any, name string) []any {
	list, _ := raw.([]any)
	out := make([]any, 0, len(list)+1)
	for _, entry := range list {
		if entry == name {
			continue
		}
		out = append(out, entry)
	}
	return append(out, name)
}

// defaultFor returns the node's own default, or the one declared at the
// shadow path under the internal subtree of the unmodified schema.
func (p *preprocessor) defaultFor(node map[string]any, path string) (any, bool) {
	if def, ok := schema.Default(node); ok {
		return def, true
	}
	if p.internalPath == "" {
		return nil, false
	}
	shadow := gjson.GetBytes(p.original, p.internalPath+"."+joinPath(path, "default"))
	if !shadow.Exists() {
		return nil, false
	}
	return shadow.Value(), true
}

// convertDefault turns a map default into the array-of-entries shape. Object
// values are spread next to the key when the item schema was merged with the
// referenced object, scalars are nested under the value property.
func convertDefault(def any, spread bool) any {
	values, ok := def.(map[string]any)
	if !ok {
		return def
	}
	out := make([]any, 0, len(values))
	for _, key := range sortedKeys(values) {
		entry := map[string]any{schema.TransformedPropertyKey: key}
		if object, isObject := values[key].(map[string]any); spread && isObject {
			for field, value := range object {
				entry[field] = value
			}
		} else {
			entry[schema.TransformedPropertyValue] = values[key]
		}
		out = append(out, entry)
	}
	return out
}

func joinPath(path string, segments ...string) string {
	parts := make([]string, 0, len(segments)+1)
	if path != "" {
		parts = append(parts, path)
	}
	for _, segment := range segments {
		if segment == "" {
			continue
		}
		parts = append(parts, gjson.Escape(segment))
	}
	return strings.Join(parts, ".")
}

func sortedKeys(payload map[string]any) []string {
	keys := make([]string, 0, len(payload))
	for key := range payload {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
