package schema

import "strings"

// Keywords and markers shared by the preprocessor and the payload helpers.
const (
	// TransformedPropertyKey holds the original map key inside an array entry
	// produced from an open map (additionalProperties/patternProperties).
	TransformedPropertyKey = "transformedPropertyKey"
	// TransformedPropertyValue wraps scalar map values inside such an entry.
	TransformedPropertyValue = "transformedPropertyValue"
	// TransformedPropertyMarker is written to $comment on rewritten nodes.
	TransformedPropertyMarker = "transformedProperty"
)

// Kind classifies a schema node. Every node maps to exactly one kind, which
// lets callers switch over a closed set instead of probing keywords.
type Kind int

const (
	KindUnknown Kind = iota
	KindString
	KindNumber
	KindInteger
	KindBoolean
	KindObject
	KindArray
	KindNull
	// KindUnion marks an untyped node that declares anyOf or oneOf. The
	// preprocessor collapses these, so normalized schemas never contain one.
	KindUnion
)

var kindNames = map[Kind]string{
	KindUnknown: "unknown",
	KindString:  "string",
	KindNumber:  "number",
	KindInteger: "integer",
	KindBoolean: "boolean",
	KindObject:  "object",
	KindArray:   "array",
	KindNull:    "null",
	KindUnion:   "union",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return kindNames[KindUnknown]
}

// TypeOf returns the declared type of a node. A type list such as
// ["string","null"] yields its first non-null member.
func TypeOf(node map[string]any) string {
	if node == nil {
		return ""
	}
	switch typed := node["type"].(type) {
	case string:
		return strings.TrimSpace(typed)
	case []any:
		fallback := ""
		for _, entry := range typed {
			name, ok := entry.(string)
			if !ok {
				continue
			}
			if name == "null" {
				fallback = name
				continue
			}
			return name
		}
		return fallback
	}
	return ""
}

// KindOf classifies a node. $ref nodes are not followed; resolve them first.
func KindOf(node map[string]any) Kind {
	if node == nil {
		return KindUnknown
	}
	switch TypeOf(node) {
	case "string":
		return KindString
	case "number":
		return KindNumber
	case "integer":
		return KindInteger
	case "boolean":
		return KindBoolean
	case "object":
		return KindObject
	case "array":
		return KindArray
	case "null":
		return KindNull
	case "":
		if _, ok := node["anyOf"]; ok {
			return KindUnion
		}
		if _, ok := node["oneOf"]; ok {
			return KindUnion
		}
		if _, ok := node["properties"]; ok {
			return KindObject
		}
		if _, ok := node["items"]; ok {
			return KindArray
		}
	}
	return KindUnknown
}

// IsScalar reports whether the kind renders as a single input control.
func (k Kind) IsScalar() bool {
	switch k {
	case KindString, KindNumber, KindInteger, KindBoolean:
		return true
	default:
		return false
	}
}

// IsTransformed reports whether the node was produced by the open-map rewrite.
func IsTransformed(node map[string]any) bool {
	if node == nil {
		return false
	}
	comment, _ := node["$comment"].(string)
	return comment == TransformedPropertyMarker
}

// Properties returns the properties map of a node, or nil.
func Properties(node map[string]any) map[string]any {
	if node == nil {
		return nil
	}
	props, _ := node["properties"].(map[string]any)
	return props
}

// Property returns the named property schema, or nil when it is not declared.
func Property(node map[string]any, name string) map[string]any {
	child, _ := Properties(node)[name].(map[string]any)
	return child
}

// Items returns the items schema of an array node, or nil.
func Items(node map[string]any) map[string]any {
	if node == nil {
		return nil
	}
	items, _ := node["items"].(map[string]any)
	return items
}

// Default returns the declared default and whether one exists.
func Default(node map[string]any) (any, bool) {
	if node == nil {
		return nil, false
	}
	value, ok := node["default"]
	return value, ok
}

// Deprecated reports whether the node is marked deprecated.
func Deprecated(node map[string]any) bool {
	if node == nil {
		return false
	}
	flag, _ := node["deprecated"].(bool)
	return flag
}
