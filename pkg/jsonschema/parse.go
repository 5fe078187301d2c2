package jsonschema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/giantswarm/schemaform/pkg/schema"
)

// Parse decodes a JSON or YAML document that must hold an object, such as a
// schema or a values file.
func Parse(raw []byte) (map[string]any, error) {
	value, err := ParseValue(raw)
	if err != nil {
		return nil, err
	}
	return asObject(value)
}

// ParseValue decodes a JSON or YAML document into JSON-compatible Go values:
// map[string]any, []any, string, float64, bool and nil. The encoding is
// sniffed: input that looks like JSON takes the encoding/json path so numbers
// keep their exact float64 rendering, anything else is read as YAML.
func ParseValue(raw []byte) (any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, errors.New("jsonschema: document is empty")
	}
	if trimmed[0] == '{' || trimmed[0] == '[' {
		if value, err := decodeJSON(trimmed); err == nil {
			return value, nil
		}
	}
	return decodeYAML(trimmed)
}

// ParseDocument decodes a loaded document with the parser its Format names.
// A .json document must be valid JSON; YAML documents also accept JSON.
func ParseDocument(doc schema.Document) (any, error) {
	raw := bytes.TrimSpace(doc.Raw())
	if len(raw) == 0 {
		return nil, errors.New("jsonschema: document is empty")
	}
	if doc.Format() == schema.FormatJSON {
		return decodeJSON(raw)
	}
	return decodeYAML(raw)
}

func asObject(value any) (map[string]any, error) {
	if value == nil {
		return nil, errors.New("jsonschema: document is null")
	}
	payload, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("jsonschema: document must be an object, got %T", value)
	}
	return payload, nil
}

func decodeJSON(raw []byte) (any, error) {
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, fmt.Errorf("jsonschema: parse json: %w", err)
	}
	return value, nil
}

func decodeYAML(raw []byte) (any, error) {
	var value any
	if err := yaml.Unmarshal(raw, &value); err != nil {
		return nil, fmt.Errorf("jsonschema: parse document: %w", err)
	}
	return normalizeYAML(value, "#")
}

func normalizeYAML(value any, path string) (any, error) {
	switch typed := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, child := range typed {
			converted, err := normalizeYAML(child, joinPointer(path, key))
			if err != nil {
				return nil, err
			}
			out[key] = converted
		}
		return out, nil
	case map[any]any:
		out := make(map[string]any, len(typed))
		for key, child := range typed {
			name := fmt.Sprint(key)
			converted, err := normalizeYAML(child, joinPointer(path, name))
			if err != nil {
				return nil, err
			}
			out[name] = converted
		}
		return out, nil
	case []any:
		out := make([]any, len(typed))
		for idx, child := range typed {
			converted, err := normalizeYAML(child, joinPointer(path, fmt.Sprint(idx)))
			if err != nil {
				return nil, err
			}
			out[idx] = converted
		}
		return out, nil
	case int:
		return float64(typed), nil
	case int64:
		return float64(typed), nil
	case uint64:
		return float64(typed), nil
	case float64:
		if math.IsInf(typed, 0) || math.IsNaN(typed) {
			return nil, fmt.Errorf("jsonschema: non-finite number at %s", path)
		}
		return typed, nil
	case time.Time:
		return typed.Format(time.RFC3339), nil
	default:
		return typed, nil
	}
}
