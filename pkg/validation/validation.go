// Package validation runs JSON Schema validation over form data and reports
// failures in the flat {property, message, name, params} shape form shells
// consume.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/santhosh-tekuri/jsonschema/v6/kind"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	pkgjsonschema "github.com/giantswarm/schemaform/pkg/jsonschema"
)

const resourceURL = "schema.json"

// Error is a single validation failure. Property is a dot path relative to the
// schema root (".spec.nodePools.0.name"); it is empty for root-level errors.
type Error struct {
	Property string         `json:"property"`
	Message  string         `json:"message"`
	Name     string         `json:"name"`
	Params   map[string]any `json:"params,omitempty"`
}

// Validator validates data against a compiled schema.
type Validator struct {
	schema  *jsonschema.Schema
	printer *message.Printer
}

// Option configures Compile.
type Option func(*Validator)

// WithLanguage selects the language used to render messages.
func WithLanguage(tag language.Tag) Option {
	return func(v *Validator) {
		v.printer = message.NewPrinter(tag)
	}
}

// Compile compiles schema as a Draft 2020-12 document. The schema is copied,
// later changes to the map do not affect the validator.
func Compile(schema map[string]any, opts ...Option) (*Validator, error) {
	if schema == nil {
		return nil, errors.New("validation: schema is nil")
	}

	compiler := jsonschema.NewCompiler()
	compiler.DefaultDraft(jsonschema.Draft2020)
	if err := compiler.AddResource(resourceURL, pkgjsonschema.CloneSchema(schema)); err != nil {
		return nil, fmt.Errorf("validation: add schema: %w", err)
	}
	compiled, err := compiler.Compile(resourceURL)
	if err != nil {
		return nil, fmt.Errorf("validation: compile schema: %w", err)
	}

	v := &Validator{
		schema:  compiled,
		printer: message.NewPrinter(language.English),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

// Validate returns the leaf failures for data sorted by property and keyword.
// A nil slice means data is valid.
func (v *Validator) Validate(data any) []Error {
	if v == nil || v.schema == nil {
		return nil
	}
	err := v.schema.Validate(data)
	if err == nil {
		return nil
	}

	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return []Error{{Name: "invalid", Message: strings.TrimSpace(err.Error())}}
	}

	var out []Error
	v.collect(verr, &out)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Property != out[j].Property {
			return out[i].Property < out[j].Property
		}
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Message < out[j].Message
	})
	return out
}

func (v *Validator) collect(verr *jsonschema.ValidationError, out *[]Error) {
	if len(verr.Causes) > 0 {
		for _, cause := range verr.Causes {
			v.collect(cause, out)
		}
		return
	}

	property := PropertyPath(verr.InstanceLocation)
	if required, ok := verr.ErrorKind.(*kind.Required); ok {
		for _, missing := range required.Missing {
			*out = append(*out, Error{
				Property: property + "." + missing,
				Message:  v.printer.Sprintf("must have required property '%s'", missing),
				Name:     "required",
				Params:   map[string]any{"missingProperty": missing},
			})
		}
		return
	}

	*out = append(*out, Error{
		Property: property,
		Message:  verr.ErrorKind.LocalizedString(v.printer),
		Name:     keyword(verr.ErrorKind),
		Params:   params(verr.ErrorKind),
	})
}

// PropertyPath joins an instance location into the dotted property form,
// e.g. ["spec", "pools", "0"] becomes ".spec.pools.0".
func PropertyPath(location []string) string {
	if len(location) == 0 {
		return ""
	}
	return "." + strings.Join(location, ".")
}

func keyword(k jsonschema.ErrorKind) string {
	path := k.KeywordPath()
	if len(path) == 0 {
		return "schema"
	}
	return path[len(path)-1]
}

// params exposes the error kind fields as a generic map. Kinds without
// exported fields yield nil.
func params(k jsonschema.ErrorKind) map[string]any {
	raw, err := json.Marshal(k)
	if err != nil {
		return nil
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil || len(out) == 0 {
		return nil
	}
	normalized := make(map[string]any, len(out))
	for key, value := range out {
		normalized[lowerFirst(key)] = value
	}
	return normalized
}

func lowerFirst(value string) string {
	if value == "" {
		return value
	}
	return strings.ToLower(value[:1]) + value[1:]
}
