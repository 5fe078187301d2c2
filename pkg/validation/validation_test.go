package validation

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/giantswarm/schemaform/pkg/jsonschema"
)

const clusterSchema = `{
  "type": "object",
  "required": ["name"],
  "$defs": {
    "pool": {
      "type": "object",
      "required": ["instanceType"],
      "properties": {
        "instanceType": {"type": "string", "minLength": 2},
        "maxSize": {"type": "integer", "minimum": 1}
      }
    }
  },
  "properties": {
    "name": {"type": "string"},
    "replicas": {"type": "number", "minimum": 3},
    "pools": {"type": "array", "items": {"$ref": "#/$defs/pool"}}
  }
}`

func compileFixture(t *testing.T) *Validator {
	t.Helper()
	raw, err := jsonschema.Parse([]byte(clusterSchema))
	if err != nil {
		t.Fatalf("parse schema: %v", err)
	}
	v, err := Compile(raw)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	return v
}

func parseData(t *testing.T, raw string) any {
	t.Helper()
	value, err := jsonschema.ParseValue([]byte(raw))
	if err != nil {
		t.Fatalf("parse data: %v", err)
	}
	return value
}

func TestValidate_Valid(t *testing.T) {
	v := compileFixture(t)
	if errs := v.Validate(parseData(t, `{"name":"a","replicas":3}`)); errs != nil {
		t.Fatalf("expected no errors, got %#v", errs)
	}
}

func TestValidate_ReportsLeafErrors(t *testing.T) {
	v := compileFixture(t)

	errs := v.Validate(parseData(t, `{
  "replicas": 1,
  "pools": [{"maxSize": 0}]
}`))

	type summary struct {
		Property string
		Name     string
	}
	got := make([]summary, 0, len(errs))
	for _, e := range errs {
		got = append(got, summary{Property: e.Property, Name: e.Name})
		if e.Message == "" {
			t.Fatalf("error %q has no message", e.Property)
		}
	}
	want := []summary{
		{Property: ".name", Name: "required"},
		{Property: ".pools.0.instanceType", Name: "required"},
		{Property: ".pools.0.maxSize", Name: "minimum"},
		{Property: ".replicas", Name: "minimum"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected errors (-want +got):\n%s", diff)
	}
}

func TestValidate_RequiredParams(t *testing.T) {
	v := compileFixture(t)

	errs := v.Validate(map[string]any{})
	if len(errs) != 1 {
		t.Fatalf("expected one error, got %#v", errs)
	}
	want := Error{
		Property: ".name",
		Message:  "must have required property 'name'",
		Name:     "required",
		Params:   map[string]any{"missingProperty": "name"},
	}
	if diff := cmp.Diff(want, errs[0]); diff != "" {
		t.Fatalf("unexpected error (-want +got):\n%s", diff)
	}
}

func TestValidate_TypeMismatch(t *testing.T) {
	v := compileFixture(t)

	errs := v.Validate(parseData(t, `{"name": 5}`))
	if len(errs) != 1 || errs[0].Property != ".name" || errs[0].Name != "type" {
		t.Fatalf("unexpected errors: %#v", errs)
	}
}

func TestCompile_Errors(t *testing.T) {
	if _, err := Compile(nil); err == nil {
		t.Fatalf("expected error for nil schema")
	}
	if _, err := Compile(map[string]any{"type": 12}); err == nil {
		t.Fatalf("expected error for invalid schema")
	}
}

func TestPropertyPath(t *testing.T) {
	tests := []struct {
		in   []string
		want string
	}{
		{in: nil, want: ""},
		{in: []string{"a"}, want: ".a"},
		{in: []string{"a", "0", "b"}, want: ".a.0.b"},
	}
	for _, tt := range tests {
		if got := PropertyPath(tt.in); got != tt.want {
			t.Fatalf("PropertyPath(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
