package form

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/giantswarm/schemaform/pkg/jsonschema"
	"github.com/giantswarm/schemaform/pkg/schema"
	"github.com/giantswarm/schemaform/pkg/touched"
	"github.com/giantswarm/schemaform/pkg/validation"
)

const appSchema = `{
  "type": "object",
  "required": ["name", "region"],
  "properties": {
    "internal": {"type": "object", "properties": {"labels": {"default": {"team": "core"}}}},
    "name": {"type": "string", "minLength": 3},
    "region": {"type": "string", "default": "eu"},
    "replicas": {"anyOf": [{"deprecated": true, "type": "string"}, {"type": "number", "minimum": 1}]},
    "labels": {"type": "object", "additionalProperties": {"type": "string"}}
  }
}`

func newSession(t *testing.T, opts ...Option) *Session {
	t.Helper()
	raw, err := jsonschema.Parse([]byte(appSchema))
	if err != nil {
		t.Fatalf("parse schema: %v", err)
	}
	s, err := New(raw, opts...)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	return s
}

func properties(errs []validation.Error) []string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Property)
	}
	return out
}

func TestSession_SchemaIsNormalized(t *testing.T) {
	s := newSession(t)
	normalized := s.Schema()

	if schema.Property(normalized, "internal") != nil {
		t.Fatalf("internal subtree should be removed")
	}
	if got := schema.TypeOf(schema.Property(normalized, "replicas")); got != "number" {
		t.Fatalf("expected collapsed union, got type %q", got)
	}
	labels := schema.Property(normalized, "labels")
	if !schema.IsTransformed(labels) {
		t.Fatalf("labels should be transformed")
	}
	if _, ok := schema.Default(labels); !ok {
		t.Fatalf("labels should take its default from the internal subtree")
	}
}

func TestSession_ChangeGatesErrorsByTouchedFields(t *testing.T) {
	s := newSession(t)

	result := s.Change(map[string]any{"name": "ab", "replicas": float64(0)}, "root_name")

	if diff := cmp.Diff([]string{".name", ".region", ".replicas"}, properties(result.Errors)); diff != "" {
		t.Fatalf("unexpected errors (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{".name"}, properties(result.VisibleErrors)); diff != "" {
		t.Fatalf("unexpected visible errors (-want +got):\n%s", diff)
	}

	submitted, ok := s.Submit()
	if ok {
		t.Fatalf("submit should report invalid data")
	}
	if diff := cmp.Diff(properties(submitted.Errors), properties(submitted.VisibleErrors)); diff != "" {
		t.Fatalf("every error should be visible after submit (-want +got):\n%s", diff)
	}
}

func TestSession_ChangeProducesPayload(t *testing.T) {
	s := newSession(t)

	result := s.Change(map[string]any{
		"name":   "demo",
		"region": "eu",
		"labels": []any{
			map[string]any{schema.TransformedPropertyKey: "team", schema.TransformedPropertyValue: "edge"},
			map[string]any{schema.TransformedPropertyKey: "", schema.TransformedPropertyValue: ""},
		},
		"replicas": nil,
	}, "root_labels")

	wantData := map[string]any{
		"name":   "demo",
		"region": "eu",
		"labels": []any{
			map[string]any{schema.TransformedPropertyKey: "team", schema.TransformedPropertyValue: "edge"},
			map[string]any{},
		},
	}
	if diff := cmp.Diff(wantData, result.Data); diff != "" {
		t.Fatalf("unexpected data (-want +got):\n%s", diff)
	}

	wantPayload := map[string]any{
		"name":   "demo",
		"labels": map[string]any{"team": "edge"},
	}
	if diff := cmp.Diff(wantPayload, result.Payload); diff != "" {
		t.Fatalf("unexpected payload (-want +got):\n%s", diff)
	}
}

func TestSession_LoadResetsOnResourceChange(t *testing.T) {
	s := newSession(t)

	s.Load("cluster-a", nil)
	s.Change(map[string]any{"name": "x"}, "root_name")
	if !s.Touched().Has("root_name") {
		t.Fatalf("expected root_name to be touched")
	}

	s.Load("cluster-a", map[string]any{"name": "demo"})
	if !s.Touched().Has("root_name") {
		t.Fatalf("reloading the same resource must keep touched fields")
	}

	result := s.Load("cluster-b", map[string]any{"name": "demo", "labels": map[string]any{"a": "1"}})
	if s.Touched().Len() != 0 {
		t.Fatalf("switching resources must reset touched fields, got %v", s.Touched().Fields())
	}
	wantLabels := []any{map[string]any{schema.TransformedPropertyKey: "a", schema.TransformedPropertyValue: "1"}}
	if diff := cmp.Diff(wantLabels, result.Data.(map[string]any)["labels"]); diff != "" {
		t.Fatalf("unexpected shaped labels (-want +got):\n%s", diff)
	}
	if result.VisibleErrors != nil {
		t.Fatalf("nothing should be visible after a reset, got %#v", result.VisibleErrors)
	}
}

func TestSession_ToggleAndReset(t *testing.T) {
	s := newSession(t, WithIDOptions(touched.IDOptions{Prefix: "form", Separator: "."}))

	s.Change(map[string]any{}, "")
	state := s.Toggle("form.name", "form.region")
	if diff := cmp.Diff([]string{"form.name", "form.region"}, state.Fields()); diff != "" {
		t.Fatalf("unexpected touched fields (-want +got):\n%s", diff)
	}
	result, _ := s.Submit()
	if len(result.VisibleErrors) != 2 {
		t.Fatalf("expected required errors on both toggled fields, got %#v", result.VisibleErrors)
	}

	result = s.Reset()
	if s.Touched().Len() != 0 || result.VisibleErrors != nil {
		t.Fatalf("reset should clear touched fields")
	}
	if diff := cmp.Diff(map[string]any{}, result.Data); diff != "" {
		t.Fatalf("reset should clear data (-want +got):\n%s", diff)
	}
}

func TestSession_UncompilableSchemaSkipsValidation(t *testing.T) {
	s, err := New(map[string]any{
		"type":       "object",
		"properties": map[string]any{"x": map[string]any{"type": float64(12)}},
	})
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	result := s.Change(map[string]any{"x": "a"}, "root_x")
	if result.Errors != nil {
		t.Fatalf("expected no validation, got %#v", result.Errors)
	}
}

func TestSession_WithoutValidation(t *testing.T) {
	s := newSession(t, WithoutValidation())
	if _, ok := s.Submit(); !ok {
		t.Fatalf("a session without validation always submits")
	}
}
