// Package testsupport holds fixture and golden helpers shared by package tests.
package testsupport

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/giantswarm/schemaform/pkg/jsonschema"
)

// MustLoadSchema reads a JSON or YAML schema fixture.
func MustLoadSchema(t *testing.T, path string) map[string]any {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read schema fixture: %v", err)
	}
	out, err := jsonschema.Parse(data)
	if err != nil {
		t.Fatalf("parse schema fixture %s: %v", path, err)
	}
	return out
}

// MustLoadValue reads a JSON or YAML data fixture.
func MustLoadValue(t *testing.T, path string) any {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read value fixture: %v", err)
	}
	out, err := jsonschema.ParseValue(data)
	if err != nil {
		t.Fatalf("parse value fixture %s: %v", path, err)
	}
	return out
}

// WriteGolden writes value as indented JSON when UPDATE_GOLDENS is set.
// Returns true if the golden was written.
func WriteGolden(t *testing.T, path string, value any) bool {
	t.Helper()

	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		t.Fatalf("marshal golden: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, append(payload, '\n'), 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// CompareGolden decodes the golden at path and diffs it against got after a
// JSON round trip, so numeric and container types line up.
func CompareGolden(t *testing.T, path string, got any) string {
	t.Helper()

	want := MustLoadValue(t, path)
	encoded, err := json.Marshal(got)
	if err != nil {
		t.Fatalf("marshal result: %v", err)
	}
	normalized, err := jsonschema.ParseValue(encoded)
	if err != nil {
		t.Fatalf("decode result: %v", err)
	}
	return cmp.Diff(want, normalized)
}
