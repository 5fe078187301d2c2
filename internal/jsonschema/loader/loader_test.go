package loader

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	pkgjsonschema "github.com/giantswarm/schemaform/pkg/jsonschema"
	"github.com/giantswarm/schemaform/pkg/schema"
)

const schemaYAML = "type: object\nproperties:\n  name:\n    type: string\n"

func TestLoader_FS(t *testing.T) {
	files := fstest.MapFS{"schemas/app.yaml": {Data: []byte(schemaYAML)}}
	l := New(pkgjsonschema.NewLoaderOptions(pkgjsonschema.WithFileSystem(files)))

	got, err := pkgjsonschema.LoadSchema(context.Background(), l, schema.SourceFromFS("schemas/app.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := map[string]any{
		"type":       "object",
		"properties": map[string]any{"name": map[string]any{"type": "string"}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected schema (-want +got):\n%s", diff)
	}
}

func TestLoader_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "values.json")
	if err := os.WriteFile(path, []byte(`{"replicas":2}`), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	l := New(pkgjsonschema.NewLoaderOptions())
	got, err := pkgjsonschema.LoadValue(context.Background(), l, schema.SourceFromFile(path))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(map[string]any{"replicas": float64(2)}, got); diff != "" {
		t.Fatalf("unexpected value (-want +got):\n%s", diff)
	}
}

func TestLoader_HTTPDisabledByDefault(t *testing.T) {
	src, err := schema.SourceFromURL("https://example.com/schema.json")
	if err != nil {
		t.Fatalf("source: %v", err)
	}
	l := New(pkgjsonschema.NewLoaderOptions())
	if _, err := l.Load(context.Background(), src); err == nil {
		t.Fatalf("expected http loading to be disabled")
	}
}

func TestLoader_HTTP(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/schema.json" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"type":"string"}`))
	}))
	defer server.Close()

	l := New(pkgjsonschema.NewLoaderOptions(pkgjsonschema.WithHTTPClient(server.Client())))

	src, err := schema.SourceFromURL(server.URL + "/schema.json")
	if err != nil {
		t.Fatalf("source: %v", err)
	}
	doc, err := l.Load(context.Background(), src)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(doc.Raw()) != `{"type":"string"}` {
		t.Fatalf("unexpected body %q", doc.Raw())
	}

	missing, err := schema.SourceFromURL(server.URL + "/missing.json")
	if err != nil {
		t.Fatalf("source: %v", err)
	}
	if _, err := l.Load(context.Background(), missing); err == nil {
		t.Fatalf("expected error for 404")
	}
}

func TestLoader_SizeLimit(t *testing.T) {
	files := fstest.MapFS{"big.json": {Data: []byte(`{"a":"0123456789"}`)}}
	l := New(pkgjsonschema.NewLoaderOptions(
		pkgjsonschema.WithFileSystem(files),
		pkgjsonschema.WithMaxDocumentBytes(8),
	))
	if _, err := l.Load(context.Background(), schema.SourceFromFS("big.json")); err == nil {
		t.Fatalf("expected size limit error")
	}
}

func TestLoader_ParsesByDocumentFormat(t *testing.T) {
	files := fstest.MapFS{
		"values.json":  {Data: []byte("replicas: 2\n")},
		"values.yaml":  {Data: []byte("replicas: 2\n")},
		"values.yml":   {Data: []byte(`{"replicas": 2}`)},
		"values.noext": {Data: []byte("replicas: 2\n")},
	}
	l := New(pkgjsonschema.NewLoaderOptions(pkgjsonschema.WithFileSystem(files)))
	want := map[string]any{"replicas": float64(2)}

	if _, err := pkgjsonschema.LoadValue(context.Background(), l, schema.SourceFromFS("values.json")); err == nil {
		t.Fatalf("expected a .json document holding YAML to be rejected")
	}
	for _, name := range []string{"values.yaml", "values.yml", "values.noext"} {
		got, err := pkgjsonschema.LoadValue(context.Background(), l, schema.SourceFromFS(name))
		if err != nil {
			t.Fatalf("load %s: %v", name, err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("unexpected value for %s (-want +got):\n%s", name, diff)
		}
	}
}
