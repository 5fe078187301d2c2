package jsonschema

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/giantswarm/schemaform/pkg/schema"
)

// Loader fetches schema and values documents from files, an fs.FS, or HTTP.
// The implementation lives under internal/jsonschema/loader.
type Loader interface {
	Load(ctx context.Context, src schema.Source) (schema.Document, error)
}

// LoaderOptions configures how a Loader resolves sources.
type LoaderOptions struct {
	// FileSystem serves SourceKindFS lookups.
	FileSystem fs.FS

	// HTTPClient enables URL sources. Nil disables them unless
	// AllowHTTPFallback is set.
	HTTPClient *http.Client

	// AllowHTTPFallback enables URL sources with a default client.
	AllowHTTPFallback bool

	// RequestTimeout caps remote fetch durations.
	RequestTimeout time.Duration

	// MaxDocumentBytes rejects documents larger than this. Zero applies the
	// package default.
	MaxDocumentBytes int64
}

// LoaderOption mutates LoaderOptions prior to construction.
type LoaderOption func(*LoaderOptions)

// WithFileSystem injects an fs.FS implementation for SourceKindFS sources.
func WithFileSystem(files fs.FS) LoaderOption {
	return func(opts *LoaderOptions) {
		opts.FileSystem = files
	}
}

// WithHTTPClient injects a custom HTTP client for remote documents.
func WithHTTPClient(client *http.Client) LoaderOption {
	return func(opts *LoaderOptions) {
		opts.HTTPClient = client
	}
}

// WithHTTPFallback enables HTTP loading with a default client and timeout.
func WithHTTPFallback(timeout time.Duration) LoaderOption {
	return func(opts *LoaderOptions) {
		opts.AllowHTTPFallback = true
		opts.RequestTimeout = timeout
	}
}

// WithMaxDocumentBytes caps the accepted document size.
func WithMaxDocumentBytes(limit int64) LoaderOption {
	return func(opts *LoaderOptions) {
		opts.MaxDocumentBytes = limit
	}
}

// DefaultMaxDocumentBytes is applied when LoaderOptions.MaxDocumentBytes is zero.
const DefaultMaxDocumentBytes = int64(5 << 20)

// NewLoaderOptions applies a set of LoaderOption values and returns the
// resulting configuration.
func NewLoaderOptions(options ...LoaderOption) LoaderOptions {
	cfg := LoaderOptions{}
	for _, opt := range options {
		opt(&cfg)
	}
	if cfg.MaxDocumentBytes <= 0 {
		cfg.MaxDocumentBytes = DefaultMaxDocumentBytes
	}
	return cfg
}

// LoadSchema fetches a document and decodes it into a schema object.
func LoadSchema(ctx context.Context, loader Loader, src schema.Source) (map[string]any, error) {
	value, err := LoadValue(ctx, loader, src)
	if err != nil {
		return nil, err
	}
	return asObject(value)
}

// LoadValue fetches a document and decodes it into an arbitrary value.
func LoadValue(ctx context.Context, loader Loader, src schema.Source) (any, error) {
	doc, err := load(ctx, loader, src)
	if err != nil {
		return nil, err
	}
	value, err := ParseDocument(doc)
	if err != nil {
		return nil, fmt.Errorf("jsonschema: %s: %w", doc.Location(), err)
	}
	return value, nil
}

func load(ctx context.Context, loader Loader, src schema.Source) (schema.Document, error) {
	if loader == nil {
		return schema.Document{}, fmt.Errorf("jsonschema: loader is nil")
	}
	doc, err := loader.Load(ctx, src)
	if err != nil {
		return schema.Document{}, fmt.Errorf("jsonschema: load %s: %w", locationOf(src), err)
	}
	return doc, nil
}

func locationOf(src schema.Source) string {
	if src == nil {
		return "<nil>"
	}
	return src.Location()
}
