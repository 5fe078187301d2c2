// Package config holds the command line options of schemaform.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/giantswarm/schemaform/pkg/form"
	pkgjsonschema "github.com/giantswarm/schemaform/pkg/jsonschema"
	"github.com/giantswarm/schemaform/pkg/preprocess"
	"github.com/giantswarm/schemaform/pkg/touched"
)

// EnvPrefix prefixes every environment variable read by NewOptions.
const EnvPrefix = "SCHEMAFORM_"

// Output formats accepted by --output.
const (
	OutputYAML      = "yaml"
	OutputJSON      = "json"
	OutputConfigMap = "configmap"
)

// Matchers accepted by --touched-matcher.
const (
	MatcherSubstring    = "substring"
	MatcherHierarchical = "hierarchical"
)

const (
	defaultHTTPTimeout = 10 * time.Second
)

// Options contains everything the commands need to load a schema and render
// its payload.
type Options struct {
	// Schema is a file path or http(s) URL.
	Schema string
	// OpenAPIComponent selects a component schema when Schema is an OpenAPI
	// document.
	OpenAPIComponent string
	FieldsToRemove   []string
	InternalPath     string

	AllowHTTP      bool
	HTTPTimeout    time.Duration
	MaxSchemaBytes int64

	IDPrefix       string
	IDSeparator    string
	TouchedMatcher string
	Sanitize       bool

	Output    string
	Name      string
	Namespace string
}

// NewOptions builds options with defaults, overridden by SCHEMAFORM_*
// environment variables.
func NewOptions() *Options {
	o := &Options{
		FieldsToRemove: []string{preprocess.DefaultInternalPath},
		InternalPath:   preprocess.DefaultInternalPath,
		HTTPTimeout:    defaultHTTPTimeout,
		MaxSchemaBytes: pkgjsonschema.DefaultMaxDocumentBytes,
		IDPrefix:       touched.DefaultIDPrefix,
		IDSeparator:    touched.DefaultIDSeparator,
		TouchedMatcher: MatcherSubstring,
		Output:         OutputYAML,
		Namespace:      "default",
	}

	o.Schema = envString("SCHEMA", o.Schema)
	o.OpenAPIComponent = envString("OPENAPI_COMPONENT", o.OpenAPIComponent)
	if raw, ok := os.LookupEnv(EnvPrefix + "REMOVE_FIELDS"); ok {
		o.FieldsToRemove = splitList(raw)
	}
	o.InternalPath = envString("INTERNAL_PATH", o.InternalPath)
	o.AllowHTTP = envBool("ALLOW_HTTP", o.AllowHTTP)
	o.HTTPTimeout = envDuration("HTTP_TIMEOUT", o.HTTPTimeout)
	o.IDPrefix = envString("ID_PREFIX", o.IDPrefix)
	o.IDSeparator = envString("ID_SEPARATOR", o.IDSeparator)
	o.TouchedMatcher = envString("TOUCHED_MATCHER", o.TouchedMatcher)
	o.Sanitize = envBool("SANITIZE", o.Sanitize)
	o.Output = envString("OUTPUT", o.Output)
	o.Name = envString("NAME", o.Name)
	o.Namespace = envString("NAMESPACE", o.Namespace)
	return o
}

// LoadDotEnv loads variables from the given files into the environment
// without overriding variables that are already set. Missing files are
// ignored.
func LoadDotEnv(paths ...string) error {
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("config: load %s: %w", path, err)
		}
	}
	return nil
}

// AddFlags adds flags to the specified FlagSet.
func (o *Options) AddFlags(flags *pflag.FlagSet) {
	flags.StringVar(&o.Schema, "schema", o.Schema, "Path or http(s) URL of the JSON Schema, YAML schema or OpenAPI document.")
	flags.StringVar(&o.OpenAPIComponent, "openapi-component", o.OpenAPIComponent, "Name of the components.schemas entry to use when --schema is an OpenAPI document.")
	flags.StringSliceVar(&o.FieldsToRemove, "remove-field", o.FieldsToRemove, "Dotted schema path removed before preprocessing. Repeatable; replaces the default.")
	flags.StringVar(&o.InternalPath, "internal-path", o.InternalPath, "Schema path holding shadow defaults for transformed maps. Empty disables the lookup.")
	flags.BoolVar(&o.AllowHTTP, "allow-http", o.AllowHTTP, "Allow loading the schema over http(s).")
	flags.DurationVar(&o.HTTPTimeout, "http-timeout", o.HTTPTimeout, "Timeout for fetching a remote schema.")
	flags.Int64Var(&o.MaxSchemaBytes, "max-schema-bytes", o.MaxSchemaBytes, "Maximum size of a schema document.")
	flags.StringVar(&o.IDPrefix, "id-prefix", o.IDPrefix, "Prefix of form field ids.")
	flags.StringVar(&o.IDSeparator, "id-separator", o.IDSeparator, "Separator of form field id segments.")
	flags.StringVar(&o.TouchedMatcher, "touched-matcher", o.TouchedMatcher, "How touched fields cover nested fields: substring or hierarchical.")
	flags.BoolVar(&o.Sanitize, "sanitize", o.Sanitize, "Strip markup from validation messages.")
	flags.StringVarP(&o.Output, "output", "o", o.Output, "Output format: yaml, json or configmap.")
	flags.StringVar(&o.Name, "name", o.Name, "Name of the generated ConfigMap.")
	flags.StringVar(&o.Namespace, "namespace", o.Namespace, "Namespace of the generated ConfigMap.")
}

// LoaderOptions returns the schema loader configuration.
func (o *Options) LoaderOptions() pkgjsonschema.LoaderOptions {
	opts := []pkgjsonschema.LoaderOption{pkgjsonschema.WithMaxDocumentBytes(o.MaxSchemaBytes)}
	if o.AllowHTTP {
		opts = append(opts, pkgjsonschema.WithHTTPFallback(o.HTTPTimeout))
	}
	return pkgjsonschema.NewLoaderOptions(opts...)
}

// SessionOptions returns the form session configuration.
func (o *Options) SessionOptions() []form.Option {
	opts := []form.Option{
		form.WithPreprocessOptions(
			preprocess.WithFieldsToRemove(o.FieldsToRemove...),
			preprocess.WithInternalPath(o.InternalPath),
		),
		form.WithIDOptions(touched.IDOptions{Prefix: o.IDPrefix, Separator: o.IDSeparator}),
	}
	if o.TouchedMatcher == MatcherHierarchical {
		opts = append(opts, form.WithMatcher(touched.IsTouchedHierarchical))
	}
	if o.Sanitize {
		opts = append(opts, form.WithSanitizedMessages())
	}
	return opts
}

func envString(key, fallback string) string {
	if value, ok := os.LookupEnv(EnvPrefix + key); ok {
		return strings.TrimSpace(value)
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	raw, ok := os.LookupEnv(EnvPrefix + key)
	if !ok {
		return fallback
	}
	value, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return fallback
	}
	return value
}

func envDuration(key string, fallback time.Duration) time.Duration {
	raw, ok := os.LookupEnv(EnvPrefix + key)
	if !ok {
		return fallback
	}
	value, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return fallback
	}
	return value
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
