// Package app implements the schemaform command line.
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"github.com/giantswarm/schemaform/internal/config"
	"github.com/giantswarm/schemaform/internal/jsonschema/loader"
	"github.com/giantswarm/schemaform/pkg/form"
	pkgjsonschema "github.com/giantswarm/schemaform/pkg/jsonschema"
	"github.com/giantswarm/schemaform/pkg/schema"
	"github.com/giantswarm/schemaform/pkg/values"
)

// NewSchemaformCommand creates a *cobra.Command object with default parameters
func NewSchemaformCommand() *cobra.Command {
	opts := config.NewOptions()

	cmd := &cobra.Command{
		Use:          "schemaform",
		Short:        "Normalize JSON Schemas for form rendering and derive minimal values payloads",
		SilenceUsage: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			if errs := opts.Validate(); len(errs) != 0 {
				return fmt.Errorf("configuration is not valid: %v", errs.ToAggregate())
			}
			return nil
		},
	}

	opts.AddFlags(cmd.PersistentFlags())
	addKlogFlags(cmd.PersistentFlags())

	cmd.AddCommand(
		newPreprocessCommand(opts),
		newValuesCommand(opts),
		newValidateCommand(opts),
		newFillCommand(opts),
	)
	return cmd
}

type app struct {
	opts   *config.Options
	loader pkgjsonschema.Loader
}

func newApp(opts *config.Options) *app {
	return &app{
		opts:   opts,
		loader: loader.New(opts.LoaderOptions()),
	}
}

func (a *app) loadSchema(ctx context.Context) (map[string]any, error) {
	src, err := schema.ParseSource(a.opts.Schema)
	if err != nil {
		return nil, err
	}
	if a.opts.OpenAPIComponent == "" {
		return pkgjsonschema.LoadSchema(ctx, a.loader, src)
	}
	doc, err := a.loader.Load(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", src.Location(), err)
	}
	return pkgjsonschema.FromOpenAPIComponent(ctx, doc.Raw(), a.opts.OpenAPIComponent)
}

func (a *app) newSession(ctx context.Context) (*form.Session, error) {
	raw, err := a.loadSchema(ctx)
	if err != nil {
		return nil, err
	}
	klog.V(2).Infof("loaded schema from %s", a.opts.Schema)
	return form.New(raw, a.opts.SessionOptions()...)
}

// loadData reads persisted values from path, or from stdin when path is "-".
// An empty path yields no data.
func (a *app) loadData(ctx context.Context, path string, stdin io.Reader) (any, error) {
	path = strings.TrimSpace(path)
	switch path {
	case "":
		return nil, nil
	case "-":
		raw, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return pkgjsonschema.ParseValue(raw)
	}
	src, err := schema.ParseSource(path)
	if err != nil {
		return nil, err
	}
	return pkgjsonschema.LoadValue(ctx, a.loader, src)
}

func (a *app) writePayload(out io.Writer, payload any) error {
	var (
		encoded []byte
		err     error
	)
	switch a.opts.Output {
	case config.OutputJSON:
		if payload == nil {
			payload = map[string]any{}
		}
		encoded, err = json.MarshalIndent(payload, "", "  ")
		encoded = append(encoded, '\n')
	case config.OutputConfigMap:
		cm, cmErr := values.ConfigMap(a.opts.Name, a.opts.Namespace, payload)
		if cmErr != nil {
			return cmErr
		}
		encoded, err = values.Manifest(cm)
	default:
		encoded, err = values.YAML(payload)
	}
	if err != nil {
		return err
	}
	_, err = out.Write(encoded)
	return err
}

func dataArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
