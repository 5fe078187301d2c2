package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/giantswarm/schemaform/internal/config"
	"github.com/giantswarm/schemaform/pkg/preprocess"
	"github.com/giantswarm/schemaform/pkg/prompt"
)

func newPreprocessCommand(opts *config.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "preprocess",
		Short: "Print the normalized schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := newApp(opts)
			raw, err := a.loadSchema(cmd.Context())
			if err != nil {
				return err
			}
			normalized, err := preprocess.Preprocess(raw,
				preprocess.WithFieldsToRemove(opts.FieldsToRemove...),
				preprocess.WithInternalPath(opts.InternalPath),
			)
			if err != nil {
				return err
			}
			return a.writePayload(cmd.OutOrStdout(), normalized)
		},
	}
}

func newValuesCommand(opts *config.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "values [DATA|-]",
		Short: "Reduce persisted values to their difference from the schema defaults",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp(opts)
			session, err := a.newSession(cmd.Context())
			if err != nil {
				return err
			}
			data, err := a.loadData(cmd.Context(), dataArg(args), cmd.InOrStdin())
			if err != nil {
				return err
			}
			result := session.Load(dataArg(args), data)
			return a.writePayload(cmd.OutOrStdout(), result.Payload)
		},
	}
}

func newValidateCommand(opts *config.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [DATA|-]",
		Short: "Validate persisted values against the schema",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp(opts)
			session, err := a.newSession(cmd.Context())
			if err != nil {
				return err
			}
			data, err := a.loadData(cmd.Context(), dataArg(args), cmd.InOrStdin())
			if err != nil {
				return err
			}
			session.Load(dataArg(args), data)
			result, ok := session.Submit()
			if ok {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "valid")
				return err
			}
			for _, e := range result.VisibleErrors {
				property := e.Property
				if property == "" {
					property = "."
				}
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (%s)\n", property, e.Message, e.Name); err != nil {
					return err
				}
			}
			return fmt.Errorf("%d validation errors", len(result.Errors))
		},
	}
}

func newFillCommand(opts *config.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "fill [DATA|-]",
		Short: "Prompt for every field and print the resulting values",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp(opts)
			session, err := a.newSession(cmd.Context())
			if err != nil {
				return err
			}
			data, err := a.loadData(cmd.Context(), dataArg(args), cmd.InOrStdin())
			if err != nil {
				return err
			}
			session.Load(dataArg(args), data)

			result, err := prompt.Fill(cmd.Context(), session, prompt.NewSurveyDriver())
			if err != nil {
				return err
			}
			return a.writePayload(cmd.OutOrStdout(), result.Payload)
		},
	}
}
