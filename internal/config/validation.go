package config

import (
	"k8s.io/apimachinery/pkg/util/validation/field"
)

// Validate checks Options and return a slice of found errs.
func (o *Options) Validate() field.ErrorList {
	errs := field.ErrorList{}
	rootPath := field.NewPath("Options")

	if o.Schema == "" {
		errs = append(errs, field.Required(rootPath.Child("Schema"), "a schema path or URL is required"))
	}
	if o.HTTPTimeout <= 0 {
		errs = append(errs, field.Invalid(rootPath.Child("HTTPTimeout"), o.HTTPTimeout, "must be positive"))
	}
	if o.MaxSchemaBytes <= 0 {
		errs = append(errs, field.Invalid(rootPath.Child("MaxSchemaBytes"), o.MaxSchemaBytes, "must be positive"))
	}
	if o.IDSeparator == "" {
		errs = append(errs, field.Required(rootPath.Child("IDSeparator"), "a separator is required"))
	}
	switch o.TouchedMatcher {
	case MatcherSubstring, MatcherHierarchical:
	default:
		errs = append(errs, field.NotSupported(rootPath.Child("TouchedMatcher"), o.TouchedMatcher, []string{MatcherSubstring, MatcherHierarchical}))
	}
	switch o.Output {
	case OutputYAML, OutputJSON:
	case OutputConfigMap:
		if o.Name == "" {
			errs = append(errs, field.Required(rootPath.Child("Name"), "required for configmap output"))
		}
	default:
		errs = append(errs, field.NotSupported(rootPath.Child("Output"), o.Output, []string{OutputYAML, OutputJSON, OutputConfigMap}))
	}

	return errs
}
