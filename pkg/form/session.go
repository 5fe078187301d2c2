// Package form composes the preprocessor, the payload helpers, validation and
// the touched-field tracker into a single editing session.
package form

import (
	"fmt"

	"k8s.io/klog/v2"

	"github.com/giantswarm/schemaform/pkg/jsonschema"
	"github.com/giantswarm/schemaform/pkg/payload"
	"github.com/giantswarm/schemaform/pkg/preprocess"
	"github.com/giantswarm/schemaform/pkg/touched"
	"github.com/giantswarm/schemaform/pkg/validation"
)

// Result is the outcome of one change.
type Result struct {
	// Data is the cleaned form data fed back into the form.
	Data any
	// Payload is the persisted form of Data: defaults removed, maps restored.
	Payload any
	// Errors holds every validation failure for Data.
	Errors []validation.Error
	// VisibleErrors holds the failures on touched fields.
	VisibleErrors []validation.Error
}

type options struct {
	preprocess   []preprocess.Option
	clean        payload.CleanOptions
	ids          touched.IDOptions
	matcher      touched.Matcher
	sanitize     bool
	skipValidate bool
}

// Option configures a Session.
type Option func(*options)

// WithPreprocessOptions forwards options to the schema preprocessor.
func WithPreprocessOptions(opts ...preprocess.Option) Option {
	return func(o *options) {
		o.preprocess = append(o.preprocess, opts...)
	}
}

// WithCleanOptions replaces payload.DefaultCleanOptions.
func WithCleanOptions(clean payload.CleanOptions) Option {
	return func(o *options) {
		o.clean = clean
	}
}

// WithIDOptions sets the field id prefix and separator.
func WithIDOptions(ids touched.IDOptions) Option {
	return func(o *options) {
		o.ids = ids
	}
}

// WithMatcher selects how touched fields cover error fields.
func WithMatcher(matcher touched.Matcher) Option {
	return func(o *options) {
		o.matcher = matcher
	}
}

// WithSanitizedMessages strips markup from visible error messages.
func WithSanitizedMessages() Option {
	return func(o *options) {
		o.sanitize = true
	}
}

// WithoutValidation disables schema validation.
func WithoutValidation() Option {
	return func(o *options) {
		o.skipValidate = true
	}
}

// Session tracks one form. It is not safe for concurrent use.
type Session struct {
	opts      options
	schema    map[string]any
	validator *validation.Validator

	resourceID string
	data       any
	state      touched.State
	errors     []validation.Error
}

// New preprocesses raw and prepares a session for it. A schema the validator
// cannot compile leaves the session usable without validation.
func New(raw map[string]any, opts ...Option) (*Session, error) {
	cfg := options{clean: payload.DefaultCleanOptions()}
	for _, opt := range opts {
		opt(&cfg)
	}

	normalized, err := preprocess.Preprocess(raw, cfg.preprocess...)
	if err != nil {
		return nil, fmt.Errorf("form: %w", err)
	}

	s := &Session{
		opts:   cfg,
		schema: normalized,
		data:   map[string]any{},
	}
	if !cfg.skipValidate {
		validator, err := validation.Compile(normalized)
		if err != nil {
			klog.Warningf("form: validation disabled: %v", err)
		} else {
			s.validator = validator
		}
	}
	return s, nil
}

// Schema returns a copy of the normalized schema.
func (s *Session) Schema() map[string]any {
	return jsonschema.CloneSchema(s.schema)
}

// Touched returns the current touched-field state.
func (s *Session) Touched() touched.State {
	return s.state
}

// FieldID returns the field id of the property at path.
func (s *Session) FieldID(path ...string) string {
	return touched.MapErrorPropertyToField(validation.PropertyPath(path), s.opts.ids)
}

// Data returns the current cleaned form data.
func (s *Session) Data() any {
	return s.data
}

// Load shapes persisted values for the form. Switching to another resource
// clears the touched fields.
func (s *Session) Load(resourceID string, persisted any) Result {
	if resourceID != s.resourceID {
		klog.V(4).Infof("form: resource changed from %q to %q, resetting touched fields", s.resourceID, resourceID)
		s.resourceID = resourceID
		s.state = touched.Reduce(s.state, touched.Reset{})
	}
	if persisted == nil {
		persisted = map[string]any{}
	}
	shaped := payload.TransformObjectsIntoArrays(jsonschema.Clone(persisted), s.schema, s.schema)
	return s.update(shaped)
}

// Change records new form data and marks fieldID as touched.
func (s *Session) Change(data any, fieldID string) Result {
	s.state = touched.Reduce(s.state, touched.AddTouchedField{ID: fieldID})
	return s.update(data)
}

// Toggle flips the touched state of ids.
func (s *Session) Toggle(ids ...string) touched.State {
	s.state = touched.Reduce(s.state, touched.ToggleTouchedFields{IDs: ids})
	return s.state
}

// Submit marks every field with an error as touched. It reports whether the
// data is valid.
func (s *Session) Submit() (Result, bool) {
	s.state = touched.Reduce(s.state, touched.AttemptSubmit{Errors: s.errors, Options: s.opts.ids})
	result := s.result()
	klog.V(4).Infof("form: submit with %d errors", len(result.Errors))
	return result, len(result.Errors) == 0
}

// Reset clears the touched fields and the data.
func (s *Session) Reset() Result {
	s.state = touched.Reduce(s.state, touched.Reset{})
	return s.update(map[string]any{})
}

func (s *Session) update(data any) Result {
	s.data = payload.CleanPayload(data, s.schema, s.schema, s.opts.clean)
	s.errors = nil
	if s.validator != nil {
		s.errors = s.validator.Validate(s.data)
	}
	result := s.result()
	klog.V(4).Infof("form: %d errors, %d visible, %d touched fields", len(result.Errors), len(result.VisibleErrors), s.state.Len())
	return result
}

func (s *Session) result() Result {
	return Result{
		Data:    s.data,
		Payload: payload.Output(s.data, s.schema, s.schema),
		Errors:  s.errors,
		VisibleErrors: touched.VisibleErrors(s.errors, s.state, touched.VisibilityOptions{
			IDOptions: s.opts.ids,
			Matcher:   s.opts.matcher,
			Sanitize:  s.opts.sanitize,
		}),
	}
}
