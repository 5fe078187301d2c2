package touched

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/giantswarm/schemaform/pkg/validation"
)

var (
	messagePolicyOnce sync.Once
	messagePolicy     *bluemonday.Policy
)

// VisibilityOptions configures VisibleErrors.
type VisibilityOptions struct {
	IDOptions IDOptions
	// Matcher defaults to IsTouched.
	Matcher Matcher
	// Sanitize strips markup from messages before they are shown.
	Sanitize bool
}

// VisibleErrors returns the errors whose field is covered by state, in their
// original order. The input slice is not modified.
func VisibleErrors(errs []validation.Error, state State, opts VisibilityOptions) []validation.Error {
	if len(errs) == 0 || state.Len() == 0 {
		return nil
	}
	ids := opts.IDOptions.withDefaults()
	match := opts.Matcher
	if match == nil {
		match = IsTouched
	}

	fields := state.Fields()
	var out []validation.Error
	for _, e := range errs {
		if !match(MapErrorPropertyToField(e.Property, ids), fields, ids.Separator) {
			continue
		}
		if opts.Sanitize {
			e.Message = sanitizeMessage(e.Message)
		}
		out = append(out, e)
	}
	return out
}

func sanitizeMessage(raw string) string {
	messagePolicyOnce.Do(func() {
		messagePolicy = bluemonday.StrictPolicy()
	})
	return strings.TrimSpace(messagePolicy.Sanitize(raw))
}
