package touched

import (
	"strings"
)

const (
	// DefaultIDPrefix is the id of the form root.
	DefaultIDPrefix = "root"
	// DefaultIDSeparator joins path segments into field ids.
	DefaultIDSeparator = "_"
)

// IDOptions describes how the form renderer builds field ids. Empty values
// fall back to the defaults.
type IDOptions struct {
	Prefix    string
	Separator string
}

func (o IDOptions) withDefaults() IDOptions {
	if o.Prefix == "" {
		o.Prefix = DefaultIDPrefix
	}
	if o.Separator == "" {
		o.Separator = DefaultIDSeparator
	}
	return o
}

// MapErrorPropertyToField converts an error property such as ".spec.pools[0]"
// or ".spec.pools.0" into a field id ("root_spec_pools_0"). A root-level
// property maps to the prefix itself.
func MapErrorPropertyToField(property string, opts IDOptions) string {
	opts = opts.withDefaults()
	segments := append([]string{opts.Prefix}, propertySegments(property)...)
	return strings.Join(segments, opts.Separator)
}

func propertySegments(property string) []string {
	clean := strings.TrimSpace(property)
	clean = strings.NewReplacer("[", ".", "]", "").Replace(clean)
	clean = strings.Trim(clean, ".")
	if clean == "" {
		return nil
	}

	parts := strings.Split(clean, ".")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.Trim(strings.TrimSpace(part), `'"`)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

// Matcher decides whether id is covered by the touched fields.
type Matcher func(id string, fields []string, separator string) bool

// IsTouched reports whether id, or a container of it, was touched. The check
// is a substring match of the separator-suffixed forms, so touching
// "root_object" covers "root_object_child" as well.
func IsTouched(id string, fields []string, separator string) bool {
	if id == "" {
		return false
	}
	needle := id + separator
	for _, field := range fields {
		if field == "" {
			continue
		}
		if strings.Contains(needle, field+separator) {
			return true
		}
	}
	return false
}

// IsTouchedHierarchical is the segment-aligned variant of IsTouched: a touched
// field only covers ids that start with it.
func IsTouchedHierarchical(id string, fields []string, separator string) bool {
	if id == "" {
		return false
	}
	needle := id + separator
	for _, field := range fields {
		if field == "" {
			continue
		}
		if strings.HasPrefix(needle, field+separator) {
			return true
		}
	}
	return false
}
