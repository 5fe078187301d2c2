package touched

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/giantswarm/schemaform/pkg/validation"
)

func TestReduce_Transitions(t *testing.T) {
	tests := []struct {
		name   string
		start  State
		action Action
		want   []string
	}{
		{
			name:   "add",
			start:  NewState("root_a"),
			action: AddTouchedField{ID: "root_b"},
			want:   []string{"root_a", "root_b"},
		},
		{
			name:   "add empty is a no-op",
			start:  NewState("root_a"),
			action: AddTouchedField{},
			want:   []string{"root_a"},
		},
		{
			name:   "set dedupes",
			start:  NewState("root_a"),
			action: SetTouchedFields{IDs: []string{"root_c", "root_c", "root_b"}},
			want:   []string{"root_b", "root_c"},
		},
		{
			name:   "toggle",
			start:  NewState("root_a", "root_b"),
			action: ToggleTouchedFields{IDs: []string{"root_b", "root_c"}},
			want:   []string{"root_a", "root_c"},
		},
		{
			name:  "attempt submit",
			start: NewState("root_a"),
			action: AttemptSubmit{Errors: []validation.Error{
				{Property: ".spec.name"},
				{Property: ".pools[0].size"},
				{Property: ""},
			}},
			want: []string{"root", "root_a", "root_pools_0_size", "root_spec_name"},
		},
		{
			name:   "reset",
			start:  NewState("root_a"),
			action: Reset{},
			want:   []string{},
		},
		{
			name:   "nil action",
			start:  NewState("root_a"),
			action: nil,
			want:   []string{"root_a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Reduce(tt.start, tt.action)
			if diff := cmp.Diff(tt.want, got.Fields()); diff != "" {
				t.Fatalf("unexpected fields (-want +got):\n%s", diff)
			}
		})
	}
}

func TestReduce_DoesNotMutatePreviousState(t *testing.T) {
	start := NewState("root_a")

	_ = Reduce(start, AddTouchedField{ID: "root_b"})
	_ = Reduce(start, ToggleTouchedFields{IDs: []string{"root_a"}})
	_ = Reduce(start, AttemptSubmit{Errors: []validation.Error{{Property: ".x"}}})

	if diff := cmp.Diff([]string{"root_a"}, start.Fields()); diff != "" {
		t.Fatalf("previous state changed (-want +got):\n%s", diff)
	}
}

func TestZeroState(t *testing.T) {
	var s State
	if s.Len() != 0 || s.Has("root") {
		t.Fatalf("zero state should be empty")
	}
	next := Reduce(s, AddTouchedField{ID: "root"})
	if !next.Has("root") {
		t.Fatalf("expected root to be touched")
	}
}

func TestMapErrorPropertyToField(t *testing.T) {
	tests := []struct {
		property string
		opts     IDOptions
		want     string
	}{
		{property: ".foo.bar", want: "root_foo_bar"},
		{property: "", want: "root"},
		{property: ".list[2].name", want: "root_list_2_name"},
		{property: ".list.2", want: "root_list_2"},
		{property: "['weird key']", want: "root_weird key"},
		{property: ".a.b", opts: IDOptions{Prefix: "form", Separator: "__"}, want: "form__a__b"},
	}
	for _, tt := range tests {
		if got := MapErrorPropertyToField(tt.property, tt.opts); got != tt.want {
			t.Fatalf("MapErrorPropertyToField(%q) = %q, want %q", tt.property, got, tt.want)
		}
	}
}

func TestIsTouched_SubstringRule(t *testing.T) {
	fields := []string{"root_object"}

	if !IsTouched("root_object_child", fields, "_") {
		t.Fatalf("nested field should be covered by its container")
	}
	if !IsTouched("root_object", fields, "_") {
		t.Fatalf("exact field should be touched")
	}
	if IsTouched("root_object", nil, "_") {
		t.Fatalf("nothing is touched in an empty set")
	}
	if IsTouched("root_objectX", fields, "_") {
		t.Fatalf("sibling with a longer name must not match")
	}
	if IsTouched("", fields, "_") {
		t.Fatalf("empty id must not match")
	}
}

func TestIsTouchedHierarchical(t *testing.T) {
	fields := []string{"root_a"}

	// The substring rule also matches a touched field in the middle of an id.
	if !IsTouched("root_x_root_a", fields, "_") {
		t.Fatalf("substring rule should match")
	}
	if IsTouchedHierarchical("root_x_root_a", fields, "_") {
		t.Fatalf("hierarchical rule must only match prefixes")
	}
	if !IsTouchedHierarchical("root_a_b", fields, "_") {
		t.Fatalf("hierarchical rule should match descendants")
	}
}

func TestVisibleErrors(t *testing.T) {
	errs := []validation.Error{
		{Property: ".name", Message: "<b>required</b>", Name: "required"},
		{Property: ".spec.size", Message: "too small", Name: "minimum"},
		{Property: ".other", Message: "bad", Name: "type"},
	}
	state := NewState("root_name", "root_spec")

	got := VisibleErrors(errs, state, VisibilityOptions{Sanitize: true})

	want := []validation.Error{
		{Property: ".name", Message: "required", Name: "required"},
		{Property: ".spec.size", Message: "too small", Name: "minimum"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected visible errors (-want +got):\n%s", diff)
	}
	if errs[0].Message != "<b>required</b>" {
		t.Fatalf("input errors were modified")
	}
	if VisibleErrors(errs, State{}, VisibilityOptions{}) != nil {
		t.Fatalf("no errors are visible before anything is touched")
	}
}
