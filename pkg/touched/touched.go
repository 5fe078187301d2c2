// Package touched tracks which form fields a user interacted with. The state
// is immutable: every transition returns a new State and never modifies the
// one it was given.
package touched

import (
	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/giantswarm/schemaform/pkg/validation"
)

// State is the set of touched field ids. The zero value is an empty state.
type State struct {
	fields sets.Set[string]
}

// NewState returns a state holding ids. Empty ids are ignored.
func NewState(ids ...string) State {
	return State{fields: newSet(ids)}
}

// Fields returns the touched ids in sorted order.
func (s State) Fields() []string {
	if s.fields.Len() == 0 {
		return []string{}
	}
	return sets.List(s.fields)
}

// Has reports whether id was touched exactly.
func (s State) Has(id string) bool {
	return s.fields.Has(id)
}

// Len returns the number of touched ids.
func (s State) Len() int {
	return s.fields.Len()
}

// Action is a state transition. The set of actions is closed.
type Action interface {
	apply(State) State
}

// AddTouchedField marks a single field. An empty id is a no-op.
type AddTouchedField struct {
	ID string
}

func (a AddTouchedField) apply(s State) State {
	if a.ID == "" || s.fields.Has(a.ID) {
		return s
	}
	next := s.fields.Clone()
	next.Insert(a.ID)
	return State{fields: next}
}

// SetTouchedFields replaces the whole set.
type SetTouchedFields struct {
	IDs []string
}

func (a SetTouchedFields) apply(State) State {
	return NewState(a.IDs...)
}

// ToggleTouchedFields removes each id that is present and adds each one that
// is not.
type ToggleTouchedFields struct {
	IDs []string
}

func (a ToggleTouchedFields) apply(s State) State {
	next := s.fields.Clone()
	for _, id := range a.IDs {
		if id == "" {
			continue
		}
		if next.Has(id) {
			next.Delete(id)
			continue
		}
		next.Insert(id)
	}
	return State{fields: next}
}

// AttemptSubmit marks every field that has a validation error.
type AttemptSubmit struct {
	Errors  []validation.Error
	Options IDOptions
}

func (a AttemptSubmit) apply(s State) State {
	if len(a.Errors) == 0 {
		return s
	}
	next := s.fields.Clone()
	for _, e := range a.Errors {
		next.Insert(MapErrorPropertyToField(e.Property, a.Options))
	}
	return State{fields: next}
}

// Reset clears the set.
type Reset struct{}

func (Reset) apply(State) State {
	return State{}
}

// Reduce applies action to state. A nil action returns state unchanged.
func Reduce(state State, action Action) State {
	if action == nil {
		return state
	}
	return action.apply(state)
}

func newSet(ids []string) sets.Set[string] {
	out := sets.New[string]()
	for _, id := range ids {
		if id != "" {
			out.Insert(id)
		}
	}
	return out
}
