package cpp

import (
	"golang.org/x/exp/slices"
)

// Phase is the step reached in expanding a function-like invocation.
type Phase int

const (
	// PhaseNone means no function-like invocation is being processed.
	PhaseNone Phase = iota
	// PhaseCountingArguments is the first scan over an invocation, which
	// only counts and validates its arguments.
	PhaseCountingArguments
	// PhaseExpanding is the rescan that collects expanded arguments and
	// substitutes them.
	PhaseExpanding
)

func (p Phase) String() string {
	switch p {
	case PhaseCountingArguments:
		return "counting-arguments"
	case PhaseExpanding:
		return "expanding"
	}
	return "none"
}

// State is the expansion state for one scan of a buffer. Nested expansions
// run with their own State and share only the macro table.
type State struct {
	Macros *MacroTable

	// Guard lists the macros currently being expanded, innermost last.
	Guard []string

	Phase     Phase
	CurrentID string

	// Invocation is the function-like macro whose call is being scanned.
	Invocation *Macro

	// Definition is the macro declared by the #define being scanned.
	Definition *Macro
}

// NewState creates a state with an empty guard.
func NewState(macros *MacroTable) *State {
	return &State{Macros: macros}
}

// Guarded reports whether name must not be expanded.
func (s *State) Guarded(name string) bool {
	return slices.Contains(s.Guard, name)
}

// nested returns the state used to expand text on behalf of name. The
// guard is copied so the caller's list is never shared.
func (s *State) nested(name string) *State {
	guard := slices.Clone(s.Guard)
	if name != "" {
		guard = append(guard, name)
	}
	return &State{Macros: s.Macros, Guard: guard}
}

func (s *State) resetCall() {
	s.Phase = PhaseNone
	s.CurrentID = ""
	s.Invocation = nil
}
