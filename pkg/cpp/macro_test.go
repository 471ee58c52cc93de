package cpp

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseDefine(t *testing.T) {
	tests := []struct {
		def     string
		want    *Macro
		wantErr bool
	}{
		{def: "X", want: &Macro{Name: "X", Replacement: "1"}},
		{def: "X=2", want: &Macro{Name: "X", Replacement: "2"}},
		{def: "EMPTY=", want: &Macro{Name: "EMPTY"}},
		{def: "_a1=x=y", want: &Macro{Name: "_a1", Replacement: "x=y"}},
		{def: "1X", wantErr: true},
		{def: "", wantErr: true},
		{def: "A-B=1", wantErr: true},
		{def: "defined", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.def, func(t *testing.T) {
			got, err := ParseDefine(tt.def)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseDefine(%q) succeeded, want error", tt.def)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDefine(%q) error: %v", tt.def, err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseDefine(%q) mismatch (-want +got):\n%s", tt.def, diff)
			}
		})
	}
}

func TestMacroTable(t *testing.T) {
	mt := NewMacroTable()
	if err := mt.ApplyCmdlineDefines([]string{"B=2", "A", "C=3"}, []string{"C", "MISSING"}); err != nil {
		t.Fatalf("ApplyCmdlineDefines() error: %v", err)
	}
	mt.Define(&Macro{Kind: MacroFunction, Name: "F", Params: []string{"x", "y"}, Replacement: " x+y"})

	if diff := cmp.Diff([]string{"A", "B", "F"}, mt.Names()); diff != "" {
		t.Errorf("Names() mismatch (-want +got):\n%s", diff)
	}
	if mt.IsDefined("C") {
		t.Error("C should have been undefined")
	}
	if mt.Len() != 3 {
		t.Errorf("Len() = %d, want 3", mt.Len())
	}

	want := "#define A 1\n#define B 2\n#define F(x,y) x+y\n"
	if got := mt.Dump(); got != want {
		t.Errorf("Dump() = %q, want %q", got, want)
	}

	if err := mt.ApplyCmdlineDefines([]string{"9=1"}, nil); err == nil {
		t.Error("expected error for invalid name")
	}
}

func TestMacroInvocationIsACopy(t *testing.T) {
	m := &Macro{Kind: MacroFunction, Name: "F", Params: []string{"a"}}
	inv := m.invocation()
	inv.CallArguments = append(inv.CallArguments, "1")
	inv.Params[0] = "changed"

	if m.CallArguments != nil {
		t.Errorf("table entry got call arguments %v", m.CallArguments)
	}
	if m.Params[0] != "a" {
		t.Errorf("table entry params changed to %v", m.Params)
	}
	if m.ParamIndex("a") != 0 || m.ParamIndex("b") != -1 {
		t.Error("ParamIndex returned wrong positions")
	}
}

func TestStateNestedCopiesGuard(t *testing.T) {
	s := NewState(NewMacroTable())
	s.Guard = []string{"A"}
	s.Phase = PhaseExpanding

	n := s.nested("B")
	if !n.Guarded("A") || !n.Guarded("B") {
		t.Errorf("nested guard = %v, want [A B]", n.Guard)
	}
	if n.Phase != PhaseNone {
		t.Errorf("nested phase = %v, want %v", n.Phase, PhaseNone)
	}
	if s.Guarded("B") {
		t.Error("nested state leaked into the parent guard")
	}
	if n.Macros != s.Macros {
		t.Error("nested state must share the macro table")
	}
	if got := s.nested(""); len(got.Guard) != 1 {
		t.Errorf("nested(\"\") guard = %v, want [A]", got.Guard)
	}
}
