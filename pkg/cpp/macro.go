// macro.go implements the macro table.
package cpp

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// MacroKind distinguishes object-like and function-like macros.
type MacroKind int

const (
	// MacroObject is a plain name replaced by its body.
	MacroObject MacroKind = iota
	// MacroFunction takes a parenthesized argument list.
	MacroFunction
)

func (k MacroKind) String() string {
	if k == MacroFunction {
		return "function"
	}
	return "object"
}

// Macro is a single #define.
type Macro struct {
	Kind        MacroKind
	Name        string
	Params      []string
	Replacement string

	// CallArguments holds the arguments of one invocation. It is only set on
	// the copy owned by the expansion state, never on the table entry.
	CallArguments []string
}

// ParamIndex returns the position of the named parameter, or -1.
func (m *Macro) ParamIndex(name string) int {
	return slices.Index(m.Params, name)
}

// invocation returns a copy of m ready to collect call arguments.
func (m *Macro) invocation() *Macro {
	inv := *m
	inv.Params = slices.Clone(m.Params)
	inv.CallArguments = nil
	return &inv
}

func (m *Macro) String() string {
	if m.Kind == MacroFunction {
		return fmt.Sprintf("#define %s(%s)%s", m.Name, strings.Join(m.Params, ","), m.Replacement)
	}
	if m.Replacement == "" {
		return "#define " + m.Name
	}
	return "#define " + m.Name + " " + m.Replacement
}

// MacroTable maps macro names to their definitions.
type MacroTable struct {
	macros map[string]*Macro
}

// NewMacroTable creates an empty table.
func NewMacroTable() *MacroTable {
	return &MacroTable{macros: make(map[string]*Macro)}
}

// Define adds or replaces a macro.
func (t *MacroTable) Define(m *Macro) {
	t.macros[m.Name] = m
}

// Undefine removes a macro. Unknown names are ignored.
func (t *MacroTable) Undefine(name string) {
	delete(t.macros, name)
}

// Lookup returns the macro called name.
func (t *MacroTable) Lookup(name string) (*Macro, bool) {
	m, ok := t.macros[name]
	return m, ok
}

// IsDefined reports whether name is a macro.
func (t *MacroTable) IsDefined(name string) bool {
	_, ok := t.macros[name]
	return ok
}

// Len returns the number of macros.
func (t *MacroTable) Len() int { return len(t.macros) }

// Names returns all macro names in sorted order.
func (t *MacroTable) Names() []string {
	names := maps.Keys(t.macros)
	sort.Strings(names)
	return names
}

// Dump writes one #define line per macro, sorted by name.
func (t *MacroTable) Dump() string {
	var sb strings.Builder
	for _, name := range t.Names() {
		sb.WriteString(t.macros[name].String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// ApplyCmdlineDefines applies -D and -U options in order: defines first,
// then undefines.
func (t *MacroTable) ApplyCmdlineDefines(defines, undefines []string) error {
	for _, d := range defines {
		m, err := ParseDefine(d)
		if err != nil {
			return err
		}
		t.Define(m)
	}
	for _, name := range undefines {
		t.Undefine(name)
	}
	return nil
}

// ParseDefine parses a command line definition of the form NAME or
// NAME=VALUE. NAME alone defines the macro as 1, like cc -D.
func ParseDefine(def string) (*Macro, error) {
	name, value, hasValue := strings.Cut(def, "=")
	if !isIdentifier(name) {
		return nil, fmt.Errorf("invalid macro name %q", name)
	}
	if name == "defined" {
		return nil, fmt.Errorf("'defined' cannot be used as a macro name")
	}
	if !hasValue {
		value = "1"
	}
	return &Macro{Kind: MacroObject, Name: name, Replacement: value}, nil
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isIdentByte(s[i], i == 0) {
			return false
		}
	}
	return true
}

func isIdentByte(b byte, first bool) bool {
	switch {
	case b == '_', b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z':
		return true
	case b >= '0' && b <= '9':
		return !first
	}
	return false
}
