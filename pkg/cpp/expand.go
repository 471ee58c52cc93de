// expand.go implements macro definition and expansion: the actions fired by
// the grammars in grammar.go.
package cpp

import (
	"strings"

	"golang.org/x/exp/slices"

	"github.com/raymyers/ralph-cpp/pkg/peg"
)

// Expand runs the document grammar over input: directives update the macro
// table and every macro invocation is replaced by its expansion.
func (e *Engine) Expand(input string) (string, error) {
	out, err := e.run(e.document, input)
	if err != nil {
		return "", err
	}
	if strings.IndexByte(out, paintMark) < 0 {
		return out, nil
	}
	return e.run(e.unpaint, out)
}

// run matches rule over a fresh buffer with a fresh top-level state.
func (e *Engine) run(rule peg.Rule, input string) (string, error) {
	e.state = NewState(e.macros)
	e.depth = 0
	c := peg.NewCursor(input, peg.WithLogger(e.log))
	if _, err := peg.Run(rule, c); err != nil {
		return "", err
	}
	return c.String(), nil
}

// expand macro-expands text on a private buffer with st as the current
// state. The caller's state is restored afterwards.
func (e *Engine) expand(text string, st *State) string {
	if text == "" {
		return ""
	}
	c := peg.NewCursor(text, peg.WithLogger(e.log))
	if e.depth >= maxDepth {
		peg.Abort(c, "macro expansion nested too deeply (limit %d)", maxDepth)
	}

	saved := e.state
	e.state = st
	e.depth++
	defer func() {
		e.state = saved
		e.depth--
	}()

	c.Apply(e.expansion)
	return c.String()
}

func (e *Engine) resolveIdentifier(in *peg.Input) {
	name := in.Text()
	s := e.state
	m, ok := s.Macros.Lookup(name)
	switch {
	case !ok:
	case s.Guarded(name):
		in.Replace(string(paintMark) + name)
	case m.Kind == MacroObject:
		e.log.Trace("expanding object-like macro", "name", name)
		in.ReplaceAndRescan(e.expand(m.Replacement, s.nested(name)))
	}
}

// callable reports whether name starts a function-like invocation.
func (e *Engine) callable(name string) bool {
	m, ok := e.state.Macros.Lookup(name)
	return ok && m.Kind == MacroFunction && !e.state.Guarded(name)
}

func (e *Engine) beginCall(in *peg.Input) {
	s := e.state
	if s.Phase == PhaseNone {
		m, _ := s.Macros.Lookup(in.Text())
		s.Phase = PhaseCountingArguments
		s.CurrentID = m.Name
		s.Invocation = m.invocation()
	}
	e.log.Trace("function-like invocation", "name", s.CurrentID, "phase", s.Phase)
}

func (e *Engine) openArguments(*peg.Input) {
	s := e.state
	s.Invocation.CallArguments = s.Invocation.CallArguments[:0]
}

func (e *Engine) argument(in *peg.Input) {
	s := e.state
	arg := strings.TrimSpace(in.Text())
	if s.Phase == PhaseExpanding {
		arg = e.expand(arg, s.nested(""))
	}
	s.Invocation.CallArguments = append(s.Invocation.CallArguments, arg)
}

func (e *Engine) closeArguments(in *peg.Input) {
	s := e.state
	if s.Phase != PhaseCountingArguments {
		return
	}
	inv := s.Invocation
	got, want := len(inv.CallArguments), len(inv.Params)
	if want == 0 && got == 1 && inv.CallArguments[0] == "" {
		got = 0
	}
	switch {
	case got > want:
		in.Abort("macro '%s' passed %d arguments, but takes just %d", inv.Name, got, want)
	case got < want:
		in.Abort("macro '%s' requires %d arguments, but only %d given", inv.Name, want, got)
	}
}

func (e *Engine) finishCall(in *peg.Input) {
	s := e.state
	switch s.Phase {
	case PhaseCountingArguments:
		s.Phase = PhaseExpanding
		in.Rescan()
	case PhaseExpanding:
		name := s.CurrentID
		body := e.substitute()
		s.resetCall()
		out := e.expand(body, s.nested(name))
		e.log.Trace("expanded function-like macro", "name", name, "result", out)
		in.ReplaceAndRescan(out)
	}
}

// substitute returns the invocation's replacement text with every
// parameter replaced by its expanded argument.
func (e *Engine) substitute() string {
	inv := e.state.Invocation
	if len(inv.Params) == 0 || inv.Replacement == "" {
		return inv.Replacement
	}
	c := peg.NewCursor(inv.Replacement, peg.WithLogger(e.log))
	c.Apply(e.substitution)
	return c.String()
}

func (e *Engine) substituteParam(in *peg.Input) {
	inv := e.state.Invocation
	if i := inv.ParamIndex(in.Text()); i >= 0 && i < len(inv.CallArguments) {
		in.Replace(inv.CallArguments[i])
	}
}

func (e *Engine) beginDefine(in *peg.Input) {
	name := in.Text()
	if name == "defined" {
		in.Abort("'defined' cannot be used as a macro name")
	}
	e.state.Definition = &Macro{Kind: MacroObject, Name: name}
}

func (e *Engine) markFunction(*peg.Input) {
	e.state.Definition.Kind = MacroFunction
}

func (e *Engine) addParam(in *peg.Input) {
	d := e.state.Definition
	name := in.Text()
	if slices.Contains(d.Params, name) {
		in.Abort("duplicate macro parameter '%s' in definition of '%s'", name, d.Name)
	}
	d.Params = append(d.Params, name)
}

func (e *Engine) setReplacement(in *peg.Input) {
	e.state.Definition.Replacement = strings.TrimSuffix(in.Text(), "\n")
}

func (e *Engine) undefine(in *peg.Input) {
	e.log.Debug("undefined macro", "name", in.Text())
	e.state.Macros.Undefine(in.Text())
}

func (e *Engine) finishDirective(in *peg.Input) {
	if d := e.state.Definition; d != nil {
		e.state.Definition = nil
		e.state.Macros.Define(d)
		e.log.Debug("defined macro", "name", d.Name, "kind", d.Kind, "params", d.Params)
	}
	in.EraseAndRescan()
}
