// grammar.go builds the preprocessing grammars on top of pkg/peg. The
// actions they fire live in expand.go.
package cpp

import (
	"github.com/hashicorp/go-hclog"

	"github.com/raymyers/ralph-cpp/pkg/peg"
)

// paintMark prefixes an identifier that was left unexpanded because its
// macro was already being expanded. Painted identifiers are never expanded
// again and the mark is stripped from the final output.
const paintMark = '\x00'

// maxDepth bounds nested macro expansion.
const maxDepth = 200

const (
	errUnterminatedParen   = "Unterminated parenthesis, expected ')' to match '('"
	errUnterminatedParams  = "Unterminated macro parameter list, expected ')' to match '('"
	errUnterminatedComment = "Unterminated block comment, expected '*/' to match '/*'"
)

// Engine owns the grammars and the expansion state their actions operate
// on. An Engine is not safe for concurrent use.
type Engine struct {
	macros *MacroTable
	log    hclog.Logger

	state *State
	depth int

	// document recognizes directives and expands macros; expansion is the
	// same without directives and is used for macro bodies and arguments.
	document     peg.Rule
	expansion    peg.Rule
	substitution peg.Rule

	continuations peg.Rule
	comments      peg.Rule
	unpaint       peg.Rule
}

// NewEngine builds the grammars over macros.
func NewEngine(macros *MacroTable, log hclog.Logger) *Engine {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	e := &Engine{
		macros: macros,
		log:    log,
		state:  NewState(macros),
	}
	e.build()
	return e
}

func (e *Engine) build() {
	g := peg.NewGrammar()

	newline := peg.Char('\n')
	ws := peg.OneOrMore(peg.Or(peg.Char(' '), peg.Char('\t')))
	optWS := peg.Optional(ws)

	ident := g.Define("identifier", peg.Sequence(
		peg.Range('a', 'z', 'A', 'Z', '_'),
		peg.ZeroOrMore(peg.Range('a', 'z', 'A', 'Z', '0', '9', '_')),
	))
	number := g.Define("number", peg.Sequence(
		peg.Range('0', '9'),
		peg.ZeroOrMore(peg.Range('a', 'z', 'A', 'Z', '0', '9', '_', '_', '.')),
	))

	escaped := peg.Sequence(peg.Char('\\'), peg.Any())
	quoted := func(q byte) peg.Rule {
		return peg.Sequence(peg.Char(q), peg.MatchBUntilA(peg.Char(q), peg.Or(
			escaped,
			peg.Sequence(peg.NotAt(newline), peg.Any()),
		)))
	}
	literal := g.Define("literal", peg.Or(quoted('"'), quoted('\'')))
	painted := g.Define("painted", peg.Sequence(peg.Char(paintMark), ident))

	parens := g.Define("balanced-parens", peg.Sequence(
		peg.Char('('),
		peg.MatchBUntilA(peg.Char(')'), peg.Or(
			g.Ref("balanced-parens"),
			literal,
			peg.Sequence(peg.EndOfFile(), peg.Error(errUnterminatedParen)),
			peg.Any(),
		)),
	))
	// Inside a macro body or argument the closing parenthesis may only
	// appear in the text that follows the expansion.
	closed := g.Define("closed-parens", peg.Sequence(
		peg.Char('('),
		peg.MatchBUntilA(peg.Char(')'), peg.Or(g.Ref("closed-parens"), literal, peg.Any())),
	))

	// Function-like invocation. The first match counts the arguments and
	// rescans; the second collects them expanded and replaces the call.
	argument := peg.Do(peg.MatchBUntilA(
		peg.At(peg.Or(peg.Char(','), peg.Char(')'))),
		peg.Or(parens, literal, peg.Any()),
	), e.argument)
	call := func(complete peg.Rule) peg.Rule {
		return peg.Trace("call", peg.Do(peg.Sequence(
			peg.At(peg.Sequence(peg.Predicate(ident, e.callable), optWS, complete)),
			peg.TemporaryAction(ident, e.beginCall),
			optWS,
			peg.TemporaryAction(peg.Char('('), e.openArguments),
			argument,
			peg.ZeroOrMore(peg.Sequence(peg.Char(','), argument)),
			peg.TemporaryAction(peg.Char(')'), e.closeArguments),
		), e.finishCall))
	}

	resolve := peg.Trace("identifier", peg.TemporaryAction(ident, e.resolveIdentifier))

	// #define NAME body, #define NAME(params) body, #undef NAME. The '#'
	// may only be preceded by indentation.
	rest := peg.Until(peg.NewlineOrEndOfFile())
	param := peg.TemporaryAction(ident, e.addParam)
	params := peg.Sequence(
		peg.TemporaryAction(peg.Char('('), e.markFunction),
		optWS,
		peg.Optional(peg.Sequence(param, peg.ZeroOrMore(peg.Sequence(optWS, peg.Char(','), optWS, param)))),
		optWS,
		peg.Or(peg.Char(')'), peg.Error(errUnterminatedParams)),
	)
	body := peg.TemporaryAction(rest, e.setReplacement)
	define := peg.Sequence(
		peg.String("define"),
		ws,
		peg.TemporaryAction(ident, e.beginDefine),
		peg.Or(peg.Sequence(params, body), peg.Sequence(optWS, body)),
	)
	undef := peg.Sequence(
		peg.String("undef"),
		ws,
		peg.TemporaryAction(ident, e.undefine),
		rest,
	)
	directive := peg.Trace("directive", peg.Do(peg.Sequence(
		peg.StartOfLine(),
		optWS,
		peg.Char('#'),
		optWS,
		peg.Or(define, undef),
	), e.finishDirective))

	text := func(call peg.Rule) []peg.Rule {
		return []peg.Rule{newline, ws, literal, number, painted, call, resolve, peg.Any()}
	}
	e.expansion = peg.OneOrMore(peg.Or(text(call(closed))...))
	e.document = peg.OneOrMore(peg.Or(append([]peg.Rule{directive}, text(call(parens))...)...))
	e.substitution = peg.OneOrMore(peg.Or(
		literal,
		number,
		peg.TemporaryAction(ident, e.substituteParam),
		peg.Any(),
	))

	erase := func(in *peg.Input) { in.Erase() }
	e.continuations = peg.OneOrMore(peg.Or(peg.Do(peg.String("\\\n"), erase), peg.Any()))
	e.comments = peg.OneOrMore(peg.Or(
		literal,
		peg.Do(peg.Sequence(peg.String("//"), peg.Until(peg.At(peg.NewlineOrEndOfFile()))), erase),
		peg.Do(peg.Sequence(
			peg.String("/*"),
			peg.Or(peg.Until(peg.String("*/")), peg.Error(errUnterminatedComment)),
		), erase),
		peg.Any(),
	))
	e.unpaint = peg.OneOrMore(peg.Or(peg.Do(peg.Char(paintMark), erase), peg.Any()))

	if err := g.Check(); err != nil {
		panic(err)
	}
}
