// composite.go implements the combinators. Every composite keeps the marker
// discipline: a failed attempt leaves the cursor position and the backtrack
// stack exactly as they were before it.
package peg

import (
	"strings"
)

type seqRule struct {
	base
	rules []Rule
}

// Sequence matches rules in order, all or nothing.
func Sequence(rules ...Rule) Rule { return &seqRule{rules: rules} }

func (r *seqRule) match(c *Cursor, fire bool) Match {
	begin := c.pos
	total := 0
	for _, child := range r.rules {
		m := child.match(c, fire)
		if !m.Matched {
			c.PopN(total)
			c.pos = begin
			return failed(begin)
		}
		total += m.Markers
	}
	c.Push()
	return r.succeed(c, Match{Begin: begin, End: c.pos, Markers: total + 1}, fire)
}

func (r *seqRule) String() string { return "(" + join(r.rules, " ") + ")" }

type orRule struct {
	base
	rules []Rule
}

// Or returns the first alternative that matches. With no alternatives it
// always matches.
func Or(rules ...Rule) Rule { return &orRule{rules: rules} }

func (r *orRule) match(c *Cursor, fire bool) Match {
	if len(r.rules) == 0 {
		c.Push()
		return r.succeed(c, Match{Begin: c.pos, End: c.pos, Markers: 1}, fire)
	}
	begin := c.pos
	for _, child := range r.rules {
		if m := child.match(c, fire); m.Matched {
			return r.succeed(c, m, fire)
		}
	}
	return failed(begin)
}

func (r *orRule) String() string { return "(" + join(r.rules, " / ") + ")" }

type optionalRule struct {
	base
	rule Rule
}

// Optional matches rule or nothing. It always succeeds.
func Optional(rule Rule) Rule { return &optionalRule{rule: rule} }

func (r *optionalRule) match(c *Cursor, fire bool) Match {
	m := r.rule.match(c, fire)
	if !m.Matched {
		m = Match{Begin: c.pos, End: c.pos}
	}
	c.Push()
	m.Markers++
	return r.succeed(c, m, fire)
}

func (r *optionalRule) String() string { return r.rule.String() + "?" }

type oneOrMoreRule struct {
	base
	rule Rule
}

// OneOrMore matches rule greedily, at least once. Each iteration is
// committed as soon as it matches.
func OneOrMore(rule Rule) Rule { return &oneOrMoreRule{rule: rule} }

func (r *oneOrMoreRule) match(c *Cursor, fire bool) Match {
	m := r.rule.match(c, fire)
	if !m.Matched {
		return m
	}
	for {
		pos, gen := c.pos, c.gen
		next := r.rule.match(c, fire)
		if !next.Matched {
			break
		}
		m.End = next.End
		m.Markers += next.Markers
		if c.pos == pos && c.gen == gen {
			break
		}
	}
	return r.succeed(c, m, fire)
}

func (r *oneOrMoreRule) String() string { return r.rule.String() + "+" }

// ZeroOrMore matches rule greedily any number of times.
func ZeroOrMore(rule Rule) Rule { return Optional(OneOrMore(rule)) }

type lookaheadRule struct {
	base
	rule   Rule
	negate bool
}

// At succeeds if rule matches here, without consuming input and without
// running any action below it.
func At(rule Rule) Rule { return &lookaheadRule{rule: rule} }

// NotAt succeeds if rule does not match here, without consuming input.
func NotAt(rule Rule) Rule { return &lookaheadRule{rule: rule, negate: true} }

func (r *lookaheadRule) match(c *Cursor, fire bool) Match {
	begin := c.pos
	m := r.rule.match(c, false)
	c.PopN(m.Markers)
	c.pos = begin
	if m.Matched == r.negate {
		return failed(begin)
	}
	c.Push()
	return r.succeed(c, Match{Begin: begin, End: begin, Markers: 1}, fire)
}

func (r *lookaheadRule) String() string {
	if r.negate {
		return "!" + r.rule.String()
	}
	return "&" + r.rule.String()
}

type untilRule struct {
	base
	rule Rule
}

// Until skips input one byte at a time until rule matches. The match spans
// the skipped input and the terminator. If input runs out first, Until fails
// and consumes nothing.
func Until(rule Rule) Rule { return &untilRule{rule: rule} }

func (r *untilRule) match(c *Cursor, fire bool) Match {
	begin := c.pos
	c.Push()
	for {
		m := r.rule.match(c, fire)
		if m.Matched {
			return r.succeed(c, Match{Begin: begin, End: m.End, Markers: m.Markers + 1}, fire)
		}
		if !c.HasNext() {
			break
		}
		c.Advance(1)
	}
	c.Pop()
	return failed(begin)
}

func (r *untilRule) String() string { return "(!" + r.rule.String() + " .)* " + r.rule.String() }

type bUntilARule struct {
	base
	terminator Rule
	body       Rule
}

// MatchBUntilA repeats body until terminator matches. The terminator is
// tried first at every step. If body fails before the terminator is seen the
// whole rule fails and consumes nothing.
func MatchBUntilA(terminator, body Rule) Rule {
	return &bUntilARule{terminator: terminator, body: body}
}

func (r *bUntilARule) match(c *Cursor, fire bool) Match {
	begin := c.pos
	total := 0
	for {
		if m := r.terminator.match(c, fire); m.Matched {
			total += m.Markers
			return r.succeed(c, Match{Begin: begin, End: m.End, Markers: total}, fire)
		}
		pos, gen := c.pos, c.gen
		m := r.body.match(c, fire)
		if m.Matched {
			total += m.Markers
		}
		if !m.Matched || (c.pos == pos && c.gen == gen) {
			c.PopN(total)
			c.pos = begin
			return failed(begin)
		}
	}
}

func (r *bUntilARule) String() string {
	return "(!" + r.terminator.String() + " " + r.body.String() + ")* " + r.terminator.String()
}

type temporaryActionRule struct {
	base
	rule Rule
}

// TemporaryAction matches rule with every action below it suppressed and
// runs action instead.
func TemporaryAction(rule Rule, action Action) Rule {
	t := &temporaryActionRule{rule: rule}
	t.action = action
	return t
}

func (r *temporaryActionRule) match(c *Cursor, fire bool) Match {
	m := r.rule.match(c, false)
	if !m.Matched {
		return m
	}
	return r.succeed(c, m, fire)
}

func (r *temporaryActionRule) String() string { return r.rule.String() }

type predicateRule struct {
	base
	rule Rule
	pred func(text string) bool
}

// Predicate matches rule and then accepts the match only if pred holds for
// the matched text. Actions below it are suppressed. The predicate runs
// inside lookaheads too.
func Predicate(rule Rule, pred func(text string) bool) Rule {
	return &predicateRule{rule: rule, pred: pred}
}

func (r *predicateRule) match(c *Cursor, fire bool) Match {
	begin := c.pos
	m := r.rule.match(c, false)
	if !m.Matched {
		return m
	}
	if !r.pred(c.Text(m.Begin, m.End)) {
		c.PopN(m.Markers)
		c.pos = begin
		return failed(begin)
	}
	return r.succeed(c, m, fire)
}

func (r *predicateRule) String() string { return r.rule.String() + "&{}" }

func join(rules []Rule, sep string) string {
	parts := make([]string, len(rules))
	for i, r := range rules {
		parts[i] = r.String()
	}
	return strings.Join(parts, sep)
}
