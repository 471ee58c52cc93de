// rule.go defines the Rule interface and the atomic matchers.
package peg

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// Rule is a node of a grammar graph. Rules are immutable once built apart
// from their action and may be shared between parents.
type Rule interface {
	// match attempts the rule at the cursor. When fire is false no action
	// in the subtree runs.
	match(c *Cursor, fire bool) Match
	setAction(a Action)
	String() string
}

// Do attaches an action to r and returns r.
func Do(r Rule, action Action) Rule {
	r.setAction(action)
	return r
}

type base struct {
	action Action
}

func (b *base) setAction(a Action) { b.action = a }

// succeed runs the action, if any, and returns the possibly edited match.
func (b *base) succeed(c *Cursor, m Match, fire bool) Match {
	m.Matched = true
	if fire && b.action != nil {
		b.action(newInput(c, &m))
	}
	return m
}

type successRule struct{ base }

// Success always matches without consuming input.
func Success() Rule { return &successRule{} }

func (r *successRule) match(c *Cursor, fire bool) Match {
	begin := c.pos
	c.Push()
	return r.succeed(c, Match{Begin: begin, End: begin, Markers: 1}, fire)
}

func (r *successRule) String() string { return "Success" }

type failRule struct{ base }

// Fail never matches.
func Fail() Rule { return &failRule{} }

func (r *failRule) match(c *Cursor, _ bool) Match { return failed(c.pos) }

func (r *failRule) String() string { return "Fail" }

type anyRule struct{ base }

// Any matches a single byte.
func Any() Rule { return &anyRule{} }

func (r *anyRule) match(c *Cursor, fire bool) Match {
	if !c.HasNext() {
		return failed(c.pos)
	}
	begin := c.pos
	c.Push()
	c.Advance(1)
	return r.succeed(c, Match{Begin: begin, End: c.pos, Markers: 1}, fire)
}

func (r *anyRule) String() string { return "." }

type charRule struct {
	base
	ch byte
}

// Char matches exactly ch.
func Char(ch byte) Rule { return &charRule{ch: ch} }

func (r *charRule) match(c *Cursor, fire bool) Match {
	if b, ok := c.Peek(); !ok || b != r.ch {
		return failed(c.pos)
	}
	begin := c.pos
	c.Push()
	c.Advance(1)
	return r.succeed(c, Match{Begin: begin, End: c.pos, Markers: 1}, fire)
}

func (r *charRule) String() string { return fmt.Sprintf("%q", r.ch) }

type stringRule struct {
	base
	lit []byte
}

// String matches the literal s. The empty literal matches without consuming.
func String(s string) Rule { return &stringRule{lit: []byte(s)} }

func (r *stringRule) match(c *Cursor, fire bool) Match {
	if !bytes.HasPrefix(c.buf[c.pos:], r.lit) {
		return failed(c.pos)
	}
	begin := c.pos
	c.Push()
	c.Advance(len(r.lit))
	return r.succeed(c, Match{Begin: begin, End: c.pos, Markers: 1}, fire)
}

func (r *stringRule) String() string { return strconv.Quote(string(r.lit)) }

type rangeRule struct {
	base
	bounds []byte
}

// Range matches one byte inside any of the inclusive ranges given as
// consecutive lo, hi pairs. A trailing unpaired bound matches only itself.
func Range(bounds ...byte) Rule { return &rangeRule{bounds: bounds} }

func (r *rangeRule) contains(b byte) bool {
	for i := 0; i < len(r.bounds); i += 2 {
		lo := r.bounds[i]
		hi := lo
		if i+1 < len(r.bounds) {
			hi = r.bounds[i+1]
		}
		if b >= lo && b <= hi {
			return true
		}
	}
	return false
}

func (r *rangeRule) match(c *Cursor, fire bool) Match {
	if b, ok := c.Peek(); !ok || !r.contains(b) {
		return failed(c.pos)
	}
	begin := c.pos
	c.Push()
	c.Advance(1)
	return r.succeed(c, Match{Begin: begin, End: c.pos, Markers: 1}, fire)
}

func (r *rangeRule) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i := 0; i < len(r.bounds); i += 2 {
		sb.WriteByte(r.bounds[i])
		if i+1 < len(r.bounds) {
			sb.WriteByte('-')
			sb.WriteByte(r.bounds[i+1])
		}
	}
	sb.WriteByte(']')
	return sb.String()
}

type eofRule struct{ base }

// EndOfFile matches only when no input remains.
func EndOfFile() Rule { return &eofRule{} }

func (r *eofRule) match(c *Cursor, fire bool) Match {
	if c.HasNext() {
		return failed(c.pos)
	}
	c.Push()
	return r.succeed(c, Match{Begin: c.pos, End: c.pos, Markers: 1}, fire)
}

func (r *eofRule) String() string { return "!." }

type startOfLineRule struct{ base }

// StartOfLine matches without consuming at the start of the buffer or right
// after a newline.
func StartOfLine() Rule { return &startOfLineRule{} }

func (r *startOfLineRule) match(c *Cursor, fire bool) Match {
	if c.pos > 0 && c.buf[c.pos-1] != '\n' {
		return failed(c.pos)
	}
	c.Push()
	return r.succeed(c, Match{Begin: c.pos, End: c.pos, Markers: 1}, fire)
}

func (r *startOfLineRule) String() string { return "^" }

type newlineOrEOFRule struct{ base }

// NewlineOrEndOfFile consumes a newline or matches the end of input.
func NewlineOrEndOfFile() Rule { return &newlineOrEOFRule{} }

func (r *newlineOrEOFRule) match(c *Cursor, fire bool) Match {
	b, ok := c.Peek()
	if ok && b != '\n' {
		return failed(c.pos)
	}
	begin := c.pos
	c.Push()
	if ok {
		c.Advance(1)
	}
	return r.succeed(c, Match{Begin: begin, End: c.pos, Markers: 1}, fire)
}

func (r *newlineOrEOFRule) String() string { return `("\n" / !.)` }

type errorRule struct {
	base
	msg string
}

// Error aborts the parse with msg whenever it is reached.
func Error(msg string) Rule { return &errorRule{msg: msg} }

func (r *errorRule) match(c *Cursor, _ bool) Match {
	Abort(c, "%s", r.msg)
	return Match{}
}

func (r *errorRule) String() string { return fmt.Sprintf("Error(%q)", r.msg) }
