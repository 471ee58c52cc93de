package peg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequence(t *testing.T) {
	c := NewCursor("abc")
	m := c.Apply(Sequence(Char('a'), Char('b')))
	require.True(t, m.Matched)
	assert.Equal(t, 2, m.End)
	assert.Equal(t, 3, m.Markers)
	assert.Equal(t, 3, c.Depth())

	c = NewCursor("ac")
	m = c.Apply(Sequence(Char('a'), Char('b')))
	assert.False(t, m.Matched)
	assert.Equal(t, 0, c.Position())
	assert.Equal(t, 0, c.Depth())

	m = NewCursor("x").Apply(Sequence())
	assert.True(t, m.Matched)
	assert.Equal(t, 1, m.Markers)
}

func TestSequenceActionsOnlyAfterChildren(t *testing.T) {
	var order []string
	r := Do(Sequence(
		Do(Char('a'), func(in *Input) { order = append(order, "a") }),
		Do(Char('b'), func(in *Input) { order = append(order, "b") }),
	), func(in *Input) { order = append(order, in.Text()) })

	NewCursor("ab").Apply(r)
	assert.Equal(t, []string{"a", "b", "ab"}, order)
}

func TestOr(t *testing.T) {
	c := NewCursor("a")
	m := c.Apply(Or(Char('x'), Char('a')))
	assert.True(t, m.Matched)
	assert.Equal(t, 1, m.Markers)
	assert.Equal(t, 1, c.Position())

	m = NewCursor("").Apply(Or())
	assert.True(t, m.Matched)
}

func TestOptional(t *testing.T) {
	c := NewCursor("a")
	m := c.Apply(Optional(Char('x')))
	assert.True(t, m.Matched)
	assert.Equal(t, 0, m.End)
	assert.Equal(t, 1, m.Markers)

	c = NewCursor("a")
	m = c.Apply(Optional(Char('a')))
	assert.True(t, m.Matched)
	assert.Equal(t, 1, m.End)
	assert.Equal(t, 2, m.Markers)
	assert.Equal(t, 2, c.Depth())
}

func TestRepetition(t *testing.T) {
	c := NewCursor("aaab")
	m := c.Apply(OneOrMore(Char('a')))
	require.True(t, m.Matched)
	assert.Equal(t, 3, m.End)
	assert.Equal(t, 3, m.Markers)

	m = NewCursor("b").Apply(OneOrMore(Char('a')))
	assert.False(t, m.Matched)

	m = NewCursor("b").Apply(ZeroOrMore(Char('a')))
	assert.True(t, m.Matched)
	assert.Equal(t, 0, m.End)
	assert.Equal(t, 1, m.Markers)

	m = NewCursor("aa").Apply(ZeroOrMore(Char('a')))
	assert.Equal(t, 2, m.End)
	assert.Equal(t, 3, m.Markers)
}

func TestRepetitionStopsOnZeroWidth(t *testing.T) {
	c := NewCursor("abc")
	m := c.Apply(OneOrMore(Optional(Char('x'))))
	assert.True(t, m.Matched)
	assert.Equal(t, 0, c.Position())
}

func TestLookahead(t *testing.T) {
	fired := false
	inner := Do(String("ab"), func(in *Input) { fired = true })

	c := NewCursor("abc")
	m := c.Apply(At(inner))
	assert.True(t, m.Matched)
	assert.Equal(t, 0, m.End)
	assert.Equal(t, 1, m.Markers)
	assert.Equal(t, 0, c.Position())
	assert.Equal(t, 1, c.Depth())
	assert.False(t, fired, "lookahead must not run actions")

	c = NewCursor("abc")
	m = c.Apply(NotAt(inner))
	assert.False(t, m.Matched)
	assert.Equal(t, 0, c.Position())
	assert.Equal(t, 0, c.Depth())
	assert.False(t, fired)

	m = NewCursor("abc").Apply(NotAt(Char('x')))
	assert.True(t, m.Matched)
}

func TestUntil(t *testing.T) {
	c := NewCursor("ab;c")
	m := c.Apply(Until(Char(';')))
	require.True(t, m.Matched)
	assert.Equal(t, 0, m.Begin)
	assert.Equal(t, 3, m.End)
	assert.Equal(t, 3, c.Position())
	assert.Equal(t, 2, m.Markers)

	c = NewCursor("abc")
	m = c.Apply(Until(Char(';')))
	assert.False(t, m.Matched)
	assert.Equal(t, 0, c.Position())
	assert.Equal(t, 0, c.Depth())

	c = NewCursor("abc")
	m = c.Apply(Until(NewlineOrEndOfFile()))
	assert.True(t, m.Matched)
	assert.Equal(t, 3, m.End)
}

func TestMatchBUntilA(t *testing.T) {
	c := NewCursor("ab)c")
	m := c.Apply(MatchBUntilA(Char(')'), Any()))
	require.True(t, m.Matched)
	assert.Equal(t, 3, m.End)
	assert.Equal(t, 3, m.Markers)

	c = NewCursor("ab")
	m = c.Apply(MatchBUntilA(Char(')'), Any()))
	assert.False(t, m.Matched)
	assert.Equal(t, 0, c.Position())
	assert.Equal(t, 0, c.Depth())
}

func TestTemporaryAction(t *testing.T) {
	inner, outer := false, ""
	r := TemporaryAction(Do(Char('a'), func(in *Input) { inner = true }), func(in *Input) {
		outer = in.Text()
	})

	m := NewCursor("a").Apply(r)
	assert.True(t, m.Matched)
	assert.False(t, inner)
	assert.Equal(t, "a", outer)
}

func TestPredicate(t *testing.T) {
	word := Predicate(OneOrMore(Range('a', 'z')), func(s string) bool { return s == "yes" })

	c := NewCursor("yes!")
	m := c.Apply(word)
	assert.True(t, m.Matched)
	assert.Equal(t, 3, m.End)

	c = NewCursor("no")
	m = c.Apply(word)
	assert.False(t, m.Matched)
	assert.Equal(t, 0, c.Position())
	assert.Equal(t, 0, c.Depth())
}

// A failed attempt must leave the cursor as if it was never made.
func TestFailedCompositesRestoreCursor(t *testing.T) {
	tests := []struct {
		name  string
		rule  Rule
		input string
	}{
		{"sequence", Sequence(Char('a'), Char('b'), Char('x')), "abc"},
		{"or", Or(Sequence(Char('a'), Char('x')), Char('z')), "abc"},
		{"one or more", OneOrMore(Sequence(Char('a'), Char('x'))), "ab"},
		{"at", At(Sequence(Char('a'), Char('x'))), "abc"},
		{"not at", NotAt(Sequence(Char('a'), Char('b'))), "abc"},
		{"until", Until(Char('z')), "abc"},
		{"b until a", MatchBUntilA(Char('z'), Char('a')), "aab"},
		{"predicate", Predicate(Any(), func(string) bool { return false }), "abc"},
		{"nested", Sequence(Optional(Char('a')), OneOrMore(Char('b')), Until(Char('q'))), "abbc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCursor("#" + tt.input)
			require.True(t, c.Apply(Char('#')).Matched)

			m := c.Apply(tt.rule)
			assert.False(t, m.Matched)
			assert.Equal(t, 0, m.Markers)
			assert.Equal(t, 1, c.Position())
			assert.Equal(t, 1, c.Depth())
		})
	}
}
