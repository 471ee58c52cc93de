// input.go implements the handle given to actions: read access to the
// matched span and the edit-and-rescan protocol.
package peg

import "strconv"

// Match is the outcome of one rule attempt.
type Match struct {
	Matched bool
	Begin   int
	End     int
	// Markers is the number of backtrack markers the rule left on the
	// cursor's stack. Failed matches always report 0.
	Markers int
}

// Len returns the length of the matched span.
func (m Match) Len() int { return m.End - m.Begin }

func failed(pos int) Match {
	return Match{Begin: pos, End: pos}
}

// Action is invoked after its rule matched.
type Action func(in *Input)

// Input is bound to one successful match for the duration of an action call.
// It allows at most one buffer edit per call.
type Input struct {
	c      *Cursor
	m      *Match
	edited bool
}

func newInput(c *Cursor, m *Match) *Input {
	return &Input{c: c, m: m}
}

// Begin returns the span start offset.
func (in *Input) Begin() int { return in.m.Begin }

// End returns the span end offset.
func (in *Input) End() int { return in.m.End }

// Text returns the matched text.
func (in *Input) Text() string { return in.c.Text(in.m.Begin, in.m.End) }

// Quoted returns the matched text wrapped in single quotes.
func (in *Input) Quoted() string { return "'" + in.Text() + "'" }

// GoString returns the matched text as a Go string literal.
func (in *Input) GoString() string { return strconv.Quote(in.Text()) }

// TrimEnd returns the matched text without its last n bytes.
func (in *Input) TrimEnd(n int) string {
	s := in.Text()
	if n >= len(s) {
		return ""
	}
	return s[:len(s)-n]
}

// TrimStart returns the matched text without its first n bytes.
func (in *Input) TrimStart(n int) string {
	s := in.Text()
	if n >= len(s) {
		return ""
	}
	return s[n:]
}

// Erase deletes the matched span. The cursor collapses to the deletion point.
func (in *Input) Erase() {
	in.edit()
	in.c.splice(in.m.Begin, in.m.End, "")
	in.m.End = in.m.Begin
	in.c.pos = in.m.End
}

// Replace substitutes text for the matched span and moves the cursor past it.
func (in *Input) Replace(text string) {
	in.edit()
	in.c.splice(in.m.Begin, in.m.End, text)
	in.m.End = in.m.Begin + len(text)
	in.c.pos = in.m.End
}

// Insert inserts text right after the matched span. The span grows to cover
// it and the cursor moves to the new end.
func (in *Input) Insert(text string) {
	in.edit()
	in.c.splice(in.m.End, in.m.End, text)
	in.m.End += len(text)
	in.c.pos = in.m.End
}

// Rescan moves the cursor back to where the rule began so that whatever now
// occupies the span is matched again by the enclosing rules.
func (in *Input) Rescan() {
	in.c.RewindMarkers(in.m.Markers)
}

// EraseAndRescan erases the span and rescans.
func (in *Input) EraseAndRescan() {
	in.Erase()
	in.Rescan()
}

// ReplaceAndRescan replaces the span and rescans.
func (in *Input) ReplaceAndRescan(text string) {
	in.Replace(text)
	in.Rescan()
}

// InsertAndRescan inserts after the span and rescans.
func (in *Input) InsertAndRescan(text string) {
	in.Insert(text)
	in.Rescan()
}

// Abort stops the parse with a fatal error at the start of the span.
func (in *Input) Abort(format string, args ...any) {
	in.c.pos = in.m.Begin
	Abort(in.c, format, args...)
}

func (in *Input) edit() {
	if in.edited {
		Abort(in.c, "cannot modify input more than once in the same rule")
	}
	in.edited = true
}
