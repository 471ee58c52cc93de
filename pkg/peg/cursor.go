// cursor.go implements the scanning cursor: an offset into a mutable byte
// buffer plus the stack of backtrack markers used by every rule.
package peg

import (
	"github.com/hashicorp/go-hclog"
	"golang.org/x/exp/slices"
)

// Cursor is the mutable scanning state threaded through every match call.
// All positions are byte offsets into the buffer, so they stay meaningful
// across in-place edits of the buffer.
type Cursor struct {
	buf     []byte
	pos     int
	markers []int
	// high[i] is the largest of markers[:i+1].
	high []int

	// gen changes on every buffer edit and every rescan. Repetition rules use
	// it to tell progress from a zero-width match.
	gen uint64

	log hclog.Logger
}

// Snapshot is a saved cursor state. It is expressed in offsets and can be
// restored after the buffer has been edited.
type Snapshot struct {
	Position int
	Markers  []int
}

// CursorOption configures a Cursor.
type CursorOption func(c *Cursor)

// WithLogger sets the trace sink used by Trace and Error rules.
func WithLogger(log hclog.Logger) CursorOption {
	return func(c *Cursor) {
		c.log = log
	}
}

// NewCursor creates a cursor at the start of input.
func NewCursor(input string, opts ...CursorOption) *Cursor {
	c := &Cursor{
		buf: []byte(input),
		log: hclog.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// String returns the whole buffer.
func (c *Cursor) String() string { return string(c.buf) }

// Len returns the buffer length.
func (c *Cursor) Len() int { return len(c.buf) }

// Position returns the current offset.
func (c *Cursor) Position() int { return c.pos }

// SetPosition moves the cursor, clamping to the buffer bounds.
func (c *Cursor) SetPosition(pos int) {
	c.pos = c.clamp(pos)
}

// HasNext reports whether any input remains.
func (c *Cursor) HasNext() bool { return c.pos < len(c.buf) }

// Peek returns the byte at the cursor without consuming it.
func (c *Cursor) Peek() (byte, bool) {
	if !c.HasNext() {
		return 0, false
	}
	return c.buf[c.pos], true
}

// Advance moves the cursor n bytes forward, stopping at the end of input.
func (c *Cursor) Advance(n int) {
	c.pos = c.clamp(c.pos + n)
}

// Text returns the buffer contents between two offsets.
func (c *Cursor) Text(begin, end int) string {
	begin, end = c.clamp(begin), c.clamp(end)
	if end < begin {
		return ""
	}
	return string(c.buf[begin:end])
}

// Push records the current position on the backtrack stack.
func (c *Cursor) Push() { c.push(c.pos) }

// PushAt records an arbitrary position on the backtrack stack.
func (c *Cursor) PushAt(pos int) { c.push(c.clamp(pos)) }

func (c *Cursor) push(pos int) {
	high := pos
	if n := len(c.high); n > 0 && c.high[n-1] > high {
		high = c.high[n-1]
	}
	c.markers = append(c.markers, pos)
	c.high = append(c.high, high)
}

// Pop removes the top marker and moves the cursor to it.
func (c *Cursor) Pop() {
	c.PopN(1)
}

// PopN removes n markers. The cursor ends at the deepest marker removed.
// Popping zero markers is a no-op.
func (c *Cursor) PopN(n int) {
	if n <= 0 {
		return
	}
	if n > len(c.markers) {
		n = len(c.markers)
	}
	if n == 0 {
		return
	}
	idx := len(c.markers) - n
	c.pos = c.clamp(c.markers[idx])
	c.markers = c.markers[:idx]
	c.high = c.high[:idx]
}

// Depth returns the number of markers on the backtrack stack.
func (c *Cursor) Depth() int { return len(c.markers) }

// Save captures the cursor position and backtrack stack.
func (c *Cursor) Save() Snapshot {
	markers := make([]int, len(c.markers))
	copy(markers, c.markers)
	return Snapshot{Position: c.pos, Markers: markers}
}

// Load restores a snapshot taken with Save.
func (c *Cursor) Load(s Snapshot) {
	c.markers = c.markers[:0]
	c.high = c.high[:0]
	for _, m := range s.Markers {
		c.push(c.clamp(m))
	}
	c.pos = c.clamp(s.Position)
}

// RewindMarkers moves the cursor to the position recorded n markers below
// the top of the stack, leaving the stack untouched. With fewer than n
// markers the cursor goes back to the start of the buffer.
func (c *Cursor) RewindMarkers(n int) {
	if n > 0 && len(c.markers) >= n {
		c.pos = c.clamp(c.markers[len(c.markers)-n])
	} else {
		c.pos = 0
	}
	c.gen++
}

// splice replaces buf[begin:end] with text and re-derives every recorded
// offset: positions before begin are unchanged, positions inside the
// replaced span collapse to begin and positions after it shift by the
// length difference.
func (c *Cursor) splice(begin, end int, text string) {
	begin, end = c.clamp(begin), c.clamp(end)
	if end < begin {
		end = begin
	}
	delta := len(text) - (end - begin)

	c.buf = slices.Replace(c.buf, begin, end, []byte(text)...)

	remap := func(p int) int {
		switch {
		case p <= begin:
			return p
		case p < end:
			return begin
		default:
			return p + delta
		}
	}
	// Markers at or before begin are unchanged. remap is monotonic, so the
	// running maximum is remapped along with the markers it covers.
	for i := len(c.markers) - 1; i >= 0 && c.high[i] > begin; i-- {
		c.markers[i] = remap(c.markers[i])
		c.high[i] = remap(c.high[i])
	}
	c.pos = remap(c.pos)
	c.gen++
}

func (c *Cursor) clamp(pos int) int {
	switch {
	case pos < 0:
		return 0
	case pos > len(c.buf):
		return len(c.buf)
	}
	return pos
}
