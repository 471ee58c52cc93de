package peg

import (
	"errors"
	"fmt"
)

// FatalError aborts a whole parse. It is raised from action code with Abort
// and turned back into an ordinary error by Run.
type FatalError struct {
	Pos int
	Msg string
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("offset %d: %s", e.Pos, e.Msg)
}

// Abort stops the running parse immediately. The message is logged at error
// level on the cursor's sink before unwinding.
func Abort(c *Cursor, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	c.log.Error(msg, "offset", c.pos)
	panic(&FatalError{Pos: c.pos, Msg: msg})
}

// Apply matches r at the cursor with actions enabled. Fatal errors
// propagate as panics; use Run at the outermost call.
func (c *Cursor) Apply(r Rule) Match {
	return r.match(c, true)
}

// Run matches r at the cursor and converts a fatal abort into an error.
// Panics that are not fatal errors are re-raised.
func Run(r Rule, c *Cursor) (m Match, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			var fe *FatalError
			if e, ok := rec.(error); ok && errors.As(e, &fe) {
				err = fe
				return
			}
			panic(rec)
		}
	}()
	return c.Apply(r), nil
}

// RunString is Run over a fresh cursor. It returns the match and the
// resulting buffer.
func RunString(r Rule, input string, opts ...CursorOption) (Match, string, error) {
	c := NewCursor(input, opts...)
	m, err := Run(r, c)
	if err != nil {
		return Match{}, "", err
	}
	return m, c.String(), nil
}
