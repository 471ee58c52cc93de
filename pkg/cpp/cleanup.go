package cpp

// RemoveLineContinuations deletes every backslash-newline pair, joining the
// physical lines it separates.
func (e *Engine) RemoveLineContinuations(input string) (string, error) {
	return e.run(e.continuations, input)
}

// RemoveComments deletes // comments up to the end of their line and
// every /* */ comment. Comment markers inside
// string and character literals are left alone. An unterminated block
// comment is an error.
func (e *Engine) RemoveComments(input string) (string, error) {
	return e.run(e.comments, input)
}
