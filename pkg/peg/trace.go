package peg

type traceRule struct {
	base
	name string
	rule Rule
}

// Trace wraps rule and logs every attempt at trace level on the cursor's
// logger: the captured text on success, the position on failure.
func Trace(name string, rule Rule) Rule {
	return &traceRule{name: name, rule: rule}
}

func (r *traceRule) match(c *Cursor, fire bool) Match {
	begin := c.pos
	m := r.rule.match(c, fire)
	if !m.Matched {
		if c.log.IsTrace() {
			c.log.Trace("did not match", "rule", r.name, "offset", begin)
		}
		return m
	}
	if c.log.IsTrace() {
		c.log.Trace("captured", "rule", r.name, "text", c.Text(m.Begin, m.End), "begin", m.Begin, "end", m.End)
	}
	return r.succeed(c, m, fire)
}

func (r *traceRule) String() string { return r.name }
