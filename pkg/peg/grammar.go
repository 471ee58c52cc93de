package peg

import (
	"fmt"
	"sort"
)

// Grammar is an arena of named rules. Rules refer to each other, including
// themselves, through Ref handles that are resolved by index when matched,
// which is how recursive rules such as balanced parentheses are built.
type Grammar struct {
	index map[string]int
	rules []Rule
}

// NewGrammar creates an empty grammar.
func NewGrammar() *Grammar {
	return &Grammar{index: make(map[string]int)}
}

func (g *Grammar) slot(name string) int {
	if idx, ok := g.index[name]; ok {
		return idx
	}
	idx := len(g.rules)
	g.index[name] = idx
	g.rules = append(g.rules, nil)
	return idx
}

// Define binds name to r, replacing any earlier definition, and returns a
// reference to it.
func (g *Grammar) Define(name string, r Rule) Rule {
	idx := g.slot(name)
	g.rules[idx] = r
	return &refRule{g: g, name: name, idx: idx}
}

// Ref returns a handle to the rule called name. The rule may be defined
// later.
func (g *Grammar) Ref(name string) Rule {
	return &refRule{g: g, name: name, idx: g.slot(name)}
}

// Lookup returns the rule defined under name.
func (g *Grammar) Lookup(name string) (Rule, bool) {
	idx, ok := g.index[name]
	if !ok || g.rules[idx] == nil {
		return nil, false
	}
	return g.rules[idx], true
}

// Check reports every name that was referenced but never defined.
func (g *Grammar) Check() error {
	var missing []string
	for name, idx := range g.index {
		if g.rules[idx] == nil {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return fmt.Errorf("undefined rules: %v", missing)
}

type refRule struct {
	base
	g    *Grammar
	name string
	idx  int
}

func (r *refRule) match(c *Cursor, fire bool) Match {
	target := r.g.rules[r.idx]
	if target == nil {
		panic(fmt.Sprintf("peg: rule %q used before it was defined", r.name))
	}
	m := target.match(c, fire)
	if !m.Matched {
		return m
	}
	return r.succeed(c, m, fire)
}

func (r *refRule) String() string { return r.name }
