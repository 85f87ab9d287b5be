package check

import (
	"strings"

	"github.com/benbjohnson/immutable"
	"github.com/fora-lang/fora/kernel/term"
)

// Context is the ordered set of assumptions a term is checked under:
// lambda and forall binders walked into, ambient variables, and class
// telescopes. Extending returns a new context sharing structure with
// the old one, so checking under binders never copies.
type Context struct {
	types *immutable.Map[string, term.Term]
	names []string
}

func NewContext() Context {
	return Context{types: immutable.NewMap[string, term.Term](immutable.NewHasher(""))}
}

// Bind returns a context that also assumes name : ty. A rebound name
// shadows the outer assumption.
func (c Context) Bind(name string, ty term.Term) Context {
	names := make([]string, len(c.names), len(c.names)+1)
	copy(names, c.names)
	return Context{types: c.types.Set(name, ty), names: append(names, name)}
}

// Lookup returns the assumed type of name.
func (c Context) Lookup(name string) (term.Term, bool) {
	if c.types == nil {
		return nil, false
	}
	return c.types.Get(name)
}

// Names returns the assumption names in the order they were bound,
// innermost last. Shadowed entries appear once per binding.
func (c Context) Names() []string {
	return c.names
}

// String renders the assumptions for diagnostics, innermost last.
func (c Context) String() string {
	if c.types == nil || len(c.names) == 0 {
		return ""
	}
	var b strings.Builder
	printed := map[string]bool{}
	// walk backwards so shadowed bindings are skipped, then reverse
	var parts []string
	for i := len(c.names) - 1; i >= 0; i-- {
		name := c.names[i]
		if printed[name] {
			continue
		}
		printed[name] = true
		if ty, ok := c.types.Get(name); ok {
			parts = append(parts, name+" : "+term.Show(ty))
		}
	}
	for i := len(parts) - 1; i >= 0; i-- {
		b.WriteString(parts[i])
		if i > 0 {
			b.WriteString(", ")
		}
	}
	return b.String()
}
