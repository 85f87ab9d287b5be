package eval

import (
	"github.com/hashicorp/go-set/v3"

	"github.com/fora-lang/fora/kernel/term"
)

// Globals supplies the reducer with the global declarations it may
// unfold. Implemented by the class registry; declared here so the
// reducer does not depend on it.
type Globals interface {
	// DefBody returns the body a defined name unfolds to. Axioms,
	// datatypes, and constructors have no body.
	DefBody(name string) (term.Term, bool)

	// IsConstructor reports whether name is a datatype constructor.
	// An application headed by a constructor is a value, and match
	// selects arms by constructor name.
	IsConstructor(name string) bool
}

// Reduce normalizes t: beta and projection redexes are contracted,
// defined names unfold to their bodies, and match selects its arm once
// the scrutinee is a constructor. Reduction goes under binders and
// produces the unique normal form, so Reduce of its own result is a
// no-op.
//
// Termination holds because a definition can only mention earlier
// declarations, and none of the kernel constructs introduce recursion.
func Reduce(globals Globals, t term.Term) term.Term {
	r := reducer{globals: globals, underBinders: true}
	return r.reduce(t, set.New[string](4))
}

// Value evaluates t the way an interpreter would: the head is reduced
// until it is a value, but lambda and forall bodies are left untouched.
// Arguments of a stuck application still evaluate, so neutral terms
// print with their parts as reduced as they can be.
func Value(globals Globals, t term.Term) term.Term {
	r := reducer{globals: globals}
	return r.reduce(t, set.New[string](4))
}

type reducer struct {
	globals      Globals
	underBinders bool
}

// reduce carries the set of names bound by the binders it has descended
// under. A bound name shadows any global with the same name, so it is
// never delta-unfolded and never selects a match arm: a variable bound
// to an unknown value is neutral even when a def or constructor shares
// its name.
func (r reducer) reduce(t term.Term, bound *set.Set[string]) term.Term {
	switch t := t.(type) {
	case *term.Var:
		if bound.Contains(t.Name) {
			return t
		}
		if body, ok := r.globals.DefBody(t.Name); ok {
			return r.reduce(body, bound)
		}
		return t
	case *term.Sort:
		return t
	case *term.Pi:
		if !r.underBinders {
			return t
		}
		return &term.Pi{
			Range:     t.Range,
			Param:     t.Param,
			ParamType: r.reduce(t.ParamType, bound),
			Body:      r.reduce(t.Body, withBound(bound, t.Param)),
		}
	case *term.Lambda:
		if !r.underBinders {
			return t
		}
		return &term.Lambda{
			Range:     t.Range,
			Param:     t.Param,
			ParamType: r.reduce(t.ParamType, bound),
			Body:      r.reduce(t.Body, withBound(bound, t.Param)),
		}
	case *term.App:
		fn := r.reduce(t.Fn, bound)
		if lam, ok := fn.(*term.Lambda); ok {
			// call by name: the argument is substituted unreduced
			return r.reduce(term.Substitute(lam.Body, lam.Param, t.Arg), bound)
		}
		return &term.App{Range: t.Range, Fn: fn, Arg: r.reduce(t.Arg, bound)}
	case *term.StructLit:
		fields := make([]term.FieldValue, len(t.Fields))
		for i, f := range t.Fields {
			fields[i] = term.FieldValue{Name: f.Name, Value: r.reduce(f.Value, bound)}
		}
		return &term.StructLit{Range: t.Range, Class: t.Class, Carrier: r.reduce(t.Carrier, bound), Fields: fields}
	case *term.Proj:
		s := r.reduce(t.Struct, bound)
		if lit, ok := s.(*term.StructLit); ok {
			if v, ok := lit.Field(t.Field); ok {
				return r.reduce(v, bound)
			}
		}
		return &term.Proj{Range: t.Range, Struct: s, Field: t.Field}
	case *term.Match:
		scrutinee := r.reduce(t.Scrutinee, bound)
		if v, ok := scrutinee.(*term.Var); ok && !bound.Contains(v.Name) && r.globals.IsConstructor(v.Name) {
			if arm, ok := t.Arm(v.Name); ok {
				return r.reduce(arm.Body, bound)
			}
		}
		arms := t.Arms
		if r.underBinders {
			arms = make([]term.Arm, len(t.Arms))
			for i, arm := range t.Arms {
				arms[i] = term.Arm{Ctor: arm.Ctor, Body: r.reduce(arm.Body, bound)}
			}
		}
		return &term.Match{Range: t.Range, Scrutinee: scrutinee, Arms: arms}
	default:
		return t
	}
}

// withBound mirrors the helper the free-variable walk uses: extend the
// set without mutating the caller's copy.
func withBound(bound *set.Set[string], name string) *set.Set[string] {
	if bound.Contains(name) {
		return bound
	}
	next := bound.Copy()
	next.Insert(name)
	return next
}
