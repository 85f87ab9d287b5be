package frontend

import (
	"github.com/fora-lang/fora/kernel/classes"
	"github.com/fora-lang/fora/kernel/term"
)

// seedPrelude installs the constants every program can assume:
//
//	Nat : Type
//	Eq  : forall (A : Type), A -> A -> Prop
//	rfl : forall (A : Type), forall (a : A), Eq A a a
//
// Propositional law fields state Eq-applications, and rfl discharges
// one exactly when both sides are definitionally equal. That is the
// whole proof theory the kernel carries: anything that does not hold
// by computation has to be an axiom.
func seedPrelude(r *classes.Registry) {
	typ := &term.Sort{Kind: term.SortType}
	prop := &term.Sort{Kind: term.SortProp}
	a := &term.Var{Name: "A"}

	// the prelude only declares fresh names into an empty registry,
	// so the errors are structurally impossible
	_ = r.DeclareAxiom("Nat", typ, term.Range{})
	_ = r.DeclareAxiom("Eq", &term.Pi{
		Param:     "A",
		ParamType: typ,
		Body:      term.Arrow(a, term.Arrow(a, prop)),
	}, term.Range{})
	_ = r.DeclareAxiom("rfl", &term.Pi{
		Param:     "A",
		ParamType: typ,
		Body: &term.Pi{
			Param:     "a",
			ParamType: a,
			Body:      term.Apply(&term.Var{Name: "Eq"}, a, &term.Var{Name: "a"}, &term.Var{Name: "a"}),
		},
	}, term.Range{})
}
