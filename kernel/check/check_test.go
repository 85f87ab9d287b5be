package check

import (
	"testing"

	"github.com/fora-lang/fora/kernel/classes"
	"github.com/fora-lang/fora/kernel/kerr"
	"github.com/fora-lang/fora/kernel/term"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func v(name string) *term.Var { return &term.Var{Name: name} }

func tType() *term.Sort { return &term.Sort{Kind: term.SortType} }
func tProp() *term.Sort { return &term.Sort{Kind: term.SortProp} }

func mustOk(t *testing.T, errs *kerr.Errors) {
	t.Helper()
	if errs.HasError() {
		for _, e := range errs.Errors() {
			t.Log(kerr.FormatWithCode(e))
		}
		t.FailNow()
	}
}

func expectCode(t *testing.T, errs *kerr.Errors, code kerr.ErrCode) kerr.KernelError {
	t.Helper()
	require.True(t, errs.HasError(), "expected an error")
	e := errs.Errors()[0]
	require.Equal(t, code, e.Code(), "got: %s", kerr.FormatWithCode(e))
	return e
}

func addRotBody() term.Term {
	row := func(a, b, c string) term.Term {
		return &term.Match{Scrutinee: v("b"), Arms: []term.Arm{
			{Ctor: "r0", Body: v(a)}, {Ctor: "r120", Body: v(b)}, {Ctor: "r240", Body: v(c)},
		}}
	}
	return &term.Lambda{Param: "a", ParamType: v("Rot"),
		Body: &term.Lambda{Param: "b", ParamType: v("Rot"),
			Body: &term.Match{Scrutinee: v("a"), Arms: []term.Arm{
				{Ctor: "r0", Body: v("b")},
				{Ctor: "r120", Body: row("r120", "r240", "r0")},
				{Ctor: "r240", Body: row("r240", "r0", "r120")},
			}},
		},
	}
}

// world declares the prelude plus the Socrates and rotation domains:
//
//	Eq, rfl, Nat; Human, socrates, Mortal, mortal
//	Rot with addRot; classes Add, Zero, AddZeroClass
func world(t *testing.T) (*classes.Registry, *Checker) {
	t.Helper()
	r := classes.NewRegistry()
	ok := func(errs *kerr.Errors) { mustOk(t, errs) }

	ok(r.DeclareAxiom("Nat", tType(), term.Range{}))
	ok(r.DeclareAxiom("Eq", &term.Pi{Param: "A", ParamType: tType(),
		Body: term.Arrow(v("A"), term.Arrow(v("A"), tProp()))}, term.Range{}))
	ok(r.DeclareAxiom("rfl", &term.Pi{Param: "A", ParamType: tType(),
		Body: &term.Pi{Param: "a", ParamType: v("A"),
			Body: term.Apply(v("Eq"), v("A"), v("a"), v("a"))}}, term.Range{}))

	ok(r.DeclareAxiom("Human", tType(), term.Range{}))
	ok(r.DeclareAxiom("socrates", v("Human"), term.Range{}))
	ok(r.DeclareAxiom("Mortal", term.Arrow(v("Human"), tProp()), term.Range{}))
	ok(r.DeclareAxiom("mortal", &term.Pi{Param: "h", ParamType: v("Human"),
		Body: &term.App{Fn: v("Mortal"), Arg: v("h")}}, term.Range{}))

	rot := v("Rot")
	ok(r.DeclareData(&classes.DataDecl{Name: "Rot", Ctors: []string{"r0", "r120", "r240"}}))
	ok(r.DeclareDef("addRot", term.Arrow(rot, term.Arrow(rot, rot)), addRotBody(), term.Range{}))

	ok(r.DeclareClass(&classes.ClassDecl{Name: "Add", CarrierParam: "A", Fields: []classes.Field{
		{Name: "add", Type: term.Arrow(v("A"), term.Arrow(v("A"), v("A")))},
	}}))
	ok(r.DeclareClass(&classes.ClassDecl{Name: "Zero", CarrierParam: "A", Fields: []classes.Field{
		{Name: "zero", Type: v("A")},
	}}))
	lawOn := func(lhs term.Term) term.Term {
		return &term.Pi{Param: "a", ParamType: v("A"),
			Body: term.Apply(v("Eq"), v("A"), lhs, v("a"))}
	}
	ok(r.DeclareClass(&classes.ClassDecl{Name: "AddZeroClass", CarrierParam: "A", Extends: []string{"Zero", "Add"}, Fields: []classes.Field{
		{Name: "zero_add", Type: lawOn(term.Apply(v("add"), v("zero"), v("a")))},
		{Name: "add_zero", Type: lawOn(term.Apply(v("add"), v("a"), v("zero")))},
	}}))

	ok(r.DeclareInstance(&classes.InstanceDecl{Class: "Add", Carrier: rot, Fields: []term.FieldValue{
		{Name: "add", Value: v("addRot")},
	}}))
	ok(r.DeclareInstance(&classes.InstanceDecl{Class: "Zero", Carrier: rot, Fields: []term.FieldValue{
		{Name: "zero", Value: v("r0")},
	}}))
	return r, New(r)
}

func TestTypeOfVar(t *testing.T) {
	_, c := world(t)

	ty, errs := c.TypeOf(NewContext().Bind("x", v("Rot")), v("x"))
	mustOk(t, errs)
	assert.Equal(t, "Rot", term.Show(ty))

	ty, errs = c.TypeOf(NewContext(), v("socrates"))
	mustOk(t, errs)
	assert.Equal(t, "Human", term.Show(ty))

	// binders shadow globals
	ty, errs = c.TypeOf(NewContext().Bind("socrates", v("Rot")), v("socrates"))
	mustOk(t, errs)
	assert.Equal(t, "Rot", term.Show(ty))

	_, errs = c.TypeOf(NewContext(), v("plato"))
	e := expectCode(t, errs, kerr.UnboundVariable)
	assert.Contains(t, e.Error(), "plato")
}

func TestTypeOfLambda(t *testing.T) {
	_, c := world(t)
	ty, errs := c.TypeOf(NewContext(), &term.Lambda{Param: "a", ParamType: v("Rot"), Body: v("a")})
	mustOk(t, errs)
	assert.Equal(t, "Rot -> Rot", term.Show(ty))
}

func TestUniversalSpecialization(t *testing.T) {
	_, c := world(t)

	// mortal : forall (h : Human), Mortal h, so applying it to socrates
	// proves Mortal socrates
	ty, errs := c.TypeOf(NewContext(), &term.App{Fn: v("mortal"), Arg: v("socrates")})
	mustOk(t, errs)
	assert.Equal(t, "Mortal socrates", term.Show(ty))
}

func TestTypeOfAppErrors(t *testing.T) {
	_, c := world(t)

	_, errs := c.TypeOf(NewContext(), &term.App{Fn: v("mortal"), Arg: v("r0")})
	e := expectCode(t, errs, kerr.TypeMismatch)
	assert.Contains(t, e.Error(), "Human")
	assert.Contains(t, e.Error(), "Rot")

	_, errs = c.TypeOf(NewContext(), &term.App{Fn: v("socrates"), Arg: v("socrates")})
	e = expectCode(t, errs, kerr.NotAFunction)
	assert.Contains(t, e.Error(), "Human")
}

func TestTypeOfPiSorts(t *testing.T) {
	_, c := world(t)

	// a family of propositions is a proposition
	ty, errs := c.TypeOf(NewContext(), &term.Pi{Param: "h", ParamType: v("Human"),
		Body: &term.App{Fn: v("Mortal"), Arg: v("h")}})
	mustOk(t, errs)
	assert.Equal(t, "Prop", term.Show(ty))

	ty, errs = c.TypeOf(NewContext(), term.Arrow(v("Rot"), v("Rot")))
	mustOk(t, errs)
	assert.Equal(t, "Type", term.Show(ty))
}

func TestDefEqReducesBeforeComparing(t *testing.T) {
	_, c := world(t)

	lawFor := func(lhs term.Term) term.Term {
		return &term.Pi{Param: "a", ParamType: v("Rot"),
			Body: term.Apply(v("Eq"), v("Rot"), lhs, v("a"))}
	}
	reflexive := lawFor(v("a"))

	// addRot r0 a computes to a, because addRot matches on its first
	// argument; addRot a r0 stays stuck on the abstract a
	assert.True(t, c.DefEq(lawFor(term.Apply(v("addRot"), v("r0"), v("a"))), reflexive))
	assert.False(t, c.DefEq(lawFor(term.Apply(v("addRot"), v("a"), v("r0"))), reflexive))
}

func TestTypeOfStructLit(t *testing.T) {
	_, c := world(t)

	lit := &term.StructLit{Class: "Add", Carrier: v("Rot"), Fields: []term.FieldValue{
		{Name: "add", Value: v("addRot")},
	}}
	ty, errs := c.TypeOf(NewContext(), lit)
	mustOk(t, errs)
	assert.Equal(t, "Add Rot", term.Show(ty))

	_, errs = c.TypeOf(NewContext(), &term.StructLit{Class: "Semiring", Carrier: v("Rot")})
	expectCode(t, errs, kerr.UnknownClass)

	_, errs = c.TypeOf(NewContext(), &term.StructLit{Class: "Add", Carrier: v("Rot"), Fields: []term.FieldValue{
		{Name: "mul", Value: v("addRot")},
	}})
	expectCode(t, errs, kerr.UnknownField)

	// a value of the wrong type is rejected against the telescope
	_, errs = c.TypeOf(NewContext(), &term.StructLit{Class: "Add", Carrier: v("Rot"), Fields: []term.FieldValue{
		{Name: "add", Value: v("r0")},
	}})
	expectCode(t, errs, kerr.TypeMismatch)

	// and so is a carrier that is not a type
	_, errs = c.TypeOf(NewContext(), &term.StructLit{Class: "Add", Carrier: v("r0")})
	expectCode(t, errs, kerr.TypeMismatch)
}

func TestTypeOfProj(t *testing.T) {
	_, c := world(t)

	lit := &term.StructLit{Class: "Add", Carrier: v("Rot"), Fields: []term.FieldValue{
		{Name: "add", Value: v("addRot")},
	}}
	ty, errs := c.TypeOf(NewContext(), &term.Proj{Struct: lit, Field: "add"})
	mustOk(t, errs)
	assert.Equal(t, "Rot -> Rot -> Rot", term.Show(ty))

	_, errs = c.TypeOf(NewContext(), &term.Proj{Struct: lit, Field: "mul"})
	expectCode(t, errs, kerr.UnknownField)

	_, errs = c.TypeOf(NewContext(), &term.Proj{Struct: v("socrates"), Field: "add"})
	expectCode(t, errs, kerr.UnknownField)
}

func TestTypeOfMatch(t *testing.T) {
	_, c := world(t)
	ctx := NewContext().Bind("x", v("Rot"))

	full := &term.Match{Scrutinee: v("x"), Arms: []term.Arm{
		{Ctor: "r0", Body: v("r0")},
		{Ctor: "r120", Body: v("r240")},
		{Ctor: "r240", Body: v("r120")},
	}}
	ty, errs := c.TypeOf(ctx, full)
	mustOk(t, errs)
	assert.Equal(t, "Rot", term.Show(ty))

	wildcarded := &term.Match{Scrutinee: v("x"), Arms: []term.Arm{
		{Ctor: "r0", Body: v("r0")},
		{Ctor: term.WildcardPattern, Body: v("r120")},
	}}
	_, errs = c.TypeOf(ctx, wildcarded)
	mustOk(t, errs)

	missing := &term.Match{Scrutinee: v("x"), Arms: []term.Arm{
		{Ctor: "r0", Body: v("r0")},
	}}
	_, errs = c.TypeOf(ctx, missing)
	e := expectCode(t, errs, kerr.MissingCase)
	assert.Contains(t, e.Error(), "r120")
	assert.Contains(t, e.Error(), "r240")

	unknown := &term.Match{Scrutinee: v("x"), Arms: []term.Arm{
		{Ctor: "r360", Body: v("r0")},
	}}
	_, errs = c.TypeOf(ctx, unknown)
	expectCode(t, errs, kerr.UnknownConstructor)

	disagreeing := &term.Match{Scrutinee: v("x"), Arms: []term.Arm{
		{Ctor: "r0", Body: v("r0")},
		{Ctor: term.WildcardPattern, Body: v("socrates")},
	}}
	_, errs = c.TypeOf(ctx, disagreeing)
	expectCode(t, errs, kerr.TypeMismatch)

	notData := &term.Match{Scrutinee: v("socrates"), Arms: []term.Arm{
		{Ctor: term.WildcardPattern, Body: v("r0")},
	}}
	_, errs = c.TypeOf(ctx, notData)
	expectCode(t, errs, kerr.TypeMismatch)
}

func TestCheckDef(t *testing.T) {
	_, c := world(t)

	mustOk(t, c.CheckDef(NewContext(), "idRot", term.Arrow(v("Rot"), v("Rot")),
		&term.Lambda{Param: "a", ParamType: v("Rot"), Body: v("a")}, term.Range{}))

	errs := c.CheckDef(NewContext(), "bad", term.Arrow(v("Rot"), v("Rot")), v("socrates"), term.Range{})
	expectCode(t, errs, kerr.TypeMismatch)
}

func TestCheckClass(t *testing.T) {
	_, c := world(t)

	mustOk(t, c.CheckClass(NewContext(), &classes.ClassDecl{Name: "Neg", CarrierParam: "A", Fields: []classes.Field{
		{Name: "neg", Type: term.Arrow(v("A"), v("A"))},
	}}))

	// r0 is a value, not a type
	errs := c.CheckClass(NewContext(), &classes.ClassDecl{Name: "Bad", CarrierParam: "A", Fields: []classes.Field{
		{Name: "op", Type: v("r0")},
	}})
	expectCode(t, errs, kerr.TypeMismatch)
}

func TestCheckInstanceLawDischargedByRfl(t *testing.T) {
	_, c := world(t)

	byRfl := &term.Lambda{Param: "a", ParamType: v("Rot"),
		Body: term.Apply(v("rfl"), v("Rot"), v("a"))}

	// zero_add holds by rfl: addRot r0 a computes to a. add_zero does
	// not compute, so it needs its own proof term.
	inst := &classes.InstanceDecl{Class: "AddZeroClass", Carrier: v("Rot"), Fields: []term.FieldValue{
		{Name: "zero_add", Value: byRfl},
		{Name: "add_zero", Value: v("addRot_add_zero")},
	}}

	r2, c2 := world(t)
	mustOk(t, r2.DeclareAxiom("addRot_add_zero",
		&term.Pi{Param: "a", ParamType: v("Rot"),
			Body: term.Apply(v("Eq"), v("Rot"), term.Apply(v("addRot"), v("a"), v("r0")), v("a"))},
		term.Range{}))
	mustOk(t, c2.CheckInstance(NewContext(), inst))

	// the same rfl proof cannot discharge add_zero
	badInst := &classes.InstanceDecl{Class: "AddZeroClass", Carrier: v("Rot"), Fields: []term.FieldValue{
		{Name: "zero_add", Value: byRfl},
		{Name: "add_zero", Value: byRfl},
	}}
	errs := c.CheckInstance(NewContext(), badInst)
	e := expectCode(t, errs, kerr.TypeMismatch)
	assert.Contains(t, e.Error(), "add_zero")
}

func TestCheckInstanceWrongFieldType(t *testing.T) {
	_, c := world(t)
	errs := c.CheckInstance(NewContext(), &classes.InstanceDecl{Class: "Add", Carrier: v("Rot"), Fields: []term.FieldValue{
		{Name: "add", Value: v("r0")},
	}})
	expectCode(t, errs, kerr.TypeMismatch)
}

func TestContextString(t *testing.T) {
	ctx := NewContext().Bind("h", v("Human")).Bind("a", v("Rot"))
	assert.Equal(t, "h : Human, a : Rot", ctx.String())
	assert.Equal(t, "", NewContext().String())
}
