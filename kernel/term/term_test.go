package term

import (
	"go/token"
	"testing"

	"github.com/stretchr/testify/assert"
)

func v(name string) *Var { return &Var{Name: name} }

func TestSubstituteFreeVar(t *testing.T) {
	testCases := []struct {
		name     string
		in       Term
		varName  string
		value    Term
		expected Term
	}{
		{
			name:     "replaces free occurrence",
			in:       &App{Fn: v("f"), Arg: v("x")},
			varName:  "x",
			value:    v("y"),
			expected: &App{Fn: v("f"), Arg: v("y")},
		},
		{
			name:     "leaves other vars alone",
			in:       v("z"),
			varName:  "x",
			value:    v("y"),
			expected: v("z"),
		},
		{
			name:     "binder shadows substitution",
			in:       &Lambda{Param: "x", ParamType: v("T"), Body: v("x")},
			varName:  "x",
			value:    v("y"),
			expected: &Lambda{Param: "x", ParamType: v("T"), Body: v("x")},
		},
		{
			name:     "substitutes in param type of shadowing binder",
			in:       &Lambda{Param: "x", ParamType: v("x"), Body: v("x")},
			varName:  "x",
			value:    v("T"),
			expected: &Lambda{Param: "x", ParamType: v("T"), Body: v("x")},
		},
		{
			name:     "substitutes under non-shadowing binder",
			in:       &Pi{Param: "a", ParamType: v("T"), Body: &App{Fn: v("P"), Arg: v("a")}},
			varName:  "P",
			value:    v("Q"),
			expected: &Pi{Param: "a", ParamType: v("T"), Body: &App{Fn: v("Q"), Arg: v("a")}},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Substitute(tc.in, tc.varName, tc.value)
			assert.True(t, AlphaEq(tc.expected, got), "expected %s, got %s", Show(tc.expected), Show(got))
		})
	}
}

func TestSubstituteAvoidsCapture(t *testing.T) {
	// (fun (y : T) => x y)[x := y] must not capture the free y
	in := &Lambda{Param: "y", ParamType: v("T"), Body: &App{Fn: v("x"), Arg: v("y")}}
	got := Substitute(in, "x", v("y"))

	lam, ok := got.(*Lambda)
	assert.True(t, ok)
	assert.NotEqual(t, "y", lam.Param, "binder must be renamed away from the free y")

	app, ok := lam.Body.(*App)
	assert.True(t, ok)
	assert.Equal(t, "y", app.Fn.(*Var).Name, "substituted value stays free")
	assert.Equal(t, lam.Param, app.Arg.(*Var).Name, "old binder occurrences follow the rename")

	// and the result is alpha-equal to fun (y' : T) => y y'
	expected := &Lambda{Param: "fresh", ParamType: v("T"), Body: &App{Fn: v("y"), Arg: v("fresh")}}
	assert.True(t, AlphaEq(expected, got), "got %s", Show(got))
}

func TestSubstituteMatchArms(t *testing.T) {
	in := &Match{
		Scrutinee: v("a"),
		Arms: []Arm{
			{Ctor: "r0", Body: v("b")},
			{Ctor: "r120", Body: v("a")},
		},
	}
	got := Substitute(in, "a", v("r240"))
	m := got.(*Match)
	assert.Equal(t, "r240", m.Scrutinee.(*Var).Name)
	assert.Equal(t, "b", m.Arms[0].Body.(*Var).Name)
	assert.Equal(t, "r240", m.Arms[1].Body.(*Var).Name)
	// constructor labels are not variables
	assert.Equal(t, "r0", m.Arms[0].Ctor)
}

func TestFreeVars(t *testing.T) {
	testCases := []struct {
		name string
		in   Term
		want []string
	}{
		{
			name: "binder removes param",
			in:   &Lambda{Param: "x", ParamType: v("T"), Body: &App{Fn: v("f"), Arg: v("x")}},
			want: []string{"T", "f"},
		},
		{
			name: "param type sees outer scope",
			in:   &Pi{Param: "x", ParamType: v("x"), Body: v("x")},
			want: []string{"x"},
		},
		{
			name: "struct literal",
			in:   &StructLit{Class: "Add", Carrier: v("Rot"), Fields: []FieldValue{{Name: "add", Value: v("addRot")}}},
			want: []string{"Rot", "addRot"},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			free := FreeVars(tc.in)
			assert.ElementsMatch(t, tc.want, free.Slice())
		})
	}
}

func TestAlphaEq(t *testing.T) {
	testCases := []struct {
		name  string
		a, b  Term
		equal bool
	}{
		{
			name:  "renamed binder",
			a:     &Lambda{Param: "x", ParamType: v("T"), Body: v("x")},
			b:     &Lambda{Param: "y", ParamType: v("T"), Body: v("y")},
			equal: true,
		},
		{
			name:  "free vars must match by name",
			a:     &Lambda{Param: "x", ParamType: v("T"), Body: v("z")},
			b:     &Lambda{Param: "y", ParamType: v("T"), Body: v("w")},
			equal: false,
		},
		{
			name:  "bound on one side free on the other",
			a:     &Lambda{Param: "x", ParamType: v("T"), Body: v("x")},
			b:     &Lambda{Param: "y", ParamType: v("T"), Body: v("x")},
			equal: false,
		},
		{
			name: "nested shadowing",
			a: &Lambda{Param: "x", ParamType: v("T"),
				Body: &Lambda{Param: "x", ParamType: v("T"), Body: v("x")}},
			b: &Lambda{Param: "a", ParamType: v("T"),
				Body: &Lambda{Param: "b", ParamType: v("T"), Body: v("b")}},
			equal: true,
		},
		{
			name:  "non-dependent pi vs renamed",
			a:     &Pi{Param: "_", ParamType: v("A"), Body: v("B")},
			b:     &Pi{Param: "x", ParamType: v("A"), Body: v("B")},
			equal: true,
		},
		{
			name:  "sorts",
			a:     &Sort{Kind: SortType},
			b:     &Sort{Kind: SortProp},
			equal: false,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.equal, AlphaEq(tc.a, tc.b))
			assert.Equal(t, tc.equal, AlphaEq(tc.b, tc.a), "alpha equality is symmetric")
		})
	}
}

func TestShow(t *testing.T) {
	testCases := []struct {
		name string
		in   Term
		want string
	}{
		{
			name: "non-dependent pi prints as arrow",
			in:   Arrow(v("Rot"), Arrow(v("Rot"), v("Rot"))),
			want: "Rot -> Rot -> Rot",
		},
		{
			name: "arrow on the left parenthesized",
			in:   Arrow(Arrow(v("A"), v("B")), v("C")),
			want: "(A -> B) -> C",
		},
		{
			name: "dependent pi prints as forall",
			in:   &Pi{Param: "h", ParamType: v("Human"), Body: &App{Fn: v("Mortal"), Arg: v("h")}},
			want: "forall (h : Human), Mortal h",
		},
		{
			name: "application is left associative",
			in:   Apply(v("add"), v("r0"), v("r120")),
			want: "add r0 r120",
		},
		{
			name: "application argument parenthesized",
			in:   &App{Fn: v("neg"), Arg: &App{Fn: v("neg"), Arg: v("r120")}},
			want: "neg (neg r120)",
		},
		{
			name: "lambda",
			in:   &Lambda{Param: "a", ParamType: v("Rot"), Body: &App{Fn: v("neg"), Arg: v("a")}},
			want: "fun (a : Rot) => neg a",
		},
		{
			name: "projection",
			in:   &Proj{Struct: v("inst"), Field: "add"},
			want: "inst.add",
		},
		{
			name: "struct literal",
			in:   &StructLit{Class: "Add", Carrier: v("Rot"), Fields: []FieldValue{{Name: "add", Value: v("addRot")}}},
			want: "{ add := addRot }",
		},
		{
			name: "match",
			in: &Match{Scrutinee: v("a"), Arms: []Arm{
				{Ctor: "r0", Body: v("b")},
				{Ctor: WildcardPattern, Body: v("a")},
			}},
			want: "match a with | r0 => b | _ => a",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Show(tc.in))
		})
	}
}

func TestUnapply(t *testing.T) {
	head, args := Unapply(Apply(v("f"), v("a"), v("b"), v("c")))
	assert.Equal(t, "f", head.(*Var).Name)
	assert.Len(t, args, 3)
	assert.Equal(t, "a", args[0].(*Var).Name)
	assert.Equal(t, "c", args[2].(*Var).Name)

	head, args = Unapply(v("x"))
	assert.Equal(t, "x", head.(*Var).Name)
	assert.Empty(t, args)
}

func TestHashIgnoresRanges(t *testing.T) {
	a := &Var{Range: Range{PosStart: token.Pos(1), PosEnd: token.Pos(4)}, Name: "Rot"}
	b := &Var{Range: Range{PosStart: token.Pos(90), PosEnd: token.Pos(93)}, Name: "Rot"}
	assert.Equal(t, a.Hash(), b.Hash())
	assert.NotEqual(t, a.Hash(), (&Var{Name: "Dog"}).Hash())
}
