// Package ast is the surface syntax tree the parser produces and the
// declaration processor consumes. It mirrors what the user wrote,
// including notation like `+` and `0` that only the elaborator can
// resolve to kernel terms, so every node carries its source range.
package ast

import (
	"github.com/fora-lang/fora/kernel/term"
)

// Node is implemented by every syntax node.
type Node interface {
	term.Positioner
}

// Expr is a surface expression.
type Expr interface {
	Node
	exprNode()
}

var (
	_ Expr = (*Ident)(nil)
	_ Expr = (*ZeroLit)(nil)
	_ Expr = (*SortLit)(nil)
	_ Expr = (*Arrow)(nil)
	_ Expr = (*Forall)(nil)
	_ Expr = (*Fun)(nil)
	_ Expr = (*Apply)(nil)
	_ Expr = (*Binary)(nil)
	_ Expr = (*Unary)(nil)
	_ Expr = (*MatchExpr)(nil)
	_ Expr = (*StructExpr)(nil)
	_ Expr = (*ProjExpr)(nil)
	_ Expr = (*Ascribe)(nil)
)

// Ident is a name occurrence: a local binder, an ambient variable, or
// a global declaration. Which one is decided during checking.
type Ident struct {
	term.Range
	Name string
}

func (*Ident) exprNode() {}

// ZeroLit is the literal `0`. It has no type of its own: the
// elaborator resolves it through the Zero class once a carrier is
// known from an ascription or from the other operand of the enclosing
// operator.
type ZeroLit struct {
	term.Range
}

func (*ZeroLit) exprNode() {}

// SortLit is `Type` or `Prop`.
type SortLit struct {
	term.Range
	Kind term.SortKind
}

func (*SortLit) exprNode() {}

// Arrow is the non-dependent function type From -> To.
type Arrow struct {
	term.Range
	From Expr
	To   Expr
}

func (*Arrow) exprNode() {}

// Forall is a dependent function type: forall (Param : ParamType), Body.
type Forall struct {
	term.Range
	Param     string
	ParamType Expr
	Body      Expr
}

func (*Forall) exprNode() {}

// Fun is a lambda: fun (Param : ParamType) => Body.
type Fun struct {
	term.Range
	Param     string
	ParamType Expr
	Body      Expr
}

func (*Fun) exprNode() {}

// Apply is juxtaposition application, left associative.
type Apply struct {
	term.Range
	Fn  Expr
	Arg Expr
}

func (*Apply) exprNode() {}

// Binary is an overloaded binary operator occurrence: `+`, binary `-`,
// or `•`. The operator is notation for a class field; the elaborator
// resolves it against the instance registry.
type Binary struct {
	term.Range
	Op    string
	Left  Expr
	Right Expr
}

func (*Binary) exprNode() {}

// Unary is an overloaded prefix operator occurrence: unary `-`.
type Unary struct {
	term.Range
	Op      string
	Operand Expr
}

func (*Unary) exprNode() {}

// MatchArm is one `| Ctor => Body` case. Ctor may be the wildcard `_`.
type MatchArm struct {
	term.Range
	Ctor string
	Body Expr
}

// MatchExpr is case analysis over a datatype's constructors.
type MatchExpr struct {
	term.Range
	Scrutinee Expr
	Arms      []MatchArm
}

func (*MatchExpr) exprNode() {}

// FieldAssign is one `name := value` entry of a struct literal or an
// instance body.
type FieldAssign struct {
	term.Range
	Name  string
	Value Expr
}

// StructExpr is an anonymous struct literal `{ f := e, ... }`. Its
// class and carrier come from an ascription or the instance
// declaration it appears in.
type StructExpr struct {
	term.Range
	Fields []FieldAssign
}

func (*StructExpr) exprNode() {}

// ProjExpr is field projection `s.f`.
type ProjExpr struct {
	term.Range
	Struct Expr
	Field  string
}

func (*ProjExpr) exprNode() {}

// Ascribe is a parenthesized ascription `(e : T)`.
type Ascribe struct {
	term.Range
	Expr Expr
	Type Expr
}

func (*Ascribe) exprNode() {}
