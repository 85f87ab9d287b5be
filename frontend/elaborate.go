package frontend

import (
	"fmt"

	"github.com/fora-lang/fora/frontend/ast"
	"github.com/fora-lang/fora/kernel/check"
	"github.com/fora-lang/fora/kernel/classes"
	"github.com/fora-lang/fora/kernel/eval"
	"github.com/fora-lang/fora/kernel/kerr"
	"github.com/fora-lang/fora/kernel/term"
)

// elaborator lowers surface expressions to kernel terms. Most of the
// surface maps one to one; the work is in notation: operators and `0`
// are resolved through the instance registry using the static type of
// an operand, and anonymous struct literals take their class and
// carrier from an ascription.
type elaborator struct {
	registry *classes.Registry
	checker  *check.Checker
}

// expr lowers x under ctx. expected is the reduced type the context
// demands, when one is known (from an ascription or an instance field
// slot); it is what lets `0` and `{ ... }` elaborate at all, and nil
// is fine everywhere else.
func (e *elaborator) expr(ctx check.Context, x ast.Expr, expected term.Term) (term.Term, *kerr.Errors) {
	switch x := x.(type) {
	case *ast.Ident:
		return &term.Var{Range: term.RangeOf(x), Name: x.Name}, nil
	case *ast.SortLit:
		return &term.Sort{Range: term.RangeOf(x), Kind: x.Kind}, nil
	case *ast.ZeroLit:
		if expected == nil {
			return nil, oneErr(kerr.NewTypeMismatch{
				Positioner: term.RangeOf(x),
				Actual:     &term.Var{Name: "0"},
				Because:    "cannot infer the carrier of '0' here; ascribe it, as in (0 : Rot)",
			})
		}
		return e.zeroValue(ctx, expected, term.RangeOf(x))
	case *ast.Arrow:
		from, errs := e.expr(ctx, x.From, nil)
		if errs.HasError() {
			return nil, errs
		}
		to, errs := e.expr(ctx, x.To, nil)
		if errs.HasError() {
			return nil, errs
		}
		pi := term.Arrow(from, to)
		pi.Range = term.RangeOf(x)
		return pi, nil
	case *ast.Forall:
		return e.binder(ctx, x, x.Param, x.ParamType, x.Body, true)
	case *ast.Fun:
		return e.binder(ctx, x, x.Param, x.ParamType, x.Body, false)
	case *ast.Apply:
		fn, errs := e.expr(ctx, x.Fn, nil)
		if errs.HasError() {
			return nil, errs
		}
		arg, errs := e.expr(ctx, x.Arg, nil)
		if errs.HasError() {
			return nil, errs
		}
		return &term.App{Range: term.RangeOf(x), Fn: fn, Arg: arg}, nil
	case *ast.Binary:
		return e.binary(ctx, x)
	case *ast.Unary:
		return e.unary(ctx, x)
	case *ast.MatchExpr:
		return e.match(ctx, x, expected)
	case *ast.StructExpr:
		return e.structLit(ctx, x, expected)
	case *ast.ProjExpr:
		s, errs := e.expr(ctx, x.Struct, nil)
		if errs.HasError() {
			return nil, errs
		}
		return &term.Proj{Range: term.RangeOf(x), Struct: s, Field: x.Field}, nil
	case *ast.Ascribe:
		return e.ascribe(ctx, x)
	default:
		panic(fmt.Sprintf("elaborate: unhandled expression %T", x))
	}
}

func (e *elaborator) binder(ctx check.Context, at ast.Expr, param string, paramType, body ast.Expr, isForall bool) (term.Term, *kerr.Errors) {
	pt, errs := e.expr(ctx, paramType, nil)
	if errs.HasError() {
		return nil, errs
	}
	// the body may use operators on the bound variable, so it
	// elaborates under the extended context
	b, errs := e.expr(ctx.Bind(param, pt), body, nil)
	if errs.HasError() {
		return nil, errs
	}
	if isForall {
		return &term.Pi{Range: term.RangeOf(at), Param: param, ParamType: pt, Body: b}, nil
	}
	return &term.Lambda{Range: term.RangeOf(at), Param: param, ParamType: pt, Body: b}, nil
}

func (e *elaborator) binary(ctx check.Context, x *ast.Binary) (term.Term, *kerr.Errors) {
	spec := binaryOps[x.Op]
	_, leftZero := x.Left.(*ast.ZeroLit)
	_, rightZero := x.Right.(*ast.ZeroLit)
	if leftZero && rightZero {
		return nil, oneErr(kerr.NewTypeMismatch{
			Positioner: term.RangeOf(x),
			Actual:     &term.Var{Name: "0 " + x.Op + " 0"},
			Because:    "cannot infer a carrier when both operands are '0'; ascribe one",
		})
	}

	// a `0` operand borrows its carrier from the other side
	var left, right term.Term
	var errs *kerr.Errors
	switch {
	case leftZero:
		right, errs = e.expr(ctx, x.Right, nil)
		if errs.HasError() {
			return nil, errs
		}
		carrier, errs := e.typeOf(ctx, right)
		if errs.HasError() {
			return nil, errs
		}
		left, errs = e.zeroValue(ctx, carrier, term.RangeOf(x.Left))
		if errs.HasError() {
			return nil, errs
		}
	case rightZero:
		left, errs = e.expr(ctx, x.Left, nil)
		if errs.HasError() {
			return nil, errs
		}
		carrier, errs := e.typeOf(ctx, left)
		if errs.HasError() {
			return nil, errs
		}
		right, errs = e.zeroValue(ctx, carrier, term.RangeOf(x.Right))
		if errs.HasError() {
			return nil, errs
		}
	default:
		left, errs = e.expr(ctx, x.Left, nil)
		if errs.HasError() {
			return nil, errs
		}
		right, errs = e.expr(ctx, x.Right, nil)
		if errs.HasError() {
			return nil, errs
		}
	}

	carrierOperand := left
	if x.Op == "•" {
		carrierOperand = right
	}
	carrier, errs := e.typeOf(ctx, carrierOperand)
	if errs.HasError() {
		return nil, errs
	}
	fn, errs := e.fieldOf(ctx, spec, carrier, term.RangeOf(x))
	if errs.HasError() {
		return nil, errs
	}
	return &term.App{
		Range: term.RangeOf(x),
		Fn:    &term.App{Range: term.RangeOf(x), Fn: fn, Arg: left},
		Arg:   right,
	}, nil
}

func (e *elaborator) unary(ctx check.Context, x *ast.Unary) (term.Term, *kerr.Errors) {
	spec := unaryOps[x.Op]
	operand, errs := e.expr(ctx, x.Operand, nil)
	if errs.HasError() {
		return nil, errs
	}
	carrier, errs := e.typeOf(ctx, operand)
	if errs.HasError() {
		return nil, errs
	}
	fn, errs := e.fieldOf(ctx, spec, carrier, term.RangeOf(x))
	if errs.HasError() {
		return nil, errs
	}
	return &term.App{Range: term.RangeOf(x), Fn: fn, Arg: operand}, nil
}

func (e *elaborator) match(ctx check.Context, x *ast.MatchExpr, expected term.Term) (term.Term, *kerr.Errors) {
	scrutinee, errs := e.expr(ctx, x.Scrutinee, nil)
	if errs.HasError() {
		return nil, errs
	}
	arms := make([]term.Arm, len(x.Arms))
	for i, arm := range x.Arms {
		body, errs := e.expr(ctx, arm.Body, expected)
		if errs.HasError() {
			return nil, errs
		}
		arms[i] = term.Arm{Ctor: arm.Ctor, Body: body}
	}
	return &term.Match{Range: term.RangeOf(x), Scrutinee: scrutinee, Arms: arms}, nil
}

func (e *elaborator) structLit(ctx check.Context, x *ast.StructExpr, expected term.Term) (term.Term, *kerr.Errors) {
	cannotInfer := func() *kerr.Errors {
		return oneErr(kerr.NewTypeMismatch{
			Positioner: term.RangeOf(x),
			Actual:     &term.Var{Name: "{ ... }"},
			Because:    "a struct literal needs a class ascription, as in ({ add := addRot } : Add Rot)",
		})
	}
	if expected == nil {
		return nil, cannotInfer()
	}
	head, args := term.Unapply(expected)
	classVar, ok := head.(*term.Var)
	if !ok || len(args) != 1 {
		return nil, cannotInfer()
	}
	if _, isClass := e.registry.Class(classVar.Name); !isClass {
		return nil, cannotInfer()
	}
	fields := make([]term.FieldValue, len(x.Fields))
	for i, f := range x.Fields {
		value, errs := e.expr(ctx, f.Value, nil)
		if errs.HasError() {
			return nil, errs
		}
		fields[i] = term.FieldValue{Name: f.Name, Value: value}
	}
	return &term.StructLit{
		Range:   term.RangeOf(x),
		Class:   classVar.Name,
		Carrier: args[0],
		Fields:  fields,
	}, nil
}

func (e *elaborator) ascribe(ctx check.Context, x *ast.Ascribe) (term.Term, *kerr.Errors) {
	ty, errs := e.expr(ctx, x.Type, nil)
	if errs.HasError() {
		return nil, errs
	}
	tyNF := eval.Reduce(e.registry, ty)
	inner, errs := e.expr(ctx, x.Expr, tyNF)
	if errs.HasError() {
		return nil, errs
	}
	actual, errs := e.checker.TypeOf(ctx, inner)
	if errs.HasError() {
		return nil, errs
	}
	if !e.checker.DefEq(actual, tyNF) {
		return nil, oneErr(kerr.NewTypeMismatch{
			Positioner: term.RangeOf(x),
			Expected:   tyNF,
			Actual:     actual,
			Because:    "the ascription does not hold",
		})
	}
	return inner, nil
}

// typeOf is the carrier lookup behind notation: the operand's type,
// reduced to normal form so it can key the instance registry.
func (e *elaborator) typeOf(ctx check.Context, t term.Term) (term.Term, *kerr.Errors) {
	ty, errs := e.checker.TypeOf(ctx, t)
	if errs.HasError() {
		return nil, errs
	}
	return eval.Reduce(e.registry, ty), nil
}

// fieldOf resolves spec's class for carrier and projects the field
// value out of the synthesized instance.
func (e *elaborator) fieldOf(ctx check.Context, spec opSpec, carrier term.Term, at term.Range) (term.Term, *kerr.Errors) {
	inst, errs := e.registry.Resolve(spec.class, carrier, at)
	if errs.HasError() {
		return nil, errs
	}
	value, ok := inst.Field(spec.field)
	if !ok {
		return nil, oneErr(kerr.NewUnknownField{Positioner: at, Class: spec.class, Field: spec.field})
	}
	return value, nil
}

func (e *elaborator) zeroValue(ctx check.Context, carrier term.Term, at term.Range) (term.Term, *kerr.Errors) {
	return e.fieldOf(ctx, zeroSpec, carrier, at)
}

func oneErr[E kerr.KernelError](err E) *kerr.Errors {
	return (&kerr.Errors{}).With(kerr.New(err))
}
