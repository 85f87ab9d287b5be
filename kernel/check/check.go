// Package check implements the typing rules: typeOf over kernel terms,
// definitional equality by normalize-and-compare, and the telescope
// validation used when classes and instances are declared.
package check

import (
	"fmt"

	"github.com/fora-lang/fora/kernel/classes"
	"github.com/fora-lang/fora/kernel/eval"
	"github.com/fora-lang/fora/kernel/kerr"
	"github.com/fora-lang/fora/kernel/term"
)

// Checker computes types against a registry of global declarations.
type Checker struct {
	registry *classes.Registry
}

func New(registry *classes.Registry) *Checker {
	return &Checker{registry: registry}
}

// DefEq reports definitional equality: both sides reduce to normal
// form, and the normal forms must agree up to bound-variable renaming.
func (c *Checker) DefEq(a, b term.Term) bool {
	return term.AlphaEq(eval.Reduce(c.registry, a), eval.Reduce(c.registry, b))
}

// TypeOf computes the type of t under the assumptions in ctx.
func (c *Checker) TypeOf(ctx Context, t term.Term) (term.Term, *kerr.Errors) {
	switch t := t.(type) {
	case *term.Var:
		if ty, ok := ctx.Lookup(t.Name); ok {
			return ty, nil
		}
		if ty, ok := c.registry.TypeOfGlobal(t.Name); ok {
			return ty, nil
		}
		return nil, oneErr(kerr.NewUnboundVariable{Positioner: t.Range, Name: t.Name})
	case *term.Sort:
		// Prop : Type and Type : Type; no universe tower
		return &term.Sort{Kind: term.SortType}, nil
	case *term.Pi:
		if _, errs := c.SortOf(ctx, t.ParamType); errs.HasError() {
			return nil, errs
		}
		// a forall lives in the sort of its result: a family of
		// propositions is itself a proposition
		bodySort, errs := c.SortOf(ctx.Bind(t.Param, t.ParamType), t.Body)
		if errs.HasError() {
			return nil, errs
		}
		return bodySort, nil
	case *term.Lambda:
		if _, errs := c.SortOf(ctx, t.ParamType); errs.HasError() {
			return nil, errs
		}
		bodyType, errs := c.TypeOf(ctx.Bind(t.Param, t.ParamType), t.Body)
		if errs.HasError() {
			return nil, errs
		}
		return &term.Pi{Range: t.Range, Param: t.Param, ParamType: t.ParamType, Body: bodyType}, nil
	case *term.App:
		fnType, errs := c.TypeOf(ctx, t.Fn)
		if errs.HasError() {
			return nil, errs
		}
		fnTypeNF := eval.Reduce(c.registry, fnType)
		pi, ok := fnTypeNF.(*term.Pi)
		if !ok {
			return nil, oneErr(kerr.NewNotAFunction{Positioner: term.RangeOf(t), FnType: fnTypeNF})
		}
		argType, errs := c.TypeOf(ctx, t.Arg)
		if errs.HasError() {
			return nil, errs
		}
		if !c.DefEq(pi.ParamType, argType) {
			return nil, oneErr(kerr.NewTypeMismatch{Positioner: term.RangeOf(t.Arg), Expected: pi.ParamType, Actual: argType})
		}
		// universal specialization: the result type is the forall body
		// with the argument substituted for the parameter
		return term.Substitute(pi.Body, pi.Param, t.Arg), nil
	case *term.StructLit:
		return c.typeOfStructLit(ctx, t)
	case *term.Proj:
		return c.typeOfProj(ctx, t)
	case *term.Match:
		return c.typeOfMatch(ctx, t)
	default:
		panic(fmt.Sprintf("typeOf: unhandled term %T", t))
	}
}

// SortOf checks that t is a type, returning the sort it inhabits.
func (c *Checker) SortOf(ctx Context, t term.Term) (*term.Sort, *kerr.Errors) {
	ty, errs := c.TypeOf(ctx, t)
	if errs.HasError() {
		return nil, errs
	}
	nf := eval.Reduce(c.registry, ty)
	if s, ok := nf.(*term.Sort); ok {
		return s, nil
	}
	return nil, oneErr(kerr.NewTypeMismatch{Positioner: term.RangeOf(t), Actual: nf, Because: "a type was expected"})
}

// typeOfStructLit gives a literal the type `Class Carrier`, checking
// each provided field value against the telescope with the carrier and
// all earlier provided values substituted. Missing fields stay
// abstract; completeness is the resolver's concern, not the literal's.
func (c *Checker) typeOfStructLit(ctx Context, lit *term.StructLit) (term.Term, *kerr.Errors) {
	decl, ok := c.registry.Class(lit.Class)
	if !ok {
		return nil, oneErr(kerr.NewUnknownClass{Positioner: lit.Range, Name: lit.Class})
	}
	carrierType, errs := c.TypeOf(ctx, lit.Carrier)
	if errs.HasError() {
		return nil, errs
	}
	if !c.DefEq(carrierType, &term.Sort{Kind: term.SortType}) {
		return nil, oneErr(kerr.NewTypeMismatch{
			Positioner: term.RangeOf(lit.Carrier),
			Expected:   &term.Sort{Kind: term.SortType},
			Actual:     carrierType,
			Because:    "instance carriers must be types",
		})
	}
	effective, errs := c.registry.EffectiveFields(lit.Class)
	if errs.HasError() {
		return nil, errs
	}
	known := map[string]bool{}
	for _, f := range effective {
		known[f.Name] = true
	}
	for _, f := range lit.Fields {
		if !known[f.Name] {
			return nil, oneErr(kerr.NewUnknownField{Positioner: lit.Range, Class: lit.Class, Field: f.Name})
		}
	}
	telescope := []term.Sub{{Name: decl.CarrierParam, Value: lit.Carrier}}
	for _, f := range effective {
		value, provided := lit.Field(f.Name)
		if !provided {
			continue
		}
		expected := term.SubstituteAll(f.Type, telescope)
		actual, errs := c.TypeOf(ctx, value)
		if errs.HasError() {
			return nil, errs
		}
		if !c.DefEq(expected, actual) {
			return nil, oneErr(kerr.NewTypeMismatch{
				Positioner: term.RangeOf(value),
				Expected:   expected,
				Actual:     actual,
				Because:    fmt.Sprintf("field '%s'", f.Name),
			})
		}
		telescope = append(telescope, term.Sub{Name: f.Name, Value: value})
	}
	return &term.App{Range: lit.Range, Fn: &term.Var{Name: lit.Class}, Arg: lit.Carrier}, nil
}

// typeOfProj types s.f when s's type reduces to `Class Carrier`: the
// field's declared type with the carrier substituted, and every earlier
// field replaced by its own projection out of s.
func (c *Checker) typeOfProj(ctx Context, p *term.Proj) (term.Term, *kerr.Errors) {
	structType, errs := c.TypeOf(ctx, p.Struct)
	if errs.HasError() {
		return nil, errs
	}
	nf := eval.Reduce(c.registry, structType)
	head, args := term.Unapply(nf)
	if classVar, ok := head.(*term.Var); ok && len(args) == 1 {
		if decl, isClass := c.registry.Class(classVar.Name); isClass {
			effective, errs := c.registry.EffectiveFields(classVar.Name)
			if errs.HasError() {
				return nil, errs
			}
			telescope := []term.Sub{{Name: decl.CarrierParam, Value: args[0]}}
			for _, f := range effective {
				if f.Name == p.Field {
					return term.SubstituteAll(f.Type, telescope), nil
				}
				telescope = append(telescope, term.Sub{
					Name:  f.Name,
					Value: &term.Proj{Range: p.Range, Struct: p.Struct, Field: f.Name},
				})
			}
			return nil, oneErr(kerr.NewUnknownField{Positioner: p.Range, Class: classVar.Name, Field: p.Field})
		}
	}
	return nil, oneErr(kerr.NewUnknownField{Positioner: p.Range, Class: term.Show(nf), Field: p.Field})
}

// typeOfMatch requires the scrutinee to belong to a declared datatype,
// every arm to name one of its constructors, the arms to cover all of
// them (or end in a wildcard), and all arm bodies to agree on one type.
func (c *Checker) typeOfMatch(ctx Context, m *term.Match) (term.Term, *kerr.Errors) {
	scrutType, errs := c.TypeOf(ctx, m.Scrutinee)
	if errs.HasError() {
		return nil, errs
	}
	nf := eval.Reduce(c.registry, scrutType)
	dataVar, ok := nf.(*term.Var)
	if !ok {
		return nil, oneErr(kerr.NewTypeMismatch{
			Positioner: term.RangeOf(m.Scrutinee),
			Actual:     nf,
			Because:    "match needs a datatype scrutinee",
		})
	}
	data, isData := c.registry.Data(dataVar.Name)
	if !isData {
		return nil, oneErr(kerr.NewTypeMismatch{
			Positioner: term.RangeOf(m.Scrutinee),
			Actual:     nf,
			Because:    "match needs a datatype scrutinee",
		})
	}

	covered := map[string]bool{}
	wildcard := false
	var resultType term.Term
	for _, arm := range m.Arms {
		if arm.Ctor == term.WildcardPattern {
			wildcard = true
		} else {
			owner, isCtor := c.registry.DataOfCtor(arm.Ctor)
			if !isCtor {
				return nil, oneErr(kerr.NewUnknownConstructor{Positioner: m.Range, Name: arm.Ctor})
			}
			if owner != data.Name {
				return nil, oneErr(kerr.NewUnknownConstructor{Positioner: m.Range, Name: arm.Ctor, Data: data.Name})
			}
			covered[arm.Ctor] = true
		}
		armType, errs := c.TypeOf(ctx, arm.Body)
		if errs.HasError() {
			return nil, errs
		}
		if resultType == nil {
			resultType = armType
		} else if !c.DefEq(resultType, armType) {
			return nil, oneErr(kerr.NewTypeMismatch{
				Positioner: term.RangeOf(arm.Body),
				Expected:   resultType,
				Actual:     armType,
				Because:    "match arms must agree on one type",
			})
		}
	}
	if !wildcard {
		var missing []string
		for _, ctor := range data.Ctors {
			if !covered[ctor] {
				missing = append(missing, ctor)
			}
		}
		if len(missing) > 0 {
			return nil, oneErr(kerr.NewMissingCase{Positioner: m.Range, Data: data.Name, Missing: missing})
		}
	}
	if resultType == nil {
		return nil, oneErr(kerr.NewTypeMismatch{
			Positioner: m.Range,
			Actual:     nf,
			Because:    "cannot infer the type of a match with no arms",
		})
	}
	return resultType, nil
}

func oneErr[E kerr.KernelError](e E) *kerr.Errors {
	return (&kerr.Errors{}).With(kerr.New(e))
}
