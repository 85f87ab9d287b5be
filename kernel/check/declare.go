package check

import (
	"fmt"

	"github.com/fora-lang/fora/kernel/classes"
	"github.com/fora-lang/fora/kernel/kerr"
	"github.com/fora-lang/fora/kernel/term"
)

// CheckClass validates a class declaration before it is recorded: every
// field type the class declares itself must be a type under the
// abstract telescope, where the carrier is an opaque type and inherited
// and earlier fields are typed assumptions.
//
// Default bodies are deliberately not checked here. A default such as a
// proof by rfl holds only once the carrier makes the law compute, so
// defaults are validated per registration instead.
func (c *Checker) CheckClass(ctx Context, decl *classes.ClassDecl) *kerr.Errors {
	effective, errs := c.registry.EffectiveFieldsOf(decl)
	if errs.HasError() {
		return errs
	}
	telescope := ctx.Bind(decl.CarrierParam, &term.Sort{Kind: term.SortType})
	for _, f := range effective {
		if f.Origin == decl.Name {
			if _, errs := c.SortOf(telescope, f.Type); errs.HasError() {
				return errs
			}
		}
		telescope = telescope.Bind(f.Name, f.Type)
	}
	return nil
}

// CheckInstance validates an instance declaration against its class
// telescope before registration. The instance is assembled the way
// resolution would see it — direct assignments, then ancestor
// instances, then defaults — and every assembled value must have its
// field's type with the carrier and all earlier values substituted.
//
// Fields with no value anywhere stay abstract. A law that mentions one
// therefore cannot be discharged, which is why dependency instances
// must be registered before the instances that build on them.
func (c *Checker) CheckInstance(ctx Context, inst *classes.InstanceDecl) *kerr.Errors {
	carrierType, errs := c.TypeOf(ctx, inst.Carrier)
	if errs.HasError() {
		return errs
	}
	if !c.DefEq(carrierType, &term.Sort{Kind: term.SortType}) {
		return oneErr(kerr.NewTypeMismatch{
			Positioner: term.RangeOf(inst.Carrier),
			Expected:   &term.Sort{Kind: term.SortType},
			Actual:     carrierType,
			Because:    "instance carriers must be types",
		})
	}
	assembled, _, errs := c.registry.Synthesize(inst)
	if errs.HasError() {
		return errs
	}
	decl, ok := c.registry.Class(inst.Class)
	if !ok {
		return oneErr(kerr.NewUnknownClass{Positioner: inst.Range, Name: inst.Class})
	}
	effective, errs := c.registry.EffectiveFields(inst.Class)
	if errs.HasError() {
		return errs
	}
	telescope := []term.Sub{{Name: decl.CarrierParam, Value: assembled.Carrier}}
	for _, f := range effective {
		value, ok := assembled.Field(f.Name)
		if !ok {
			continue
		}
		expected := term.SubstituteAll(f.Type, telescope)
		actual, errs := c.TypeOf(ctx, value)
		if errs.HasError() {
			return errs
		}
		if !c.DefEq(expected, actual) {
			return oneErr(kerr.NewTypeMismatch{
				Positioner: inst.Range,
				Expected:   expected,
				Actual:     actual,
				Because:    fmt.Sprintf("field '%s' of the %s instance for '%s'", f.Name, inst.Class, term.Show(assembled.Carrier)),
			})
		}
		telescope = append(telescope, term.Sub{Name: f.Name, Value: value})
	}
	return nil
}

// CheckDef validates a definition: the declared type must be a type,
// and the body must inhabit it definitionally.
func (c *Checker) CheckDef(ctx Context, name string, declared term.Term, body term.Term, at term.Range) *kerr.Errors {
	if _, errs := c.SortOf(ctx, declared); errs.HasError() {
		return errs
	}
	actual, errs := c.TypeOf(ctx, body)
	if errs.HasError() {
		return errs
	}
	if !c.DefEq(declared, actual) {
		return oneErr(kerr.NewTypeMismatch{
			Positioner: at,
			Expected:   declared,
			Actual:     actual,
			Because:    fmt.Sprintf("in the definition of '%s'", name),
		})
	}
	return nil
}

// CheckAxiom validates an axiom's declared type.
func (c *Checker) CheckAxiom(ctx Context, declared term.Term) *kerr.Errors {
	_, errs := c.SortOf(ctx, declared)
	return errs
}
