// Package frontend processes parsed declarations strictly in the order
// they were written: a class is registered before anything extends it,
// and dependency instances before the instances that inherit their
// fields. The ordering is load-bearing — resolution never searches
// forward — so each declaration is elaborated, checked, and registered
// before the next one is looked at.
package frontend

import (
	"fmt"
	"go/token"
	"strings"

	"github.com/fora-lang/fora/frontend/ast"
	"github.com/fora-lang/fora/internal/log"
	"github.com/fora-lang/fora/kernel/check"
	"github.com/fora-lang/fora/kernel/classes"
	"github.com/fora-lang/fora/kernel/eval"
	"github.com/fora-lang/fora/kernel/kerr"
	"github.com/fora-lang/fora/kernel/term"
)

var logger = log.DefaultLogger.With("section", "frontend")

// Output is what one inspection command printed.
type Output struct {
	term.Range
	// Command is the command as understood after elaboration, such
	// as "#check mortal socrates".
	Command string
	// Text is the printed result. #synth output spans several lines.
	Text string
}

// Processor owns the registry and the ambient assumptions while a
// declaration sequence is fed through it. It is single-writer by
// construction: feed declarations from one goroutine only.
type Processor struct {
	fset     *token.FileSet
	registry *classes.Registry
	checker  *check.Checker
	elab     *elaborator
	ambient  check.Context
}

// NewProcessor returns a processor over a fresh registry seeded with
// the prelude.
func NewProcessor(fset *token.FileSet) *Processor {
	registry := classes.NewRegistry()
	seedPrelude(registry)
	checker := check.New(registry)
	return &Processor{
		fset:     fset,
		registry: registry,
		checker:  checker,
		elab:     &elaborator{registry: registry, checker: checker},
		ambient:  check.NewContext(),
	}
}

// Registry exposes the accumulated declarations, mainly so embedders
// can resolve instances directly.
func (p *Processor) Registry() *classes.Registry { return p.registry }

// ProcessFile feeds every declaration of file through Process. A
// declaration that fails is skipped, its diagnostics are kept, and
// processing continues with the next one, so independent mistakes are
// all reported in one pass.
func (p *Processor) ProcessFile(file *ast.File) ([]Output, *kerr.Errors) {
	var outputs []Output
	var all *kerr.Errors
	for _, decl := range file.Decls {
		outs, errs := p.Process(decl)
		outputs = append(outputs, outs...)
		all = all.Merge(errs)
	}
	return outputs, all
}

// Process elaborates, checks, and registers one declaration, or runs
// one command. It either fully succeeds or leaves the registry
// untouched.
func (p *Processor) Process(decl ast.Decl) ([]Output, *kerr.Errors) {
	switch d := decl.(type) {
	case *ast.AxiomDecl:
		return nil, p.processAxiom(d)
	case *ast.DataDecl:
		return nil, p.registry.DeclareData(&classes.DataDecl{
			Range: term.RangeOf(d),
			Name:  d.Name,
			Ctors: d.Ctors,
		})
	case *ast.DefDecl:
		return nil, p.processDef(d)
	case *ast.VariableDecl:
		return nil, p.processVariable(d)
	case *ast.ClassDecl:
		return nil, p.processClass(d)
	case *ast.InstanceDecl:
		return nil, p.processInstance(d)
	case *ast.CommandDecl:
		return p.processCommand(d)
	default:
		panic(fmt.Sprintf("process: unhandled declaration %T", d))
	}
}

func (p *Processor) processAxiom(d *ast.AxiomDecl) *kerr.Errors {
	ty, errs := p.elab.expr(p.ambient, d.Type, nil)
	if errs.HasError() {
		return errs
	}
	if errs := p.checker.CheckAxiom(p.ambient, ty); errs.HasError() {
		return errs
	}
	return p.registry.DeclareAxiom(d.Name, ty, term.RangeOf(d))
}

func (p *Processor) processDef(d *ast.DefDecl) *kerr.Errors {
	ty, errs := p.elab.expr(p.ambient, d.Type, nil)
	if errs.HasError() {
		return errs
	}
	body, errs := p.elab.expr(p.ambient, d.Body, nil)
	if errs.HasError() {
		return errs
	}
	if errs := p.checker.CheckDef(p.ambient, d.Name, ty, body, term.RangeOf(d)); errs.HasError() {
		return errs
	}
	return p.registry.DeclareDef(d.Name, ty, body, term.RangeOf(d))
}

func (p *Processor) processVariable(d *ast.VariableDecl) *kerr.Errors {
	ty, errs := p.elab.expr(p.ambient, d.Type, nil)
	if errs.HasError() {
		return errs
	}
	if _, errs := p.checker.SortOf(p.ambient, ty); errs.HasError() {
		return errs
	}
	p.ambient = p.ambient.Bind(d.Name, ty)
	return nil
}

func (p *Processor) processClass(d *ast.ClassDecl) *kerr.Errors {
	for _, parent := range d.Extends {
		if _, ok := p.registry.Class(parent); !ok {
			return oneErr(kerr.NewUnknownClass{Positioner: term.RangeOf(d), Name: parent})
		}
	}
	decl := &classes.ClassDecl{
		Range:        term.RangeOf(d),
		Name:         d.Name,
		CarrierParam: d.CarrierParam,
		Extends:      d.Extends,
	}
	for _, f := range d.Fields {
		ty, errs := p.elab.expr(p.ambient, f.Type, nil)
		if errs.HasError() {
			return errs
		}
		field := classes.Field{Range: term.RangeOf(f), Name: f.Name, Type: ty}
		if f.Default != nil {
			def, errs := p.elab.expr(p.ambient, f.Default, nil)
			if errs.HasError() {
				return errs
			}
			field.Default = def
		}
		decl.Fields = append(decl.Fields, field)
	}
	if errs := p.checker.CheckClass(p.ambient, decl); errs.HasError() {
		return errs
	}
	if errs := p.registry.DeclareClass(decl); errs.HasError() {
		return errs
	}
	logger.Debug("declared class", "name", d.Name, "extends", strings.Join(d.Extends, ","))
	return nil
}

func (p *Processor) processInstance(d *ast.InstanceDecl) *kerr.Errors {
	if _, ok := p.registry.Class(d.Class); !ok {
		return oneErr(kerr.NewUnknownClass{Positioner: term.RangeOf(d), Name: d.Class})
	}
	carrier, errs := p.elab.expr(p.ambient, d.Carrier, nil)
	if errs.HasError() {
		return errs
	}
	effective, errs := p.registry.EffectiveFields(d.Class)
	if errs.HasError() {
		return errs
	}
	known := map[string]bool{}
	for _, f := range effective {
		known[f.Name] = true
	}
	inst := &classes.InstanceDecl{Range: term.RangeOf(d), Class: d.Class, Carrier: carrier}
	for _, f := range d.Fields {
		if !known[f.Name] {
			return oneErr(kerr.NewUnknownField{Positioner: term.RangeOf(f), Class: d.Class, Field: f.Name})
		}
		value, errs := p.elab.expr(p.ambient, f.Value, nil)
		if errs.HasError() {
			return errs
		}
		inst.Fields = append(inst.Fields, term.FieldValue{Name: f.Name, Value: value})
	}
	// assignments, inherited fields, and defaults are all validated
	// against the telescope here, before anything is registered; a
	// default whose proof obligation does not hold definitionally for
	// this carrier fails now, not at first use
	if errs := p.checker.CheckInstance(p.ambient, inst); errs.HasError() {
		return errs
	}
	if errs := p.registry.DeclareInstance(inst); errs.HasError() {
		return errs
	}
	logger.Debug("registered instance", "class", d.Class, "carrier", term.Show(carrier))
	return nil
}

func (p *Processor) processCommand(d *ast.CommandDecl) ([]Output, *kerr.Errors) {
	if d.Kind == ast.CommandSynth {
		carrier, errs := p.elab.expr(p.ambient, d.Carrier, nil)
		if errs.HasError() {
			return nil, errs
		}
		inst, errs := p.registry.Resolve(d.Class, carrier, term.RangeOf(d))
		if errs.HasError() {
			return nil, errs
		}
		return []Output{{
			Range:   term.RangeOf(d),
			Command: fmt.Sprintf("#synth %s %s", d.Class, term.Show(carrier)),
			Text:    formatInstance(inst),
		}}, nil
	}

	t, errs := p.elab.expr(p.ambient, d.Expr, nil)
	if errs.HasError() {
		return nil, errs
	}
	ty, errs := p.checker.TypeOf(p.ambient, t)
	if errs.HasError() {
		return nil, errs
	}
	out := Output{Range: term.RangeOf(d), Command: d.Kind.String() + " " + term.Show(t)}
	switch d.Kind {
	case ast.CommandCheck:
		out.Text = term.Show(t) + " : " + term.Show(ty)
	case ast.CommandEval:
		out.Text = term.Show(eval.Value(p.registry, t))
	case ast.CommandReduce:
		out.Text = term.Show(eval.Reduce(p.registry, t))
	}
	return []Output{out}, nil
}

// formatInstance renders a synthesized instance with one line per
// effective field, in telescope order.
func formatInstance(inst *classes.InstanceDecl) string {
	var b strings.Builder
	fmt.Fprintf(&b, "instance %s %s", inst.Class, term.Show(inst.Carrier))
	for _, f := range inst.Fields {
		fmt.Fprintf(&b, "\n  %s := %s", f.Name, term.Show(f.Value))
	}
	return b.String()
}
