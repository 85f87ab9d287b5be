// Package fora is the embedding API: load a source file or feed an
// interactive session, and get back command outputs and diagnostics.
// It wires the parser, the declaration processor, and the kernel
// together; the CLI and the REPL are thin wrappers over it.
package fora

import (
	"go/token"
	"os"
	"strings"

	pkgerrors "github.com/pkg/errors"

	"github.com/fora-lang/fora/frontend"
	"github.com/fora-lang/fora/kernel/classes"
	"github.com/fora-lang/fora/kernel/kerr"
	"github.com/fora-lang/fora/parser"
)

// Program is one fully processed source unit. The registry it built is
// kept so embedders can keep resolving against it.
type Program struct {
	name      string
	src       string
	fset      *token.FileSet
	processor *frontend.Processor
	outputs   []frontend.Output
	errors    *kerr.Errors
}

// LoadProgram parses and processes src as one program. Declarations
// are registered strictly in source order; a failed declaration is
// reported and skipped, so the returned Program can carry both outputs
// and errors.
func LoadProgram(name, src string) *Program {
	fset := token.NewFileSet()
	p := &Program{
		name:      name,
		src:       src,
		fset:      fset,
		processor: frontend.NewProcessor(fset),
	}
	file, errs := parser.ParseFile(fset, name, src)
	if errs.HasError() {
		p.errors = errs
		return p
	}
	p.outputs, p.errors = p.processor.ProcessFile(file)
	return p
}

// LoadFile reads path and loads it as a program. The error return is
// for I/O only; compile diagnostics are on the Program.
func LoadFile(path string) (*Program, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "could not read %s", path)
	}
	return LoadProgram(path, string(src)), nil
}

// Name returns the name the program was loaded under.
func (p *Program) Name() string { return p.name }

// Errors returns the accumulated diagnostics.
func (p *Program) Errors() *kerr.Errors { return p.errors }

// Outputs returns what the program's inspection commands printed, in
// source order.
func (p *Program) Outputs() []frontend.Output { return p.outputs }

// Registry exposes the declarations the program registered.
func (p *Program) Registry() *classes.Registry { return p.processor.Registry() }

// Render joins the command outputs into the text `fora run` prints.
func (p *Program) Render() string {
	var lines []string
	for _, out := range p.outputs {
		lines = append(lines, out.Text)
	}
	return strings.Join(lines, "\n")
}

// FormatError renders e with a caret-annotated snippet of the
// program's source when it carries a position.
func (p *Program) FormatError(e kerr.KernelError) string {
	return kerr.FormatWithSource(e, p.fset, p.src)
}
