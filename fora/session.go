package fora

import (
	"fmt"
	"go/token"

	"github.com/fora-lang/fora/frontend"
	"github.com/fora-lang/fora/kernel/classes"
	"github.com/fora-lang/fora/kernel/kerr"
	"github.com/fora-lang/fora/parser"
)

// Session is the incremental variant of LoadProgram: each Eval input
// is parsed and processed against the same registry and ambient
// assumptions, so a REPL can build up a theory one declaration at a
// time. Not safe for concurrent use.
type Session struct {
	fset      *token.FileSet
	processor *frontend.Processor
	sources   map[string]string
	inputs    int
}

func NewSession() *Session {
	fset := token.NewFileSet()
	return &Session{
		fset:      fset,
		processor: frontend.NewProcessor(fset),
		sources:   map[string]string{},
	}
}

// Eval parses and processes one input. When the returned errors
// satisfy IncompleteOnly, nothing was registered and the caller should
// ask for more input and resubmit the whole text.
func (s *Session) Eval(src string) ([]frontend.Output, *kerr.Errors) {
	s.inputs++
	name := fmt.Sprintf("repl:%d", s.inputs)
	s.sources[name] = src
	file, errs := parser.ParseFile(s.fset, name, src)
	if errs.HasError() {
		return nil, errs
	}
	return s.processor.ProcessFile(file)
}

// Registry exposes everything the session has registered so far.
func (s *Session) Registry() *classes.Registry { return s.processor.Registry() }

// FormatError renders e against the input it came from.
func (s *Session) FormatError(e kerr.KernelError) string {
	if e.Pos().IsValid() {
		name := s.fset.Position(e.Pos()).Filename
		if src, ok := s.sources[name]; ok {
			return kerr.FormatWithSource(e, s.fset, src)
		}
	}
	return kerr.FormatWithCode(e)
}
