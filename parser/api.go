// Package parser turns fora source text into the surface syntax tree.
// The lexer and parser are hand written: the grammar is small, and a
// hand-rolled descent gives precise diagnostics plus the
// incomplete-input signal the REPL's continuation prompt needs.
package parser

import (
	"go/token"

	"github.com/fora-lang/fora/frontend/ast"
	"github.com/fora-lang/fora/kernel/kerr"
)

// ParseFile parses src as a sequence of declarations and commands.
// Positions are registered in fset under name, so diagnostics from any
// later phase can be rendered against the original text.
//
// Parsing stops at the first syntax error. An error caused by the
// input ending mid-declaration satisfies kerr.IsIncomplete, which is
// how the REPL distinguishes "keep typing" from "malformed".
func ParseFile(fset *token.FileSet, name, src string) (*ast.File, *kerr.Errors) {
	file := fset.AddFile(name, -1, len(src))
	lex := &lexer{src: src, file: file}
	toks, errs := lex.all()
	if errs.HasError() {
		return &ast.File{Name: name}, errs
	}
	p := &parser{lex: lex, toks: toks}
	return p.parseFile(name)
}
