package kerr

import (
	"fmt"
	"go/token"
	"strings"
)

// FormatWithSource renders e against the source it was raised in, as a
// snippet with a caret under the offending column:
//
//	error (E002) in rotations.fora at 12:31: variable 'addRo' is not defined
//
//	  11 | -- the identity rotation
//	  12 | instance Add Rot := { add := addRo }
//	     |                               ^
//	  13 | ...
//
// It falls back to FormatWithCode when e carries no position or fset is
// nil.
func FormatWithSource(e KernelError, fset *token.FileSet, src string) string {
	if fset == nil || !e.Pos().IsValid() {
		return FormatWithCode(e)
	}
	position := fset.Position(e.Pos())
	header := fmt.Sprintf("error (E%03d)", e.Code())
	return snippet(src, header, position.Filename, position.Line, position.Column, e.Error())
}

// snippet builds the labeled snippet with at most one previous and one
// next line of context. Coordinates are 1-based and clamped to the
// source bounds.
func snippet(src, header, name string, line, col int, msg string) string {
	lines := strings.Split(src, "\n")
	if len(lines) == 0 {
		lines = []string{""}
	}
	if line < 1 {
		line = 1
	}
	if line > len(lines) {
		line = len(lines)
	}
	if col < 1 {
		col = 1
	}
	lineTxt := lines[line-1]

	var b strings.Builder
	if name != "" {
		fmt.Fprintf(&b, "%s in %s at %d:%d: %s\n\n", header, name, line, col, msg)
	} else {
		fmt.Fprintf(&b, "%s at %d:%d: %s\n\n", header, line, col, msg)
	}
	if line > 1 {
		fmt.Fprintf(&b, "%4d | %s\n", line-1, lines[line-2])
	}
	fmt.Fprintf(&b, "%4d | %s\n", line, lineTxt)
	fmt.Fprintf(&b, "     | %s^\n", strings.Repeat(" ", col-1))
	if line < len(lines) {
		fmt.Fprintf(&b, "%4d | %s\n", line+1, lines[line])
	}
	return b.String()
}
