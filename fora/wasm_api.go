package fora

import (
	"strings"
)

// CheckAndRender processes src and returns either the command outputs
// or the formatted diagnostics, as one string. It backs the wasm
// playground build, which has no filesystem or exit codes to speak
// through.
func CheckAndRender(name, src string) string {
	program := LoadProgram(name, src)
	if program.Errors().HasError() {
		var b strings.Builder
		for i, e := range program.Errors().Errors() {
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString(program.FormatError(e))
		}
		return b.String()
	}
	return program.Render()
}
