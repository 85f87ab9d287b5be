//go:build js && wasm

package main

import (
	"syscall/js"

	"github.com/fora-lang/fora/fora"
)

func main() {
	js.Global().Set("ForaCheckAndRender", js.FuncOf(func(this js.Value, args []js.Value) any {
		if len(args) < 2 {
			return "ForaCheckAndRender expects (name, source)"
		}
		return fora.CheckAndRender(args[0].String(), args[1].String())
	}))

	// wait indefinitely so that Go does not terminate execution
	// and the function remains available
	<-make(chan struct{})
}
