package term

import (
	"strings"
)

// Precedence levels used when printing; higher binds tighter.
const (
	precLowest int16 = iota // forall, fun, match
	precArrow               // ->, right associative
	precApp                 // application, left associative
	precAtom
)

// Show renders t in surface syntax. Non-dependent Pis print as
// arrows (T -> U); that simplification is display-level only.
func Show(t Term) string {
	ctx := newShowContext()
	ctx.showWalker(t, precLowest)
	return ctx.String()
}

type showContext struct {
	*strings.Builder
}

func newShowContext() *showContext {
	return &showContext{Builder: &strings.Builder{}}
}

func (ctx *showContext) parens(outer, own int16, body func()) {
	if outer > own {
		ctx.WriteString("(")
		body()
		ctx.WriteString(")")
		return
	}
	body()
}

func (ctx *showContext) showWalker(t Term, outer int16) {
	if t == nil {
		ctx.WriteString("<nil>")
		return
	}
	switch t := t.(type) {
	case *Var:
		ctx.WriteString(t.Name)
	case *Sort:
		ctx.WriteString(t.Kind.String())
	case *Pi:
		if !FreeVars(t.Body).Contains(t.Param) {
			ctx.parens(outer, precArrow, func() {
				ctx.showWalker(t.ParamType, precApp)
				ctx.WriteString(" -> ")
				ctx.showWalker(t.Body, precArrow)
			})
			return
		}
		ctx.parens(outer, precLowest, func() {
			ctx.WriteString("forall (")
			ctx.WriteString(t.Param)
			ctx.WriteString(" : ")
			ctx.showWalker(t.ParamType, precLowest)
			ctx.WriteString("), ")
			ctx.showWalker(t.Body, precLowest)
		})
	case *Lambda:
		ctx.parens(outer, precLowest, func() {
			ctx.WriteString("fun (")
			ctx.WriteString(t.Param)
			ctx.WriteString(" : ")
			ctx.showWalker(t.ParamType, precLowest)
			ctx.WriteString(") => ")
			ctx.showWalker(t.Body, precLowest)
		})
	case *App:
		ctx.parens(outer, precApp, func() {
			ctx.showWalker(t.Fn, precApp)
			ctx.WriteString(" ")
			ctx.showWalker(t.Arg, precAtom)
		})
	case *StructLit:
		ctx.WriteString("{ ")
		for i, f := range t.Fields {
			if i > 0 {
				ctx.WriteString(", ")
			}
			ctx.WriteString(f.Name)
			ctx.WriteString(" := ")
			ctx.showWalker(f.Value, precLowest)
		}
		if len(t.Fields) == 0 {
			ctx.WriteString("}")
			return
		}
		ctx.WriteString(" }")
	case *Proj:
		ctx.showWalker(t.Struct, precAtom)
		ctx.WriteString(".")
		ctx.WriteString(t.Field)
	case *Match:
		ctx.parens(outer, precLowest, func() {
			ctx.WriteString("match ")
			ctx.showWalker(t.Scrutinee, precApp)
			ctx.WriteString(" with")
			for _, arm := range t.Arms {
				ctx.WriteString(" | ")
				ctx.WriteString(arm.Ctor)
				ctx.WriteString(" => ")
				ctx.showWalker(arm.Body, precArrow)
			}
		})
	default:
		ctx.WriteString("<unknown term>")
	}
}
