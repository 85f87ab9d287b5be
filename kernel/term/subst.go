package term

import (
	"fmt"

	"github.com/hashicorp/go-set/v3"
)

// FreeVars returns the set of variable names occurring free in t.
// Constructor labels in Match arms and class/field labels are not
// variables and never appear in the result.
func FreeVars(t Term) *set.Set[string] {
	free := set.New[string](8)
	collectFreeVars(t, set.New[string](4), free)
	return free
}

func collectFreeVars(t Term, bound, free *set.Set[string]) {
	switch t := t.(type) {
	case *Var:
		if !bound.Contains(t.Name) {
			free.Insert(t.Name)
		}
	case *Sort:
	case *Pi:
		collectFreeVars(t.ParamType, bound, free)
		collectFreeVars(t.Body, withBound(bound, t.Param), free)
	case *Lambda:
		collectFreeVars(t.ParamType, bound, free)
		collectFreeVars(t.Body, withBound(bound, t.Param), free)
	case *App:
		collectFreeVars(t.Fn, bound, free)
		collectFreeVars(t.Arg, bound, free)
	case *StructLit:
		collectFreeVars(t.Carrier, bound, free)
		for _, f := range t.Fields {
			collectFreeVars(f.Value, bound, free)
		}
	case *Proj:
		collectFreeVars(t.Struct, bound, free)
	case *Match:
		collectFreeVars(t.Scrutinee, bound, free)
		for _, arm := range t.Arms {
			collectFreeVars(arm.Body, bound, free)
		}
	}
}

func withBound(bound *set.Set[string], name string) *set.Set[string] {
	if bound.Contains(name) {
		return bound
	}
	next := bound.Copy()
	next.Insert(name)
	return next
}

// Substitute returns t with every free occurrence of name replaced by
// value, renaming bound variables as needed to avoid capturing free
// variables of value. The input trees are never mutated.
func Substitute(t Term, name string, value Term) Term {
	if t == nil {
		return nil
	}
	// a renamed binder must not collide with the name being replaced
	avoid := FreeVars(value)
	avoid.Insert(name)
	return substitute(t, name, value, avoid)
}

// SubstituteAll applies the substitutions simultaneously: every free
// occurrence of a listed name is replaced by its value, and spliced
// values are never rewritten by other entries. Instantiating a class
// telescope needs exactly this — applying the entries one at a time
// could rewrite a global name inside an already-spliced value when it
// collides with a later field name.
func SubstituteAll(t Term, subs []Sub) Term {
	if t == nil || len(subs) == 0 {
		return t
	}
	values := make(map[string]Term, len(subs))
	avoid := set.New[string](len(subs))
	for _, s := range subs {
		if _, dup := values[s.Name]; dup {
			continue
		}
		values[s.Name] = s.Value
		avoid.InsertSet(FreeVars(s.Value))
		avoid.Insert(s.Name)
	}
	return substituteAll(t, values, avoid)
}

// Sub is a single pending substitution.
type Sub struct {
	Name  string
	Value Term
}

func substituteAll(t Term, values map[string]Term, avoid *set.Set[string]) Term {
	switch t := t.(type) {
	case *Var:
		if v, ok := values[t.Name]; ok {
			return v
		}
		return t
	case *Sort:
		return t
	case *Pi:
		paramType := substituteAll(t.ParamType, values, avoid)
		inner := without(values, t.Param)
		if len(inner) == 0 {
			return &Pi{Range: t.Range, Param: t.Param, ParamType: paramType, Body: t.Body}
		}
		param, body := t.Param, t.Body
		if avoid.Contains(param) {
			param = freshName(param, avoid, body)
			body = Substitute(body, t.Param, &Var{Name: param})
		}
		return &Pi{Range: t.Range, Param: param, ParamType: paramType, Body: substituteAll(body, inner, avoid)}
	case *Lambda:
		paramType := substituteAll(t.ParamType, values, avoid)
		inner := without(values, t.Param)
		if len(inner) == 0 {
			return &Lambda{Range: t.Range, Param: t.Param, ParamType: paramType, Body: t.Body}
		}
		param, body := t.Param, t.Body
		if avoid.Contains(param) {
			param = freshName(param, avoid, body)
			body = Substitute(body, t.Param, &Var{Name: param})
		}
		return &Lambda{Range: t.Range, Param: param, ParamType: paramType, Body: substituteAll(body, inner, avoid)}
	case *App:
		return &App{
			Range: t.Range,
			Fn:    substituteAll(t.Fn, values, avoid),
			Arg:   substituteAll(t.Arg, values, avoid),
		}
	case *StructLit:
		fields := make([]FieldValue, len(t.Fields))
		for i, f := range t.Fields {
			fields[i] = FieldValue{Name: f.Name, Value: substituteAll(f.Value, values, avoid)}
		}
		return &StructLit{Range: t.Range, Class: t.Class, Carrier: substituteAll(t.Carrier, values, avoid), Fields: fields}
	case *Proj:
		return &Proj{Range: t.Range, Struct: substituteAll(t.Struct, values, avoid), Field: t.Field}
	case *Match:
		arms := make([]Arm, len(t.Arms))
		for i, arm := range t.Arms {
			arms[i] = Arm{Ctor: arm.Ctor, Body: substituteAll(arm.Body, values, avoid)}
		}
		return &Match{Range: t.Range, Scrutinee: substituteAll(t.Scrutinee, values, avoid), Arms: arms}
	default:
		panic(fmt.Sprintf("substitute: unhandled term %T", t))
	}
}

// without returns values minus one binding, sharing the map when the
// name is absent.
func without(values map[string]Term, name string) map[string]Term {
	if _, ok := values[name]; !ok {
		return values
	}
	out := make(map[string]Term, len(values))
	for k, v := range values {
		if k != name {
			out[k] = v
		}
	}
	return out
}

func substitute(t Term, name string, value Term, avoid *set.Set[string]) Term {
	switch t := t.(type) {
	case *Var:
		if t.Name == name {
			return value
		}
		return t
	case *Sort:
		return t
	case *Pi:
		paramType := substitute(t.ParamType, name, value, avoid)
		if t.Param == name {
			if paramType == t.ParamType {
				return t
			}
			return &Pi{Range: t.Range, Param: t.Param, ParamType: paramType, Body: t.Body}
		}
		param, body := t.Param, t.Body
		if avoid.Contains(param) {
			param = freshName(param, avoid, body)
			body = Substitute(body, t.Param, &Var{Name: param})
		}
		return &Pi{Range: t.Range, Param: param, ParamType: paramType, Body: substitute(body, name, value, avoid)}
	case *Lambda:
		paramType := substitute(t.ParamType, name, value, avoid)
		if t.Param == name {
			if paramType == t.ParamType {
				return t
			}
			return &Lambda{Range: t.Range, Param: t.Param, ParamType: paramType, Body: t.Body}
		}
		param, body := t.Param, t.Body
		if avoid.Contains(param) {
			param = freshName(param, avoid, body)
			body = Substitute(body, t.Param, &Var{Name: param})
		}
		return &Lambda{Range: t.Range, Param: param, ParamType: paramType, Body: substitute(body, name, value, avoid)}
	case *App:
		return &App{
			Range: t.Range,
			Fn:    substitute(t.Fn, name, value, avoid),
			Arg:   substitute(t.Arg, name, value, avoid),
		}
	case *StructLit:
		fields := make([]FieldValue, len(t.Fields))
		for i, f := range t.Fields {
			fields[i] = FieldValue{Name: f.Name, Value: substitute(f.Value, name, value, avoid)}
		}
		return &StructLit{
			Range:   t.Range,
			Class:   t.Class,
			Carrier: substitute(t.Carrier, name, value, avoid),
			Fields:  fields,
		}
	case *Proj:
		return &Proj{Range: t.Range, Struct: substitute(t.Struct, name, value, avoid), Field: t.Field}
	case *Match:
		arms := make([]Arm, len(t.Arms))
		for i, arm := range t.Arms {
			arms[i] = Arm{Ctor: arm.Ctor, Body: substitute(arm.Body, name, value, avoid)}
		}
		return &Match{Range: t.Range, Scrutinee: substitute(t.Scrutinee, name, value, avoid), Arms: arms}
	default:
		panic(fmt.Sprintf("substitute: unhandled term %T", t))
	}
}

// freshName derives a name not in avoid and not free in body, by
// priming the shadowed name until it is fresh.
func freshName(base string, avoid *set.Set[string], body Term) string {
	bodyFree := FreeVars(body)
	name := base
	for {
		name += "'"
		if !avoid.Contains(name) && !bodyFree.Contains(name) {
			return name
		}
	}
}
