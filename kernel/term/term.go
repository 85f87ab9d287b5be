package term

import (
	"encoding/binary"
	"hash/fnv"
)

// Term is the kernel expression language. Types are terms too: a Pi
// binds a variable whose type is a Term and whose body is a Term, so a
// return type may mention the argument. Terms form immutable trees;
// sub-terms are shared freely and never mutated after construction.
//
// Hash is structural and ignores source ranges, so two occurrences of
// the same term at different positions hash identically. The resolver
// keys carriers by structure, not provenance.
type Term interface {
	Positioner
	Hash() uint64
	termNode()
}

var (
	_ Term = (*Var)(nil)
	_ Term = (*Sort)(nil)
	_ Term = (*Pi)(nil)
	_ Term = (*Lambda)(nil)
	_ Term = (*App)(nil)
	_ Term = (*StructLit)(nil)
	_ Term = (*Proj)(nil)
	_ Term = (*Match)(nil)
)

// Var references a bound variable, an ambient assumption, or a global
// declaration (axiom, def, data type, constructor, or class name).
// Which one it is depends on the context it is checked under; locals
// shadow globals.
type Var struct {
	Range
	Name string
}

func (*Var) termNode() {}

func (t *Var) Hash() uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte("Var"))
	_, _ = h.Write([]byte(t.Name))
	return h.Sum64()
}

// SortKind distinguishes the two type-of-types literals.
type SortKind uint8

const (
	// SortType is the sort of data-level types ('Type').
	SortType SortKind = iota
	// SortProp is the sort of propositions ('Prop').
	SortProp
)

func (k SortKind) String() string {
	if k == SortProp {
		return "Prop"
	}
	return "Type"
}

// Sort is a sort literal: Type or Prop.
type Sort struct {
	Range
	Kind SortKind
}

func (*Sort) termNode() {}

func (t *Sort) Hash() uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte("Sort"))
	_, _ = h.Write([]byte{byte(t.Kind)})
	return h.Sum64()
}

// Pi is a dependent function type: forall (x : ParamType), Body.
// When Body does not mention the parameter, printing simplifies it to
// ParamType -> Body; that is display-level only.
type Pi struct {
	Range
	Param     string
	ParamType Term
	Body      Term
}

func (*Pi) termNode() {}

func (t *Pi) Hash() uint64 {
	h := fnv.New64a()
	arr := []byte("Pi")
	_, _ = h.Write([]byte(t.Param))
	arr = binary.LittleEndian.AppendUint64(arr, t.ParamType.Hash())
	arr = binary.LittleEndian.AppendUint64(arr, t.Body.Hash())
	_, _ = h.Write(arr)
	return h.Sum64()
}

// Lambda introduces a function: fun (x : ParamType) => Body.
type Lambda struct {
	Range
	Param     string
	ParamType Term
	Body      Term
}

func (*Lambda) termNode() {}

func (t *Lambda) Hash() uint64 {
	h := fnv.New64a()
	arr := []byte("Lambda")
	_, _ = h.Write([]byte(t.Param))
	arr = binary.LittleEndian.AppendUint64(arr, t.ParamType.Hash())
	arr = binary.LittleEndian.AppendUint64(arr, t.Body.Hash())
	_, _ = h.Write(arr)
	return h.Sum64()
}

// App eliminates a Pi: applying Fn (of type forall (x : T), U) to Arg
// (of type T) has type U with Arg substituted for x.
type App struct {
	Range
	Fn  Term
	Arg Term
}

func (*App) termNode() {}

func (t *App) Hash() uint64 {
	h := fnv.New64a()
	arr := []byte("App")
	arr = binary.LittleEndian.AppendUint64(arr, t.Fn.Hash())
	arr = binary.LittleEndian.AppendUint64(arr, t.Arg.Hash())
	_, _ = h.Write(arr)
	return h.Sum64()
}

// FieldValue is one assignment inside a StructLit, in writing order.
type FieldValue struct {
	Name  string
	Value Term
}

// StructLit is a literal value of a class applied to a carrier:
// { add := addRot } : Add Rot. The class name is a label, not a
// variable; Carrier is a term denoting the carrier type.
type StructLit struct {
	Range
	Class   string
	Carrier Term
	Fields  []FieldValue
}

func (*StructLit) termNode() {}

func (t *StructLit) Hash() uint64 {
	h := fnv.New64a()
	arr := []byte("StructLit")
	_, _ = h.Write([]byte(t.Class))
	arr = binary.LittleEndian.AppendUint64(arr, t.Carrier.Hash())
	for _, f := range t.Fields {
		_, _ = h.Write([]byte(f.Name))
		arr = binary.LittleEndian.AppendUint64(arr, f.Value.Hash())
	}
	_, _ = h.Write(arr)
	return h.Sum64()
}

// Field returns the value assigned to name, if present.
func (t *StructLit) Field(name string) (Term, bool) {
	for _, f := range t.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// Proj projects a field out of a struct value: s.f.
type Proj struct {
	Range
	Struct Term
	Field  string
}

func (*Proj) termNode() {}

func (t *Proj) Hash() uint64 {
	h := fnv.New64a()
	arr := []byte("Proj")
	_, _ = h.Write([]byte(t.Field))
	arr = binary.LittleEndian.AppendUint64(arr, t.Struct.Hash())
	_, _ = h.Write(arr)
	return h.Sum64()
}

// WildcardPattern is the catch-all pattern name in a Match arm.
const WildcardPattern = "_"

// Arm is one case of a Match. Ctor names a nullary constructor of the
// scrutinee's data type, or WildcardPattern for a trailing catch-all.
type Arm struct {
	Ctor string
	Body Term
}

// Match performs case analysis on a value of a data type with nullary
// constructors. It is the only branching construct the kernel has; it
// introduces no recursion, so reduction stays terminating.
type Match struct {
	Range
	Scrutinee Term
	Arms      []Arm
}

func (*Match) termNode() {}

func (t *Match) Hash() uint64 {
	h := fnv.New64a()
	arr := []byte("Match")
	arr = binary.LittleEndian.AppendUint64(arr, t.Scrutinee.Hash())
	for _, arm := range t.Arms {
		_, _ = h.Write([]byte(arm.Ctor))
		arr = binary.LittleEndian.AppendUint64(arr, arm.Body.Hash())
	}
	_, _ = h.Write(arr)
	return h.Sum64()
}

// Arm returns the arm matching ctor, falling back to a wildcard arm.
func (t *Match) Arm(ctor string) (Arm, bool) {
	for _, arm := range t.Arms {
		if arm.Ctor == ctor {
			return arm, true
		}
	}
	for _, arm := range t.Arms {
		if arm.Ctor == WildcardPattern {
			return arm, true
		}
	}
	return Arm{}, false
}

// Apply left-folds args onto fn, building an application spine.
func Apply(fn Term, args ...Term) Term {
	out := fn
	for _, arg := range args {
		out = &App{Range: RangeBetween(fn, arg), Fn: out, Arg: arg}
	}
	return out
}

// Unapply peels an application spine apart, returning the head and the
// arguments in application order.
func Unapply(t Term) (head Term, args []Term) {
	head = t
	for {
		app, ok := head.(*App)
		if !ok {
			return head, args
		}
		args = append([]Term{app.Arg}, args...)
		head = app.Fn
	}
}

// Arrow builds the non-dependent function type from -> to. The bound
// name is unused on purpose; Show renders it with an arrow.
func Arrow(from, to Term) *Pi {
	return &Pi{Param: WildcardPattern, ParamType: from, Body: to}
}
