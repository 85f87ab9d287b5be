package frontend

// opSpec names the class field an operator is notation for.
type opSpec struct {
	class string
	field string
}

// Operator notation is resolved against the instance registry at
// elaboration time, keyed by the static type of an operand: `a + b`
// becomes `add a b` for the Add instance of a's type. The carrier
// operand is the left one, except for `•`, whose left operand is the
// scalar.
var binaryOps = map[string]opSpec{
	"+": {class: "Add", field: "add"},
	"-": {class: "SubNegMonoid", field: "sub"},
	"•": {class: "AddMonoid", field: "nsmul"},
}

var unaryOps = map[string]opSpec{
	"-": {class: "Neg", field: "neg"},
}

// The literal `0` is notation for the zero field of the Zero instance
// of whatever carrier the context supplies.
var zeroSpec = opSpec{class: "Zero", field: "zero"}
