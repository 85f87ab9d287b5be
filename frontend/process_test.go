package frontend

import (
	"go/token"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fora-lang/fora/kernel/kerr"
	"github.com/fora-lang/fora/parser"
)

func run(t *testing.T, src string) ([]Output, *kerr.Errors) {
	t.Helper()
	fset := token.NewFileSet()
	file, errs := parser.ParseFile(fset, "test.fora", src)
	if errs.HasError() {
		for _, e := range errs.Errors() {
			t.Log(kerr.FormatWithCode(e))
		}
		t.FailNow()
	}
	return NewProcessor(fset).ProcessFile(file)
}

func runOk(t *testing.T, src string) []Output {
	t.Helper()
	outputs, errs := run(t, src)
	if errs.HasError() {
		for _, e := range errs.Errors() {
			t.Log(kerr.FormatWithCode(e))
		}
		t.FailNow()
	}
	return outputs
}

func texts(outputs []Output) []string {
	var out []string
	for _, o := range outputs {
		out = append(out, o.Text)
	}
	return out
}

const rotPrologue = `
data Rot := r0 | r120 | r240
def addRot : Rot -> Rot -> Rot :=
  fun (a : Rot) => fun (b : Rot) =>
    match a with
    | r0 => b
    | r120 => (match b with | r0 => r120 | r120 => r240 | r240 => r0)
    | r240 => (match b with | r0 => r240 | r120 => r0 | r240 => r120)
class Add (A : Type) { add : A -> A -> A }
`

func TestUniversalSpecialization(t *testing.T) {
	outputs := runOk(t, `
axiom Human : Type
axiom socrates : Human
axiom Mortal : Human -> Prop
axiom mortal : forall (h : Human), Mortal h
#check mortal
#check mortal socrates
`)
	assert.Equal(t, []string{
		"mortal : forall (h : Human), Mortal h",
		"mortal socrates : Mortal socrates",
	}, texts(outputs))
}

func TestOperatorResolvesThroughInstance(t *testing.T) {
	outputs := runOk(t, rotPrologue+`
instance : Add Rot := { add := addRot }
#eval r0 + r120
#reduce r120 + r240
`)
	assert.Equal(t, []string{"r120", "r0"}, texts(outputs))
}

func TestVariableDeclarationsAreAmbient(t *testing.T) {
	outputs := runOk(t, rotPrologue+`
instance : Add Rot := { add := addRot }
variable (x : Rot)
#check x + r120
`)
	assert.Equal(t, []string{"addRot x r120 : Rot"}, texts(outputs))
}

func TestZeroNeedsACarrier(t *testing.T) {
	_, errs := run(t, `#check 0`)
	e := requireCode(t, errs, kerr.TypeMismatch)
	assert.Contains(t, e.Error(), "carrier of '0'")
}

func TestZeroBorrowsCarrierFromOperand(t *testing.T) {
	outputs := runOk(t, rotPrologue+`
class Zero (A : Type) { zero : A }
instance : Add Rot := { add := addRot }
instance : Zero Rot := { zero := r0 }
#eval 0 + r120
#eval r120 + 0
#eval (0 : Rot)
`)
	assert.Equal(t, []string{"r120", "r120", "r0"}, texts(outputs))
}

// Two registrations for one (class, carrier) are both kept, and any
// later resolution is ambiguous, even though the assignments coincide.
func TestDuplicateInstancesAreAmbiguousAtResolution(t *testing.T) {
	outputs, errs := run(t, rotPrologue+`
instance : Add Rot := { add := addRot }
instance : Add Rot := { add := addRot }
#eval r0 + r120
`)
	assert.Empty(t, outputs)
	e := requireCode(t, errs, kerr.AmbiguousInstance)
	assert.Contains(t, e.Error(), "Add")
	assert.Contains(t, e.Error(), "2 candidates")
}

// A law field is not inheritable: an Add instance alone does not make
// an AddSemigroup one.
func TestLawFieldNotInheritable(t *testing.T) {
	_, errs := run(t, rotPrologue+`
class AddSemigroup (A : Type) extends Add {
  add_assoc : forall (a : A), forall (b : A), forall (c : A),
    Eq A (add (add a b) c) (add a (add b c))
}
instance : Add Rot := { add := addRot }
#synth AddSemigroup Rot
`)
	e := requireCode(t, errs, kerr.NoInstance)
	assert.Contains(t, e.Error(), "add_assoc")
}

const flipPrologue = `
data Flip := f0 | f1
class Zero (A : Type) { zero : A }
class AddZ (A : Type) extends Zero {
  add : A -> A -> A,
  add_zero_zero : Eq A (add zero zero) zero := rfl A (add zero zero)
}
instance : Zero Flip := { zero := f0 }
`

// A defaulted law holds when it reduces: add f0 f0 computes to f0.
func TestDefaultDischargedByRfl(t *testing.T) {
	outputs := runOk(t, flipPrologue+`
def keepFirst : Flip -> Flip -> Flip := fun (a : Flip) => fun (b : Flip) => a
instance : AddZ Flip := { add := keepFirst }
#synth AddZ Flip
`)
	require.Len(t, outputs, 1)
	assert.Contains(t, outputs[0].Text, "add_zero_zero := rfl Flip (keepFirst f0 f0)")
}

// When the default's obligation does not hold definitionally for the
// carrier, registration fails with a type mismatch; there is no silent
// fallback.
func TestDefaultFailingObligationIsATypeMismatch(t *testing.T) {
	_, errs := run(t, flipPrologue+`
def alwaysOne : Flip -> Flip -> Flip := fun (a : Flip) => fun (b : Flip) => f1
instance : AddZ Flip := { add := alwaysOne }
`)
	e := requireCode(t, errs, kerr.TypeMismatch)
	assert.Contains(t, e.Error(), "add_zero_zero")
}

func TestUnknownInstanceField(t *testing.T) {
	_, errs := run(t, rotPrologue+`
instance : Add Rot := { plus := addRot }
`)
	requireCode(t, errs, kerr.UnknownField)
}

func TestDuplicateClassRejected(t *testing.T) {
	_, errs := run(t, `
class Add (A : Type) { add : A -> A -> A }
class Add (A : Type) { add : A -> A -> A }
`)
	requireCode(t, errs, kerr.DuplicateClass)
}

func TestExtendingUndeclaredClass(t *testing.T) {
	_, errs := run(t, `
class AddSemigroup (A : Type) extends Add { x : A }
`)
	requireCode(t, errs, kerr.UnknownClass)
}

func TestStructLiteralNeedsAscription(t *testing.T) {
	_, errs := run(t, rotPrologue+`
#check { add := addRot }
`)
	e := requireCode(t, errs, kerr.TypeMismatch)
	assert.Contains(t, e.Error(), "ascription")
}

func TestProjectionOnAscribedLiteral(t *testing.T) {
	outputs := runOk(t, rotPrologue+`
#eval ({ add := addRot } : Add Rot).add r0 r240
`)
	assert.Equal(t, []string{"r240"}, texts(outputs))
}

// A binder that shadows a global must stay a bound variable: reducing
// it must not splice in the global's body, so #check and #reduce agree
// on the term.
func TestShadowingBinderSurvivesReduction(t *testing.T) {
	outputs := runOk(t, `
data Rot := r0 | r120 | r240
def idRot : Rot -> Rot := fun (a : Rot) => a
#check fun (idRot : Rot) => idRot
#reduce fun (idRot : Rot) => idRot
#reduce fun (r120 : Rot) => match r120 with | r120 => r0 | _ => r240
`)
	assert.Equal(t, []string{
		"fun (idRot : Rot) => idRot : Rot -> Rot",
		"fun (idRot : Rot) => idRot",
		"fun (r120 : Rot) => match r120 with | r120 => r0 | _ => r240",
	}, texts(outputs))
}

// A failed declaration is skipped and reported; later independent
// declarations still go through.
func TestProcessingContinuesPastAFailedDeclaration(t *testing.T) {
	outputs, errs := run(t, `
axiom Human : Type
axiom broken : missingName
axiom socrates : Human
#check socrates
`)
	requireCode(t, errs, kerr.UnboundVariable)
	assert.Equal(t, []string{"socrates : Human"}, texts(outputs))
}

func requireCode(t *testing.T, errs *kerr.Errors, code kerr.ErrCode) kerr.KernelError {
	t.Helper()
	require.True(t, errs.HasError(), "expected an error")
	e := errs.Errors()[0]
	require.Equal(t, code, e.Code(), "got: %s", kerr.FormatWithCode(e))
	return e
}
