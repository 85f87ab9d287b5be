package fora

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A session keeps the registry and the ambient assumptions across
// inputs, the way the REPL feeds it.
func TestSessionAccumulatesState(t *testing.T) {
	s := NewSession()

	outputs, errs := s.Eval("data Rot := r0 | r120 | r240")
	require.False(t, errs.HasError())
	assert.Empty(t, outputs)

	_, errs = s.Eval(`def addRot : Rot -> Rot -> Rot :=
  fun (a : Rot) => fun (b : Rot) =>
    match a with
    | r0 => b
    | r120 => (match b with | r0 => r120 | r120 => r240 | r240 => r0)
    | r240 => (match b with | r0 => r240 | r120 => r0 | r240 => r120)`)
	require.False(t, errs.HasError())

	_, errs = s.Eval("class Add (A : Type) { add : A -> A -> A }")
	require.False(t, errs.HasError())
	_, errs = s.Eval("instance : Add Rot := { add := addRot }")
	require.False(t, errs.HasError())

	outputs, errs = s.Eval("#eval r120 + r240")
	require.False(t, errs.HasError())
	require.Len(t, outputs, 1)
	assert.Equal(t, "r0", outputs[0].Text)

	assert.True(t, s.Registry().IsConstructor("r120"))
}

// An input that stops mid-declaration reports only incomplete errors,
// which is the signal the REPL uses to keep the continuation prompt up.
func TestSessionIncompleteInput(t *testing.T) {
	s := NewSession()
	_, errs := s.Eval("axiom Human :")
	require.True(t, errs.HasError())
	assert.True(t, errs.IncompleteOnly())

	// the registry is untouched; the resubmitted full text goes through
	outputs, errs := s.Eval("axiom Human : Type\n#check Human")
	require.False(t, errs.HasError())
	require.Len(t, outputs, 1)
	assert.Equal(t, "Human : Type", outputs[0].Text)
}

// Errors from earlier inputs still render with their own source, even
// after later inputs were evaluated.
func TestSessionFormatErrorPointsAtItsInput(t *testing.T) {
	s := NewSession()
	_, errs := s.Eval("#check missingName")
	require.True(t, errs.HasError())
	_, laterErrs := s.Eval("axiom Human : Type")
	require.False(t, laterErrs.HasError())

	rendered := s.FormatError(errs.Errors()[0])
	assert.Contains(t, rendered, "missingName")
	assert.Contains(t, rendered, "#check missingName")
	assert.Contains(t, rendered, "^")
}
