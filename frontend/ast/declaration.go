package ast

import (
	"github.com/fora-lang/fora/kernel/term"
)

// Decl is a top-level declaration or command.
type Decl interface {
	Node
	declNode()
}

var (
	_ Decl = (*AxiomDecl)(nil)
	_ Decl = (*DataDecl)(nil)
	_ Decl = (*DefDecl)(nil)
	_ Decl = (*VariableDecl)(nil)
	_ Decl = (*ClassDecl)(nil)
	_ Decl = (*InstanceDecl)(nil)
	_ Decl = (*CommandDecl)(nil)
)

// File is one parsed source unit, with declarations in the order they
// were written. Order matters: the processor registers strictly
// front to back.
type File struct {
	Name  string
	Decls []Decl
}

// AxiomDecl introduces a name with a type and no body:
// `axiom mortal : forall (h : Human), Mortal h`.
type AxiomDecl struct {
	term.Range
	Name string
	Type Expr
}

func (*AxiomDecl) declNode() {}

// DataDecl declares a datatype with nullary constructors:
// `data Rot := r0 | r120 | r240`.
type DataDecl struct {
	term.Range
	Name  string
	Ctors []string
}

func (*DataDecl) declNode() {}

// DefDecl declares a definition with a type and an unfoldable body:
// `def addRot : Rot -> Rot -> Rot := fun (a : Rot) => ...`.
type DefDecl struct {
	term.Range
	Name string
	Type Expr
	Body Expr
}

func (*DefDecl) declNode() {}

// VariableDecl introduces an ambient assumption for the rest of the
// file: `variable (h : Human)`.
type VariableDecl struct {
	term.Range
	Name string
	Type Expr
}

func (*VariableDecl) declNode() {}

// FieldDecl is one field of a class body. Default is nil for required
// fields.
type FieldDecl struct {
	term.Range
	Name    string
	Type    Expr
	Default Expr
}

// ClassDecl declares a typeclass:
// `class AddMonoid (A : Type) extends AddSemigroup, AddZeroClass { ... }`.
type ClassDecl struct {
	term.Range
	Name         string
	CarrierParam string
	Extends      []string
	Fields       []FieldDecl
}

func (*ClassDecl) declNode() {}

// InstanceDecl registers an instance of a class for a carrier:
// `instance : Add Rot := { add := addRot }`. Name is optional and only
// used in diagnostics.
type InstanceDecl struct {
	term.Range
	Name    string
	Class   string
	Carrier Expr
	Fields  []FieldAssign
}

func (*InstanceDecl) declNode() {}

// CommandKind selects one of the inspection commands.
type CommandKind uint8

const (
	// CommandCheck prints a term and its type.
	CommandCheck CommandKind = iota
	// CommandEval prints a term's call-by-name value.
	CommandEval
	// CommandReduce prints a term's full normal form.
	CommandReduce
	// CommandSynth prints the resolved instance of a class for a
	// carrier, fields included.
	CommandSynth
)

func (k CommandKind) String() string {
	switch k {
	case CommandCheck:
		return "#check"
	case CommandEval:
		return "#eval"
	case CommandReduce:
		return "#reduce"
	case CommandSynth:
		return "#synth"
	}
	return "#?"
}

// CommandDecl is an inspection command. Expr is set for #check, #eval,
// and #reduce; Class and Carrier are set for #synth.
type CommandDecl struct {
	term.Range
	Kind    CommandKind
	Expr    Expr
	Class   string
	Carrier Expr
}

func (*CommandDecl) declNode() {}
