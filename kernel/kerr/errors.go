package kerr

import (
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/fora-lang/fora/kernel/term"
)

// enableDebugErrorPrinting makes errors include their stacktrace when printed
const enableDebugErrorPrinting bool = false
const enableDebugFullStacktrace bool = false

type ErrCode int

const (
	None            ErrCode = iota
	Syntax          ErrCode = iota
	UnboundVariable ErrCode = iota
	TypeMismatch
	NotAFunction
	DuplicateDefinition
	DuplicateClass
	UnknownClass
	FieldNameCollision
	UnknownField
	UnknownConstructor
	MissingCase
	NoInstance
	AmbiguousInstance
)

type KernelError interface {
	Error() string
	Code() ErrCode
	term.Positioner

	withStack([]byte) KernelError
	getStack() []byte
}

func FormatWithCode(e KernelError) string {
	if enableDebugErrorPrinting && e.getStack() != nil {
		stack := string(e.getStack())
		if !enableDebugFullStacktrace {
			stack = strings.Split(stack, "\n")[6]
		}
		return fmt.Sprintf("%s:(E%03d) %s", stack, e.Code(), e.Error())
	}
	return fmt.Sprintf("(E%03d) %s", e.Code(), e.Error())
}

func New[E KernelError](err E) KernelError {
	return err.withStack(debug.Stack())
}

// IsIncomplete reports whether e is a syntax error caused by the input
// ending before a declaration was closed.
func IsIncomplete(e KernelError) bool {
	s, ok := e.(NewSyntax)
	return ok && s.Incomplete
}

type Unclassified struct {
	From error
	term.Positioner
	stack []byte
}

func (e Unclassified) Error() string {
	return fmt.Sprintf("unclassified error: %v", e.From)
}
func (e Unclassified) Code() ErrCode    { return None }
func (e Unclassified) getStack() []byte { return e.stack }
func (e Unclassified) withStack(stack []byte) KernelError {
	e.stack = stack
	return e
}

type NewSyntax struct {
	term.Positioner
	Message string
	// Incomplete marks errors where the source ended mid-declaration,
	// so a prompt can ask for more input instead of failing.
	Incomplete bool
	stack      []byte
}

func (e NewSyntax) Error() string {
	return e.Message
}
func (e NewSyntax) Code() ErrCode    { return Syntax }
func (e NewSyntax) getStack() []byte { return e.stack }
func (e NewSyntax) withStack(stack []byte) KernelError {
	e.stack = stack
	return e
}

type NewUnboundVariable struct {
	term.Positioner
	Name  string
	stack []byte
}

func (e NewUnboundVariable) Code() ErrCode { return UnboundVariable }
func (e NewUnboundVariable) Error() string {
	return fmt.Sprintf("variable '%s' is not defined", e.Name)
}
func (e NewUnboundVariable) getStack() []byte { return e.stack }
func (e NewUnboundVariable) withStack(stack []byte) KernelError {
	e.stack = stack
	return e
}

type NewTypeMismatch struct {
	term.Positioner
	Expected term.Term
	Actual   term.Term
	// Because optionally names the rule that required the match, such
	// as the field or default being checked.
	Because string
	stack   []byte
}

func (e NewTypeMismatch) Error() string {
	if e.Expected == nil {
		return fmt.Sprintf("type mismatch: unexpected type '%v': %s", term.Show(e.Actual), e.Because)
	}
	msg := fmt.Sprintf("type mismatch: expected type '%v', but found a different type '%v'",
		term.Show(e.Expected), term.Show(e.Actual))
	if e.Because != "" {
		msg += ": " + e.Because
	}
	return msg
}
func (e NewTypeMismatch) Code() ErrCode    { return TypeMismatch }
func (e NewTypeMismatch) getStack() []byte { return e.stack }
func (e NewTypeMismatch) withStack(stack []byte) KernelError {
	e.stack = stack
	return e
}

type NewNotAFunction struct {
	term.Positioner
	FnType term.Term
	stack  []byte
}

func (e NewNotAFunction) Code() ErrCode { return NotAFunction }
func (e NewNotAFunction) Error() string {
	return fmt.Sprintf("cannot apply a value of type '%v': not a function", term.Show(e.FnType))
}
func (e NewNotAFunction) getStack() []byte { return e.stack }
func (e NewNotAFunction) withStack(stack []byte) KernelError {
	e.stack = stack
	return e
}

type NewDuplicateDefinition struct {
	term.Positioner
	Name  string
	stack []byte
}

func (e NewDuplicateDefinition) Code() ErrCode { return DuplicateDefinition }
func (e NewDuplicateDefinition) Error() string {
	return fmt.Sprintf("'%s' is already defined", e.Name)
}
func (e NewDuplicateDefinition) getStack() []byte { return e.stack }
func (e NewDuplicateDefinition) withStack(stack []byte) KernelError {
	e.stack = stack
	return e
}

type NewDuplicateClass struct {
	term.Positioner
	Name  string
	stack []byte
}

func (e NewDuplicateClass) Code() ErrCode { return DuplicateClass }
func (e NewDuplicateClass) Error() string {
	return fmt.Sprintf("class '%s' is already declared", e.Name)
}
func (e NewDuplicateClass) getStack() []byte { return e.stack }
func (e NewDuplicateClass) withStack(stack []byte) KernelError {
	e.stack = stack
	return e
}

type NewUnknownClass struct {
	term.Positioner
	Name  string
	stack []byte
}

func (e NewUnknownClass) Code() ErrCode { return UnknownClass }
func (e NewUnknownClass) Error() string {
	return fmt.Sprintf("class '%s' is not declared", e.Name)
}
func (e NewUnknownClass) getStack() []byte { return e.stack }
func (e NewUnknownClass) withStack(stack []byte) KernelError {
	e.stack = stack
	return e
}

type NewFieldNameCollision struct {
	term.Positioner
	Class       string
	Field       string
	FirstOrigin string
	OtherOrigin string
	stack       []byte
}

func (e NewFieldNameCollision) Code() ErrCode { return FieldNameCollision }
func (e NewFieldNameCollision) Error() string {
	if e.FirstOrigin == e.OtherOrigin {
		return fmt.Sprintf("class '%s' declares field '%s' twice", e.FirstOrigin, e.Field)
	}
	return fmt.Sprintf("class '%s' inherits field '%s' from both '%s' and '%s'",
		e.Class, e.Field, e.FirstOrigin, e.OtherOrigin)
}
func (e NewFieldNameCollision) getStack() []byte { return e.stack }
func (e NewFieldNameCollision) withStack(stack []byte) KernelError {
	e.stack = stack
	return e
}

type NewUnknownField struct {
	term.Positioner
	Class string
	Field string
	stack []byte
}

func (e NewUnknownField) Code() ErrCode { return UnknownField }
func (e NewUnknownField) Error() string {
	return fmt.Sprintf("class '%s' has no field '%s'", e.Class, e.Field)
}
func (e NewUnknownField) getStack() []byte { return e.stack }
func (e NewUnknownField) withStack(stack []byte) KernelError {
	e.stack = stack
	return e
}

type NewUnknownConstructor struct {
	term.Positioner
	Name string
	// Data is empty when the name is not a constructor of any datatype.
	Data  string
	stack []byte
}

func (e NewUnknownConstructor) Code() ErrCode { return UnknownConstructor }
func (e NewUnknownConstructor) Error() string {
	if e.Data == "" {
		return fmt.Sprintf("constructor '%s' is not defined", e.Name)
	}
	return fmt.Sprintf("'%s' is not a constructor of '%s'", e.Name, e.Data)
}
func (e NewUnknownConstructor) getStack() []byte { return e.stack }
func (e NewUnknownConstructor) withStack(stack []byte) KernelError {
	e.stack = stack
	return e
}

type NewMissingCase struct {
	term.Positioner
	Data    string
	Missing []string
	stack   []byte
}

func (e NewMissingCase) Code() ErrCode { return MissingCase }
func (e NewMissingCase) Error() string {
	return fmt.Sprintf("match on '%s' does not cover: %s", e.Data, strings.Join(e.Missing, ", "))
}
func (e NewMissingCase) getStack() []byte { return e.stack }
func (e NewMissingCase) withStack(stack []byte) KernelError {
	e.stack = stack
	return e
}

type NewNoInstance struct {
	term.Positioner
	Class   string
	Carrier term.Term
	// Missing lists the required fields no source could provide, when
	// resolution got as far as assembling one.
	Missing []string
	stack   []byte
}

func (e NewNoInstance) Code() ErrCode { return NoInstance }
func (e NewNoInstance) Error() string {
	msg := fmt.Sprintf("no instance of '%s' for carrier '%v'", e.Class, term.Show(e.Carrier))
	if len(e.Missing) > 0 {
		msg += fmt.Sprintf(" (missing fields: %s)", strings.Join(e.Missing, ", "))
	}
	return msg
}
func (e NewNoInstance) getStack() []byte { return e.stack }
func (e NewNoInstance) withStack(stack []byte) KernelError {
	e.stack = stack
	return e
}

type NewAmbiguousInstance struct {
	term.Positioner
	Class      string
	Carrier    term.Term
	Candidates []term.Range
	stack      []byte
}

func (e NewAmbiguousInstance) Code() ErrCode { return AmbiguousInstance }
func (e NewAmbiguousInstance) Error() string {
	return fmt.Sprintf("ambiguous instances of '%s' for carrier '%v': %d candidates declared",
		e.Class, term.Show(e.Carrier), len(e.Candidates))
}
func (e NewAmbiguousInstance) getStack() []byte { return e.stack }
func (e NewAmbiguousInstance) withStack(stack []byte) KernelError {
	e.stack = stack
	return e
}
