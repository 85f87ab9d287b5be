// Package classes keeps the process-wide catalogue of declarations: datatypes,
// definitions, axioms, class signatures with their extends edges, and
// registered instances. Declarations accumulate monotonically and are never
// overwritten; the registry has a single writer (the declaration processor)
// and is read by the checker and the resolver.
package classes

import (
	"github.com/fora-lang/fora/kernel/kerr"
	"github.com/fora-lang/fora/kernel/term"
)

// Field is one declared field of a class: its type, and optionally a default
// body. Both are expressed against the class telescope — the carrier
// parameter and every earlier effective field are in scope as free variables.
type Field struct {
	term.Range
	Name string
	Type term.Term
	// Default is nil for required fields. Default bodies are validated
	// against the concrete carrier at instance registration, not here:
	// a proof default such as rfl only holds once the carrier computes.
	Default term.Term
}

// ClassDecl is a class signature: a single carrier parameter, parent classes,
// and the fields the class itself declares (not the inherited ones).
type ClassDecl struct {
	term.Range
	Name         string
	CarrierParam string
	Extends      []string
	Fields       []Field
}

// EffectiveField is a field collected from the extension graph, tagged with
// the class that declared it. Its Type and Default are rewritten to the
// carrier parameter of the class the flattening was requested for.
type EffectiveField struct {
	Origin string
	Field
}

// Required reports whether the field must be assigned for an instance to be
// complete.
func (f EffectiveField) Required() bool { return f.Default == nil }

// DataDecl declares a datatype with nullary constructors.
type DataDecl struct {
	term.Range
	Name  string
	Ctors []string
}

// InstanceDecl binds a class and a concrete carrier to field assignments.
// A registered instance may be partial: resolution completes it from
// ancestor instances and defaults.
type InstanceDecl struct {
	term.Range
	Class   string
	Carrier term.Term
	Fields  []term.FieldValue
}

// Field returns the assignment for name, when the instance carries one.
func (i *InstanceDecl) Field(name string) (term.Term, bool) {
	for _, f := range i.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

type defDecl struct {
	Name string
	Type term.Term
	Body term.Term
}

type axiomDecl struct {
	Name string
	Type term.Term
}

type instanceKey struct {
	class   string
	carrier string
}

type nameKind uint8

const (
	kindData nameKind = iota
	kindCtor
	kindDef
	kindAxiom
	kindClass
)

// Registry is the in-memory environment, rebuilt each run from the
// declaration sequence. It is not safe for concurrent mutation: declarations
// are processed strictly in order by one writer, and a concurrent host must
// serialize registration before letting resolvers read.
type Registry struct {
	names map[string]nameKind

	datas    map[string]*DataDecl
	ctorData map[string]string
	defs     map[string]*defDecl
	axioms   map[string]*axiomDecl
	classes  map[string]*ClassDecl

	// instance buckets are append-only; a second registration for the same
	// key is kept and surfaces as AmbiguousInstance at resolution
	instances map[instanceKey][]*InstanceDecl
}

func NewRegistry() *Registry {
	return &Registry{
		names:     map[string]nameKind{},
		datas:     map[string]*DataDecl{},
		ctorData:  map[string]string{},
		defs:      map[string]*defDecl{},
		axioms:    map[string]*axiomDecl{},
		classes:   map[string]*ClassDecl{},
		instances: map[instanceKey][]*InstanceDecl{},
	}
}

// DeclareData records a datatype and its constructors.
func (r *Registry) DeclareData(decl *DataDecl) *kerr.Errors {
	if _, taken := r.names[decl.Name]; taken {
		return (&kerr.Errors{}).With(kerr.New(kerr.NewDuplicateDefinition{Positioner: decl.Range, Name: decl.Name}))
	}
	var errs *kerr.Errors
	seen := map[string]bool{decl.Name: true}
	for _, ctor := range decl.Ctors {
		if _, taken := r.names[ctor]; taken || seen[ctor] {
			errs = errs.With(kerr.New(kerr.NewDuplicateDefinition{Positioner: decl.Range, Name: ctor}))
		}
		seen[ctor] = true
	}
	if errs.HasError() {
		return errs
	}
	r.names[decl.Name] = kindData
	r.datas[decl.Name] = decl
	for _, ctor := range decl.Ctors {
		r.names[ctor] = kindCtor
		r.ctorData[ctor] = decl.Name
	}
	return nil
}

// DeclareAxiom records a name with a type and no body.
func (r *Registry) DeclareAxiom(name string, ty term.Term, at term.Range) *kerr.Errors {
	if _, taken := r.names[name]; taken {
		return (&kerr.Errors{}).With(kerr.New(kerr.NewDuplicateDefinition{Positioner: at, Name: name}))
	}
	r.names[name] = kindAxiom
	r.axioms[name] = &axiomDecl{Name: name, Type: ty}
	return nil
}

// DeclareDef records a definition with a type and an unfoldable body. Bodies
// can only mention earlier declarations, which is what makes unfolding
// terminate.
func (r *Registry) DeclareDef(name string, ty term.Term, body term.Term, at term.Range) *kerr.Errors {
	if _, taken := r.names[name]; taken {
		return (&kerr.Errors{}).With(kerr.New(kerr.NewDuplicateDefinition{Positioner: at, Name: name}))
	}
	r.names[name] = kindDef
	r.defs[name] = &defDecl{Name: name, Type: ty, Body: body}
	return nil
}

// DeclareClass records a class signature. Parents must already be declared,
// and the flattened field set is walked eagerly so a diamond collision
// surfaces here rather than at first resolution.
func (r *Registry) DeclareClass(decl *ClassDecl) *kerr.Errors {
	if _, taken := r.names[decl.Name]; taken {
		return (&kerr.Errors{}).With(kerr.New(kerr.NewDuplicateClass{Positioner: decl.Range, Name: decl.Name}))
	}
	var errs *kerr.Errors
	for _, parent := range decl.Extends {
		if _, ok := r.classes[parent]; !ok {
			errs = errs.With(kerr.New(kerr.NewUnknownClass{Positioner: decl.Range, Name: parent}))
		}
	}
	if errs.HasError() {
		return errs
	}
	if _, errs := r.effectiveFieldsOf(decl); errs.HasError() {
		return errs
	}
	r.names[decl.Name] = kindClass
	r.classes[decl.Name] = decl
	return nil
}

// DeclareInstance appends to the (class, carrier) bucket. Assignments must
// name effective fields of the class; completeness is not required here,
// since resolution may fill the rest from ancestors and defaults.
func (r *Registry) DeclareInstance(inst *InstanceDecl) *kerr.Errors {
	decl, ok := r.classes[inst.Class]
	if !ok {
		return (&kerr.Errors{}).With(kerr.New(kerr.NewUnknownClass{Positioner: inst.Range, Name: inst.Class}))
	}
	effective, errs := r.effectiveFieldsOf(decl)
	if errs.HasError() {
		return errs
	}
	known := map[string]bool{}
	for _, f := range effective {
		known[f.Name] = true
	}
	for _, f := range inst.Fields {
		if !known[f.Name] {
			errs = errs.With(kerr.New(kerr.NewUnknownField{Positioner: inst.Range, Class: inst.Class, Field: f.Name}))
		}
	}
	if errs.HasError() {
		return errs
	}
	key := instanceKey{class: inst.Class, carrier: r.carrierKey(inst.Carrier)}
	r.instances[key] = append(r.instances[key], inst)
	return nil
}

// Class returns the declaration for name.
func (r *Registry) Class(name string) (*ClassDecl, bool) {
	c, ok := r.classes[name]
	return c, ok
}

// Data returns the datatype declaration for name.
func (r *Registry) Data(name string) (*DataDecl, bool) {
	d, ok := r.datas[name]
	return d, ok
}

// DataOfCtor returns the datatype a constructor belongs to.
func (r *Registry) DataOfCtor(ctor string) (string, bool) {
	d, ok := r.ctorData[ctor]
	return d, ok
}

// IsDeclared reports whether name is bound to any global declaration.
func (r *Registry) IsDeclared(name string) bool {
	_, ok := r.names[name]
	return ok
}

// DefBody implements eval.Globals: only defs unfold.
func (r *Registry) DefBody(name string) (term.Term, bool) {
	if d, ok := r.defs[name]; ok {
		return d.Body, true
	}
	return nil, false
}

// IsConstructor implements eval.Globals.
func (r *Registry) IsConstructor(name string) bool {
	_, ok := r.ctorData[name]
	return ok
}

// TypeOfGlobal returns the declared type of a global name: a datatype is a
// Type, a constructor has its datatype as type, a class is Type -> Type, and
// defs and axioms carry their declared types.
func (r *Registry) TypeOfGlobal(name string) (term.Term, bool) {
	switch r.names[name] {
	case kindData:
		if _, ok := r.datas[name]; ok {
			return &term.Sort{Kind: term.SortType}, true
		}
	case kindCtor:
		if data, ok := r.ctorData[name]; ok {
			return &term.Var{Name: data}, true
		}
	case kindDef:
		if d, ok := r.defs[name]; ok {
			return d.Type, true
		}
	case kindAxiom:
		if a, ok := r.axioms[name]; ok {
			return a.Type, true
		}
	case kindClass:
		if _, ok := r.classes[name]; ok {
			return term.Arrow(&term.Sort{Kind: term.SortType}, &term.Sort{Kind: term.SortType}), true
		}
	}
	return nil, false
}

// EffectiveFields flattens the extension graph of a declared class:
// depth-first, ancestors before self, in declaration order, each origin
// class contributing its fields exactly once. The result is in telescope
// order, with types and defaults rewritten to the class's own carrier
// parameter.
func (r *Registry) EffectiveFields(className string) ([]EffectiveField, *kerr.Errors) {
	decl, ok := r.classes[className]
	if !ok {
		return nil, (&kerr.Errors{}).With(kerr.New(kerr.NewUnknownClass{Positioner: term.Range{}, Name: className}))
	}
	return r.effectiveFieldsOf(decl)
}

// EffectiveFieldsOf flattens a declaration that need not be recorded
// yet. Validation of a candidate class uses this before DeclareClass.
func (r *Registry) EffectiveFieldsOf(decl *ClassDecl) ([]EffectiveField, *kerr.Errors) {
	return r.effectiveFieldsOf(decl)
}

// effectiveFieldsOf also serves DeclareClass, which needs to flatten a
// candidate before it is recorded.
func (r *Registry) effectiveFieldsOf(decl *ClassDecl) ([]EffectiveField, *kerr.Errors) {
	c := fieldCollector{
		registry: r,
		root:     decl,
		visited:  map[string]bool{},
		origins:  map[string]string{},
	}
	c.visit(decl)
	return c.fields, c.errs
}

type fieldCollector struct {
	registry *Registry
	root     *ClassDecl
	visited  map[string]bool
	origins  map[string]string // field name -> origin class
	fields   []EffectiveField
	errs     *kerr.Errors
}

func (c *fieldCollector) visit(decl *ClassDecl) {
	if c.visited[decl.Name] {
		// second path of a diamond: the origin's fields are already in
		return
	}
	c.visited[decl.Name] = true
	for _, parent := range decl.Extends {
		if p, ok := c.registry.classes[parent]; ok {
			c.visit(p)
		}
	}
	for _, f := range decl.Fields {
		if origin, collides := c.origins[f.Name]; collides {
			c.errs = c.errs.With(kerr.New(kerr.NewFieldNameCollision{
				Positioner:  f.Range,
				Class:       c.root.Name,
				Field:       f.Name,
				FirstOrigin: origin,
				OtherOrigin: decl.Name,
			}))
			continue
		}
		c.origins[f.Name] = decl.Name
		c.fields = append(c.fields, EffectiveField{Origin: decl.Name, Field: c.rebased(decl, f)})
	}
}

// rebased rewrites a field's type and default from the declaring class's
// carrier parameter to the root's, so the flattened telescope is uniform.
func (c *fieldCollector) rebased(decl *ClassDecl, f Field) Field {
	if decl.CarrierParam == c.root.CarrierParam {
		return f
	}
	carrier := &term.Var{Name: c.root.CarrierParam}
	out := f
	out.Type = term.Substitute(f.Type, decl.CarrierParam, carrier)
	if f.Default != nil {
		out.Default = term.Substitute(f.Default, decl.CarrierParam, carrier)
	}
	return out
}
