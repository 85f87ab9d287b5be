package classes

import (
	"github.com/fora-lang/fora/kernel/eval"
	"github.com/fora-lang/fora/kernel/kerr"
	"github.com/fora-lang/fora/kernel/term"
)

// carrierKey canonicalizes a carrier type for bucket lookup: reduce to
// normal form, then render. Carriers are ground type names in practice;
// two carriers that differ only by bound-variable names would key apart,
// which we accept.
func (r *Registry) carrierKey(carrier term.Term) string {
	return term.Show(eval.Reduce(r, carrier))
}

// Resolve finds or synthesizes the unique instance of className for
// carrier. It never writes to the registry: the returned instance is a
// fresh value assembled from, in order of preference per field, the
// directly registered instance, the most specific ancestor instance for
// the same carrier, and the field's default. The search over classes is
// depth-first over extends, self before ancestors, declaration order
// among parents, first match wins.
//
// Two directly registered instances for the same (class, carrier) are
// always AmbiguousInstance, even when their assignments coincide: there
// is no proof the two agree. A required field no source can supply is
// NoInstance. The at range attributes diagnostics to the use site.
func (r *Registry) Resolve(className string, carrier term.Term, at term.Range) (*InstanceDecl, *kerr.Errors) {
	decl, ok := r.classes[className]
	if !ok {
		return nil, (&kerr.Errors{}).With(kerr.New(kerr.NewUnknownClass{Positioner: at, Name: className}))
	}
	carrierNF := eval.Reduce(r, carrier)

	var direct *InstanceDecl
	if bucket := r.instances[instanceKey{class: className, carrier: term.Show(carrierNF)}]; len(bucket) > 1 {
		return nil, (&kerr.Errors{}).With(ambiguous(className, carrierNF, bucket, at))
	} else if len(bucket) == 1 {
		direct = bucket[0]
	}

	inst, missing, errs := r.assemble(decl, carrierNF, direct, at)
	if errs.HasError() {
		return nil, errs
	}
	if len(missing) > 0 {
		return nil, (&kerr.Errors{}).With(kerr.New(kerr.NewNoInstance{
			Positioner: at,
			Class:      className,
			Carrier:    carrierNF,
			Missing:    missing,
		}))
	}
	return inst, nil
}

// Synthesize assembles the assignments an instance declaration would
// resolve to if it were registered, without writing to the registry.
// The declaration processor validates instances this way before
// recording them. Unlike Resolve, missing required fields are reported
// in the second result rather than as NoInstance: a partial instance is
// legal to register.
func (r *Registry) Synthesize(inst *InstanceDecl) (*InstanceDecl, []string, *kerr.Errors) {
	decl, ok := r.classes[inst.Class]
	if !ok {
		return nil, nil, (&kerr.Errors{}).With(kerr.New(kerr.NewUnknownClass{Positioner: inst.Range, Name: inst.Class}))
	}
	return r.assemble(decl, eval.Reduce(r, inst.Carrier), inst, inst.Range)
}

// HasInstance reports whether Resolve would succeed, discarding the
// diagnostics.
func (r *Registry) HasInstance(className string, carrier term.Term) bool {
	_, errs := r.Resolve(className, carrier, term.Range{})
	return !errs.HasError()
}

// assemble runs the per-field search: the direct instance first, then
// ancestor buckets depth-first, then defaults instantiated against the
// telescope built so far. Fields are emitted in telescope order.
func (r *Registry) assemble(decl *ClassDecl, carrierNF term.Term, direct *InstanceDecl, at term.Range) (*InstanceDecl, []string, *kerr.Errors) {
	effective, errs := r.effectiveFieldsOf(decl)
	if errs.HasError() {
		return nil, nil, errs
	}
	key := term.Show(carrierNF)
	order := r.linearized(decl)

	assigned := map[string]term.Term{}
	for _, f := range effective {
		for _, cls := range order {
			if cls.Name == decl.Name {
				if direct == nil {
					continue
				}
				if v, ok := direct.Field(f.Name); ok {
					assigned[f.Name] = v
					break
				}
				continue
			}
			bucket := r.instances[instanceKey{class: cls.Name, carrier: key}]
			if len(bucket) > 1 {
				return nil, nil, (&kerr.Errors{}).With(ambiguous(cls.Name, carrierNF, bucket, at))
			}
			if len(bucket) == 0 {
				continue
			}
			if v, ok := bucket[0].Field(f.Name); ok {
				assigned[f.Name] = v
				break
			}
		}
	}

	var missing []string
	fields := make([]term.FieldValue, 0, len(effective))
	telescope := []term.Sub{{Name: decl.CarrierParam, Value: carrierNF}}
	for _, f := range effective {
		v, ok := assigned[f.Name]
		if !ok && f.Default != nil {
			v = term.SubstituteAll(f.Default, telescope)
			ok = true
		}
		if !ok {
			missing = append(missing, f.Name)
			continue
		}
		fields = append(fields, term.FieldValue{Name: f.Name, Value: v})
		telescope = append(telescope, term.Sub{Name: f.Name, Value: v})
	}
	return &InstanceDecl{Range: at, Class: decl.Name, Carrier: carrierNF, Fields: fields}, missing, nil
}

func ambiguous(className string, carrier term.Term, bucket []*InstanceDecl, at term.Range) kerr.KernelError {
	candidates := make([]term.Range, len(bucket))
	for i, inst := range bucket {
		candidates[i] = inst.Range
	}
	return kerr.New(kerr.NewAmbiguousInstance{
		Positioner: at,
		Class:      className,
		Carrier:    carrier,
		Candidates: candidates,
	})
}

// linearized is the class search order for field synthesis: preorder
// depth-first over extends with diamond ancestors visited once.
func (r *Registry) linearized(decl *ClassDecl) []*ClassDecl {
	var out []*ClassDecl
	visited := map[string]bool{}
	var visit func(*ClassDecl)
	visit = func(c *ClassDecl) {
		if visited[c.Name] {
			return
		}
		visited[c.Name] = true
		out = append(out, c)
		for _, parent := range c.Extends {
			if p, ok := r.classes[parent]; ok {
				visit(p)
			}
		}
	}
	visit(decl)
	return out
}
