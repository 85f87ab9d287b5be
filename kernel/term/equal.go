package term

// AlphaEq reports whether a and b are identical up to consistent
// renaming of bound variables. Source ranges are ignored.
func AlphaEq(a, b Term) bool {
	return alphaEq(a, b, nil)
}

// boundPair tracks one binder correspondence between the two sides.
type boundPair struct {
	left, right string
}

func alphaEq(a, b Term, bound []boundPair) bool {
	switch a := a.(type) {
	case *Var:
		bv, ok := b.(*Var)
		if !ok {
			return false
		}
		// innermost binding wins on both sides
		for i := len(bound) - 1; i >= 0; i-- {
			p := bound[i]
			if p.left == a.Name || p.right == bv.Name {
				return p.left == a.Name && p.right == bv.Name
			}
		}
		return a.Name == bv.Name
	case *Sort:
		bs, ok := b.(*Sort)
		return ok && a.Kind == bs.Kind
	case *Pi:
		bp, ok := b.(*Pi)
		return ok &&
			alphaEq(a.ParamType, bp.ParamType, bound) &&
			alphaEq(a.Body, bp.Body, append(bound, boundPair{a.Param, bp.Param}))
	case *Lambda:
		bl, ok := b.(*Lambda)
		return ok &&
			alphaEq(a.ParamType, bl.ParamType, bound) &&
			alphaEq(a.Body, bl.Body, append(bound, boundPair{a.Param, bl.Param}))
	case *App:
		ba, ok := b.(*App)
		return ok && alphaEq(a.Fn, ba.Fn, bound) && alphaEq(a.Arg, ba.Arg, bound)
	case *StructLit:
		bs, ok := b.(*StructLit)
		if !ok || a.Class != bs.Class || len(a.Fields) != len(bs.Fields) {
			return false
		}
		if !alphaEq(a.Carrier, bs.Carrier, bound) {
			return false
		}
		for i, f := range a.Fields {
			if f.Name != bs.Fields[i].Name || !alphaEq(f.Value, bs.Fields[i].Value, bound) {
				return false
			}
		}
		return true
	case *Proj:
		bp, ok := b.(*Proj)
		return ok && a.Field == bp.Field && alphaEq(a.Struct, bp.Struct, bound)
	case *Match:
		bm, ok := b.(*Match)
		if !ok || len(a.Arms) != len(bm.Arms) {
			return false
		}
		if !alphaEq(a.Scrutinee, bm.Scrutinee, bound) {
			return false
		}
		for i, arm := range a.Arms {
			if arm.Ctor != bm.Arms[i].Ctor || !alphaEq(arm.Body, bm.Arms[i].Body, bound) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
