package value

// Equal reports strict value equality: same Kind, same payload, no numeric
// coercion. SExpr equality recurses
// pairwise; Variable equality compares names literally (callers that need
// alpha-equivalence should use StructurallyEquivalent instead).
func Equal(a, b Value) bool {
	if a.Kind() != b.Kind() {
		return false
	}
	switch av := a.(type) {
	case Atom:
		return av.Name == b.(Atom).Name
	case Variable:
		return av.Name == b.(Variable).Name
	case Long:
		return av.V == b.(Long).V
	case Float:
		return av.V == b.(Float).V
	case String:
		return av.V == b.(String).V
	case Uri:
		return av.V == b.(Uri).V
	case Bool:
		return av.V == b.(Bool).V
	case Unit:
		return true
	case Error:
		bv := b.(Error)
		return av.ErrKind == bv.ErrKind && av.Message == bv.Message
	case SExpr:
		bv := b.(SExpr)
		if len(av.Children) != len(bv.Children) {
			return false
		}
		for i := range av.Children {
			if !Equal(av.Children[i], bv.Children[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// StructurallyEquivalent reports whether a and b are identical up to
// consistent renaming of variables — the codec round-trip contract:
// decode(encode(v)) is structurally equivalent to v. Two independent renaming maps are threaded so that the same source
// variable must map to the same target variable everywhere it occurs, and
// vice versa (a true bijection, not just "both sides have variables").
func StructurallyEquivalent(a, b Value) bool {
	return structEq(a, b, map[string]string{}, map[string]string{})
}

func structEq(a, b Value, aToB, bToA map[string]string) bool {
	if a.Kind() != b.Kind() {
		return false
	}
	switch av := a.(type) {
	case Variable:
		bv := b.(Variable)
		mapped, seenA := aToB[av.Name]
		rev, seenB := bToA[bv.Name]
		switch {
		case !seenA && !seenB:
			aToB[av.Name] = bv.Name
			bToA[bv.Name] = av.Name
			return true
		case seenA && seenB:
			return mapped == bv.Name && rev == av.Name
		default:
			return false
		}
	case SExpr:
		bv := b.(SExpr)
		if len(av.Children) != len(bv.Children) {
			return false
		}
		for i := range av.Children {
			if !structEq(av.Children[i], bv.Children[i], aToB, bToA) {
				return false
			}
		}
		return true
	default:
		return Equal(a, b)
	}
}

// Contains performs the occurs-check walk: does
// needle (a variable) appear anywhere inside haystack?
func Contains(haystack Value, needle Variable) bool {
	switch hv := haystack.(type) {
	case Variable:
		return hv.Name == needle.Name
	case SExpr:
		for _, c := range hv.Children {
			if Contains(c, needle) {
				return true
			}
		}
		return false
	default:
		return false
	}
}
