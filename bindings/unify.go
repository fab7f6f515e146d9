package bindings

import "mettatron/value"

// Unify implements pattern/term unification, threading bindings
// left-to-right through SExpr children and applying the occurs-check on
// every new variable binding. The wildcard variable `_` never gets a
// stored binding — each occurrence is a syntactically distinct
// variable, and the simplest way to honor that is
// to let it match anything without ever recording what it matched.
func Unify(pattern, term value.Value, b *Bindings) (*Bindings, bool) {
	if p, ok := pattern.(value.Variable); ok {
		return unifyVariable(p, term, b)
	}
	// Variable ↔ anything must succeed regardless of which side of the
	// call it's written on; once pattern is confirmed non-Variable,
	// check term next before dispatching on pattern's own kind.
	if t, ok := term.(value.Variable); ok {
		return unifyVariable(t, pattern, b)
	}

	switch p := pattern.(type) {
	case value.Atom:
		t, ok := term.(value.Atom)
		return b, ok && t.Name == p.Name

	case value.Long:
		t, ok := term.(value.Long)
		return b, ok && t.V == p.V

	case value.Float:
		t, ok := term.(value.Float)
		return b, ok && t.V == p.V

	case value.String:
		t, ok := term.(value.String)
		return b, ok && t.V == p.V

	case value.Uri:
		t, ok := term.(value.Uri)
		return b, ok && t.V == p.V

	case value.Bool:
		t, ok := term.(value.Bool)
		return b, ok && t.V == p.V

	case value.Unit:
		_, ok := term.(value.Unit)
		return b, ok

	case value.SExpr:
		t, ok := term.(value.SExpr)
		if !ok || len(t.Children) != len(p.Children) {
			return b, false
		}
		cur := b
		for i := range p.Children {
			next, ok := Unify(p.Children[i], t.Children[i], cur)
			if !ok {
				return b, false
			}
			cur = next
		}
		return cur, true

	default:
		return b, false
	}
}

func unifyVariable(v value.Variable, term value.Value, b *Bindings) (*Bindings, bool) {
	if v.IsWildcard() {
		return b, true
	}
	if t, ok := term.(value.Variable); ok && t.Name == v.Name {
		// A variable trivially unifies with itself; binding it to
		// itself would make the occurs-check reject it.
		return b, true
	}
	if existing, ok := b.Get(v.Name); ok {
		return Unify(existing, term, b)
	}
	clone := b.Clone()
	if !clone.Bind(v.Name, term) {
		return nil, false
	}
	return clone, true
}

// UnifySet runs Unify starting from an empty Bindings and wraps the
// outcome as a Set: Empty on failure, Single on success. Grounded
// operators with custom match semantics that can produce several
// solutions build a Multi Set directly instead of calling this helper.
func UnifySet(pattern, term value.Value) Set {
	result, ok := Unify(pattern, term, New())
	if !ok {
		return Empty()
	}
	return Single(result)
}
