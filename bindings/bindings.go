// Package bindings implements the substitution maps produced by
// unification: Bindings is an ordered variable→Value map with
// an occurs-check invariant, and Set is the Empty|Single|Multi
// discriminant that avoids allocating a slice for the overwhelmingly
// common single-solution case.
package bindings

import "mettatron/value"

// Bindings is an ordered substitution: insertion order is preserved
// (Names reports variables in first-bound order) alongside O(1) lookup.
type Bindings struct {
	order []string
	vals  map[string]value.Value
}

func New() *Bindings {
	return &Bindings{vals: make(map[string]value.Value)}
}

// Get returns the Value bound to name, if any.
func (b *Bindings) Get(name string) (value.Value, bool) {
	v, ok := b.vals[name]
	return v, ok
}

// Names returns variable names in the order they were first bound.
func (b *Bindings) Names() []string {
	out := make([]string, len(b.order))
	copy(out, b.order)
	return out
}

// Len reports how many variables are bound.
func (b *Bindings) Len() int { return len(b.order) }

// Bind adds name→v, enforcing the occurs-check invariant: v must not, after resolving through the bindings already
// present, contain a reference back to name. Returns false (and leaves b
// unchanged) on an occurs-check violation.
func (b *Bindings) Bind(name string, v value.Value) bool {
	resolved := b.Resolve(v)
	if value.Contains(resolved, value.NewVariable(name)) {
		return false
	}
	if _, exists := b.vals[name]; !exists {
		b.order = append(b.order, name)
	}
	b.vals[name] = v
	return true
}

// Resolve recursively substitutes every bound variable in v, repeating
// until reaching a fixed point or a variable with no binding. A bounded
// depth-first walk rather than following a reference cycle directly.
func (b *Bindings) Resolve(v value.Value) value.Value {
	return b.resolveDepth(v, len(b.order)+1)
}

func (b *Bindings) resolveDepth(v value.Value, fuel int) value.Value {
	if fuel <= 0 {
		return v
	}
	switch n := v.(type) {
	case value.Variable:
		bound, ok := b.vals[n.Name]
		if !ok {
			return v
		}
		return b.resolveDepth(bound, fuel-1)
	case value.SExpr:
		children := make([]value.Value, len(n.Children))
		for i, c := range n.Children {
			children[i] = b.resolveDepth(c, fuel)
		}
		return value.NewSExpr(children...)
	default:
		return v
	}
}

// Clone returns an independent copy, used when a caller needs to try a
// speculative extension without mutating the bindings a sibling branch of
// unification is also building on.
func (b *Bindings) Clone() *Bindings {
	clone := &Bindings{
		order: append([]string(nil), b.order...),
		vals:  make(map[string]value.Value, len(b.vals)),
	}
	for k, v := range b.vals {
		clone.vals[k] = v
	}
	return clone
}

// Set is the Empty|Single|Multi discriminant over a sequence of Bindings
// solutions.
type Set struct {
	solutions []*Bindings
}

// Empty returns a Set with zero solutions — unification failed.
func Empty() Set { return Set{} }

// Single returns a Set wrapping exactly one solution.
func Single(b *Bindings) Set { return Set{solutions: []*Bindings{b}} }

// Multi returns a Set wrapping several solutions (non-deterministic
// unification, e.g. matching against a bag with duplicate facts).
func Multi(bs []*Bindings) Set { return Set{solutions: bs} }

// IsEmpty reports whether the set has no solutions.
func (s Set) IsEmpty() bool { return len(s.solutions) == 0 }

// Solutions returns every solution in the set, in production order.
func (s Set) Solutions() []*Bindings { return s.solutions }

// Len reports how many solutions the set holds.
func (s Set) Len() int { return len(s.solutions) }
