package env

import (
	"mettatron/symtab"
	"mettatron/value"
)

// Rule is a registered rewrite `(= lhs rhs)`. HasHeadSym is false
// when the LHS has no atom head — e.g. a bare variable, which lands every
// rule of that shape in the wildcard bucket instead of a
// (head, arity)-keyed bucket.
type Rule struct {
	LHS          value.Value
	RHS          value.Value
	HeadSymbolID symtab.ID
	HasHeadSym   bool
	Arity        int
	Specificity  int
	// Seq records insertion order, the final tie-break after specificity
	// when ordering rule matches.
	Seq int
}

// specificityWeight gives each Value kind its tie-break weight:
// literals < atoms < variables. Lower is more specific; the total for a
// rule's LHS is the sum over every position in its tree.
func specificityWeight(v value.Value) int {
	switch n := v.(type) {
	case value.Variable:
		return 2
	case value.Atom:
		return 1
	case value.SExpr:
		sum := 0
		for _, c := range n.Children {
			sum += specificityWeight(c)
		}
		return sum
	default: // literals: Long, Float, String, Uri, Bool, Unit, Error
		return 0
	}
}

// NewRule builds a Rule from a registered `(= lhs rhs)` form, interning the
// LHS head symbol (if any) via syms and computing the specificity score.
func NewRule(lhs, rhs value.Value, syms *symtab.Table, seq int) Rule {
	r := Rule{LHS: lhs, RHS: rhs, Specificity: specificityWeight(lhs), Seq: seq}
	if s, ok := lhs.(value.SExpr); ok {
		r.Arity = s.Arity()
		if head, ok := s.Head(); ok {
			r.HasHeadSym = true
			r.HeadSymbolID = syms.Intern(head.Name)
		}
	}
	return r
}
