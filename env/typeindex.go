package env

import (
	"mettatron/mork"
	"mettatron/symtab"
	"mettatron/triepath"
)

// typeIndex lazily materializes the subtrie restricted to `(: ...)`
// facts. It's cached and invalidated by any write to the owning
// Environment's main trie — the cheapest invalidation rule that stays
// correct.
type typeIndex struct {
	cached *triepath.Trie
	dirty  bool
}

func newTypeIndex() *typeIndex {
	return &typeIndex{dirty: true}
}

func (ti *typeIndex) fork() *typeIndex {
	// The cached subtrie, if any, is itself an immutable triepath
	// snapshot, so sharing it across the fork is safe; the child simply
	// rebuilds it the next time a write marks it dirty.
	return &typeIndex{cached: ti.cached, dirty: ti.dirty}
}

func (ti *typeIndex) invalidate() {
	ti.dirty = true
}

// materialize restricts main to the byte prefix shared by every `(: atom
// type)` fact: a 3-child SExpr headed by the ":" atom. The prefix is
// computable once ":" has been interned at least once; if it never has
// (no type facts were ever added), the subtrie is simply empty.
func (ti *typeIndex) materialize(main *triepath.Trie, syms *symtab.Table) *triepath.Trie {
	if !ti.dirty && ti.cached != nil {
		return ti.cached
	}
	colonID, ok := syms.Lookup(":")
	if !ok {
		ti.cached = triepath.New()
		ti.dirty = false
		return ti.cached
	}
	prefix := typeFactPrefix(colonID)
	w := main.Writer()
	w.DescendTo(prefix)
	ti.cached = w.RestrictToSubtree()
	ti.dirty = false
	return ti.cached
}

// typeFactPrefix returns the canonical byte prefix for every `(: ...)`
// type-assertion fact: SExpr tag, arity 3, then the ":" atom's own
// encoding — matching exactly what mork.Encode produces for the head of
// any `(: atom type)` value.
func typeFactPrefix(colonID symtab.ID) []byte {
	return mork.EncodeHeadPrefix(colonID, 3)
}
