package env

import "mettatron/symtab"

// ruleKey indexes the rule buckets: either a specific
// (head_symbol_id, arity) pair, or the single wildcard bucket for rules
// whose LHS head is a variable.
type ruleKey struct {
	head     symtab.ID
	arity    int
	wildcard bool
}

func wildcardKey() ruleKey { return ruleKey{wildcard: true} }

func headArityKey(head symtab.ID, arity int) ruleKey {
	return ruleKey{head: head, arity: arity}
}

type ruleIndex struct {
	buckets *cowMap[ruleKey, []*Rule]
}

func newRuleIndex() *ruleIndex {
	return &ruleIndex{buckets: newCowMap[ruleKey, []*Rule]()}
}

func (ri *ruleIndex) fork() *ruleIndex {
	return &ruleIndex{buckets: ri.buckets.fork()}
}

// Add registers r under its (head, arity) bucket, or the wildcard bucket
// if it has no atom head. Always allocates a fresh backing slice so that
// an environment sharing the old slice (via cowMap.fork, before this
// insert forces a clone) never observes an in-place append into capacity
// it still thinks it owns.
func (ri *ruleIndex) Add(r Rule) {
	key := wildcardKey()
	if r.HasHeadSym {
		key = headArityKey(r.HeadSymbolID, r.Arity)
	}
	existing, _ := ri.buckets.get(key)
	grown := make([]*Rule, 0, len(existing)+1)
	grown = append(grown, existing...)
	grown = append(grown, &r)
	ri.buckets.set(key, grown)
}

// Query returns every rule that could possibly match an expression with
// the given head symbol and arity: the union of the specific bucket and
// the wildcard bucket. callHasHead distinguishes "no
// head atom at all" (only the wildcard bucket applies) from
// "head atom interned to id 0" — a real, valid symbol id.
func (ri *ruleIndex) Query(head symtab.ID, arity int, callHasHead bool) []*Rule {
	wildcard, _ := ri.buckets.get(wildcardKey())
	if !callHasHead {
		return append([]*Rule(nil), wildcard...)
	}
	specific, _ := ri.buckets.get(headArityKey(head, arity))
	out := make([]*Rule, 0, len(specific)+len(wildcard))
	out = append(out, specific...)
	out = append(out, wildcard...)
	return out
}

// All returns every rule across every bucket (specific and wildcard), in
// no particular order.
func (ri *ruleIndex) All() []*Rule {
	var out []*Rule
	ri.buckets.each(func(_ ruleKey, rules []*Rule) {
		out = append(out, rules...)
	})
	return out
}

func (ri *ruleIndex) Len() int {
	total := 0
	ri.buckets.each(func(_ ruleKey, rules []*Rule) {
		total += len(rules)
	})
	return total
}
