// Package env implements Environment: the atom space plus the
// indexes layered over it (rule index, lazy type subtrie, multiplicity
// map), module/tokenizer state, and fork()-based copy-on-write isolation
// for parallel sub-evaluation.
package env

import (
	"sync/atomic"

	"mettatron/bindings"
	"mettatron/mork"
	"mettatron/symtab"
	"mettatron/triepath"
	"mettatron/value"
)

// Environment owns one atom space. The zero value is not usable;
// construct with New.
type Environment struct {
	trie    *triepath.Trie
	symbols *symtab.Table

	rules          *ruleIndex
	typeIdx        *typeIndex
	multiplicities *multiplicityMap

	modules           *cowMap[string, *Environment]
	tokenizerBindings *cowMap[string, value.Value]

	currentModulePath string
	strictMode        bool

	// ruleSeq is shared across every fork of a given root environment so
	// that the insertion-order tie-break stays meaningful even
	// after forking: a rule added to a child still sorts after every rule
	// that existed at fork time.
	ruleSeq *atomic.Int64
	// cowGeneration is per-environment: it counts this handle's
	// own write operations, not a value shared across forks.
	cowGeneration atomic.Int64
}

// New constructs an empty root environment with a fresh symbol table.
func New() *Environment {
	return &Environment{
		trie:              triepath.New(),
		symbols:           symtab.New(),
		rules:             newRuleIndex(),
		typeIdx:           newTypeIndex(),
		multiplicities:    newMultiplicityMap(),
		modules:           newCowMap[string, *Environment](),
		tokenizerBindings: newCowMap[string, value.Value](),
		ruleSeq:           new(atomic.Int64),
	}
}

// Fork returns a child environment that shares every index with e until
// the child (or e) performs its first write to that index.
// The symbol table is never cloned — it's a process-wide shared interner.
func (e *Environment) Fork() *Environment {
	return &Environment{
		trie:              e.trie.Clone(),
		symbols:           e.symbols,
		rules:             e.rules.fork(),
		typeIdx:           e.typeIdx.fork(),
		multiplicities:    e.multiplicities.fork(),
		modules:           e.modules.fork(),
		tokenizerBindings: e.tokenizerBindings.fork(),
		currentModulePath: e.currentModulePath,
		strictMode:        e.strictMode,
		ruleSeq:           e.ruleSeq,
	}
}

func (e *Environment) Symbols() *symtab.Table { return e.symbols }

func (e *Environment) bumpGeneration() { e.cowGeneration.Add(1) }

// CowGeneration reports how many write operations this environment handle
// has performed since it was created or forked.
func (e *Environment) CowGeneration() int64 { return e.cowGeneration.Load() }

func (e *Environment) CurrentModulePath() string     { return e.currentModulePath }
func (e *Environment) SetCurrentModulePath(p string) { e.currentModulePath = p }

func (e *Environment) StrictMode() bool     { return e.strictMode }
func (e *Environment) SetStrictMode(b bool) { e.strictMode = b }

func factKey(fact value.Value, syms *symtab.Table) []byte {
	return mork.Encode(fact, syms, mork.NewConversionContext())
}

// AddFact stores fact in the atom space, incrementing its multiplicity
// count.
func (e *Environment) AddFact(fact value.Value) {
	key := factKey(fact, e.symbols)
	w := e.trie.Writer()
	w.DescendTo(key)
	w.SetValue()
	w.Commit()
	e.multiplicities.Increment(string(key))
	e.typeIdx.invalidate()
	e.bumpGeneration()
}

// RemoveFact decrements fact's multiplicity count, deleting the trie entry
// only once the count reaches zero. Reports
// whether fact was present before this call.
func (e *Environment) RemoveFact(fact value.Value) bool {
	key := factKey(fact, e.symbols)
	before := e.multiplicities.Count(string(key))
	if before == 0 {
		return false
	}
	remaining := e.multiplicities.Decrement(string(key))
	if remaining == 0 {
		w := e.trie.Writer()
		w.DescendTo(key)
		w.DeleteValue()
		w.Commit()
	}
	e.typeIdx.invalidate()
	e.bumpGeneration()
	return true
}

// HasFact reports whether fact has a positive multiplicity count.
func (e *Environment) HasFact(fact value.Value) bool {
	return e.trie.Has(factKey(fact, e.symbols))
}

// Multiplicity returns fact's current bag count (0 if absent).
func (e *Environment) Multiplicity(fact value.Value) int {
	return e.multiplicities.Count(string(factKey(fact, e.symbols)))
}

// GetAtoms decodes and returns every fact currently stored in the atom
// space, in the trie's byte-key order.
func (e *Environment) GetAtoms() []value.Value {
	r := e.trie.Reader()
	var out []value.Value
	for r.ToNextValue() {
		v, err := mork.Decode(r.Path(), e.symbols)
		if err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}

// AddRule registers `(= lhs rhs)` in the rule index.
func (e *Environment) AddRule(lhs, rhs value.Value) {
	seq := int(e.ruleSeq.Add(1))
	e.rules.Add(NewRule(lhs, rhs, e.symbols, seq))
	e.bumpGeneration()
}

// AddTypeFact registers `(: atom type)` both as an ordinary stored fact
// (so get-atoms/match see it) and implicitly makes it visible through the
// type subtrie the next time that's materialized.
func (e *Environment) AddTypeFact(atom, typ value.Value) {
	e.AddFact(value.NewSExpr(value.NewAtom(":"), atom, typ))
}

// TypeFacts returns every `(: atom type)` fact via the lazily materialized
// type subtrie.
func (e *Environment) TypeFacts() []value.Value {
	sub := e.typeIdx.materialize(e.trie, e.symbols)
	colonID, ok := e.symbols.Lookup(":")
	if !ok {
		return nil
	}
	// The subtrie's paths are relative to the `(:` prefix it was cut at.
	prefix := typeFactPrefix(colonID)
	r := sub.Reader()
	var out []value.Value
	for r.ToNextValue() {
		key := append(append([]byte(nil), prefix...), r.Path()...)
		v, err := mork.Decode(key, e.symbols)
		if err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}

// RuleMatch is one instantiated result of matching an expression against
// the rule index.
type RuleMatch struct {
	Rule         *Rule
	Bindings     *bindings.Bindings
	Instantiated value.Value
}

// MatchRules implements rule matching in full: look up candidate rules by
// (head, arity) plus the wildcard bucket, unify each against expr, instantiate
// the RHS under every successful binding, and order the results by
// (specificity, insertion order).
func (e *Environment) MatchRules(expr value.Value) []RuleMatch {
	head, arity, hasHead := headAndArity(expr, e.symbols)
	candidates := e.rules.Query(head, arity, hasHead)

	matches := make([]RuleMatch, 0, len(candidates))
	for _, r := range candidates {
		b, ok := bindings.Unify(r.LHS, expr, bindings.New())
		if !ok {
			continue
		}
		matches = append(matches, RuleMatch{
			Rule:         r,
			Bindings:     b,
			Instantiated: b.Resolve(r.RHS),
		})
	}
	sortRuleMatches(matches)
	return matches
}

func headAndArity(expr value.Value, syms *symtab.Table) (symtab.ID, int, bool) {
	s, ok := expr.(value.SExpr)
	if !ok {
		return 0, 0, false
	}
	head, ok := s.Head()
	if !ok {
		return 0, 0, false
	}
	id, ok := syms.Lookup(head.Name)
	if !ok {
		// The head atom was never interned, so no rule could possibly
		// be keyed under it — only the wildcard bucket applies.
		return 0, 0, false
	}
	return id, s.Arity(), true
}

func sortRuleMatches(matches []RuleMatch) {
	for i := 1; i < len(matches); i++ {
		for j := i; j > 0 && less(matches[j], matches[j-1]); j-- {
			matches[j-1], matches[j] = matches[j], matches[j-1]
		}
	}
}

func less(a, b RuleMatch) bool {
	if a.Rule.Specificity != b.Rule.Specificity {
		return a.Rule.Specificity < b.Rule.Specificity
	}
	return a.Rule.Seq < b.Rule.Seq
}

// Match implements the `match` control form: for every
// unification of pattern against a fact in e's atom space, instantiate
// template under the resulting bindings.
func (e *Environment) Match(pattern, template value.Value) []value.Value {
	var out []value.Value
	for _, fact := range e.GetAtoms() {
		b, ok := bindings.Unify(pattern, fact, bindings.New())
		if !ok {
			continue
		}
		out = append(out, b.Resolve(template))
	}
	return out
}

// BindTokenizer records a `bind!` runtime token substitution.
func (e *Environment) BindTokenizer(token string, v value.Value) {
	e.tokenizerBindings.set(token, v)
	e.bumpGeneration()
}

func (e *Environment) LookupTokenizer(token string) (value.Value, bool) {
	return e.tokenizerBindings.get(token)
}

// CacheModule records path as having been loaded into child, per
// ModuleLoader's load-once cache.
func (e *Environment) CacheModule(path string, child *Environment) {
	e.modules.set(path, child)
	e.bumpGeneration()
}

func (e *Environment) LookupModule(path string) (*Environment, bool) {
	return e.modules.get(path)
}

// Rules returns every rule currently registered, in no particular order.
// Used by the evaluator's concurrent-worker merge to diff a forked
// child's rule set against its parent's after a `{...}` worker completes.
func (e *Environment) Rules() []*Rule {
	return e.rules.All()
}

// HasRule reports whether a rule with structurally-equal LHS and RHS to r
// is already registered, used by the same merge step to avoid registering
// duplicate copies of a rule a worker didn't actually add.
func (e *Environment) HasRule(r *Rule) bool {
	for _, existing := range e.rules.All() {
		if value.Equal(existing.LHS, r.LHS) && value.Equal(existing.RHS, r.RHS) {
			return true
		}
	}
	return false
}
