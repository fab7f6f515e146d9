package eval

import (
	"strconv"
	"sync"
	"sync/atomic"

	"mettatron/bindings"
	"mettatron/env"
	"mettatron/module"
	"mettatron/parser"
	"mettatron/value"
)

// Evaluator is the iterative, trampolined reducer over value.Value ASTs.
// It owns no mutable evaluation state of its own beyond the static
// operator table and the space registry — all atom-space state lives in
// the env.Environment passed to Eval.
type Evaluator struct {
	ops    registry
	spaces *spaceRegistry
	pool   *workerPool
	loader *module.Loader
}

// New constructs an Evaluator with the full grounded-operator set
// registered and a bounded worker pool for parallel sub-evaluation.
func New() *Evaluator {
	ev := &Evaluator{
		ops:    newRegistry(),
		spaces: newSpaceRegistry(),
		pool:   newWorkerPool(4),
	}
	ev.loader = module.NewLoader(func(expr value.Value, e *env.Environment) []value.Value {
		return ev.RunTopForm(expr, e, Background())
	})
	return ev
}

// RunTopForm handles the bang-prefixed top form: `!` has no built-in grounded
// meaning inside Eval's ordinary dispatch (a `!` appearing nested inside a
// sub-expression is just an atom, tried against rules/grounded ops like
// any other), but every top-level form runner (State.Run and so the eval
// library entry point, the module Loader, the REPL) unwraps a `(! expr)` top form and
// surfaces expr's evaluation instead of the literal `(! expr)` SExpr, so
// that `!(double 21)` in source produces the visible value 42 rather
// than itself.
func (ev *Evaluator) RunTopForm(form value.Value, e *env.Environment, b *Budget) []value.Value {
	if s, ok := form.(value.SExpr); ok && len(s.Children) == 2 {
		if a, ok := s.Children[0].(value.Atom); ok && a.Name == "!" {
			return ev.Eval(s.Children[1], e, b)
		}
	}
	return ev.Eval(form, e, b)
}

// Eval is the top-level entry point: evaluate expr against e, returning
// every produced result in production order. b may be nil (equivalent to
// Background()).
func (ev *Evaluator) Eval(expr value.Value, e *env.Environment, b *Budget) []value.Value {
	cur := expr
	for {
		if errv, tripped := b.tripped(); tripped {
			return []value.Value{errv}
		}
		sr := ev.step(cur, e, b)
		if sr.trampoline {
			cur = sr.next
			continue
		}
		return sr.results
	}
}

// stepResult is either a further expression to reduce (the common,
// stack-safe case — a long chain of these never recurses, it loops, so
// reduction depth never translates into Go stack depth) or a finished
// result sequence.
type stepResult struct {
	trampoline bool
	next       value.Value
	results    []value.Value
}

func trampolineTo(next value.Value) stepResult { return stepResult{trampoline: true, next: next} }
func finalResults(vs ...value.Value) stepResult { return stepResult{results: vs} }
func finalSeq(vs []value.Value) stepResult      { return stepResult{results: vs} }

// step performs exactly one reduction dispatch. Branching constructs
// (multiple rule matches, non-deterministic conditions,
// concurrent children) recurse through Eval — bounded by the program's
// branching structure, not by rewrite-chain length.
func (ev *Evaluator) step(cur value.Value, e *env.Environment, b *Budget) stepResult {
	switch v := cur.(type) {
	case value.SExpr:
		return ev.stepSExpr(v, e, b)
	default:
		// Atom, Variable, Long, Float, String, Uri, Bool, Unit, Error:
		// all evaluate to themselves, except an Atom that has a live
		// `bind!` substitution.
		if a, ok := cur.(value.Atom); ok {
			if bound, ok := e.LookupTokenizer(a.Name); ok {
				return finalResults(bound)
			}
		}
		return finalResults(cur)
	}
}

func (ev *Evaluator) stepSExpr(v value.SExpr, e *env.Environment, b *Budget) stepResult {
	if len(v.Children) == 0 {
		// Unreachable from the parser (`()` parses to value.Unit), but a
		// library caller can hand-build an empty SExpr; it is a valid,
		// self-matching value.
		return finalResults(v)
	}

	head, hasHead := v.Head()
	if head.Name == parser.ConcurrentHead && hasHead {
		return finalSeq(ev.evalConcurrent(v.Children[1:], e, b))
	}
	if !hasHead {
		return ev.tryRules(v, e, b)
	}

	switch head.Name {
	case "=":
		return ev.evalDefRule(v, e)
	case ":":
		return ev.evalTypeFact(v, e)
	case "quote":
		return ev.evalQuote(v)
	case "eval":
		return ev.evalEval(v, e, b)
	case "if":
		return ev.evalIf(v, e, b)
	case "match":
		return ev.evalMatch(v, e, b)
	case "add-atom":
		return ev.evalAddAtom(v, e, b)
	case "remove-atom":
		return ev.evalRemoveAtom(v, e, b)
	case "error":
		return ev.evalError(v)
	case "catch":
		return ev.evalCatch(v, e, b)
	case "is-error":
		return ev.evalIsError(v, e, b)
	}

	if op, ok := ev.lookupOp(head.Name, e); ok {
		return finalSeq(ev.callOp(op, v.Children[1:], e, b))
	}
	return ev.tryRules(v, e, b)
}

// tryRules matches v against the rule index and continues reducing every
// instantiated RHS. A unique match trampolines
// (no recursion); zero matches leaves v irreducible; multiple matches
// branch (bounded recursion, one call per solution).
func (ev *Evaluator) tryRules(v value.Value, e *env.Environment, b *Budget) stepResult {
	matches := e.MatchRules(v)
	switch len(matches) {
	case 0:
		return finalResults(v)
	case 1:
		return trampolineTo(matches[0].Instantiated)
	default:
		var out []value.Value
		for _, m := range matches {
			out = append(out, ev.Eval(m.Instantiated, e, b)...)
		}
		return finalSeq(out)
	}
}

func (ev *Evaluator) evalDefRule(v value.SExpr, e *env.Environment) stepResult {
	if len(v.Children) != 3 {
		return finalSeq(arityError("=", len(v.Children)-1, 2))
	}
	e.AddRule(v.Children[1], v.Children[2])
	return finalResults(value.NewUnit())
}

func (ev *Evaluator) evalTypeFact(v value.SExpr, e *env.Environment) stepResult {
	if len(v.Children) != 3 {
		return finalSeq(arityError(":", len(v.Children)-1, 2))
	}
	e.AddTypeFact(v.Children[1], v.Children[2])
	return finalResults(value.NewUnit())
}

func (ev *Evaluator) evalQuote(v value.SExpr) stepResult {
	if len(v.Children) != 2 {
		return finalSeq(arityError("quote", len(v.Children)-1, 1))
	}
	return finalResults(v.Children[1])
}

func (ev *Evaluator) evalEval(v value.SExpr, e *env.Environment, b *Budget) stepResult {
	if len(v.Children) != 2 {
		return finalSeq(arityError("eval", len(v.Children)-1, 1))
	}
	inner := ev.Eval(v.Children[1], e, b)
	var out []value.Value
	for _, r := range inner {
		if isErr(r) {
			out = append(out, r)
			continue
		}
		out = append(out, ev.Eval(r, e, b)...)
	}
	return finalSeq(out)
}

func (ev *Evaluator) evalIf(v value.SExpr, e *env.Environment, b *Budget) stepResult {
	if len(v.Children) != 4 {
		return finalSeq(arityError("if", len(v.Children)-1, 3))
	}
	conds := ev.Eval(v.Children[1], e, b)
	if len(conds) == 1 {
		switch c := conds[0].(type) {
		case value.Bool:
			if c.V {
				return trampolineTo(v.Children[2])
			}
			return trampolineTo(v.Children[3])
		case value.Error:
			return finalResults(c)
		default:
			return finalResults()
		}
	}
	var out []value.Value
	for _, c := range conds {
		switch cv := c.(type) {
		case value.Bool:
			if cv.V {
				out = append(out, ev.Eval(v.Children[2], e, b)...)
			} else {
				out = append(out, ev.Eval(v.Children[3], e, b)...)
			}
		case value.Error:
			out = append(out, cv)
		}
	}
	return finalSeq(out)
}

// evalMatch implements `(match space pattern template)`.
func (ev *Evaluator) evalMatch(v value.SExpr, e *env.Environment, b *Budget) stepResult {
	if len(v.Children) != 4 {
		return finalSeq(arityError("match", len(v.Children)-1, 3))
	}
	space, ok := ev.resolveSpace(v.Children[1], e)
	if !ok {
		return finalSeq(typeError("match", v.Children[1], "a space reference"))
	}
	return finalSeq(space.Match(v.Children[2], v.Children[3]))
}

func (ev *Evaluator) evalAddAtom(v value.SExpr, e *env.Environment, b *Budget) stepResult {
	if len(v.Children) != 3 {
		return finalSeq(arityError("add-atom", len(v.Children)-1, 2))
	}
	space, ok := ev.resolveSpace(v.Children[1], e)
	if !ok {
		return finalSeq(typeError("add-atom", v.Children[1], "a space reference"))
	}
	atoms := ev.Eval(v.Children[2], e, b)
	var out []value.Value
	for _, a := range atoms {
		if isErr(a) {
			out = append(out, a)
			continue
		}
		space.AddFact(a)
		out = append(out, value.NewUnit())
	}
	return finalSeq(out)
}

func (ev *Evaluator) evalRemoveAtom(v value.SExpr, e *env.Environment, b *Budget) stepResult {
	if len(v.Children) != 3 {
		return finalSeq(arityError("remove-atom", len(v.Children)-1, 2))
	}
	space, ok := ev.resolveSpace(v.Children[1], e)
	if !ok {
		return finalSeq(typeError("remove-atom", v.Children[1], "a space reference"))
	}
	atoms := ev.Eval(v.Children[2], e, b)
	var out []value.Value
	for _, a := range atoms {
		if isErr(a) {
			out = append(out, a)
			continue
		}
		space.RemoveFact(a)
		out = append(out, value.NewUnit())
	}
	return finalSeq(out)
}

func (ev *Evaluator) evalError(v value.SExpr) stepResult {
	if len(v.Children) < 2 || len(v.Children) > 3 {
		return finalSeq(arityError("error", len(v.Children)-1, 1))
	}
	kind := value.ErrUser
	msgValue := v.Children[1]
	if len(v.Children) == 3 {
		if k, ok := v.Children[1].(value.Atom); ok {
			kind = value.ErrorKind(k.Name)
		}
		msgValue = v.Children[2]
	}
	message := value.Print(msgValue)
	if s, ok := msgValue.(value.String); ok {
		message = s.V
	}
	return finalResults(value.NewError(kind, message, msgValue))
}

// evalCatch implements catch. The 3-arg form `(catch body ($param)
// handler)` binds $param to the caught Error's message for handler's
// evaluation (a bare `$param` binds the whole Error); a parameter that is
// not a variable, such as `(msg)`, binds nothing. The 2-arg form
// `(catch body handler)` evaluates handler with no binding.
func (ev *Evaluator) evalCatch(v value.SExpr, e *env.Environment, b *Budget) stepResult {
	var bodyExpr, paramExpr, handlerExpr value.Value
	switch len(v.Children) {
	case 3:
		bodyExpr, handlerExpr = v.Children[1], v.Children[2]
	case 4:
		bodyExpr, paramExpr, handlerExpr = v.Children[1], v.Children[2], v.Children[3]
	default:
		return finalSeq(arityError("catch", len(v.Children)-1, 2))
	}

	bodyResults := ev.Eval(bodyExpr, e, b)
	var out []value.Value
	sawError := false
	for _, r := range bodyResults {
		errv, ok := r.(value.Error)
		if !ok {
			out = append(out, r)
			continue
		}
		sawError = true
		out = append(out, ev.runCatchHandler(paramExpr, handlerExpr, errv, e, b)...)
	}
	if !sawError {
		return finalSeq(bodyResults)
	}
	return finalSeq(out)
}

func (ev *Evaluator) runCatchHandler(paramExpr, handlerExpr value.Value, errv value.Error, e *env.Environment, b *Budget) []value.Value {
	if paramExpr == nil {
		return ev.Eval(handlerExpr, e, b)
	}
	bnd := bindings.New()
	switch p := paramExpr.(type) {
	case value.Variable:
		bnd.Bind(p.Name, errv)
	case value.SExpr:
		if len(p.Children) == 1 {
			if pv, ok := p.Children[0].(value.Variable); ok {
				bnd.Bind(pv.Name, value.NewString(errv.Message))
			}
		}
	}
	return ev.Eval(bnd.Resolve(handlerExpr), e, b)
}

func (ev *Evaluator) evalIsError(v value.SExpr, e *env.Environment, b *Budget) stepResult {
	if len(v.Children) != 2 {
		return finalSeq(arityError("is-error", len(v.Children)-1, 1))
	}
	results := ev.Eval(v.Children[1], e, b)
	out := make([]value.Value, len(results))
	for i, r := range results {
		out[i] = value.NewBool(isErr(r))
	}
	return finalSeq(out)
}

func isErr(v value.Value) bool {
	_, ok := v.(value.Error)
	return ok
}

// evalConcurrent implements the concurrent brace form: fork an isolated
// environment per child, evaluate children concurrently (bounded by the
// worker pool),
// and merge every worker's atom-space writes back into e by summing
// multiplicities (bag semantics): each worker's trie delta is unioned
// into the parent.
func (ev *Evaluator) evalConcurrent(children []value.Value, e *env.Environment, b *Budget) []value.Value {
	type outcome struct {
		results []value.Value
		child   *env.Environment
	}
	outcomes := make([]outcome, len(children))
	ev.pool.run(len(children), func(i int) {
		child := e.Fork()
		outcomes[i] = outcome{results: ev.Eval(children[i], child, b), child: child}
	})

	// Every worker forked from e's pre-run state, so each child's delta is
	// measured against that shared baseline — not against e as earlier
	// workers' merges land. Two workers adding the same fact must sum to
	// multiplicity 2, not collapse into the first worker's copy.
	base := e.Fork()
	var merged []value.Value
	for _, o := range outcomes {
		merged = append(merged, o.results...)
		mergeForkedWrites(e, base, o.child)
	}
	return merged
}

// mergeForkedWrites implements the bag-semantic fact merge and the rule
// set union, comparing child's full atom/rule set against the fork-time
// baseline for facts (so multiplicities sum across workers) and against
// the live parent for rules (so the same rule added twice dedups).
func mergeForkedWrites(parent, base, child *env.Environment) {
	for _, fact := range child.GetAtoms() {
		delta := child.Multiplicity(fact) - base.Multiplicity(fact)
		for i := 0; i < delta; i++ {
			parent.AddFact(fact)
		}
	}
	for _, r := range child.Rules() {
		if !parent.HasRule(r) {
			parent.AddRule(r.LHS, r.RHS)
		}
	}
}

// spaceRegistry backs `new-space`: each call mints a fresh, independent
// Environment (not derived from the caller's atom space) and
// returns a synthetic Atom token that resolveSpace can look back up.
type spaceRegistry struct {
	mu      sync.Mutex
	spaces  map[string]*env.Environment
	counter atomic.Int64
}

func newSpaceRegistry() *spaceRegistry {
	return &spaceRegistry{spaces: make(map[string]*env.Environment)}
}

func (sr *spaceRegistry) new() value.Atom {
	id := sr.counter.Add(1)
	name := "&space" + strconv.FormatInt(id, 10)
	sr.mu.Lock()
	sr.spaces[name] = env.New()
	sr.mu.Unlock()
	return value.NewAtom(name)
}

func (sr *spaceRegistry) lookup(name string) (*env.Environment, bool) {
	sr.mu.Lock()
	defer sr.mu.Unlock()
	e, ok := sr.spaces[name]
	return e, ok
}

// resolveSpace implements the space-reference argument shared by `match`,
// `add-atom` and `remove-atom`: `&self` is always the caller's own
// environment (it lexes as a `&`-sigil Variable, so a Variable's name is
// resolved the same way as an Atom's); any other name is looked up in the
// space registry
// (populated by `new-space`) or, failing that, the caller's tokenizer
// bindings (so a space bound to a name via `bind!` also resolves). The
// tokenizer fallback follows atom-to-atom chains a bounded number of
// hops, so a `bind!` cycle fails the resolution instead of spinning.
func (ev *Evaluator) resolveSpace(ref value.Value, e *env.Environment) (*env.Environment, bool) {
	var name string
	switch r := ref.(type) {
	case value.Atom:
		name = r.Name
	case value.Variable:
		name = r.Name
	default:
		return nil, false
	}
	for hops := 0; hops < 8; hops++ {
		if name == "&self" {
			return e, true
		}
		if sp, ok := ev.spaces.lookup(name); ok {
			return sp, true
		}
		bound, ok := e.LookupTokenizer(name)
		if !ok {
			return nil, false
		}
		ba, ok := bound.(value.Atom)
		if !ok || ba.Name == name {
			return nil, false
		}
		name = ba.Name
	}
	return nil, false
}
