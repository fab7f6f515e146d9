// Package runtime implements the library-level entry points: the
// embedding surface a host (e.g. a concurrent-process-calculus runtime)
// uses without linking against parser/env/eval directly.
package runtime

import (
	"mettatron/env"
	"mettatron/eval"
	"mettatron/lexer"
	"mettatron/parser"
	"mettatron/value"
)

// CompileResult is `compile(source) → { ok, values }`: parse only,
// no evaluation. Diagnostics is non-empty exactly when Ok is false.
type CompileResult struct {
	Ok          bool
	Values      []value.Value
	Diagnostics []error
}

// Compile parses source and returns every top-level form, without
// evaluating any of them.
func Compile(source string) CompileResult {
	forms, errs := parseAll(source)
	return CompileResult{Ok: len(errs) == 0, Values: forms, Diagnostics: errs}
}

// Eval parses source and evaluates it against a fresh Environment,
// returning every produced result in production order.
func Eval(source string) []value.Value {
	return New().Run(source).Outputs()
}

func parseAll(source string) ([]value.Value, []error) {
	toks, lexErrs := lexer.New(source).Scan()
	if len(lexErrs) > 0 {
		return nil, lexErrs
	}
	return parser.Make(toks).Parse()
}

// State is an opaque paused-evaluator handle: pending_exprs,
// environment, and eval_outputs are all reachable through accessors
// rather than exported fields, since the environment is meant to stay
// opaque to a host that can't introspect it.
type State struct {
	evaluator *eval.Evaluator
	env       *env.Environment
	pending   []value.Value
	outputs   []value.Value
}

// New returns the empty state: `empty.run(x) ≡ state_of(x)` holds because New().Run(x) constructs the same fresh
// Environment and evaluator Eval(x) would.
func New() *State {
	return &State{evaluator: eval.New(), env: env.New()}
}

// Run parses code, appends its forms to pending_exprs, evaluates each to
// completion, and returns a new State with outputs appended. The
// receiver is left unmodified (the new State evaluates in a fork of the
// receiver's Environment): States are treated as persistent values,
// so outputs grow monotonically across state-to-state transitions rather
// than by in-place mutation.
func (s *State) Run(code string) *State {
	forms, errs := parseAll(code)
	next := &State{
		evaluator: s.evaluator,
		env:       s.env.Fork(),
		pending:   append(append([]value.Value(nil), s.pending...), forms...),
		outputs:   append([]value.Value(nil), s.outputs...),
	}
	for _, err := range errs {
		next.outputs = append(next.outputs, value.NewError(value.ErrParse, err.Error(), nil))
	}
	for _, form := range forms {
		results := next.evaluator.RunTopForm(form, next.env, eval.Background())
		next.outputs = append(next.outputs, results...)
		next.pending = next.pending[1:]
	}
	return next
}

// PendingExprs returns the not-yet-evaluated top-level forms queued on
// this state.
func (s *State) PendingExprs() []value.Value { return append([]value.Value(nil), s.pending...) }

// Outputs returns every value produced so far, in evaluation order
// (eval_outputs).
func (s *State) Outputs() []value.Value { return append([]value.Value(nil), s.outputs...) }

// Environment returns the live Environment backing this state — present
// so a Go-side caller can print or further drive it; hosts that cannot
// introspect it treat it as opaque.
func (s *State) Environment() *env.Environment { return s.env }

// ExchangeRecord is the three-field host-exchange serialization record:
// Value entries use the tagged-string representation
// value.Print already produces (`true`/`false`, decimal integers, quoted
// strings, bare atoms, parenthesized S-exprs).
type ExchangeRecord struct {
	PendingExprs []string `json:"pending_exprs"`
	Environment  []string `json:"environment"`
	EvalOutputs  []string `json:"eval_outputs"`
}

// Exchange builds the host-exchange record for s. A host that can't
// introspect the environment field treats it as opaque — here it's simply
// every currently-held fact printed in canonical form.
func (s *State) Exchange() ExchangeRecord {
	rec := ExchangeRecord{
		PendingExprs: make([]string, len(s.pending)),
		Environment:  make([]string, 0, len(s.env.GetAtoms())),
		EvalOutputs:  make([]string, len(s.outputs)),
	}
	for i, v := range s.pending {
		rec.PendingExprs[i] = value.Print(v)
	}
	for _, fact := range s.env.GetAtoms() {
		rec.Environment = append(rec.Environment, value.Print(fact))
	}
	for i, v := range s.outputs {
		rec.EvalOutputs[i] = value.Print(v)
	}
	return rec
}
