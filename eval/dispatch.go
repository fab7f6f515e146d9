package eval

import (
	"strconv"

	"mettatron/env"
	"mettatron/value"
)

// OperatorFunc implements one grounded operator: it receives the
// already-processed argument list (evaluated if the Operator is Eager, raw
// AST otherwise) and returns the operator's result sequence.
type OperatorFunc func(ev *Evaluator, e *env.Environment, args []value.Value, b *Budget) []value.Value

// Operator is one entry in the grounded-operator dispatch table.
type Operator struct {
	Name string
	// Eager: arguments are evaluated (with normal cartesian-product
	// branching over non-deterministic sub-results) before Fn is called.
	// Non-eager operators receive the raw, unevaluated argument ASTs and
	// are responsible for evaluating whichever of them they need — this is
	// how and/or-like short-circuiting forms and quoting-adjacent forms
	// opt into normal-order evaluation.
	Eager bool
	// Pure marks an Eager operator's arguments as safe to evaluate out of
	// order. Only consulted when Eager is true and there are at
	// least 4 arguments.
	Pure bool
	// ErrorAware operators see Error values in their evaluated arguments
	// directly instead of having evaluation short-circuited to the first
	// Error.
	ErrorAware bool
	Fn         OperatorFunc
}

// registry is the static grounded-operator dispatch table, built once by
// New and never mutated afterwards. Runtime extension goes through a
// second structure instead: env.Environment's own tokenizerBindings,
// populated by `bind!` and consulted by Evaluator.step's atom lookup.
type registry map[string]Operator

func newRegistry() registry {
	r := make(registry)
	registerArithOps(r)
	registerCompareOps(r)
	registerBoolOps(r)
	registerListOps(r)
	registerStringOps(r)
	registerMetaOps(r)
	registerSpaceOps(r)
	registerTypeOps(r)
	registerModuleOps(r)
	return r
}

func (r registry) add(op Operator) {
	r[op.Name] = op
}

// lookupOp resolves name against the static grounded-operator table.
// There is no host-function registration surface to extend at runtime
// (nothing outside the process for `bind!` to point at); `bind!` instead
// populates env.Environment's tokenizerBindings for plain value and
// space-reference substitution.
func (ev *Evaluator) lookupOp(name string, e *env.Environment) (Operator, bool) {
	op, ok := ev.ops[name]
	return op, ok
}

// arityError builds the Error value a grounded operator returns when its
// argument count doesn't match what it expects.
func arityError(opName string, got, want int) []value.Value {
	return []value.Value{value.NewError(
		value.ErrArity,
		opName+": expected "+strconv.Itoa(want)+" argument(s), got "+strconv.Itoa(got),
		nil,
	)}
}

func typeError(opName string, offender value.Value, want string) []value.Value {
	return []value.Value{value.NewError(
		value.ErrType,
		opName+": expected "+want+", got "+offender.Kind(),
		offender,
	)}
}
