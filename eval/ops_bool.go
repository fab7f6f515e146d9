package eval

import (
	"mettatron/env"
	"mettatron/value"
)

// registerBoolOps wires `and or not`. `and`/`or` are non-eager:
// they evaluate their
// operands themselves, left to right, stopping as soon as a branch's
// outcome is already decided, rather than having every operand evaluated
// up front regardless of whether a later one is needed.
func registerBoolOps(r registry) {
	r.add(Operator{Name: "and", Eager: false, Fn: func(ev *Evaluator, e *env.Environment, rawArgs []value.Value, b *Budget) []value.Value {
		return shortCircuit(ev, e, rawArgs, b, false)
	}})
	r.add(Operator{Name: "or", Eager: false, Fn: func(ev *Evaluator, e *env.Environment, rawArgs []value.Value, b *Budget) []value.Value {
		return shortCircuit(ev, e, rawArgs, b, true)
	}})
	r.add(Operator{Name: "not", Eager: true, Pure: true, Fn: func(ev *Evaluator, e *env.Environment, args []value.Value, b *Budget) []value.Value {
		if len(args) != 1 {
			return arityError("not", len(args), 1)
		}
		boolv, ok := args[0].(value.Bool)
		if !ok {
			return typeError("not", args[0], "a Bool")
		}
		return []value.Value{value.NewBool(!boolv.V)}
	}})
}

// shortCircuit evaluates rawArgs left to right. stopOn is the Bool value
// that ends evaluation early with that same value as the overall result
// (false for `and`, true for `or`); reaching the end without stopping
// yields !stopOn. Each branch produced by a non-deterministic operand is
// followed independently, while still honoring left-to-right side effects
// for any operand actually evaluated.
func shortCircuit(ev *Evaluator, e *env.Environment, rawArgs []value.Value, b *Budget, stopOn bool) []value.Value {
	if len(rawArgs) == 0 {
		return []value.Value{value.NewBool(!stopOn)}
	}
	results := ev.Eval(rawArgs[0], e, b)
	var out []value.Value
	for _, r := range results {
		switch rv := r.(type) {
		case value.Error:
			out = append(out, rv)
		case value.Bool:
			if rv.V == stopOn {
				out = append(out, value.NewBool(stopOn))
			} else {
				out = append(out, shortCircuit(ev, e, rawArgs[1:], b, stopOn)...)
			}
		default:
			out = append(out, value.NewError(value.ErrType, "and/or: expected a Bool, got "+r.Kind(), r))
		}
	}
	return out
}
