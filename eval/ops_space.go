package eval

import (
	"mettatron/env"
	"mettatron/value"
)

// registerSpaceOps wires `new-space` and `get-atoms`:
// new-space mints a fresh, independent atom space, distinct from both the
// caller's environment and any of its ancestors, returning the synthetic
// token resolveSpace recognizes; get-atoms enumerates every fact a space
// currently holds. The remaining space-reference forms (match, add-atom,
// remove-atom, &self) are handled directly in evaluator.go, since they
// are control forms rather than plain operators.
func registerSpaceOps(r registry) {
	r.add(Operator{Name: "new-space", Eager: true, Fn: func(ev *Evaluator, e *env.Environment, args []value.Value, b *Budget) []value.Value {
		if len(args) != 0 {
			return arityError("new-space", len(args), 0)
		}
		return []value.Value{ev.spaces.new()}
	}})
	r.add(Operator{Name: "get-atoms", Eager: true, Fn: func(ev *Evaluator, e *env.Environment, args []value.Value, b *Budget) []value.Value {
		if len(args) != 1 {
			return arityError("get-atoms", len(args), 1)
		}
		space, ok := ev.resolveSpace(args[0], e)
		if !ok {
			return typeError("get-atoms", args[0], "a space reference")
		}
		return space.GetAtoms()
	}})
}
