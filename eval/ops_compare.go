package eval

import (
	"mettatron/env"
	"mettatron/value"
)

// registerCompareOps wires `< <= > >= == !=`, all producing Bool.
// `==`/`!=` compare any two Values with no-coercion strict equality
// (`42` never equals `42.0`); the four ordering operators require both
// arguments to be numeric.
func registerCompareOps(r registry) {
	r.add(orderingOp("<", func(a, b float64) bool { return a < b }))
	r.add(orderingOp("<=", func(a, b float64) bool { return a <= b }))
	r.add(orderingOp(">", func(a, b float64) bool { return a > b }))
	r.add(orderingOp(">=", func(a, b float64) bool { return a >= b }))

	r.add(Operator{Name: "==", Eager: true, Pure: true, Fn: func(ev *Evaluator, e *env.Environment, args []value.Value, b *Budget) []value.Value {
		if len(args) != 2 {
			return arityError("==", len(args), 2)
		}
		return []value.Value{value.NewBool(value.Equal(args[0], args[1]))}
	}})
	r.add(Operator{Name: "!=", Eager: true, Pure: true, Fn: func(ev *Evaluator, e *env.Environment, args []value.Value, b *Budget) []value.Value {
		if len(args) != 2 {
			return arityError("!=", len(args), 2)
		}
		return []value.Value{value.NewBool(!value.Equal(args[0], args[1]))}
	}})
}

func orderingOp(name string, cmp func(a, b float64) bool) Operator {
	return Operator{
		Name:  name,
		Eager: true,
		Pure:  true,
		Fn: func(ev *Evaluator, e *env.Environment, args []value.Value, b *Budget) []value.Value {
			if len(args) != 2 {
				return arityError(name, len(args), 2)
			}
			fx, ok1 := asFloat(args[0])
			fy, ok2 := asFloat(args[1])
			if !ok1 {
				return typeError(name, args[0], "a numeric value")
			}
			if !ok2 {
				return typeError(name, args[1], "a numeric value")
			}
			return []value.Value{value.NewBool(cmp(fx, fy))}
		},
	}
}
