package eval

import (
	"math"

	"mettatron/env"
	"mettatron/value"
)

// registerArithOps wires `+ - * / %`: Long⊗Long stays Long,
// Float⊗Float stays Float, and a mixed pair promotes to Float:
// `(+ 1 2.5)` → `3.5`, `(+ 1 2)` → `3`. All five are Eager and Pure
// (side-effect-free, safe to evaluate their operands out of order).
func registerArithOps(r registry) {
	r.add(arithOp("+", func(a, b float64) float64 { return a + b }, func(a, b int64) (int64, bool) {
		sum := a + b
		return sum, (sum >= a) == (b >= 0) // overflow check via sign of the result
	}))
	r.add(arithOp("-", func(a, b float64) float64 { return a - b }, func(a, b int64) (int64, bool) {
		diff := a - b
		return diff, (diff <= a) == (b >= 0)
	}))
	r.add(arithOp("*", func(a, b float64) float64 { return a * b }, func(a, b int64) (int64, bool) {
		if a == 0 || b == 0 {
			return 0, true
		}
		if (a == math.MinInt64 && b == -1) || (b == math.MinInt64 && a == -1) {
			// prod/b == a would pass here: MinInt64 * -1 wraps back to
			// MinInt64 and so does the check's division.
			return 0, false
		}
		prod := a * b
		return prod, prod/b == a
	}))
	r.add(Operator{Name: "/", Eager: true, Pure: true, Fn: divOp})
	r.add(Operator{Name: "%", Eager: true, Pure: true, Fn: modOp})
}

func arithOp(name string, floatFn func(a, b float64) float64, longFn func(a, b int64) (int64, bool)) Operator {
	return Operator{
		Name:  name,
		Eager: true,
		Pure:  true,
		Fn: func(ev *Evaluator, e *env.Environment, args []value.Value, b *Budget) []value.Value {
			if len(args) != 2 {
				return arityError(name, len(args), 2)
			}
			return numericBinOp(name, args[0], args[1], floatFn, longFn)
		},
	}
}

func numericBinOp(name string, x, y value.Value, floatFn func(a, b float64) float64, longFn func(a, b int64) (int64, bool)) []value.Value {
	lx, xIsLong := x.(value.Long)
	ly, yIsLong := y.(value.Long)
	if xIsLong && yIsLong {
		result, ok := longFn(lx.V, ly.V)
		if !ok {
			return []value.Value{value.NewError(value.ErrOverflow, name+": integer overflow", nil)}
		}
		return []value.Value{value.NewLong(result)}
	}
	fx, ok1 := asFloat(x)
	fy, ok2 := asFloat(y)
	if !ok1 {
		return typeError(name, x, "a numeric value")
	}
	if !ok2 {
		return typeError(name, y, "a numeric value")
	}
	return []value.Value{value.NewFloat(floatFn(fx, fy))}
}

func asFloat(v value.Value) (float64, bool) {
	switch n := v.(type) {
	case value.Long:
		return float64(n.V), true
	case value.Float:
		return n.V, true
	default:
		return 0, false
	}
}

func divOp(ev *Evaluator, e *env.Environment, args []value.Value, b *Budget) []value.Value {
	if len(args) != 2 {
		return arityError("/", len(args), 2)
	}
	lx, xIsLong := args[0].(value.Long)
	ly, yIsLong := args[1].(value.Long)
	if xIsLong && yIsLong {
		if ly.V == 0 {
			return []value.Value{value.NewError(value.ErrDivideByZero, "/: division by zero", nil)}
		}
		if lx.V == math.MinInt64 && ly.V == -1 {
			// The quotient wraps back to MinInt64 under two's complement.
			return []value.Value{value.NewError(value.ErrOverflow, "/: integer overflow", nil)}
		}
		return []value.Value{value.NewLong(lx.V / ly.V)}
	}
	fx, ok1 := asFloat(args[0])
	fy, ok2 := asFloat(args[1])
	if !ok1 {
		return typeError("/", args[0], "a numeric value")
	}
	if !ok2 {
		return typeError("/", args[1], "a numeric value")
	}
	if fy == 0 {
		return []value.Value{value.NewError(value.ErrDivideByZero, "/: division by zero", nil)}
	}
	return []value.Value{value.NewFloat(fx / fy)}
}

func modOp(ev *Evaluator, e *env.Environment, args []value.Value, b *Budget) []value.Value {
	if len(args) != 2 {
		return arityError("%", len(args), 2)
	}
	lx, xIsLong := args[0].(value.Long)
	ly, yIsLong := args[1].(value.Long)
	if xIsLong && yIsLong {
		if ly.V == 0 {
			return []value.Value{value.NewError(value.ErrDivideByZero, "%: division by zero", nil)}
		}
		return []value.Value{value.NewLong(lx.V % ly.V)}
	}
	fx, ok1 := asFloat(args[0])
	fy, ok2 := asFloat(args[1])
	if !ok1 {
		return typeError("%", args[0], "a numeric value")
	}
	if !ok2 {
		return typeError("%", args[1], "a numeric value")
	}
	if fy == 0 {
		return []value.Value{value.NewError(value.ErrDivideByZero, "%: division by zero", nil)}
	}
	return []value.Value{value.NewFloat(math.Mod(fx, fy))}
}
