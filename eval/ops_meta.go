package eval

import (
	"fmt"
	"os"
	"strings"

	"mettatron/env"
	"mettatron/value"
)

// registerMetaOps wires the remaining grounded operators that don't
// fit the arithmetic/comparison/list/string/space/type/module groupings:
// `get-metatype nop empty` and the I/O abstractions `println! trace!`,
// plus `bind!`.
func registerMetaOps(r registry) {
	r.add(Operator{Name: "get-metatype", Eager: true, Pure: true, Fn: func(ev *Evaluator, e *env.Environment, args []value.Value, b *Budget) []value.Value {
		if len(args) != 1 {
			return arityError("get-metatype", len(args), 1)
		}
		return []value.Value{value.NewAtom(metatypeOf(args[0]))}
	}})
	r.add(Operator{Name: "nop", Eager: true, Fn: func(ev *Evaluator, e *env.Environment, args []value.Value, b *Budget) []value.Value {
		return []value.Value{value.NewUnit()}
	}})
	r.add(Operator{Name: "empty", Eager: false, Fn: func(ev *Evaluator, e *env.Environment, args []value.Value, b *Budget) []value.Value {
		return nil
	}})
	r.add(Operator{Name: "println!", Eager: true, Fn: func(ev *Evaluator, e *env.Environment, args []value.Value, b *Budget) []value.Value {
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = reprOf(a)
		}
		fmt.Println(strings.Join(parts, " "))
		return []value.Value{value.NewUnit()}
	}})
	r.add(Operator{Name: "trace!", Eager: true, Fn: func(ev *Evaluator, e *env.Environment, args []value.Value, b *Budget) []value.Value {
		if len(args) == 0 {
			return arityError("trace!", 0, 1)
		}
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = reprOf(a)
		}
		fmt.Fprintln(os.Stderr, strings.Join(parts, " "))
		return []value.Value{args[len(args)-1]}
	}})
	r.add(Operator{Name: "bind!", Eager: false, Fn: bindOp})
}

func metatypeOf(v value.Value) string {
	switch v.(type) {
	case value.Atom:
		return "Symbol"
	case value.Variable:
		return "Variable"
	case value.SExpr:
		return "Expression"
	default:
		return "Grounded"
	}
}

// bindOp implements `(bind! token value)`: registers a runtime
// tokenizer substitution so later occurrences of the bare atom `token`
// evaluate to value. token must be an Atom; a `&name` token lexes as a
// Variable and is rejected with a Type error.
// Non-eager because the first argument names the token rather than being
// evaluated.
func bindOp(ev *Evaluator, e *env.Environment, rawArgs []value.Value, b *Budget) []value.Value {
	if len(rawArgs) != 2 {
		return arityError("bind!", len(rawArgs), 2)
	}
	tok, ok := rawArgs[0].(value.Atom)
	if !ok {
		return typeError("bind!", rawArgs[0], "an Atom token")
	}
	results := ev.Eval(rawArgs[1], e, b)
	var out []value.Value
	for _, v := range results {
		if isErr(v) {
			out = append(out, v)
			continue
		}
		e.BindTokenizer(tok.Name, v)
		out = append(out, value.NewUnit())
	}
	return out
}
