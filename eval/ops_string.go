package eval

import (
	"strings"

	"mettatron/env"
	"mettatron/value"
)

// registerStringOps wires `repr format-args`. `repr` renders any
// Value as its canonical source text; `format-args` substitutes each `{}`
// placeholder in a template String, left to right, with the repr of the
// corresponding extra argument.
func registerStringOps(r registry) {
	r.add(Operator{Name: "repr", Eager: true, Pure: true, Fn: func(ev *Evaluator, e *env.Environment, args []value.Value, b *Budget) []value.Value {
		if len(args) != 1 {
			return arityError("repr", len(args), 1)
		}
		return []value.Value{value.NewString(reprOf(args[0]))}
	}})
	r.add(Operator{Name: "format-args", Eager: true, Fn: func(ev *Evaluator, e *env.Environment, args []value.Value, b *Budget) []value.Value {
		if len(args) < 1 {
			return arityError("format-args", len(args), 1)
		}
		tmpl, ok := args[0].(value.String)
		if !ok {
			return typeError("format-args", args[0], "a String template")
		}
		return []value.Value{value.NewString(formatArgs(tmpl.V, args[1:]))}
	}})
}

func reprOf(v value.Value) string {
	if s, ok := v.(value.String); ok {
		return s.V
	}
	return value.Print(v)
}

func formatArgs(tmpl string, args []value.Value) string {
	var b strings.Builder
	i := 0
	for {
		idx := strings.Index(tmpl, "{}")
		if idx < 0 || i >= len(args) {
			b.WriteString(tmpl)
			break
		}
		b.WriteString(tmpl[:idx])
		b.WriteString(reprOf(args[i]))
		tmpl = tmpl[idx+2:]
		i++
	}
	return b.String()
}
