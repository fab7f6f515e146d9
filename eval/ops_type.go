package eval

import (
	"mettatron/bindings"
	"mettatron/env"
	"mettatron/value"
)

// undefinedType is MeTTa's conventional stand-in for "no declared type".
const undefinedType = "%Undefined%"

// registerTypeOps wires `get-type check-type`. `(: atom type)`
// facts themselves are registered through the `:` control form in
// evaluator.go; these two operators only ever read the type subtrie
// env.TypeFacts exposes.
func registerTypeOps(r registry) {
	r.add(Operator{Name: "get-type", Eager: true, Pure: true, Fn: func(ev *Evaluator, e *env.Environment, args []value.Value, b *Budget) []value.Value {
		if len(args) != 1 {
			return arityError("get-type", len(args), 1)
		}
		types := typesOf(e, args[0])
		if len(types) == 0 {
			return []value.Value{value.NewAtom(undefinedType)}
		}
		return types
	}})
	r.add(Operator{Name: "check-type", Eager: true, Pure: true, Fn: func(ev *Evaluator, e *env.Environment, args []value.Value, b *Budget) []value.Value {
		if len(args) != 2 {
			return arityError("check-type", len(args), 2)
		}
		for _, t := range typesOf(e, args[0]) {
			if value.Equal(t, args[1]) {
				return []value.Value{value.NewBool(true)}
			}
		}
		return []value.Value{value.NewBool(false)}
	}})
}

// typesOf collects the type child of every `(: atom type)` fact whose
// atom child unifies with atom.
func typesOf(e *env.Environment, atom value.Value) []value.Value {
	var out []value.Value
	for _, fact := range e.TypeFacts() {
		s, ok := fact.(value.SExpr)
		if !ok || len(s.Children) != 3 {
			continue
		}
		if _, ok := bindings.Unify(s.Children[1], atom, bindings.New()); ok {
			out = append(out, s.Children[2])
		}
	}
	return out
}
