package eval

import (
	"mettatron/env"
	"mettatron/value"
)

// Lists are represented the way
// MeTTa's own grounded list type is: `Nil` is the empty list atom, and
// `(Cons head tail)` is a 2-ary SExpr cell. There's no dedicated Value
// kind for this — it's ordinary SExpr/Atom structure, exactly like every
// other grounded convention.
const (
	nilAtomName  = "Nil"
	consHeadName = "Cons"
)

func registerListOps(r registry) {
	r.add(Operator{Name: "cons", Eager: true, Pure: true, Fn: func(ev *Evaluator, e *env.Environment, args []value.Value, b *Budget) []value.Value {
		if len(args) != 2 {
			return arityError("cons", len(args), 2)
		}
		return []value.Value{value.NewSExpr(value.NewAtom(consHeadName), args[0], args[1])}
	}})
	r.add(Operator{Name: "car", Eager: true, Pure: true, Fn: func(ev *Evaluator, e *env.Environment, args []value.Value, b *Budget) []value.Value {
		if len(args) != 1 {
			return arityError("car", len(args), 1)
		}
		head, _, ok := asCons(args[0])
		if !ok {
			return typeError("car", args[0], "a Cons cell")
		}
		return []value.Value{head}
	}})
	r.add(Operator{Name: "cdr", Eager: true, Pure: true, Fn: func(ev *Evaluator, e *env.Environment, args []value.Value, b *Budget) []value.Value {
		if len(args) != 1 {
			return arityError("cdr", len(args), 1)
		}
		_, tail, ok := asCons(args[0])
		if !ok {
			return typeError("cdr", args[0], "a Cons cell")
		}
		return []value.Value{tail}
	}})
	r.add(Operator{Name: "nil?", Eager: true, Pure: true, Fn: func(ev *Evaluator, e *env.Environment, args []value.Value, b *Budget) []value.Value {
		if len(args) != 1 {
			return arityError("nil?", len(args), 1)
		}
		return []value.Value{value.NewBool(isNil(args[0]))}
	}})
	r.add(Operator{Name: "list?", Eager: true, Pure: true, Fn: func(ev *Evaluator, e *env.Environment, args []value.Value, b *Budget) []value.Value {
		if len(args) != 1 {
			return arityError("list?", len(args), 1)
		}
		return []value.Value{value.NewBool(isProperList(args[0]))}
	}})
}

func isNil(v value.Value) bool {
	a, ok := v.(value.Atom)
	return ok && a.Name == nilAtomName
}

func asCons(v value.Value) (head, tail value.Value, ok bool) {
	s, ok := v.(value.SExpr)
	if !ok || len(s.Children) != 3 {
		return nil, nil, false
	}
	h, ok := s.Children[0].(value.Atom)
	if !ok || h.Name != consHeadName {
		return nil, nil, false
	}
	return s.Children[1], s.Children[2], true
}

func isProperList(v value.Value) bool {
	if isNil(v) {
		return true
	}
	_, tail, ok := asCons(v)
	if !ok {
		return false
	}
	return isProperList(tail)
}
