package eval

import (
	"mettatron/env"
	"mettatron/value"
)

// registerModuleOps wires `include import!` onto module.Loader.
// Both take their path argument as an evaluated String/Uri, since a
// caller composing a path with e.g. string ops is a common pattern; the
// optional item/new-name arguments are raw atoms naming a symbol, so
// those are read straight off the unevaluated SExpr rather than evaluated.
func registerModuleOps(r registry) {
	r.add(Operator{Name: "include", Eager: false, Fn: func(ev *Evaluator, e *env.Environment, rawArgs []value.Value, b *Budget) []value.Value {
		if len(rawArgs) != 1 {
			return arityError("include", len(rawArgs), 1)
		}
		if blocked, errv := transitiveImportBlocked(e, "include"); blocked {
			return []value.Value{errv}
		}
		path, ok := pathArg(ev, e, rawArgs[0], b)
		if !ok {
			return typeError("include", rawArgs[0], "a path String or Uri")
		}
		return []value.Value{ev.loader.Include(e, path)}
	}})
	r.add(Operator{Name: "import!", Eager: false, Fn: importOp})
}

// transitiveImportBlocked implements `--strict-mode`'s disabling of
// transitive imports: e.CurrentModulePath is empty for the top-level
// program the CLI/REPL runs directly (it was never itself loaded by
// Loader.Include/Import) and only gets set while evaluating a module's
// own top forms. So a strict-mode env's own first-level include/import!
// calls are always honored; it's only a module that was itself loaded
// under strict mode whose further include/import! calls are refused.
func transitiveImportBlocked(e *env.Environment, opName string) (bool, value.Value) {
	if e.StrictMode() && e.CurrentModulePath() != "" {
		return true, value.NewError(value.ErrUser, opName+": transitive imports disabled by --strict-mode", nil)
	}
	return false, nil
}

// pathArg evaluates expr and accepts the result as a path if it's a
// String, Uri, or bare Atom.
func pathArg(ev *Evaluator, e *env.Environment, expr value.Value, b *Budget) (string, bool) {
	results := ev.Eval(expr, e, b)
	if len(results) != 1 {
		return "", false
	}
	switch v := results[0].(type) {
	case value.String:
		return v.V, true
	case value.Uri:
		return v.V, true
	case value.Atom:
		return v.Name, true
	default:
		return "", false
	}
}

// importOp implements `(import! space-ref path [item [as new-name]])`.
// space-ref resolves through the same mechanism `match`/`add-atom` use;
// item and new-name, when present, name a symbol and must be bare
// atoms rather than evaluated expressions.
func importOp(ev *Evaluator, e *env.Environment, rawArgs []value.Value, b *Budget) []value.Value {
	if len(rawArgs) < 2 || len(rawArgs) > 4 {
		return arityError("import!", len(rawArgs), 2)
	}
	if blocked, errv := transitiveImportBlocked(e, "import!"); blocked {
		return []value.Value{errv}
	}
	dst, ok := ev.resolveSpace(rawArgs[0], e)
	if !ok {
		return typeError("import!", rawArgs[0], "a space reference")
	}
	path, ok := pathArg(ev, e, rawArgs[1], b)
	if !ok {
		return typeError("import!", rawArgs[1], "a path String or Uri")
	}

	item := ""
	if len(rawArgs) >= 3 {
		a, ok := rawArgs[2].(value.Atom)
		if !ok {
			return typeError("import!", rawArgs[2], "a bare item name")
		}
		item = a.Name
	}

	asName := item
	if len(rawArgs) == 4 {
		a, ok := rawArgs[3].(value.Atom)
		if !ok {
			return typeError("import!", rawArgs[3], "a bare `as` name")
		}
		asName = a.Name
	}

	return []value.Value{ev.loader.Import(dst, path, item, asName)}
}
