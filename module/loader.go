package module

import (
	"os"
	"path/filepath"

	"mettatron/env"
	"mettatron/lexer"
	"mettatron/parser"
	"mettatron/value"
)

// EvalFunc evaluates one top-level form against e, returning every
// produced result. The Loader
// is handed one of these at construction time rather than importing the
// eval package directly, so that eval (which calls into Loader for
// `include`/`import!`) and module don't form an import cycle.
type EvalFunc func(expr value.Value, e *env.Environment) []value.Value

// Loader resolves include/import! by path, evaluating each module's
// top-level forms exactly once per resolved path.
type Loader struct {
	eval EvalFunc
}

func NewLoader(eval EvalFunc) *Loader {
	return &Loader{eval: eval}
}

// Include implements `include(path)`: locate the file, parse it,
// evaluate its top-level forms directly into e, and mark the resolved path
// as loaded so a second include of the same path is a no-op. Returns Unit
// on success or a NotFound/Parse Error value.
func (l *Loader) Include(e *env.Environment, path string) value.Value {
	resolved, err := resolvePath(e, path)
	if err != nil {
		return value.NewError(value.ErrNotFound, err.Error(), value.NewString(path))
	}
	if _, already := e.LookupModule(resolved); already {
		return value.NewUnit()
	}
	forms, perr := parseFile(resolved)
	if perr != nil {
		return value.NewError(value.ErrParse, perr.Error(), value.NewString(path))
	}
	previous := e.CurrentModulePath()
	e.SetCurrentModulePath(resolved)
	for _, form := range forms {
		l.eval(form, e)
	}
	e.SetCurrentModulePath(previous)
	e.CacheModule(resolved, e)
	return value.NewUnit()
}

// Import implements `import!(space-ref, path [, item [, as new-name]])`.
// space-ref is resolved by the caller (eval's grounded-operator
// dispatch) to the Environment item/bindings should land in; Loader only
// handles load-once-and-copy-bindings. An empty item copies every
// manifest-exportable fact of the module (its rules are not copied); a
// non-empty item imports just that one `bind!` binding (optionally
// renamed via asName).
func (l *Loader) Import(dst *env.Environment, path, item, asName string) value.Value {
	resolved, err := resolvePath(dst, path)
	if err != nil {
		return value.NewError(value.ErrNotFound, err.Error(), value.NewString(path))
	}

	child, cached := dst.LookupModule(resolved)
	if !cached {
		child = env.New()
		forms, perr := parseFile(resolved)
		if perr != nil {
			return value.NewError(value.ErrParse, perr.Error(), value.NewString(path))
		}
		child.SetCurrentModulePath(resolved)
		child.SetStrictMode(dst.StrictMode())
		for _, form := range forms {
			l.eval(form, child)
		}
		dst.CacheModule(resolved, child)
	}

	manifest, _ := LoadManifest(filepath.Dir(resolved))

	if item == "" {
		for _, fact := range child.GetAtoms() {
			if !exportableFact(fact, manifest) {
				continue
			}
			dst.AddFact(fact)
		}
		return value.NewUnit()
	}

	if !manifest.Exportable(item) {
		return value.NewError(value.ErrNotFound, "symbol `"+item+"` is not in exports.public", value.NewAtom(item))
	}
	bound, ok := child.LookupTokenizer(item)
	if !ok {
		return value.NewError(value.ErrNotFound, "module has no binding named `"+item+"`", value.NewAtom(item))
	}
	targetName := item
	if asName != "" {
		targetName = asName
	}
	dst.BindTokenizer(targetName, bound)
	return value.NewUnit()
}

// exportableFact reports whether fact's head atom (if any) passes the
// manifest's exports.public filter; facts with no atom head are always
// copied (a manifest restricts named symbols, not arbitrary ground facts).
func exportableFact(fact value.Value, manifest *Manifest) bool {
	s, ok := fact.(value.SExpr)
	if !ok {
		return true
	}
	head, ok := s.Head()
	if !ok {
		return true
	}
	return manifest.Exportable(head.Name)
}

// resolvePath resolves path relative to e's current module directory (or
// the working directory for the root environment), matching "Unqualified
// &self means current env" in spirit for file resolution.
func resolvePath(e *env.Environment, path string) (string, error) {
	if filepath.IsAbs(path) {
		if _, err := os.Stat(path); err != nil {
			return "", err
		}
		return path, nil
	}
	base := "."
	if cur := e.CurrentModulePath(); cur != "" {
		base = filepath.Dir(cur)
	}
	candidate := filepath.Join(base, path)
	if _, err := os.Stat(candidate); err != nil {
		return "", err
	}
	return candidate, nil
}

func parseFile(path string) ([]value.Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	lex := lexer.New(string(data))
	tokens, lexErrs := lex.Scan()
	if len(lexErrs) > 0 {
		return nil, lexErrs[0]
	}
	p := parser.Make(tokens)
	forms, perrs := p.Parse()
	if len(perrs) > 0 {
		return nil, perrs[0]
	}
	return forms, nil
}
