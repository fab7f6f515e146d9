package module

import (
	"os"
	"path/filepath"
	"testing"

	"mettatron/env"
	"mettatron/value"
)

// evalRules is a minimal stand-in for the real eval.Evaluator: it only
// understands `=`/`:`/`bind!` top-level forms, which is all these tests
// exercise. The real wiring (eval.Evaluator.Eval) is exercised by
// eval's own tests and by runtime's end-to-end tests.
func evalRules(expr value.Value, e *env.Environment) []value.Value {
	s, ok := expr.(value.SExpr)
	if !ok || len(s.Children) == 0 {
		return []value.Value{expr}
	}
	head, ok := s.Children[0].(value.Atom)
	if !ok {
		return []value.Value{expr}
	}
	switch head.Name {
	case "=":
		e.AddRule(s.Children[1], s.Children[2])
	case ":":
		e.AddTypeFact(s.Children[1], s.Children[2])
	case "bind!":
		name := s.Children[1].(value.Atom).Name
		e.BindTokenizer(name, s.Children[2])
	default:
		e.AddFact(expr)
	}
	return []value.Value{value.NewUnit()}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestIncludeIsLoadOnce(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "facts.metta", "(Human Socrates)\n(Human Plato)\n")

	e := env.New()
	l := NewLoader(evalRules)

	if r := l.Include(e, filepath.Join(dir, "facts.metta")); r.Kind() == "Error" {
		t.Fatalf("unexpected error: %v", r)
	}
	if got := len(e.GetAtoms()); got != 2 {
		t.Fatalf("after first include: got %d atoms, want 2", got)
	}

	// Second include of the resolved same path is a documented no-op.
	if r := l.Include(e, filepath.Join(dir, "facts.metta")); r.Kind() == "Error" {
		t.Fatalf("unexpected error on reinclude: %v", r)
	}
	if got := len(e.GetAtoms()); got != 2 {
		t.Fatalf("after reinclude: got %d atoms, want 2 (no duplication)", got)
	}
}

func TestIncludeMissingFile(t *testing.T) {
	e := env.New()
	l := NewLoader(evalRules)
	r := l.Include(e, "/no/such/file.metta")
	if r.Kind() != "Error" {
		t.Fatalf("expected Error, got %v", r)
	}
	if r.(value.Error).ErrKind != value.ErrNotFound {
		t.Fatalf("expected NotFound, got %v", r.(value.Error).ErrKind)
	}
}

func TestImportBindingWithRename(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "lib.metta", `(bind! answer 42)`)

	dst := env.New()
	l := NewLoader(evalRules)

	r := l.Import(dst, filepath.Join(dir, "lib.metta"), "answer", "the-answer")
	if r.Kind() == "Error" {
		t.Fatalf("unexpected error: %v", r)
	}
	v, ok := dst.LookupTokenizer("the-answer")
	if !ok {
		t.Fatal("expected the-answer to be bound in dst")
	}
	if !value.Equal(v, value.NewLong(42)) {
		t.Fatalf("got %v, want 42", v)
	}
}

func TestImportRespectsExportsPublic(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "_pkg-info.metta", `(name "lib") (version "1.0.0") (exports (public ok))`)
	writeFile(t, dir, "lib.metta", "(bind! ok 1)\n(bind! secret 2)\n")

	dst := env.New()
	l := NewLoader(evalRules)

	if r := l.Import(dst, filepath.Join(dir, "lib.metta"), "secret", ""); r.Kind() != "Error" {
		t.Fatalf("expected Error importing non-exported symbol, got %v", r)
	}
	if r := l.Import(dst, filepath.Join(dir, "lib.metta"), "ok", ""); r.Kind() == "Error" {
		t.Fatalf("unexpected error importing exported symbol: %v", r)
	}
}

func TestImportAllUnqualified(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "facts.metta", "(Human Socrates)\n")

	dst := env.New()
	l := NewLoader(evalRules)
	if r := l.Import(dst, filepath.Join(dir, "facts.metta"), "", ""); r.Kind() == "Error" {
		t.Fatalf("unexpected error: %v", r)
	}
	if !dst.HasFact(value.NewSExpr(value.NewAtom("Human"), value.NewAtom("Socrates"))) {
		t.Fatal("expected imported fact to be present in dst")
	}
}
