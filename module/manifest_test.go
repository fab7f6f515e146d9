package module

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadManifestSExpr(t *testing.T) {
	dir := t.TempDir()
	content := `
(name "geometry")
(version "0.2.0")
(description "shapes and angles")
(authors "Ada" "Grace")
(license "MIT")
(exports (public area perimeter))
(dependencies (trig "^1.2.0") (units "~0.3"))
`
	if err := os.WriteFile(filepath.Join(dir, "_pkg-info.metta"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := LoadManifest(dir)
	if err != nil {
		t.Fatal(err)
	}
	if m.Name != "geometry" || m.Version != "0.2.0" {
		t.Fatalf("got name=%q version=%q", m.Name, m.Version)
	}
	if len(m.Authors) != 2 || m.Authors[0] != "Ada" {
		t.Fatalf("got authors %v", m.Authors)
	}
	if !m.Exportable("area") || m.Exportable("secret") {
		t.Fatalf("exports.public filtering wrong: %+v", m.ExportsPublic)
	}
	if len(m.Dependencies) != 2 {
		t.Fatalf("got %d dependencies, want 2", len(m.Dependencies))
	}
	for _, d := range m.Dependencies {
		if d.ParsedConstraint() == nil {
			t.Fatalf("dependency %q constraint %q failed to parse", d.Name, d.Constraint)
		}
	}
}

func TestLoadManifestTOMLFallback(t *testing.T) {
	dir := t.TempDir()
	toml := `
name = "geometry"
version = "0.2.0"

[exports]
public = ["area"]

[dependencies]
trig = "^1.2.0"
`
	if err := os.WriteFile(filepath.Join(dir, "metta.toml"), []byte(toml), 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := LoadManifest(dir)
	if err != nil {
		t.Fatal(err)
	}
	if m.Name != "geometry" {
		t.Fatalf("got name %q", m.Name)
	}
	if !m.Exportable("area") || m.Exportable("other") {
		t.Fatal("exports.public filtering wrong from TOML manifest")
	}
}

func TestLoadManifestSExprWinsOverTOML(t *testing.T) {
	dir := t.TempDir()
	sexpr := `(name "from-sexpr") (version "1.0.0") (exports (public a))`
	toml := `
name = "from-toml"
version = "2.0.0"
[exports]
public = ["b"]
`
	if err := os.WriteFile(filepath.Join(dir, "_pkg-info.metta"), []byte(sexpr), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "metta.toml"), []byte(toml), 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := LoadManifest(dir)
	if err != nil {
		t.Fatal(err)
	}
	if m.Name != "from-sexpr" {
		t.Fatalf("expected S-expression manifest to win, got name %q", m.Name)
	}
	if !m.Exportable("a") || m.Exportable("b") {
		t.Fatal("expected S-expression manifest's exports to be authoritative")
	}
}

func TestLoadManifestAbsentIsNotAnError(t *testing.T) {
	dir := t.TempDir()
	m, err := LoadManifest(dir)
	if err != nil {
		t.Fatal(err)
	}
	if m != nil {
		t.Fatalf("expected nil manifest, got %+v", m)
	}
}

func TestLoadManifestMalformedSExprFallsBackToTOML(t *testing.T) {
	dir := t.TempDir()
	// Missing required `version` makes the S-expression manifest fail to
	// parse per LoadManifest's contract, so metta.toml should be tried.
	if err := os.WriteFile(filepath.Join(dir, "_pkg-info.metta"), []byte(`(name "broken")`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "metta.toml"), []byte("name = \"fallback\"\nversion = \"1.0.0\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := LoadManifest(dir)
	if err != nil {
		t.Fatal(err)
	}
	if m.Name != "fallback" {
		t.Fatalf("expected fallback to TOML manifest, got %q", m.Name)
	}
}
