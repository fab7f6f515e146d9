// Package module implements ModuleLoader: resolving `include` and
// `import!` by path, parsing and evaluating a file's top-level forms into a
// child environment, and the two accepted package-manifest formats.
package module

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/Masterminds/semver/v3"

	"mettatron/lexer"
	"mettatron/parser"
	"mettatron/value"
)

// Dependency records a declared (name, version-constraint) pair from a
// manifest's `dependencies` table. Resolution itself stays out of scope —
// only the constraint is parsed and recorded.
type Dependency struct {
	Name       string
	Constraint string
	parsed     *semver.Constraints // nil if Constraint failed to parse
}

// ParsedConstraint returns the semver constraint this dependency's
// version string compiled to, or nil if it didn't parse (the declared
// pair is recorded either way).
func (d Dependency) ParsedConstraint() *semver.Constraints { return d.parsed }

// Manifest is the package metadata, however it was
// sourced (`_pkg-info.metta` or `metta.toml`).
type Manifest struct {
	Name        string
	Version     string
	Description string
	Authors     []string
	License     string
	Repository  string
	Keywords    []string

	// ExportsPublic lists the symbols `import!` may target. HasExports
	// records whether the manifest declared exports at all: when it is
	// false everything is importable; when it is true only the names in
	// ExportsPublic are, so an empty list means nothing is.
	ExportsPublic []string
	HasExports    bool

	Dependencies []Dependency
}

// Exportable reports whether name may be the target of an `import!`
// under the exports.public rule.
func (m *Manifest) Exportable(name string) bool {
	if m == nil || !m.HasExports {
		return true
	}
	for _, n := range m.ExportsPublic {
		if n == name {
			return true
		}
	}
	return false
}

// LoadManifest reads package metadata from the surrounding directory:
// `_pkg-info.metta` is authoritative whenever
// it's present AND parses; `metta.toml` is only consulted on its absence
// or parse failure. Returns (nil, nil) if neither file exists — a manifest
// is always optional.
func LoadManifest(dir string) (*Manifest, error) {
	sexprPath := filepath.Join(dir, "_pkg-info.metta")
	if _, err := os.Stat(sexprPath); err == nil {
		if m, err := loadSExprManifest(sexprPath); err == nil {
			return m, nil
		}
		// Falls through to the TOML manifest: the S-expression manifest
		// is authoritative only when present and parseable.
	}
	tomlPath := filepath.Join(dir, "metta.toml")
	if _, err := os.Stat(tomlPath); err == nil {
		return loadTOMLManifest(tomlPath)
	}
	return nil, nil
}

// loadSExprManifest builds a Manifest in the same table-of-key-value shape
// as the TOML form, from parsed S-expression top-forms of the shape
// `(key value...)`.
func loadSExprManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	lex := lexer.New(string(data))
	tokens, lexErrs := lex.Scan()
	if len(lexErrs) > 0 {
		return nil, fmt.Errorf("module: %s: %v", path, lexErrs[0])
	}
	p := parser.Make(tokens)
	forms, perrs := p.Parse()
	if len(perrs) > 0 {
		return nil, fmt.Errorf("module: %s: %v", path, perrs[0])
	}

	m := &Manifest{}
	for _, form := range forms {
		s, ok := form.(value.SExpr)
		if !ok || len(s.Children) == 0 {
			continue
		}
		head, ok := s.Children[0].(value.Atom)
		if !ok {
			continue
		}
		rest := s.Children[1:]
		switch head.Name {
		case "name":
			m.Name = stringField(rest)
		case "version":
			m.Version = stringField(rest)
		case "description":
			m.Description = stringField(rest)
		case "license":
			m.License = stringField(rest)
		case "repository":
			m.Repository = stringField(rest)
		case "authors":
			m.Authors = stringFields(rest)
		case "keywords":
			m.Keywords = stringFields(rest)
		case "exports":
			m.HasExports = true
			m.ExportsPublic = append(m.ExportsPublic, parseExports(rest)...)
		case "dependencies":
			m.Dependencies = parseSExprDeps(rest)
		}
	}
	if m.Name == "" || m.Version == "" {
		return nil, fmt.Errorf("module: %s: missing required `name`/`version`", path)
	}
	return m, nil
}

func stringField(vs []value.Value) string {
	if len(vs) == 0 {
		return ""
	}
	if s, ok := vs[0].(value.String); ok {
		return s.V
	}
	if a, ok := vs[0].(value.Atom); ok {
		return a.Name
	}
	return ""
}

func stringFields(vs []value.Value) []string {
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		switch s := v.(type) {
		case value.String:
			out = append(out, s.V)
		case value.Atom:
			out = append(out, s.Name)
		}
	}
	return out
}

// parseExports handles `(exports (public a b c))`.
func parseExports(vs []value.Value) []string {
	for _, v := range vs {
		s, ok := v.(value.SExpr)
		if !ok || len(s.Children) == 0 {
			continue
		}
		head, ok := s.Children[0].(value.Atom)
		if !ok || head.Name != "public" {
			continue
		}
		return stringFields(s.Children[1:])
	}
	return nil
}

// parseSExprDeps handles `(dependencies (foo "^1.0") (bar "~2.3"))`.
func parseSExprDeps(vs []value.Value) []Dependency {
	var out []Dependency
	for _, v := range vs {
		s, ok := v.(value.SExpr)
		if !ok || len(s.Children) != 2 {
			continue
		}
		name, ok := s.Children[0].(value.Atom)
		if !ok {
			continue
		}
		constraint := stringField(s.Children[1:])
		out = append(out, newDependency(name.Name, constraint))
	}
	return out
}

func newDependency(name, constraint string) Dependency {
	d := Dependency{Name: name, Constraint: constraint}
	if c, err := semver.NewConstraint(constraint); err == nil {
		d.parsed = c
	}
	return d
}

// tomlManifest is the table-of-key-value shape decoded directly by
// BurntSushi/toml's struct-tag reflection.
type tomlManifest struct {
	Name        string   `toml:"name"`
	Version     string   `toml:"version"`
	Description string   `toml:"description"`
	Authors     []string `toml:"authors"`
	License     string   `toml:"license"`
	Repository  string   `toml:"repository"`
	Keywords    []string `toml:"keywords"`
	Exports     struct {
		Public []string `toml:"public"`
	} `toml:"exports"`
	Dependencies map[string]string `toml:"dependencies"`
}

func loadTOMLManifest(path string) (*Manifest, error) {
	var doc tomlManifest
	if _, err := toml.DecodeFile(path, &doc); err != nil {
		return nil, fmt.Errorf("module: %s: %w", path, err)
	}
	if doc.Name == "" || doc.Version == "" {
		return nil, fmt.Errorf("module: %s: missing required `name`/`version`", path)
	}
	m := &Manifest{
		Name:        doc.Name,
		Version:     doc.Version,
		Description: doc.Description,
		Authors:     doc.Authors,
		License:     doc.License,
		Repository:  doc.Repository,
		Keywords:    doc.Keywords,
	}
	if doc.Exports.Public != nil {
		m.HasExports = true
		m.ExportsPublic = doc.Exports.Public
	}
	for name, constraint := range doc.Dependencies {
		m.Dependencies = append(m.Dependencies, newDependency(name, constraint))
	}
	return m, nil
}
