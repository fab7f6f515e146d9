package value

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// sexprPrinter implements Visitor and rebuilds the canonical
// parenthesized source text for a Value. Round-tripping this text through
// the parser must reproduce a structurally-equal AST.
type sexprPrinter struct{}

func (p sexprPrinter) VisitAtom(a Atom) any { return a.Name }

func (p sexprPrinter) VisitVariable(v Variable) any { return v.Name }

func (p sexprPrinter) VisitSExpr(s SExpr) any {
	// A concurrent form carries the parser's internal "{}" head marker;
	// it must print back as brace syntax or the output won't re-lex.
	if head, ok := s.Head(); ok && head.Name == "{}" {
		parts := make([]string, len(s.Children)-1)
		for i, c := range s.Children[1:] {
			parts[i] = c.Accept(p).(string)
		}
		return "{" + strings.Join(parts, " ") + "}"
	}
	parts := make([]string, len(s.Children))
	for i, c := range s.Children {
		parts[i] = c.Accept(p).(string)
	}
	return "(" + strings.Join(parts, " ") + ")"
}

func (p sexprPrinter) VisitLong(l Long) any { return strconv.FormatInt(l.V, 10) }

func (p sexprPrinter) VisitFloat(f Float) any {
	s := strconv.FormatFloat(f.V, 'g', -1, 64)
	// An integral Float keeps a ".0" so it does not reparse as a Long.
	if !strings.ContainsAny(s, ".eEIN") {
		s += ".0"
	}
	return s
}

// stringEscaper emits only the escapes the lexer understands.
var stringEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\t", `\t`, "\r", `\r`, "\x00", `\0`)

func (p sexprPrinter) VisitString(s String) any {
	return `"` + stringEscaper.Replace(s.V) + `"`
}

func (p sexprPrinter) VisitUri(u Uri) any { return "`" + u.V + "`" }

func (p sexprPrinter) VisitBool(b Bool) any {
	if b.V {
		return "true"
	}
	return "false"
}

func (p sexprPrinter) VisitUnit(u Unit) any { return "()" }

func (p sexprPrinter) VisitError(e Error) any {
	return fmt.Sprintf("(error %q %q)", string(e.ErrKind), e.Message)
}

// Print renders v as canonical MeTTa source text.
func Print(v Value) string {
	return v.Accept(sexprPrinter{}).(string)
}

// PrintAll joins a top-level form sequence with newlines, as produced by
// `--sexpr`.
func PrintAll(values []Value) string {
	lines := make([]string, len(values))
	for i, v := range values {
		lines[i] = Print(v)
	}
	return strings.Join(lines, "\n")
}

// jsonPrinter implements Visitor and builds a JSON-friendly
// representation of the tree.
type jsonPrinter struct{}

func (p jsonPrinter) VisitAtom(a Atom) any {
	return map[string]any{"type": "Atom", "name": a.Name}
}

func (p jsonPrinter) VisitVariable(v Variable) any {
	return map[string]any{"type": "Variable", "name": v.Name}
}

func (p jsonPrinter) VisitSExpr(s SExpr) any {
	children := make([]any, 0, len(s.Children))
	for _, c := range s.Children {
		children = append(children, c.Accept(p))
	}
	return map[string]any{"type": "SExpr", "children": children}
}

func (p jsonPrinter) VisitLong(l Long) any   { return map[string]any{"type": "Long", "value": l.V} }
func (p jsonPrinter) VisitFloat(f Float) any { return map[string]any{"type": "Float", "value": f.V} }
func (p jsonPrinter) VisitString(s String) any {
	return map[string]any{"type": "String", "value": s.V}
}
func (p jsonPrinter) VisitUri(u Uri) any   { return map[string]any{"type": "Uri", "value": u.V} }
func (p jsonPrinter) VisitBool(b Bool) any { return map[string]any{"type": "Bool", "value": b.V} }
func (p jsonPrinter) VisitUnit(u Unit) any { return map[string]any{"type": "Unit"} }
func (p jsonPrinter) VisitError(e Error) any {
	return map[string]any{"type": "Error", "kind": string(e.ErrKind), "message": e.Message}
}

// PrintASTJSON converts a slice of top-level Values into a prettified JSON
// string, used by the `--ast` CLI flag.
func PrintASTJSON(values []Value) (string, error) {
	printer := jsonPrinter{}
	out := make([]any, 0, len(values))
	for _, v := range values {
		out = append(out, v.Accept(printer))
	}
	bytes, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}
