package parser

import "fmt"

// Diagnostic is the {line, column, message} record every parse error
// carries. It is exported so the CLI, REPL, and library embedding can
// format it uniformly.
type Diagnostic struct {
	Line    int32
	Column  int
	Message string
}

func CreateDiagnostic(line int32, column int, message string) Diagnostic {
	return Diagnostic{Line: line, Column: column, Message: message}
}

func (e Diagnostic) Error() string {
	return fmt.Sprintf("💥 MeTTaTron parse error:\nline:%d, column:%d - %s", e.Line, e.Column, e.Message)
}
