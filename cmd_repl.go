package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/subcommands"
	"mettatron/env"
	"mettatron/eval"
	"mettatron/lexer"
	"mettatron/parser"
	"mettatron/value"
)

// replCmd implements the interactive read-eval-print loop. Errors print
// inline and the session continues; the environment persists across lines.
type replCmd struct {
	strictMode bool
}

func (*replCmd) Name() string     { return "repl" }
func (*replCmd) Synopsis() string { return "Start REPL session" }
func (*replCmd) Usage() string {
	return `repl [-strict-mode]:
  Start interactive REPL session.
`
}

func (r *replCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&r.strictMode, "strict-mode", false, "disable transitive imports")
}

func repl(in io.Reader, out io.Writer, strictMode bool) {
	scanner := bufio.NewScanner(in)
	evaluator := eval.New()
	environment := env.New()
	environment.SetStrictMode(strictMode)

	for {
		fmt.Fprintf(out, ">>> ")
		scanned := scanner.Scan()
		if !scanned {
			return
		}
		line := scanner.Text()
		if line == "exit" {
			os.Exit(0)
		}
		toks, lexErrs := lexer.New(line).Scan()
		if len(lexErrs) > 0 {
			for _, err := range lexErrs {
				fmt.Fprintln(os.Stderr, err)
			}
			continue
		}
		forms, parseErrs := parser.Make(toks).Parse()
		for _, err := range parseErrs {
			fmt.Fprintln(os.Stderr, err)
		}
		for _, form := range forms {
			for _, result := range evaluator.RunTopForm(form, environment, eval.Background()) {
				fmt.Fprintln(out, value.Print(result))
			}
		}
	}
}

func (r *replCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	fmt.Println("\n\nWelcome to MeTTaTron!")
	repl(os.Stdin, os.Stdout, r.strictMode)
	return subcommands.ExitSuccess
}
