package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"mettatron/runtime"
	"mettatron/value"
)

// compileCmd parses a source file without evaluating it, printing either
// the AST as JSON (-ast) or the canonicalized S-expressions (-sexpr, the
// default).
type compileCmd struct {
	ast     bool
	sexpr   bool
	outPath string
}

func (*compileCmd) Name() string     { return "compile" }
func (*compileCmd) Synopsis() string { return "Parse MeTTa code and print its AST or canonical form" }
func (*compileCmd) Usage() string {
	return `compile [-ast | -sexpr] [-o <path>] <input-file>:
  Parse a MeTTa source file without evaluating it.
`
}

func (c *compileCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.ast, "ast", false, "print the parsed AST as JSON")
	f.BoolVar(&c.sexpr, "sexpr", false, "print canonicalized S-expressions (default)")
	f.StringVar(&c.outPath, "o", "", "write output to file instead of stdout")
}

func (c *compileCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "💥 File not provided\n")
		return subcommands.ExitUsageError
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 Failed to read file: %v\n", err)
		return subcommands.ExitUsageError
	}

	result := runtime.Compile(string(data))
	if !result.Ok {
		for _, diag := range result.Diagnostics {
			fmt.Fprintln(os.Stderr, diag)
		}
		return subcommands.ExitFailure
	}

	out, closer, err := openOutput(c.outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 Failed to open output: %v\n", err)
		return subcommands.ExitUsageError
	}
	defer closer()

	if c.ast {
		dump, err := value.PrintASTJSON(result.Values)
		if err != nil {
			fmt.Fprintf(os.Stderr, "💥 Failed to render AST: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Fprintln(out, dump)
		return subcommands.ExitSuccess
	}
	fmt.Fprintln(out, value.PrintAll(result.Values))
	return subcommands.ExitSuccess
}
