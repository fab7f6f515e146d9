package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"mettatron/runtime"
)

// checkCmd parses a source file and reports diagnostics; on success it
// prints a one-line summary with the number of top-level forms.
type checkCmd struct{}

func (*checkCmd) Name() string     { return "check" }
func (*checkCmd) Synopsis() string { return "Parse MeTTa code and report syntax errors" }
func (*checkCmd) Usage() string {
	return `check <input-file>:
  Parse a MeTTa source file and report diagnostics.
`
}

func (c *checkCmd) SetFlags(f *flag.FlagSet) {}

func (c *checkCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
	fmt.Printf("%s: %d top-level form(s), no errors\n", args[0], len(result.Values))
	return subcommands.ExitSuccess
}
