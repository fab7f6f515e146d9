package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/subcommands"
	"mettatron/runtime"
	"mettatron/value"
)

// runCmd evaluates a MeTTa source file and prints every produced value.
type runCmd struct {
	strictMode bool
	outPath    string
}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "Execute MeTTa code from a source file" }
func (*runCmd) Usage() string {
	return `run [-strict-mode] [-o <path>] <input-file>:
  Parse and evaluate a MeTTa source file, printing each result.
`
}

func (r *runCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&r.strictMode, "strict-mode", false, "disable transitive imports")
	f.StringVar(&r.outPath, "o", "", "write output to file instead of stdout")
}

func (r *runCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	out, closer, err := openOutput(r.outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 Failed to open output: %v\n", err)
		return subcommands.ExitUsageError
	}
	defer closer()

	st := runtime.New()
	st.Environment().SetStrictMode(r.strictMode)
	st = st.Run(string(data))

	sawError := false
	for _, v := range st.Outputs() {
		if errv, ok := v.(value.Error); ok {
			sawError = true
			fmt.Fprintln(os.Stderr, errv.String())
			continue
		}
		fmt.Fprintln(out, value.Print(v))
	}
	if sawError {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// openOutput returns os.Stdout (with a no-op closer) when path is empty,
// or a created file otherwise.
func openOutput(path string) (io.Writer, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return file, func() { file.Close() }, nil
}
