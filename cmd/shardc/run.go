package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"shardc/compiler"
	"shardc/vm"
)

// runCmd implements the "run" command: compile a source file and execute
// its bytecode on the in-tree reference executor (shardc/vm) — a stand-in
// for the real zero-knowledge VM backend, which is out of scope per
// spec.md §1.
type runCmd struct{}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "Compile and execute a source file" }
func (*runCmd) Usage() string {
	return `run <file>:
  Compile a source file and execute it on the reference executor.
`
}
func (*runCmd) SetFlags(f *flag.FlagSet) {}

func (*runCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "💥 file not provided\n")
		return subcommands.ExitUsageError
	}
	prog, err := compiler.Compile(args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	code, err := vm.Run(prog)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if code != 0 {
		return subcommands.ExitStatus(code)
	}
	return subcommands.ExitSuccess
}
