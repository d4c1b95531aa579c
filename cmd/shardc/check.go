package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"shardc/compiler"
)

// checkCmd implements the "check" command: run the full pipeline
// (lex/parse, then the emitter, which resolves names and type-checks as
// it emits) and discard the bytecode without printing or writing it.
type checkCmd struct{}

func (*checkCmd) Name() string     { return "check" }
func (*checkCmd) Synopsis() string { return "Type-check a source file without writing out bytecode" }
func (*checkCmd) Usage() string {
	return `check <file>:
  Compile the file (lexer, parser, and the type-checking emitter),
  reporting the first error.
`
}
func (*checkCmd) SetFlags(f *flag.FlagSet) {}

func (*checkCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "💥 file not provided\n")
		return subcommands.ExitUsageError
	}
	if _, err := compiler.Compile(args[0]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Println("ok")
	return subcommands.ExitSuccess
}
