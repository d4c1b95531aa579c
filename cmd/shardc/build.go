package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"shardc/bytecode"
	"shardc/compiler"
)

// buildCmd implements the "build" command: compile a source file to a
// linked bytecode.Program and print its disassembly (spec.md §6's
// "canonical serializer used by the runtime" is the real proving-system
// backend's job, out of scope here; disassembly is this front end's own
// inspectable rendering of the same instruction stream).
type buildCmd struct {
	out string
}

func (*buildCmd) Name() string     { return "build" }
func (*buildCmd) Synopsis() string { return "Compile a source file to bytecode" }
func (*buildCmd) Usage() string {
	return `build <file>:
  Compile a source file and print its disassembled bytecode
  (or write the raw instruction stream with -out).
`
}
func (c *buildCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.out, "out", "", "write the raw instruction stream to this path instead of printing a disassembly")
}

func (c *buildCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
	if c.out != "" {
		if err := os.WriteFile(c.out, prog.Instructions, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "💥 failed to write %s: %v\n", c.out, err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}
	fmt.Print(bytecode.Disassemble(prog))
	return subcommands.ExitSuccess
}
