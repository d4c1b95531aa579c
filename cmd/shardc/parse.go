package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"shardc/ast"
	"shardc/lexer"
	"shardc/parser"
)

// parseCmd implements the "parse" command: lex + parse, then print the
// resulting AST as JSON (ast.PrintASTJSON), without running semantic
// analysis.
type parseCmd struct{}

func (*parseCmd) Name() string     { return "parse" }
func (*parseCmd) Synopsis() string { return "Parse a source file and print its AST as JSON" }
func (*parseCmd) Usage() string {
	return `parse <file>:
  Lex and parse a source file, printing the resulting AST as JSON.
`
}
func (*parseCmd) SetFlags(f *flag.FlagSet) {}

func (*parseCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "💥 file not provided\n")
		return subcommands.ExitUsageError
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 failed to read file: %v\n", err)
		return subcommands.ExitFailure
	}
	tokens, err := lexer.New(string(data)).Scan()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	items, err := parser.Parse(tokens)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	out, err := ast.PrintASTJSON(items)
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 failed to print AST: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Println(out)
	return subcommands.ExitSuccess
}
