package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"shardc/lexer"
)

// tokenizeCmd implements the "tokenize" command.
type tokenizeCmd struct{}

func (*tokenizeCmd) Name() string     { return "tokenize" }
func (*tokenizeCmd) Synopsis() string { return "Print the token stream for a source file" }
func (*tokenizeCmd) Usage() string {
	return `tokenize <file>:
  Lex a source file and print each token with its source location.
`
}
func (*tokenizeCmd) SetFlags(f *flag.FlagSet) {}

func (*tokenizeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
	for _, tok := range tokens {
		fmt.Println(tok.String())
	}
	return subcommands.ExitSuccess
}
