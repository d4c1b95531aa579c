// Command shardc is the compiler's command-line front end: tokenize,
// parse, check, build, and repl subcommands over the pipeline implemented
// by the shardc/{lexer,parser,bytecode,compiler,vm} packages.
//
// Grounded on the teacher's cmd_run.go/cmd_repl.go/cmd_emit_bytecode.go
// (one subcommands.Command implementation per verb) — regrown into a
// single cmd/shardc binary that actually registers and dispatches them,
// which the teacher's own main() never did (it ran a bare bufio REPL
// and left the Command implementations unreferenced).
package main

import (
	"context"
	"flag"
	"os"

	"github.com/google/subcommands"
)

func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")
	subcommands.Register(&tokenizeCmd{}, "")
	subcommands.Register(&parseCmd{}, "")
	subcommands.Register(&checkCmd{}, "")
	subcommands.Register(&buildCmd{}, "")
	subcommands.Register(&runCmd{}, "")
	subcommands.Register(&replCmd{}, "")

	flag.Parse()
	ctx := context.Background()
	os.Exit(int(subcommands.Execute(ctx)))
}
