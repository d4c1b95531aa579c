package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/google/subcommands"

	"shardc/compiler"
	"shardc/vm"
)

// replCmd implements the "repl" command. Unlike the teacher's line-at-a-
// time bufio loop (this language has no top-level statements — every
// program is a tree of module items culminating in `fn main`), it reads
// one whole program per prompt, terminated by a blank line, then compiles
// and executes it on the reference executor. Grounded on the teacher's
// main.go REPL loop shape (prompt, read, evaluate, print, repeat, "exit"
// to quit) with github.com/chzyer/readline driving input instead of
// bufio.Scanner — the teacher declared this dependency but never wired
// it into anything.
type replCmd struct{}

func (*replCmd) Name() string     { return "repl" }
func (*replCmd) Synopsis() string { return "Interactively compile and run programs" }
func (*replCmd) Usage() string {
	return `repl:
  Read a whole program (terminated by a blank line), compile it, and run
  it on the reference executor. Type "exit" alone on a line to quit.
`
}
func (*replCmd) SetFlags(f *flag.FlagSet) {}

func (*replCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	fmt.Println("shardc repl — enter a program, blank line to compile+run, \"exit\" to quit")

	rl, err := readline.New("shardc> ")
	if err != nil {
		fmt.Println(err)
		return subcommands.ExitFailure
	}
	defer rl.Close()

	var buf strings.Builder
	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			return subcommands.ExitSuccess
		}
		if err != nil {
			fmt.Println(err)
			return subcommands.ExitFailure
		}
		if strings.TrimSpace(line) == "exit" {
			return subcommands.ExitSuccess
		}
		if strings.TrimSpace(line) == "" {
			source := buf.String()
			buf.Reset()
			if strings.TrimSpace(source) == "" {
				continue
			}
			runOnce(source)
			rl.SetPrompt("shardc> ")
			continue
		}
		buf.WriteString(line)
		buf.WriteString("\n")
		rl.SetPrompt("....... ")
	}
}

func runOnce(source string) {
	prog, err := compiler.CompileSource(source)
	if err != nil {
		fmt.Println(err)
		return
	}
	code, err := vm.Run(prog)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("exit %d\n", code)
}
