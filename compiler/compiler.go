// Package compiler wires the front end's passes into the single public
// entry point the external driver (out of scope per spec.md §1) calls:
// source text in, a linked bytecode.Program or a located diagnostic out.
//
// Grounded on the teacher's `ASTCompiler.CompileAST`, which already drew
// this exact boundary: a `defer`/`recover` converting the compiler's own
// internal-invariant panics into a returned error, so that nothing but a
// genuine programmer bug ever panics across this package's surface
// (spec.md §7: "panics are reserved for internal invariant violations").
package compiler

import (
	"fmt"
	"os"

	"shardc/bytecode"
	"shardc/diag"
	"shardc/lexer"
	"shardc/parser"
)

// Compile reads filename, lexes, parses, and emits it to a linked
// bytecode.Program. Any lexical, syntax, or semantic error is returned
// as-is (each already satisfies error and carries a source location);
// an internal invariant violation reaching this boundary is recovered and
// wrapped rather than propagated as a panic.
func Compile(filename string) (prog bytecode.Program, err error) {
	source, readErr := os.ReadFile(filename)
	if readErr != nil {
		return bytecode.Program{}, fmt.Errorf("reading %s: %w", filename, readErr)
	}
	return CompileSource(string(source))
}

// CompileSource runs the full pipeline over in-memory source text, for
// callers that don't have (or don't want) a file on disk — the REPL and
// tests.
func CompileSource(source string) (prog bytecode.Program, err error) {
	defer func() {
		if r := recover(); r != nil {
			if iv, ok := r.(diag.InvariantViolation); ok {
				err = iv
				return
			}
			panic(r)
		}
	}()

	tokens, lexErr := lexer.New(source).Scan()
	if lexErr != nil {
		return bytecode.Program{}, lexErr
	}
	items, parseErr := parser.Parse(tokens)
	if parseErr != nil {
		return bytecode.Program{}, parseErr
	}
	return bytecode.Emit(items)
}
