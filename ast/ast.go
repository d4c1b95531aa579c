// Package ast defines the tagged-variant trees produced by the parser:
// expressions, statements, type annotations, and patterns. Every node
// carries a source Location, following the visitor design pattern used
// throughout this compiler for traversal (name resolution, type checking,
// constant folding, and bytecode emission all walk the same tree shape
// through a different Visitor implementation).
package ast

import "shardc/token"

// Location is a 1-based (line, column) source coordinate, attached to every
// AST node so every diagnostic produced while walking the tree can point
// back at the offending source text.
type Location struct {
	Line   int32
	Column int
}

// Loc extracts a Location from a token.
func Loc(tok token.Token) Location {
	return Location{Line: tok.Line, Column: tok.Column}
}
