package parser

import (
	"shardc/ast"
	"shardc/token"
)

// Parse turns a fully scanned token stream into a sequence of top-level
// statements (spec.md §4.3): function, struct, enum, type-alias, const,
// static, mod, use, and impl declarations, in source order. tokens must
// end with an EOF sentinel, matching lexer.Scan's contract.
func Parse(tokens []token.Token) ([]ast.Stmt, error) {
	s := NewStream(tokens)
	var items []ast.Stmt
	for !s.AtEnd() {
		item, err := parseStatement(s)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}
