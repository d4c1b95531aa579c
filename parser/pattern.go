package parser

import (
	"shardc/ast"
	"shardc/token"
)

// parsePattern parses one match-arm pattern (spec.md §4.3.4): a boolean or
// integer literal, a qualified path (an enum variant or named constant), a
// wildcard "_", or a bare identifier binding.
func parsePattern(s *Stream) (ast.Pattern, error) {
	tok := s.Peek()
	switch tok.TokenType {
	case token.TRUE, token.FALSE:
		s.Next()
		return ast.Pattern{Kind: ast.PatternBoolLiteral, BoolValue: tok.TokenType == token.TRUE, Loc: tok}, nil
	case token.INT:
		s.Next()
		return ast.Pattern{Kind: ast.PatternIntLiteral, IntValue: tok, Loc: tok}, nil
	case token.UNDERSCORE:
		s.Next()
		return ast.Pattern{Kind: ast.PatternWildcard, Loc: tok}, nil
	case token.IDENTIFIER:
		if s.PeekAt(1).TokenType == token.COLON_COLON {
			path, err := parsePath(s)
			if err != nil {
				return ast.Pattern{}, err
			}
			return ast.Pattern{Kind: ast.PatternPath, Path: path, Loc: tok}, nil
		}
		s.Next()
		return ast.Pattern{Kind: ast.PatternBinding, Name: tok, Loc: tok}, nil
	}
	return ast.Pattern{}, s.errUnexpected("a pattern")
}
