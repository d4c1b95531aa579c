package parser

import (
	"shardc/ast"
	"shardc/token"
)

// parseType parses a type annotation (spec.md §4.3's type grammar): a
// primitive integer name, "field", "bool", "Self", a unit/grouped/tuple
// parenthesized form, an array "[T; n]", or a named (possibly path
// qualified) reference.
func parseType(s *Stream) (ast.TypeAnnotation, error) {
	tok := s.Peek()
	switch tok.TokenType {
	case token.UINT_TYPE:
		s.Next()
		return ast.TypeAnnotation{Kind: ast.TypeKindPrimitiveInt, Signed: false, BitLength: tok.Literal.(int), Loc: tok}, nil
	case token.INT_TYPE:
		s.Next()
		return ast.TypeAnnotation{Kind: ast.TypeKindPrimitiveInt, Signed: true, BitLength: tok.Literal.(int), Loc: tok}, nil
	case token.FIELD:
		s.Next()
		return ast.TypeAnnotation{Kind: ast.TypeKindField, Loc: tok}, nil
	case token.BOOL:
		s.Next()
		return ast.TypeAnnotation{Kind: ast.TypeKindBool, Loc: tok}, nil
	case token.SELF:
		s.Next()
		return ast.TypeAnnotation{Kind: ast.TypeKindSelf, Loc: tok}, nil
	case token.LBRACKET:
		return parseArrayType(s, tok)
	case token.LPA:
		return parseParenType(s, tok)
	case token.IDENTIFIER:
		path, err := parsePath(s)
		if err != nil {
			return ast.TypeAnnotation{}, err
		}
		return ast.TypeAnnotation{Kind: ast.TypeKindNamed, Name: path, Loc: tok}, nil
	}
	return ast.TypeAnnotation{}, s.errUnexpected("a type")
}

func parseArrayType(s *Stream, lbracket token.Token) (ast.TypeAnnotation, error) {
	s.Next() // consume '['
	elem, err := parseType(s)
	if err != nil {
		return ast.TypeAnnotation{}, err
	}
	if _, err := s.Expect(token.SEMICOLON, "';'"); err != nil {
		return ast.TypeAnnotation{}, err
	}
	size, err := parseExpression(s)
	if err != nil {
		return ast.TypeAnnotation{}, err
	}
	if _, err := s.Expect(token.RBRACKET, "']'"); err != nil {
		return ast.TypeAnnotation{}, err
	}
	return ast.TypeAnnotation{Kind: ast.TypeKindArray, Element: &elem, Size: size, Loc: lbracket}, nil
}

// parseParenType handles "()" (unit), "(T)" (plain grouping, equivalent to
// T), and "(T, T, ...)" (tuple type) — the type-level counterpart of the
// value tuple's comma disambiguation.
func parseParenType(s *Stream, lpa token.Token) (ast.TypeAnnotation, error) {
	s.Next() // consume '('
	if s.Check(token.RPA) {
		s.Next()
		return ast.TypeAnnotation{Kind: ast.TypeKindUnit, Loc: lpa}, nil
	}
	first, err := parseType(s)
	if err != nil {
		return ast.TypeAnnotation{}, err
	}
	elements := []ast.TypeAnnotation{first}
	sawComma := false
	for s.Check(token.COMMA) {
		sawComma = true
		s.Next()
		if s.Check(token.RPA) {
			break
		}
		next, err := parseType(s)
		if err != nil {
			return ast.TypeAnnotation{}, err
		}
		elements = append(elements, next)
	}
	if _, err := s.Expect(token.RPA, "')'"); err != nil {
		return ast.TypeAnnotation{}, err
	}
	if !sawComma {
		return first, nil
	}
	return ast.TypeAnnotation{Kind: ast.TypeKindTuple, Elements: elements, Loc: lpa}, nil
}
