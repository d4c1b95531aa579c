package parser

import (
	"shardc/ast"
	"shardc/token"
)

// tupleState names the states of the explicit state machine used to
// disambiguate "()" (unit), "(e)" (grouping), and "(e,)"/"(e, e, ...)"
// (tuple), grounded on original_source/compiler/src/syntax/parser/expression/tuple.rs.
// This is one of only two terminal forms that need a real state machine
// rather than the cascade's isMatch-loop shape (see parser/conditional.go).
type tupleState int

const (
	tsParenLeft tupleState = iota
	tsExprOrParenRight
	tsCommaOrParenRight
)

// parseTuple implements the state machine described above.
func parseTuple(s *Stream) (ast.Expression, error) {
	state := tsParenLeft
	var lpa token.Token
	var elements []ast.Expression

	for {
		switch state {
		case tsParenLeft:
			tok, err := s.Expect(token.LPA, "'('")
			if err != nil {
				return nil, err
			}
			lpa = tok
			if s.Check(token.RPA) {
				s.Next()
				return ast.TupleExpr{Elements: nil, Loc: ast.Loc(lpa)}, nil
			}
			state = tsExprOrParenRight

		case tsExprOrParenRight:
			expr, err := parseExpression(s)
			if err != nil {
				return nil, err
			}
			elements = append(elements, expr)
			if s.Check(token.RPA) {
				s.Next()
				if len(elements) == 1 {
					return ast.Grouping{Expression: elements[0], Loc: ast.Loc(lpa)}, nil
				}
				return ast.TupleExpr{Elements: elements, Loc: ast.Loc(lpa)}, nil
			}
			state = tsCommaOrParenRight

		case tsCommaOrParenRight:
			if _, err := s.Expect(token.COMMA, "',' or ')'"); err != nil {
				return nil, err
			}
			if s.Check(token.RPA) {
				s.Next()
				return ast.TupleExpr{Elements: elements, Loc: ast.Loc(lpa)}, nil
			}
			state = tsExprOrParenRight
		}
	}
}
