package parser

import (
	"shardc/ast"
	"shardc/token"
)

// declStart lists the token types that unambiguously begin a statement
// inside a block, as opposed to a bare expression that might itself be the
// block's trailing result.
var declStart = map[token.TokenType]bool{
	token.LET: true, token.CONST: true, token.STATIC: true, token.TYPE: true,
	token.STRUCT: true, token.ENUM: true, token.FN: true, token.MODULE: true,
	token.USE: true, token.REQUIRE: true, token.IMPL: true,
	token.FOR: true, token.WHILE: true, token.RETURN: true,
}

// parseBlockExpr parses "{ statement* expression? }" (spec.md §4.3.5).
// Every statement other than the optional trailing expression must be
// terminated by ';' — including an expression statement — so a
// block-valued expression like "if" used mid-block still needs its own
// semicolon; only the final, unterminated expression becomes Result.
func parseBlockExpr(s *Stream) (ast.Block, error) {
	lcur, err := s.Expect(token.LCUR, "'{'")
	if err != nil {
		return ast.Block{}, err
	}
	var stmts []ast.Stmt
	var result ast.Expression
	for !s.Check(token.RCUR) && !s.AtEnd() {
		if declStart[s.Peek().TokenType] {
			stmt, err := parseStatement(s)
			if err != nil {
				return ast.Block{}, err
			}
			stmts = append(stmts, stmt)
			continue
		}
		expr, err := parseExpression(s)
		if err != nil {
			return ast.Block{}, err
		}
		if s.Check(token.SEMICOLON) {
			s.Next()
			stmts = append(stmts, ast.ExpressionStmt{Expression: expr})
			continue
		}
		if s.Check(token.RCUR) {
			result = expr
			break
		}
		return ast.Block{}, s.errUnexpected("';' or '}'")
	}
	if _, err := s.Expect(token.RCUR, "'}'"); err != nil {
		return ast.Block{}, err
	}
	return ast.Block{Statements: stmts, Result: result, Loc: ast.Loc(lcur)}, nil
}
