package parser

import (
	"shardc/ast"
	"shardc/token"
)

// conditionalState names the states of the explicit state machine driving
// "if cond { ... } else if cond { ... } else { ... }" chains, grounded on
// original_source/compiler/src/syntax/parser/expression/conditional.rs. The
// "else" branch of an IfExpr is itself either a nested IfExpr (another
// pass through this same state machine) or a terminal Block.
type conditionalState int

const (
	csKeywordIf conditionalState = iota
	csCondition
	csMainBlock
	csElseKeywordOrEnd
	csKeywordIfOrElseBlock
)

// parseConditional implements the state machine described above.
func parseConditional(s *Stream) (ast.Expression, error) {
	state := csKeywordIf
	var ifTok token.Token
	var cond ast.Expression
	var thenBlock ast.Block

	for {
		switch state {
		case csKeywordIf:
			tok, err := s.Expect(token.IF, "'if'")
			if err != nil {
				return nil, err
			}
			ifTok = tok
			state = csCondition

		case csCondition:
			prev := s.noStruct
			s.noStruct = true
			c, err := parseExpression(s)
			s.noStruct = prev
			if err != nil {
				return nil, err
			}
			cond = c
			state = csMainBlock

		case csMainBlock:
			b, err := parseBlockExpr(s)
			if err != nil {
				return nil, err
			}
			thenBlock = b
			state = csElseKeywordOrEnd

		case csElseKeywordOrEnd:
			if !s.Check(token.ELSE) {
				return ast.NewIfExprBuilder(cond, thenBlock, ast.Loc(ifTok)).Finish(), nil
			}
			s.Next()
			state = csKeywordIfOrElseBlock

		case csKeywordIfOrElseBlock:
			if s.Check(token.IF) {
				nested, err := parseConditional(s)
				if err != nil {
					return nil, err
				}
				return ast.NewIfExprBuilder(cond, thenBlock, ast.Loc(ifTok)).SetElse(nested).Finish(), nil
			}
			elseBlock, err := parseBlockExpr(s)
			if err != nil {
				return nil, err
			}
			return ast.NewIfExprBuilder(cond, thenBlock, ast.Loc(ifTok)).SetElse(elseBlock).Finish(), nil
		}
	}
}
