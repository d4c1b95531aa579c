package parser

import (
	"shardc/ast"
	"shardc/token"
)

// parseMatch parses "match scrutinee { pattern => expr, ... }". Arm bodies
// are full expressions, not blocks, so a multi-statement arm must wrap
// itself in "{ ... }" like any other block expression.
func parseMatch(s *Stream) (ast.Expression, error) {
	matchTok, err := s.Expect(token.MATCH, "'match'")
	if err != nil {
		return nil, err
	}
	prev := s.noStruct
	s.noStruct = true
	scrutinee, err := parseExpression(s)
	s.noStruct = prev
	if err != nil {
		return nil, err
	}
	if _, err := s.Expect(token.LCUR, "'{'"); err != nil {
		return nil, err
	}
	var arms []ast.MatchArm
	for !s.Check(token.RCUR) {
		pat, err := parsePattern(s)
		if err != nil {
			return nil, err
		}
		if _, err := s.Expect(token.FAT_ARROW, "'=>'"); err != nil {
			return nil, err
		}
		body, err := parseExpression(s)
		if err != nil {
			return nil, err
		}
		arms = append(arms, ast.MatchArm{Pattern: pat, Body: body})
		if s.Check(token.COMMA) {
			s.Next()
			continue
		}
		break
	}
	if _, err := s.Expect(token.RCUR, "'}'"); err != nil {
		return nil, err
	}
	return ast.Match{Scrutinee: scrutinee, Arms: arms, Loc: ast.Loc(matchTok)}, nil
}
