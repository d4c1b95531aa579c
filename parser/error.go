package parser

import (
	"fmt"

	"shardc/diag"
	"shardc/token"
)

// describe renders a token into the human-readable form diagnostics and
// "expected X, found Y" messages use.
func describe(tok token.Token) string {
	if tok.TokenType == token.EOF {
		return "end of input"
	}
	if tok.Lexeme != "" {
		return fmt.Sprintf("%q", tok.Lexeme)
	}
	return string(tok.TokenType)
}

// Expect consumes the current token if it has type tt, else returns a
// diag.SyntaxError carrying the offending lexeme and the list of expected
// alternatives (spec.md §4.3.6/§7).
func (s *Stream) Expect(tt token.TokenType, expected ...string) (token.Token, error) {
	if s.Check(tt) {
		return s.Next(), nil
	}
	if len(expected) == 0 {
		expected = []string{string(tt)}
	}
	tok := s.Peek()
	return token.Token{}, diag.NewSyntaxError(tok.Line, tok.Column, describe(tok), expected...)
}

// errUnexpected builds a located syntax error for "expected one of
// <alternatives>, found <offending lexeme>" without consuming anything.
func (s *Stream) errUnexpected(expected ...string) error {
	tok := s.Peek()
	return diag.NewSyntaxError(tok.Line, tok.Column, describe(tok), expected...)
}
