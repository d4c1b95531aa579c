// Package parser implements the recursive-descent parser described by
// spec.md §4.3: a token.Token stream goes in, an ast.Stmt slice comes out.
// Grounded on the teacher's `parser/parser.go` precedence cascade
// (`expression -> assignment -> or -> and -> equality -> comparison ->
// term -> factor -> unary -> primary`, each an `isMatch(tokenTypes)` loop)
// and `parser/error.go`'s located `SyntaxError` — generalized to the
// source language's richer grammar and regrown with explicit per-state
// sub-parsers for the two constructs whose ambiguity genuinely needs one
// (tuple disambiguation, the conditional-as-expression else-if chain),
// per spec.md §4.3.2/§9's design notes.
package parser

import "shardc/token"

// Stream is a peekable adapter over a pre-scanned token slice (spec.md
// §4.2): the lexer still runs to completion before parsing starts (no
// streaming I/O, per spec.md §5), but the ~30 cooperating sub-parsers each
// hold a *Stream the way the teacher's Parser holds *Parser receivers,
// rather than re-deriving a slice index convention in every sub-parser.
type Stream struct {
	tokens []token.Token
	pos    int

	// noStruct suppresses struct-literal parsing at primary-expression
	// level. Set while parsing the condition of an if/while/for so that
	// "if x { ... }" parses x as the condition and { ... } as the body,
	// the way Rust restricts struct literals in the same position
	// (original_source/compiler/src/syntax/parser/expression/mod.rs).
	noStruct bool
}

// NewStream wraps a fully scanned token slice, which must end with an
// EOF sentinel (lexer.Scan's contract).
func NewStream(tokens []token.Token) *Stream {
	return &Stream{tokens: tokens}
}

// Peek inspects the current token without consuming it.
func (s *Stream) Peek() token.Token {
	if s.pos >= len(s.tokens) {
		return s.tokens[len(s.tokens)-1]
	}
	return s.tokens[s.pos]
}

// PeekAt inspects a token further ahead without consuming anything.
func (s *Stream) PeekAt(offset int) token.Token {
	idx := s.pos + offset
	if idx >= len(s.tokens) {
		return s.tokens[len(s.tokens)-1]
	}
	return s.tokens[idx]
}

// Next consumes and returns the current token.
func (s *Stream) Next() token.Token {
	tok := s.Peek()
	if s.pos < len(s.tokens) {
		s.pos++
	}
	return tok
}

// Check reports whether the current token has type tt, without consuming.
func (s *Stream) Check(tt token.TokenType) bool {
	return s.Peek().TokenType == tt
}

// Match consumes and returns true if the current token's type is any of
// tts; otherwise it leaves the stream untouched.
func (s *Stream) Match(tts ...token.TokenType) bool {
	for _, tt := range tts {
		if s.Check(tt) {
			s.Next()
			return true
		}
	}
	return false
}

// AtEnd reports whether the stream has reached its EOF sentinel.
func (s *Stream) AtEnd() bool {
	return s.Check(token.EOF)
}
