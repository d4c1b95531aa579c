package parser

import (
	"shardc/ast"
	"shardc/token"
)

// parsePath reads a "::"-joined identifier chain: "name", "a::b", or
// "std::crypto::sha256".
func parsePath(s *Stream) (ast.Path, error) {
	first, err := s.Expect(token.IDENTIFIER, "identifier")
	if err != nil {
		return ast.Path{}, err
	}
	segments := []token.Token{first}
	for s.Check(token.COLON_COLON) {
		s.Next()
		seg, err := s.Expect(token.IDENTIFIER, "identifier")
		if err != nil {
			return ast.Path{}, err
		}
		segments = append(segments, seg)
	}
	return ast.Path{Segments: segments}, nil
}
