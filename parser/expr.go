package parser

import (
	"shardc/ast"
	"shardc/token"
)

// parseExpression is the cascade's entry point (spec.md §4.3.1):
// assignment -> range -> logical-or -> logical-and -> comparison ->
// bitwise-or -> bitwise-xor -> bitwise-and -> shift -> additive ->
// multiplicative -> cast -> unary -> postfix -> primary. Every level below
// assignment keeps the teacher's isMatch(tokenTypes)-loop shape; only the
// tuple and conditional terminals get an explicit per-state sub-parser
// (parser/tuple.go, parser/conditional.go), per the grounding notes for
// this cascade.
func parseExpression(s *Stream) (ast.Expression, error) {
	return parseAssignment(s)
}

// isPlace reports whether expr is a valid assignment target: a bare
// variable, a field/tuple-index access, or an array index.
func isPlace(expr ast.Expression) bool {
	switch expr.(type) {
	case ast.Variable, ast.FieldAccess, ast.Index:
		return true
	default:
		return false
	}
}

func parseAssignment(s *Stream) (ast.Expression, error) {
	left, err := parseRange(s)
	if err != nil {
		return nil, err
	}
	if !s.Check(token.ASSIGN) {
		return left, nil
	}
	if !isPlace(left) {
		return nil, s.errUnexpected("a variable, field, or index on the left of '='")
	}
	eq := s.Next()
	right, err := parseAssignment(s) // right-associative
	if err != nil {
		return nil, err
	}
	return ast.Assign{Target: left, Value: right, Loc: ast.Loc(eq)}, nil
}

// parseRange handles ".." and "..=", which are non-associative: "a..b..c"
// is a syntax error, not a left-to-right chain.
func parseRange(s *Stream) (ast.Expression, error) {
	left, err := parseLogicalOr(s)
	if err != nil {
		return nil, err
	}
	if !s.Check(token.DOT_DOT) && !s.Check(token.DOT_DOT_EQUAL) {
		return left, nil
	}
	inclusive := s.Check(token.DOT_DOT_EQUAL)
	opTok := s.Next()
	right, err := parseLogicalOr(s)
	if err != nil {
		return nil, err
	}
	if s.Check(token.DOT_DOT) || s.Check(token.DOT_DOT_EQUAL) {
		return nil, s.errUnexpected("end of range expression")
	}
	return ast.Range{Low: left, High: right, Inclusive: inclusive, Loc: ast.Loc(opTok)}, nil
}

func parseLogicalOr(s *Stream) (ast.Expression, error) {
	left, err := parseLogicalAnd(s)
	if err != nil {
		return nil, err
	}
	for s.Check(token.OR) {
		op := s.Next()
		right, err := parseLogicalAnd(s)
		if err != nil {
			return nil, err
		}
		left = ast.Logical{Left: left, Operator: op, Right: right}
	}
	return left, nil
}

func parseLogicalAnd(s *Stream) (ast.Expression, error) {
	left, err := parseComparison(s)
	if err != nil {
		return nil, err
	}
	for s.Check(token.AND) {
		op := s.Next()
		right, err := parseComparison(s)
		if err != nil {
			return nil, err
		}
		left = ast.Logical{Left: left, Operator: op, Right: right}
	}
	return left, nil
}

var comparisonOps = []token.TokenType{
	token.LESS, token.LESS_EQUAL, token.LARGER, token.LARGER_EQUAL,
	token.EQUAL_EQUAL, token.NOT_EQUAL,
}

func isMatch(s *Stream, types []token.TokenType) (token.Token, bool) {
	for _, tt := range types {
		if s.Check(tt) {
			return s.Next(), true
		}
	}
	return token.Token{}, false
}

func parseComparison(s *Stream) (ast.Expression, error) {
	left, err := parseBitwiseOr(s)
	if err != nil {
		return nil, err
	}
	for {
		op, ok := isMatch(s, comparisonOps)
		if !ok {
			return left, nil
		}
		right, err := parseBitwiseOr(s)
		if err != nil {
			return nil, err
		}
		left = ast.Binary{Left: left, Operator: op, Right: right, Loc: ast.Loc(op)}
	}
}

func parseBitwiseOr(s *Stream) (ast.Expression, error) {
	left, err := parseBitwiseXor(s)
	if err != nil {
		return nil, err
	}
	for s.Check(token.PIPE) {
		op := s.Next()
		right, err := parseBitwiseXor(s)
		if err != nil {
			return nil, err
		}
		left = ast.Binary{Left: left, Operator: op, Right: right, Loc: ast.Loc(op)}
	}
	return left, nil
}

func parseBitwiseXor(s *Stream) (ast.Expression, error) {
	left, err := parseBitwiseAnd(s)
	if err != nil {
		return nil, err
	}
	for s.Check(token.CARET) {
		op := s.Next()
		right, err := parseBitwiseAnd(s)
		if err != nil {
			return nil, err
		}
		left = ast.Binary{Left: left, Operator: op, Right: right, Loc: ast.Loc(op)}
	}
	return left, nil
}

func parseBitwiseAnd(s *Stream) (ast.Expression, error) {
	left, err := parseShift(s)
	if err != nil {
		return nil, err
	}
	for s.Check(token.AMP) {
		op := s.Next()
		right, err := parseShift(s)
		if err != nil {
			return nil, err
		}
		left = ast.Binary{Left: left, Operator: op, Right: right, Loc: ast.Loc(op)}
	}
	return left, nil
}

var shiftOps = []token.TokenType{token.SHL, token.SHR}

func parseShift(s *Stream) (ast.Expression, error) {
	left, err := parseAdditive(s)
	if err != nil {
		return nil, err
	}
	for {
		op, ok := isMatch(s, shiftOps)
		if !ok {
			return left, nil
		}
		right, err := parseAdditive(s)
		if err != nil {
			return nil, err
		}
		left = ast.Binary{Left: left, Operator: op, Right: right, Loc: ast.Loc(op)}
	}
}

var additiveOps = []token.TokenType{token.ADD, token.SUB}

func parseAdditive(s *Stream) (ast.Expression, error) {
	left, err := parseMultiplicative(s)
	if err != nil {
		return nil, err
	}
	for {
		op, ok := isMatch(s, additiveOps)
		if !ok {
			return left, nil
		}
		right, err := parseMultiplicative(s)
		if err != nil {
			return nil, err
		}
		left = ast.Binary{Left: left, Operator: op, Right: right, Loc: ast.Loc(op)}
	}
}

var multiplicativeOps = []token.TokenType{token.MULT, token.DIV, token.MOD}

func parseMultiplicative(s *Stream) (ast.Expression, error) {
	left, err := parseCast(s)
	if err != nil {
		return nil, err
	}
	for {
		op, ok := isMatch(s, multiplicativeOps)
		if !ok {
			return left, nil
		}
		right, err := parseCast(s)
		if err != nil {
			return nil, err
		}
		left = ast.Binary{Left: left, Operator: op, Right: right, Loc: ast.Loc(op)}
	}
}

func parseCast(s *Stream) (ast.Expression, error) {
	left, err := parseUnary(s)
	if err != nil {
		return nil, err
	}
	for s.Check(token.AS) {
		asTok := s.Next()
		target, err := parseType(s)
		if err != nil {
			return nil, err
		}
		left = ast.Cast{Operand: left, Target: target, Loc: ast.Loc(asTok)}
	}
	return left, nil
}

var unaryOps = []token.TokenType{token.SUB, token.BANG, token.TILDE}

func parseUnary(s *Stream) (ast.Expression, error) {
	if op, ok := isMatch(s, unaryOps); ok {
		right, err := parseUnary(s)
		if err != nil {
			return nil, err
		}
		return ast.Unary{Operator: op, Right: right, Loc: ast.Loc(op)}, nil
	}
	return parsePostfix(s)
}

// parsePostfix handles field/tuple-index access, indexing, and calls, left
// associatively: "a.b[0](x)" chains all three in source order. A call
// whose callee is a "::"-qualified Path is a builtin invocation
// (std::... functions are the only qualified callables); anything else is
// an ordinary user call.
func parsePostfix(s *Stream) (ast.Expression, error) {
	expr, err := parsePrimary(s)
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case s.Check(token.DOT):
			s.Next()
			var field token.Token
			if s.Check(token.IDENTIFIER) || s.Check(token.INT) {
				field = s.Next()
			} else {
				return nil, s.errUnexpected("field name or tuple index")
			}
			expr = ast.FieldAccess{Target: expr, Field: field}
		case s.Check(token.LBRACKET):
			lb := s.Next()
			idx, err := parseExpression(s)
			if err != nil {
				return nil, err
			}
			if _, err := s.Expect(token.RBRACKET, "']'"); err != nil {
				return nil, err
			}
			expr = ast.Index{Array: expr, Index: idx, Loc: ast.Loc(lb)}
		case s.Check(token.LPA):
			lp := s.Next()
			args, err := parseArgList(s)
			if err != nil {
				return nil, err
			}
			if path, ok := expr.(ast.Path); ok {
				expr = ast.CallBuiltin{Path: path, Args: args, Loc: ast.Loc(lp)}
			} else {
				expr = ast.Call{Callee: expr, Args: args, Loc: ast.Loc(lp)}
			}
		default:
			return expr, nil
		}
	}
}

func parseArgList(s *Stream) ([]ast.Expression, error) {
	var args []ast.Expression
	for !s.Check(token.RPA) {
		arg, err := parseExpression(s)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if s.Check(token.COMMA) {
			s.Next()
			continue
		}
		break
	}
	if _, err := s.Expect(token.RPA, "')'"); err != nil {
		return nil, err
	}
	return args, nil
}

// parsePrimary parses the terminal operand: a literal, an identifier or
// path, a parenthesized/tuple expression, an array literal, a block, or a
// keyword-led expression (if/match).
func parsePrimary(s *Stream) (ast.Expression, error) {
	tok := s.Peek()
	switch tok.TokenType {
	case token.TRUE, token.FALSE:
		s.Next()
		return ast.Literal{Value: tok.TokenType == token.TRUE, Loc: ast.Loc(tok)}, nil
	case token.INT:
		s.Next()
		return ast.Literal{Value: tok, Loc: ast.Loc(tok)}, nil
	case token.STRING:
		s.Next()
		return ast.Literal{Value: tok.Literal, Loc: ast.Loc(tok)}, nil
	case token.SELF:
		s.Next()
		return ast.Variable{Name: tok}, nil
	case token.LPA:
		return parseTuple(s)
	case token.LBRACKET:
		return parseArrayLiteral(s)
	case token.LCUR:
		block, err := parseBlockExpr(s)
		if err != nil {
			return nil, err
		}
		return block, nil
	case token.IF:
		return parseConditional(s)
	case token.MATCH:
		return parseMatch(s)
	case token.IDENTIFIER:
		return parseIdentifierOrPath(s)
	}
	return nil, s.errUnexpected("an expression")
}

func parseIdentifierOrPath(s *Stream) (ast.Expression, error) {
	first := s.Next()
	if !s.Check(token.COLON_COLON) {
		if s.Check(token.LCUR) && !s.noStruct && startsUpper(first.Lexeme) {
			return parseStructLiteral(s, first)
		}
		return ast.Variable{Name: first}, nil
	}
	segments := []token.Token{first}
	for s.Check(token.COLON_COLON) {
		s.Next()
		seg, err := s.Expect(token.IDENTIFIER, "identifier")
		if err != nil {
			return nil, err
		}
		segments = append(segments, seg)
	}
	return ast.Path{Segments: segments}, nil
}

func startsUpper(name string) bool {
	return len(name) > 0 && name[0] >= 'A' && name[0] <= 'Z'
}

func parseStructLiteral(s *Stream, name token.Token) (ast.Expression, error) {
	lcur, err := s.Expect(token.LCUR, "'{'")
	if err != nil {
		return nil, err
	}
	b := ast.NewStructLiteralBuilder(name, ast.Loc(lcur))
	for !s.Check(token.RCUR) {
		fname, err := s.Expect(token.IDENTIFIER, "field name")
		if err != nil {
			return nil, err
		}
		if _, err := s.Expect(token.COLON, "':'"); err != nil {
			return nil, err
		}
		value, err := parseExpression(s)
		if err != nil {
			return nil, err
		}
		b.AddField(ast.StructLiteralField{Name: fname, Value: value})
		if s.Check(token.COMMA) {
			s.Next()
			continue
		}
		break
	}
	if _, err := s.Expect(token.RCUR, "'}'"); err != nil {
		return nil, err
	}
	return b.Finish(), nil
}

func parseArrayLiteral(s *Stream) (ast.Expression, error) {
	lb, err := s.Expect(token.LBRACKET, "'['")
	if err != nil {
		return nil, err
	}
	if s.Check(token.RBRACKET) {
		s.Next()
		return ast.ArrayList{Elements: nil, Loc: ast.Loc(lb)}, nil
	}
	first, err := parseExpression(s)
	if err != nil {
		return nil, err
	}
	if s.Check(token.SEMICOLON) {
		s.Next()
		size, err := parseExpression(s)
		if err != nil {
			return nil, err
		}
		if _, err := s.Expect(token.RBRACKET, "']'"); err != nil {
			return nil, err
		}
		return ast.ArrayRepeat{Element: first, Size: size, Loc: ast.Loc(lb)}, nil
	}
	elements := []ast.Expression{first}
	for s.Check(token.COMMA) {
		s.Next()
		if s.Check(token.RBRACKET) {
			break
		}
		next, err := parseExpression(s)
		if err != nil {
			return nil, err
		}
		elements = append(elements, next)
	}
	if _, err := s.Expect(token.RBRACKET, "']'"); err != nil {
		return nil, err
	}
	return ast.ArrayList{Elements: elements, Loc: ast.Loc(lb)}, nil
}
