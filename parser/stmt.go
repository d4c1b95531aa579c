package parser

import (
	"shardc/ast"
	"shardc/token"
)

// parseStatement dispatches to the sub-parser for whichever declaration or
// control-flow keyword is current, falling back to a bare expression
// statement.
func parseStatement(s *Stream) (ast.Stmt, error) {
	switch s.Peek().TokenType {
	case token.LET:
		return parseLet(s)
	case token.CONST:
		return parseConst(s)
	case token.STATIC:
		return parseStatic(s)
	case token.TYPE:
		return parseTypeAlias(s)
	case token.STRUCT:
		return parseStructDecl(s)
	case token.ENUM:
		return parseEnumDecl(s)
	case token.FN:
		decl, err := parseFnDecl(s)
		if err != nil {
			return nil, err
		}
		return decl, nil
	case token.MODULE:
		return parseMod(s)
	case token.USE:
		return parseUse(s)
	case token.REQUIRE:
		return parseRequire(s)
	case token.IMPL:
		return parseImpl(s)
	case token.FOR:
		return parseFor(s)
	case token.WHILE:
		return parseWhile(s)
	case token.RETURN:
		return parseReturn(s)
	default:
		expr, err := parseExpression(s)
		if err != nil {
			return nil, err
		}
		if _, err := s.Expect(token.SEMICOLON, "';'"); err != nil {
			return nil, err
		}
		return ast.ExpressionStmt{Expression: expr}, nil
	}
}

func parseLet(s *Stream) (ast.Stmt, error) {
	if _, err := s.Expect(token.LET, "'let'"); err != nil {
		return nil, err
	}
	mutable := false
	if s.Check(token.MUT) {
		s.Next()
		mutable = true
	}
	name, err := s.Expect(token.IDENTIFIER, "identifier")
	if err != nil {
		return nil, err
	}
	b := ast.NewLetStmtBuilder(name)
	if mutable {
		b.SetMutable()
	}
	if s.Check(token.COLON) {
		s.Next()
		t, err := parseType(s)
		if err != nil {
			return nil, err
		}
		b.SetType(t)
	}
	if s.Check(token.ASSIGN) {
		s.Next()
		init, err := parseExpression(s)
		if err != nil {
			return nil, err
		}
		b.SetInitializer(init)
	}
	if _, err := s.Expect(token.SEMICOLON, "';'"); err != nil {
		return nil, err
	}
	return b.Finish(), nil
}

func parseConst(s *Stream) (ast.Stmt, error) {
	if _, err := s.Expect(token.CONST, "'const'"); err != nil {
		return nil, err
	}
	name, err := s.Expect(token.IDENTIFIER, "identifier")
	if err != nil {
		return nil, err
	}
	if _, err := s.Expect(token.COLON, "':'"); err != nil {
		return nil, err
	}
	t, err := parseType(s)
	if err != nil {
		return nil, err
	}
	if _, err := s.Expect(token.ASSIGN, "'='"); err != nil {
		return nil, err
	}
	init, err := parseExpression(s)
	if err != nil {
		return nil, err
	}
	if _, err := s.Expect(token.SEMICOLON, "';'"); err != nil {
		return nil, err
	}
	return ast.ConstStmt{Name: name, Type: t, Initializer: init}, nil
}

func parseStatic(s *Stream) (ast.Stmt, error) {
	if _, err := s.Expect(token.STATIC, "'static'"); err != nil {
		return nil, err
	}
	mutable := false
	if s.Check(token.MUT) {
		s.Next()
		mutable = true
	}
	name, err := s.Expect(token.IDENTIFIER, "identifier")
	if err != nil {
		return nil, err
	}
	if _, err := s.Expect(token.COLON, "':'"); err != nil {
		return nil, err
	}
	t, err := parseType(s)
	if err != nil {
		return nil, err
	}
	if _, err := s.Expect(token.ASSIGN, "'='"); err != nil {
		return nil, err
	}
	init, err := parseExpression(s)
	if err != nil {
		return nil, err
	}
	if _, err := s.Expect(token.SEMICOLON, "';'"); err != nil {
		return nil, err
	}
	return ast.StaticStmt{Name: name, Mutable: mutable, Type: t, Initializer: init}, nil
}

func parseTypeAlias(s *Stream) (ast.Stmt, error) {
	if _, err := s.Expect(token.TYPE, "'type'"); err != nil {
		return nil, err
	}
	name, err := s.Expect(token.IDENTIFIER, "identifier")
	if err != nil {
		return nil, err
	}
	if _, err := s.Expect(token.ASSIGN, "'='"); err != nil {
		return nil, err
	}
	t, err := parseType(s)
	if err != nil {
		return nil, err
	}
	if _, err := s.Expect(token.SEMICOLON, "';'"); err != nil {
		return nil, err
	}
	return ast.TypeAliasStmt{Name: name, Aliased: t}, nil
}

func parseStructDecl(s *Stream) (ast.Stmt, error) {
	if _, err := s.Expect(token.STRUCT, "'struct'"); err != nil {
		return nil, err
	}
	name, err := s.Expect(token.IDENTIFIER, "identifier")
	if err != nil {
		return nil, err
	}
	if _, err := s.Expect(token.LCUR, "'{'"); err != nil {
		return nil, err
	}
	var fields []ast.StructField
	for !s.Check(token.RCUR) {
		fname, err := s.Expect(token.IDENTIFIER, "field name")
		if err != nil {
			return nil, err
		}
		if _, err := s.Expect(token.COLON, "':'"); err != nil {
			return nil, err
		}
		ft, err := parseType(s)
		if err != nil {
			return nil, err
		}
		fields = append(fields, ast.StructField{Name: fname, Type: ft})
		if s.Check(token.COMMA) {
			s.Next()
			continue
		}
		break
	}
	if _, err := s.Expect(token.RCUR, "'}'"); err != nil {
		return nil, err
	}
	if s.Check(token.SEMICOLON) {
		s.Next()
	}
	return ast.StructDeclStmt{Name: name, Fields: fields}, nil
}

func parseEnumDecl(s *Stream) (ast.Stmt, error) {
	if _, err := s.Expect(token.ENUM, "'enum'"); err != nil {
		return nil, err
	}
	name, err := s.Expect(token.IDENTIFIER, "identifier")
	if err != nil {
		return nil, err
	}
	if _, err := s.Expect(token.LCUR, "'{'"); err != nil {
		return nil, err
	}
	var variants []ast.EnumVariant
	for !s.Check(token.RCUR) {
		vname, err := s.Expect(token.IDENTIFIER, "variant name")
		if err != nil {
			return nil, err
		}
		var value ast.Expression
		if s.Check(token.ASSIGN) {
			s.Next()
			v, err := parseExpression(s)
			if err != nil {
				return nil, err
			}
			value = v
		}
		variants = append(variants, ast.EnumVariant{Name: vname, Value: value})
		if s.Check(token.COMMA) {
			s.Next()
			continue
		}
		break
	}
	if _, err := s.Expect(token.RCUR, "'}'"); err != nil {
		return nil, err
	}
	if s.Check(token.SEMICOLON) {
		s.Next()
	}
	return ast.EnumDeclStmt{Name: name, Variants: variants}, nil
}

// parseFnDecl parses "fn name(params) -> RetType? { body }". A leading
// "self" or "mut self" parameter (valid only inside an impl block) is
// accepted without a type annotation; the semantic analyzer resolves Self
// from the enclosing ImplStmt.
func parseFnDecl(s *Stream) (ast.FnDeclStmt, error) {
	if _, err := s.Expect(token.FN, "'fn'"); err != nil {
		return ast.FnDeclStmt{}, err
	}
	name, err := s.Expect(token.IDENTIFIER, "identifier")
	if err != nil {
		return ast.FnDeclStmt{}, err
	}
	b := ast.NewFnDeclStmtBuilder(name)
	if _, err := s.Expect(token.LPA, "'('"); err != nil {
		return ast.FnDeclStmt{}, err
	}
	for !s.Check(token.RPA) {
		if s.Check(token.MUT) && s.PeekAt(1).TokenType == token.SELF {
			s.Next()
		}
		if s.Check(token.SELF) {
			selfTok := s.Next()
			b.AddParam(ast.Param{Name: selfTok, Type: ast.TypeAnnotation{Kind: ast.TypeKindSelf, Loc: selfTok}})
		} else {
			pname, err := s.Expect(token.IDENTIFIER, "parameter name")
			if err != nil {
				return ast.FnDeclStmt{}, err
			}
			if _, err := s.Expect(token.COLON, "':'"); err != nil {
				return ast.FnDeclStmt{}, err
			}
			pt, err := parseType(s)
			if err != nil {
				return ast.FnDeclStmt{}, err
			}
			b.AddParam(ast.Param{Name: pname, Type: pt})
		}
		if s.Check(token.COMMA) {
			s.Next()
			continue
		}
		break
	}
	if _, err := s.Expect(token.RPA, "')'"); err != nil {
		return ast.FnDeclStmt{}, err
	}
	if s.Check(token.ARROW) {
		s.Next()
		rt, err := parseType(s)
		if err != nil {
			return ast.FnDeclStmt{}, err
		}
		b.SetReturnType(rt)
	}
	body, err := parseBlockExpr(s)
	if err != nil {
		return ast.FnDeclStmt{}, err
	}
	b.SetBody(body)
	return b.Finish(), nil
}

func parseMod(s *Stream) (ast.Stmt, error) {
	modTok, err := s.Expect(token.MODULE, "'mod'")
	if err != nil {
		return nil, err
	}
	name, err := s.Expect(token.IDENTIFIER, "identifier")
	if err != nil {
		return nil, err
	}
	if s.Check(token.SEMICOLON) {
		// External-file module declaration, e.g. "mod shapes;". Resolving
		// the referenced file is the driver's job (cmd/shardc), not the
		// parser's; Items stays nil.
		s.Next()
		return ast.ModStmt{Name: name}, nil
	}
	if _, err := s.Expect(token.LCUR, "'{'"); err != nil {
		return nil, err
	}
	var items []ast.Stmt
	for !s.Check(token.RCUR) && !s.AtEnd() {
		item, err := parseStatement(s)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if _, err := s.Expect(token.RCUR, "'}'"); err != nil {
		return nil, err
	}
	_ = modTok
	return ast.ModStmt{Name: name, Items: items}, nil
}

func parseUse(s *Stream) (ast.Stmt, error) {
	if _, err := s.Expect(token.USE, "'use'"); err != nil {
		return nil, err
	}
	path, err := parsePath(s)
	if err != nil {
		return nil, err
	}
	var alias token.Token
	if s.Check(token.AS) {
		s.Next()
		a, err := s.Expect(token.IDENTIFIER, "identifier")
		if err != nil {
			return nil, err
		}
		alias = a
	}
	if _, err := s.Expect(token.SEMICOLON, "';'"); err != nil {
		return nil, err
	}
	return ast.UseStmt{Path: path, Alias: alias}, nil
}

// parseRequire parses "require(condition);" or "require(condition, tag);",
// the source form of a circuit assertion (spec.md §4.3's Non-goals keep
// this as the only assertion construct; lowering to an Assert instruction
// happens in package bytecode).
func parseRequire(s *Stream) (ast.Stmt, error) {
	if _, err := s.Expect(token.REQUIRE, "'require'"); err != nil {
		return nil, err
	}
	if _, err := s.Expect(token.LPA, "'('"); err != nil {
		return nil, err
	}
	cond, err := parseExpression(s)
	if err != nil {
		return nil, err
	}
	var tag *token.Token
	if s.Check(token.COMMA) {
		s.Next()
		t, err := s.Expect(token.STRING, "a string tag")
		if err != nil {
			return nil, err
		}
		tag = &t
	}
	if _, err := s.Expect(token.RPA, "')'"); err != nil {
		return nil, err
	}
	if _, err := s.Expect(token.SEMICOLON, "';'"); err != nil {
		return nil, err
	}
	return ast.RequireStmt{Condition: cond, Tag: tag}, nil
}

func parseImpl(s *Stream) (ast.Stmt, error) {
	if _, err := s.Expect(token.IMPL, "'impl'"); err != nil {
		return nil, err
	}
	typeName, err := s.Expect(token.IDENTIFIER, "type name")
	if err != nil {
		return nil, err
	}
	if _, err := s.Expect(token.LCUR, "'{'"); err != nil {
		return nil, err
	}
	var methods []ast.FnDeclStmt
	for !s.Check(token.RCUR) && !s.AtEnd() {
		method, err := parseFnDecl(s)
		if err != nil {
			return nil, err
		}
		methods = append(methods, method)
	}
	if _, err := s.Expect(token.RCUR, "'}'"); err != nil {
		return nil, err
	}
	return ast.ImplStmt{TypeName: typeName, Methods: methods}, nil
}

// parseFor parses "for name in range { body }". Range is usually a Range
// expression but the grammar also accepts any other array-valued
// expression, which the emitter unrolls element by element.
func parseFor(s *Stream) (ast.Stmt, error) {
	forTok, err := s.Expect(token.FOR, "'for'")
	if err != nil {
		return nil, err
	}
	name, err := s.Expect(token.IDENTIFIER, "identifier")
	if err != nil {
		return nil, err
	}
	if _, err := s.Expect(token.IN, "'in'"); err != nil {
		return nil, err
	}
	prev := s.noStruct
	s.noStruct = true
	rangeExpr, err := parseExpression(s)
	s.noStruct = prev
	if err != nil {
		return nil, err
	}
	body, err := parseBlockExpr(s)
	if err != nil {
		return nil, err
	}
	return ast.ForStmt{Name: name, Range: rangeExpr, Body: body, Loc: ast.Loc(forTok)}, nil
}

func parseWhile(s *Stream) (ast.Stmt, error) {
	whileTok, err := s.Expect(token.WHILE, "'while'")
	if err != nil {
		return nil, err
	}
	prev := s.noStruct
	s.noStruct = true
	cond, err := parseExpression(s)
	s.noStruct = prev
	if err != nil {
		return nil, err
	}
	body, err := parseBlockExpr(s)
	if err != nil {
		return nil, err
	}
	return ast.WhileStmt{Condition: cond, Body: body, Loc: ast.Loc(whileTok)}, nil
}

func parseReturn(s *Stream) (ast.Stmt, error) {
	returnTok, err := s.Expect(token.RETURN, "'return'")
	if err != nil {
		return nil, err
	}
	var value ast.Expression
	if !s.Check(token.SEMICOLON) {
		v, err := parseExpression(s)
		if err != nil {
			return nil, err
		}
		value = v
	}
	if _, err := s.Expect(token.SEMICOLON, "';'"); err != nil {
		return nil, err
	}
	return ast.ReturnStmt{Value: value, Loc: ast.Loc(returnTok)}, nil
}
