package ast

import (
	"testing"

	"shardc/token"
)

func TestLetStmtBuilder(t *testing.T) {
	name := token.CreateLiteralToken(token.IDENTIFIER, nil, "x", 1, 1)
	stmt := NewLetStmtBuilder(name).
		SetMutable().
		SetInitializer(Literal{Value: int64(1)}).
		Finish()

	if stmt.Name.Lexeme != "x" {
		t.Fatalf("expected name 'x', got %q", stmt.Name.Lexeme)
	}
	if !stmt.Mutable {
		t.Fatal("expected Mutable to be true")
	}
	if stmt.Type != nil {
		t.Fatalf("expected Type to remain unset, got %v", stmt.Type)
	}
	if stmt.Initializer == nil {
		t.Fatal("expected Initializer to be set")
	}
}

func TestFnDeclStmtBuilder_PanicsWithoutBody(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic when Finish is called before SetBody")
		}
	}()
	name := token.CreateLiteralToken(token.IDENTIFIER, nil, "f", 1, 1)
	NewFnDeclStmtBuilder(name).Finish()
}

func TestFnDeclStmtBuilder(t *testing.T) {
	name := token.CreateLiteralToken(token.IDENTIFIER, nil, "add", 1, 1)
	u8 := TypeAnnotation{Kind: TypeKindPrimitiveInt, BitLength: 8}
	fn := NewFnDeclStmtBuilder(name).
		AddParam(Param{Name: token.CreateLiteralToken(token.IDENTIFIER, nil, "a", 1, 1), Type: u8}).
		AddParam(Param{Name: token.CreateLiteralToken(token.IDENTIFIER, nil, "b", 1, 1), Type: u8}).
		SetReturnType(u8).
		SetBody(Block{}).
		Finish()

	if len(fn.Params) != 2 {
		t.Fatalf("expected 2 params, got %d", len(fn.Params))
	}
	if fn.ReturnType == nil || fn.ReturnType.BitLength != 8 {
		t.Fatalf("expected return type u8, got %v", fn.ReturnType)
	}
}

func TestIfExprBuilder_NoElse(t *testing.T) {
	ifExpr := NewIfExprBuilder(Literal{Value: true}, Block{}, Location{Line: 1}).Finish()
	if ifExpr.Else != nil {
		t.Fatalf("expected no else branch, got %v", ifExpr.Else)
	}
}

func TestStructLiteralBuilder(t *testing.T) {
	name := token.CreateLiteralToken(token.IDENTIFIER, nil, "Point", 1, 1)
	lit := NewStructLiteralBuilder(name, Location{Line: 1}).
		AddField(StructLiteralField{Name: token.CreateLiteralToken(token.IDENTIFIER, nil, "x", 1, 1), Value: Literal{Value: int64(1)}}).
		AddField(StructLiteralField{Name: token.CreateLiteralToken(token.IDENTIFIER, nil, "y", 1, 1), Value: Literal{Value: int64(2)}}).
		Finish()

	if len(lit.Fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(lit.Fields))
	}
}
