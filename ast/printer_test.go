package ast

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"shardc/token"
)

func TestPrintASTJSON_ExpressionStmtLiteral(t *testing.T) {
	stmts := []Stmt{
		ExpressionStmt{Expression: Literal{Value: 42}},
	}

	jsonString, err := PrintASTJSON(stmts)
	if err != nil {
		t.Fatalf("PrintASTJSON error: %v", err)
	}

	var out []map[string]any
	if err := json.Unmarshal([]byte(jsonString), &out); err != nil {
		t.Fatalf("unmarshal json: %v", err)
	}

	if len(out) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(out))
	}

	node := out[0]
	if typ, ok := node["type"].(string); !ok || typ != "ExpressionStmt" {
		t.Fatalf("expected type ExpressionStmt, got %v", node["type"])
	}

	expr := node["expression"]
	if num, ok := expr.(float64); !ok || num != 42 {
		t.Fatalf("expected expression 42, got %v", expr)
	}
}

func TestPrintASTJSON_LetStmt_NilInitializer(t *testing.T) {
	name := token.CreateLiteralToken(token.IDENTIFIER, nil, "x", 0, 0)
	stmts := []Stmt{
		LetStmt{Name: name, Initializer: nil},
	}

	jsonStr, err := PrintASTJSON(stmts)
	if err != nil {
		t.Fatalf("PrintASTJSON error: %v", err)
	}

	var out []map[string]any
	if err := json.Unmarshal([]byte(jsonStr), &out); err != nil {
		t.Fatalf("unmarshal json: %v", err)
	}

	if len(out) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(out))
	}

	node := out[0]
	if typ, ok := node["type"].(string); !ok || typ != "LetStmt" {
		t.Fatalf("expected type LetStmt, got %v", node["type"])
	}

	if nameVal, ok := node["name"].(string); !ok || nameVal != "x" {
		t.Fatalf("expected name 'x', got %v", node["name"])
	}

	if initVal, exists := node["initializer"]; !exists || initVal != nil {
		t.Fatalf("expected initializer to be nil, got %v", initVal)
	}
}

func TestPrintASTJSON_BinaryExpression(t *testing.T) {
	stmts := []Stmt{
		ExpressionStmt{Expression: Binary{
			Left:     Literal{Value: 1},
			Operator: token.CreateToken(token.ADD, 0, 0),
			Right:    Literal{Value: 2},
		}},
	}

	jsonStr, err := PrintASTJSON(stmts)
	if err != nil {
		t.Fatalf("PrintASTJSON error: %v", err)
	}

	var out []map[string]any
	if err := json.Unmarshal([]byte(jsonStr), &out); err != nil {
		t.Fatalf("unmarshal json: %v", err)
	}

	node := out[0]
	expr, ok := node["expression"].(map[string]any)
	if !ok {
		t.Fatalf("expected expression object, got %v", node["expression"])
	}

	if typ, ok := expr["type"].(string); !ok || typ != "Binary" {
		t.Fatalf("expected Binary expression, got %v", expr["type"])
	}
	if op, ok := expr["operator"].(string); !ok || op != "+" {
		t.Fatalf("expected operator '+', got %v", expr["operator"])
	}
	if left, ok := expr["left"].(float64); !ok || left != 1 {
		t.Fatalf("expected left 1, got %v", expr["left"])
	}
	if right, ok := expr["right"].(float64); !ok || right != 2 {
		t.Fatalf("expected right 2, got %v", expr["right"])
	}
}

func TestPrintASTJSON_MatchWithWildcard(t *testing.T) {
	scrutinee := Literal{Value: int64(1)}
	arms := []MatchArm{
		{Pattern: Pattern{Kind: PatternIntLiteral, IntValue: token.CreateLiteralToken(token.INT, int64(1), "1", 0, 0)}, Body: Literal{Value: "one"}},
		{Pattern: Pattern{Kind: PatternWildcard}, Body: Literal{Value: "other"}},
	}
	stmts := []Stmt{
		ExpressionStmt{Expression: Match{Scrutinee: scrutinee, Arms: arms}},
	}

	jsonStr, err := PrintASTJSON(stmts)
	if err != nil {
		t.Fatalf("PrintASTJSON error: %v", err)
	}

	var out []map[string]any
	if err := json.Unmarshal([]byte(jsonStr), &out); err != nil {
		t.Fatalf("unmarshal json: %v", err)
	}

	expr := out[0]["expression"].(map[string]any)
	armsOut, ok := expr["arms"].([]any)
	if !ok || len(armsOut) != 2 {
		t.Fatalf("expected 2 arms, got %v", expr["arms"])
	}
	second := armsOut[1].(map[string]any)
	pattern := second["pattern"].(map[string]any)
	if pattern["kind"] != "wildcard" {
		t.Fatalf("expected wildcard pattern, got %v", pattern["kind"])
	}
}

func TestWriteASTJSONToFile(t *testing.T) {
	stmts := []Stmt{
		ExpressionStmt{Expression: Literal{Value: "hello shardc!"}},
	}

	filePath := filepath.Join(os.TempDir(), "shardc_ast_printer_test.json")
	defer os.Remove(filePath)

	if err := WriteASTJSONToFile(stmts, filePath); err != nil {
		t.Fatalf("WriteASTJSONToFile error: %v", err)
	}

	bytes, err := os.ReadFile(filePath)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}

	var out []map[string]any
	if err := json.Unmarshal(bytes, &out); err != nil {
		t.Fatalf("unmarshal json: %v", err)
	}

	node := out[0]
	if expr, ok := node["expression"].(string); !ok || expr != "hello shardc!" {
		t.Fatalf("expected expression 'hello shardc!', got %v", node["expression"])
	}
}
