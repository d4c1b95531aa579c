package parser

import (
	"testing"

	"shardc/ast"
	"shardc/lexer"
	"shardc/token"
)

func scan(t *testing.T, src string) []token.Token {
	t.Helper()
	toks, err := lexer.New(src).Scan()
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	return toks
}

func TestParseLetAndFn(t *testing.T) {
	src := `
		fn add(a: u8, b: u8) -> u8 {
			let sum: u8 = a + b;
			sum
		}
	`
	stmts, err := Parse(scan(t, src))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if len(stmts) != 1 {
		t.Fatalf("expected 1 top-level item, got %d", len(stmts))
	}
	fn, ok := stmts[0].(ast.FnDeclStmt)
	if !ok {
		t.Fatalf("expected FnDeclStmt, got %T", stmts[0])
	}
	if fn.Name.Lexeme != "add" || len(fn.Params) != 2 {
		t.Fatalf("unexpected fn shape: %+v", fn)
	}
	if fn.ReturnType == nil || fn.ReturnType.Kind != ast.TypeKindPrimitiveInt {
		t.Fatalf("expected u8 return type, got %+v", fn.ReturnType)
	}
}

func TestTupleDisambiguation(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{"();", "TupleExpr:0"},
		{"(1);", "Grouping"},
		{"(1,);", "TupleExpr:1"},
		{"(1, 2);", "TupleExpr:2"},
	}
	for _, c := range cases {
		stmts, err := Parse(scan(t, c.src))
		if err != nil {
			t.Fatalf("%q: parse error: %v", c.src, err)
		}
		exprStmt, ok := stmts[0].(ast.ExpressionStmt)
		if !ok {
			t.Fatalf("%q: expected ExpressionStmt, got %T", c.src, stmts[0])
		}
		switch e := exprStmt.Expression.(type) {
		case ast.TupleExpr:
			got := "TupleExpr:0"
			if len(e.Elements) == 1 {
				got = "TupleExpr:1"
			} else if len(e.Elements) == 2 {
				got = "TupleExpr:2"
			}
			if got != c.want {
				t.Errorf("%q: got %s, want %s", c.src, got, c.want)
			}
		case ast.Grouping:
			if c.want != "Grouping" {
				t.Errorf("%q: got Grouping, want %s", c.src, c.want)
			}
		default:
			t.Errorf("%q: unexpected expression type %T", c.src, e)
		}
	}
}

func TestConditionalElseIfChain(t *testing.T) {
	src := `if a { 1 } else if b { 2 } else { 3 };`
	stmts, err := Parse(scan(t, src))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	top, ok := stmts[0].(ast.ExpressionStmt).Expression.(ast.IfExpr)
	if !ok {
		t.Fatalf("expected IfExpr, got %T", stmts[0])
	}
	nested, ok := top.Else.(ast.IfExpr)
	if !ok {
		t.Fatalf("expected nested else-if IfExpr, got %T", top.Else)
	}
	if _, ok := nested.Else.(ast.Block); !ok {
		t.Fatalf("expected terminal else block, got %T", nested.Else)
	}
}

func TestRequireWithTag(t *testing.T) {
	stmts, err := Parse(scan(t, `require(x == y, "balance check");`))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	req, ok := stmts[0].(ast.RequireStmt)
	if !ok {
		t.Fatalf("expected RequireStmt, got %T", stmts[0])
	}
	if req.Tag == nil || req.Tag.Literal != "balance check" {
		t.Fatalf("unexpected tag: %+v", req.Tag)
	}
}

func TestForRangeLoop(t *testing.T) {
	stmts, err := Parse(scan(t, `fn main() { for i in 0..=5 { require(i < 10); } }`))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	fn := stmts[0].(ast.FnDeclStmt)
	forStmt, ok := fn.Body.Statements[0].(ast.ForStmt)
	if !ok {
		t.Fatalf("expected ForStmt, got %T", fn.Body.Statements[0])
	}
	rng, ok := forStmt.Range.(ast.Range)
	if !ok || !rng.Inclusive {
		t.Fatalf("expected inclusive range, got %+v", forStmt.Range)
	}
}

func TestAssignThroughFieldAndIndex(t *testing.T) {
	stmts, err := Parse(scan(t, `fn main() { p.x = 1; arr[0] = 2; }`))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	fn := stmts[0].(ast.FnDeclStmt)
	assign1 := fn.Body.Statements[0].(ast.ExpressionStmt).Expression.(ast.Assign)
	if _, ok := assign1.Target.(ast.FieldAccess); !ok {
		t.Fatalf("expected FieldAccess target, got %T", assign1.Target)
	}
	assign2 := fn.Body.Statements[1].(ast.ExpressionStmt).Expression.(ast.Assign)
	if _, ok := assign2.Target.(ast.Index); !ok {
		t.Fatalf("expected Index target, got %T", assign2.Target)
	}
}

func TestMatchExpression(t *testing.T) {
	src := `fn main() { match x { 0 => 1, _ => 2, } }`
	stmts, err := Parse(scan(t, src))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	fn := stmts[0].(ast.FnDeclStmt)
	m, ok := fn.Body.Result.(ast.Match)
	if !ok {
		t.Fatalf("expected Match result, got %T", fn.Body.Result)
	}
	if len(m.Arms) != 2 || !m.Arms[1].Pattern.IsWildcard() {
		t.Fatalf("unexpected arms: %+v", m.Arms)
	}
}

func TestStructLiteralNotConfusedWithIfBlock(t *testing.T) {
	src := `fn main() { if Flag { 1 } else { 2 } }`
	stmts, err := Parse(scan(t, src))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	fn := stmts[0].(ast.FnDeclStmt)
	ifExpr, ok := fn.Body.Result.(ast.IfExpr)
	if !ok {
		t.Fatalf("expected IfExpr, got %T", fn.Body.Result)
	}
	if _, ok := ifExpr.Condition.(ast.Variable); !ok {
		t.Fatalf("expected plain variable condition (no struct literal), got %T", ifExpr.Condition)
	}
}
