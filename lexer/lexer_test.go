package lexer

import (
	"shardc/token"
	"testing"
)

func scanOK(t *testing.T, src string) []token.Token {
	t.Helper()
	toks, err := New(src).Scan()
	if err != nil {
		t.Fatalf("Scan(%q) raised an error: %v", src, err)
	}
	return toks
}

func types(toks []token.Token) []token.TokenType {
	out := make([]token.TokenType, len(toks))
	for i, tok := range toks {
		out[i] = tok.TokenType
	}
	return out
}

func TestOperatorsSuccess(t *testing.T) {
	got := types(scanOK(t, "==/=*+>-<!=<=>=!"))
	want := []token.TokenType{
		token.EQUAL_EQUAL, token.DIV, token.ASSIGN, token.MULT, token.ADD,
		token.LARGER, token.SUB, token.LESS, token.NOT_EQUAL, token.LESS_EQUAL,
		token.LARGER_EQUAL, token.BANG, token.EOF,
	}
	if len(got) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestRangeAndPathSymbols(t *testing.T) {
	got := types(scanOK(t, ".. ..= :: -> =>"))
	want := []token.TokenType{token.DOT_DOT, token.DOT_DOT_EQUAL, token.COLON_COLON, token.ARROW, token.FAT_ARROW, token.EOF}
	if len(got) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestKeywordsAndIdentifiers(t *testing.T) {
	toks := scanOK(t, "let mut x = require")
	want := []token.TokenType{token.LET, token.MUT, token.IDENTIFIER, token.ASSIGN, token.REQUIRE, token.EOF}
	for i, tt := range want {
		if toks[i].TokenType != tt {
			t.Errorf("token %d = %v, want %v", i, toks[i].TokenType, tt)
		}
	}
}

func TestPrimitiveIntegerTypeNames(t *testing.T) {
	toks := scanOK(t, "u8 i248 field bool")
	if toks[0].TokenType != token.UINT_TYPE || toks[0].Literal != 8 {
		t.Errorf("u8 -> %v, literal %v", toks[0].TokenType, toks[0].Literal)
	}
	if toks[1].TokenType != token.INT_TYPE || toks[1].Literal != 248 {
		t.Errorf("i248 -> %v, literal %v", toks[1].TokenType, toks[1].Literal)
	}
	if toks[2].TokenType != token.FIELD {
		t.Errorf("field -> %v", toks[2].TokenType)
	}
	if toks[3].TokenType != token.BOOL {
		t.Errorf("bool -> %v", toks[3].TokenType)
	}
}

func TestIntegerLiteralPrefixes(t *testing.T) {
	toks := scanOK(t, "0x1F 0b101 0o17 42")
	want := []int64{31, 5, 15, 42}
	for i, w := range want {
		got, ok := toks[i].Literal.(int64)
		if !ok || got != w {
			t.Errorf("literal %d = %v, want %d", i, toks[i].Literal, w)
		}
	}
}

func TestStringLiteralWithEscapes(t *testing.T) {
	toks := scanOK(t, `"hello\nworld"`)
	if toks[0].TokenType != token.STRING || toks[0].Literal != "hello\nworld" {
		t.Errorf("got %v", toks[0])
	}
}

func TestComments(t *testing.T) {
	toks := scanOK(t, "let x = 1; // trailing comment\n/* block\ncomment */ let y = 2;")
	var kinds []token.TokenType
	for _, tok := range toks {
		kinds = append(kinds, tok.TokenType)
	}
	count := 0
	for _, k := range kinds {
		if k == token.LET {
			count++
		}
	}
	if count != 2 {
		t.Errorf("expected 2 'let' tokens once comments are skipped, got %d: %v", count, kinds)
	}
}

func TestUnterminatedStringIsError(t *testing.T) {
	_, err := New(`"unterminated`).Scan()
	if err == nil {
		t.Error("expected an error for an unterminated string literal")
	}
}

func TestUnterminatedBlockCommentIsError(t *testing.T) {
	_, err := New("/* never closed").Scan()
	if err == nil {
		t.Error("expected an error for an unterminated block comment")
	}
}

func TestUnexpectedCharacterIsError(t *testing.T) {
	_, err := New("let x = 1 @ 2;").Scan()
	if err == nil {
		t.Error("expected an error for an unexpected character")
	}
}
