package token

import (
	"testing"
)

func TestCreateToken(t *testing.T) {
	tests := []struct {
		name      string
		tokenType TokenType
		line      int32
		column    int
		want      Token
	}{
		{
			name:      "Create ASSIGN token",
			tokenType: ASSIGN,
			line:      1,
			column:    3,
			want:      Token{TokenType: ASSIGN, Lexeme: "=", Line: 1, Column: 3},
		},
		{
			name:      "Create LCUR token",
			tokenType: LCUR,
			line:      2,
			column:    0,
			want:      Token{TokenType: LCUR, Lexeme: "{", Line: 2, Column: 0},
		},
		{
			name:      "Create DOT_DOT_EQUAL token",
			tokenType: DOT_DOT_EQUAL,
			line:      5,
			column:    9,
			want:      Token{TokenType: DOT_DOT_EQUAL, Lexeme: "..=", Line: 5, Column: 9},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CreateToken(tt.tokenType, tt.line, tt.column)
			if got != tt.want {
				t.Errorf("CreateToken() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCreateLiteralToken(t *testing.T) {
	got := CreateLiteralToken(IDENTIFIER, nil, "myVar", 1, 0)
	want := Token{TokenType: IDENTIFIER, Lexeme: "myVar", Line: 1, Column: 0}
	if got != want {
		t.Errorf("CreateLiteralToken() = %v, want %v", got, want)
	}
}

func TestIsPrimitiveIntegerName(t *testing.T) {
	tests := []struct {
		lexeme        string
		wantSigned    bool
		wantBitlength int
		wantOK        bool
	}{
		{"u8", false, 8, true},
		{"i248", true, 248, true},
		{"u249", false, 0, false},
		{"i0", true, 0, false},
		{"foo", false, 0, false},
		{"u", false, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.lexeme, func(t *testing.T) {
			signed, bitlength, ok := IsPrimitiveIntegerName(tt.lexeme)
			if ok != tt.wantOK || (ok && (signed != tt.wantSigned || bitlength != tt.wantBitlength)) {
				t.Errorf("IsPrimitiveIntegerName(%q) = (%v,%v,%v), want (%v,%v,%v)",
					tt.lexeme, signed, bitlength, ok, tt.wantSigned, tt.wantBitlength, tt.wantOK)
			}
		})
	}
}
