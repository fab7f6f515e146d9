package token

import (
	"testing"
)

func TestCreateToken(t *testing.T) {
	tests := []struct {
		name      string
		tokenType TokenType
		lexeme    string
		want      Token
	}{
		{
			name:      "Create ASSIGN token",
			tokenType: TokenType(ASSIGN),
			lexeme:    "=",
			want:      Token{TokenType: TokenType(ASSIGN), Lexeme: "=", Line: 1, Column: 2},
		},
		{
			name:      "Create ATOM token",
			tokenType: TokenType(ATOM),
			lexeme:    "Human",
			want:      Token{TokenType: TokenType(ATOM), Lexeme: "Human", Line: 1, Column: 2},
		},
		{
			name:      "Create LPA token",
			tokenType: TokenType(LPA),
			lexeme:    "(",
			want:      Token{TokenType: TokenType(LPA), Lexeme: "(", Line: 1, Column: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CreateToken(tt.tokenType, tt.lexeme, 1, 2)
			if got != tt.want {
				t.Errorf("CreateToken() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCreateLiteralToken(t *testing.T) {
	got := CreateLiteralToken(LONG, int64(42), "42", 3, 0)
	want := Token{TokenType: LONG, Lexeme: "42", Literal: int64(42), Line: 3, Column: 0}
	if got != want {
		t.Errorf("CreateLiteralToken() = %v, want %v", got, want)
	}
}

func TestOperatorTypesOrderingLongestFirst(t *testing.T) {
	// "<<-" must appear before "<-" and "<" so the lexer's linear scan
	// picks the longest match.
	seen := map[string]int{}
	for i, o := range OperatorTypes {
		seen[o.Lexeme] = i
	}
	if seen["<<-"] > seen["<-"] || seen["<-"] > seen["<"] {
		t.Fatalf("OperatorTypes is not ordered longest-lexeme-first: %v", seen)
	}
}
