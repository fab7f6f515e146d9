package lexer

import (
	"testing"

	"mettatron/token"
)

func typesOf(toks []token.Token) []token.TokenType {
	out := make([]token.TokenType, len(toks))
	for i, tok := range toks {
		out[i] = tok.TokenType
	}
	return out
}

func equalTypes(got, want []token.TokenType) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func TestScanDelimitersAndOperators(t *testing.T) {
	scanner := CreateLexer("(){}+- ==!=<=>=")
	toks, errs := scanner.Scan()
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	want := []token.TokenType{
		token.LPA, token.RPA, token.LCUR, token.RCUR,
		token.ADD, token.SUB,
		token.EQUAL_EQUAL, token.NOT_EQUAL, token.LESS_EQUAL, token.LARGER_EQUAL,
		token.EOF,
	}
	if got := typesOf(toks); !equalTypes(got, want) {
		t.Errorf("Scan() types = %v, want %v", got, want)
	}
}

func TestScanLineComment(t *testing.T) {
	toks, errs := CreateLexer("(a) ; a trailing comment\n(b)").Scan()
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	want := []token.TokenType{token.LPA, token.ATOM, token.RPA, token.LPA, token.ATOM, token.RPA, token.EOF}
	if got := typesOf(toks); !equalTypes(got, want) {
		t.Errorf("Scan() types = %v, want %v", got, want)
	}
}

func TestScanBlockComment(t *testing.T) {
	toks, errs := CreateLexer("(a /* skip\nme */ b)").Scan()
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	want := []token.TokenType{token.LPA, token.ATOM, token.ATOM, token.RPA, token.EOF}
	if got := typesOf(toks); !equalTypes(got, want) {
		t.Errorf("Scan() types = %v, want %v", got, want)
	}
}

func TestScanVariablesAndWildcard(t *testing.T) {
	toks, errs := CreateLexer("$x &y 'z _").Scan()
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	want := []string{"$x", "&y", "'z", "_"}
	if len(toks)-1 != len(want) {
		t.Fatalf("got %d tokens, want %d + EOF", len(toks), len(want))
	}
	for i, w := range want {
		if toks[i].TokenType != token.VARIABLE || toks[i].Lexeme != w {
			t.Errorf("token %d = %v, want VARIABLE %q", i, toks[i], w)
		}
	}
}

func TestScanStringEscapes(t *testing.T) {
	toks, errs := CreateLexer(`"a\nb\tc\\d\"e"`).Scan()
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	want := "a\nb\tc\\d\"e"
	if toks[0].Literal.(string) != want {
		t.Errorf("string literal = %q, want %q", toks[0].Literal, want)
	}
}

func TestScanUri(t *testing.T) {
	toks, errs := CreateLexer("`https://example.com/x`").Scan()
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if toks[0].TokenType != token.URI || toks[0].Literal.(string) != "https://example.com/x" {
		t.Errorf("got %v, want URI https://example.com/x", toks[0])
	}
}

func TestScanNumbers(t *testing.T) {
	toks, errs := CreateLexer("42 -7 3.5 -0.5").Scan()
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if toks[0].TokenType != token.LONG || toks[0].Literal.(int64) != 42 {
		t.Errorf("token 0 = %v, want LONG 42", toks[0])
	}
	if toks[1].TokenType != token.LONG || toks[1].Literal.(int64) != -7 {
		t.Errorf("token 1 = %v, want LONG -7", toks[1])
	}
	if toks[2].TokenType != token.FLOAT || toks[2].Literal.(float64) != 3.5 {
		t.Errorf("token 2 = %v, want FLOAT 3.5", toks[2])
	}
	if toks[3].TokenType != token.FLOAT || toks[3].Literal.(float64) != -0.5 {
		t.Errorf("token 3 = %v, want FLOAT -0.5", toks[3])
	}
}

func TestScanMalformedNumberErrors(t *testing.T) {
	_, errs := CreateLexer("1.2.3").Scan()
	if len(errs) == 0 {
		t.Fatalf("expected an error scanning a malformed number")
	}
}

func TestScanUnterminatedStringErrors(t *testing.T) {
	_, errs := CreateLexer(`"unterminated`).Scan()
	if len(errs) == 0 {
		t.Fatalf("expected an error scanning an unterminated string")
	}
}
