// lexer_test.go
package xpr

import (
	"reflect"
	"strings"
	"testing"
)

func toks(t *testing.T, src string) []Token {
	t.Helper()
	ts, err := NewLexer(src).Scan()
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}
	return ts
}

func typesWithoutEOF(tokens []Token) []TokenType {
	if len(tokens) == 0 {
		return nil
	}
	end := len(tokens)
	if tokens[end-1].Type == EOF {
		end--
	}
	out := make([]TokenType, 0, end)
	for i := 0; i < end; i++ {
		out = append(out, tokens[i].Type)
	}
	return out
}

func wantTypes(t *testing.T, src string, want []TokenType) []Token {
	t.Helper()
	got := toks(t, src)
	gotTypes := typesWithoutEOF(got)
	if !reflect.DeepEqual(gotTypes, want) {
		t.Fatalf("\nsource:\n%s\nwant types:\n%v\ngot types:\n%v\n", src, want, gotTypes)
	}
	return got
}

func Test_Lexer_Arithmetic(t *testing.T) {
	got := wantTypes(t, "1 + 2.5 * price", []TokenType{INTEGER, PLUS, NUMBER, MULT, ID})
	if got[0].Literal.(int64) != 1 {
		t.Fatalf("int literal: %v", got[0].Literal)
	}
	if got[2].Literal.(float64) != 2.5 {
		t.Fatalf("float literal: %v", got[2].Literal)
	}
}

func Test_Lexer_ChainAndVariables(t *testing.T) {
	wantTypes(t, "#user.address?.city[0]", []TokenType{
		HASH, ID, PERIOD, ID, SAFE_NAV, ID, LSQUARE, INTEGER, RSQUARE,
	})
}

func Test_Lexer_QuestionForms(t *testing.T) {
	// "?." , "?:" and "?" are distinct; longest match wins.
	wantTypes(t, "a ? b : c", []TokenType{ID, QUESTION, ID, COLON, ID})
	wantTypes(t, "a ?: b", []TokenType{ID, ELVIS, ID})
	wantTypes(t, "a?.b", []TokenType{ID, SAFE_NAV, ID})
}

func Test_Lexer_Comparisons(t *testing.T) {
	wantTypes(t, "a == b != c <= d >= e && f || !g", []TokenType{
		ID, EQ, ID, NEQ, ID, LESS_EQ, ID, GREATER_EQ, ID, AND, ID, OR, BANG, ID,
	})
}

func Test_Lexer_Keywords(t *testing.T) {
	got := wantTypes(t, "true false null maybe", []TokenType{BOOLEAN, BOOLEAN, NULL, ID})
	if got[0].Literal.(bool) != true || got[1].Literal.(bool) != false {
		t.Fatalf("boolean literals: %v, %v", got[0].Literal, got[1].Literal)
	}
}

func Test_Lexer_Strings_BothQuotes(t *testing.T) {
	got := wantTypes(t, `'it''s' "fine"`, []TokenType{STRING, STRING, STRING})
	_ = got
	got2 := toks(t, `'a\'b' "c\nd"`)
	if got2[0].Literal.(string) != "a'b" {
		t.Fatalf("escaped quote: %q", got2[0].Literal)
	}
	if got2[1].Literal.(string) != "c\nd" {
		t.Fatalf("escaped newline: %q", got2[1].Literal)
	}
}

func Test_Lexer_TokenSpans(t *testing.T) {
	src := "name + 'x'"
	for _, tok := range toks(t, src) {
		if tok.Type == EOF {
			continue
		}
		if tok.Start >= tok.End {
			t.Fatalf("token %v has empty span [%d,%d)", tok.Type, tok.Start, tok.End)
		}
		if tok.Lexeme != src[tok.Start:tok.End] {
			t.Fatalf("lexeme %q does not match span %q", tok.Lexeme, src[tok.Start:tok.End])
		}
	}
}

func Test_Lexer_Errors(t *testing.T) {
	cases := []struct {
		src  string
		frag string
	}{
		{"'unterminated", "unterminated string"},
		{`'bad \q escape'`, "unknown escape"},
		{"a @ b", "unexpected character"},
		{"a & b", "did you mean '&&'"},
	}
	for _, c := range cases {
		_, err := NewLexer(c.src).Scan()
		if err == nil {
			t.Fatalf("%q: want error", c.src)
		}
		le, ok := err.(*LexError)
		if !ok {
			t.Fatalf("%q: want *LexError, got %T", c.src, err)
		}
		if !strings.Contains(le.Msg, c.frag) {
			t.Fatalf("%q: want %q in %q", c.src, c.frag, le.Msg)
		}
	}
}

func Test_Lexer_SourceTooLong(t *testing.T) {
	src := strings.Repeat("1", MaxSourceLen+1)
	_, err := NewLexer(src).Scan()
	le, ok := err.(*LexError)
	if !ok {
		t.Fatalf("want *LexError, got %v", err)
	}
	if !strings.Contains(le.Msg, "too long") {
		t.Fatalf("unexpected message: %s", le.Msg)
	}
}
