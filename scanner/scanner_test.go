package scanner_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/marcuscaisey/loxwalk/scanner"
	"github.com/marcuscaisey/loxwalk/token"
)

func tok(typ token.Type, lexeme string, literal any, line int) token.Token {
	return token.Token{Type: typ, Lexeme: lexeme, Literal: literal, Line: line}
}

func TestScanPunctuationAndOperators(t *testing.T) {
	src := `(){}[],.-+;*/ ! != = == < <= > >=`
	got := scanner.Scan([]byte(src), nil)

	want := []token.Token{
		tok(token.LeftParen, "(", nil, 1),
		tok(token.RightParen, ")", nil, 1),
		tok(token.LeftBrace, "{", nil, 1),
		tok(token.RightBrace, "}", nil, 1),
		tok(token.LeftBrack, "[", nil, 1),
		tok(token.RightBrack, "]", nil, 1),
		tok(token.Comma, ",", nil, 1),
		tok(token.Dot, ".", nil, 1),
		tok(token.Minus, "-", nil, 1),
		tok(token.Plus, "+", nil, 1),
		tok(token.Semicolon, ";", nil, 1),
		tok(token.Star, "*", nil, 1),
		tok(token.Slash, "/", nil, 1),
		tok(token.Bang, "!", nil, 1),
		tok(token.BangEqual, "!=", nil, 1),
		tok(token.Equal, "=", nil, 1),
		tok(token.EqualEqual, "==", nil, 1),
		tok(token.Less, "<", nil, 1),
		tok(token.LessEqual, "<=", nil, 1),
		tok(token.Greater, ">", nil, 1),
		tok(token.GreaterEqual, ">=", nil, 1),
		tok(token.EOF, "", nil, 1),
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Scan() mismatch (-want +got):\n%s", diff)
	}
}

func TestScanStringLiteral(t *testing.T) {
	got := scanner.Scan([]byte(`"hello world"`), nil)
	want := []token.Token{
		tok(token.String, `"hello world"`, "hello world", 1),
		tok(token.EOF, "", nil, 1),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Scan() mismatch (-want +got):\n%s", diff)
	}
}

func TestScanMultilineString(t *testing.T) {
	got := scanner.Scan([]byte("\"a\nb\""), nil)
	want := []token.Token{
		tok(token.String, "\"a\nb\"", "a\nb", 2),
		tok(token.EOF, "", nil, 2),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Scan() mismatch (-want +got):\n%s", diff)
	}
}

func TestScanUnterminatedStringReportsError(t *testing.T) {
	var gotLine int
	var gotMsg string
	scanner.Scan([]byte(`"oops`), func(line int, msg string) {
		gotLine, gotMsg = line, msg
	})
	if gotLine != 1 {
		t.Errorf("error line = %d, want 1", gotLine)
	}
	if gotMsg == "" {
		t.Error("expected an error message, got none")
	}
}

func TestScanNumber(t *testing.T) {
	got := scanner.Scan([]byte("123 45.67"), nil)
	want := []token.Token{
		tok(token.Number, "123", float64(123), 1),
		tok(token.Number, "45.67", 45.67, 1),
		tok(token.EOF, "", nil, 1),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Scan() mismatch (-want +got):\n%s", diff)
	}
}

func TestScanIdentifiersAndKeywords(t *testing.T) {
	got := scanner.Scan([]byte("foo class fun"), nil)
	want := []token.Token{
		tok(token.Ident, "foo", nil, 1),
		tok(token.Class, "class", nil, 1),
		tok(token.Fun, "fun", nil, 1),
		tok(token.EOF, "", nil, 1),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Scan() mismatch (-want +got):\n%s", diff)
	}
}

func TestScanLineComment(t *testing.T) {
	got := scanner.Scan([]byte("1 // this is ignored\n2"), nil)
	want := []token.Token{
		tok(token.Number, "1", float64(1), 1),
		tok(token.Number, "2", float64(2), 2),
		tok(token.EOF, "", nil, 2),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Scan() mismatch (-want +got):\n%s", diff)
	}
}

func TestScanBlockComment(t *testing.T) {
	got := scanner.Scan([]byte("1 /* ignored\nstill ignored */ 2"), nil)
	want := []token.Token{
		tok(token.Number, "1", float64(1), 1),
		tok(token.Number, "2", float64(2), 2),
		tok(token.EOF, "", nil, 2),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Scan() mismatch (-want +got):\n%s", diff)
	}
}

func TestScanBlockCommentDoesNotNest(t *testing.T) {
	// The first "*/" closes the comment, even though a "/*" appears inside it: this matches the
	// documented non-nesting limitation, not lexical nesting.
	got := scanner.Scan([]byte("/* /* */ 1 */"), nil)
	want := []token.Token{
		tok(token.Number, "1", float64(1), 1),
		tok(token.Star, "*", nil, 1),
		tok(token.Slash, "/", nil, 1),
		tok(token.EOF, "", nil, 1),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Scan() mismatch (-want +got):\n%s", diff)
	}
}

func TestScanUnexpectedCharacterReportsErrorAndContinues(t *testing.T) {
	var msgs []string
	got := scanner.Scan([]byte("1 @ 2"), func(line int, msg string) {
		msgs = append(msgs, msg)
	})
	if len(msgs) != 1 {
		t.Fatalf("got %d errors, want 1: %v", len(msgs), msgs)
	}
	want := []token.Token{
		tok(token.Number, "1", float64(1), 1),
		tok(token.Number, "2", float64(2), 1),
		tok(token.EOF, "", nil, 1),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Scan() mismatch (-want +got):\n%s", diff)
	}
}
