package expression_test

import (
	"strings"
	"testing"

	"github.gatech.edu/ECEInnovation/RISC-V-Monitor/expression"
)

func TestTokenizeKinds(t *testing.T) {
	tokens, err := expression.Tokenize("0x1F == 31 && $a0 != 2 + 3 - 4 * (5 / 6)")
	if err != nil {
		t.Fatalf("Tokenize failed: %v", err)
	}

	expected := []expression.TokenKind{
		expression.Hex, expression.Equal, expression.Decimal, expression.And,
		expression.Register, expression.NotEqual, expression.Decimal, expression.Plus,
		expression.Decimal, expression.Minus, expression.Decimal, expression.Multiply,
		expression.LeftParen, expression.Decimal, expression.Divide, expression.Decimal,
		expression.RightParen,
	}
	validateKinds(t, tokens, expected)

	if tokens[0].Text != "0x1F" || tokens[4].Text != "$a0" {
		t.Errorf("Expected value tokens to keep their text, got %q and %q", tokens[0].Text, tokens[4].Text)
	}
	if tokens[1].Text != "" {
		t.Errorf("Expected operator token without text, got %q", tokens[1].Text)
	}
}

func TestTokenizeHexBeforeDecimal(t *testing.T) {
	tokens, err := expression.Tokenize("0x10")
	if err != nil {
		t.Fatal(err)
	}
	validateKinds(t, tokens, []expression.TokenKind{expression.Hex})
}

func TestTokenizeImplicitMultiplication(t *testing.T) {
	for _, e := range []string{"2(3)", "0x2(3)", "$a0(3)"} {
		tokens, err := expression.Tokenize(e)
		if err != nil {
			t.Fatalf("%s: %v", e, err)
		}
		if len(tokens) != 5 || tokens[1].Kind != expression.Multiply || tokens[2].Kind != expression.LeftParen {
			t.Errorf("%s: expected implicit multiplication, got %v", e, tokens)
		}
	}

	tokens, _ := expression.Tokenize("(1)(2)")
	for _, tok := range tokens {
		if tok.Kind == expression.Multiply {
			t.Errorf("did not expect multiplication after ')', got %v", tokens)
		}
	}
}

func TestTokenizeDropsWhitespace(t *testing.T) {
	tokens, err := expression.Tokenize("  1 \t+   2 ")
	if err != nil {
		t.Fatal(err)
	}
	validateKinds(t, tokens, []expression.TokenKind{expression.Decimal, expression.Plus, expression.Decimal})
	if tokens[2].Pos != 9 {
		t.Errorf("Expected position 9 for the last token, got %d", tokens[2].Pos)
	}
}

func TestTokenizeFreshSequencePerCall(t *testing.T) {
	first, _ := expression.Tokenize("1+2+3")
	second, _ := expression.Tokenize("4")
	if len(second) != 1 || second[0].Text != "4" {
		t.Errorf("Expected a single token, got %v", second)
	}
	if len(first) != 5 {
		t.Errorf("Expected first sequence untouched, got %v", first)
	}
}

func TestTokenizeNoMatch(t *testing.T) {
	_, err := expression.Tokenize("1 + 2 % 3")
	if !expression.Errors.IsNoMatch(err) {
		t.Fatalf("Expected NoMatch error, got %v", err)
	}

	nm := err.(*expression.NoMatchError)
	if nm.Position != 6 {
		t.Errorf("Expected failure at position 6, got %d", nm.Position)
	}
	if nm.Remainder() != "% 3" {
		t.Errorf("Expected remainder %q, got %q", "% 3", nm.Remainder())
	}
}

func TestTokenizeTokenTooLong(t *testing.T) {
	_, err := expression.Tokenize(strings.Repeat("1", expression.MaxTokenText+1))
	if !expression.Errors.IsTokenTooLong(err) {
		t.Errorf("Expected TokenTooLong error, got %v", err)
	}

	if _, err := expression.Tokenize(strings.Repeat("1", expression.MaxTokenText)); err != nil {
		t.Errorf("Expected a %d character literal to be accepted, got %v", expression.MaxTokenText, err)
	}
}

func TestMarkDereferences(t *testing.T) {
	tokens, _ := expression.Tokenize("*0x10 + (*0x20) * 2")
	expression.MarkDereferences(tokens)

	expected := []expression.TokenKind{
		expression.Deref, expression.Hex, expression.Plus, expression.LeftParen,
		expression.Deref, expression.Hex, expression.RightParen, expression.Multiply, expression.Decimal,
	}
	validateKinds(t, tokens, expected)
}

func validateKinds(t *testing.T, tokens []expression.Token, expected []expression.TokenKind) {
	t.Helper()
	if len(tokens) != len(expected) {
		t.Fatalf("Expected %d tokens, got %d (%v)", len(expected), len(tokens), tokens)
	}
	for i, tok := range tokens {
		if tok.Kind != expected[i] {
			t.Errorf("Expected token %d to be %v, got %v", i, expected[i], tok.Kind)
		}
	}
}
