package expression

import (
	"regexp"

	"github.gatech.edu/ECEInnovation/RISC-V-Monitor/util"
)

type rule struct {
	pattern *regexp.Regexp
	kind    TokenKind
}

// Order matters: the first rule matching at the scan position wins, so the
// hexadecimal rule must come before the decimal one.
var rules = []rule{
	{regexp.MustCompile(`^\s+`), Space},
	{regexp.MustCompile(`^==`), Equal},
	{regexp.MustCompile(`^!=`), NotEqual},
	{regexp.MustCompile(`^&&`), And},
	{regexp.MustCompile(`^0x[0-9a-fA-F]+`), Hex},
	{regexp.MustCompile(`^[0-9]+`), Decimal},
	{regexp.MustCompile(`^\$+[a-zA-Z0-9]+`), Register},
	{regexp.MustCompile(`^\+`), Plus},
	{regexp.MustCompile(`^-`), Minus},
	{regexp.MustCompile(`^\*`), Multiply},
	{regexp.MustCompile(`^/`), Divide},
	{regexp.MustCompile(`^\(`), LeftParen},
	{regexp.MustCompile(`^\)`), RightParen},
}

// Tokenize splits an expression into tokens. Whitespace is dropped, and a
// multiplication is inserted between a value and a directly following "(".
func Tokenize(e string) ([]Token, error) {
	tokens := make([]Token, 0, len(e)/2+1)
	position := 0

	for position < len(e) {
		matched := false
		for i, r := range rules {
			loc := r.pattern.FindStringIndex(e[position:])
			if loc == nil || loc[0] != 0 {
				continue
			}

			substr := e[position : position+loc[1]]
			util.LogF("match rules[%d] = %q at position %d with len %d: %s", i, r.pattern.String(), position, loc[1], substr)

			switch r.kind {
			case Space:
			case Hex, Decimal, Register:
				if len(substr) > MaxTokenText {
					return nil, Errors.TokenTooLong(position, substr)
				}
				tokens = append(tokens, Token{Kind: r.kind, Text: substr, Pos: position})
			case LeftParen:
				if len(tokens) > 0 && tokens[len(tokens)-1].Kind.isValue() {
					tokens = append(tokens, Token{Kind: Multiply, Pos: position})
				}
				tokens = append(tokens, Token{Kind: r.kind, Pos: position})
			default:
				tokens = append(tokens, Token{Kind: r.kind, Pos: position})
			}

			if len(tokens) > MaxTokens {
				return nil, Errors.TooManyTokens(MaxTokens)
			}

			position += loc[1]
			matched = true
			break
		}

		if !matched {
			return nil, Errors.NoMatch(e, position)
		}
	}

	return tokens, nil
}

// MarkDereferences turns every "*" that starts the expression or follows "("
// into a dereference operator.
func MarkDereferences(tokens []Token) {
	for i := range tokens {
		if tokens[i].Kind == Multiply && (i == 0 || tokens[i-1].Kind == LeftParen) {
			tokens[i].Kind = Deref
		}
	}
}
