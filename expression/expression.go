// Package expression implements the debugger's integer expression language:
// decimal and 0x-prefixed literals, $register references, "*0x..." memory
// dereference, + - * /, == !=, && and parentheses.
package expression

// Evaluate tokenizes and evaluates a complete expression against m.
func Evaluate(e string, m Machine) (uint32, error) {
	tokens, err := Tokenize(e)
	if err != nil {
		return 0, err
	}

	if len(tokens) == 0 {
		return 0, Errors.EmptyRange(0, -1)
	}

	if err := checkBalance(tokens); err != nil {
		return 0, err
	}

	MarkDereferences(tokens)
	return Eval(tokens, 0, len(tokens)-1, m)
}

func checkBalance(tokens []Token) error {
	depth := 0
	for i, tok := range tokens {
		switch tok.Kind {
		case LeftParen:
			depth++
		case RightParen:
			depth--
			if depth < 0 {
				return Errors.Malformed("unmatched )", tokens[i:i+1])
			}
		}
	}
	if depth != 0 {
		return Errors.Malformed("unclosed (", nil)
	}
	return nil
}
