package expression

import (
	"strconv"
	"strings"
)

// Machine is the simulator state an expression can observe.
type Machine interface {
	// ReadWord reads one 4-byte little-endian word.
	ReadWord(addr uint32) (uint32, error)
	// Register looks a register up by name, without the "$" sigil.
	Register(name string) (uint32, bool)
}

// operator tiers, lowest precedence first
const (
	tierAnd = iota
	tierEquality
	tierAdditive
	tierMultiplicative
	tierCount
)

func operatorTier(kind TokenKind) int {
	switch kind {
	case And:
		return tierAnd
	case Equal, NotEqual:
		return tierEquality
	case Plus, Minus:
		return tierAdditive
	case Multiply, Divide:
		return tierMultiplicative
	}
	return -1
}

// Eval computes the value of tokens[p..q] (inclusive).
func Eval(tokens []Token, p, q int, m Machine) (uint32, error) {
	if p > q {
		return 0, Errors.EmptyRange(p, q)
	}

	if p == q {
		return evalOperand(tokens[p], m)
	}

	if checkParentheses(tokens, p, q) {
		return Eval(tokens, p+1, q-1, m)
	}

	if p+1 == q {
		if tokens[p].Kind == Deref && tokens[q].Kind == Hex {
			addr, err := parseLiteral(tokens[q])
			if err != nil {
				return 0, err
			}
			value, err := m.ReadWord(addr)
			if err != nil {
				return 0, Errors.MemoryAccess(addr, err)
			}
			return value, nil
		}
		return 0, Errors.Malformed("unexpected token pair", tokens[p:q+1])
	}

	op := findSplitOperator(tokens, p, q)
	if op < 0 {
		return 0, Errors.Malformed("no operator to split on", tokens[p:q+1])
	}

	left, err := Eval(tokens, p, op-1, m)
	if err != nil {
		return 0, err
	}
	right, err := Eval(tokens, op+1, q, m)
	if err != nil {
		return 0, err
	}

	return apply(tokens[op].Kind, left, right)
}

func evalOperand(tok Token, m Machine) (uint32, error) {
	switch tok.Kind {
	case Register:
		name := strings.TrimPrefix(tok.Text, "$")
		value, ok := m.Register(name)
		if !ok {
			return 0, Errors.UnknownRegister(name)
		}
		return value, nil
	case Decimal, Hex:
		return parseLiteral(tok)
	}
	return 0, Errors.Malformed("expected a value", []Token{tok})
}

func parseLiteral(tok Token) (uint32, error) {
	var (
		v   uint64
		err error
	)
	if tok.Kind == Hex {
		v, err = strconv.ParseUint(tok.Text[2:], 16, 32)
	} else {
		v, err = strconv.ParseUint(tok.Text, 10, 32)
	}
	if err != nil {
		return 0, Errors.Literal(tok.Text)
	}
	return uint32(v), nil
}

// checkParentheses reports whether tokens[p] and tokens[q] are a matching
// pair of parentheses enclosing the whole range.
func checkParentheses(tokens []Token, p, q int) bool {
	if tokens[p].Kind != LeftParen || tokens[q].Kind != RightParen {
		return false
	}

	depth := 0
	for i := p + 1; i < q; i++ {
		switch tokens[i].Kind {
		case LeftParen:
			depth++
		case RightParen:
			depth--
			if depth < 0 {
				return false
			}
		}
	}

	return depth == 0
}

// findSplitOperator returns the index of the rightmost depth-0 operator of
// the lowest precedence tier present in tokens[p..q], or -1.
func findSplitOperator(tokens []Token, p, q int) int {
	var positions [tierCount]int
	for i := range positions {
		positions[i] = -1
	}

	depth := 0
	for i := p; i <= q; i++ {
		switch tokens[i].Kind {
		case LeftParen:
			depth++
		case RightParen:
			depth--
		}
		if depth != 0 {
			continue
		}
		if tier := operatorTier(tokens[i].Kind); tier >= 0 {
			positions[tier] = i
		}
	}

	for _, pos := range positions {
		if pos != -1 {
			return pos
		}
	}
	return -1
}

func apply(kind TokenKind, left, right uint32) (uint32, error) {
	switch kind {
	case And:
		return boolWord(left != 0 && right != 0), nil
	case Equal:
		return boolWord(left == right), nil
	case NotEqual:
		return boolWord(left != right), nil
	case Plus:
		return left + right, nil
	case Minus:
		return left - right, nil
	case Multiply:
		return left * right, nil
	case Divide:
		if right == 0 {
			return 0, Errors.DivideByZero()
		}
		// signed, as the reference evaluator computes in C int
		return uint32(int32(left) / int32(right)), nil
	}
	return 0, Errors.Malformed("not a binary operator: "+kind.String(), nil)
}

func boolWord(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
