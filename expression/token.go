package expression

import "fmt"

type TokenKind int

const (
	Space TokenKind = iota
	Equal
	NotEqual
	And
	Hex
	Decimal
	Register
	Plus
	Minus
	Multiply
	Divide
	LeftParen
	RightParen
	// Deref is never produced by a lexical rule. MarkDereferences assigns it
	// to Multiply tokens by position.
	Deref
)

const (
	MaxTokenText = 31
	MaxTokens    = 65536
)

type Token struct {
	Kind TokenKind
	Text string // only set for Hex, Decimal and Register
	Pos  int    // byte offset in the source expression
}

var kindNames = map[TokenKind]string{
	Space:      "space",
	Equal:      "==",
	NotEqual:   "!=",
	And:        "&&",
	Hex:        "hex",
	Decimal:    "decimal",
	Register:   "register",
	Plus:       "+",
	Minus:      "-",
	Multiply:   "*",
	Divide:     "/",
	LeftParen:  "(",
	RightParen: ")",
	Deref:      "deref",
}

func (k TokenKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("TokenKind(%d)", int(k))
}

func (k TokenKind) isValue() bool {
	return k == Decimal || k == Hex || k == Register
}

func (t Token) String() string {
	if t.Kind.isValue() {
		return t.Text
	}
	if t.Kind == Deref {
		return "*"
	}
	return t.Kind.String()
}
