// Package exprcheck generates random arithmetic expressions with known
// answers and checks the expression evaluator against them.
package exprcheck

import (
	"fmt"
	"io"
	"math"
	"math/rand"
	"strings"

	"github.com/pkg/errors"
)

const (
	DefaultMaxDepth  = 16
	DefaultMaxLength = 4096
)

var ops = []byte{'+', '-', '*', '/'}

type Case struct {
	Answer uint32
	Expr   string
}

// Generator produces expressions of numbers below 127, parentheses and the
// four binary operators. Answers follow C int arithmetic: wrapping, with
// division truncating toward zero. Expressions that divide by zero are
// thrown away.
type Generator struct {
	rand      *rand.Rand
	MaxDepth  int
	MaxLength int
}

func NewGenerator(seed int64) *Generator {
	return &Generator{
		rand:      rand.New(rand.NewSource(seed)),
		MaxDepth:  DefaultMaxDepth,
		MaxLength: DefaultMaxLength,
	}
}

func (g *Generator) choose(n int) int {
	return g.rand.Intn(n)
}

func (g *Generator) number(b *strings.Builder) {
	fmt.Fprintf(b, "%d", g.choose(math.MaxInt8))
	b.WriteString(strings.Repeat(" ", g.choose(4)))
}

func (g *Generator) gen(b *strings.Builder, depth int) {
	if depth > g.MaxDepth {
		g.number(b)
		return
	}

	switch g.choose(3) {
	case 0:
		g.number(b)
	case 1:
		b.WriteByte('(')
		g.gen(b, depth+1)
		b.WriteByte(')')
	default:
		g.gen(b, depth+1)
		b.WriteByte(ops[g.choose(len(ops))])
		g.gen(b, depth+1)
	}
}

var errDivideByZero = errors.New("division by zero")

// calc computes the value of generated text the way a C compiler would,
// with * and / binding tighter than + and - and everything left associative.
type calc struct {
	text string
	pos  int
}

func (c *calc) skip() {
	for c.pos < len(c.text) && c.text[c.pos] == ' ' {
		c.pos++
	}
}

func (c *calc) peek() byte {
	c.skip()
	if c.pos >= len(c.text) {
		return 0
	}
	return c.text[c.pos]
}

func (c *calc) sum() (uint32, error) {
	acc, err := c.product()
	if err != nil {
		return 0, err
	}
	for {
		op := c.peek()
		if op != '+' && op != '-' {
			return acc, nil
		}
		c.pos++
		rhs, err := c.product()
		if err != nil {
			return 0, err
		}
		if op == '+' {
			acc += rhs
		} else {
			acc -= rhs
		}
	}
}

func (c *calc) product() (uint32, error) {
	acc, err := c.primary()
	if err != nil {
		return 0, err
	}
	for {
		op := c.peek()
		if op != '*' && op != '/' {
			return acc, nil
		}
		c.pos++
		rhs, err := c.primary()
		if err != nil {
			return 0, err
		}
		if op == '*' {
			acc *= rhs
			continue
		}
		if rhs == 0 {
			return 0, errDivideByZero
		}
		if int32(acc) != math.MinInt32 || int32(rhs) != -1 {
			acc = uint32(int32(acc) / int32(rhs))
		}
	}
}

func (c *calc) primary() (uint32, error) {
	if c.peek() == '(' {
		c.pos++
		v, err := c.sum()
		if err != nil {
			return 0, err
		}
		if c.peek() != ')' {
			return 0, errors.Errorf("expected ')' at %d", c.pos)
		}
		c.pos++
		return v, nil
	}

	start := c.pos
	var v uint32
	for c.pos < len(c.text) && c.text[c.pos] >= '0' && c.text[c.pos] <= '9' {
		v = v*10 + uint32(c.text[c.pos]-'0')
		c.pos++
	}
	if c.pos == start {
		return 0, errors.Errorf("expected a number at %d", c.pos)
	}
	return v, nil
}

func answer(text string) (uint32, error) {
	c := &calc{text: text}
	v, err := c.sum()
	if err != nil {
		return 0, err
	}
	if c.peek() != 0 {
		return 0, errors.Errorf("trailing input at %d", c.pos)
	}
	return v, nil
}

// Next returns a fresh case.
func (g *Generator) Next() Case {
	for {
		b := &strings.Builder{}
		g.gen(b, 0)
		if b.Len() > g.MaxLength {
			continue
		}

		value, err := answer(b.String())
		if err != nil {
			continue
		}
		return Case{Answer: value, Expr: b.String()}
	}
}

// WriteCases writes n cases as "<answer> <expression>" lines.
func (g *Generator) WriteCases(w io.Writer, n int) error {
	for i := 0; i < n; i++ {
		c := g.Next()
		if _, err := fmt.Fprintf(w, "%d %s\n", c.Answer, c.Expr); err != nil {
			return errors.Wrap(err, "write case")
		}
	}
	return nil
}
