package expression

import (
	"fmt"

	"github.com/pkg/errors"
)

// Tokenize errors

type NoMatchError struct {
	Expression string
	Position   int
}

func (e *NoMatchError) Error() string {
	return fmt.Sprintf("no match at position %d: %q", e.Position, e.Remainder())
}

// Remainder is the part of the expression that could not be tokenized.
func (e *NoMatchError) Remainder() string {
	return e.Expression[e.Position:]
}

type TokenTooLongError struct {
	Position int
	Text     string
}

func (e *TokenTooLongError) Error() string {
	return fmt.Sprintf("token at position %d is longer than %d characters: %s", e.Position, MaxTokenText, e.Text)
}

type TooManyTokensError struct {
	Limit int
}

func (e *TooManyTokensError) Error() string {
	return fmt.Sprintf("expression has more than %d tokens", e.Limit)
}

// Evaluation errors

type EmptyRangeError struct {
	P, Q int
}

func (e *EmptyRangeError) Error() string {
	if e.P == 0 && e.Q < 0 {
		return "empty expression"
	}
	return fmt.Sprintf("missing operand (token range %d..%d is empty)", e.P, e.Q)
}

type UnknownRegisterError struct {
	Name string
}

func (e *UnknownRegisterError) Error() string {
	return "unknown register: " + e.Name
}

type MalformedExpressionError struct {
	Reason string
	Tokens []Token
}

func (e *MalformedExpressionError) Error() string {
	if len(e.Tokens) == 0 {
		return "malformed expression: " + e.Reason
	}
	return fmt.Sprintf("malformed expression: %s near %v", e.Reason, e.Tokens)
}

type DivideByZeroError struct{}

func (e *DivideByZeroError) Error() string {
	return "division by zero"
}

type LiteralError struct {
	Literal string
}

func (e *LiteralError) Error() string {
	return "literal does not fit in a 32-bit word: " + e.Literal
}

type MemoryAccessError struct {
	Address uint32
	Err     error
}

func (e *MemoryAccessError) Error() string {
	return fmt.Sprintf("cannot read memory at 0x%08x: %v", e.Address, e.Err)
}

func (e *MemoryAccessError) Unwrap() error {
	return e.Err
}

type expressionErrors struct{}

var Errors expressionErrors

func (expressionErrors) NoMatch(expression string, position int) *NoMatchError {
	return &NoMatchError{Expression: expression, Position: position}
}

func (expressionErrors) TokenTooLong(position int, text string) *TokenTooLongError {
	return &TokenTooLongError{Position: position, Text: text}
}

func (expressionErrors) TooManyTokens(limit int) *TooManyTokensError {
	return &TooManyTokensError{Limit: limit}
}

func (expressionErrors) EmptyRange(p, q int) *EmptyRangeError {
	return &EmptyRangeError{P: p, Q: q}
}

func (expressionErrors) UnknownRegister(name string) *UnknownRegisterError {
	return &UnknownRegisterError{Name: name}
}

func (expressionErrors) Malformed(reason string, tokens []Token) *MalformedExpressionError {
	return &MalformedExpressionError{Reason: reason, Tokens: tokens}
}

func (expressionErrors) DivideByZero() *DivideByZeroError {
	return &DivideByZeroError{}
}

func (expressionErrors) Literal(literal string) *LiteralError {
	return &LiteralError{Literal: literal}
}

func (expressionErrors) MemoryAccess(addr uint32, err error) *MemoryAccessError {
	return &MemoryAccessError{Address: addr, Err: err}
}

// The predicates below see through errors wrapped with github.com/pkg/errors.

func (expressionErrors) IsNoMatch(err error) bool {
	var target *NoMatchError
	return errors.As(err, &target)
}

func (expressionErrors) IsTokenTooLong(err error) bool {
	var target *TokenTooLongError
	return errors.As(err, &target)
}

func (expressionErrors) IsTooManyTokens(err error) bool {
	var target *TooManyTokensError
	return errors.As(err, &target)
}

func (expressionErrors) IsEmptyRange(err error) bool {
	var target *EmptyRangeError
	return errors.As(err, &target)
}

func (expressionErrors) IsUnknownRegister(err error) bool {
	var target *UnknownRegisterError
	return errors.As(err, &target)
}

func (expressionErrors) IsMalformed(err error) bool {
	var target *MalformedExpressionError
	return errors.As(err, &target)
}

func (expressionErrors) IsDivideByZero(err error) bool {
	var target *DivideByZeroError
	return errors.As(err, &target)
}

func (expressionErrors) IsLiteral(err error) bool {
	var target *LiteralError
	return errors.As(err, &target)
}

func (expressionErrors) IsMemoryAccess(err error) bool {
	var target *MemoryAccessError
	return errors.As(err, &target)
}

// IsParseError reports whether err came from the shape of the expression
// rather than from machine state.
func (e expressionErrors) IsParseError(err error) bool {
	return e.IsNoMatch(err) || e.IsTokenTooLong(err) || e.IsTooManyTokens(err) || e.IsEmptyRange(err) || e.IsMalformed(err) || e.IsLiteral(err)
}
