// Package calculator evaluates infix arithmetic text such as the task text
// produced by package task. Operands may carry a leading sign and may be
// grouped with parentheses; each group is reduced with task.Evaluate, so
// checked text follows the same rules the tasks were generated with.
package calculator

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"marith/internal/task"
)

var (
	ErrEmptyExpression       = errors.New("empty expression")
	ErrInvalidCharacter      = errors.New("invalid character")
	ErrInvalidExpression     = errors.New("invalid expression")
	ErrDivisionByZero        = errors.New("division by zero")
	ErrMismatchedParentheses = errors.New("mismatched parentheses")
)

type TokenType string

const (
	Number     TokenType = "number"
	Operator   TokenType = "operator"
	LeftParen  TokenType = "left_paren"
	RightParen TokenType = "right_paren"
)

type Token struct {
	Type  TokenType
	Value string
}

// Calculator keeps the tokens of the last expression. It is not safe for
// concurrent use.
type Calculator struct {
	tokens []Token
	pos    int
}

func NewCalculator() *Calculator {
	return &Calculator{}
}

// Calc evaluates expr with a fresh Calculator.
func Calc(expr string) (float64, error) {
	return NewCalculator().Calculate(expr)
}

func (c *Calculator) Calculate(expr string) (float64, error) {
	if err := c.Tokenize(expr); err != nil {
		return 0, fmt.Errorf("tokenization error: %w", err)
	}

	c.pos = 0
	v, err := c.group()
	if err != nil {
		return 0, err
	}
	if c.pos < len(c.tokens) {
		if c.tokens[c.pos].Type == RightParen {
			return 0, ErrMismatchedParentheses
		}
		return 0, fmt.Errorf("%w: unexpected %q", ErrInvalidExpression, c.tokens[c.pos].Value)
	}
	return v, nil
}

// Tokenize splits expr into tokens. Whitespace separates tokens. A '+' or
// '-' directly in front of a number is part of that number when it cannot
// be a binary operator.
func (c *Calculator) Tokenize(expr string) error {
	c.tokens = c.tokens[:0]

	for i := 0; i < len(expr); i++ {
		char := expr[i]

		switch {
		case isSpace(char):
		case char == '(':
			c.tokens = append(c.tokens, Token{Type: LeftParen, Value: "("})
		case char == ')':
			c.tokens = append(c.tokens, Token{Type: RightParen, Value: ")"})
		case (char == '+' || char == '-') && c.expectsOperand() && i+1 < len(expr) && isNumberChar(expr[i+1]):
			j := scanNumber(expr, i+1)
			c.tokens = append(c.tokens, Token{Type: Number, Value: expr[i:j]})
			i = j - 1
		case char == '+' || char == '-' || char == '*' || char == '/':
			c.tokens = append(c.tokens, Token{Type: Operator, Value: string(char)})
		case isNumberChar(char):
			j := scanNumber(expr, i)
			c.tokens = append(c.tokens, Token{Type: Number, Value: expr[i:j]})
			i = j - 1
		default:
			return fmt.Errorf("%w: %c", ErrInvalidCharacter, char)
		}
	}

	if len(c.tokens) == 0 {
		return ErrEmptyExpression
	}
	return nil
}

// expectsOperand reports whether the next token must start an operand.
func (c *Calculator) expectsOperand() bool {
	if len(c.tokens) == 0 {
		return true
	}
	last := c.tokens[len(c.tokens)-1].Type
	return last == Operator || last == LeftParen
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

func isNumberChar(b byte) bool {
	return (b >= '0' && b <= '9') || b == '.'
}

func scanNumber(expr string, i int) int {
	for i < len(expr) && isNumberChar(expr[i]) {
		i++
	}
	return i
}

// group reads "operand op operand ..." up to a closing parenthesis or the
// end of input and reduces it.
func (c *Calculator) group() (float64, error) {
	first, err := c.operand()
	if err != nil {
		return 0, err
	}
	operands := []float64{first}
	var operators []task.Operator

	for c.pos < len(c.tokens) && c.tokens[c.pos].Type == Operator {
		op, err := task.ParseOperator(c.tokens[c.pos].Value)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrInvalidExpression, err)
		}
		c.pos++

		v, err := c.operand()
		if err != nil {
			return 0, err
		}
		// The right side of '/' is never a partial result: * and / share the
		// top priority and reduce left to right.
		if op == task.Division && v == 0 {
			return 0, ErrDivisionByZero
		}
		operators = append(operators, op)
		operands = append(operands, v)
	}

	result := task.Evaluate(operands, operators)
	if math.IsInf(result, 0) || math.IsNaN(result) {
		return 0, fmt.Errorf("%w: result out of range", ErrInvalidExpression)
	}
	return result, nil
}

func (c *Calculator) operand() (float64, error) {
	if c.pos >= len(c.tokens) {
		return 0, fmt.Errorf("%w: missing operand", ErrInvalidExpression)
	}

	token := c.tokens[c.pos]
	switch token.Type {
	case Number:
		c.pos++
		num, err := strconv.ParseFloat(token.Value, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: invalid number %s", ErrInvalidExpression, token.Value)
		}
		return num, nil
	case LeftParen:
		c.pos++
		v, err := c.group()
		if err != nil {
			return 0, err
		}
		if c.pos >= len(c.tokens) {
			return 0, ErrMismatchedParentheses
		}
		if c.tokens[c.pos].Type != RightParen {
			return 0, fmt.Errorf("%w: unexpected %q", ErrInvalidExpression, c.tokens[c.pos].Value)
		}
		c.pos++
		return v, nil
	}
	return 0, fmt.Errorf("%w: unexpected %q", ErrInvalidExpression, token.Value)
}
