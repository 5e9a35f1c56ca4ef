package task

import (
	"fmt"
	"strings"
)

// Operator is a binary arithmetic operator.
type Operator int

const (
	Addition Operator = iota
	Subtraction
	Multiplication
	Division
)

// AllOperators lists every operator in display order.
var AllOperators = []Operator{Addition, Subtraction, Multiplication, Division}

// Priority is the precedence rank; higher ranks are reduced first.
func (o Operator) Priority() int {
	switch o {
	case Multiplication, Division:
		return 6
	default:
		return 5
	}
}

// Symbol returns the character used when rendering a task.
func (o Operator) Symbol() byte {
	switch o {
	case Subtraction:
		return '-'
	case Multiplication:
		return '*'
	case Division:
		return '/'
	default:
		return '+'
	}
}

// Apply computes a o b. Division is plain float64 division, so a zero
// divisor yields ±Inf or NaN.
func (o Operator) Apply(a, b float64) float64 {
	switch o {
	case Subtraction:
		return a - b
	case Multiplication:
		return a * b
	case Division:
		return a / b
	default:
		return a + b
	}
}

// String returns the lower-case operator name, also used as the query flag
// and the config file spelling.
func (o Operator) String() string {
	switch o {
	case Addition:
		return "addition"
	case Subtraction:
		return "subtraction"
	case Multiplication:
		return "multiplication"
	case Division:
		return "division"
	default:
		return fmt.Sprintf("Operator(%d)", int(o))
	}
}

// ParseOperator accepts an operator name or its symbol.
func ParseOperator(s string) (Operator, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "addition", "+":
		return Addition, nil
	case "subtraction", "-":
		return Subtraction, nil
	case "multiplication", "*":
		return Multiplication, nil
	case "division", "/":
		return Division, nil
	}
	return 0, fmt.Errorf("unknown operator %q", s)
}

func (o Operator) MarshalText() ([]byte, error) {
	if o < Addition || o > Division {
		return nil, fmt.Errorf("unknown operator %d", int(o))
	}
	return []byte(o.String()), nil
}

func (o *Operator) UnmarshalText(text []byte) error {
	op, err := ParseOperator(string(text))
	if err != nil {
		return err
	}
	*o = op
	return nil
}
