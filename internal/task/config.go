package task

import "slices"

const (
	MinVariableCount = 2
	MaxVariableCount = 30
)

// Range is an inclusive interval operands are drawn from.
type Range struct {
	Min float64 `json:"min" toml:"min" yaml:"min"`
	Max float64 `json:"max" toml:"max" yaml:"max"`
}

// Config controls task generation. Only VariableCount and Operators are
// checked by IsValid; the rest is taken as given.
type Config struct {
	VariableCount         int        `json:"variableNum" toml:"variable_num" yaml:"variable_num"`
	VariableRange         Range      `json:"variableRange" toml:"variable_range" yaml:"variable_range"`
	Operators             []Operator `json:"operators" toml:"operators" yaml:"operators"`
	VariableDecimalPoints uint8      `json:"variableDecimalPoints" toml:"variable_decimal_points" yaml:"variable_decimal_points"`
	ResultDecimalPoints   uint8      `json:"resultDecimalPoints" toml:"result_decimal_points" yaml:"result_decimal_points"`
	TaskCount             int        `json:"numTasks" toml:"num_tasks" yaml:"num_tasks"`
}

// DefaultConfig is used whenever no configuration is given or the given one
// is invalid.
func DefaultConfig() Config {
	return Config{
		VariableCount: 3,
		VariableRange: Range{Min: -100, Max: 100},
		Operators: []Operator{
			Addition,
			Subtraction,
			Multiplication,
			Division,
		},
		VariableDecimalPoints: 0,
		ResultDecimalPoints:   1,
		TaskCount:             10,
	}
}

// IsValid reports whether tasks may be generated from c.
func (c Config) IsValid() bool {
	if c.VariableCount < MinVariableCount || c.VariableCount > MaxVariableCount {
		return false
	}
	return len(c.Operators) > 0
}

// HasOperator reports whether op is among the allowed operators.
func (c Config) HasOperator(op Operator) bool {
	return slices.Contains(c.Operators, op)
}
