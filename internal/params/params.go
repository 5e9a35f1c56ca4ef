// Package params builds a task configuration from untrusted request input.
package params

import (
	"math"
	"net/url"
	"strconv"

	"marith/internal/task"
)

// Query parameter names.
const (
	VariableNum           = "variableNum"
	VariableMinValue      = "variableMinValue"
	VariableMaxValue      = "variableMaxValue"
	VariableDecimalPoints = "variableDecimalPoints"
	ResultDecimalPoints   = "resultDecimalPoints"
	NumTasks              = "numTasks"
)

// MaxTaskCount bounds the number of tasks a single request may ask for.
const MaxTaskCount = math.MaxUint8

// FromQuery reads a configuration from query parameters, starting from base.
// A parameter that is missing or does not parse leaves the base value.
// The range is taken only when both bounds parse and min < max. Present
// operator flags are appended to the base operators. The result is replaced
// by base when it is not valid.
func FromQuery(q url.Values, base task.Config) task.Config {
	cfg := base
	cfg.Operators = append([]task.Operator(nil), base.Operators...)

	if n, ok := parseUint8(q, VariableNum); ok {
		cfg.VariableCount = int(n)
	}

	if lo, err := strconv.ParseInt(q.Get(VariableMinValue), 10, 32); err == nil {
		if hi, err := strconv.ParseInt(q.Get(VariableMaxValue), 10, 32); err == nil && lo < hi {
			cfg.VariableRange = task.Range{Min: float64(lo), Max: float64(hi)}
		}
	}

	for _, op := range task.AllOperators {
		if q.Has(op.String()) {
			cfg.Operators = append(cfg.Operators, op)
		}
	}

	if n, ok := parseUint8(q, VariableDecimalPoints); ok {
		cfg.VariableDecimalPoints = n
	}
	if n, ok := parseUint8(q, ResultDecimalPoints); ok {
		cfg.ResultDecimalPoints = n
	}
	if n, ok := parseUint8(q, NumTasks); ok {
		cfg.TaskCount = int(n)
	}

	if !cfg.IsValid() {
		return base
	}
	return cfg
}

// Sanitize makes a configuration received as JSON safe to generate from:
// a range that is not made of integral int32 bounds with min < max is
// replaced by base's range, and a task count outside [0, MaxTaskCount] by
// base's count. The result is replaced by base when it is not valid.
//
// Integral bounds with min < max always contain a non-zero integer, so
// operand sampling terminates; int32 bounds keep a 30-operand product
// finite.
func Sanitize(cfg, base task.Config) task.Config {
	if !safeRange(cfg.VariableRange) {
		cfg.VariableRange = base.VariableRange
	}
	if !safeCount(cfg.TaskCount) {
		cfg.TaskCount = base.TaskCount
	}

	if !cfg.IsValid() {
		return base
	}
	return cfg
}

// Safe reports whether cfg can serve as the base of FromQuery and Sanitize:
// it is valid, its range has integral int32 bounds with min < max and its
// task count is within [0, MaxTaskCount].
func Safe(cfg task.Config) bool {
	return cfg.IsValid() && safeRange(cfg.VariableRange) && safeCount(cfg.TaskCount)
}

func safeRange(r task.Range) bool {
	return integral32(r.Min) && integral32(r.Max) && r.Min < r.Max
}

func safeCount(n int) bool {
	return n >= 0 && n <= MaxTaskCount
}

func integral32(v float64) bool {
	return v == math.Trunc(v) && v >= math.MinInt32 && v <= math.MaxInt32
}

func parseUint8(q url.Values, key string) (uint8, bool) {
	n, err := strconv.ParseUint(q.Get(key), 10, 8)
	if err != nil {
		return 0, false
	}
	return uint8(n), true
}
