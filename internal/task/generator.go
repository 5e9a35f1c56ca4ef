package task

import (
	"math/rand/v2"
	"slices"
	"strconv"
	"strings"

	"marith/internal/rounding"
)

// Generator draws random tasks. It is not safe for concurrent use.
type Generator struct {
	rnd *rand.Rand
}

// NewGenerator returns a generator drawing from rnd.
func NewGenerator(rnd *rand.Rand) *Generator {
	return &Generator{rnd: rnd}
}

// NewSeededGenerator returns a generator whose output is fully determined by
// seed.
func NewSeededGenerator(seed uint64) *Generator {
	return NewGenerator(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}

// Tasks generates cfg.TaskCount independent tasks.
func (g *Generator) Tasks(cfg Config) []ArithmeticTask {
	tasks := make([]ArithmeticTask, 0, max(cfg.TaskCount, 0))
	for i := 0; i < cfg.TaskCount; i++ {
		tasks = append(tasks, g.Task(cfg))
	}
	return tasks
}

// Task generates one task. cfg must be valid.
//
// Operands that round to zero are redrawn without limit: a range that cannot
// produce a non-zero value at cfg.VariableDecimalPoints never returns.
func (g *Generator) Task(cfg Config) ArithmeticTask {
	operands := make([]float64, cfg.VariableCount)
	for i := range operands {
		operands[i] = g.operand(cfg)
	}

	operators := make([]Operator, cfg.VariableCount-1)
	for i := range operators {
		operators[i] = cfg.Operators[g.rnd.IntN(len(cfg.Operators))]
	}

	text := Format(operands, operators)

	return ArithmeticTask{
		Text:                text,
		ResultDecimalPoints: cfg.ResultDecimalPoints,
		Result:              rounding.Round(Evaluate(operands, operators), cfg.ResultDecimalPoints),
	}
}

func (g *Generator) operand(cfg Config) float64 {
	lo, hi := cfg.VariableRange.Min, cfg.VariableRange.Max
	for {
		v := rounding.Round(lo+g.rnd.Float64()*(hi-lo), cfg.VariableDecimalPoints)
		if v != 0 {
			return v
		}
	}
}

// Format renders operands and operators as "a op b op c", separated by
// single spaces. len(operators) must be len(operands)-1.
func Format(operands []float64, operators []Operator) string {
	var sb strings.Builder
	for i, v := range operands {
		if i > 0 {
			sb.WriteByte(' ')
			sb.WriteByte(operators[i-1].Symbol())
			sb.WriteByte(' ')
		}
		sb.WriteString(FormatNumber(v))
	}
	return sb.String()
}

// FormatNumber prints v in its shortest exact decimal form without an
// exponent.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Evaluate reduces the expression operands[0] operators[0] operands[1] ...
// to a single value. The leftmost operator of the highest priority is
// collapsed first, which gives * and / precedence over + and - and makes
// operators of equal priority left-associative. The inputs are not modified.
func Evaluate(operands []float64, operators []Operator) float64 {
	values := slices.Clone(operands)
	ops := slices.Clone(operators)

	for len(ops) > 0 {
		i := highestPriority(ops)
		values[i] = ops[i].Apply(values[i], values[i+1])
		values = slices.Delete(values, i+1, i+2)
		ops = slices.Delete(ops, i, i+1)
	}
	return values[0]
}

// highestPriority returns the index of the leftmost operator with the
// maximum priority.
func highestPriority(ops []Operator) int {
	idx := 0
	for i, op := range ops {
		if op.Priority() > ops[idx].Priority() {
			idx = i
		}
	}
	return idx
}
