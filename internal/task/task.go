// Package task generates flat arithmetic practice tasks and evaluates them
// by precedence-ordered reduction.
package task

// ArithmeticTask is one generated exercise.
type ArithmeticTask struct {
	// Text is the rendered expression, e.g. "-12 + 7 * 3".
	Text string `json:"task"`
	// ResultDecimalPoints is the precision Result was rounded to.
	ResultDecimalPoints uint8 `json:"resultDecimalPoints"`
	// Result of Text, rounded to ResultDecimalPoints.
	Result float64 `json:"result"`
}
