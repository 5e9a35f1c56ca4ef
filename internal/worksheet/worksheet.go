// Package worksheet groups generated tasks into a persisted, gradable unit.
package worksheet

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"marith/internal/calculator"
	"marith/internal/rounding"
	"marith/internal/task"
)

var ErrAnswerCount = errors.New("answer count does not match task count")

// Worksheet is a batch of tasks generated from one configuration.
type Worksheet struct {
	ID        string                `json:"id"`
	Config    task.Config           `json:"config"`
	Tasks     []task.ArithmeticTask `json:"tasks"`
	CreatedAt time.Time             `json:"created_at"`
}

// New generates cfg.TaskCount tasks with gen.
func New(gen *task.Generator, cfg task.Config) *Worksheet {
	return &Worksheet{
		ID:        uuid.New().String(),
		Config:    cfg,
		Tasks:     gen.Tasks(cfg),
		CreatedAt: time.Now().UTC(),
	}
}

// TaskGrade is the verdict for a single answer.
type TaskGrade struct {
	Task    string  `json:"task"`
	Answer  float64 `json:"answer"`
	Result  float64 `json:"result"`
	Correct bool    `json:"correct"`
}

// Grade is the verdict for a whole worksheet.
type Grade struct {
	WorksheetID string      `json:"worksheet_id"`
	Tasks       []TaskGrade `json:"tasks"`
	Correct     int         `json:"correct"`
	Total       int         `json:"total"`
}

// Grade compares answers with the task results, position by position.
func (w *Worksheet) Grade(answers []float64) (*Grade, error) {
	if len(answers) != len(w.Tasks) {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrAnswerCount, len(answers), len(w.Tasks))
	}

	g := &Grade{WorksheetID: w.ID, Total: len(w.Tasks)}
	for i, t := range w.Tasks {
		ok := IsCorrect(t.Result, answers[i], t.ResultDecimalPoints)
		if ok {
			g.Correct++
		}
		g.Tasks = append(g.Tasks, TaskGrade{
			Task:    t.Text,
			Answer:  answers[i],
			Result:  t.Result,
			Correct: ok,
		})
	}
	return g, nil
}

// IsCorrect reports whether answer, rounded to points, equals result.
func IsCorrect(result, answer float64, points uint8) bool {
	return rounding.Round(answer, points) == result
}

// Check evaluates task text supplied by a client and grades answer against
// it. The returned result is rounded to points.
func Check(text string, points uint8, answer float64) (result float64, correct bool, err error) {
	v, err := calculator.Calc(text)
	if err != nil {
		return 0, false, err
	}
	result = rounding.Round(v, points)
	return result, IsCorrect(result, answer, points), nil
}
