// Package page fills worksheet page templates. Placeholders have the form
// {%name%}.
package page

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"strings"

	"marith/internal/params"
	"marith/internal/task"
)

//go:embed templates/worksheet.html
var defaultTemplate string

// Template is a page with {%name%} placeholders.
type Template struct {
	text string
}

// Default returns the built-in worksheet page.
func Default() *Template {
	return &Template{text: defaultTemplate}
}

// Load reads a template from path, or returns Default when path is empty.
func Load(path string) (*Template, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return &Template{text: string(b)}, nil
}

// New wraps template text.
func New(text string) *Template {
	return &Template{text: text}
}

// Render substitutes the configuration and the tasks into the template.
func (t *Template) Render(cfg task.Config, tasks []task.ArithmeticTask) string {
	checked := func(op task.Operator) string {
		if cfg.HasOperator(op) {
			return "checked"
		}
		return ""
	}

	var taskList, answers strings.Builder
	for _, tk := range tasks {
		taskList.WriteString(strconv.Quote(tk.Text))
		taskList.WriteByte(',')

		answers.WriteString(task.FormatNumber(tk.Result))
		answers.WriteByte(',')
	}

	pairs := []string{
		placeholder(params.VariableNum), strconv.Itoa(cfg.VariableCount),
		placeholder(params.VariableMinValue), task.FormatNumber(cfg.VariableRange.Min),
		placeholder(params.VariableMaxValue), task.FormatNumber(cfg.VariableRange.Max),
		placeholder(params.VariableDecimalPoints), strconv.Itoa(int(cfg.VariableDecimalPoints)),
		placeholder(params.ResultDecimalPoints), strconv.Itoa(int(cfg.ResultDecimalPoints)),
		placeholder(params.NumTasks), strconv.Itoa(cfg.TaskCount),
		placeholder("tasks"), taskList.String(),
		placeholder("correctAnswers"), answers.String(),
	}
	for _, op := range task.AllOperators {
		pairs = append(pairs, placeholder(op.String()), checked(op))
	}

	return strings.NewReplacer(pairs...).Replace(t.text)
}

func placeholder(name string) string {
	return "{%" + name + "%}"
}
