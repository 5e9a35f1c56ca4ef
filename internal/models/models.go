package models

import (
	"marith/internal/task"
	"marith/internal/worksheet"
)

// TasksResponse is returned by the stateless task endpoint.
type TasksResponse struct {
	Config task.Config           `json:"config"`
	Tasks  []task.ArithmeticTask `json:"tasks"`
}

// CheckRequest asks whether Answer is the result of Task.
type CheckRequest struct {
	Task                string  `json:"task"`
	ResultDecimalPoints uint8   `json:"resultDecimalPoints"`
	Answer              float64 `json:"answer"`
}

type CheckResponse struct {
	Correct bool    `json:"correct"`
	Result  float64 `json:"result"`
}

// GenerateRequest creates a worksheet. A nil Config means the default.
type GenerateRequest struct {
	Config *task.Config `json:"config,omitempty"`
	Seed   *uint64      `json:"seed,omitempty"`
}

type GradeRequest struct {
	Answers []float64 `json:"answers"`
}

type WorksheetList struct {
	Worksheets []worksheet.Worksheet `json:"worksheets"`
}
