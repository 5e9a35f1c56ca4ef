package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"marith/internal/models"
	"marith/internal/params"
	"marith/internal/worksheet"
)

// HandlePage renders the worksheet page for the query configuration.
func (s *Server) HandlePage(w http.ResponseWriter, r *http.Request) {
	cfg := params.FromQuery(r.URL.Query(), s.defaults)
	tasks := s.generator(querySeed(r)).Tasks(cfg)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(s.page.Render(cfg, tasks)))
}

// HandleTasks returns the tasks for the query configuration as JSON.
func (s *Server) HandleTasks(w http.ResponseWriter, r *http.Request) {
	cfg := params.FromQuery(r.URL.Query(), s.defaults)
	tasks := s.generator(querySeed(r)).Tasks(cfg)

	SendJSON(w, http.StatusOK, models.TasksResponse{Config: cfg, Tasks: tasks})
}

// HandleCheck evaluates client supplied task text and grades the answer.
func (s *Server) HandleCheck(w http.ResponseWriter, r *http.Request) {
	var req models.CheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		SendErrorResponse(w, http.StatusBadRequest, "Invalid request")
		return
	}

	if strings.TrimSpace(req.Task) == "" {
		SendErrorResponse(w, http.StatusUnprocessableEntity, "Expression is not valid")
		return
	}

	result, correct, err := worksheet.Check(req.Task, req.ResultDecimalPoints, req.Answer)
	if err != nil {
		s.log.Debug("check failed", "task", req.Task, "error", err)
		SendErrorResponse(w, http.StatusUnprocessableEntity, "Expression is not valid")
		return
	}

	SendJSON(w, http.StatusOK, models.CheckResponse{Correct: correct, Result: result})
}

func querySeed(r *http.Request) *uint64 {
	seed, err := strconv.ParseUint(r.URL.Query().Get("seed"), 10, 64)
	if err != nil {
		return nil
	}
	return &seed
}
