package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"marith/internal/auth"
	"marith/internal/database"
	"marith/internal/models"
	"marith/internal/params"
	"marith/internal/worksheet"
)

func (s *Server) HandleCreateWorksheet(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		SendErrorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req models.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		SendErrorResponse(w, http.StatusBadRequest, "Invalid request")
		return
	}

	cfg := s.defaults
	if req.Config != nil {
		cfg = params.Sanitize(*req.Config, s.defaults)
	}

	ws := worksheet.New(s.generator(req.Seed), cfg)
	if err := s.store.SaveWorksheet(ws, userID); err != nil {
		s.log.Error("saving worksheet failed", "user_id", userID, "error", err)
		SendErrorResponse(w, http.StatusInternalServerError, "Failed to save worksheet")
		return
	}

	SendJSON(w, http.StatusCreated, ws)
}

func (s *Server) HandleListWorksheets(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		SendErrorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	worksheets, err := s.store.ListWorksheets(userID)
	if err != nil {
		s.log.Error("listing worksheets failed", "user_id", userID, "error", err)
		SendErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve history")
		return
	}

	SendJSON(w, http.StatusOK, models.WorksheetList{Worksheets: worksheets})
}

func (s *Server) HandleGetWorksheet(w http.ResponseWriter, r *http.Request) {
	ws, ok := s.loadWorksheet(w, r)
	if !ok {
		return
	}
	SendJSON(w, http.StatusOK, ws)
}

func (s *Server) HandleGradeWorksheet(w http.ResponseWriter, r *http.Request) {
	ws, ok := s.loadWorksheet(w, r)
	if !ok {
		return
	}

	var req models.GradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		SendErrorResponse(w, http.StatusBadRequest, "Invalid request")
		return
	}

	grade, err := ws.Grade(req.Answers)
	if err != nil {
		SendErrorResponse(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	SendJSON(w, http.StatusOK, grade)
}

// loadWorksheet writes the error response itself when it returns false.
func (s *Server) loadWorksheet(w http.ResponseWriter, r *http.Request) (*worksheet.Worksheet, bool) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		SendErrorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return nil, false
	}

	ws, err := s.store.GetWorksheet(chi.URLParam(r, "id"), userID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			SendErrorResponse(w, http.StatusNotFound, "Worksheet not found")
			return nil, false
		}
		s.log.Error("loading worksheet failed", "user_id", userID, "error", err)
		SendErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve worksheet")
		return nil, false
	}
	return ws, true
}
