package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"marith/internal/database"
	"marith/internal/models"
)

func (s *Server) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		SendErrorResponse(w, http.StatusBadRequest, "Invalid request")
		return
	}

	if strings.TrimSpace(req.Login) == "" || strings.TrimSpace(req.Password) == "" {
		SendErrorResponse(w, http.StatusBadRequest, "Login and password required")
		return
	}

	if _, err := s.store.CreateUser(req.Login, req.Password); err != nil {
		if errors.Is(err, database.ErrUserExists) {
			SendErrorResponse(w, http.StatusConflict, "User already exists")
			return
		}
		s.log.Error("register failed", "login", req.Login, "error", err)
		SendErrorResponse(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	SendJSON(w, http.StatusCreated, map[string]string{"status": "success"})
}

func (s *Server) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		SendErrorResponse(w, http.StatusBadRequest, "Invalid request")
		return
	}

	user, err := s.store.GetUser(req.Login)
	if err != nil {
		if !errors.Is(err, database.ErrNotFound) {
			s.log.Error("login failed", "login", req.Login, "error", err)
		}
		SendErrorResponse(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	if !database.CheckPasswordHash(req.Password, user.Password) {
		SendErrorResponse(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := s.auth.GenerateToken(user.ID, user.Login)
	if err != nil {
		s.log.Error("token generation failed", "error", err)
		SendErrorResponse(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	SendJSON(w, http.StatusOK, models.AuthResponse{Token: token, Status: "success"})
}

// HandleTokenInfo reports the token lifetime in minutes.
func (s *Server) HandleTokenInfo(w http.ResponseWriter, r *http.Request) {
	SendJSON(w, http.StatusOK, map[string]string{
		"expirationMinutes": strconv.Itoa(int(s.auth.TTL().Minutes())),
	})
}
