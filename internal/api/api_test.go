package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marith/internal/auth"
	"marith/internal/database"
	"marith/internal/models"
	"marith/internal/page"
	"marith/internal/task"
	"marith/internal/worksheet"
)

// fixedDefaults has a single-value range so every task is "5 + 5".
func fixedDefaults() task.Config {
	return task.Config{
		VariableCount:         2,
		VariableRange:         task.Range{Min: 5, Max: 5},
		Operators:             []task.Operator{task.Addition},
		VariableDecimalPoints: 0,
		ResultDecimalPoints:   0,
		TaskCount:             2,
	}
}

func newTestServer(t *testing.T, defaults task.Config) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store, err := database.Open(filepath.Join(t.TempDir(), "api.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	srv := NewServer(store, auth.NewManager("test-secret", time.Hour), page.Default(), defaults, logger)
	return srv.Router()
}

func do(t *testing.T, h http.Handler, method, target, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHandlePage(t *testing.T) {
	h := newTestServer(t, fixedDefaults())

	w := do(t, h, http.MethodGet, "/", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), `const tasks = ["5 + 5","5 + 5",];`)
	assert.Contains(t, w.Body.String(), `const correctAnswers = [10,10,];`)
	assert.Contains(t, w.Body.String(), `name="addition" checked`)
	assert.Contains(t, w.Body.String(), `name="division" >`)
}

func TestHandleTasks(t *testing.T) {
	h := newTestServer(t, task.DefaultConfig())

	tests := []struct {
		name      string
		query     string
		wantCount int
		wantVars  int
	}{
		{name: "defaults", query: "", wantCount: 10, wantVars: 3},
		{name: "custom", query: "?variableNum=4&numTasks=3&variableMinValue=1&variableMaxValue=9", wantCount: 3, wantVars: 4},
		{name: "invalid falls back", query: "?variableNum=1&numTasks=3", wantCount: 10, wantVars: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, http.MethodGet, "/api/v1/tasks"+tt.query, "", nil)
			require.Equal(t, http.StatusOK, w.Code)

			var resp models.TasksResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Len(t, resp.Tasks, tt.wantCount)
			assert.Equal(t, tt.wantVars, resp.Config.VariableCount)
			for _, tk := range resp.Tasks {
				assert.Len(t, strings.Split(tk.Text, " "), 2*tt.wantVars-1)
			}
		})
	}
}

func TestHandleTasksSeed(t *testing.T) {
	h := newTestServer(t, task.DefaultConfig())

	a := do(t, h, http.MethodGet, "/api/v1/tasks?seed=12", "", nil)
	b := do(t, h, http.MethodGet, "/api/v1/tasks?seed=12", "", nil)

	assert.Equal(t, a.Body.String(), b.Body.String())
}

func TestHandleCheck(t *testing.T) {
	h := newTestServer(t, task.DefaultConfig())

	tests := []struct {
		name        string
		body        models.CheckRequest
		wantStatus  int
		wantCorrect bool
		wantResult  float64
	}{
		{
			name:        "correct",
			body:        models.CheckRequest{Task: "2 + 3 * 4", Answer: 14},
			wantStatus:  http.StatusOK,
			wantCorrect: true,
			wantResult:  14,
		},
		{
			name:       "wrong",
			body:       models.CheckRequest{Task: "10 - 2 - 5", Answer: 13},
			wantStatus: http.StatusOK,
			wantResult: 3,
		},
		{
			name:        "rounded",
			body:        models.CheckRequest{Task: "-7 / 3", ResultDecimalPoints: 2, Answer: -2.33},
			wantStatus:  http.StatusOK,
			wantCorrect: true,
			wantResult:  -2.33,
		},
		{
			name:       "empty",
			body:       models.CheckRequest{Task: " "},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "division by zero",
			body:       models.CheckRequest{Task: "1 / 0"},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "overflow",
			body:       models.CheckRequest{Task: "1" + strings.Repeat("0", 308) + " * 10"},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "separated operands",
			body:       models.CheckRequest{Task: "1 2 + 3", Answer: 15},
			wantStatus: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, http.MethodPost, "/api/v1/check", "", tt.body)
			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.wantStatus != http.StatusOK {
				return
			}

			var resp models.CheckResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantCorrect, resp.Correct)
			assert.Equal(t, tt.wantResult, resp.Result)
		})
	}
}

func TestSendJSONEncodeFailure(t *testing.T) {
	w := httptest.NewRecorder()
	SendJSON(w, http.StatusOK, models.CheckResponse{Result: math.Inf(1)})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "error")
}

func login(t *testing.T, h http.Handler) string {
	t.Helper()
	creds := models.RegisterRequest{Login: "ada", Password: "lovelace"}

	w := do(t, h, http.MethodPost, "/api/v1/register", "", creds)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = do(t, h, http.MethodPost, "/api/v1/login", "", models.LoginRequest(creds))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestAuthHandlers(t *testing.T) {
	h := newTestServer(t, task.DefaultConfig())
	login(t, h)

	w := do(t, h, http.MethodPost, "/api/v1/register", "", models.RegisterRequest{Login: "ada", Password: "x"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, h, http.MethodPost, "/api/v1/register", "", models.RegisterRequest{Login: "", Password: "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, http.MethodPost, "/api/v1/login", "", models.LoginRequest{Login: "ada", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, h, http.MethodPost, "/api/v1/login", "", models.LoginRequest{Login: "nobody", Password: "x"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, h, http.MethodGet, "/api/v1/token-info", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"expirationMinutes":"60"}`, w.Body.String())
}

func TestWorksheetFlow(t *testing.T) {
	h := newTestServer(t, fixedDefaults())

	w := do(t, h, http.MethodPost, "/api/v1/worksheets", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token := login(t, h)

	w = do(t, h, http.MethodPost, "/api/v1/worksheets", token, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var ws worksheet.Worksheet
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ws))
	require.Len(t, ws.Tasks, 2)
	assert.Equal(t, "5 + 5", ws.Tasks[0].Text)

	w = do(t, h, http.MethodGet, "/api/v1/worksheets/"+ws.ID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got worksheet.Worksheet
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, ws.Tasks, got.Tasks)

	w = do(t, h, http.MethodGet, "/api/v1/worksheets/missing", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, h, http.MethodPost, "/api/v1/worksheets/"+ws.ID+"/grade", token, models.GradeRequest{Answers: []float64{10, 11}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var grade worksheet.Grade
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &grade))
	assert.Equal(t, 1, grade.Correct)
	assert.Equal(t, 2, grade.Total)

	w = do(t, h, http.MethodPost, "/api/v1/worksheets/"+ws.ID+"/grade", token, models.GradeRequest{Answers: []float64{10}})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = do(t, h, http.MethodGet, "/api/v1/worksheets", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list models.WorksheetList
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Worksheets, 1)
	assert.Equal(t, ws.ID, list.Worksheets[0].ID)
}

func TestCreateWorksheetConfig(t *testing.T) {
	h := newTestServer(t, task.DefaultConfig())
	token := login(t, h)

	seed := uint64(3)
	cfg := task.Config{
		VariableCount: 4,
		VariableRange: task.Range{Min: 1, Max: 9},
		Operators:     []task.Operator{task.Multiplication},
		TaskCount:     5,
	}

	create := func(req models.GenerateRequest) worksheet.Worksheet {
		w := do(t, h, http.MethodPost, "/api/v1/worksheets", token, req)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		var ws worksheet.Worksheet
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ws))
		return ws
	}

	a := create(models.GenerateRequest{Config: &cfg, Seed: &seed})
	b := create(models.GenerateRequest{Config: &cfg, Seed: &seed})
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, a.Tasks, b.Tasks)
	require.Len(t, a.Tasks, 5)
	for _, tk := range a.Tasks {
		assert.Equal(t, 3, strings.Count(tk.Text, "*"), tk.Text)
		assert.NotContains(t, tk.Text, "+")
	}

	invalid := cfg
	invalid.VariableCount = 99
	c := create(models.GenerateRequest{Config: &invalid})
	assert.Equal(t, task.DefaultConfig(), c.Config)
}
