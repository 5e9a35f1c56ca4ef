package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

func SendErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	SendJSON(w, statusCode, map[string]string{"error": message})
}

// SendJSON encodes v before writing the status line, so an encoding failure
// turns into a 500 instead of an empty 200.
func SendJSON(w http.ResponseWriter, statusCode int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("failed to encode response", "status", statusCode, "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"Internal server error"}` + "\n"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write(append(data, '\n'))
}
