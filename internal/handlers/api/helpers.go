package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// errorJSON is the error response format.
type errorJSON struct {
	Error string `json:"error"`
}

// writeJSON marshals v as JSON and writes it to the response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// At this point headers are already sent; just log the error.
		slog.Error("failed to encode JSON response", "error", err)
	}
}
