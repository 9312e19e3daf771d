// Package web holds the JSON response helpers shared by every API handler.
package web

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// JSON writes v as a JSON response with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response failed", slog.Any("err", err))
	}
}

// Error writes a JSON error body {"error": msg}.
func Error(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, map[string]string{"error": msg})
}

// Internal logs err and answers with a generic 500. Query detail never
// reaches the client.
func Internal(w http.ResponseWriter, op string, err error) {
	slog.Error(op, slog.Any("err", err))
	Error(w, http.StatusInternalServerError, "error interno del servidor")
}
