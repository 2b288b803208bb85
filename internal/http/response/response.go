// Package response defines the JSON envelope shared by every HTTP response and
// writers for handlers that bypass huma.
package response

import (
	"encoding/json"
	"log/slog"
	"net/http"

	apperrors "github.com/qualcodeapp/prefs-core/internal/errors"
)

// Version is bumped whenever the envelope shape changes.
const Version = 1

// Envelope wraps successful responses and plain error responses.
type Envelope struct {
	Version int    `json:"v"`
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ErrorEnvelope wraps coded errors.
type ErrorEnvelope struct {
	Version int    `json:"v"`
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Error writes a coded error response.
func Error(w http.ResponseWriter, status int, code apperrors.Code, message string, logger *slog.Logger) {
	write(w, status, ErrorEnvelope{
		Version: Version,
		Success: false,
		Code:    string(code),
		Message: message,
	}, logger)
}

// MethodNotAllowed writes a 405 response.
func MethodNotAllowed(w http.ResponseWriter, logger *slog.Logger) {
	Error(w, http.StatusMethodNotAllowed, apperrors.CodeValidation, "Method not allowed", logger)
}

// ServiceUnavailable writes a 503 response.
func ServiceUnavailable(w http.ResponseWriter, message string, logger *slog.Logger) {
	Error(w, http.StatusServiceUnavailable, apperrors.CodeInternal, message, logger)
}

func write(w http.ResponseWriter, status int, body any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil && logger != nil {
		logger.Error("Failed to encode JSON response", "error", err)
	}
}
