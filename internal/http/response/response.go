// Package response writes the service's JSON wire format. Success bodies
// are the payload itself, not an envelope; error bodies carry a message
// and a flag telling clients whether local generation is a sensible
// fallback. Browser-extension clients depend on both shapes.
package response

import (
	"encoding/json/v2"
	"log/slog"
	"net/http"

	"github.com/chapterforge/chapterforge-server/internal/errors"
)

// ErrorBody is the error wire shape.
type ErrorBody struct {
	Error string `json:"error"`
	// ShouldUseLocalGeneration tells the client the failure is on the
	// completion side and chapters can still be produced locally.
	ShouldUseLocalGeneration bool `json:"shouldUseLocalGeneration"`
}

// JSON writes payload as-is with the given status code.
func JSON(w http.ResponseWriter, status int, payload any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if err := json.MarshalWrite(w, payload); err != nil {
		if logger != nil {
			logger.Error("failed to encode response", "error", err)
		}
	}
}

// OK writes a 200 response with the payload.
func OK(w http.ResponseWriter, payload any, logger *slog.Logger) {
	JSON(w, http.StatusOK, payload, logger)
}

// Error writes an error response with an explicit recoverable flag.
func Error(w http.ResponseWriter, status int, message string, recoverable bool, logger *slog.Logger) {
	JSON(w, status, ErrorBody{Error: message, ShouldUseLocalGeneration: recoverable}, logger)
}

// DomainError maps a coded error onto the wire: its HTTP status, its
// message, and whether local generation can recover from it. Errors
// without a code become opaque 500s marked recoverable, since a broken
// server is exactly when the client should fall back.
func DomainError(w http.ResponseWriter, err error, logger *slog.Logger) {
	var domainErr *errors.Error
	if errors.As(err, &domainErr) {
		Error(w, domainErr.HTTPStatus(), domainErr.Message, domainErr.Code.Recoverable(), logger)
		return
	}

	if logger != nil {
		logger.Error("unhandled error", "error", err)
	}
	Error(w, http.StatusInternalServerError, "internal server error", true, logger)
}
