package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/JonMunkholm/sheetapi/internal/sheet"
)

// successResponse is the envelope for successful operations.
type successResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// errorResponse is the envelope for failed operations.
type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
}

// writeData writes a success envelope with a 200 status.
func writeData(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(successResponse{Success: true, Data: data}); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// writeFailure writes an error envelope with the given status and code.
func writeFailure(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(errorResponse{Error: message, Code: code}); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// writeServiceError maps a service-layer error to an HTTP status and
// the stable user-facing message for it.
func writeServiceError(w http.ResponseWriter, err error) {
	msg := sheet.MapError(err)
	writeFailure(w, statusFor(err), msg.Code, msg.Message)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, sheet.ErrNoStore),
		errors.Is(err, sheet.ErrNoTabs),
		errors.Is(err, sheet.ErrNoHeader),
		errors.Is(err, sheet.ErrInvalidRowID):
		return http.StatusBadRequest
	case errors.Is(err, sheet.ErrRowNotFound),
		errors.Is(err, sheet.ErrFieldNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
