// Package handler exposes the client's operations over HTTP for the
// browser frontend. Handlers decode requests, call into the session,
// feed, and social layers, and translate domain errors to status codes.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/chymezy/decentra-client/internal/apperror"
)

// ErrorResponse is the uniform error shape across all endpoints: a
// machine-readable kind and a human-readable message.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// writeJSON sends data with the given status. Headers must be set
// before the first body write, hence the ordering here.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a domain error to HTTP. The mapping lives here and
// nowhere else; the layers below never see status codes.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, apperror.ErrAuthRequired):
			status = http.StatusUnauthorized
		case errors.Is(err, apperror.ErrRateLimited):
			status = http.StatusTooManyRequests
		case errors.Is(err, apperror.ErrValidation):
			status = http.StatusBadRequest
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
		case errors.Is(err, apperror.ErrPending):
			status = http.StatusConflict
		case errors.Is(err, apperror.ErrTimeout):
			status = http.StatusGatewayTimeout
		case errors.Is(err, apperror.ErrRemote):
			status = http.StatusBadGateway
		}
		writeJSON(w, status, ErrorResponse{
			Error:   string(appErr.Kind),
			Message: appErr.Message,
		})
		return
	}

	// Unknown error: never leak internals to the client.
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   string(apperror.KindUnknown),
		Message: "An unexpected error occurred",
	})
}

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperror.ValidationFailed("body", "Invalid JSON request body")
	}
	return nil
}
