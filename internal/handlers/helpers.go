package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/marketbay/auction-engine/internal/engine"
	"github.com/marketbay/auction-engine/internal/model"
	"github.com/marketbay/auction-engine/pkg/config"
)

// GetActorID extracts the caller id stamped by the auth middleware.
func GetActorID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(config.ActorKey).(uuid.UUID)
	return id, ok
}

func writeJSON(w http.ResponseWriter, status int, payload model.Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// RespondSuccess wraps data in the shared envelope.
func RespondSuccess(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, model.Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// RespondError sends the failure envelope. Callers branch on success,
// the status code is informational.
func RespondError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, model.Response{
		Success: false,
		Message: message,
	})
}

// RespondEngineError maps a rejected command onto the envelope. The
// engine's message is surfaced verbatim; anything that is not a
// business-rule rejection becomes an opaque 500.
func RespondEngineError(w http.ResponseWriter, err error) {
	var e *engine.Error
	if !errors.As(err, &e) {
		RespondError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	RespondError(w, statusFor(e.Kind), e.Message)
}

func statusFor(k engine.Kind) int {
	switch k {
	case engine.KindValidation:
		return http.StatusBadRequest
	case engine.KindConflict:
		return http.StatusConflict
	case engine.KindAuthorization:
		return http.StatusForbidden
	case engine.KindNotFound:
		return http.StatusNotFound
	case engine.KindExpired:
		return http.StatusGone
	}
	return http.StatusInternalServerError
}
