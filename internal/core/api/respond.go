package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/logisq/xyronq/internal/types"
)

// errorBody is the uniform error envelope for non-2xx responses.
type errorBody struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// validationDetail mirrors the per-field findings of a failed request
// body validation.
type validationDetail struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"failed to encode response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorBody{Error: message})
}

func writeValidationFailed(w http.ResponseWriter, details []validationDetail) {
	writeJSON(w, http.StatusBadRequest, errorBody{Error: "Validation failed", Details: details})
}

// writeStoreError maps store errors onto HTTP statuses. notFoundMsg is
// used for missing entities, fallbackMsg with fallbackStatus for
// anything unrecognized.
func (s *Service) writeStoreError(w http.ResponseWriter, err error, notFoundMsg, fallbackMsg string, fallbackStatus int) {
	var vte *types.ValueTypeError
	switch {
	case errors.Is(err, types.ErrNotFound):
		writeError(w, http.StatusNotFound, notFoundMsg)
	case errors.Is(err, types.ErrScopeNameConflict):
		writeError(w, http.StatusConflict, "Scope name already exists in this domain")
	case errors.Is(err, types.ErrInvalidName):
		writeValidationFailed(w, []validationDetail{{Path: "name", Message: types.ErrInvalidName.Error()}})
	case errors.As(err, &vte):
		writeValidationFailed(w, []validationDetail{{Path: "value", Message: vte.Error()}})
	default:
		s.logger.Error(fallbackMsg, zap.Error(err))
		writeError(w, fallbackStatus, fallbackMsg)
	}
}
