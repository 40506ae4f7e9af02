package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/logisq/xyronq/internal/types"
)

func (s *Service) handleGetSchema(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"schema":    s.schemas.Current(),
		"isFactory": s.schemas.IsUsingFactorySchema(),
	})
}

func (s *Service) handleReplaceSchema(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	var probe map[string]any
	if len(body) == 0 || json.Unmarshal(body, &probe) != nil {
		writeError(w, http.StatusBadRequest, "Request body must be a valid JSON Schema object")
		return
	}

	if err := s.schemas.Replace(r.Context(), json.RawMessage(body)); err != nil {
		if errors.Is(err, types.ErrSchemaCompile) {
			writeJSON(w, http.StatusUnprocessableEntity, errorBody{
				Error:   "Invalid JSON Schema: compilation failed",
				Details: err.Error(),
			})
			return
		}
		s.logger.Error("failed to replace schema", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to save schema")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"message":   "Schema saved and compiled successfully",
		"isFactory": false,
	})
}

func (s *Service) handleResetSchema(w http.ResponseWriter, r *http.Request) {
	factory, err := s.schemas.Reset(r.Context())
	if err != nil {
		s.logger.Error("failed to reset schema", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to reset schema")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"message":   "Schema reset to factory default",
		"schema":    factory,
		"isFactory": true,
	})
}

func (s *Service) handleValidateDocument(w http.ResponseWriter, r *http.Request) {
	var doc any
	if err := decodeBody(r, &doc); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.schemas.Validate(doc)
	if err != nil {
		s.logger.Error("validation failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "Validation failed", Details: err.Error()})
		return
	}

	if !result.Valid {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"valid":  false,
			"errors": result.Issues,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"valid": true})
}
