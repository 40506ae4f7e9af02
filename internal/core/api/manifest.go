package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/logisq/xyronq/internal/manifest"
	"github.com/logisq/xyronq/internal/schema"
	"github.com/logisq/xyronq/internal/types"
)

// manifestEnvelope always reports validation findings alongside the
// manifest so clients can render a health badge without a second call.
type manifestEnvelope struct {
	Manifest         manifest.Manifest `json:"manifest"`
	Valid            bool              `json:"valid"`
	ValidationErrors []schema.Issue    `json:"validationErrors"`
}

func (s *Service) buildEnvelope(domain types.DecisionDomain) (manifestEnvelope, error) {
	doc := manifest.Build(domain)
	result, err := s.schemas.Validate(doc)
	if err != nil {
		return manifestEnvelope{}, err
	}
	issues := result.Issues
	if issues == nil {
		issues = []schema.Issue{}
	}
	return manifestEnvelope{Manifest: doc, Valid: result.Valid, ValidationErrors: issues}, nil
}

func (s *Service) handleDomainManifest(w http.ResponseWriter, r *http.Request) {
	id := types.DomainID(r.PathValue("id"))
	domain, err := s.store.GetDomainGraph(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, err, "Domain not found", "Failed to generate manifest", http.StatusInternalServerError)
		return
	}

	envelope, err := s.buildEnvelope(domain)
	if err != nil {
		s.logger.Error("failed to generate manifest", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to generate manifest")
		return
	}
	writeJSON(w, http.StatusOK, envelope)
}

func (s *Service) handleAllManifests(w http.ResponseWriter, r *http.Request) {
	domains, err := s.store.ListDomainGraphs(r.Context())
	if err != nil {
		s.logger.Error("failed to export all manifests", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to export all manifests")
		return
	}

	envelopes := make([]manifestEnvelope, 0, len(domains))
	allValid := true
	for _, domain := range domains {
		envelope, err := s.buildEnvelope(domain)
		if err != nil {
			s.logger.Error("failed to export all manifests", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "Failed to export all manifests")
			return
		}
		if !envelope.Valid {
			allValid = false
		}
		envelopes = append(envelopes, envelope)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"allValid": allValid,
		"domains":  envelopes,
	})
}

func (s *Service) handleImport(w http.ResponseWriter, r *http.Request) {
	id := types.DomainID(r.PathValue("id"))

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	counts, err := s.importer.Import(r.Context(), id, json.RawMessage(payload))
	if err != nil {
		var vfe *manifest.ValidationFailedError
		var vte *types.ValueTypeError
		switch {
		case errors.Is(err, types.ErrNotFound):
			writeError(w, http.StatusNotFound, "Domain not found")
		case errors.As(err, &vfe):
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"error":            "Schema validation failed",
				"validationErrors": vfe.Issues,
			})
		case errors.As(err, &vte):
			writeValidationFailed(w, []validationDetail{{Path: "value", Message: vte.Error()}})
		case errors.Is(err, manifest.ErrInvalidPayload):
			writeError(w, http.StatusBadRequest,
				`Invalid payload. Expected { contentsByScope: { "ScopeName": [...rules] } } or a full manifest object.`)
		default:
			s.logger.Error("import failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "Import failed")
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message":  "Import successful",
		"imported": counts,
	})
}
