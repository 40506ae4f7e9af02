// Package api provides the HTTP service for the decision configuration API.
package api

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/logisq/xyronq/internal/manifest"
	"github.com/logisq/xyronq/internal/schema"
	"github.com/logisq/xyronq/internal/store"
)

// Service implements the REST API over the decision domain store.
// Thin orchestration layer delegating to store, schema, manifest and
// codegen packages.
type Service struct {
	store    *store.Store
	schemas  *schema.Service
	importer *manifest.Importer
	logger   *zap.Logger
}

// NewService creates the API service with its dependencies.
func NewService(st *store.Store, schemas *schema.Service, importer *manifest.Importer, logger *zap.Logger) (*Service, error) {
	if st == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}
	if schemas == nil {
		return nil, fmt.Errorf("schemas cannot be nil")
	}
	if importer == nil {
		return nil, fmt.Errorf("importer cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:    st,
		schemas:  schemas,
		importer: importer,
		logger:   logger,
	}, nil
}

// Handler returns the fully routed HTTP handler with middleware applied.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	s.registerRoutes(mux)

	var handler http.Handler = mux
	handler = s.requestLogger(handler)
	handler = s.recoverPanics(handler)
	return handler
}

func (s *Service) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/health", s.handleHealth)

	mux.HandleFunc("GET /api/domains", s.handleListDomains)
	mux.HandleFunc("POST /api/domains", s.handleCreateDomain)
	mux.HandleFunc("GET /api/domains/{id}", s.handleGetDomain)
	mux.HandleFunc("PUT /api/domains/{id}", s.handleUpdateDomain)
	mux.HandleFunc("DELETE /api/domains/{id}", s.handleDeleteDomain)

	mux.HandleFunc("GET /api/domains/{id}/manifest", s.handleDomainManifest)
	mux.HandleFunc("POST /api/domains/{id}/import", s.handleImport)
	mux.HandleFunc("GET /api/manifest/all", s.handleAllManifests)

	mux.HandleFunc("POST /api/scopes", s.handleCreateScope)
	mux.HandleFunc("GET /api/scopes/{id}", s.handleGetScope)
	mux.HandleFunc("PUT /api/scopes/{id}", s.handleUpdateScope)
	mux.HandleFunc("DELETE /api/scopes/{id}", s.handleDeleteScope)

	mux.HandleFunc("POST /api/rules", s.handleCreateRule)
	mux.HandleFunc("GET /api/rules/{id}", s.handleGetRule)
	mux.HandleFunc("PUT /api/rules/{id}", s.handleUpdateRule)
	mux.HandleFunc("DELETE /api/rules/{id}", s.handleDeleteRule)
	mux.HandleFunc("PUT /api/rules/{id}/strategy", s.handleSetStrategy)
	mux.HandleFunc("DELETE /api/rules/{id}/strategy", s.handleClearStrategy)
	mux.HandleFunc("POST /api/rules/{id}/policies", s.handleAddPolicy)
	mux.HandleFunc("PUT /api/rules/{id}/policies/{policyId}", s.handleUpdatePolicy)
	mux.HandleFunc("DELETE /api/rules/{id}/policies/{policyId}", s.handleRemovePolicy)
	mux.HandleFunc("POST /api/rules/{id}/parameters", s.handleAddParameter)
	mux.HandleFunc("PUT /api/rules/{id}/parameters/{paramId}", s.handleUpdateParameter)
	mux.HandleFunc("DELETE /api/rules/{id}/parameters/{paramId}", s.handleRemoveParameter)

	mux.HandleFunc("GET /api/schema", s.handleGetSchema)
	mux.HandleFunc("PUT /api/schema", s.handleReplaceSchema)
	mux.HandleFunc("POST /api/schema/reset", s.handleResetSchema)
	mux.HandleFunc("POST /api/schema/validate", s.handleValidateDocument)

	// The literal /hash route takes precedence over the {domainId} wildcard.
	mux.HandleFunc("GET /api/export/csharp", s.handleExportAll)
	mux.HandleFunc("GET /api/export/csharp/hash", s.handleExportHashes)
	mux.HandleFunc("GET /api/export/csharp/{domainId}", s.handleExportDomain)
}

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "xyronq-api",
	})
}
