package api

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/logisq/xyronq/internal/health"
	"github.com/logisq/xyronq/internal/store"
	"github.com/logisq/xyronq/internal/types"
)

// domainSummary is the list-view projection of a domain, enriched with
// counts and health findings.
type domainSummary struct {
	ID          types.DomainID `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Version     string         `json:"version"`
	ScopeCount  int            `json:"scopeCount"`
	RuleCount   int            `json:"ruleCount"`
	IssueCount  int            `json:"issueCount"`
	Issues      []string       `json:"issues"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

type scopeSummary struct {
	ID          types.ScopeID  `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	DomainID    types.DomainID `json:"domainId"`
	RuleCount   int            `json:"ruleCount"`
	IssueCount  int            `json:"issueCount"`
	Issues      []string       `json:"issues"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

type domainDetail struct {
	ID          types.DomainID `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Version     string         `json:"version"`
	Scopes      []scopeSummary `json:"scopes"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

func (s *Service) handleListDomains(w http.ResponseWriter, r *http.Request) {
	domains, err := s.store.ListDomainGraphs(r.Context())
	if err != nil {
		s.logger.Error("failed to fetch domains", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to fetch domains")
		return
	}

	result := make([]domainSummary, 0, len(domains))
	for _, domain := range domains {
		issues, err := health.DomainIssues(domain, s.schemas)
		if err != nil {
			s.logger.Error("failed to fetch domains", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "Failed to fetch domains")
			return
		}

		ruleCount := 0
		for _, scope := range domain.Scopes {
			ruleCount += len(scope.Rules)
		}

		result = append(result, domainSummary{
			ID:          domain.ID,
			Name:        domain.Name,
			Description: domain.Description,
			Version:     domain.Version,
			ScopeCount:  len(domain.Scopes),
			RuleCount:   ruleCount,
			IssueCount:  len(issues),
			Issues:      issues,
			CreatedAt:   domain.CreatedAt,
			UpdatedAt:   domain.UpdatedAt,
		})
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Service) handleGetDomain(w http.ResponseWriter, r *http.Request) {
	id := types.DomainID(r.PathValue("id"))
	domain, err := s.store.GetDomainGraph(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, err, "Domain not found", "Failed to fetch domain", http.StatusInternalServerError)
		return
	}

	scopes := make([]scopeSummary, 0, len(domain.Scopes))
	for _, scope := range domain.Scopes {
		issues := health.ScopeIssues(scope)
		scopes = append(scopes, scopeSummary{
			ID:          scope.ID,
			Name:        scope.Name,
			Description: scope.Description,
			DomainID:    scope.DomainID,
			RuleCount:   len(scope.Rules),
			IssueCount:  len(issues),
			Issues:      issues,
			CreatedAt:   scope.CreatedAt,
			UpdatedAt:   scope.UpdatedAt,
		})
	}

	writeJSON(w, http.StatusOK, domainDetail{
		ID:          domain.ID,
		Name:        domain.Name,
		Description: domain.Description,
		Version:     domain.Version,
		Scopes:      scopes,
		CreatedAt:   domain.CreatedAt,
		UpdatedAt:   domain.UpdatedAt,
	})
}

func (s *Service) handleCreateDomain(w http.ResponseWriter, r *http.Request) {
	var req createDomainRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if details := req.validate(); len(details) > 0 {
		writeValidationFailed(w, details)
		return
	}

	domain, err := s.store.CreateDomain(r.Context(), req.Name, req.Description, req.Version)
	if err != nil {
		s.writeStoreError(w, err, "Domain not found", "Failed to create domain", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusCreated, domain)
}

func (s *Service) handleUpdateDomain(w http.ResponseWriter, r *http.Request) {
	var req updateDomainRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if details := req.validate(); len(details) > 0 {
		writeValidationFailed(w, details)
		return
	}

	id := types.DomainID(r.PathValue("id"))
	domain, err := s.store.UpdateDomain(r.Context(), id, store.DomainUpdate{
		Name:        req.Name,
		Description: req.Description,
		Version:     req.Version,
	})
	if err != nil {
		s.writeStoreError(w, err, "Domain not found", "Failed to update domain", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, domain)
}

func (s *Service) handleDeleteDomain(w http.ResponseWriter, r *http.Request) {
	id := types.DomainID(r.PathValue("id"))
	if err := s.store.DeleteDomain(r.Context(), id); err != nil {
		s.writeStoreError(w, err, "Domain not found", "Failed to delete domain", http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
