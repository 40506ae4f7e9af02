package api

import (
	"net/http"

	"github.com/logisq/xyronq/internal/store"
	"github.com/logisq/xyronq/internal/types"
)

// ruleView enriches a rule with its per-rule health findings.
type ruleView struct {
	types.PolicyRule
	Issues []string `json:"issues"`
}

type scopeDetail struct {
	types.DecisionScope
	Rules []ruleView `json:"rules"`
}

// normalizeRule replaces nil child slices so they serialize as empty
// arrays rather than null.
func normalizeRule(rule *types.PolicyRule) {
	if rule.Policies == nil {
		rule.Policies = []types.PolicyDefinition{}
	}
	if rule.Parameters == nil {
		rule.Parameters = []types.RuleParameter{}
	}
}

func (s *Service) handleGetScope(w http.ResponseWriter, r *http.Request) {
	id := types.ScopeID(r.PathValue("id"))
	scope, err := s.store.GetScopeGraph(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, err, "Scope not found", "Failed to fetch scope", http.StatusInternalServerError)
		return
	}

	rules := make([]ruleView, 0, len(scope.Rules))
	for _, rule := range scope.Rules {
		normalizeRule(&rule)
		issues := []string{}
		if rule.Strategy == nil {
			issues = append(issues, "Rule missing strategy")
		}
		rules = append(rules, ruleView{PolicyRule: rule, Issues: issues})
	}
	scope.Rules = nil

	writeJSON(w, http.StatusOK, scopeDetail{DecisionScope: scope, Rules: rules})
}

func (s *Service) handleCreateScope(w http.ResponseWriter, r *http.Request) {
	var req createScopeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if details := req.validate(); len(details) > 0 {
		writeValidationFailed(w, details)
		return
	}

	scope, err := s.store.CreateScope(r.Context(), types.DomainID(req.DomainID), req.Name, req.Description)
	if err != nil {
		s.writeStoreError(w, err, "Domain not found", "Failed to create scope", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusCreated, scope)
}

func (s *Service) handleUpdateScope(w http.ResponseWriter, r *http.Request) {
	var req updateScopeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if details := req.validate(); len(details) > 0 {
		writeValidationFailed(w, details)
		return
	}

	id := types.ScopeID(r.PathValue("id"))
	scope, err := s.store.UpdateScope(r.Context(), id, store.ScopeUpdate{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		s.writeStoreError(w, err, "Scope not found", "Failed to update scope", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, scope)
}

func (s *Service) handleDeleteScope(w http.ResponseWriter, r *http.Request) {
	id := types.ScopeID(r.PathValue("id"))
	if err := s.store.DeleteScope(r.Context(), id); err != nil {
		s.writeStoreError(w, err, "Scope not found", "Failed to delete scope", http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
