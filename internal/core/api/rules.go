package api

import (
	"net/http"

	"github.com/logisq/xyronq/internal/store"
	"github.com/logisq/xyronq/internal/types"
)

func (s *Service) handleGetRule(w http.ResponseWriter, r *http.Request) {
	id := types.RuleID(r.PathValue("id"))
	rule, err := s.store.GetRule(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, err, "Rule not found", "Failed to fetch rule", http.StatusInternalServerError)
		return
	}
	normalizeRule(&rule)
	writeJSON(w, http.StatusOK, rule)
}

func (s *Service) handleCreateRule(w http.ResponseWriter, r *http.Request) {
	var req createRuleRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if details := req.validate(); len(details) > 0 {
		writeValidationFailed(w, details)
		return
	}

	rule, err := s.store.CreateRule(r.Context(), types.ScopeID(req.ScopeID), req.ContextFilter)
	if err != nil {
		s.writeStoreError(w, err, "Scope not found", "Failed to create rule", http.StatusBadRequest)
		return
	}
	normalizeRule(&rule)
	writeJSON(w, http.StatusCreated, rule)
}

func (s *Service) handleUpdateRule(w http.ResponseWriter, r *http.Request) {
	var req updateRuleRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if details := req.validate(); len(details) > 0 {
		writeValidationFailed(w, details)
		return
	}

	id := types.RuleID(r.PathValue("id"))
	rule, err := s.store.UpdateRuleFilter(r.Context(), id, req.ContextFilter)
	if err != nil {
		s.writeStoreError(w, err, "Rule not found", "Failed to update rule", http.StatusBadRequest)
		return
	}
	normalizeRule(&rule)
	writeJSON(w, http.StatusOK, rule)
}

func (s *Service) handleDeleteRule(w http.ResponseWriter, r *http.Request) {
	id := types.RuleID(r.PathValue("id"))
	if err := s.store.DeleteRule(r.Context(), id); err != nil {
		s.writeStoreError(w, err, "Rule not found", "Failed to delete rule", http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Service) handleSetStrategy(w http.ResponseWriter, r *http.Request) {
	var req definitionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if details := req.validate(); len(details) > 0 {
		writeValidationFailed(w, details)
		return
	}

	id := types.RuleID(r.PathValue("id"))
	strategy, err := s.store.SetStrategy(r.Context(), id, req.Name, req.Description, req.Parameters)
	if err != nil {
		s.writeStoreError(w, err, "Rule not found", "Failed to set strategy", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, strategy)
}

func (s *Service) handleClearStrategy(w http.ResponseWriter, r *http.Request) {
	id := types.RuleID(r.PathValue("id"))
	if err := s.store.ClearStrategy(r.Context(), id); err != nil {
		s.writeStoreError(w, err, "Strategy not found", "Failed to clear strategy", http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Service) handleAddPolicy(w http.ResponseWriter, r *http.Request) {
	var req definitionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if details := req.validate(); len(details) > 0 {
		writeValidationFailed(w, details)
		return
	}

	id := types.RuleID(r.PathValue("id"))
	policy, err := s.store.AddPolicy(r.Context(), id, req.Name, req.Description, req.Parameters)
	if err != nil {
		s.writeStoreError(w, err, "Rule not found", "Failed to add policy", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusCreated, policy)
}

func (s *Service) handleUpdatePolicy(w http.ResponseWriter, r *http.Request) {
	var req updateDefinitionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if details := req.validate(); len(details) > 0 {
		writeValidationFailed(w, details)
		return
	}

	id := types.PolicyID(r.PathValue("policyId"))
	policy, err := s.store.UpdatePolicy(r.Context(), id, store.PolicyUpdate{
		Name:        req.Name,
		Description: req.Description,
		Parameters:  req.Parameters,
	})
	if err != nil {
		s.writeStoreError(w, err, "Policy not found", "Failed to update policy", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, policy)
}

func (s *Service) handleRemovePolicy(w http.ResponseWriter, r *http.Request) {
	id := types.PolicyID(r.PathValue("policyId"))
	if err := s.store.DeletePolicy(r.Context(), id); err != nil {
		s.writeStoreError(w, err, "Policy not found", "Failed to remove policy", http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Service) handleAddParameter(w http.ResponseWriter, r *http.Request) {
	var req createParameterRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if details := req.validate(); len(details) > 0 {
		writeValidationFailed(w, details)
		return
	}

	id := types.RuleID(r.PathValue("id"))
	param, err := s.store.AddRuleParameter(r.Context(), id, req.ParamID, req.Type, req.Description, req.Value)
	if err != nil {
		s.writeStoreError(w, err, "Rule not found", "Failed to add parameter", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusCreated, param)
}

func (s *Service) handleUpdateParameter(w http.ResponseWriter, r *http.Request) {
	var req updateParameterRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if details := req.validate(); len(details) > 0 {
		writeValidationFailed(w, details)
		return
	}

	id := types.ParameterID(r.PathValue("paramId"))
	param, err := s.store.UpdateRuleParameter(r.Context(), id, store.ParameterUpdate{
		Type:        req.Type,
		Description: req.Description,
		Value:       req.Value,
	})
	if err != nil {
		s.writeStoreError(w, err, "Parameter not found", "Failed to update parameter", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, param)
}

func (s *Service) handleRemoveParameter(w http.ResponseWriter, r *http.Request) {
	id := types.ParameterID(r.PathValue("paramId"))
	if err := s.store.DeleteRuleParameter(r.Context(), id); err != nil {
		s.writeStoreError(w, err, "Parameter not found", "Failed to remove parameter", http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
