package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/logisq/xyronq/internal/types"
)

// Row structs mirror table columns 1:1. JSON columns stay TEXT at this
// level; decoding into ContextFilter/ParameterMap happens in the
// conversion helpers so a malformed row surfaces as an explicit error
// instead of a half-populated entity.

type domainRow struct {
	DomainID    string `db:"domain_id"`
	Name        string `db:"name"`
	Description string `db:"description"`
	Version     string `db:"version"`
	CreatedAt   string `db:"created_at"`
	UpdatedAt   string `db:"updated_at"`
}

type scopeRow struct {
	ScopeID     string `db:"scope_id"`
	DomainID    string `db:"domain_id"`
	Name        string `db:"name"`
	Description string `db:"description"`
	CreatedAt   string `db:"created_at"`
	UpdatedAt   string `db:"updated_at"`
}

type ruleRow struct {
	RuleID           string `db:"rule_id"`
	ScopeID          string `db:"scope_id"`
	ContextFilter    string `db:"context_filter"`
	SpecificityScore int    `db:"specificity_score"`
	CreatedAt        string `db:"created_at"`
	UpdatedAt        string `db:"updated_at"`
}

type strategyRow struct {
	StrategyID  string `db:"strategy_id"`
	RuleID      string `db:"rule_id"`
	Name        string `db:"name"`
	Description string `db:"description"`
	Parameters  string `db:"parameters"`
	CreatedAt   string `db:"created_at"`
	UpdatedAt   string `db:"updated_at"`
}

type policyRow struct {
	PolicyID    string `db:"policy_id"`
	RuleID      string `db:"rule_id"`
	Name        string `db:"name"`
	Description string `db:"description"`
	Parameters  string `db:"parameters"`
	CreatedAt   string `db:"created_at"`
	UpdatedAt   string `db:"updated_at"`
}

type parameterRow struct {
	ParameterID string         `db:"parameter_id"`
	RuleID      string         `db:"rule_id"`
	ParamID     string         `db:"param_id"`
	Type        string         `db:"type"`
	Description string         `db:"description"`
	Value       sql.NullString `db:"value"`
	CreatedAt   string         `db:"created_at"`
	UpdatedAt   string         `db:"updated_at"`
}

func parseTimestamp(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func (r domainRow) toDomain() types.DecisionDomain {
	return types.DecisionDomain{
		ID:          types.DomainID(r.DomainID),
		Name:        r.Name,
		Description: r.Description,
		Version:     r.Version,
		CreatedAt:   parseTimestamp(r.CreatedAt),
		UpdatedAt:   parseTimestamp(r.UpdatedAt),
	}
}

func (r scopeRow) toScope() types.DecisionScope {
	return types.DecisionScope{
		ID:          types.ScopeID(r.ScopeID),
		DomainID:    types.DomainID(r.DomainID),
		Name:        r.Name,
		Description: r.Description,
		CreatedAt:   parseTimestamp(r.CreatedAt),
		UpdatedAt:   parseTimestamp(r.UpdatedAt),
	}
}

func (r ruleRow) toRule() (types.PolicyRule, error) {
	filter := types.ContextFilter{}
	if r.ContextFilter != "" {
		if err := json.Unmarshal([]byte(r.ContextFilter), &filter); err != nil {
			return types.PolicyRule{}, fmt.Errorf("rule %s: malformed context filter: %w", r.RuleID, err)
		}
	}
	return types.PolicyRule{
		ID:               types.RuleID(r.RuleID),
		ScopeID:          types.ScopeID(r.ScopeID),
		ContextFilter:    filter,
		SpecificityScore: r.SpecificityScore,
		CreatedAt:        parseTimestamp(r.CreatedAt),
		UpdatedAt:        parseTimestamp(r.UpdatedAt),
	}, nil
}

func (r strategyRow) toStrategy() (types.StrategyDefinition, error) {
	params, err := decodeParameters(r.Parameters)
	if err != nil {
		return types.StrategyDefinition{}, fmt.Errorf("strategy %s: %w", r.StrategyID, err)
	}
	return types.StrategyDefinition{
		ID:          types.StrategyID(r.StrategyID),
		RuleID:      types.RuleID(r.RuleID),
		Name:        r.Name,
		Description: r.Description,
		Parameters:  params,
		CreatedAt:   parseTimestamp(r.CreatedAt),
		UpdatedAt:   parseTimestamp(r.UpdatedAt),
	}, nil
}

func (r policyRow) toPolicy() (types.PolicyDefinition, error) {
	params, err := decodeParameters(r.Parameters)
	if err != nil {
		return types.PolicyDefinition{}, fmt.Errorf("policy %s: %w", r.PolicyID, err)
	}
	return types.PolicyDefinition{
		ID:          types.PolicyID(r.PolicyID),
		RuleID:      types.RuleID(r.RuleID),
		Name:        r.Name,
		Description: r.Description,
		Parameters:  params,
		CreatedAt:   parseTimestamp(r.CreatedAt),
		UpdatedAt:   parseTimestamp(r.UpdatedAt),
	}, nil
}

func (r parameterRow) toParameter() types.RuleParameter {
	var value *string
	if r.Value.Valid {
		v := r.Value.String
		value = &v
	}
	return types.RuleParameter{
		ID:          types.ParameterID(r.ParameterID),
		RuleID:      types.RuleID(r.RuleID),
		ParamID:     r.ParamID,
		Type:        types.ParamType(r.Type),
		Description: r.Description,
		Value:       value,
		CreatedAt:   parseTimestamp(r.CreatedAt),
		UpdatedAt:   parseTimestamp(r.UpdatedAt),
	}
}

func decodeParameters(raw string) (types.ParameterMap, error) {
	if raw == "" || raw == "{}" {
		return types.ParameterMap{}, nil
	}
	var params types.ParameterMap
	if err := json.Unmarshal([]byte(raw), &params); err != nil {
		return nil, fmt.Errorf("malformed parameter map: %w", err)
	}
	return params, nil
}

func encodeJSON(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to encode JSON column: %w", err)
	}
	return string(raw), nil
}
