// Package store is the persistence facade for the decision configuration
// graph. It exposes CRUD plus ordered retrieval (scopes by name, rules by
// specificity score) over sqlx, with named statements loaded from embedded
// .sql files.
//
// Cascade semantics live in the schema (ON DELETE CASCADE down the
// domain -> scope -> rule -> {strategy, policies, parameters} chain); the
// store only adds the checks the schema cannot express: the domain name
// pattern, scope name uniqueness reported as a conflict, and rule
// parameter type/value consistency at the point of write.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/logisq/xyronq/internal/types"
)

// Store wraps a database handle with the named query set. Methods run
// against ext, which is either the pooled connection or an open
// transaction (see WithTx).
type Store struct {
	db  *sqlx.DB
	ext sqlx.ExtContext
	q   *queries
}

// New creates a Store over an open connection.
func New(conn *sqlx.DB) (*Store, error) {
	if conn == nil {
		return nil, fmt.Errorf("conn cannot be nil")
	}
	q, err := loadQueries()
	if err != nil {
		return nil, err
	}
	return &Store{db: conn, ext: conn, q: q}, nil
}

// WithTx runs fn with a transaction-bound Store. The transaction commits
// when fn returns nil and rolls back otherwise. Nesting is not supported.
func (s *Store) WithTx(ctx context.Context, fn func(tx *Store) error) error {
	if s.db == nil {
		return fmt.Errorf("nested transactions are not supported")
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	bound := &Store{ext: tx, q: s.q}
	if err := fn(bound); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// CreateDomain persists a new decision domain. Name must match the
// identifier pattern; version defaults to 1.0.0.
func (s *Store) CreateDomain(ctx context.Context, name, description, version string) (types.DecisionDomain, error) {
	if !types.NamePattern.MatchString(name) {
		return types.DecisionDomain{}, fmt.Errorf("domain name %q: %w", name, types.ErrInvalidName)
	}
	if version == "" {
		version = "1.0.0"
	}
	id := types.NewDomainID()
	ts := now()
	if _, err := s.q.exec(ctx, s.ext, "create-domain", string(id), name, description, version, ts, ts); err != nil {
		return types.DecisionDomain{}, fmt.Errorf("failed to create domain: %w", err)
	}
	return s.GetDomain(ctx, id)
}

// GetDomain returns a domain without its scope subtree.
func (s *Store) GetDomain(ctx context.Context, id types.DomainID) (types.DecisionDomain, error) {
	var row domainRow
	if err := s.q.get(ctx, s.ext, "get-domain", &row, string(id)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.DecisionDomain{}, fmt.Errorf("domain %s: %w", id, types.ErrNotFound)
		}
		return types.DecisionDomain{}, fmt.Errorf("failed to fetch domain: %w", err)
	}
	return row.toDomain(), nil
}

// GetDomainGraph returns a domain with its full scope/rule/strategy/
// policy/parameter subtree, scopes ordered by name and rules by
// specificity score.
func (s *Store) GetDomainGraph(ctx context.Context, id types.DomainID) (types.DecisionDomain, error) {
	domain, err := s.GetDomain(ctx, id)
	if err != nil {
		return types.DecisionDomain{}, err
	}
	if err := s.loadScopes(ctx, &domain); err != nil {
		return types.DecisionDomain{}, err
	}
	return domain, nil
}

// ListDomains returns all domains, ordered by name, without subtrees.
func (s *Store) ListDomains(ctx context.Context) ([]types.DecisionDomain, error) {
	var rows []domainRow
	if err := s.q.sel(ctx, s.ext, "list-domains", &rows); err != nil {
		return nil, fmt.Errorf("failed to list domains: %w", err)
	}
	domains := make([]types.DecisionDomain, 0, len(rows))
	for _, r := range rows {
		domains = append(domains, r.toDomain())
	}
	return domains, nil
}

// ListDomainGraphs returns all domains with full subtrees, ordered by name.
func (s *Store) ListDomainGraphs(ctx context.Context) ([]types.DecisionDomain, error) {
	domains, err := s.ListDomains(ctx)
	if err != nil {
		return nil, err
	}
	for i := range domains {
		if err := s.loadScopes(ctx, &domains[i]); err != nil {
			return nil, err
		}
	}
	return domains, nil
}

// DomainUpdate carries optional field updates; nil means leave unchanged.
type DomainUpdate struct {
	Name        *string
	Description *string
	Version     *string
}

// UpdateDomain applies a partial update and returns the updated domain.
func (s *Store) UpdateDomain(ctx context.Context, id types.DomainID, upd DomainUpdate) (types.DecisionDomain, error) {
	current, err := s.GetDomain(ctx, id)
	if err != nil {
		return types.DecisionDomain{}, err
	}
	if upd.Name != nil {
		if !types.NamePattern.MatchString(*upd.Name) {
			return types.DecisionDomain{}, fmt.Errorf("domain name %q: %w", *upd.Name, types.ErrInvalidName)
		}
		current.Name = *upd.Name
	}
	if upd.Description != nil {
		current.Description = *upd.Description
	}
	if upd.Version != nil {
		current.Version = *upd.Version
	}
	if _, err := s.q.exec(ctx, s.ext, "update-domain",
		current.Name, current.Description, current.Version, now(), string(id)); err != nil {
		return types.DecisionDomain{}, fmt.Errorf("failed to update domain: %w", err)
	}
	return s.GetDomain(ctx, id)
}

// DeleteDomain removes a domain; the schema cascades to all owned scopes,
// rules, strategies, policies and parameters.
func (s *Store) DeleteDomain(ctx context.Context, id types.DomainID) error {
	res, err := s.q.exec(ctx, s.ext, "delete-domain", string(id))
	if err != nil {
		return fmt.Errorf("failed to delete domain: %w", err)
	}
	return requireAffected(res, fmt.Sprintf("domain %s", id))
}

// CreateScope creates a scope inside a domain. Scope names are free text
// but unique per domain; a duplicate is reported as a conflict, not a
// validation failure.
func (s *Store) CreateScope(ctx context.Context, domainID types.DomainID, name, description string) (types.DecisionScope, error) {
	if _, err := s.GetDomain(ctx, domainID); err != nil {
		return types.DecisionScope{}, err
	}
	var existing scopeRow
	err := s.q.get(ctx, s.ext, "find-scope-by-name", &existing, string(domainID), name)
	if err == nil {
		return types.DecisionScope{}, fmt.Errorf("scope %q: %w", name, types.ErrScopeNameConflict)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return types.DecisionScope{}, fmt.Errorf("failed to check scope name: %w", err)
	}

	id := types.NewScopeID()
	ts := now()
	if _, err := s.q.exec(ctx, s.ext, "create-scope", string(id), string(domainID), name, description, ts, ts); err != nil {
		return types.DecisionScope{}, fmt.Errorf("failed to create scope: %w", err)
	}
	return s.GetScope(ctx, id)
}

// GetScope returns a scope without its rules.
func (s *Store) GetScope(ctx context.Context, id types.ScopeID) (types.DecisionScope, error) {
	var row scopeRow
	if err := s.q.get(ctx, s.ext, "get-scope", &row, string(id)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.DecisionScope{}, fmt.Errorf("scope %s: %w", id, types.ErrNotFound)
		}
		return types.DecisionScope{}, fmt.Errorf("failed to fetch scope: %w", err)
	}
	return row.toScope(), nil
}

// GetScopeGraph returns a scope with its rules and their children,
// rules ordered by specificity score ascending.
func (s *Store) GetScopeGraph(ctx context.Context, id types.ScopeID) (types.DecisionScope, error) {
	scope, err := s.GetScope(ctx, id)
	if err != nil {
		return types.DecisionScope{}, err
	}
	if err := s.loadRules(ctx, &scope); err != nil {
		return types.DecisionScope{}, err
	}
	return scope, nil
}

// FindScopeByName looks a scope up by (domain, name). Used by the
// importer's find-or-create step.
func (s *Store) FindScopeByName(ctx context.Context, domainID types.DomainID, name string) (types.DecisionScope, error) {
	var row scopeRow
	if err := s.q.get(ctx, s.ext, "find-scope-by-name", &row, string(domainID), name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.DecisionScope{}, fmt.Errorf("scope %q: %w", name, types.ErrNotFound)
		}
		return types.DecisionScope{}, fmt.Errorf("failed to find scope: %w", err)
	}
	return row.toScope(), nil
}

// ScopeUpdate carries optional scope field updates.
type ScopeUpdate struct {
	Name        *string
	Description *string
}

// UpdateScope applies a partial update. Renames re-check name uniqueness
// within the owning domain.
func (s *Store) UpdateScope(ctx context.Context, id types.ScopeID, upd ScopeUpdate) (types.DecisionScope, error) {
	current, err := s.GetScope(ctx, id)
	if err != nil {
		return types.DecisionScope{}, err
	}
	if upd.Name != nil && *upd.Name != current.Name {
		var existing scopeRow
		err := s.q.get(ctx, s.ext, "find-scope-by-name", &existing, string(current.DomainID), *upd.Name)
		if err == nil {
			return types.DecisionScope{}, fmt.Errorf("scope %q: %w", *upd.Name, types.ErrScopeNameConflict)
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return types.DecisionScope{}, fmt.Errorf("failed to check scope name: %w", err)
		}
		current.Name = *upd.Name
	}
	if upd.Description != nil {
		current.Description = *upd.Description
	}
	if _, err := s.q.exec(ctx, s.ext, "update-scope", current.Name, current.Description, now(), string(id)); err != nil {
		return types.DecisionScope{}, fmt.Errorf("failed to update scope: %w", err)
	}
	return s.GetScope(ctx, id)
}

// DeleteScope removes a scope and cascades to its rules.
func (s *Store) DeleteScope(ctx context.Context, id types.ScopeID) error {
	res, err := s.q.exec(ctx, s.ext, "delete-scope", string(id))
	if err != nil {
		return fmt.Errorf("failed to delete scope: %w", err)
	}
	return requireAffected(res, fmt.Sprintf("scope %s", id))
}

// CreateRule creates a rule in a scope. The specificity score is always
// computed from the filter; callers never supply it.
func (s *Store) CreateRule(ctx context.Context, scopeID types.ScopeID, filter types.ContextFilter) (types.PolicyRule, error) {
	if _, err := s.GetScope(ctx, scopeID); err != nil {
		return types.PolicyRule{}, err
	}
	if filter == nil {
		filter = types.ContextFilter{}
	}
	encoded, err := encodeJSON(filter)
	if err != nil {
		return types.PolicyRule{}, err
	}
	id := types.NewRuleID()
	ts := now()
	if _, err := s.q.exec(ctx, s.ext, "create-rule",
		string(id), string(scopeID), encoded, filter.Specificity(), ts, ts); err != nil {
		return types.PolicyRule{}, fmt.Errorf("failed to create rule: %w", err)
	}
	return s.GetRule(ctx, id)
}

// GetRule returns a rule with its strategy, policies and parameters.
func (s *Store) GetRule(ctx context.Context, id types.RuleID) (types.PolicyRule, error) {
	var row ruleRow
	if err := s.q.get(ctx, s.ext, "get-rule", &row, string(id)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.PolicyRule{}, fmt.Errorf("rule %s: %w", id, types.ErrNotFound)
		}
		return types.PolicyRule{}, fmt.Errorf("failed to fetch rule: %w", err)
	}
	rule, err := row.toRule()
	if err != nil {
		return types.PolicyRule{}, err
	}
	if err := s.loadRuleChildren(ctx, &rule); err != nil {
		return types.PolicyRule{}, err
	}
	return rule, nil
}

// UpdateRuleFilter replaces the context filter and recomputes the
// specificity score in the same write.
func (s *Store) UpdateRuleFilter(ctx context.Context, id types.RuleID, filter types.ContextFilter) (types.PolicyRule, error) {
	if _, err := s.GetRule(ctx, id); err != nil {
		return types.PolicyRule{}, err
	}
	if filter == nil {
		filter = types.ContextFilter{}
	}
	encoded, err := encodeJSON(filter)
	if err != nil {
		return types.PolicyRule{}, err
	}
	if _, err := s.q.exec(ctx, s.ext, "update-rule-filter",
		encoded, filter.Specificity(), now(), string(id)); err != nil {
		return types.PolicyRule{}, fmt.Errorf("failed to update rule: %w", err)
	}
	return s.GetRule(ctx, id)
}

// DeleteRule removes a rule and cascades to its strategy, policies and
// parameters.
func (s *Store) DeleteRule(ctx context.Context, id types.RuleID) error {
	res, err := s.q.exec(ctx, s.ext, "delete-rule", string(id))
	if err != nil {
		return fmt.Errorf("failed to delete rule: %w", err)
	}
	return requireAffected(res, fmt.Sprintf("rule %s", id))
}

// SetStrategy upserts the strategy for a rule, keyed by rule id. A rule
// never holds two strategies; replacing overwrites in place. Inline
// parameter values are persisted as-is under their declared types.
func (s *Store) SetStrategy(ctx context.Context, ruleID types.RuleID, name, description string, params types.ParameterMap) (types.StrategyDefinition, error) {
	if !types.NamePattern.MatchString(name) {
		return types.StrategyDefinition{}, fmt.Errorf("strategy name %q: %w", name, types.ErrInvalidName)
	}
	if _, err := s.requireRule(ctx, ruleID); err != nil {
		return types.StrategyDefinition{}, err
	}
	if params == nil {
		params = types.ParameterMap{}
	}
	encoded, err := encodeJSON(params)
	if err != nil {
		return types.StrategyDefinition{}, err
	}
	ts := now()
	if _, err := s.q.exec(ctx, s.ext, "upsert-strategy",
		string(types.NewStrategyID()), string(ruleID), name, description, encoded, ts, ts); err != nil {
		return types.StrategyDefinition{}, fmt.Errorf("failed to set strategy: %w", err)
	}
	return s.getStrategy(ctx, ruleID)
}

// ClearStrategy removes a rule's strategy. The rule remains, flagged by
// health checks as semantically incomplete.
func (s *Store) ClearStrategy(ctx context.Context, ruleID types.RuleID) error {
	res, err := s.q.exec(ctx, s.ext, "delete-strategy-by-rule", string(ruleID))
	if err != nil {
		return fmt.Errorf("failed to clear strategy: %w", err)
	}
	return requireAffected(res, fmt.Sprintf("strategy for rule %s", ruleID))
}

func (s *Store) getStrategy(ctx context.Context, ruleID types.RuleID) (types.StrategyDefinition, error) {
	var row strategyRow
	if err := s.q.get(ctx, s.ext, "get-strategy-by-rule", &row, string(ruleID)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.StrategyDefinition{}, fmt.Errorf("strategy for rule %s: %w", ruleID, types.ErrNotFound)
		}
		return types.StrategyDefinition{}, fmt.Errorf("failed to fetch strategy: %w", err)
	}
	return row.toStrategy()
}

// AddPolicy appends a policy to a rule. No dedup by name: two policies
// with the same name may coexist on one rule.
func (s *Store) AddPolicy(ctx context.Context, ruleID types.RuleID, name, description string, params types.ParameterMap) (types.PolicyDefinition, error) {
	if !types.NamePattern.MatchString(name) {
		return types.PolicyDefinition{}, fmt.Errorf("policy name %q: %w", name, types.ErrInvalidName)
	}
	if _, err := s.requireRule(ctx, ruleID); err != nil {
		return types.PolicyDefinition{}, err
	}
	if params == nil {
		params = types.ParameterMap{}
	}
	encoded, err := encodeJSON(params)
	if err != nil {
		return types.PolicyDefinition{}, err
	}
	id := types.NewPolicyID()
	ts := now()
	if _, err := s.q.exec(ctx, s.ext, "create-policy",
		string(id), string(ruleID), name, description, encoded, ts, ts); err != nil {
		return types.PolicyDefinition{}, fmt.Errorf("failed to add policy: %w", err)
	}
	return s.GetPolicy(ctx, id)
}

// GetPolicy returns one policy definition.
func (s *Store) GetPolicy(ctx context.Context, id types.PolicyID) (types.PolicyDefinition, error) {
	var row policyRow
	if err := s.q.get(ctx, s.ext, "get-policy", &row, string(id)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.PolicyDefinition{}, fmt.Errorf("policy %s: %w", id, types.ErrNotFound)
		}
		return types.PolicyDefinition{}, fmt.Errorf("failed to fetch policy: %w", err)
	}
	return row.toPolicy()
}

// PolicyUpdate carries optional policy field updates.
type PolicyUpdate struct {
	Name        *string
	Description *string
	Parameters  types.ParameterMap
}

// UpdatePolicy applies a partial update to a policy definition.
func (s *Store) UpdatePolicy(ctx context.Context, id types.PolicyID, upd PolicyUpdate) (types.PolicyDefinition, error) {
	current, err := s.GetPolicy(ctx, id)
	if err != nil {
		return types.PolicyDefinition{}, err
	}
	if upd.Name != nil {
		if !types.NamePattern.MatchString(*upd.Name) {
			return types.PolicyDefinition{}, fmt.Errorf("policy name %q: %w", *upd.Name, types.ErrInvalidName)
		}
		current.Name = *upd.Name
	}
	if upd.Description != nil {
		current.Description = *upd.Description
	}
	if upd.Parameters != nil {
		current.Parameters = upd.Parameters
	}
	encoded, err := encodeJSON(current.Parameters)
	if err != nil {
		return types.PolicyDefinition{}, err
	}
	if _, err := s.q.exec(ctx, s.ext, "update-policy",
		current.Name, current.Description, encoded, now(), string(id)); err != nil {
		return types.PolicyDefinition{}, fmt.Errorf("failed to update policy: %w", err)
	}
	return s.GetPolicy(ctx, id)
}

// DeletePolicy removes one policy definition.
func (s *Store) DeletePolicy(ctx context.Context, id types.PolicyID) error {
	res, err := s.q.exec(ctx, s.ext, "delete-policy", string(id))
	if err != nil {
		return fmt.Errorf("failed to delete policy: %w", err)
	}
	return requireAffected(res, fmt.Sprintf("policy %s", id))
}

// AddRuleParameter creates a typed rule parameter. Unlike strategy and
// policy inline parameters, the text value must be consistent with the
// declared type at the point of write.
func (s *Store) AddRuleParameter(ctx context.Context, ruleID types.RuleID, paramID string, paramType types.ParamType, description string, value *string) (types.RuleParameter, error) {
	if paramID == "" {
		return types.RuleParameter{}, fmt.Errorf("paramId is required")
	}
	if !paramType.Valid() {
		return types.RuleParameter{}, fmt.Errorf("unknown parameter type %q", paramType)
	}
	if value != nil {
		if err := paramType.CheckValue(*value); err != nil {
			return types.RuleParameter{}, err
		}
	}
	if _, err := s.requireRule(ctx, ruleID); err != nil {
		return types.RuleParameter{}, err
	}
	var existing parameterRow
	err := s.q.get(ctx, s.ext, "find-parameter-by-param-id", &existing, string(ruleID), paramID)
	if err == nil {
		return types.RuleParameter{}, fmt.Errorf("parameter %q already exists on rule %s", paramID, ruleID)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return types.RuleParameter{}, fmt.Errorf("failed to check parameter id: %w", err)
	}

	id := types.NewParameterID()
	ts := now()
	if _, err := s.q.exec(ctx, s.ext, "create-parameter",
		string(id), string(ruleID), paramID, string(paramType), description, nullable(value), ts, ts); err != nil {
		return types.RuleParameter{}, fmt.Errorf("failed to add parameter: %w", err)
	}
	return s.GetRuleParameter(ctx, id)
}

// GetRuleParameter returns one rule parameter.
func (s *Store) GetRuleParameter(ctx context.Context, id types.ParameterID) (types.RuleParameter, error) {
	var row parameterRow
	if err := s.q.get(ctx, s.ext, "get-parameter", &row, string(id)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.RuleParameter{}, fmt.Errorf("parameter %s: %w", id, types.ErrNotFound)
		}
		return types.RuleParameter{}, fmt.Errorf("failed to fetch parameter: %w", err)
	}
	return row.toParameter(), nil
}

// ParameterUpdate carries optional rule parameter field updates.
type ParameterUpdate struct {
	Type        *types.ParamType
	Description *string
	Value       *string
}

// UpdateRuleParameter applies a partial update; the resulting type/value
// pair is re-checked for consistency.
func (s *Store) UpdateRuleParameter(ctx context.Context, id types.ParameterID, upd ParameterUpdate) (types.RuleParameter, error) {
	current, err := s.GetRuleParameter(ctx, id)
	if err != nil {
		return types.RuleParameter{}, err
	}
	if upd.Type != nil {
		if !upd.Type.Valid() {
			return types.RuleParameter{}, fmt.Errorf("unknown parameter type %q", *upd.Type)
		}
		current.Type = *upd.Type
	}
	if upd.Description != nil {
		current.Description = *upd.Description
	}
	if upd.Value != nil {
		current.Value = upd.Value
	}
	if current.Value != nil {
		if err := current.Type.CheckValue(*current.Value); err != nil {
			return types.RuleParameter{}, err
		}
	}
	if _, err := s.q.exec(ctx, s.ext, "update-parameter",
		string(current.Type), current.Description, nullable(current.Value), now(), string(id)); err != nil {
		return types.RuleParameter{}, fmt.Errorf("failed to update parameter: %w", err)
	}
	return s.GetRuleParameter(ctx, id)
}

// DeleteRuleParameter removes one rule parameter.
func (s *Store) DeleteRuleParameter(ctx context.Context, id types.ParameterID) error {
	res, err := s.q.exec(ctx, s.ext, "delete-parameter", string(id))
	if err != nil {
		return fmt.Errorf("failed to delete parameter: %w", err)
	}
	return requireAffected(res, fmt.Sprintf("parameter %s", id))
}

// SchemaOverride returns the persisted user schema, or ErrNotFound when
// the factory default is in effect.
func (s *Store) SchemaOverride(ctx context.Context) ([]byte, error) {
	var document string
	if err := s.q.get(ctx, s.ext, "get-schema-override", &document); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("schema override: %w", types.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch schema override: %w", err)
	}
	return []byte(document), nil
}

// SetSchemaOverride persists raw as the active user schema.
func (s *Store) SetSchemaOverride(ctx context.Context, raw []byte) error {
	if _, err := s.q.exec(ctx, s.ext, "upsert-schema-override", string(raw), now()); err != nil {
		return fmt.Errorf("failed to persist schema override: %w", err)
	}
	return nil
}

// ClearSchemaOverride discards any persisted user schema. Idempotent.
func (s *Store) ClearSchemaOverride(ctx context.Context) error {
	if _, err := s.q.exec(ctx, s.ext, "delete-schema-override"); err != nil {
		return fmt.Errorf("failed to clear schema override: %w", err)
	}
	return nil
}

func (s *Store) loadScopes(ctx context.Context, domain *types.DecisionDomain) error {
	var rows []scopeRow
	if err := s.q.sel(ctx, s.ext, "list-scopes-by-domain", &rows, string(domain.ID)); err != nil {
		return fmt.Errorf("failed to list scopes: %w", err)
	}
	domain.Scopes = make([]types.DecisionScope, 0, len(rows))
	for _, r := range rows {
		scope := r.toScope()
		if err := s.loadRules(ctx, &scope); err != nil {
			return err
		}
		domain.Scopes = append(domain.Scopes, scope)
	}
	return nil
}

func (s *Store) loadRules(ctx context.Context, scope *types.DecisionScope) error {
	var rows []ruleRow
	if err := s.q.sel(ctx, s.ext, "list-rules-by-scope", &rows, string(scope.ID)); err != nil {
		return fmt.Errorf("failed to list rules: %w", err)
	}
	scope.Rules = make([]types.PolicyRule, 0, len(rows))
	for _, r := range rows {
		rule, err := r.toRule()
		if err != nil {
			return err
		}
		if err := s.loadRuleChildren(ctx, &rule); err != nil {
			return err
		}
		scope.Rules = append(scope.Rules, rule)
	}
	return nil
}

func (s *Store) loadRuleChildren(ctx context.Context, rule *types.PolicyRule) error {
	strategy, err := s.getStrategy(ctx, rule.ID)
	switch {
	case err == nil:
		rule.Strategy = &strategy
	case errors.Is(err, types.ErrNotFound):
		rule.Strategy = nil
	default:
		return err
	}

	var policyRows []policyRow
	if err := s.q.sel(ctx, s.ext, "list-policies-by-rule", &policyRows, string(rule.ID)); err != nil {
		return fmt.Errorf("failed to list policies: %w", err)
	}
	rule.Policies = make([]types.PolicyDefinition, 0, len(policyRows))
	for _, r := range policyRows {
		policy, err := r.toPolicy()
		if err != nil {
			return err
		}
		rule.Policies = append(rule.Policies, policy)
	}

	var paramRows []parameterRow
	if err := s.q.sel(ctx, s.ext, "list-parameters-by-rule", &paramRows, string(rule.ID)); err != nil {
		return fmt.Errorf("failed to list parameters: %w", err)
	}
	rule.Parameters = make([]types.RuleParameter, 0, len(paramRows))
	for _, r := range paramRows {
		rule.Parameters = append(rule.Parameters, r.toParameter())
	}
	return nil
}

func (s *Store) requireRule(ctx context.Context, id types.RuleID) (types.PolicyRule, error) {
	var row ruleRow
	if err := s.q.get(ctx, s.ext, "get-rule", &row, string(id)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.PolicyRule{}, fmt.Errorf("rule %s: %w", id, types.ErrNotFound)
		}
		return types.PolicyRule{}, fmt.Errorf("failed to fetch rule: %w", err)
	}
	return row.toRule()
}

func requireAffected(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", what, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, types.ErrNotFound)
	}
	return nil
}

func nullable(v *string) any {
	if v == nil {
		return nil
	}
	return *v
}
