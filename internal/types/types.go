// Package types provides domain models shared across XyronQ components.
//
// Contains the persisted entity graph (DecisionDomain -> DecisionScope ->
// PolicyRule -> {StrategyDefinition, PolicyDefinition, RuleParameter}) plus
// the dynamic parameter value model. ID utilities in ids.go import uuid but
// are isolated so pure packages (naming, codegen) stay dependency-light.
package types

import (
	"regexp"
	"time"
)

// NamePattern constrains domain, strategy and policy names.
// Scope and rule names are free text; scope name uniqueness is enforced
// per domain by the store.
var NamePattern = regexp.MustCompile(`^[A-Za-z0-9._:-]+$`)

// ContextFilter maps a dimension name (e.g. "plantArea", "zone") to a
// scalar matching value. Values are restricted to string, number or
// boolean at the API boundary; the store persists the filter as JSON.
type ContextFilter map[string]any

// Specificity returns the number of filter dimensions. A rule's
// persisted specificity score is always recomputed from this on write,
// never settable by callers.
func (f ContextFilter) Specificity() int {
	return len(f)
}

// DecisionDomain is the top-level namespace for a business concern
// (e.g. storage slotting, failure resolution). Owns scopes ordered by name.
type DecisionDomain struct {
	ID          DomainID  `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Version     string    `json:"version"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	Scopes []DecisionScope `json:"scopes,omitempty"`
}

// DecisionScope is a named decision point within a domain. Scope names
// are unique within their owning domain. Owns rules ordered by
// specificity score ascending.
type DecisionScope struct {
	ID          ScopeID   `json:"id"`
	DomainID    DomainID  `json:"domainId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	Rules []PolicyRule `json:"rules,omitempty"`
}

// PolicyRule is the atomic configuration unit: a context-filtered binding
// of one strategy, zero or more policies and zero or more typed rule
// parameters. A rule without a strategy is structurally valid but
// semantically incomplete; health checks surface it, the store never
// rejects it.
type PolicyRule struct {
	ID               RuleID        `json:"id"`
	ScopeID          ScopeID       `json:"scopeId"`
	ContextFilter    ContextFilter `json:"contextFilter"`
	SpecificityScore int           `json:"specificityScore"`
	CreatedAt        time.Time     `json:"createdAt"`
	UpdatedAt        time.Time     `json:"updatedAt"`

	Strategy   *StrategyDefinition `json:"strategy"`
	Policies   []PolicyDefinition  `json:"policies"`
	Parameters []RuleParameter     `json:"ruleParameters"`
}

// StrategyDefinition is the selection algorithm chosen for a rule.
// At most one per rule; writes are upserts keyed by rule id.
type StrategyDefinition struct {
	ID          StrategyID   `json:"id"`
	RuleID      RuleID       `json:"ruleId"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Parameters  ParameterMap `json:"parameters"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// PolicyDefinition is a constraint or permission check attached to a rule.
// A rule may hold many, in insertion order; same-named policies may
// coexist on one rule.
type PolicyDefinition struct {
	ID          PolicyID     `json:"id"`
	RuleID      RuleID       `json:"ruleId"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Parameters  ParameterMap `json:"parameters"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// RuleParameter is a rule-scoped, statically typed configuration value,
// distinct from strategy/policy inline parameters. The value is persisted
// as text and parsed according to the declared type on manifest build.
// ParamID is unique per rule, not globally.
type RuleParameter struct {
	ID          ParameterID `json:"id"`
	RuleID      RuleID      `json:"ruleId"`
	ParamID     string      `json:"paramId"`
	Type        ParamType   `json:"type"`
	Description string      `json:"description"`
	Value       *string     `json:"value"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}
