package types

import "github.com/google/uuid"

// Typed entity identifiers. String aliases enable type safety while
// maintaining JSON string serialization. UUIDv7 time-ordering ensures
// sequential inserts cluster in B-tree indexes and gives the store a
// stable tie order for rules sharing a specificity score.
type (
	DomainID    string
	ScopeID     string
	RuleID      string
	StrategyID  string
	PolicyID    string
	ParameterID string
)

// NewDomainID generates a UUIDv7 domain identifier.
// Panics on clock regression (uuid.Must); acceptable for ID generation.
func NewDomainID() DomainID { return DomainID(newID()) }

// NewScopeID generates a UUIDv7 scope identifier.
func NewScopeID() ScopeID { return ScopeID(newID()) }

// NewRuleID generates a UUIDv7 rule identifier.
func NewRuleID() RuleID { return RuleID(newID()) }

// NewStrategyID generates a UUIDv7 strategy definition identifier.
func NewStrategyID() StrategyID { return StrategyID(newID()) }

// NewPolicyID generates a UUIDv7 policy definition identifier.
func NewPolicyID() PolicyID { return PolicyID(newID()) }

// NewParameterID generates a UUIDv7 rule parameter identifier.
func NewParameterID() ParameterID { return ParameterID(newID()) }

func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// ValidID reports whether s is a well-formed UUID. Request payloads carry
// referenced ids (domainId, scopeId) as plain strings; body validation
// rejects malformed ones before any lookup.
func ValidID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
