// Package manifest builds and imports the canonical export shape for a
// decision domain. The manifest is the exchange format between the
// configuration store and downstream consumers: one entry per non-empty
// scope, rules in ascending specificity order, parameter values re-typed
// from their stored text representation.
package manifest

import (
	"github.com/logisq/xyronq/internal/types"
)

// Manifest is the canonical export document for one decision domain.
type Manifest struct {
	ID              string                 `json:"id"`
	DecisionDomain  string                 `json:"decisionDomain"`
	Version         string                 `json:"version"`
	ContentsByScope map[string][]RuleEntry `json:"contentsByScope"`
}

// RuleEntry is one rule inside a scope's array. Absent children are
// omitted from the JSON, never emitted as null or empty collections.
type RuleEntry struct {
	ContextFilter  types.ContextFilter  `json:"contextFilter"`
	Strategy       *DefinitionEntry     `json:"strategy,omitempty"`
	Policies       []DefinitionEntry    `json:"policies,omitempty"`
	RuleParameters []RuleParameterEntry `json:"ruleParameters,omitempty"`
}

// DefinitionEntry is the manifest shape shared by strategies and policies.
type DefinitionEntry struct {
	ID          string             `json:"id,omitempty"`
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	Parameters  types.ParameterMap `json:"parameters,omitempty"`
}

// RuleParameterEntry is one rule parameter with its value re-typed from
// the stored text per the declared type. A parameter with no stored value
// omits the value key entirely.
type RuleParameterEntry struct {
	ID          string          `json:"id"`
	Type        types.ParamType `json:"type"`
	Description string          `json:"description,omitempty"`
	Value       any             `json:"value,omitempty"`
}

// Build transforms a fully-loaded domain graph into its manifest. Scopes
// with zero rules are left out of contentsByScope: absence of a key means
// "no rules", not an error. Rule order follows the graph, which the store
// loads in ascending specificity order.
func Build(domain types.DecisionDomain) Manifest {
	contents := make(map[string][]RuleEntry)

	for _, scope := range domain.Scopes {
		if len(scope.Rules) == 0 {
			continue
		}
		entries := make([]RuleEntry, 0, len(scope.Rules))
		for _, rule := range scope.Rules {
			entries = append(entries, buildRuleEntry(rule))
		}
		contents[scope.Name] = entries
	}

	return Manifest{
		ID:              string(domain.ID),
		DecisionDomain:  domain.Name,
		Version:         domain.Version,
		ContentsByScope: contents,
	}
}

func buildRuleEntry(rule types.PolicyRule) RuleEntry {
	filter := rule.ContextFilter
	if filter == nil {
		filter = types.ContextFilter{}
	}
	entry := RuleEntry{ContextFilter: filter}

	if rule.Strategy != nil {
		def := buildDefinitionEntry(rule.Strategy.Name, rule.Strategy.Description, rule.Strategy.Parameters)
		def.ID = string(rule.Strategy.ID)
		entry.Strategy = &def
	}

	if len(rule.Policies) > 0 {
		entry.Policies = make([]DefinitionEntry, 0, len(rule.Policies))
		for _, policy := range rule.Policies {
			def := buildDefinitionEntry(policy.Name, policy.Description, policy.Parameters)
			def.ID = string(policy.ID)
			entry.Policies = append(entry.Policies, def)
		}
	}

	if len(rule.Parameters) > 0 {
		entry.RuleParameters = make([]RuleParameterEntry, 0, len(rule.Parameters))
		for _, param := range rule.Parameters {
			p := RuleParameterEntry{
				ID:          param.ParamID,
				Type:        param.Type,
				Description: param.Description,
			}
			if param.Value != nil {
				p.Value = coerceValue(param.Type, *param.Value)
			}
			entry.RuleParameters = append(entry.RuleParameters, p)
		}
	}

	return entry
}

func buildDefinitionEntry(name, description string, params types.ParameterMap) DefinitionEntry {
	return DefinitionEntry{
		Name:        name,
		Description: description,
		Parameters:  params.WithIDs(),
	}
}
