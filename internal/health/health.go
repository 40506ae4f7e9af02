// Package health computes configuration defect lists. Issues are derived
// on read and never persisted: a rule without a strategy is structurally
// valid in the store but semantically incomplete, and shows up here
// instead of being rejected at write time.
package health

import (
	"fmt"

	"github.com/logisq/xyronq/internal/manifest"
	"github.com/logisq/xyronq/internal/schema"
	"github.com/logisq/xyronq/internal/types"
)

// DomainIssues concatenates the structural findings for a domain with
// the schema findings for its manifest, in that order.
func DomainIssues(domain types.DecisionDomain, schemas *schema.Service) ([]string, error) {
	issues := []string{}

	for _, scope := range domain.Scopes {
		for _, rule := range scope.Rules {
			if rule.Strategy == nil {
				issues = append(issues, fmt.Sprintf("%s: rule missing strategy", scope.Name))
			}
		}
	}

	result, err := schemas.Validate(manifest.Build(domain))
	if err != nil {
		return nil, err
	}
	if !result.Valid {
		for _, issue := range result.Issues {
			path := issue.Path
			if path == "" {
				path = "/"
			}
			issues = append(issues, fmt.Sprintf("Schema: %s %s", path, issue.Message))
		}
	}

	return issues, nil
}

// ScopeIssues reports the structural findings for one scope.
func ScopeIssues(scope types.DecisionScope) []string {
	issues := []string{}
	for _, rule := range scope.Rules {
		if rule.Strategy == nil {
			issues = append(issues, "Rule missing strategy")
		}
	}
	return issues
}
