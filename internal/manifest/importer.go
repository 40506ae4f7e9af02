package manifest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/logisq/xyronq/internal/schema"
	"github.com/logisq/xyronq/internal/store"
	"github.com/logisq/xyronq/internal/types"
)

// ImportCounts reports how many entities one import call created.
type ImportCounts struct {
	ScopesCreated     int `json:"scopes"`
	RulesCreated      int `json:"rules"`
	StrategiesCreated int `json:"strategies"`
	PoliciesCreated   int `json:"policies"`
	ParametersCreated int `json:"parameters"`
}

// ErrInvalidPayload indicates a document that is neither a manifest nor
// a bare contentsByScope mapping.
var ErrInvalidPayload = errors.New("expected a manifest or a contentsByScope mapping")

// ValidationFailedError carries the schema findings for a rejected
// payload. The store is untouched when this is returned.
type ValidationFailedError struct {
	Issues []schema.Issue
}

func (e *ValidationFailedError) Error() string {
	return fmt.Sprintf("manifest failed schema validation with %d issue(s)", len(e.Issues))
}

// Importer materializes manifest documents into the configuration store.
// The whole sequence runs inside one store transaction: a failure on the
// fifth rule rolls back the first four instead of leaving a partial
// import behind.
type Importer struct {
	store   *store.Store
	schemas *schema.Service
}

// NewImporter wires an importer to its store and the active schema
// service.
func NewImporter(st *store.Store, schemas *schema.Service) *Importer {
	return &Importer{store: st, schemas: schemas}
}

// Import validates payload against the active schema and creates the
// scopes, rules, strategies, policies and rule parameters it describes
// under the given domain. The payload may be a full manifest or a bare
// contentsByScope mapping; either way the envelope used for validation
// carries the target domain's own id, name and version.
//
// Scopes are found-or-created by name, so re-importing a scope never
// duplicates it. Rules always append: re-importing the same manifest
// doubles the rule set. Parameter values are stored via generic
// stringification of whatever JSON value the document carries.
func (im *Importer) Import(ctx context.Context, domainID types.DomainID, payload json.RawMessage) (ImportCounts, error) {
	var counts ImportCounts

	domain, err := im.store.GetDomain(ctx, domainID)
	if err != nil {
		return counts, err
	}

	contents, err := extractContents(payload)
	if err != nil {
		return counts, err
	}

	envelope := Manifest{
		ID:              string(domain.ID),
		DecisionDomain:  domain.Name,
		Version:         domain.Version,
		ContentsByScope: contents,
	}
	result, err := im.schemas.Validate(envelope)
	if err != nil {
		return counts, err
	}
	if !result.Valid {
		return counts, &ValidationFailedError{Issues: result.Issues}
	}

	// Deterministic scope order regardless of document key order.
	scopeNames := make([]string, 0, len(contents))
	for name := range contents {
		scopeNames = append(scopeNames, name)
	}
	sort.Strings(scopeNames)

	err = im.store.WithTx(ctx, func(tx *store.Store) error {
		for _, scopeName := range scopeNames {
			scope, err := tx.FindScopeByName(ctx, domainID, scopeName)
			if errors.Is(err, types.ErrNotFound) {
				scope, err = tx.CreateScope(ctx, domainID, scopeName, "")
				if err == nil {
					counts.ScopesCreated++
				}
			}
			if err != nil {
				return err
			}

			for _, entry := range contents[scopeName] {
				if err := im.importRule(ctx, tx, scope.ID, entry, &counts); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return ImportCounts{}, err
	}
	return counts, nil
}

func (im *Importer) importRule(ctx context.Context, tx *store.Store, scopeID types.ScopeID, entry RuleEntry, counts *ImportCounts) error {
	rule, err := tx.CreateRule(ctx, scopeID, entry.ContextFilter)
	if err != nil {
		return err
	}
	counts.RulesCreated++

	if entry.Strategy != nil {
		if _, err := tx.SetStrategy(ctx, rule.ID, entry.Strategy.Name, entry.Strategy.Description, entry.Strategy.Parameters); err != nil {
			return err
		}
		counts.StrategiesCreated++
	}

	for _, policy := range entry.Policies {
		if _, err := tx.AddPolicy(ctx, rule.ID, policy.Name, policy.Description, policy.Parameters); err != nil {
			return err
		}
		counts.PoliciesCreated++
	}

	for _, param := range entry.RuleParameters {
		var value *string
		if param.Value != nil {
			s := stringifyValue(param.Value)
			value = &s
		}
		if _, err := tx.AddRuleParameter(ctx, rule.ID, param.ID, param.Type, param.Description, value); err != nil {
			return err
		}
		counts.ParametersCreated++
	}
	return nil
}

// extractContents accepts either a full manifest document or a bare
// scope-name to rule-array mapping.
func extractContents(payload json.RawMessage) (map[string][]RuleEntry, error) {
	var probe struct {
		ContentsByScope map[string][]RuleEntry `json:"contentsByScope"`
	}
	if err := json.Unmarshal(payload, &probe); err != nil {
		return nil, fmt.Errorf("%w: payload is not a JSON object", ErrInvalidPayload)
	}
	if probe.ContentsByScope != nil {
		return probe.ContentsByScope, nil
	}

	var bare map[string][]RuleEntry
	if err := json.Unmarshal(payload, &bare); err != nil {
		return nil, fmt.Errorf("%w: unexpected document shape", ErrInvalidPayload)
	}
	if bare == nil {
		return nil, ErrInvalidPayload
	}
	return bare, nil
}
