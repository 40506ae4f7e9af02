// Package seed loads the demo decision configuration used for local
// development and UI walkthroughs.
package seed

import (
	"context"
	"fmt"

	"github.com/logisq/xyronq/internal/store"
	"github.com/logisq/xyronq/internal/types"
)

type domainFixture struct {
	name        string
	description string
	version     string
	scopes      []scopeFixture
}

type scopeFixture struct {
	name        string
	description string
	rules       []ruleFixture
}

type ruleFixture struct {
	filter   types.ContextFilter
	strategy *definitionFixture
	policies []definitionFixture
	params   []paramFixture
}

type definitionFixture struct {
	name        string
	description string
	params      types.ParameterMap
}

type paramFixture struct {
	id          string
	typ         types.ParamType
	value       string
	description string
}

// Apply wipes all existing domains and loads the demo fixture in one
// transaction.
func Apply(ctx context.Context, st *store.Store) error {
	return apply(ctx, st, fixtures())
}

// apply wipes and reloads inside a single transaction, so a mid-seed
// failure rolls back the wipe instead of leaving the database empty.
func apply(ctx context.Context, st *store.Store, fixtures []domainFixture) error {
	return st.WithTx(ctx, func(tx *store.Store) error {
		existing, err := tx.ListDomains(ctx)
		if err != nil {
			return err
		}
		for _, domain := range existing {
			if err := tx.DeleteDomain(ctx, domain.ID); err != nil {
				return err
			}
		}
		for _, fixture := range fixtures {
			if err := applyDomain(ctx, tx, fixture); err != nil {
				return fmt.Errorf("seeding domain %s: %w", fixture.name, err)
			}
		}
		return nil
	})
}

func applyDomain(ctx context.Context, tx *store.Store, fixture domainFixture) error {
	domain, err := tx.CreateDomain(ctx, fixture.name, fixture.description, fixture.version)
	if err != nil {
		return err
	}
	for _, sf := range fixture.scopes {
		scope, err := tx.CreateScope(ctx, domain.ID, sf.name, sf.description)
		if err != nil {
			return err
		}
		for _, rf := range sf.rules {
			rule, err := tx.CreateRule(ctx, scope.ID, rf.filter)
			if err != nil {
				return err
			}
			if rf.strategy != nil {
				if _, err := tx.SetStrategy(ctx, rule.ID, rf.strategy.name, rf.strategy.description, rf.strategy.params); err != nil {
					return err
				}
			}
			for _, pf := range rf.policies {
				if _, err := tx.AddPolicy(ctx, rule.ID, pf.name, pf.description, pf.params); err != nil {
					return err
				}
			}
			for _, param := range rf.params {
				value := param.value
				if _, err := tx.AddRuleParameter(ctx, rule.ID, param.id, param.typ, param.description, &value); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func fixtures() []domainFixture {
	return []domainFixture{
		{
			name:        "Storage.Slotting",
			description: "Determines where and how items are placed in storage areas. Covers slot selection, zone eligibility, and stacking rules.",
			version:     "1.0.0",
			scopes: []scopeFixture{
				{
					name:        "Decide.Storage.Location",
					description: "Selects the optimal storage location for incoming goods.",
					rules: []ruleFixture{
						{
							filter: types.ContextFilter{},
							strategy: &definitionFixture{
								name:        "Strategy.NearestEmpty",
								description: "Selects the nearest empty slot by distance.",
								params: types.ParameterMap{
									"maxCandidates": {Type: types.ParamTypeInt, Value: 10},
								},
							},
							policies: []definitionFixture{
								{
									name:        "Policy.ZoneEligibility",
									description: "Validates item is allowed in target zone.",
									params: types.ParameterMap{
										"enforceABCClass": {Type: types.ParamTypeBool, Value: true},
									},
								},
							},
							params: []paramFixture{
								{id: "maxSearchRadius", typ: types.ParamTypeInt, value: "50", description: "Maximum search radius in meters"},
								{id: "preferGroundLevel", typ: types.ParamTypeBool, value: "true", description: "Prefer ground-level slots"},
							},
						},
						{
							filter: types.ContextFilter{"plantArea": "AKL"},
							strategy: &definitionFixture{
								name:        "Strategy.WeightedScore",
								description: "Scores candidates by weighted criteria (distance, fill rate, ABC class).",
								params: types.ParameterMap{
									"normalizationMode": {Type: types.ParamTypeEnum, Value: "linear"},
									"minScore":          {Type: types.ParamTypeDecimal, Value: 0.1},
								},
							},
							policies: []definitionFixture{
								{
									name:        "Policy.ZoneEligibility",
									description: "Validates item is allowed in target zone.",
									params: types.ParameterMap{
										"enforceABCClass": {Type: types.ParamTypeBool, Value: true},
									},
								},
								{
									name:        "Policy.WeightLimit",
									description: "Ensures slot weight capacity is not exceeded.",
									params: types.ParameterMap{
										"safetyMarginKg": {Type: types.ParamTypeDecimal, Value: 5.0},
									},
								},
							},
							params: []paramFixture{
								{id: "weightDistance", typ: types.ParamTypeDecimal, value: "0.4", description: "Weight for distance factor"},
								{id: "weightFillRate", typ: types.ParamTypeDecimal, value: "0.35", description: "Weight for fill rate factor"},
								{id: "weightABCClass", typ: types.ParamTypeDecimal, value: "0.25", description: "Weight for ABC classification factor"},
							},
						},
						{
							filter: types.ContextFilter{"plantArea": "AKL", "zone": "AISLE_A"},
							strategy: &definitionFixture{
								name:        "Strategy.FIFO",
								description: "First-in-first-out slot allocation by receipt date.",
							},
							params: []paramFixture{
								{id: "fifoToleranceDays", typ: types.ParamTypeInt, value: "3", description: "Days tolerance for FIFO ordering"},
							},
						},
					},
				},
				{
					name:        "Decide.Stacking.Permission",
					description: "Determines whether stacking is allowed for a given handling unit.",
					rules: []ruleFixture{
						{
							filter: types.ContextFilter{},
							strategy: &definitionFixture{
								name:        "Strategy.ByProductGroup",
								description: "Stacking rules derived from product group classification.",
							},
							policies: []definitionFixture{
								{
									name:        "Policy.NoStackHazardous",
									description: "Prevents stacking of hazardous materials.",
									params: types.ParameterMap{
										"hazmatClasses": {Type: types.ParamTypeString, Value: "1,2,3,4"},
									},
								},
							},
							params: []paramFixture{
								{id: "maxStackHeight", typ: types.ParamTypeInt, value: "3", description: "Maximum stacking height in units"},
							},
						},
					},
				},
			},
		},
		{
			name:        "Failure.Resolution",
			description: "Defines how the system handles and resolves failures in automated and manual processes.",
			version:     "1.0.0",
			scopes: []scopeFixture{
				{
					name:        "Resolve.Transport.Failure",
					description: "Handles transport failures (conveyor jams, AGV errors).",
					rules: []ruleFixture{
						{
							filter: types.ContextFilter{},
							strategy: &definitionFixture{
								name:        "Strategy.AutoRetry",
								description: "Automatic retry with exponential backoff.",
								params: types.ParameterMap{
									"MaxRetries":        {ID: "MaxRetries", Type: types.ParamTypeInt},
									"BackoffMs":         {ID: "BackoffMs", Type: types.ParamTypeInt},
									"BackoffMultiplier": {ID: "BackoffMultiplier", Type: types.ParamTypeDecimal},
								},
							},
							policies: []definitionFixture{
								{
									name:        "Policy.MaxRetries",
									description: "Limits the number of automatic retry attempts.",
									params: types.ParameterMap{
										"MaxRetries": {ID: "MaxRetries", Type: types.ParamTypeInt},
									},
								},
							},
							params: []paramFixture{
								{id: "MaxRetries", typ: types.ParamTypeInt, value: "3", description: "Maximum retry attempts"},
								{id: "BackoffMs", typ: types.ParamTypeInt, value: "5000", description: "Initial backoff delay in milliseconds"},
								{id: "BackoffMultiplier", typ: types.ParamTypeDecimal, value: "2.0", description: "Backoff multiplier per retry"},
							},
						},
						{
							filter: types.ContextFilter{"plantArea": "CONVEYOR"},
							strategy: &definitionFixture{
								name:        "Strategy.DivertToAlternate",
								description: "Diverts to alternate conveyor path on failure.",
								params: types.ParameterMap{
									"DivertTimeout": {ID: "DivertTimeout", Type: types.ParamTypeInt},
								},
							},
							params: []paramFixture{
								{id: "DivertTimeout", typ: types.ParamTypeInt, value: "10000", description: "Timeout before divert in ms"},
							},
						},
						{
							filter: types.ContextFilter{"plantArea": "AKL", "storageType": "AUTOMATED"},
							strategy: &definitionFixture{
								name:        "RetryThenReroute",
								description: "Retries the transport, then reroutes to an alternate path on repeated failure.",
								params: types.ParameterMap{
									"MaxRetries": {ID: "MaxRetries", Type: types.ParamTypeInt},
								},
							},
							policies: []definitionFixture{
								{
									name:        "RetryBudget",
									description: "Limits retry attempts and delay between retries.",
									params: types.ParameterMap{
										"MaxRetries":        {ID: "MaxRetries", Type: types.ParamTypeInt},
										"RetryDelaySeconds": {ID: "RetryDelaySeconds", Type: types.ParamTypeInt},
									},
								},
								{
									name:        "EscalationThreshold",
									description: "Defines the time window before escalation is triggered.",
									params: types.ParameterMap{
										"EscalateAfterSeconds": {ID: "EscalateAfterSec", Type: types.ParamTypeInt},
									},
								},
							},
							params: []paramFixture{
								{id: "MaxRetries", typ: types.ParamTypeInt, value: "2", description: "Maximum retry attempts"},
								{id: "RetryDelaySeconds", typ: types.ParamTypeInt, value: "10", description: "Delay between retries in seconds"},
								{id: "EscalateAfterSec", typ: types.ParamTypeInt, value: "120", description: "Seconds before escalation"},
							},
						},
						{
							filter: types.ContextFilter{"plantArea": "MANUAL"},
							strategy: &definitionFixture{
								name:        "RetryThenEscalate",
								description: "Retries the transport, then escalates to manual intervention.",
								params: types.ParameterMap{
									"MaxRetries": {ID: "MaxRetries", Type: types.ParamTypeInt},
								},
							},
							policies: []definitionFixture{
								{
									name:        "RetryBudget",
									description: "Limits retry attempts and delay between retries.",
									params: types.ParameterMap{
										"MaxRetries":        {ID: "MaxRetries", Type: types.ParamTypeInt},
										"RetryDelaySeconds": {ID: "RetryDelaySeconds", Type: types.ParamTypeInt},
									},
								},
							},
							params: []paramFixture{
								{id: "MaxRetries", typ: types.ParamTypeInt, value: "5", description: "Maximum retry attempts"},
								{id: "RetryDelaySeconds", typ: types.ParamTypeInt, value: "30", description: "Delay between retries in seconds"},
							},
						},
					},
				},
				{
					name:        "Resolve.Pick.Failure",
					description: "Handles picking failures (short picks, wrong item).",
					rules: []ruleFixture{
						{
							filter: types.ContextFilter{},
							strategy: &definitionFixture{
								name:        "Strategy.ManualIntervention",
								description: "Escalates to manual operator intervention.",
							},
							policies: []definitionFixture{
								{
									name:        "Policy.AlertSupervisor",
									description: "Notifies shift supervisor on failure.",
									params: types.ParameterMap{
										"notificationChannel": {Type: types.ParamTypeEnum, Value: "HMI"},
									},
								},
							},
						},
					},
				},
			},
		},
		{
			name:        "Relocation",
			description: "Governs when and how inventory is relocated within the warehouse.",
			version:     "1.0.0",
			scopes: []scopeFixture{
				{
					name:        "Decide.Relocation.Trigger",
					description: "Determines when relocation is triggered.",
					rules: []ruleFixture{
						{
							filter: types.ContextFilter{},
							strategy: &definitionFixture{
								name:        "Strategy.DensityBased",
								description: "Triggers relocation when zone density exceeds threshold.",
							},
							params: []paramFixture{
								{id: "densityThreshold", typ: types.ParamTypeDecimal, value: "0.85", description: "Zone density threshold (0-1)"},
								{id: "checkIntervalMin", typ: types.ParamTypeInt, value: "30", description: "Check interval in minutes"},
							},
						},
						{
							filter: types.ContextFilter{"plantArea": "HRL"},
							strategy: &definitionFixture{
								name:        "Strategy.HeatmapBased",
								description: "Uses access frequency heatmap to optimize placement.",
								params: types.ParameterMap{
									"heatmapAlgorithm": {Type: types.ParamTypeEnum, Value: "exponentialDecay"},
								},
							},
							params: []paramFixture{
								{id: "heatmapWindowDays", typ: types.ParamTypeInt, value: "14", description: "Heatmap analysis window in days"},
							},
						},
					},
				},
			},
		},
		{
			name:        "EmptyHU.Selection",
			description: "Determines how empty handling units are selected for replenishment or fulfillment.",
			version:     "1.0.0",
			scopes: []scopeFixture{
				{
					name:        "Select.EmptyHU",
					description: "Selects the source of empty handling units.",
					rules: []ruleFixture{
						{
							// No strategy on purpose: exercises the
							// incomplete-rule health finding.
							filter: types.ContextFilter{},
							policies: []definitionFixture{
								{
									name:        "Policy.PreferClean",
									description: "Prefers clean containers over used ones.",
									params: types.ParameterMap{
										"cleanlinessGrade": {Type: types.ParamTypeEnum, Value: "A"},
									},
								},
							},
							params: []paramFixture{
								{id: "maxSearchDistance", typ: types.ParamTypeInt, value: "100", description: "Maximum search distance in meters"},
							},
						},
						{
							filter: types.ContextFilter{"huType": "PALLET"},
							strategy: &definitionFixture{
								name:        "Strategy.QualityFirst",
								description: "Selects containers by quality grade (A > B > C).",
								params: types.ParameterMap{
									"minGrade": {Type: types.ParamTypeEnum, Value: "B"},
								},
							},
							policies: []definitionFixture{
								{
									name:        "Policy.PreferClean",
									description: "Prefers clean containers over used ones.",
									params: types.ParameterMap{
										"cleanlinessGrade": {Type: types.ParamTypeEnum, Value: "A"},
									},
								},
								{
									name:        "Policy.SizeMatch",
									description: "Ensures container size matches order requirements.",
								},
							},
						},
					},
				},
			},
		},
	}
}
