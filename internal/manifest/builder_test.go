package manifest

import (
	"encoding/json"
	"testing"

	"github.com/logisq/xyronq/internal/types"
)

func str(s string) *string { return &s }

func TestBuild_OmitsEmptyScopes(t *testing.T) {
	domain := types.DecisionDomain{
		ID:      types.NewDomainID(),
		Name:    "Storage.Slotting",
		Version: "1.0.0",
		Scopes: []types.DecisionScope{
			{Name: "Empty Scope"},
			{Name: "Fast Movers", Rules: []types.PolicyRule{
				{ContextFilter: types.ContextFilter{"zone": "A"}},
			}},
		},
	}

	m := Build(domain)

	if _, ok := m.ContentsByScope["Empty Scope"]; ok {
		t.Error("ContentsByScope contains Empty Scope, want omitted")
	}
	if len(m.ContentsByScope["Fast Movers"]) != 1 {
		t.Errorf("len(Fast Movers) = %v, want 1", len(m.ContentsByScope["Fast Movers"]))
	}
}

func TestBuild_Envelope(t *testing.T) {
	domain := types.DecisionDomain{
		ID:      types.DomainID("d-1"),
		Name:    "Storage.Slotting",
		Version: "2.1.0",
	}

	m := Build(domain)

	if m.ID != "d-1" {
		t.Errorf("ID = %v, want d-1", m.ID)
	}
	if m.DecisionDomain != "Storage.Slotting" {
		t.Errorf("DecisionDomain = %v, want Storage.Slotting", m.DecisionDomain)
	}
	if m.Version != "2.1.0" {
		t.Errorf("Version = %v, want 2.1.0", m.Version)
	}
	if m.ContentsByScope == nil {
		t.Error("ContentsByScope = nil, want empty map")
	}
}

func TestBuild_RuleParameterCoercion(t *testing.T) {
	tests := []struct {
		name      string
		paramType types.ParamType
		stored    *string
		want      any
		wantOmit  bool
	}{
		{name: "int", paramType: types.ParamTypeInt, stored: str("42"), want: int64(42)},
		{name: "negative int", paramType: types.ParamTypeInt, stored: str("-7"), want: int64(-7)},
		{name: "unparseable int passes through", paramType: types.ParamTypeInt, stored: str("abc"), want: "abc"},
		{name: "decimal", paramType: types.ParamTypeDecimal, stored: str("3.14"), want: 3.14},
		{name: "bool true", paramType: types.ParamTypeBool, stored: str("true"), want: true},
		{name: "bool mixed case", paramType: types.ParamTypeBool, stored: str("TRUE"), want: true},
		{name: "bool anything else is false", paramType: types.ParamTypeBool, stored: str("yes"), want: false},
		{name: "string", paramType: types.ParamTypeString, stored: str("hello"), want: "hello"},
		{name: "enum", paramType: types.ParamTypeEnum, stored: str("OptionA"), want: "OptionA"},
		{name: "nil value omitted", paramType: types.ParamTypeInt, stored: nil, wantOmit: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			domain := types.DecisionDomain{
				Name:    "D",
				Version: "1.0.0",
				Scopes: []types.DecisionScope{
					{Name: "S", Rules: []types.PolicyRule{
						{
							ContextFilter: types.ContextFilter{},
							Parameters: []types.RuleParameter{
								{ParamID: "p", Type: tt.paramType, Value: tt.stored},
							},
						},
					}},
				},
			}

			m := Build(domain)
			entry := m.ContentsByScope["S"][0].RuleParameters[0]

			if tt.wantOmit {
				if entry.Value != nil {
					t.Errorf("Value = %v, want nil", entry.Value)
				}
				raw, _ := json.Marshal(entry)
				var decoded map[string]any
				json.Unmarshal(raw, &decoded)
				if _, ok := decoded["value"]; ok {
					t.Error("serialized entry contains value key, want omitted")
				}
				return
			}
			if entry.Value != tt.want {
				t.Errorf("Value = %v (%T), want %v (%T)", entry.Value, entry.Value, tt.want, tt.want)
			}
		})
	}
}

func TestBuild_FalseBoolSurvivesSerialization(t *testing.T) {
	domain := types.DecisionDomain{
		Name:    "D",
		Version: "1.0.0",
		Scopes: []types.DecisionScope{
			{Name: "S", Rules: []types.PolicyRule{
				{
					ContextFilter: types.ContextFilter{},
					Parameters: []types.RuleParameter{
						{ParamID: "enabled", Type: types.ParamTypeBool, Value: str("false")},
					},
				},
			}},
		},
	}

	raw, err := json.Marshal(Build(domain))
	if err != nil {
		t.Fatalf("Marshal() error = %v, want nil", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v, want nil", err)
	}
	contents := decoded["contentsByScope"].(map[string]any)
	rule := contents["S"].([]any)[0].(map[string]any)
	params := rule["ruleParameters"].([]any)
	entry := params[0].(map[string]any)
	got, ok := entry["value"]
	if !ok {
		t.Fatal("value key missing, want false")
	}
	if got != false {
		t.Errorf("value = %v, want false", got)
	}
}

func TestBuild_ParameterIDsMatchMapKeys(t *testing.T) {
	domain := types.DecisionDomain{
		Name:    "D",
		Version: "1.0.0",
		Scopes: []types.DecisionScope{
			{Name: "S", Rules: []types.PolicyRule{
				{
					ContextFilter: types.ContextFilter{},
					Strategy: &types.StrategyDefinition{
						ID:   types.StrategyID("s-1"),
						Name: "NearestSlot",
						Parameters: types.ParameterMap{
							// Persisted id disagrees with the key.
							"maxDistance": {ID: "wrong", Type: types.ParamTypeInt, Value: float64(50)},
						},
					},
				},
			}},
		},
	}

	m := Build(domain)
	strat := m.ContentsByScope["S"][0].Strategy
	if strat == nil {
		t.Fatal("Strategy = nil, want set")
	}
	if got := strat.Parameters["maxDistance"].ID; got != "maxDistance" {
		t.Errorf("parameter ID = %v, want maxDistance (forced to map key)", got)
	}
}

func TestBuild_PolicyOrderPreserved(t *testing.T) {
	domain := types.DecisionDomain{
		Name:    "D",
		Version: "1.0.0",
		Scopes: []types.DecisionScope{
			{Name: "S", Rules: []types.PolicyRule{
				{
					ContextFilter: types.ContextFilter{},
					Policies: []types.PolicyDefinition{
						{Name: "First"},
						{Name: "Second"},
						{Name: "First"},
					},
				},
			}},
		},
	}

	m := Build(domain)
	policies := m.ContentsByScope["S"][0].Policies
	want := []string{"First", "Second", "First"}
	if len(policies) != len(want) {
		t.Fatalf("len(Policies) = %v, want %v", len(policies), len(want))
	}
	for i, name := range want {
		if policies[i].Name != name {
			t.Errorf("Policies[%d].Name = %v, want %v", i, policies[i].Name, name)
		}
	}
}

func TestBuild_Deterministic(t *testing.T) {
	domain := types.DecisionDomain{
		ID:      types.DomainID("d-1"),
		Name:    "D",
		Version: "1.0.0",
		Scopes: []types.DecisionScope{
			{Name: "B Scope", Rules: []types.PolicyRule{
				{ContextFilter: types.ContextFilter{"zone": "A", "plantArea": "Cold"}},
			}},
			{Name: "A Scope", Rules: []types.PolicyRule{
				{ContextFilter: types.ContextFilter{}},
			}},
		},
	}

	first, err := json.Marshal(Build(domain))
	if err != nil {
		t.Fatalf("Marshal() error = %v, want nil", err)
	}
	for i := 0; i < 10; i++ {
		next, err := json.Marshal(Build(domain))
		if err != nil {
			t.Fatalf("Marshal() error = %v, want nil", err)
		}
		if string(next) != string(first) {
			t.Fatalf("serialization %d differs from first:\n%s\nvs\n%s", i, next, first)
		}
	}
}
