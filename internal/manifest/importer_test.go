package manifest

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/logisq/xyronq/internal/core/db"
	"github.com/logisq/xyronq/internal/schema"
	"github.com/logisq/xyronq/internal/store"
	"github.com/logisq/xyronq/internal/types"
)

func newTestImporter(t *testing.T) (*Importer, *store.Store) {
	t.Helper()
	conn, err := db.Open("sqlite://" + filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("db.Open() error = %v, want nil", err)
	}
	t.Cleanup(func() { conn.Close() })
	if err := db.MigrateUp(conn); err != nil {
		t.Fatalf("MigrateUp() error = %v, want nil", err)
	}
	st, err := store.New(conn)
	if err != nil {
		t.Fatalf("store.New() error = %v, want nil", err)
	}
	svc, err := schema.NewService(context.Background(), st)
	if err != nil {
		t.Fatalf("schema.NewService() error = %v, want nil", err)
	}
	return NewImporter(st, svc), st
}

const sampleManifest = `{
	"contentsByScope": {
		"Fast Movers": [
			{
				"contextFilter": {},
				"strategy": {"name": "RoundRobin"}
			},
			{
				"contextFilter": {"plantArea": "ColdStorage"},
				"strategy": {
					"name": "NearestSlot",
					"parameters": {
						"maxDistance": {"id": "maxDistance", "type": "int", "value": 50}
					}
				},
				"policies": [
					{"name": "MaxWeight"},
					{"name": "HazmatExclusion", "description": "no hazmat in cold storage"}
				],
				"ruleParameters": [
					{"id": "retryLimit", "type": "int", "value": 3},
					{"id": "enabled", "type": "bool", "value": false}
				]
			}
		],
		"Bulk Storage": [
			{"contextFilter": {"zone": "B1"}}
		]
	}
}`

func TestImport_CreatesFullGraph(t *testing.T) {
	im, st := newTestImporter(t)
	ctx := context.Background()

	domain, err := st.CreateDomain(ctx, "Storage.Slotting", "", "")
	if err != nil {
		t.Fatalf("CreateDomain() error = %v, want nil", err)
	}

	counts, err := im.Import(ctx, domain.ID, json.RawMessage(sampleManifest))
	if err != nil {
		t.Fatalf("Import() error = %v, want nil", err)
	}

	want := ImportCounts{
		ScopesCreated:     2,
		RulesCreated:      3,
		StrategiesCreated: 2,
		PoliciesCreated:   2,
		ParametersCreated: 2,
	}
	if counts != want {
		t.Errorf("counts = %+v, want %+v", counts, want)
	}

	graph, err := st.GetDomainGraph(ctx, domain.ID)
	if err != nil {
		t.Fatalf("GetDomainGraph() error = %v, want nil", err)
	}
	if len(graph.Scopes) != 2 {
		t.Fatalf("len(Scopes) = %v, want 2", len(graph.Scopes))
	}

	// Scopes come back ordered by name; Fast Movers is second.
	fast := graph.Scopes[1]
	if fast.Name != "Fast Movers" {
		t.Fatalf("Scopes[1].Name = %v, want Fast Movers", fast.Name)
	}
	if len(fast.Rules) != 2 {
		t.Fatalf("len(Rules) = %v, want 2", len(fast.Rules))
	}
	// Rules ordered by specificity: the empty-filter rule first.
	if fast.Rules[0].SpecificityScore != 0 || fast.Rules[1].SpecificityScore != 1 {
		t.Errorf("specificity order = [%v, %v], want [0, 1]",
			fast.Rules[0].SpecificityScore, fast.Rules[1].SpecificityScore)
	}

	specific := fast.Rules[1]
	if specific.Strategy == nil || specific.Strategy.Name != "NearestSlot" {
		t.Errorf("Strategy = %+v, want NearestSlot", specific.Strategy)
	}
	if len(specific.Policies) != 2 {
		t.Errorf("len(Policies) = %v, want 2", len(specific.Policies))
	}
	if len(specific.Parameters) != 2 {
		t.Fatalf("len(Parameters) = %v, want 2", len(specific.Parameters))
	}
	// JSON numbers stringify without a fractional part.
	byID := map[string]types.RuleParameter{}
	for _, p := range specific.Parameters {
		byID[p.ParamID] = p
	}
	if got := byID["retryLimit"].Value; got == nil || *got != "3" {
		t.Errorf("retryLimit stored value = %v, want 3", got)
	}
	if got := byID["enabled"].Value; got == nil || *got != "false" {
		t.Errorf("enabled stored value = %v, want false", got)
	}
}

func TestImport_AcceptsBareContentsMapping(t *testing.T) {
	im, st := newTestImporter(t)
	ctx := context.Background()

	domain, _ := st.CreateDomain(ctx, "Storage.Slotting", "", "")

	bare := `{"Fast Movers": [{"contextFilter": {"zone": "A"}}]}`
	counts, err := im.Import(ctx, domain.ID, json.RawMessage(bare))
	if err != nil {
		t.Fatalf("Import() error = %v, want nil", err)
	}
	if counts.ScopesCreated != 1 || counts.RulesCreated != 1 {
		t.Errorf("counts = %+v, want 1 scope and 1 rule", counts)
	}
}

func TestImport_DomainNotFound(t *testing.T) {
	im, _ := newTestImporter(t)

	_, err := im.Import(context.Background(), types.NewDomainID(), json.RawMessage(`{"S": []}`))
	if !errors.Is(err, types.ErrNotFound) {
		t.Errorf("Import() error = %v, want ErrNotFound", err)
	}
}

func TestImport_SchemaFailureIsNoMutation(t *testing.T) {
	im, st := newTestImporter(t)
	ctx := context.Background()

	domain, _ := st.CreateDomain(ctx, "Storage.Slotting", "", "")

	// Second scope's rule has an invalid parameter type, so the whole
	// document is rejected before any write.
	bad := `{
		"A Scope": [{"contextFilter": {}}],
		"B Scope": [{"contextFilter": {}, "ruleParameters": [{"id": "x", "type": "float"}]}]
	}`
	_, err := im.Import(ctx, domain.ID, json.RawMessage(bad))
	var vfe *ValidationFailedError
	if !errors.As(err, &vfe) {
		t.Fatalf("Import() error = %v, want ValidationFailedError", err)
	}
	if len(vfe.Issues) == 0 {
		t.Error("len(Issues) = 0, want at least 1")
	}

	graph, err := st.GetDomainGraph(ctx, domain.ID)
	if err != nil {
		t.Fatalf("GetDomainGraph() error = %v, want nil", err)
	}
	if len(graph.Scopes) != 0 {
		t.Errorf("len(Scopes) = %v, want 0 after rejected import", len(graph.Scopes))
	}
}

func TestImport_ReimportFindsScopesAppendsRules(t *testing.T) {
	im, st := newTestImporter(t)
	ctx := context.Background()

	domain, _ := st.CreateDomain(ctx, "Storage.Slotting", "", "")
	payload := json.RawMessage(`{"Fast Movers": [{"contextFilter": {"zone": "A"}}]}`)

	first, err := im.Import(ctx, domain.ID, payload)
	if err != nil {
		t.Fatalf("Import() error = %v, want nil", err)
	}
	if first.ScopesCreated != 1 || first.RulesCreated != 1 {
		t.Fatalf("first counts = %+v, want 1 scope and 1 rule", first)
	}

	second, err := im.Import(ctx, domain.ID, payload)
	if err != nil {
		t.Fatalf("Import() (repeat) error = %v, want nil", err)
	}
	// The scope is found, not duplicated; the rule appends.
	if second.ScopesCreated != 0 {
		t.Errorf("second ScopesCreated = %v, want 0", second.ScopesCreated)
	}
	if second.RulesCreated != 1 {
		t.Errorf("second RulesCreated = %v, want 1", second.RulesCreated)
	}

	graph, _ := st.GetDomainGraph(ctx, domain.ID)
	if len(graph.Scopes) != 1 {
		t.Fatalf("len(Scopes) = %v, want 1", len(graph.Scopes))
	}
	if len(graph.Scopes[0].Rules) != 2 {
		t.Errorf("len(Rules) = %v, want 2 after re-import", len(graph.Scopes[0].Rules))
	}
}

func TestImport_RoundTripPreservesManifest(t *testing.T) {
	im, st := newTestImporter(t)
	ctx := context.Background()

	source, _ := st.CreateDomain(ctx, "Storage.Slotting", "", "")
	if _, err := im.Import(ctx, source.ID, json.RawMessage(sampleManifest)); err != nil {
		t.Fatalf("Import() error = %v, want nil", err)
	}
	sourceGraph, err := st.GetDomainGraph(ctx, source.ID)
	if err != nil {
		t.Fatalf("GetDomainGraph() error = %v, want nil", err)
	}
	exported := Build(sourceGraph)

	// Feed the export into a second domain and export again.
	target, _ := st.CreateDomain(ctx, "Storage.Slotting.Copy", "", "")
	raw, err := json.Marshal(exported)
	if err != nil {
		t.Fatalf("Marshal() error = %v, want nil", err)
	}
	if _, err := im.Import(ctx, target.ID, raw); err != nil {
		t.Fatalf("Import() into copy error = %v, want nil", err)
	}
	targetGraph, err := st.GetDomainGraph(ctx, target.ID)
	if err != nil {
		t.Fatalf("GetDomainGraph() error = %v, want nil", err)
	}
	reExported := Build(targetGraph)

	// Entity ids differ between the two domains; everything else must
	// survive the round trip byte for byte.
	ignoreIDs := []cmp.Option{
		cmpopts.IgnoreFields(Manifest{}, "ID", "DecisionDomain"),
		cmpopts.IgnoreFields(DefinitionEntry{}, "ID"),
	}
	if diff := cmp.Diff(exported, reExported, ignoreIDs...); diff != "" {
		t.Errorf("round-tripped manifest differs (-first +second):\n%s", diff)
	}
}
