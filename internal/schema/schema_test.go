package schema

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/logisq/xyronq/internal/core/db"
	"github.com/logisq/xyronq/internal/store"
	"github.com/logisq/xyronq/internal/types"
)

func newTestService(t *testing.T) (*Service, *store.Store) {
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
	svc, err := NewService(context.Background(), st)
	if err != nil {
		t.Fatalf("NewService() error = %v, want nil", err)
	}
	return svc, st
}

func validManifest() map[string]any {
	return map[string]any{
		"id":             "d1",
		"decisionDomain": "Storage.Slotting",
		"version":        "1.0.0",
		"contentsByScope": map[string]any{
			"Fast Movers": []any{
				map[string]any{
					"contextFilter": map[string]any{"plantArea": "ColdStorage"},
					"strategy": map[string]any{
						"name": "NearestSlot",
						"parameters": map[string]any{
							"maxDistance": map[string]any{"id": "maxDistance", "type": "int", "value": 50},
						},
					},
					"ruleParameters": []any{
						map[string]any{"id": "maxWeight", "type": "decimal", "value": 12.5},
					},
				},
			},
		},
	}
}

func TestNewService_StartsAtFactory(t *testing.T) {
	svc, _ := newTestService(t)

	if !svc.IsUsingFactorySchema() {
		t.Error("IsUsingFactorySchema() = false, want true")
	}
	var doc map[string]any
	if err := json.Unmarshal(svc.Current(), &doc); err != nil {
		t.Fatalf("Current() is not valid JSON: %v", err)
	}
	if doc["title"] != "Policy Manifest" {
		t.Errorf("title = %v, want Policy Manifest", doc["title"])
	}
}

func TestValidate_AcceptsWellFormedManifest(t *testing.T) {
	svc, _ := newTestService(t)

	result, err := svc.Validate(validManifest())
	if err != nil {
		t.Fatalf("Validate() error = %v, want nil", err)
	}
	if !result.Valid {
		t.Errorf("Valid = false, want true; issues = %+v", result.Issues)
	}
	if len(result.Issues) != 0 {
		t.Errorf("len(Issues) = %v, want 0", len(result.Issues))
	}
}

func TestValidate_RejectsMalformedManifests(t *testing.T) {
	svc, _ := newTestService(t)

	tests := []struct {
		name   string
		mutate func(m map[string]any)
	}{
		{
			name:   "missing decisionDomain",
			mutate: func(m map[string]any) { delete(m, "decisionDomain") },
		},
		{
			name:   "domain name breaks pattern",
			mutate: func(m map[string]any) { m["decisionDomain"] = "has spaces" },
		},
		{
			name: "rule entry missing contextFilter",
			mutate: func(m map[string]any) {
				m["contentsByScope"] = map[string]any{
					"Fast Movers": []any{map[string]any{}},
				}
			},
		},
		{
			name: "unknown parameter type",
			mutate: func(m map[string]any) {
				m["contentsByScope"] = map[string]any{
					"Fast Movers": []any{
						map[string]any{
							"contextFilter":  map[string]any{},
							"ruleParameters": []any{map[string]any{"id": "x", "type": "float"}},
						},
					},
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := validManifest()
			tt.mutate(m)
			result, err := svc.Validate(m)
			if err != nil {
				t.Fatalf("Validate() error = %v, want nil", err)
			}
			if result.Valid {
				t.Error("Valid = true, want false")
			}
			if len(result.Issues) == 0 {
				t.Error("len(Issues) = 0, want at least 1")
			}
			for _, issue := range result.Issues {
				if issue.Path == "" {
					t.Errorf("issue %+v has empty path, want / or a pointer", issue)
				}
			}
		})
	}
}

func TestReplace_CompileFailureLeavesStateUnchanged(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	before := svc.Current()
	err := svc.Replace(ctx, json.RawMessage(`{"type": "not-a-real-type"}`))
	if !errors.Is(err, types.ErrSchemaCompile) {
		t.Fatalf("Replace() error = %v, want ErrSchemaCompile", err)
	}
	if !svc.IsUsingFactorySchema() {
		t.Error("IsUsingFactorySchema() = false, want true after failed replace")
	}
	if string(svc.Current()) != string(before) {
		t.Error("Current() changed after failed replace, want unchanged")
	}

	// The old validator still works.
	result, err := svc.Validate(validManifest())
	if err != nil || !result.Valid {
		t.Errorf("Validate() after failed replace = (%+v, %v), want valid", result, err)
	}
}

func TestReplace_PersistsOverride(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	// A permissive override that accepts anything object-shaped.
	override := json.RawMessage(`{"type": "object"}`)
	if err := svc.Replace(ctx, override); err != nil {
		t.Fatalf("Replace() error = %v, want nil", err)
	}
	if svc.IsUsingFactorySchema() {
		t.Error("IsUsingFactorySchema() = true, want false after replace")
	}

	// Documents the factory schema would reject now pass.
	result, err := svc.Validate(map[string]any{"anything": true})
	if err != nil {
		t.Fatalf("Validate() error = %v, want nil", err)
	}
	if !result.Valid {
		t.Errorf("Valid = false, want true under permissive override; issues = %+v", result.Issues)
	}

	// A fresh service over the same store picks the override up.
	fresh, err := NewService(ctx, st)
	if err != nil {
		t.Fatalf("NewService() error = %v, want nil", err)
	}
	if fresh.IsUsingFactorySchema() {
		t.Error("fresh IsUsingFactorySchema() = true, want false")
	}
	if string(fresh.Current()) != string(override) {
		t.Errorf("fresh Current() = %s, want %s", fresh.Current(), override)
	}
}

func TestReset_Idempotent(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if err := svc.Replace(ctx, json.RawMessage(`{"type": "object"}`)); err != nil {
		t.Fatalf("Replace() error = %v, want nil", err)
	}

	got, err := svc.Reset(ctx)
	if err != nil {
		t.Fatalf("Reset() error = %v, want nil", err)
	}
	if !svc.IsUsingFactorySchema() {
		t.Error("IsUsingFactorySchema() = false, want true after reset")
	}
	if string(got) != string(svc.FactorySchema()) {
		t.Error("Reset() did not return the factory schema")
	}

	// Resetting again is a no-op that still returns the factory schema.
	again, err := svc.Reset(ctx)
	if err != nil {
		t.Fatalf("Reset() (repeat) error = %v, want nil", err)
	}
	if string(again) != string(svc.FactorySchema()) {
		t.Error("repeated Reset() did not return the factory schema")
	}
}
