package seed

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/logisq/xyronq/internal/core/db"
	"github.com/logisq/xyronq/internal/health"
	"github.com/logisq/xyronq/internal/schema"
	"github.com/logisq/xyronq/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
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
	return st
}

func TestApplyLoadsAllDomains(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	if err := Apply(ctx, st); err != nil {
		t.Fatalf("Apply() error = %v, want nil", err)
	}

	domains, err := st.ListDomains(ctx)
	if err != nil {
		t.Fatalf("ListDomains() error = %v, want nil", err)
	}
	if len(domains) != 4 {
		t.Fatalf("len(domains) = %d, want 4", len(domains))
	}

	want := []string{"EmptyHU.Selection", "Failure.Resolution", "Relocation", "Storage.Slotting"}
	for i, name := range want {
		if domains[i].Name != name {
			t.Errorf("domains[%d].Name = %q, want %q", i, domains[i].Name, name)
		}
	}
}

func TestApplyIsIdempotent(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	if err := Apply(ctx, st); err != nil {
		t.Fatalf("Apply() error = %v, want nil", err)
	}
	if err := Apply(ctx, st); err != nil {
		t.Fatalf("second Apply() error = %v, want nil", err)
	}

	domains, err := st.ListDomains(ctx)
	if err != nil {
		t.Fatalf("ListDomains() error = %v, want nil", err)
	}
	if len(domains) != 4 {
		t.Errorf("len(domains) after re-seed = %d, want 4", len(domains))
	}
}

func TestSeededManifestsMostlyValid(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	if err := Apply(ctx, st); err != nil {
		t.Fatalf("Apply() error = %v, want nil", err)
	}
	schemas, err := schema.NewService(ctx, st)
	if err != nil {
		t.Fatalf("schema.NewService() error = %v, want nil", err)
	}

	domains, err := st.ListDomainGraphs(ctx)
	if err != nil {
		t.Fatalf("ListDomainGraphs() error = %v, want nil", err)
	}

	for _, domain := range domains {
		issues, err := health.DomainIssues(domain, schemas)
		if err != nil {
			t.Fatalf("DomainIssues(%s) error = %v, want nil", domain.Name, err)
		}

		// EmptyHU.Selection carries a rule without a strategy on
		// purpose; everything else must be clean.
		if domain.Name == "EmptyHU.Selection" {
			if len(issues) != 1 {
				t.Errorf("DomainIssues(%s) = %v, want exactly one finding", domain.Name, issues)
			}
			continue
		}
		if len(issues) != 0 {
			t.Errorf("DomainIssues(%s) = %v, want none", domain.Name, issues)
		}
	}
}

func TestApplyFailureLeavesExistingDataIntact(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	kept, err := st.CreateDomain(ctx, "Keep.Me", "must survive a failed seed", "1.0.0")
	if err != nil {
		t.Fatalf("CreateDomain() error = %v, want nil", err)
	}

	broken := []domainFixture{
		{name: "Fresh.Domain", version: "1.0.0"},
		{name: "bad name", version: "1.0.0"},
	}
	if err := apply(ctx, st, broken); err == nil {
		t.Fatalf("apply() error = nil, want invalid-name error")
	}

	domains, err := st.ListDomains(ctx)
	if err != nil {
		t.Fatalf("ListDomains() error = %v, want nil", err)
	}
	if len(domains) != 1 || domains[0].ID != kept.ID {
		t.Fatalf("ListDomains() after failed apply = %v, want only %s", domains, kept.ID)
	}
}
