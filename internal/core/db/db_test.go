package db

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestOpenRejectsUnknownScheme(t *testing.T) {
	if _, err := Open("mysql://localhost/xyronq"); err == nil {
		t.Fatal("Open() error = nil, want unsupported scheme error")
	}
}

func TestOpenSQLiteEnablesForeignKeys(t *testing.T) {
	conn, err := Open("sqlite://" + filepath.Join(t.TempDir(), "fk.db"))
	if err != nil {
		t.Fatalf("Open() error = %v, want nil", err)
	}
	defer conn.Close()

	var enabled int
	if err := conn.Get(&enabled, "PRAGMA foreign_keys"); err != nil {
		t.Fatalf("PRAGMA foreign_keys error = %v, want nil", err)
	}
	if enabled != 1 {
		t.Errorf("foreign_keys = %d, want 1", enabled)
	}
}

func TestMigrateUpIsIdempotent(t *testing.T) {
	conn, err := Open("sqlite://" + filepath.Join(t.TempDir(), "migrate.db"))
	if err != nil {
		t.Fatalf("Open() error = %v, want nil", err)
	}
	defer conn.Close()

	if err := MigrateUp(conn); err != nil {
		t.Fatalf("MigrateUp() error = %v, want nil", err)
	}
	if err := MigrateUp(conn); err != nil {
		t.Fatalf("second MigrateUp() error = %v, want nil", err)
	}

	statuses, err := MigrateStatus(conn)
	if err != nil {
		t.Fatalf("MigrateStatus() error = %v, want nil", err)
	}
	if len(statuses) == 0 {
		t.Fatal("MigrateStatus() returned no migrations")
	}
	for _, status := range statuses {
		if !status.Applied {
			t.Errorf("migration %s not applied", status.ID)
		}
		if status.AppliedAt == "" {
			t.Errorf("migration %s has empty AppliedAt", status.ID)
		}
	}
}

func TestMigrateUpDetectsTamperedMigration(t *testing.T) {
	conn, err := Open("sqlite://" + filepath.Join(t.TempDir(), "tamper.db"))
	if err != nil {
		t.Fatalf("Open() error = %v, want nil", err)
	}
	defer conn.Close()

	if err := MigrateUp(conn); err != nil {
		t.Fatalf("MigrateUp() error = %v, want nil", err)
	}

	// Corrupt the recorded checksum to simulate an edited migration file.
	if _, err := conn.Exec("UPDATE migrations SET checksum = 'bogus'"); err != nil {
		t.Fatalf("failed to corrupt checksum: %v", err)
	}

	err = MigrateUp(conn)
	if err == nil {
		t.Fatal("MigrateUp() error = nil, want checksum mismatch")
	}
	if !strings.Contains(err.Error(), "checksum mismatch") {
		t.Errorf("MigrateUp() error = %v, want checksum mismatch", err)
	}
}
