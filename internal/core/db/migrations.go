package db

import (
	"crypto/sha256"
	"embed"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	embeddedmigrations "github.com/logisq/xyronq/migrations"
)

// MigrationStatus represents the state of a single migration.
type MigrationStatus struct {
	ID        string
	Checksum  string
	Applied   bool
	AppliedAt string
}

type migration struct {
	ID       string
	Checksum string
	SQL      string
}

// MigrateUp applies all pending migrations for the connected driver.
// Already-applied migrations are checksum-validated first: a modified
// migration file aborts the run before any new statement executes.
func MigrateUp(conn *sqlx.DB) error {
	migs, err := loadMigrations(conn.DriverName())
	if err != nil {
		return err
	}
	if err := ensureMigrationsTable(conn); err != nil {
		return err
	}

	applied, err := appliedChecksums(conn)
	if err != nil {
		return err
	}
	for _, m := range migs {
		recorded, ok := applied[m.ID]
		if !ok {
			continue
		}
		if recorded != m.Checksum {
			return fmt.Errorf("checksum mismatch for migration %s: expected %s, got %s", m.ID, m.Checksum, recorded)
		}
	}

	for _, m := range migs {
		if _, ok := applied[m.ID]; ok {
			continue
		}

		// One transaction per migration: the DDL and its audit record
		// commit together or not at all.
		tx, err := conn.Beginx()
		if err != nil {
			return fmt.Errorf("failed to begin transaction for migration %s: %w", m.ID, err)
		}
		if err := execStatements(tx, m.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to apply migration %s: %w", m.ID, err)
		}
		now := time.Now().UTC().Format(time.RFC3339)
		if _, err := tx.Exec(conn.Rebind(
			"INSERT INTO migrations (migration_id, checksum, applied_at) VALUES (?, ?, ?)"),
			m.ID, m.Checksum, now,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %s: %w", m.ID, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %s: %w", m.ID, err)
		}
	}

	return nil
}

// MigrateStatus returns the applied/pending state of every known migration.
func MigrateStatus(conn *sqlx.DB) ([]MigrationStatus, error) {
	migs, err := loadMigrations(conn.DriverName())
	if err != nil {
		return nil, err
	}
	if err := ensureMigrationsTable(conn); err != nil {
		return nil, err
	}

	type row struct {
		ID        string `db:"migration_id"`
		Checksum  string `db:"checksum"`
		AppliedAt string `db:"applied_at"`
	}
	var rows []row
	if err := conn.Select(&rows, "SELECT migration_id, checksum, applied_at FROM migrations"); err != nil {
		return nil, fmt.Errorf("failed to query migrations: %w", err)
	}
	appliedAt := make(map[string]row, len(rows))
	for _, r := range rows {
		appliedAt[r.ID] = r
	}

	statuses := make([]MigrationStatus, 0, len(migs))
	for _, m := range migs {
		s := MigrationStatus{ID: m.ID, Checksum: m.Checksum}
		if r, ok := appliedAt[m.ID]; ok {
			s.Applied = true
			s.AppliedAt = r.AppliedAt
		}
		statuses = append(statuses, s)
	}
	return statuses, nil
}

// loadMigrations reads the embedded migration set for a driver, ordered
// by filename.
func loadMigrations(driver string) ([]migration, error) {
	var migrationsFS embed.FS
	var dir string

	switch driver {
	case "sqlite3":
		migrationsFS = embeddedmigrations.SqliteMigrations
		dir = "sqlite"
	case "postgres":
		migrationsFS = embeddedmigrations.PostgresMigrations
		dir = "postgres"
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}

	var migs []migration
	err := fs.WalkDir(migrationsFS, dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".sql") {
			return nil
		}
		content, err := migrationsFS.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		migs = append(migs, migration{
			ID:       filepath.Base(path),
			Checksum: fmt.Sprintf("%x", sha256.Sum256(content)),
			SQL:      string(content),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse migrations: %w", err)
	}

	sort.Slice(migs, func(i, j int) bool { return migs[i].ID < migs[j].ID })
	return migs, nil
}

func ensureMigrationsTable(conn *sqlx.DB) error {
	_, err := conn.Exec(`
		CREATE TABLE IF NOT EXISTS migrations (
			migration_id TEXT PRIMARY KEY,
			checksum TEXT NOT NULL,
			applied_at TEXT NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}
	return nil
}

func appliedChecksums(conn *sqlx.DB) (map[string]string, error) {
	rows, err := conn.Queryx("SELECT migration_id, checksum FROM migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to query applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[string]string)
	for rows.Next() {
		var id, checksum string
		if err := rows.Scan(&id, &checksum); err != nil {
			return nil, err
		}
		applied[id] = checksum
	}
	return applied, rows.Err()
}

// execStatements splits a migration on semicolons and runs each statement.
// lib/pq doesn't support multiple statements in a single Exec. Comment
// lines are stripped first so a leading comment block doesn't swallow the
// statement that follows it.
func execStatements(tx *sqlx.Tx, script string) error {
	for _, chunk := range strings.Split(script, ";") {
		var lines []string
		for _, line := range strings.Split(chunk, "\n") {
			if strings.HasPrefix(strings.TrimSpace(line), "--") {
				continue
			}
			lines = append(lines, line)
		}
		stmt := strings.TrimSpace(strings.Join(lines, "\n"))
		if stmt == "" {
			continue
		}
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("statement failed: %w", err)
		}
	}
	return nil
}
