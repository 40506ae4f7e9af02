package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	"github.com/qustavo/dotsql"
)

//go:embed queries/*.sql
var queriesFS embed.FS

// queries provides access to named SQL statements loaded from embedded
// .sql files. dotsql handles name lookup; sqlx Rebind converts the ?
// placeholders to $1, $2 for PostgreSQL. Statements run against any
// sqlx.ExtContext so the same code serves both the pooled connection and
// an open transaction.
type queries struct {
	dot *dotsql.DotSql
}

func loadQueries() (*queries, error) {
	var combined string

	err := fs.WalkDir(queriesFS, "queries", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".sql" {
			return nil
		}
		content, err := queriesFS.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		combined += string(content) + "\n"
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load query files: %w", err)
	}

	dot, err := dotsql.LoadFromString(combined)
	if err != nil {
		return nil, fmt.Errorf("failed to parse queries: %w", err)
	}
	return &queries{dot: dot}, nil
}

func (q *queries) exec(ctx context.Context, ext sqlx.ExtContext, name string, args ...any) (sql.Result, error) {
	raw, err := q.dot.Raw(name)
	if err != nil {
		return nil, fmt.Errorf("query not found: %s", name)
	}
	return ext.ExecContext(ctx, ext.Rebind(raw), args...)
}

func (q *queries) get(ctx context.Context, ext sqlx.ExtContext, name string, dest any, args ...any) error {
	raw, err := q.dot.Raw(name)
	if err != nil {
		return fmt.Errorf("query not found: %s", name)
	}
	return sqlx.GetContext(ctx, ext, dest, ext.Rebind(raw), args...)
}

func (q *queries) sel(ctx context.Context, ext sqlx.ExtContext, name string, dest any, args ...any) error {
	raw, err := q.dot.Raw(name)
	if err != nil {
		return fmt.Errorf("query not found: %s", name)
	}
	return sqlx.SelectContext(ctx, ext, dest, ext.Rebind(raw), args...)
}
