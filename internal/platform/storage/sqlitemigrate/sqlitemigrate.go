// Package sqlitemigrate applies embedded SQL migrations to SQLite databases.
//
// Each *.sql file runs once, in file name order, inside its own
// transaction. Only the "-- +migrate Up" section is executed.
package sqlitemigrate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"
	"time"
)

const (
	upMarker   = "-- +migrate Up"
	downMarker = "-- +migrate Down"
)

const (
	createTable = `CREATE TABLE IF NOT EXISTS schema_migrations (
    name TEXT PRIMARY KEY,
    applied_at INTEGER NOT NULL
)`
	recordMigration = `INSERT OR IGNORE INTO schema_migrations (name, applied_at) VALUES (?, ?)`
	listMigrations  = `SELECT name, applied_at FROM schema_migrations ORDER BY name`
)

var errNilDB = errors.New("sql db is required")

// Migration describes one recorded migration.
type Migration struct {
	Name      string
	AppliedAt time.Time
}

// ApplyMigrations runs the pending *.sql files under root (the fsys root
// when blank) and returns the names it applied. Names are recorded
// relative to fsys, so "wedding/001_x.sql" for root "wedding".
func ApplyMigrations(ctx context.Context, db *sql.DB, fsys fs.FS, root string) ([]string, error) {
	if db == nil {
		return nil, errNilDB
	}
	root = strings.TrimSpace(root)
	if root == "" {
		root = "."
	}
	files, err := fs.Glob(fsys, path.Join(root, "*.sql"))
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}
	slices.Sort(files)

	done, err := appliedNames(ctx, db)
	if err != nil {
		return nil, err
	}

	var applied []string
	for _, name := range files {
		if done[name] {
			continue
		}
		raw, err := fs.ReadFile(fsys, name)
		if err != nil {
			return applied, fmt.Errorf("read migration %s: %w", name, err)
		}
		up := ExtractUpMigration(string(raw))
		if strings.TrimSpace(up) == "" {
			continue
		}
		if err := apply(ctx, db, name, up); err != nil {
			return applied, fmt.Errorf("migration %s: %w", name, err)
		}
		applied = append(applied, name)
	}
	return applied, nil
}

// Applied lists recorded migrations ordered by name.
func Applied(ctx context.Context, db *sql.DB) ([]Migration, error) {
	if db == nil {
		return nil, errNilDB
	}
	if _, err := db.ExecContext(ctx, createTable); err != nil {
		return nil, fmt.Errorf("ensure migration table: %w", err)
	}
	rows, err := db.QueryContext(ctx, listMigrations)
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}
	defer rows.Close()

	var out []Migration
	for rows.Next() {
		var (
			m  Migration
			ms int64
		)
		if err := rows.Scan(&m.Name, &ms); err != nil {
			return nil, fmt.Errorf("scan migration: %w", err)
		}
		m.AppliedAt = time.UnixMilli(ms).UTC()
		out = append(out, m)
	}
	return out, rows.Err()
}

// ExtractUpMigration returns the text between the Up and Down markers. A
// file without an Up marker is returned whole.
func ExtractUpMigration(content string) string {
	_, up, found := strings.Cut(content, upMarker)
	if !found {
		return content
	}
	up, _, _ = strings.Cut(up, downMarker)
	return up
}

func appliedNames(ctx context.Context, db *sql.DB) (map[string]bool, error) {
	list, err := Applied(ctx, db)
	if err != nil {
		return nil, err
	}
	done := make(map[string]bool, len(list))
	for _, m := range list {
		done[m.Name] = true
	}
	return done, nil
}

func apply(ctx context.Context, db *sql.DB, name, up string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, up); err != nil && !alreadyApplied(err) {
		return fmt.Errorf("exec: %w", err)
	}
	if _, err := tx.ExecContext(ctx, recordMigration, name, time.Now().UTC().UnixMilli()); err != nil {
		return fmt.Errorf("record: %w", err)
	}
	return tx.Commit()
}

// alreadyApplied matches DDL errors from schema changes made before the
// migration was recorded.
func alreadyApplied(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "already exists") || strings.Contains(msg, "duplicate column name")
}
