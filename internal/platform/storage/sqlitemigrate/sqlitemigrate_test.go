package sqlitemigrate

import (
	"context"
	"database/sql"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func memDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func count(t *testing.T, db *sql.DB, query string, args ...any) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(query, args...).Scan(&n))
	return n
}

func sqlFile(body string) *fstest.MapFile {
	return &fstest.MapFile{Data: []byte(body)}
}

func TestApplyMigrationsRunsPendingFilesOnce(t *testing.T) {
	t.Parallel()

	db := memDB(t)
	fsys := fstest.MapFS{
		"002_rsvps.sql":  sqlFile("-- +migrate Up\nCREATE TABLE rsvps(id INTEGER PRIMARY KEY, guest_id INTEGER REFERENCES guests(id));"),
		"001_guests.sql": sqlFile("-- +migrate Up\nCREATE TABLE guests(id INTEGER PRIMARY KEY);\n-- +migrate Down\nDROP TABLE guests;"),
		"README.md":      sqlFile("not a migration"),
	}

	applied, err := ApplyMigrations(context.Background(), db, fsys, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"001_guests.sql", "002_rsvps.sql"}, applied)
	assert.Equal(t, 1, count(t, db, "SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", "guests"))

	applied, err = ApplyMigrations(context.Background(), db, fsys, "")
	require.NoError(t, err)
	assert.Empty(t, applied)
	assert.Equal(t, 2, count(t, db, "SELECT COUNT(*) FROM schema_migrations"))
}

func TestApplyMigrationsLeavesFailedFileUnrecorded(t *testing.T) {
	t.Parallel()

	db := memDB(t)
	_, err := ApplyMigrations(context.Background(), db, fstest.MapFS{
		"001_bad.sql": sqlFile("-- +migrate Up\nCREAT table things(id INT);"),
	}, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "001_bad.sql")
	assert.Equal(t, 0, count(t, db, "SELECT COUNT(*) FROM schema_migrations"))
}

func TestApplyMigrationsToleratesExistingTable(t *testing.T) {
	t.Parallel()

	db := memDB(t)
	_, err := db.Exec("CREATE TABLE guests(id INTEGER PRIMARY KEY)")
	require.NoError(t, err)

	applied, err := ApplyMigrations(context.Background(), db, fstest.MapFS{
		"001_guests.sql": sqlFile("CREATE TABLE guests(id INTEGER PRIMARY KEY);"),
	}, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"001_guests.sql"}, applied)
}

func TestApplyMigrationsUnderRoot(t *testing.T) {
	t.Parallel()

	db := memDB(t)
	fsys := fstest.MapFS{
		"wedding/001_rsvps.sql": sqlFile("-- +migrate Up\nCREATE TABLE rsvps(id INTEGER PRIMARY KEY);"),
		"other/001_x.sql":       sqlFile("-- +migrate Up\nCREATE TABLE x(id INTEGER PRIMARY KEY);"),
	}
	_, err := ApplyMigrations(context.Background(), db, fsys, "wedding")
	require.NoError(t, err)

	list, err := Applied(context.Background(), db)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "wedding/001_rsvps.sql", list[0].Name)
	assert.False(t, list[0].AppliedAt.IsZero())
}

func TestApplyMigrationsRequiresDB(t *testing.T) {
	t.Parallel()

	_, err := ApplyMigrations(context.Background(), nil, fstest.MapFS{}, "")
	require.ErrorIs(t, err, errNilDB)
}

func TestExtractUpMigration(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "\nUP;\n", ExtractUpMigration("-- +migrate Up\nUP;\n-- +migrate Down\nDOWN;"))
	assert.Equal(t, "\nUP;", ExtractUpMigration("-- +migrate Up\nUP;"))
	assert.Equal(t, "PLAIN;", ExtractUpMigration("PLAIN;"))
}
