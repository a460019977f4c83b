package testutil

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"github.com/teranos/eavto/db"
)

// SetupTestDB creates a file-backed SQLite database in t.TempDir().
// Uses real migrations to ensure test schema matches production schema.
// A file is used instead of :memory: so pooled connections share one
// database and WAL readers run concurrently with the writer.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := db.OpenWithMigrations(filepath.Join(t.TempDir(), "eavto.db"), nil)
	require.NoError(t, err, "Failed to open test database")

	t.Cleanup(func() { testDB.Close() })
	return testDB
}

// SetupEmptyDB creates a database WITHOUT the schema.
// Used for testing error handling when tables are missing.
func SetupEmptyDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := db.Open(filepath.Join(t.TempDir(), "empty.db"), nil)
	require.NoError(t, err)

	t.Cleanup(func() { testDB.Close() })
	return testDB
}

// CountRows returns the row count of table, failing the test on error.
func CountRows(t *testing.T, d *sql.DB, table string) int {
	t.Helper()

	var n int
	require.NoError(t, d.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}
