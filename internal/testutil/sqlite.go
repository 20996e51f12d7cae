package testutil

import (
	"database/sql"
	"fmt"
	"sync/atomic"
	"testing"

	_ "modernc.org/sqlite"
)

var memoryDBSeq atomic.Int64

// OpenSQLite creates a private in-memory SQLite database with foreign keys
// enforced. Every connection in the pool sees the same database; the
// database disappears when the test completes.
func OpenSQLite(t testing.TB) *sql.DB {
	t.Helper()

	name := fmt.Sprintf("file:autofk_test_%d?mode=memory&cache=shared&_pragma=foreign_keys(1)", memoryDBSeq.Add(1))
	db, err := sql.Open("sqlite", name)
	if err != nil {
		t.Fatalf("failed to open sqlite connection: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Fatalf("failed to ping sqlite: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// ExecSQL executes statements, failing the test on the first error.
func ExecSQL(t testing.TB, db *sql.DB, statements ...string) {
	t.Helper()

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("failed to execute SQL: %v\nsql: %s", err, stmt)
		}
	}
}

// SQLiteIndexNames returns the names of the indexes on table, excluding the
// automatic ones SQLite creates for constraints.
func SQLiteIndexNames(t testing.TB, db *sql.DB, table string) []string {
	t.Helper()

	rows, err := db.Query(
		`SELECT name FROM sqlite_master WHERE type = 'index' AND tbl_name = ? AND name NOT LIKE 'sqlite_autoindex_%' ORDER BY name`,
		table)
	if err != nil {
		t.Fatalf("failed to list indexes: %v", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			t.Fatalf("failed to scan index name: %v", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		t.Fatalf("failed to list indexes: %v", err)
	}
	return names
}

// AssertIndexExists checks that an index exists on table.
func AssertIndexExists(t testing.TB, db *sql.DB, table, index string) {
	t.Helper()

	for _, name := range SQLiteIndexNames(t, db, table) {
		if name == index {
			return
		}
	}
	t.Errorf("index %q does not exist on table %q", index, table)
}

// AssertIndexNotExists checks that an index does not exist on table.
func AssertIndexNotExists(t testing.TB, db *sql.DB, table, index string) {
	t.Helper()

	for _, name := range SQLiteIndexNames(t, db, table) {
		if name == index {
			t.Errorf("index %q should not exist on table %q", index, table)
			return
		}
	}
}

// AssertTableExists checks that a table exists in the SQLite database.
func AssertTableExists(t testing.TB, db *sql.DB, table string) {
	t.Helper()

	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&n)
	if err != nil {
		t.Fatalf("failed to check table existence: %v", err)
	}
	if n == 0 {
		t.Errorf("table %q does not exist", table)
	}
}
