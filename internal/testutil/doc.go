// Package testutil provides test helpers for autofk.
//
// This package includes:
//   - SQL assertion helpers for comparing generated statements
//   - Error assertion helpers for checking alerr codes
//   - In-memory SQLite databases (modernc.org/sqlite, no cgo)
//   - PostgreSQL and MySQL containers (testcontainers-go)
//
// # Build Tags
//
// Container-backed tests only build with the integration tag:
//
//	go test ./... -tags=integration
//
// They are skipped when no container runtime is available.
//
// # Example Usage
//
//	func TestRename(t *testing.T) {
//	    db := testutil.OpenSQLite(t)
//	    testutil.ExecSQL(t, db, `CREATE TABLE users (id INTEGER PRIMARY KEY)`)
//	    testutil.AssertIndexNotExists(t, db, "users", "fk__users_org_id")
//	}
package testutil
