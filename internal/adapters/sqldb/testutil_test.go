// Package sqldb_test contains integration tests for the sqlx adapters.
//
// Every test database is built from db.GetSchemaSQL() so tests run against
// the authoritative static schema. Dynamic tables are created through the
// schema generator, the same way the provisioning pipeline creates them.
package sqldb_test

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"github.com/example/cts/internal/db"
	"github.com/example/cts/internal/ports/secondary"
)

// setupTestDB creates an in-memory database with the authoritative schema.
func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	testDB, err := sqlx.Open("sqlite3", ":memory:?_foreign_keys=on")
	require.NoError(t, err)
	// one connection: each :memory: connection is its own database
	testDB.SetMaxOpenConns(1)

	for _, stmt := range db.Statements(db.GetSchemaSQL()) {
		_, err := testDB.Exec(stmt)
		require.NoError(t, err)
	}

	t.Cleanup(func() {
		testDB.Close()
	})
	return testDB
}

// seedTemplate inserts a form template and returns its ID.
func seedTemplate(t *testing.T, testDB *sqlx.DB, id, name string) string {
	t.Helper()
	_, err := testDB.Exec(
		"INSERT INTO form_template (id, name, title, content, version, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		id, name, "Title "+name, `{"form":{"questions":[]}}`, "1.0", time.Now(),
	)
	require.NoError(t, err)
	return id
}

// seedProject inserts a project and returns its ID.
func seedProject(t *testing.T, testDB *sqlx.DB, id, code, templateID string) string {
	t.Helper()
	err := newProjectRepo(testDB).Create(context.Background(), &secondary.ProjectRecord{
		ID:             id,
		Name:           "Project " + code,
		Code:           code,
		FormTemplateID: templateID,
		DataTableName:  "abc",
		Type:           1,
		CreatedAt:      time.Now(),
	})
	require.NoError(t, err)
	return id
}

// tableExists reports whether a table is present in the SQLite catalog.
func tableExists(t *testing.T, testDB *sqlx.DB, name string) bool {
	t.Helper()
	var n int
	require.NoError(t, testDB.Get(&n, "SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", name))
	return n > 0
}
