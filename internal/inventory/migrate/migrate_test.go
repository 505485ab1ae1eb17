package migrate

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const migrationCount = 4

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("duckdb", "")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRun_CreatesInventoryTables(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, NewRunner(db).Run(context.Background()))

	for _, table := range []string{
		"categories", "locations", "departments", "vendors", "assets",
		"assignments", "maintenance_records", "maintenance_schedules",
		"attachments", "depreciation_entries", "schema_migrations",
	} {
		var name string
		err := db.QueryRow("SELECT table_name FROM information_schema.tables WHERE table_name = ?", table).Scan(&name)
		assert.NoError(t, err, "table %s", table)
	}
}

func TestRun_Idempotent(t *testing.T) {
	ctx := context.Background()
	r := NewRunner(openTestDB(t))

	pending, err := r.Pending(ctx)
	require.NoError(t, err)
	assert.Equal(t, migrationCount, pending)

	require.NoError(t, r.Run(ctx))
	require.NoError(t, r.Run(ctx))

	v, err := r.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, migrationCount, v)

	pending, err = r.Pending(ctx)
	require.NoError(t, err)
	assert.Zero(t, pending)
}
