// Package dbtest opens migrated in-memory databases for tests.
package dbtest

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/example/wordbot/internal/config"
	"github.com/example/wordbot/internal/database"
	"github.com/example/wordbot/internal/logging"
)

// New returns a fresh SQLite database with the schema applied.
// It is closed when the test ends.
func New(t testing.TB) *sqlx.DB {
	t.Helper()

	db, err := database.Connect(config.DatabaseConfig{Driver: "sqlite3", DSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.Migrate(context.Background(), db, logging.Discard()))
	return db
}
