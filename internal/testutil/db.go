// Package testutil holds helpers shared by store-backed tests.
package testutil

import (
	"context"
	"testing"

	"github.com/site-tracker/engine/internal/migrations"
	"github.com/site-tracker/engine/pkg/database"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// NewDB opens a fresh in-memory SQLite database with the full schema applied.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(context.Background(), database.Options{Driver: "sqlite", DSN: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, migrations.Run(db))
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}
