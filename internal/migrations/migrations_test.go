package migrations

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/site-tracker/engine/internal/models"
	"github.com/site-tracker/engine/pkg/database"
)

func TestRunIsIdempotent(t *testing.T) {
	db, err := database.Open(context.Background(), database.Options{Driver: "sqlite", DSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	require.NoError(t, Run(db))
	require.NoError(t, Run(db))

	for _, m := range models.All() {
		require.True(t, db.Migrator().HasTable(m))
	}
	require.True(t, db.Migrator().HasIndex(&models.DailyLog{}, "idx_daily_logs_project_date"))
	require.True(t, db.Migrator().HasIndex(&models.Attachment{}, "idx_attachments_log_uploaded"))
	require.True(t, db.Migrator().HasIndex(&models.Comment{}, "idx_attachment_comments_thread"))
}
