package audit

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/site-tracker/engine/internal/authz"
	"github.com/site-tracker/engine/internal/models"
	"github.com/site-tracker/engine/internal/repository"
	"github.com/site-tracker/engine/internal/testutil"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRecordPersistsEvent(t *testing.T) {
	db := testutil.NewDB(t)
	a := NewAuditor(repository.NewAuditRepository(db))

	ctx, cancel := context.WithCancel(WithClientIP(context.Background(), "203.0.113.9"))
	actor := authz.Principal{UserID: uuid.New(), Email: "a@x.com", Role: models.RoleMember}
	res := a.Record(ctx, Event{Action: "project.create", Actor: actor, Details: map[string]any{"projectId": "p1"}})
	cancel()
	require.True(t, res.OK())
	a.Wait()

	var rows []models.AuditLog
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 1)
	require.Equal(t, "project.create", rows[0].Action)
	require.Equal(t, "203.0.113.9", rows[0].IP)
	require.Equal(t, actor.UserID, *rows[0].UserID)
	require.Equal(t, "p1", rows[0].Details["projectId"])
}

type failingRepo struct {
	mock.Mock
}

func (f *failingRepo) Insert(ctx context.Context, entry *models.AuditLog) error {
	return f.Called(entry.Action).Error(0)
}

func TestRecordSwallowsFailures(t *testing.T) {
	repo := new(failingRepo)
	repo.On("Insert", "user.login_failed").Return(errors.New("db down")).Once()
	a := NewAuditor(repo)

	res := a.Record(context.Background(), Event{Action: "user.login_failed"})
	require.True(t, res.OK(), "the request path never sees audit failures")
	a.Wait()
	repo.AssertExpectations(t)
}
