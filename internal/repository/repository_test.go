package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/site-tracker/engine/internal/models"
	"github.com/site-tracker/engine/internal/testutil"
	appErr "github.com/site-tracker/engine/pkg/errors"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	u := &models.User{Email: email, PasswordHash: "x", Role: models.RoleMember}
	require.NoError(t, NewUserRepository(db).Create(context.Background(), u))
	return u
}

func seedProject(t *testing.T, db *gorm.DB, owner uuid.UUID) *models.Project {
	t.Helper()
	p := &models.Project{Name: "Depot", Client: "ACME", SiteAddress: "1 Road", StartDate: time.Now().UTC(), Status: models.ProjectActive, CreatedBy: owner}
	require.NoError(t, NewProjectRepository(db).Create(context.Background(), p))
	return p
}

func TestUserCreateNormalizesAndRejectsDuplicates(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	repo := NewUserRepository(db)

	u := seedUser(t, db, "  Alice@Example.COM ")
	require.Equal(t, "alice@example.com", u.Email)
	require.NotEqual(t, uuid.Nil, u.ID)

	err := repo.Create(ctx, &models.User{Email: "ALICE@example.com", PasswordHash: "y"})
	require.True(t, appErr.IsCode(err, appErr.CodeConflict))

	var got models.User
	require.NoError(t, repo.GetByEmail(ctx, "alice@EXAMPLE.com", &got))
	require.Equal(t, u.ID, got.ID)

	err = repo.GetByEmail(ctx, "nobody@example.com", &got)
	require.True(t, appErr.IsCode(err, appErr.CodeNotFound))
}

func TestRegisterFailedLoginLocksAtThreshold(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	repo := NewUserRepository(db)
	u := seedUser(t, db, "lock@example.com")
	until := time.Now().UTC().Add(15 * time.Minute)

	for i := 1; i <= 4; i++ {
		n, err := repo.RegisterFailedLogin(ctx, u.ID, 5, until)
		require.NoError(t, err)
		require.Equal(t, i, n)
	}
	var got models.User
	require.NoError(t, repo.GetByID(ctx, u.ID, &got))
	require.Nil(t, got.LockUntil)

	n, err := repo.RegisterFailedLogin(ctx, u.ID, 5, until)
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.NoError(t, repo.GetByID(ctx, u.ID, &got))
	require.NotNil(t, got.LockUntil)
	require.WithinDuration(t, until, *got.LockUntil, time.Second)

	require.NoError(t, repo.ResetLoginState(ctx, u.ID))
	var cleared models.User
	require.NoError(t, repo.GetByID(ctx, u.ID, &cleared))
	require.Zero(t, cleared.FailedLoginAttempts)
	require.Nil(t, cleared.LockUntil)
}

func TestResetTokenLookupHonoursExpiry(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	repo := NewUserRepository(db)
	u := seedUser(t, db, "reset@example.com")
	now := time.Now().UTC()

	require.NoError(t, repo.SetResetToken(ctx, u.ID, "hash-1", now.Add(time.Hour)))
	var got models.User
	require.NoError(t, repo.GetByResetToken(ctx, "hash-1", now, &got))
	require.Equal(t, u.ID, got.ID)

	err := repo.GetByResetToken(ctx, "hash-1", now.Add(2*time.Hour), &got)
	require.True(t, appErr.IsCode(err, appErr.CodeNotFound))

	require.NoError(t, repo.CompleteReset(ctx, u.ID, "new-hash"))
	err = repo.GetByResetToken(ctx, "hash-1", now, &got)
	require.True(t, appErr.IsCode(err, appErr.CodeNotFound))
}

func TestProjectListFilters(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	repo := NewProjectRepository(db)
	alice := seedUser(t, db, "a@example.com")
	bob := seedUser(t, db, "b@example.com")

	seedProject(t, db, alice.ID)
	p2 := seedProject(t, db, alice.ID)
	seedProject(t, db, bob.ID)
	require.NoError(t, repo.Archive(ctx, p2.ID))

	all, err := repo.List(ctx, ProjectFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)

	mine, err := repo.List(ctx, ProjectFilter{OwnerID: &alice.ID})
	require.NoError(t, err)
	require.Len(t, mine, 2)

	archived := true
	got, err := repo.List(ctx, ProjectFilter{OwnerID: &alice.ID, Archived: &archived})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, models.ProjectArchived, got[0].Status)

	got, err = repo.List(ctx, ProjectFilter{Status: models.ProjectActive})
	require.NoError(t, err)
	require.Len(t, got, 2)
}

func TestProjectDeleteCascade(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	u := seedUser(t, db, "c@example.com")
	p := seedProject(t, db, u.ID)
	other := seedProject(t, db, u.ID)

	folders := NewFolderRepository(db)
	logs := NewLogRepository(db)
	atts := NewAttachmentRepository(db)

	f := &models.LogFolder{ProjectID: p.ID, Name: "Week 1", CreatedBy: u.ID}
	require.NoError(t, folders.Create(ctx, f))
	l := &models.DailyLog{ProjectID: p.ID, FolderID: &f.ID, Date: time.Now().UTC(), SiteArea: "A", ActivityType: "rebar", Summary: "s", CreatedBy: u.ID}
	require.NoError(t, logs.Create(ctx, l))
	keep := &models.DailyLog{ProjectID: other.ID, Date: time.Now().UTC(), SiteArea: "B", ActivityType: "other", Summary: "s", CreatedBy: u.ID}
	require.NoError(t, logs.Create(ctx, keep))
	a := models.Attachment{DailyLogID: l.ID, FileURL: "u", FileName: "f.png", MimeType: "image/png", FileSize: 1, UploadedBy: u.ID, UploadedAt: time.Now().UTC()}
	require.NoError(t, atts.CreateBatch(ctx, []models.Attachment{a}))
	listed, err := atts.ListByLogs(ctx, []uuid.UUID{l.ID})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.NoError(t, atts.AddComment(ctx, &models.Comment{AttachmentID: listed[0].ID, Text: "hi", CreatedBy: u.ID, AuthorName: "c"}))

	require.NoError(t, NewProjectRepository(db).DeleteCascade(ctx, p.ID))

	var count int64
	require.NoError(t, db.Model(&models.Comment{}).Count(&count).Error)
	require.Zero(t, count)
	require.NoError(t, db.Model(&models.Attachment{}).Count(&count).Error)
	require.Zero(t, count)
	require.NoError(t, db.Model(&models.LogFolder{}).Count(&count).Error)
	require.Zero(t, count)
	require.NoError(t, db.Model(&models.DailyLog{}).Count(&count).Error)
	require.Equal(t, int64(1), count)

	var gone models.Project
	err = NewProjectRepository(db).GetByID(ctx, p.ID, &gone)
	require.True(t, appErr.IsCode(err, appErr.CodeNotFound))
	require.Equal(t, "Project not found.", err.(*appErr.AppError).Message)

	err = NewProjectRepository(db).DeleteCascade(ctx, p.ID)
	require.True(t, appErr.IsCode(err, appErr.CodeNotFound))
}

func TestFolderDeleteDetachesLogs(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	u := seedUser(t, db, "d@example.com")
	p := seedProject(t, db, u.ID)
	folders := NewFolderRepository(db)
	logs := NewLogRepository(db)

	f := &models.LogFolder{ProjectID: p.ID, Name: "Week 2", CreatedBy: u.ID}
	require.NoError(t, folders.Create(ctx, f))
	l := &models.DailyLog{ProjectID: p.ID, FolderID: &f.ID, Date: time.Now().UTC(), SiteArea: "A", ActivityType: "masonry", Summary: "s", CreatedBy: u.ID}
	require.NoError(t, logs.Create(ctx, l))

	require.NoError(t, folders.DeleteAndDetach(ctx, f.ID))

	var got models.DailyLog
	require.NoError(t, logs.GetByID(ctx, l.ID, &got))
	require.Nil(t, got.FolderID)
}

func TestLogListFiltersAndPaginates(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	u := seedUser(t, db, "e@example.com")
	p := seedProject(t, db, u.ID)
	logs := NewLogRepository(db)

	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	var ids []uuid.UUID
	for i := 0; i < 5; i++ {
		activity := "rebar"
		if i%2 == 0 {
			activity = "concrete_pour"
		}
		l := &models.DailyLog{ProjectID: p.ID, Date: base.AddDate(0, 0, i), SiteArea: "A", ActivityType: activity, Summary: "s", CreatedBy: u.ID}
		require.NoError(t, logs.Create(ctx, l))
		ids = append(ids, l.ID)
	}

	page, total, err := logs.List(ctx, LogFilter{ProjectID: p.ID, Offset: 0, Limit: 2})
	require.NoError(t, err)
	require.Equal(t, int64(5), total)
	require.Len(t, page, 2)
	require.Equal(t, ids[4], page[0].ID, "newest date first")

	from := base.AddDate(0, 0, 1)
	to := base.AddDate(0, 0, 3)
	got, total, err := logs.List(ctx, LogFilter{ProjectID: p.ID, From: &from, To: &to})
	require.NoError(t, err)
	require.Equal(t, int64(3), total)
	require.Len(t, got, 3)

	got, _, err = logs.List(ctx, LogFilter{ProjectID: p.ID, ActivityType: "concrete_pour"})
	require.NoError(t, err)
	require.Len(t, got, 3)

	got, _, err = logs.List(ctx, LogFilter{ProjectID: p.ID, IDs: []uuid.UUID{ids[0], ids[2]}})
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, ids[2], got[0].ID)
}
