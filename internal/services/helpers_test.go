package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/site-tracker/engine/internal/audit"
	"github.com/site-tracker/engine/internal/auth"
	"github.com/site-tracker/engine/internal/authz"
	"github.com/site-tracker/engine/internal/models"
	"github.com/site-tracker/engine/internal/repository"
	"github.com/site-tracker/engine/internal/storage"
	"github.com/site-tracker/engine/internal/testutil"
	appErr "github.com/site-tracker/engine/pkg/errors"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// memStore is an in-memory ObjectStore.
type memStore struct {
	mu       sync.Mutex
	objects  map[string][]byte
	uploads  int
	failName string
	failDel  bool
}

func newMemStore() *memStore { return &memStore{objects: map[string][]byte{}} }

func (m *memStore) Upload(ctx context.Context, obj storage.Object) (storage.FileRef, error) {
	m.mu.Lock()
	m.uploads++
	m.mu.Unlock()
	if m.failName != "" && obj.Name == m.failName {
		return storage.FileRef{}, errors.New("store unavailable")
	}
	data, err := io.ReadAll(obj.Body)
	if err != nil {
		return storage.FileRef{}, err
	}
	key := storage.ObjectKey("site-tracker", obj.ContentType)
	m.mu.Lock()
	m.objects[key] = data
	m.mu.Unlock()
	return storage.FileRef{
		URL:          "https://files.example.com/bucket/" + key,
		PublicID:     key,
		ResourceType: storage.ResourceTypeFor(obj.ContentType),
		MimeType:     obj.ContentType,
		Size:         int64(len(data)),
		OriginalName: obj.Name,
	}, nil
}

func (m *memStore) Delete(ctx context.Context, ref storage.FileRef) error {
	if m.failDel {
		return errors.New("delete refused")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, ref.PublicID)
	return nil
}

func (m *memStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

// memRecorder collects audit actions synchronously.
type memRecorder struct {
	mu      sync.Mutex
	actions []string
}

func (r *memRecorder) Record(ctx context.Context, e audit.Event) appErr.BestEffort {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = append(r.actions, e.Action)
	return appErr.Done(e.Action)
}

func (r *memRecorder) has(action string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.actions {
		if a == action {
			return true
		}
	}
	return false
}

type env struct {
	db          *gorm.DB
	users       repository.UserRepository
	projectRepo repository.ProjectRepository
	folderRepo  repository.FolderRepository
	logRepo     repository.LogRepository
	attRepo     repository.AttachmentRepository
	store       *memStore
	recorder    *memRecorder

	auth        AuthService
	projects    ProjectService
	folders     FolderService
	logs        LogService
	attachments AttachmentService
	reports     ReportService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := testutil.NewDB(t)
	e := &env{
		db:          db,
		users:       repository.NewUserRepository(db),
		projectRepo: repository.NewProjectRepository(db),
		folderRepo:  repository.NewFolderRepository(db),
		logRepo:     repository.NewLogRepository(db),
		attRepo:     repository.NewAttachmentRepository(db),
		store:       newMemStore(),
		recorder:    &memRecorder{},
	}
	purger := NewInlinePurger(e.store)
	e.auth = NewAuthService(e.users, auth.NewTokenIssuer([]byte("test-secret"), 12*time.Hour), e.recorder)
	e.projects = NewProjectService(e.projectRepo, e.folderRepo, e.logRepo, e.attRepo, purger, e.recorder)
	e.folders = NewFolderService(e.projectRepo, e.folderRepo, e.recorder)
	e.logs = NewLogService(e.projectRepo, e.folderRepo, e.logRepo, e.attRepo, purger, e.recorder)
	e.attachments = NewAttachmentService(e.projectRepo, e.logRepo, e.attRepo, e.users, e.store, purger, e.recorder, UploadLimits{MaxFiles: 10, MaxBytes: 1 << 20})
	e.reports = NewReportService(e.projectRepo, e.logRepo, e.attRepo, t.TempDir())
	return e
}

func (e *env) user(t *testing.T, email, role string) authz.Principal {
	t.Helper()
	u, err := e.auth.Register(context.Background(), RegisterInput{Email: email, Password: "secret1", Name: strings.Split(email, "@")[0], Role: role})
	require.NoError(t, err)
	return principalOf(u)
}

func (e *env) project(t *testing.T, owner authz.Principal) *models.Project {
	t.Helper()
	p, err := e.projects.CreateProject(context.Background(), owner, ProjectInput{
		Name: "Harbour Depot", Client: "ACME", SiteAddress: "1 Quay Rd",
		StartDate: time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return p
}

func (e *env) dailyLog(t *testing.T, owner authz.Principal, projectID uuid.UUID, day int) *models.DailyLog {
	t.Helper()
	l, err := e.logs.CreateLog(context.Background(), owner, projectID, LogInput{
		Date: time.Date(2025, 2, day, 0, 0, 0, 0, time.UTC), SiteArea: "Zone A",
		ActivityType: "excavation", Summary: fmt.Sprintf("day %d", day),
	})
	require.NoError(t, err)
	return l
}

func file(name, contentType, body string) UploadFile {
	return UploadFile{
		Name:        name,
		ContentType: contentType,
		Size:        int64(len(body)),
		Open:        func() (io.ReadCloser, error) { return io.NopCloser(strings.NewReader(body)), nil },
	}
}

func requireCode(t *testing.T, err error, code appErr.Code) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, code, appErr.CodeOf(err), err.Error())
}
