package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/site-tracker/engine/internal/api/handlers"
	mw "github.com/site-tracker/engine/internal/api/middleware"
	"github.com/site-tracker/engine/internal/audit"
	"github.com/site-tracker/engine/internal/auth"
	"github.com/site-tracker/engine/internal/ratelimit"
	"github.com/site-tracker/engine/internal/repository"
	"github.com/site-tracker/engine/internal/services"
	"github.com/site-tracker/engine/internal/storage"
	"github.com/site-tracker/engine/internal/testutil"
)

type nopStore struct {
	mu      sync.Mutex
	deleted []string
}

func (s *nopStore) Upload(ctx context.Context, obj storage.Object) (storage.FileRef, error) {
	n, err := io.Copy(io.Discard, obj.Body)
	if err != nil {
		return storage.FileRef{}, err
	}
	key := storage.ObjectKey("test", obj.ContentType)
	return storage.FileRef{
		URL:          "https://files.example.com/test/" + key,
		PublicID:     key,
		ResourceType: storage.ResourceTypeFor(obj.ContentType),
		MimeType:     obj.ContentType,
		Size:         n,
		OriginalName: obj.Name,
	}, nil
}

func (s *nopStore) Delete(ctx context.Context, ref storage.FileRef) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, ref.PublicID)
	return nil
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type testServer struct {
	t       *testing.T
	handler http.Handler
}

func newTestServer(t *testing.T, authLimit int) *testServer {
	t.Helper()
	db := testutil.NewDB(t)
	auditor := audit.NewAuditor(repository.NewAuditRepository(db))
	t.Cleanup(auditor.Wait)

	users := repository.NewUserRepository(db)
	projects := repository.NewProjectRepository(db)
	folders := repository.NewFolderRepository(db)
	logs := repository.NewLogRepository(db)
	attachments := repository.NewAttachmentRepository(db)
	store := &nopStore{}
	purger := services.NewInlinePurger(store)
	tokens := auth.NewTokenIssuer([]byte("router-test"), time.Hour)
	limits := services.UploadLimits{MaxFiles: 10, MaxBytes: 1 << 20}

	sqlDB, err := db.DB()
	require.NoError(t, err)

	h := NewRouter(Dependencies{
		Tokens:             tokens,
		AuthLimiter:        ratelimit.NewLocalLimiter(authLimit, 15*time.Minute),
		TrustedProxies:     &mw.TrustedProxies{},
		CORSOrigin:         "*",
		HealthHandler:      handlers.NewHealthHandler(sqlDB),
		AuthHandler:        handlers.NewAuthHandler(services.NewAuthService(users, tokens, auditor), true),
		ProjectsHandler:    handlers.NewProjectsHandler(services.NewProjectService(projects, folders, logs, attachments, purger, auditor)),
		FoldersHandler:     handlers.NewFoldersHandler(services.NewFolderService(projects, folders, auditor)),
		LogsHandler:        handlers.NewLogsHandler(services.NewLogService(projects, folders, logs, attachments, purger, auditor)),
		AttachmentsHandler: handlers.NewAttachmentsHandler(services.NewAttachmentService(projects, logs, attachments, users, store, purger, auditor, limits), limits),
		ReportsHandler:     handlers.NewReportsHandler(services.NewReportService(projects, logs, attachments, t.TempDir())),
	})
	return &testServer{t: t, handler: h}
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(s.t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, data any) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env), rr.Body.String())
	if data != nil && len(env.Data) > 0 {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}

func (s *testServer) login(email, password string) string {
	s.t.Helper()
	var out struct {
		Token string `json:"token"`
	}
	rr := s.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": email, "password": password})
	require.Equal(s.t, http.StatusOK, rr.Code, rr.Body.String())
	decode(s.t, rr, &out)
	return out.Token
}

func (s *testServer) signup(email, role string) string {
	s.t.Helper()
	rr := s.do(http.MethodPost, "/api/auth/register", "", map[string]string{"email": email, "password": "secret1", "role": role})
	require.Equal(s.t, http.StatusCreated, rr.Code, rr.Body.String())
	return s.login(email, "secret1")
}

type idOnly struct {
	ID string `json:"id"`
}

func TestRegisterLoginMe(t *testing.T) {
	s := newTestServer(t, 100)

	rr := s.do(http.MethodPost, "/api/auth/register", "", map[string]string{"email": "a@x.com", "password": "secret1"})
	require.Equal(t, http.StatusCreated, rr.Code)
	var profile map[string]any
	decode(t, rr, &profile)
	require.Equal(t, "member", profile["role"])
	require.NotContains(t, rr.Body.String(), "passwordHash")

	token := s.login("a@x.com", "secret1")
	rr = s.do(http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	decode(t, rr, &profile)
	require.Equal(t, "a@x.com", profile["email"])
	require.Equal(t, "member", profile["role"])

	rr = s.do(http.MethodPost, "/api/auth/register", "", map[string]string{"email": "A@x.com", "password": "secret1"})
	require.Equal(t, http.StatusConflict, rr.Code)
	env := decode(t, rr, nil)
	require.Equal(t, "Email already in use.", env.Error.Message)
}

func TestAuthMiddlewareMessages(t *testing.T) {
	s := newTestServer(t, 100)

	rr := s.do(http.MethodGet, "/api/projects", "", nil)
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	require.Equal(t, "Missing authorization token.", decode(t, rr, nil).Error.Message)

	rr = s.do(http.MethodGet, "/api/projects", "not-a-token", nil)
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	require.Equal(t, "Invalid or expired token.", decode(t, rr, nil).Error.Message)
}

func TestLoginLockoutOverHTTP(t *testing.T) {
	s := newTestServer(t, 100)
	s.signup("lock@x.com", "")

	for i := 0; i < 5; i++ {
		rr := s.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "lock@x.com", "password": "nope-nope"})
		require.Equal(t, http.StatusUnauthorized, rr.Code)
	}
	rr := s.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "lock@x.com", "password": "secret1"})
	require.Equal(t, http.StatusLocked, rr.Code)
	require.Equal(t, "Account temporarily locked. Try again later.", decode(t, rr, nil).Error.Message)
}

func TestAuthRateLimit(t *testing.T) {
	s := newTestServer(t, 3)
	for i := 0; i < 3; i++ {
		rr := s.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "nobody@x.com", "password": "x"})
		require.Equal(t, http.StatusUnauthorized, rr.Code)
	}
	rr := s.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "nobody@x.com", "password": "x"})
	require.Equal(t, http.StatusTooManyRequests, rr.Code)
	require.Equal(t, "Too many attempts. Please try again later.", decode(t, rr, nil).Error.Message)

	rr = s.do(http.MethodGet, "/api/health", "", nil)
	require.Equal(t, http.StatusOK, rr.Code, "non auth routes are not limited")
}

func TestPasswordResetFlow(t *testing.T) {
	s := newTestServer(t, 100)
	s.signup("r@x.com", "")

	var out struct {
		Message    string `json:"message"`
		ResetToken string `json:"resetToken"`
	}
	rr := s.do(http.MethodPost, "/api/auth/forgot-password", "", map[string]string{"email": "ghost@x.com"})
	require.Equal(t, http.StatusOK, rr.Code)
	decode(t, rr, &out)
	require.Equal(t, "If an account exists, a reset token has been generated.", out.Message)
	require.Empty(t, out.ResetToken)

	rr = s.do(http.MethodPost, "/api/auth/forgot-password", "", map[string]string{"email": "r@x.com"})
	require.Equal(t, http.StatusOK, rr.Code)
	decode(t, rr, &out)
	require.NotEmpty(t, out.ResetToken)

	body := map[string]string{"token": out.ResetToken, "newPassword": "brandnew"}
	rr = s.do(http.MethodPost, "/api/auth/reset-password", "", body)
	require.Equal(t, http.StatusOK, rr.Code)
	rr = s.do(http.MethodPost, "/api/auth/reset-password", "", body)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, "Reset token is invalid or expired.", decode(t, rr, nil).Error.Message)

	s.login("r@x.com", "brandnew")
}

func TestProjectRoutes(t *testing.T) {
	s := newTestServer(t, 100)
	owner := s.signup("owner@x.com", "")
	other := s.signup("other@x.com", "")
	admin := s.signup("admin@x.com", "admin")

	rr := s.do(http.MethodPost, "/api/projects", owner, map[string]string{"name": "Depot"})
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, "Missing required project fields.", decode(t, rr, nil).Error.Message)

	rr = s.do(http.MethodPost, "/api/projects", owner, map[string]string{
		"name": "Depot", "client": "ACME", "siteAddress": "1 Quay Rd", "startDate": "2025-01-06",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var proj idOnly
	decode(t, rr, &proj)
	path := "/api/projects/" + proj.ID

	require.Equal(t, http.StatusForbidden, s.do(http.MethodGet, path, other, nil).Code)
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, path, admin, nil).Code)
	require.Equal(t, http.StatusForbidden, s.do(http.MethodPatch, path, owner, map[string]string{"name": "X"}).Code)
	require.Equal(t, http.StatusForbidden, s.do(http.MethodPatch, path+"/archive", owner, nil).Code)

	rr = s.do(http.MethodPatch, path+"/archive", admin, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var archived map[string]any
	decode(t, rr, &archived)
	require.Equal(t, true, archived["archived"])
	require.Equal(t, "archived", archived["status"])

	var list []map[string]any
	decode(t, s.do(http.MethodGet, "/api/projects?archived=true", owner, nil), &list)
	require.Len(t, list, 1)
	require.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/projects?status=paused", owner, nil).Code)

	require.Equal(t, http.StatusNoContent, s.do(http.MethodDelete, path, owner, nil).Code)
	require.Equal(t, http.StatusNotFound, s.do(http.MethodGet, path, owner, nil).Code)
	require.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/projects/not-a-uuid", owner, nil).Code)
}

func multipartBody(t *testing.T, files map[string]string, captions ...string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mpw := multipart.NewWriter(&buf)
	for name, ct := range files {
		h := textproto.MIMEHeader{}
		h.Set("Content-Disposition", `form-data; name="files[]"; filename="`+name+`"`)
		h.Set("Content-Type", ct)
		part, err := mpw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write([]byte("content of " + name))
		require.NoError(t, err)
	}
	for _, c := range captions {
		require.NoError(t, mpw.WriteField("captions[]", c))
	}
	require.NoError(t, mpw.Close())
	return &buf, mpw.FormDataContentType()
}

func TestLogAttachmentAndReportRoutes(t *testing.T) {
	s := newTestServer(t, 100)
	owner := s.signup("owner@x.com", "")

	rr := s.do(http.MethodPost, "/api/projects", owner, map[string]string{
		"name": "Depot", "client": "ACME", "siteAddress": "1 Quay Rd", "startDate": "2025-01-06",
	})
	var proj idOnly
	decode(t, rr, &proj)

	rr = s.do(http.MethodPost, "/api/projects/"+proj.ID+"/logs", owner, map[string]any{
		"date": "2025-02-03", "siteArea": "Zone A", "activityType": "concrete_pour",
		"summary": "Slab poured", "condition": "sunny", "potentialClaim": true, "delayCause": "Late pump",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var log map[string]any
	decode(t, rr, &log)
	require.Equal(t, "sunny", log["weather"].(map[string]any)["condition"])
	logID := log["id"].(string)

	body, ct := multipartBody(t, map[string]string{"a.png": "image/png"}, strings.Repeat("c", 201))
	req := httptest.NewRequest(http.MethodPost, "/api/logs/"+logID+"/attachments", body)
	req.Header.Set("Content-Type", ct)
	req.Header.Set("Authorization", "Bearer "+owner)
	rr = httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, "Caption must be 200 characters or fewer.", decode(t, rr, nil).Error.Message)

	body, ct = multipartBody(t, map[string]string{"a.png": "image/png"}, "North wall")
	req = httptest.NewRequest(http.MethodPost, "/api/logs/"+logID+"/attachments", body)
	req.Header.Set("Content-Type", ct)
	req.Header.Set("Authorization", "Bearer "+owner)
	rr = httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var atts []map[string]any
	decode(t, rr, &atts)
	require.Len(t, atts, 1)
	require.Equal(t, "North wall", atts[0]["caption"])
	attID := atts[0]["id"].(string)

	rr = s.do(http.MethodPost, "/api/attachments/"+attID+"/comments", owner, map[string]string{"text": "Checked"})
	require.Equal(t, http.StatusCreated, rr.Code)
	var comments []map[string]any
	decode(t, rr, &comments)
	require.Len(t, comments, 1)
	require.Equal(t, "owner@x.com", comments[0]["authorName"])

	var page struct {
		Logs        []map[string]any `json:"logs"`
		Attachments []map[string]any `json:"attachments"`
		Total       int              `json:"total"`
	}
	decode(t, s.do(http.MethodGet, "/api/projects/"+proj.ID+"/logs?startDate=2025-02-01&endDate=2025-02-28", owner, nil), &page)
	require.Equal(t, 1, page.Total)
	require.Len(t, page.Attachments, 1)

	for _, path := range []string{"/report", "/reports/daily?from=2025-02-01&logIds=" + logID} {
		rr = s.do(http.MethodGet, "/api/projects/"+proj.ID+path, owner, nil)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		require.Equal(t, "application/pdf", rr.Header().Get("Content-Type"))
		require.Equal(t, `inline; filename="project-report.pdf"`, rr.Header().Get("Content-Disposition"))
		require.True(t, bytes.HasPrefix(rr.Body.Bytes(), []byte("%PDF-")))
	}
	rr = s.do(http.MethodGet, "/api/projects/"+proj.ID+"/report?logIds=nope", owner, nil)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	require.Equal(t, http.StatusNoContent, s.do(http.MethodDelete, "/api/attachments/"+attID, owner, nil).Code)
	require.Equal(t, http.StatusNoContent, s.do(http.MethodDelete, "/api/logs/"+logID, owner, nil).Code)
	require.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/logs/"+logID, owner, nil).Code)
}

func TestPublicEndpoints(t *testing.T) {
	s := newTestServer(t, 100)

	rr := s.do(http.MethodGet, "/api/health", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
	require.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	require.Equal(t, "DENY", rr.Header().Get("X-Frame-Options"))
	require.NotEmpty(t, rr.Header().Get("X-Request-ID"))

	require.Equal(t, http.StatusOK, s.do(http.MethodGet, "/readyz", "", nil).Code)

	rr = s.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), "site_tracker_http_requests_total")
}
