package services

import (
	"context"
	"io"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/site-tracker/engine/internal/audit"
	"github.com/site-tracker/engine/internal/authz"
	"github.com/site-tracker/engine/internal/models"
	"github.com/site-tracker/engine/internal/repository"
	"github.com/site-tracker/engine/internal/storage"
	appErr "github.com/site-tracker/engine/pkg/errors"
	"github.com/site-tracker/engine/pkg/logger"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	maxCaptionLen = 200
	maxCommentLen = 500
)

// AllowedMimeTypes are the only uploads accepted.
var AllowedMimeTypes = []string{"image/jpeg", "image/png", "application/pdf"}

type AttachmentService interface {
	Upload(ctx context.Context, p authz.Principal, logID uuid.UUID, in UploadInput) ([]models.Attachment, error)
	ListComments(ctx context.Context, p authz.Principal, attachmentID uuid.UUID) ([]models.Comment, error)
	AddComment(ctx context.Context, p authz.Principal, attachmentID uuid.UUID, text string) ([]models.Comment, error)
	DeleteAttachment(ctx context.Context, p authz.Principal, attachmentID uuid.UUID) error
}

// UploadFile is one file of a multipart upload. Open may be called once.
type UploadFile struct {
	Name        string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

// UploadInput holds the files plus captions and tags. A single caption or tag value applies
// to every file; otherwise values are matched to files by index.
type UploadInput struct {
	Files    []UploadFile
	Captions []string
	Tags     []string
}

// UploadLimits bounds a single upload request.
type UploadLimits struct {
	MaxFiles int
	MaxBytes int64
}

type attachmentService struct {
	access
	users  repository.UserRepository
	store  storage.ObjectStore
	purger Purger
	audit  audit.Recorder
	limits UploadLimits
	now    Clock
}

func NewAttachmentService(projects repository.ProjectRepository, logs repository.LogRepository, attachments repository.AttachmentRepository, users repository.UserRepository, store storage.ObjectStore, purger Purger, recorder audit.Recorder, limits UploadLimits) AttachmentService {
	if limits.MaxFiles <= 0 {
		limits.MaxFiles = 10
	}
	if limits.MaxBytes <= 0 {
		limits.MaxBytes = 10 << 20
	}
	return &attachmentService{
		access: access{projects: projects, logs: logs, attachments: attachments},
		users:  users,
		store:  store,
		purger: purger,
		audit:  recorder,
		limits: limits,
		now:    systemClock,
	}
}

var _ AttachmentService = (*attachmentService)(nil)

func pick(values []string, i int) string {
	switch {
	case len(values) == 1:
		return values[0]
	case i < len(values):
		return values[i]
	}
	return ""
}

// SplitTags splits a comma separated tag list, dropping blanks.
func SplitTags(raw string) []string {
	out := []string{}
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func (s *attachmentService) validateUpload(in UploadInput) error {
	if len(in.Files) == 0 {
		return appErr.Invalid("At least one file is required.")
	}
	if len(in.Files) > s.limits.MaxFiles {
		return appErr.Invalid("Too many files.")
	}
	for i, f := range in.Files {
		if !slices.Contains(AllowedMimeTypes, f.ContentType) {
			return appErr.Invalid("Unsupported file type.")
		}
		if f.Size > s.limits.MaxBytes {
			return appErr.Invalid("File too large.")
		}
		if utf8.RuneCountInString(pick(in.Captions, i)) > maxCaptionLen {
			return appErr.Invalid("Caption must be 200 characters or fewer.")
		}
	}
	return nil
}

// Upload validates every file before anything is sent to the object store. If any upload
// or the metadata insert fails, objects already stored are purged.
func (s *attachmentService) Upload(ctx context.Context, p authz.Principal, logID uuid.UUID, in UploadInput) ([]models.Attachment, error) {
	if err := s.validateUpload(in); err != nil {
		return nil, err
	}
	if _, err := s.log(ctx, p, logID); err != nil {
		return nil, internal(err, "Unable to upload attachments.")
	}

	refs := make([]storage.FileRef, len(in.Files))
	g, gctx := errgroup.WithContext(ctx)
	for i, f := range in.Files {
		g.Go(func() error {
			body, err := f.Open()
			if err != nil {
				return err
			}
			defer body.Close()
			ref, err := s.store.Upload(gctx, storage.Object{Name: f.Name, Body: body, Size: f.Size, ContentType: f.ContentType})
			if err != nil {
				return err
			}
			refs[i] = ref
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.FromContext(ctx).Error("attachment upload failed", zap.String("log_id", logID.String()), zap.Error(err))
		_ = s.purger.Purge(ctx, uploaded(refs)...)
		return nil, appErr.Wrap(err, appErr.CodeInternal, "Unable to upload attachments.")
	}

	now := s.now()
	items := make([]models.Attachment, len(in.Files))
	for i, f := range in.Files {
		items[i] = models.Attachment{
			DailyLogID:   logID,
			FileURL:      refs[i].URL,
			FileName:     f.Name,
			MimeType:     f.ContentType,
			FileSize:     f.Size,
			PublicID:     refs[i].PublicID,
			ResourceType: refs[i].ResourceType,
			Caption:      pick(in.Captions, i),
			Tags:         SplitTags(pick(in.Tags, i)),
			Comments:     []models.Comment{},
			UploadedBy:   p.UserID,
			UploadedAt:   now.Add(time.Duration(i) * time.Microsecond),
		}
	}
	if err := s.attachments.CreateBatch(ctx, items); err != nil {
		_ = s.purger.Purge(ctx, refs...)
		return nil, internal(err, "Unable to upload attachments.")
	}

	logger.FromContext(ctx).Info("attachments uploaded", zap.String("log_id", logID.String()), zap.Int("count", len(items)))
	_ = s.audit.Record(ctx, audit.Event{Action: "attachment.upload", Actor: p, Details: map[string]any{"logId": logID.String(), "count": len(items)}})
	return items, nil
}

func uploaded(refs []storage.FileRef) []storage.FileRef {
	out := make([]storage.FileRef, 0, len(refs))
	for _, r := range refs {
		if r.PublicID != "" {
			out = append(out, r)
		}
	}
	return out
}

func (s *attachmentService) ListComments(ctx context.Context, p authz.Principal, attachmentID uuid.UUID) ([]models.Comment, error) {
	if _, err := s.attachment(ctx, p, attachmentID); err != nil {
		return nil, internal(err, "Unable to fetch comments.")
	}
	out, err := s.attachments.ListComments(ctx, attachmentID)
	if err != nil {
		return nil, internal(err, "Unable to fetch comments.")
	}
	return out, nil
}

// AddComment appends a comment carrying the author's current display name and returns
// the full thread.
func (s *attachmentService) AddComment(ctx context.Context, p authz.Principal, attachmentID uuid.UUID, text string) ([]models.Comment, error) {
	if strings.TrimSpace(text) == "" {
		return nil, appErr.Invalid("Comment text is required.")
	}
	if utf8.RuneCountInString(text) > maxCommentLen {
		return nil, appErr.Invalid("Comment must be 500 characters or fewer.")
	}
	if _, err := s.attachment(ctx, p, attachmentID); err != nil {
		return nil, internal(err, "Unable to add comment.")
	}

	author := "User"
	var u models.User
	if err := s.users.GetByID(ctx, p.UserID, &u); err == nil {
		author = u.DisplayName()
	} else if p.Email != "" {
		author = p.Email
	}

	c := &models.Comment{AttachmentID: attachmentID, Text: text, CreatedBy: p.UserID, AuthorName: author, CreatedAt: s.now()}
	if err := s.attachments.AddComment(ctx, c); err != nil {
		return nil, internal(err, "Unable to add comment.")
	}
	_ = s.audit.Record(ctx, audit.Event{Action: "attachment.comment", Actor: p, Details: map[string]any{"attachmentId": attachmentID.String()}})

	out, err := s.attachments.ListComments(ctx, attachmentID)
	if err != nil {
		return nil, internal(err, "Unable to add comment.")
	}
	return out, nil
}

// DeleteAttachment removes the remote object first; its failure never blocks the metadata delete.
func (s *attachmentService) DeleteAttachment(ctx context.Context, p authz.Principal, attachmentID uuid.UUID) error {
	att, err := s.attachment(ctx, p, attachmentID)
	if err != nil {
		return internal(err, "Unable to delete attachment.")
	}
	_ = s.purger.Purge(ctx, refsOf([]models.Attachment{*att})...)

	if err := s.attachments.DeleteWithComments(ctx, attachmentID); err != nil {
		return internal(err, "Unable to delete attachment.")
	}
	_ = s.audit.Record(ctx, audit.Event{Action: "attachment.delete", Actor: p, Details: map[string]any{"attachmentId": attachmentID.String()}})
	return nil
}
