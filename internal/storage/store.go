// Package storage uploads attachment bytes to an S3 compatible object store.
package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/site-tracker/engine/internal/models"
)

// Object is a file ready to be uploaded.
type Object struct {
	Name        string
	Body        io.Reader
	Size        int64
	ContentType string
}

// FileRef is the stable reference the store returns for an uploaded object.
type FileRef struct {
	URL          string
	PublicID     string
	ResourceType string
	MimeType     string
	Size         int64
	OriginalName string
}

// ObjectStore uploads and deletes attachment objects.
type ObjectStore interface {
	Upload(ctx context.Context, obj Object) (FileRef, error)
	Delete(ctx context.Context, ref FileRef) error
}

// ResourceTypeFor returns raw for PDFs and image for everything else.
func ResourceTypeFor(mimeType string) string {
	if mimeType == "application/pdf" {
		return models.ResourceRaw
	}
	return models.ResourceImage
}

var extensions = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"application/pdf": ".pdf",
}

// ObjectKey builds <folder>/<image|raw>/<uuid><ext>.
func ObjectKey(folder, mimeType string) string {
	return path.Join(folder, ResourceTypeFor(mimeType), uuid.NewString()+extensions[mimeType])
}

// PublicURL joins base, bucket and key into the URL clients fetch the object from.
func PublicURL(base, bucket, key string) (string, error) {
	u, err := url.Parse(strings.TrimRight(base, "/"))
	if err != nil {
		return "", fmt.Errorf("parse public url: %w", err)
	}
	u.Path = path.Join("/", u.Path, bucket, key)
	return u.String(), nil
}

// Settings is the subset of configuration needed to build a store.
type Settings struct {
	Driver    string
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	PublicURL string
	Folder    string
}

func (s Settings) baseURL() string {
	if s.PublicURL != "" {
		return s.PublicURL
	}
	if strings.Contains(s.Endpoint, "://") {
		return s.Endpoint
	}
	scheme := "http"
	if s.UseSSL {
		scheme = "https"
	}
	return scheme + "://" + s.Endpoint
}

// New builds the store selected by Settings.Driver.
func New(ctx context.Context, s Settings) (ObjectStore, error) {
	switch s.Driver {
	case "minio", "":
		return NewMinioStore(ctx, s)
	case "s3":
		return NewS3Store(ctx, s)
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", s.Driver)
	}
}
