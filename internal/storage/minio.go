package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioStore implements ObjectStore for MinIO.
type MinioStore struct {
	client  *minio.Client
	bucket  string
	folder  string
	baseURL string
}

// NewMinioStore connects to MinIO and ensures the bucket exists.
func NewMinioStore(ctx context.Context, s Settings) (*MinioStore, error) {
	endpoint := s.Endpoint
	if i := strings.Index(endpoint, "://"); i >= 0 {
		endpoint = endpoint[i+3:]
	}
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(s.AccessKey, s.SecretKey, ""),
		Secure: s.UseSSL,
		Region: s.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio client: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	exists, err := client.BucketExists(ctx, s.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, s.Bucket, minio.MakeBucketOptions{Region: s.Region}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}
	return &MinioStore{client: client, bucket: s.Bucket, folder: s.Folder, baseURL: s.baseURL()}, nil
}

func (m *MinioStore) Upload(ctx context.Context, obj Object) (FileRef, error) {
	key := ObjectKey(m.folder, obj.ContentType)
	info, err := m.client.PutObject(ctx, m.bucket, key, obj.Body, obj.Size, minio.PutObjectOptions{ContentType: obj.ContentType})
	if err != nil {
		return FileRef{}, fmt.Errorf("put object: %w", err)
	}
	u, err := PublicURL(m.baseURL, m.bucket, key)
	if err != nil {
		return FileRef{}, err
	}
	return FileRef{
		URL:          u,
		PublicID:     key,
		ResourceType: ResourceTypeFor(obj.ContentType),
		MimeType:     obj.ContentType,
		Size:         info.Size,
		OriginalName: obj.Name,
	}, nil
}

func (m *MinioStore) Delete(ctx context.Context, ref FileRef) error {
	if ref.PublicID == "" {
		return nil
	}
	if err := m.client.RemoveObject(ctx, m.bucket, ref.PublicID, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}
