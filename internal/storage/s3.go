package storage

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// s3API is the part of *s3.Client the store uses.
type s3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Store implements ObjectStore for AWS S3 or any endpoint speaking its API.
type S3Store struct {
	client  s3API
	bucket  string
	folder  string
	baseURL string
}

func NewS3Store(ctx context.Context, s Settings) (*S3Store, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(s.Region)}
	if s.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(s.AccessKey, s.SecretKey, ""),
		))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	base := s.PublicURL
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if s.Endpoint != "" {
			o.BaseEndpoint = aws.String(s.baseURL())
			o.UsePathStyle = true
		}
	})
	if base == "" {
		if s.Endpoint != "" {
			base = s.baseURL()
		} else {
			base = fmt.Sprintf("https://s3.%s.amazonaws.com", s.Region)
		}
	}
	return newS3Store(client, s.Bucket, s.Folder, base), nil
}

func newS3Store(client s3API, bucket, folder, baseURL string) *S3Store {
	return &S3Store{client: client, bucket: bucket, folder: folder, baseURL: baseURL}
}

func (st *S3Store) Upload(ctx context.Context, obj Object) (FileRef, error) {
	key := ObjectKey(st.folder, obj.ContentType)
	_, err := st.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(st.bucket),
		Key:           aws.String(key),
		Body:          obj.Body,
		ContentLength: aws.Int64(obj.Size),
		ContentType:   aws.String(obj.ContentType),
	})
	if err != nil {
		return FileRef{}, fmt.Errorf("put object: %w", err)
	}
	u, err := PublicURL(st.baseURL, st.bucket, key)
	if err != nil {
		return FileRef{}, err
	}
	return FileRef{
		URL:          u,
		PublicID:     key,
		ResourceType: ResourceTypeFor(obj.ContentType),
		MimeType:     obj.ContentType,
		Size:         obj.Size,
		OriginalName: obj.Name,
	}, nil
}

func (st *S3Store) Delete(ctx context.Context, ref FileRef) error {
	if ref.PublicID == "" {
		return nil
	}
	_, err := st.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(st.bucket),
		Key:    aws.String(ref.PublicID),
	})
	if err != nil {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}
