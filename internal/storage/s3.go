package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/noteduco342/relay-backend/internal/config"
)

const mediaPrefix = "media"

var ErrBadKey = errors.New("invalid media key")

// S3Storage keeps message attachments in one bucket of an S3 compatible
// store (MinIO in development).
type S3Storage struct {
	client *minio.Client
	bucket string
}

func NewS3Storage(cfg config.S3) (*S3Storage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("s3 client: %w", err)
	}
	return &S3Storage{client: client, bucket: cfg.Bucket}, nil
}

// EnsureBucket creates the bucket on first start against a fresh MinIO.
func (s *S3Storage) EnsureBucket(ctx context.Context, region string) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil || exists {
		return err
	}
	return s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: region})
}

// ObjectStat is the metadata the media endpoint needs for caching headers.
type ObjectStat struct {
	ETag         string
	Size         int64
	ContentType  string
	LastModified time.Time
}

func statOf(info minio.ObjectInfo) ObjectStat {
	return ObjectStat{
		ETag:         info.ETag,
		Size:         info.Size,
		ContentType:  info.ContentType,
		LastModified: info.LastModified,
	}
}

func (s *S3Storage) PutObject(ctx context.Context, key string, body io.Reader, size int64, contentType string) (ObjectStat, error) {
	info, err := s.client.PutObject(ctx, s.bucket, key, body, size, minio.PutObjectOptions{
		ContentType:  contentType,
		CacheControl: "private, max-age=31536000, immutable",
	})
	if err != nil {
		return ObjectStat{}, err
	}
	return ObjectStat{ETag: info.ETag, Size: info.Size, ContentType: contentType, LastModified: time.Now().UTC()}, nil
}

// GetObject opens key for streaming. The caller closes the object.
func (s *S3Storage) GetObject(ctx context.Context, key string) (*minio.Object, ObjectStat, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, ObjectStat{}, err
	}
	info, err := obj.Stat()
	if err != nil {
		_ = obj.Close()
		return nil, ObjectStat{}, err
	}
	return obj, statOf(info), nil
}

func (s *S3Storage) DeleteObject(ctx context.Context, key string) error {
	return s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
}

// MediaKey is where a new attachment of messageID in chatID is stored:
// media/<chat>/<message>/<object>.
func MediaKey(chatID, messageID uuid.UUID) string {
	return path.Join(mediaPrefix, chatID.String(), messageID.String(), uuid.NewString())
}

// ParseMediaKey validates a key taken from a request path (with or without
// the media/ prefix) and returns the clean key and the chat it belongs to.
func ParseMediaKey(raw string) (string, uuid.UUID, error) {
	raw = strings.Trim(strings.TrimSpace(raw), "/")
	if raw == "" || strings.Contains(raw, "..") || strings.Contains(raw, "\\") {
		return "", uuid.Nil, ErrBadKey
	}
	raw = strings.TrimPrefix(raw, mediaPrefix+"/")

	parts := strings.Split(path.Clean(raw), "/")
	if len(parts) != 3 {
		return "", uuid.Nil, ErrBadKey
	}
	chatID, err := uuid.Parse(parts[0])
	if err != nil {
		return "", uuid.Nil, ErrBadKey
	}
	if _, err := uuid.Parse(parts[1]); err != nil {
		return "", uuid.Nil, ErrBadKey
	}
	if parts[2] == "" {
		return "", uuid.Nil, ErrBadKey
	}
	return path.Join(mediaPrefix, parts[0], parts[1], parts[2]), chatID, nil
}
