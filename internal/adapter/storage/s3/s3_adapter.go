package s3

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/arman61-hub/AutoDek/internal/app/config"
	"github.com/arman61-hub/AutoDek/internal/platform/logger"
)

// S3Storage keeps listing images in a MinIO bucket and hands back public URLs.
type S3Storage struct {
	client  *minio.Client
	bucket  string
	baseURL string
	log     logger.Logger
}

func NewS3Storage(cfg config.MinIOConfig, log logger.Logger) (*S3Storage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client for %s: %w", cfg.Endpoint, err)
	}

	ctx := context.Background()
	if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
		exists, existsErr := client.BucketExists(ctx, cfg.Bucket)
		if existsErr != nil || !exists {
			return nil, fmt.Errorf("make/verify bucket %s: %w", cfg.Bucket, err)
		}
	}

	baseURL := strings.TrimSuffix(cfg.PublicBaseURL, "/")
	if baseURL == "" {
		baseURL = client.EndpointURL().String()
	}

	log.Infow("object storage ready", "endpoint", cfg.Endpoint, "bucket", cfg.Bucket)
	return &S3Storage{
		client:  client,
		bucket:  cfg.Bucket,
		baseURL: baseURL,
		log:     log,
	}, nil
}

func (s *S3Storage) Upload(ctx context.Context, objectKey string, data []byte, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, s.bucket, objectKey, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("upload object %s to bucket %s: %w", objectKey, s.bucket, err)
	}
	return fmt.Sprintf("%s/%s/%s", s.baseURL, s.bucket, objectKey), nil
}

// Remove deletes the given objects, continuing past individual failures and
// returning the last error seen.
func (s *S3Storage) Remove(ctx context.Context, objectKeys []string) error {
	var lastErr error
	for _, key := range objectKeys {
		if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
			s.log.Warnw("failed to remove object", "bucket", s.bucket, "key", key, "error", err)
			lastErr = err
		}
	}
	return lastErr
}

// ObjectKeyFromURL maps a public URL produced by Upload back to its object
// key. URLs that do not point into this bucket report false.
func (s *S3Storage) ObjectKeyFromURL(publicURL string) (string, bool) {
	u, err := url.Parse(publicURL)
	if err != nil {
		return "", false
	}
	prefix := "/" + s.bucket + "/"
	if !strings.HasPrefix(u.Path, prefix) {
		return "", false
	}
	key := strings.TrimPrefix(u.Path, prefix)
	if key == "" {
		return "", false
	}
	return key, true
}
