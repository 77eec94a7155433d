package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"lw-rpg-backend/internal/config"
)

// MinIOStorage handles object storage trên MinIO
type MinIOStorage struct {
	client *minio.Client
	bucket string
}

// NewMinIOStorage khởi tạo MinIO client, tạo bucket nếu chưa có
func NewMinIOStorage(ctx context.Context, cfg config.MinIOConfig) (*MinIOStorage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}

	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return &MinIOStorage{
		client: client,
		bucket: cfg.Bucket,
	}, nil
}

// Upload ghi data vào key (vd: rosters/latest.json)
func (s *MinIOStorage) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := s.client.PutObject(
		ctx,
		s.bucket,
		key,
		bytes.NewReader(data),
		int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType},
	)
	if err != nil {
		return fmt.Errorf("failed to upload to minio: %w", err)
	}
	return nil
}

// Download đọc toàn bộ object; key không tồn tại => (nil, false, nil)
func (s *MinIOStorage) Download(ctx context.Context, key string) ([]byte, bool, error) {
	object, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, false, fmt.Errorf("failed to get object: %w", err)
	}
	defer object.Close()

	data, err := io.ReadAll(object)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read object: %w", err)
	}

	return data, true, nil
}

// List trả về keys có prefix, sort tăng dần
func (s *MinIOStorage) List(ctx context.Context, prefix string) ([]string, error) {
	objectsCh := s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})

	var keys []string
	for object := range objectsCh {
		if object.Err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", object.Err)
		}
		keys = append(keys, object.Key)
	}
	sort.Strings(keys)
	return keys, nil
}

// RemoveObjects xóa nhiều objects cùng lúc
func (s *MinIOStorage) RemoveObjects(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}

	objectsCh := make(chan minio.ObjectInfo, len(keys))
	go func() {
		defer close(objectsCh)
		for _, key := range keys {
			objectsCh <- minio.ObjectInfo{Key: key}
		}
	}()

	errorCh := s.client.RemoveObjects(ctx, s.bucket, objectsCh, minio.RemoveObjectsOptions{})
	for rmErr := range errorCh {
		if rmErr.Err != nil {
			return fmt.Errorf("failed to remove %s: %w", rmErr.ObjectName, rmErr.Err)
		}
	}

	return nil
}

// HealthCheck kiểm tra bucket còn truy cập được
func (s *MinIOStorage) HealthCheck(ctx context.Context) error {
	if _, err := s.client.BucketExists(ctx, s.bucket); err != nil {
		return fmt.Errorf("minio health check failed: %w", err)
	}
	return nil
}
