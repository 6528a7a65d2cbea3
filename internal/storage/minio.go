package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/bugrarslan/mirza-admin/internal/config"
)

// minioStorage implements Storage on any S3-compatible endpoint reachable through minio-go
// (MinIO, Supabase Storage's S3 gateway, AWS S3).
// It is safe for concurrent use by multiple goroutines.
type minioStorage struct {
	client *minio.Client
	origin string
}

// NewMinIO creates an S3-compatible storage client backed by minio-go.
// It validates connectivity and ensures every bucket exists with a public-read policy.
func NewMinIO(cfg config.StorageConfig, buckets []string) (Storage, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("storage endpoint is required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("storage credentials are required")
	}
	if cfg.PublicOrigin == "" {
		return nil, fmt.Errorf("storage public origin is required")
	}

	cli, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:     credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:    cfg.UseSSL,
		Region:    cfg.Region,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, bucket := range buckets {
		exists, err := cli.BucketExists(ctx, bucket)
		if err != nil {
			return nil, fmt.Errorf("check bucket %q existence: %w", bucket, err)
		}
		if !exists {
			if err := cli.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
				return nil, fmt.Errorf("create bucket %q: %w", bucket, err)
			}
		}
		if err := cli.SetBucketPolicy(ctx, bucket, publicReadPolicy(bucket)); err != nil {
			return nil, fmt.Errorf("set bucket %q policy: %w", bucket, err)
		}
	}

	return &minioStorage{client: cli, origin: cfg.PublicOrigin}, nil
}

// Put uploads an object using streaming I/O only (no local disk).
// The key is checked first so that an existing object is never replaced.
func (m *minioStorage) Put(ctx context.Context, bucket, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error) {
	if err := checkAddress(bucket, key); err != nil {
		return ObjectInfo{}, err
	}

	if _, err := m.client.StatObject(ctx, bucket, key, minio.StatObjectOptions{}); err == nil {
		return ObjectInfo{}, fmt.Errorf("put %s/%s: %w", bucket, key, ErrObjectExists)
	} else if minio.ToErrorResponse(err).Code != "NoSuchKey" {
		return ObjectInfo{}, fmt.Errorf("stat %s/%s: %w", bucket, key, err)
	}

	info, err := m.client.PutObject(ctx, bucket, key, r, opt.Size, minio.PutObjectOptions{
		ContentType:  opt.ContentType,
		CacheControl: opt.CacheControl,
		UserMetadata: opt.Metadata,
	})
	if err != nil {
		return ObjectInfo{}, fmt.Errorf("put %s/%s: %w", bucket, key, err)
	}
	return ObjectInfo{
		Bucket:       bucket,
		Key:          key,
		Size:         info.Size,
		ETag:         info.ETag,
		ContentType:  opt.ContentType,
		LastModified: time.Now(), // MinIO PutObjectInfo doesn't return LastModified
		Metadata:     opt.Metadata,
	}, nil
}

// Remove deletes an object by key. S3 semantics make a missing key a successful delete.
func (m *minioStorage) Remove(ctx context.Context, bucket, key string) error {
	if err := checkAddress(bucket, key); err != nil {
		return err
	}
	if err := m.client.RemoveObject(ctx, bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove %s/%s: %w", bucket, key, err)
	}
	return nil
}

func (m *minioStorage) PublicURL(bucket, key string) string {
	return PublicURL(m.origin, bucket, key)
}

// publicReadPolicy returns an S3 bucket policy JSON that allows anonymous GET on all objects.
func publicReadPolicy(bucket string) string {
	policy := map[string]any{
		"Version": "2012-10-17",
		"Statement": []map[string]any{
			{
				"Effect":    "Allow",
				"Principal": map[string]any{"AWS": []string{"*"}},
				"Action":    []string{"s3:GetObject"},
				"Resource":  []string{fmt.Sprintf("arn:aws:s3:::%s/*", bucket)},
			},
		},
	}
	b, _ := json.Marshal(policy)
	return string(b)
}
