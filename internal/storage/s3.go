package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/bugrarslan/mirza-admin/internal/config"
)

type s3Storage struct {
	client   s3iface.S3API
	uploader *s3manager.Uploader
	origin   string
}

// NewS3 creates a storage client on the AWS SDK. Path-style addressing is forced so the
// same driver works against S3-compatible gateways.
func NewS3(cfg config.StorageConfig) (Storage, error) {
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("storage credentials are required")
	}
	if cfg.PublicOrigin == "" {
		return nil, fmt.Errorf("storage public origin is required")
	}

	awsCfg := &aws.Config{
		Region:           aws.String(cfg.Region),
		Credentials:      credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, ""),
		S3ForcePathStyle: aws.Bool(true),
		DisableSSL:       aws.Bool(!cfg.UseSSL),
		// AWS_CA_BUNDLE is only applied to a *http.Transport; otelhttp wraps it after the session exists
		HTTPClient:       &http.Client{Transport: http.DefaultTransport.(*http.Transport).Clone()},
	}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("create aws session: %w", err)
	}
	sess.Config.HTTPClient.Transport = otelhttp.NewTransport(sess.Config.HTTPClient.Transport)

	client := s3.New(sess)
	return &s3Storage{
		client:   client,
		uploader: s3manager.NewUploaderWithClient(client),
		origin:   cfg.PublicOrigin,
	}, nil
}

func (s *s3Storage) Put(ctx context.Context, bucket, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error) {
	if err := checkAddress(bucket, key); err != nil {
		return ObjectInfo{}, err
	}

	exists, err := s.exists(ctx, bucket, key)
	if err != nil {
		return ObjectInfo{}, fmt.Errorf("head %s/%s: %w", bucket, key, err)
	}
	if exists {
		return ObjectInfo{}, fmt.Errorf("put %s/%s: %w", bucket, key, ErrObjectExists)
	}

	in := &s3manager.UploadInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   r,
	}
	if opt.ContentType != "" {
		in.ContentType = aws.String(opt.ContentType)
	}
	if opt.CacheControl != "" {
		in.CacheControl = aws.String(opt.CacheControl)
	}
	if len(opt.Metadata) > 0 {
		in.Metadata = aws.StringMap(opt.Metadata)
	}

	out, err := s.uploader.UploadWithContext(ctx, in)
	if err != nil {
		return ObjectInfo{}, fmt.Errorf("put %s/%s: %w", bucket, key, err)
	}
	return ObjectInfo{
		Bucket:       bucket,
		Key:          key,
		Size:         opt.Size,
		ETag:         aws.StringValue(out.ETag),
		ContentType:  opt.ContentType,
		LastModified: time.Now(),
		Metadata:     opt.Metadata,
	}, nil
}

func (s *s3Storage) Remove(ctx context.Context, bucket, key string) error {
	if err := checkAddress(bucket, key); err != nil {
		return err
	}
	_, err := s.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("remove %s/%s: %w", bucket, key, err)
	}
	return nil
}

func (s *s3Storage) PublicURL(bucket, key string) string {
	return PublicURL(s.origin, bucket, key)
}

func (s *s3Storage) exists(ctx context.Context, bucket, key string) (bool, error) {
	_, err := s.client.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err == nil {
		return true, nil
	}
	var reqErr awserr.RequestFailure
	if errors.As(err, &reqErr) && reqErr.StatusCode() == http.StatusNotFound {
		return false, nil
	}
	return false, err
}
