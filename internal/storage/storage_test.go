package storage

import (
	"context"
	"encoding/pem"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/bugrarslan/mirza-admin/internal/config"
)

func TestPublicURL(t *testing.T) {
	tests := []struct {
		name   string
		origin string
		bucket string
		key    string
		want   string
	}{
		{
			name:   "folder and key",
			origin: "https://project.supabase.co",
			bucket: "vehicle-images",
			key:    "vehicles/car_1700000000000_abc123.jpg",
			want:   "https://project.supabase.co/storage/v1/object/public/vehicle-images/vehicles/car_1700000000000_abc123.jpg",
		},
		{
			name:   "trailing slash on origin",
			origin: "http://localhost:9000/",
			bucket: "documents",
			key:    "a.pdf",
			want:   "http://localhost:9000/storage/v1/object/public/documents/a.pdf",
		},
		{
			name:   "segments are escaped",
			origin: "http://localhost:9000",
			bucket: "documents",
			key:    "customer-1/my file?.pdf",
			want:   "http://localhost:9000/storage/v1/object/public/documents/customer-1/my%20file%3F.pdf",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PublicURL(tt.origin, tt.bucket, tt.key)
			assert.Equal(t, tt.want, got)

			u, err := url.Parse(got)
			require.NoError(t, err)
			assert.Equal(t, PublicPathMarker(tt.bucket)+tt.key, u.Path)
		})
	}
}

func TestPublicPathMarker(t *testing.T) {
	assert.Equal(t, "/storage/v1/object/public/campaign-images/", PublicPathMarker("campaign-images"))
}

func TestNewMinIO_Validation(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.StorageConfig
		msg  string
	}{
		{name: "missing endpoint", cfg: config.StorageConfig{}, msg: "endpoint is required"},
		{name: "missing credentials", cfg: config.StorageConfig{Endpoint: "localhost:9000"}, msg: "credentials are required"},
		{
			name: "missing public origin",
			cfg:  config.StorageConfig{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "b"},
			msg:  "public origin is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, err := NewMinIO(tt.cfg, nil)
			assert.Nil(t, st)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestNewS3(t *testing.T) {
	_, err := NewS3(config.StorageConfig{})
	assert.ErrorContains(t, err, "credentials are required")

	_, err = NewS3(config.StorageConfig{AccessKey: "a", SecretKey: "b"})
	assert.ErrorContains(t, err, "public origin is required")

	st, err := NewS3(config.StorageConfig{
		AccessKey:    "a",
		SecretKey:    "b",
		Region:       "us-east-1",
		Endpoint:     "http://localhost:9000",
		PublicOrigin: "https://project.supabase.co",
	})
	require.NoError(t, err)
	assert.Equal(t,
		"https://project.supabase.co/storage/v1/object/public/documents/x.pdf",
		st.PublicURL("documents", "x.pdf"))
}

func TestNewS3_CustomCABundle(t *testing.T) {
	tlsSrv := httptest.NewTLSServer(http.NotFoundHandler())
	defer tlsSrv.Close()

	bundle := filepath.Join(t.TempDir(), "ca.pem")
	pemBytes := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: tlsSrv.Certificate().Raw})
	require.NoError(t, os.WriteFile(bundle, pemBytes, 0o600))
	t.Setenv("AWS_CA_BUNDLE", bundle)

	st, err := NewS3(config.StorageConfig{
		AccessKey:    "a",
		SecretKey:    "b",
		Region:       "us-east-1",
		Endpoint:     "https://localhost:9000",
		UseSSL:       true,
		PublicOrigin: "https://project.supabase.co",
	})
	require.NoError(t, err)

	svc, ok := st.(*s3Storage).client.(*s3.S3)
	require.True(t, ok)
	assert.IsType(t, &otelhttp.Transport{}, svc.Client.Config.HTTPClient.Transport)
}

type fakeS3 struct {
	s3iface.S3API
	headErr   error
	deleteErr error
	deleted   []string
}

func (f *fakeS3) HeadObjectWithContext(_ aws.Context, in *s3.HeadObjectInput, _ ...request.Option) (*s3.HeadObjectOutput, error) {
	if f.headErr != nil {
		return nil, f.headErr
	}
	return &s3.HeadObjectOutput{}, nil
}

func (f *fakeS3) DeleteObjectWithContext(_ aws.Context, in *s3.DeleteObjectInput, _ ...request.Option) (*s3.DeleteObjectOutput, error) {
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	f.deleted = append(f.deleted, aws.StringValue(in.Bucket)+"/"+aws.StringValue(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3Storage_PutRefusesExistingKey(t *testing.T) {
	st := &s3Storage{client: &fakeS3{}, origin: "http://localhost"}

	_, err := st.Put(context.Background(), "documents", "a.pdf", nil, PutObjectOptions{})
	assert.ErrorIs(t, err, ErrObjectExists)
}

func TestS3Storage_PutHeadFailure(t *testing.T) {
	st := &s3Storage{client: &fakeS3{headErr: errors.New("connection refused")}, origin: "http://localhost"}

	_, err := st.Put(context.Background(), "documents", "a.pdf", nil, PutObjectOptions{})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrObjectExists)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestS3Storage_Exists(t *testing.T) {
	notFound := awserr.NewRequestFailure(awserr.New("NotFound", "not found", nil), http.StatusNotFound, "req")
	st := &s3Storage{client: &fakeS3{headErr: notFound}}

	ok, err := st.exists(context.Background(), "documents", "a.pdf")
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestS3Storage_Remove(t *testing.T) {
	fake := &fakeS3{}
	st := &s3Storage{client: fake}

	require.NoError(t, st.Remove(context.Background(), "vehicle-images", "vehicles/a.jpg"))
	assert.Equal(t, []string{"vehicle-images/vehicles/a.jpg"}, fake.deleted)

	fake.deleteErr = errors.New("boom")
	assert.ErrorContains(t, st.Remove(context.Background(), "vehicle-images", "vehicles/a.jpg"), "boom")

	assert.ErrorIs(t, st.Remove(context.Background(), "", "k"), ErrBucketRequired)
	assert.ErrorIs(t, st.Remove(context.Background(), "b", ""), ErrKeyRequired)
}
