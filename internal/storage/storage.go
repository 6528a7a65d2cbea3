// Package storage contains the object store adapter used by the asset lifecycle.
// Objects are addressed by (bucket, key); every driver derives public URLs the same way
// so that a URL can always be turned back into its key without a lookup.
package storage

import (
	"context"
	"errors"
	"io"
	"net/url"
	"strings"
	"time"
)

// PublicPathPrefix is the fixed path segment inserted before "<bucket>/<key>" in public URLs.
const PublicPathPrefix = "/storage/v1/object/public/"

var (
	// ErrObjectExists is returned by Put when the key is already taken. Uploads never overwrite.
	ErrObjectExists = errors.New("object already exists")
	// ErrBucketRequired is returned when an operation is called without a bucket name.
	ErrBucketRequired = errors.New("bucket is required")
	// ErrKeyRequired is returned when an operation is called without an object key.
	ErrKeyRequired = errors.New("key is required")
)

// PutObjectOptions define optional parameters for uploading objects.
// Size should be the exact number of bytes if known; if unknown, set to -1 and the implementation
// will buffer/chunk as supported by the backend.
type PutObjectOptions struct {
	Size         int64
	ContentType  string
	CacheControl string
	Metadata     map[string]string
}

// ObjectInfo contains basic information about an object in storage.
type ObjectInfo struct {
	Bucket       string
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}

// Storage is the object store adapter.
type Storage interface {
	// Put uploads an object under bucket/key. It fails with ErrObjectExists instead of overwriting.
	Put(ctx context.Context, bucket, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Remove deletes bucket/key. Removing a missing key is not an error.
	Remove(ctx context.Context, bucket, key string) error
	// PublicURL returns the browser-accessible URL for bucket/key. It performs no I/O.
	PublicURL(bucket, key string) string
}

// PublicPathMarker returns the literal path marker that precedes keys of bucket in public URLs.
func PublicPathMarker(bucket string) string {
	return PublicPathPrefix + bucket + "/"
}

// PublicURL builds <origin>/storage/v1/object/public/<bucket>/<key>.
// Each key segment is path-escaped so that parsing the URL yields the key unchanged.
func PublicURL(origin, bucket, key string) string {
	segments := strings.Split(key, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.TrimRight(origin, "/") + PublicPathMarker(bucket) + strings.Join(segments, "/")
}

func checkAddress(bucket, key string) error {
	if bucket == "" {
		return ErrBucketRequired
	}
	if key == "" {
		return ErrKeyRequired
	}
	return nil
}
