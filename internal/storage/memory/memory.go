package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/bugrarslan/mirza-admin/internal/storage"
)

type object struct {
	info storage.ObjectInfo
	data []byte
}

// Storage implements storage.Storage in process memory.
// It backs the "memory" driver for local development and tests.
type Storage struct {
	mu      sync.RWMutex
	objects map[string]*object
	origin  string
}

var _ storage.Storage = (*Storage)(nil)

// New creates an empty in-memory store whose public URLs are rooted at origin.
func New(origin string) *Storage {
	return &Storage{
		objects: make(map[string]*object),
		origin:  origin,
	}
}

func (s *Storage) Put(ctx context.Context, bucket, key string, r io.Reader, opt storage.PutObjectOptions) (storage.ObjectInfo, error) {
	if bucket == "" {
		return storage.ObjectInfo{}, storage.ErrBucketRequired
	}
	if key == "" {
		return storage.ObjectInfo{}, storage.ErrKeyRequired
	}

	var buf bytes.Buffer
	if r != nil {
		if _, err := io.Copy(&buf, r); err != nil {
			return storage.ObjectInfo{}, fmt.Errorf("read body: %w", err)
		}
	}
	if err := ctx.Err(); err != nil {
		return storage.ObjectInfo{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := bucket + "/" + key
	if _, exists := s.objects[id]; exists {
		return storage.ObjectInfo{}, fmt.Errorf("put %s: %w", id, storage.ErrObjectExists)
	}

	info := storage.ObjectInfo{
		Bucket:       bucket,
		Key:          key,
		Size:         int64(buf.Len()),
		ContentType:  opt.ContentType,
		LastModified: time.Now(),
		Metadata:     opt.Metadata,
	}
	s.objects[id] = &object{info: info, data: buf.Bytes()}
	return info, nil
}

func (s *Storage) Remove(ctx context.Context, bucket, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.objects, bucket+"/"+key)
	return nil
}

func (s *Storage) PublicURL(bucket, key string) string {
	return storage.PublicURL(s.origin, bucket, key)
}

// Exists reports whether bucket/key is currently stored.
func (s *Storage) Exists(bucket, key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.objects[bucket+"/"+key]
	return ok
}

// Len returns the number of stored objects across all buckets.
func (s *Storage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.objects)
}
