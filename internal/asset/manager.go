package asset

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/bugrarslan/mirza-admin/internal/storage"
)

const (
	tracerName   = "github.com/bugrarslan/mirza-admin/internal/asset"
	cacheControl = "max-age=3600"

	opUpload  = "upload"
	opReplace = "replace"
	opDelete  = "delete"
)

// Manager runs the asset lifecycle (upload, replace, delete) against an object store.
// It holds no state between calls; concurrent calls on different asset slots are safe.
// Two concurrent calls on the same slot are not coordinated and may race.
type Manager struct {
	store   storage.Storage
	logger  *slog.Logger
	metrics *Metrics
	tracer  trace.Tracer
	keygen  func(originalName string) string
}

// Option configures a Manager.
type Option func(*Manager)

// WithMetrics records operation outcomes and orphaned objects.
func WithMetrics(m *Metrics) Option {
	return func(mgr *Manager) { mgr.metrics = m }
}

// WithKeyGenerator replaces GenerateKey.
func WithKeyGenerator(fn func(originalName string) string) Option {
	return func(mgr *Manager) { mgr.keygen = fn }
}

// NewManager creates a lifecycle manager on store.
func NewManager(store storage.Storage, logger *slog.Logger, opts ...Option) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager{
		store:  store,
		logger: logger.With(slog.String("component", "asset")),
		tracer: otel.Tracer(tracerName),
		keygen: GenerateKey,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Upload validates f against opts and stores it under a fresh key.
// Nothing is written to the store when validation fails.
func (m *Manager) Upload(ctx context.Context, f File, opts Options) (res UploadResult) {
	ctx, done := m.begin(ctx, opUpload, opts.Bucket)
	defer func() { done(res.Err) }()
	defer m.recoverPanic(ctx, opUpload, func() { res = uploadFailure(ErrUnexpected, msgUnexpected) })

	return m.upload(ctx, f, opts)
}

// Replace uploads f and, only once that succeeded, removes the object behind oldURL.
// A failed removal is logged and counted as an orphan; the result still reports the
// new upload's success. An oldURL that does not resolve to a key of opts.Bucket is left alone.
func (m *Manager) Replace(ctx context.Context, oldURL string, f File, opts Options) (res UploadResult) {
	ctx, done := m.begin(ctx, opReplace, opts.Bucket)
	defer func() { done(res.Err) }()
	defer m.recoverPanic(ctx, opReplace, func() { res = uploadFailure(ErrUnexpected, msgUnexpected) })

	res = m.upload(ctx, f, opts)
	if !res.Success || oldURL == "" {
		return res
	}

	oldKey, ok := ResolveKey(oldURL, opts.Bucket)
	if !ok {
		m.logger.DebugContext(ctx, "previous asset url does not resolve, nothing to remove",
			slog.String("bucket", string(opts.Bucket)),
			slog.String("url", oldURL),
		)
		return res
	}

	m.cleanup(ctx, opts.Bucket, oldKey, res.Path)
	return res
}

// cleanup removes the replaced object. Failures, panics included, leave an orphan
// and never change the outcome of the replace.
func (m *Manager) cleanup(ctx context.Context, bucket Bucket, oldKey, replacement string) {
	fail := func(reason string) {
		m.logger.WarnContext(ctx, "failed to remove replaced object",
			slog.String("bucket", string(bucket)),
			slog.String("key", oldKey),
			slog.String("replacement", replacement),
			slog.String("error", reason),
		)
		m.metrics.orphaned(bucket, "replace_cleanup")
	}
	defer func() {
		if r := recover(); r != nil {
			fail(fmt.Sprintf("panic: %v", r))
		}
	}()

	if err := m.store.Remove(ctx, string(bucket), oldKey); err != nil {
		fail(err.Error())
	}
}

// Delete removes the object behind rawURL from bucket. A URL that does not resolve
// to a key is a successful no-op: the slot never had a file of this bucket.
func (m *Manager) Delete(ctx context.Context, bucket Bucket, rawURL string) (res DeleteResult) {
	ctx, done := m.begin(ctx, opDelete, bucket)
	defer func() { done(res.Err) }()
	defer m.recoverPanic(ctx, opDelete, func() { res = deleteFailure(ErrUnexpected, msgUnexpected) })

	if !bucket.Valid() {
		return deleteFailure(fmt.Errorf("%w: unknown bucket %q", ErrInvalidOptions, bucket), msgInvalidOptions)
	}

	key, ok := ResolveKey(rawURL, bucket)
	if !ok {
		return DeleteResult{Success: true}
	}

	err := m.store.Remove(ctx, string(bucket), key)
	if ctx.Err() != nil {
		return deleteFailure(fmt.Errorf("%w: %w", ErrCanceled, ctx.Err()), msgCanceled)
	}
	if err != nil {
		m.logger.ErrorContext(ctx, "storage delete failed",
			slog.String("bucket", string(bucket)),
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return deleteFailure(fmt.Errorf("%w: %w", ErrStore, err), msgDeleteFailed)
	}
	return DeleteResult{Success: true}
}

func (m *Manager) upload(ctx context.Context, f File, opts Options) UploadResult {
	if err := opts.Validate(); err != nil {
		m.logger.ErrorContext(ctx, "invalid upload options",
			slog.String("bucket", string(opts.Bucket)),
			slog.String("error", err.Error()),
		)
		return uploadFailure(err, msgInvalidOptions)
	}
	if f.Body == nil {
		return uploadFailure(ErrFileRequired, msgFileRequired)
	}

	maxMB := opts.maxSizeMB()
	if !ValidateSize(f.Size, maxMB) {
		return uploadFailure(
			fmt.Errorf("%w: %d bytes exceeds %dMB", ErrFileTooLarge, f.Size, maxMB),
			fmt.Sprintf("File size must be %dMB or smaller.", maxMB),
		)
	}
	if !ValidateType(f.ContentType, opts.AllowedTypes) {
		return uploadFailure(
			fmt.Errorf("%w: %q", ErrTypeNotAllowed, f.ContentType),
			fmt.Sprintf("Only %s files can be uploaded.", describeTypes(opts.AllowedTypes)),
		)
	}

	bucket := string(opts.Bucket)
	path := opts.objectPath(m.keygen(f.Name))

	_, err := m.store.Put(ctx, bucket, path, f.Body, storage.PutObjectOptions{
		Size:         f.Size,
		ContentType:  f.ContentType,
		CacheControl: cacheControl,
		Metadata:     map[string]string{"original-filename": url.PathEscape(f.Name)},
	})
	if ctx.Err() != nil {
		if err == nil {
			// the object exists but nobody will record its URL
			m.logger.WarnContext(ctx, "upload completed after cancellation, discarding result",
				slog.String("bucket", bucket),
				slog.String("key", path),
			)
			m.metrics.orphaned(opts.Bucket, "canceled")
		}
		return uploadFailure(fmt.Errorf("%w: %w", ErrCanceled, ctx.Err()), msgCanceled)
	}
	if err != nil {
		m.logger.ErrorContext(ctx, "storage upload failed",
			slog.String("bucket", bucket),
			slog.String("key", path),
			slog.String("error", err.Error()),
		)
		return uploadFailure(fmt.Errorf("%w: %w", ErrStore, err), msgUploadFailed)
	}

	return UploadResult{
		Success: true,
		URL:     m.store.PublicURL(bucket, path),
		Path:    path,
	}
}

// begin starts the span for op; the returned func ends it and records metrics.
func (m *Manager) begin(ctx context.Context, op string, bucket Bucket) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := m.tracer.Start(ctx, "asset."+op, trace.WithAttributes(
		attribute.String("asset.operation", op),
		attribute.String("asset.bucket", string(bucket)),
	))

	return ctx, func(err error) {
		outcome := outcomeOf(err)
		span.SetAttributes(attribute.String("asset.outcome", outcome))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		m.metrics.observe(op, bucket, outcome, time.Since(start))
	}
}

func (m *Manager) recoverPanic(ctx context.Context, op string, fail func()) {
	if r := recover(); r != nil {
		m.logger.ErrorContext(ctx, "asset operation panicked",
			slog.String("operation", op),
			slog.Any("panic", r),
		)
		fail()
	}
}
