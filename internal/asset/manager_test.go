package asset

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bugrarslan/mirza-admin/internal/logger"
	"github.com/bugrarslan/mirza-admin/internal/storage"
	"github.com/bugrarslan/mirza-admin/internal/storage/memory"
	storeMocks "github.com/bugrarslan/mirza-admin/internal/storage/mocks"
)

const origin = "https://project.supabase.co"

func jpeg(size int) File {
	return File{
		Name:        "front view.jpg",
		ContentType: "image/jpeg",
		Size:        int64(size),
		Body:        bytes.NewReader(make([]byte, size)),
	}
}

func newTestManager(t *testing.T, store storage.Storage) (*Manager, *Metrics) {
	t.Helper()
	metrics, err := NewMetrics(prometheus.NewRegistry())
	require.NoError(t, err)
	return NewManager(store, logger.Discard(), WithMetrics(metrics)), metrics
}

func TestManager_Upload_VehicleImage(t *testing.T) {
	ctx := context.Background()
	store := memory.New(origin)
	mgr, metrics := newTestManager(t, store)

	res := mgr.Upload(ctx, jpeg(2<<20), VehicleImageOptions())

	require.True(t, res.Success, res.Error)
	assert.Empty(t, res.Error)
	assert.NoError(t, res.Err)
	assert.Regexp(t, `^vehicles/front_view_\d{13}_[0-9a-f]{10}\.jpg$`, res.Path)
	assert.Equal(t, origin+"/storage/v1/object/public/vehicle-images/"+res.Path, res.URL)
	assert.True(t, store.Exists("vehicle-images", res.Path))

	key, ok := ResolveKey(res.URL, BucketVehicleImages)
	assert.True(t, ok)
	assert.Equal(t, res.Path, key)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.operations.WithLabelValues("upload", "vehicle-images", "success")))
}

func TestManager_Upload_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		file    File
		opts    Options
		wantErr error
		wantMsg string
	}{
		{
			name:    "too large",
			file:    jpeg(5<<20 + 1),
			opts:    VehicleImageOptions(),
			wantErr: ErrFileTooLarge,
			wantMsg: "File size must be 5MB or smaller.",
		},
		{
			name:    "wrong type",
			file:    File{Name: "a.gif", ContentType: "image/gif", Size: 10, Body: strings.NewReader("GIF89a")},
			opts:    VehicleImageOptions(),
			wantErr: ErrTypeNotAllowed,
			wantMsg: "Only image/jpeg, image/png, image/webp files can be uploaded.",
		},
		{
			name:    "wildcard message",
			file:    File{Name: "a.txt", ContentType: "text/plain", Size: 1, Body: strings.NewReader("a")},
			opts:    Options{Bucket: BucketDocuments, AllowedTypes: []string{"image/*", "application/pdf"}},
			wantErr: ErrTypeNotAllowed,
			wantMsg: "Only image, application/pdf files can be uploaded.",
		},
		{
			name:    "empty allowed list",
			file:    jpeg(10),
			opts:    Options{Bucket: BucketVehicleImages},
			wantErr: ErrTypeNotAllowed,
		},
		{
			name:    "default size limit",
			file:    jpeg(10<<20 + 1),
			opts:    Options{Bucket: BucketVehicleImages, AllowedTypes: []string{"image/*"}},
			wantErr: ErrFileTooLarge,
			wantMsg: "File size must be 10MB or smaller.",
		},
		{
			name:    "no body",
			file:    File{Name: "a.jpg", ContentType: "image/jpeg"},
			opts:    VehicleImageOptions(),
			wantErr: ErrFileRequired,
		},
		{
			name:    "unknown bucket",
			file:    jpeg(10),
			opts:    Options{Bucket: "avatars", AllowedTypes: []string{"image/*"}},
			wantErr: ErrInvalidOptions,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := new(storeMocks.MockStorage)
			mgr, metrics := newTestManager(t, st)

			res := mgr.Upload(context.Background(), tt.file, tt.opts)

			assert.False(t, res.Success)
			assert.Empty(t, res.URL)
			assert.Empty(t, res.Path)
			assert.NotEmpty(t, res.Error)
			assert.ErrorIs(t, res.Err, tt.wantErr)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, res.Error)
			}
			st.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			assert.Equal(t, 1.0, testutil.ToFloat64(metrics.operations.WithLabelValues("upload", string(tt.opts.Bucket), "rejected")))
		})
	}
}

func TestManager_Upload_StoreError(t *testing.T) {
	ctx := context.Background()
	st := new(storeMocks.MockStorage)
	st.On("Put", mock.Anything, "campaign-images", mock.MatchedBy(func(key string) bool {
		return strings.HasPrefix(key, "campaigns/") && strings.HasSuffix(key, ".jpg")
	}), mock.Anything, mock.MatchedBy(func(opt storage.PutObjectOptions) bool {
		return opt.ContentType == "image/jpeg" && opt.Size == 100 && opt.CacheControl == cacheControl
	})).Return(storage.ObjectInfo{}, storage.ErrObjectExists)

	mgr, _ := newTestManager(t, st)
	res := mgr.Upload(ctx, jpeg(100), CampaignImageOptions())

	assert.False(t, res.Success)
	assert.Equal(t, "An error occurred while uploading the file.", res.Error)
	assert.ErrorIs(t, res.Err, ErrStore)
	assert.ErrorIs(t, res.Err, storage.ErrObjectExists)
	st.AssertExpectations(t)
}

func TestManager_Upload_WithoutFolder(t *testing.T) {
	st := memory.New(origin)
	mgr := NewManager(st, logger.Discard(), WithKeyGenerator(func(string) string { return "fixed.pdf" }))

	res := mgr.Upload(context.Background(), File{
		Name: "a.pdf", ContentType: "application/pdf", Size: 4, Body: strings.NewReader("%PDF"),
	}, Options{Bucket: BucketDocuments, AllowedTypes: []string{"application/pdf"}})

	require.True(t, res.Success)
	assert.Equal(t, "fixed.pdf", res.Path)
	assert.Equal(t, origin+"/storage/v1/object/public/documents/fixed.pdf", res.URL)
}

func TestManager_Replace_SwapsObjects(t *testing.T) {
	ctx := context.Background()
	store := memory.New(origin)
	mgr, _ := newTestManager(t, store)

	first := mgr.Upload(ctx, jpeg(1024), VehicleImageOptions())
	require.True(t, first.Success)

	second := mgr.Replace(ctx, first.URL, jpeg(2048), VehicleImageOptions())
	require.True(t, second.Success)

	assert.NotEqual(t, first.Path, second.Path)
	assert.False(t, store.Exists("vehicle-images", first.Path))
	assert.True(t, store.Exists("vehicle-images", second.Path))
	assert.Equal(t, 1, store.Len())
}

func TestManager_Replace_UploadsBeforeRemoving(t *testing.T) {
	ctx := context.Background()
	oldURL := origin + "/storage/v1/object/public/vehicle-images/vehicles/old_1_abc.jpg"

	var calls []string
	st := new(storeMocks.MockStorage)
	st.On("Put", mock.Anything, "vehicle-images", mock.Anything, mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { calls = append(calls, "put") }).
		Return(storage.ObjectInfo{}, nil)
	st.On("Remove", mock.Anything, "vehicle-images", "vehicles/old_1_abc.jpg").
		Run(func(mock.Arguments) { calls = append(calls, "remove") }).
		Return(nil)

	mgr, _ := newTestManager(t, st)
	res := mgr.Replace(ctx, oldURL, jpeg(100), VehicleImageOptions())

	assert.True(t, res.Success)
	assert.Equal(t, []string{"put", "remove"}, calls)
	st.AssertExpectations(t)
}

func TestManager_Replace_FailedUploadKeepsOldObject(t *testing.T) {
	ctx := context.Background()
	oldURL := origin + "/storage/v1/object/public/vehicle-images/vehicles/old_1_abc.jpg"

	st := new(storeMocks.MockStorage)
	st.On("Put", mock.Anything, "vehicle-images", mock.Anything, mock.Anything, mock.Anything).
		Return(storage.ObjectInfo{}, errors.New("network unreachable"))

	mgr, _ := newTestManager(t, st)
	res := mgr.Replace(ctx, oldURL, jpeg(100), VehicleImageOptions())

	assert.False(t, res.Success)
	assert.ErrorIs(t, res.Err, ErrStore)
	st.AssertNotCalled(t, "Remove", mock.Anything, mock.Anything, mock.Anything)
}

func TestManager_Replace_OversizedFileLeavesOldURLValid(t *testing.T) {
	ctx := context.Background()
	store := memory.New(origin)
	mgr, _ := newTestManager(t, store)

	existing := mgr.Upload(ctx, jpeg(1<<20), VehicleImageOptions())
	require.True(t, existing.Success)

	res := mgr.Replace(ctx, existing.URL, jpeg(6<<20), VehicleImageOptions())

	assert.False(t, res.Success)
	assert.ErrorIs(t, res.Err, ErrFileTooLarge)
	assert.True(t, store.Exists("vehicle-images", existing.Path))
	assert.Equal(t, 1, store.Len())
}

func TestManager_Replace_CleanupFailureIsStillSuccess(t *testing.T) {
	ctx := context.Background()
	oldURL := origin + "/storage/v1/object/public/campaign-images/campaigns/old.jpg"

	st := new(storeMocks.MockStorage)
	st.On("Put", mock.Anything, "campaign-images", mock.Anything, mock.Anything, mock.Anything).Return(storage.ObjectInfo{}, nil)
	st.On("Remove", mock.Anything, "campaign-images", "campaigns/old.jpg").Return(errors.New("permission denied"))

	mgr, metrics := newTestManager(t, st)
	res := mgr.Replace(ctx, oldURL, jpeg(100), CampaignImageOptions())

	require.True(t, res.Success)
	assert.NoError(t, res.Err)
	assert.Empty(t, res.Error)
	assert.True(t, strings.HasPrefix(res.URL, origin+"/storage/v1/object/public/campaign-images/campaigns/"))
	assert.NotEqual(t, oldURL, res.URL)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.orphans.WithLabelValues("campaign-images", "replace_cleanup")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.operations.WithLabelValues("replace", "campaign-images", "success")))
	st.AssertExpectations(t)
}

func TestManager_Replace_CleanupPanicIsStillSuccess(t *testing.T) {
	ctx := context.Background()
	oldURL := origin + "/storage/v1/object/public/vehicle-images/vehicles/old.jpg"

	st := new(storeMocks.MockStorage)
	st.On("Put", mock.Anything, "vehicle-images", mock.Anything, mock.Anything, mock.Anything).Return(storage.ObjectInfo{}, nil)
	st.On("Remove", mock.Anything, "vehicle-images", "vehicles/old.jpg").
		Run(func(mock.Arguments) { panic("driver bug in remove") }).
		Return(nil)

	mgr, metrics := newTestManager(t, st)

	var res UploadResult
	require.NotPanics(t, func() {
		res = mgr.Replace(ctx, oldURL, jpeg(100), VehicleImageOptions())
	})

	require.True(t, res.Success, res.Error)
	assert.NoError(t, res.Err)
	assert.True(t, strings.HasPrefix(res.URL, origin+"/storage/v1/object/public/vehicle-images/vehicles/"))
	assert.NotEmpty(t, res.Path)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.orphans.WithLabelValues("vehicle-images", "replace_cleanup")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.operations.WithLabelValues("replace", "vehicle-images", "success")))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.operations.WithLabelValues("replace", "vehicle-images", "error")))
	st.AssertExpectations(t)
}

func TestManager_Replace_UnresolvableOldURL(t *testing.T) {
	tests := []struct {
		name   string
		oldURL string
	}{
		{name: "empty slot", oldURL: ""},
		{name: "foreign bucket", oldURL: origin + "/storage/v1/object/public/documents/customer-1/a.pdf"},
		{name: "external url", oldURL: "https://images.example.com/car.jpg"},
		{name: "garbage", oldURL: "::not a url::"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			st := new(storeMocks.MockStorage)
			st.On("Put", mock.Anything, "vehicle-images", mock.Anything, mock.Anything, mock.Anything).Return(storage.ObjectInfo{}, nil)

			mgr, _ := newTestManager(t, st)
			res := mgr.Replace(ctx, tt.oldURL, jpeg(100), VehicleImageOptions())

			assert.True(t, res.Success)
			st.AssertNotCalled(t, "Remove", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestManager_Replace_CanceledAfterUpload(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	oldURL := origin + "/storage/v1/object/public/vehicle-images/vehicles/old.jpg"

	st := new(storeMocks.MockStorage)
	st.On("Put", mock.Anything, "vehicle-images", mock.Anything, mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { cancel() }).
		Return(storage.ObjectInfo{}, nil)

	mgr, metrics := newTestManager(t, st)
	res := mgr.Replace(ctx, oldURL, jpeg(100), VehicleImageOptions())

	assert.False(t, res.Success)
	assert.Empty(t, res.URL)
	assert.ErrorIs(t, res.Err, ErrCanceled)
	assert.ErrorIs(t, res.Err, context.Canceled)
	st.AssertNotCalled(t, "Remove", mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.orphans.WithLabelValues("vehicle-images", "canceled")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.operations.WithLabelValues("replace", "vehicle-images", "canceled")))
}

func TestManager_Delete(t *testing.T) {
	ctx := context.Background()
	store := memory.New(origin)
	mgr, _ := newTestManager(t, store)

	up := mgr.Upload(ctx, File{
		Name: "contract.pdf", ContentType: "application/pdf", Size: 4, Body: strings.NewReader("%PDF"),
	}, CustomerDocumentOptions("9"))
	require.True(t, up.Success)
	assert.True(t, strings.HasPrefix(up.Path, "customer-9/contract_"))

	res := mgr.Delete(ctx, BucketDocuments, up.URL)
	assert.True(t, res.Success)
	assert.False(t, store.Exists("documents", up.Path))

	// deleting again is harmless
	assert.True(t, mgr.Delete(ctx, BucketDocuments, up.URL).Success)
}

func TestManager_Delete_UnresolvableIsNoop(t *testing.T) {
	urls := []string{
		"",
		"not a url",
		origin + "/storage/v1/object/public/vehicle-images/vehicles/a.jpg",
		"https://elsewhere.example.com/a.jpg",
	}

	for _, u := range urls {
		st := new(storeMocks.MockStorage)
		mgr, _ := newTestManager(t, st)

		res := mgr.Delete(context.Background(), BucketCampaignImages, u)

		assert.True(t, res.Success, u)
		assert.NoError(t, res.Err)
		st.AssertNotCalled(t, "Remove", mock.Anything, mock.Anything, mock.Anything)
	}
}

func TestManager_Delete_StoreError(t *testing.T) {
	ctx := context.Background()
	st := new(storeMocks.MockStorage)
	st.On("Remove", mock.Anything, "documents", "customer-1/a.pdf").Return(errors.New("timeout"))

	mgr, metrics := newTestManager(t, st)
	res := mgr.Delete(ctx, BucketDocuments, origin+"/storage/v1/object/public/documents/customer-1/a.pdf")

	assert.False(t, res.Success)
	assert.Equal(t, "An error occurred while deleting the file.", res.Error)
	assert.ErrorIs(t, res.Err, ErrStore)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.operations.WithLabelValues("delete", "documents", "store_error")))
	st.AssertExpectations(t)
}

func TestManager_Delete_UnknownBucket(t *testing.T) {
	st := new(storeMocks.MockStorage)
	mgr, _ := newTestManager(t, st)

	res := mgr.Delete(context.Background(), "avatars", origin+"/storage/v1/object/public/avatars/a.jpg")

	assert.False(t, res.Success)
	assert.ErrorIs(t, res.Err, ErrInvalidOptions)
	st.AssertNotCalled(t, "Remove", mock.Anything, mock.Anything, mock.Anything)
}

type panickingReader struct{}

func (panickingReader) Read([]byte) (int, error) { panic("driver bug") }

func TestManager_PanicBecomesFailure(t *testing.T) {
	mgr, metrics := newTestManager(t, memory.New(origin))

	var res UploadResult
	assert.NotPanics(t, func() {
		res = mgr.Upload(context.Background(), File{
			Name: "a.jpg", ContentType: "image/jpeg", Size: 1, Body: panickingReader{},
		}, VehicleImageOptions())
	})

	assert.False(t, res.Success)
	assert.Equal(t, "An unexpected error occurred.", res.Error)
	assert.ErrorIs(t, res.Err, ErrUnexpected)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.operations.WithLabelValues("upload", "vehicle-images", "error")))
}

func TestManager_NilMetrics(t *testing.T) {
	mgr := NewManager(memory.New(origin), nil)

	res := mgr.Upload(context.Background(), File{
		Name: "a.png", ContentType: "image/png", Size: 3, Body: io.LimitReader(strings.NewReader("png!"), 3),
	}, CampaignImageOptions())

	assert.True(t, res.Success)
}

func TestNewMetrics_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewMetrics(reg)
	require.NoError(t, err)

	_, err = NewMetrics(reg)
	assert.Error(t, err)
}
