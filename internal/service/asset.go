package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"github.com/bugrarslan/mirza-admin/internal/asset"
	"github.com/bugrarslan/mirza-admin/internal/model"
	"github.com/bugrarslan/mirza-admin/internal/repository"
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrSlotRequired = errors.New("asset slot cannot be emptied")
	ErrInvalidKind  = errors.New("unknown asset kind")
	ErrInvalidInput = errors.New("invalid input")
)

// AssetError is a failed asset operation. Message is safe to show to the user.
type AssetError struct {
	Message string
	Err     error
}

func (e *AssetError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *AssetError) Unwrap() error { return e.Err }

// AssetLifecycle is the part of asset.Manager the service depends on.
type AssetLifecycle interface {
	Upload(ctx context.Context, f asset.File, opts asset.Options) asset.UploadResult
	Replace(ctx context.Context, oldURL string, f asset.File, opts asset.Options) asset.UploadResult
	Delete(ctx context.Context, bucket asset.Bucket, rawURL string) asset.DeleteResult
}

// CreateDocumentInput describes a new customer document.
type CreateDocumentInput struct {
	CustomerID   string `json:"customer_id" validate:"required,uuid"`
	VehicleID    *int64 `json:"vehicle_id,omitempty" validate:"omitempty,gt=0"`
	DocumentType string `json:"document_type" validate:"required,oneof=invoice contract receipt other"`
}

// AssetService keeps entity rows and their stored files in step.
type AssetService interface {
	// Attach stores f in the entity's slot, replacing the current file if any.
	Attach(ctx context.Context, kind model.AssetKind, id int64, f asset.File) (*model.AssetSlot, error)

	// Detach removes the stored file and clears the slot.
	Detach(ctx context.Context, kind model.AssetKind, id int64) error

	// DeleteRecord removes the stored file, then the entity row.
	// A storage failure is logged and does not keep the row.
	DeleteRecord(ctx context.Context, kind model.AssetKind, id int64) error

	// CreateDocument uploads f into the customer's folder and inserts the document row.
	CreateDocument(ctx context.Context, in CreateDocumentInput, f asset.File) (*model.Document, error)
}

type assetService struct {
	assets AssetLifecycle
	repo   repository.SlotRepository
	logger *slog.Logger
	valid  *validator.Validate
}

// NewAssetService constructs a new AssetService.
func NewAssetService(assets AssetLifecycle, repo repository.SlotRepository, logger *slog.Logger) AssetService {
	if logger == nil {
		logger = slog.Default()
	}
	return &assetService{
		assets: assets,
		repo:   repo,
		logger: logger.With(slog.String("component", "asset_service")),
		valid:  validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (s *assetService) Attach(ctx context.Context, kind model.AssetKind, id int64, f asset.File) (*model.AssetSlot, error) {
	slot, err := s.findSlot(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	opts := optionsFor(*slot)
	oldURL := slot.CurrentURL()

	var res asset.UploadResult
	if oldURL == "" {
		res = s.assets.Upload(ctx, f, opts)
	} else {
		res = s.assets.Replace(ctx, oldURL, f, opts)
	}
	if !res.Success {
		return nil, &AssetError{Message: res.Error, Err: res.Err}
	}

	newURL := res.URL
	if err := s.repo.SetSlotURL(ctx, kind, id, &newURL); err != nil {
		if oldURL == "" {
			s.rollback(ctx, opts.Bucket, newURL)
		} else {
			// the previous object is already gone; keep the new one for manual repair
			s.logger.ErrorContext(ctx, "replaced asset but failed to save its url",
				slog.String("kind", string(kind)),
				slog.Int64("id", id),
				slog.String("url", newURL),
				slog.String("error", err.Error()),
			)
		}
		return nil, mapRepoError(fmt.Errorf("save %s %d url: %w", kind, id, err))
	}

	slot.URL = &newURL
	return slot, nil
}

func (s *assetService) Detach(ctx context.Context, kind model.AssetKind, id int64) error {
	if kind.Valid() && !kind.Optional() {
		return ErrSlotRequired
	}
	slot, err := s.findSlot(ctx, kind, id)
	if err != nil {
		return err
	}
	current := slot.CurrentURL()
	if current == "" {
		return nil
	}

	res := s.assets.Delete(ctx, bucketFor(kind), current)
	if !res.Success {
		return &AssetError{Message: res.Error, Err: res.Err}
	}
	return mapRepoError(s.repo.SetSlotURL(ctx, kind, id, nil))
}

func (s *assetService) DeleteRecord(ctx context.Context, kind model.AssetKind, id int64) error {
	slot, err := s.findSlot(ctx, kind, id)
	if err != nil {
		return err
	}

	if current := slot.CurrentURL(); current != "" {
		res := s.assets.Delete(ctx, bucketFor(kind), current)
		if !res.Success {
			s.logger.WarnContext(ctx, "stored file not removed, deleting record anyway",
				slog.String("kind", string(kind)),
				slog.Int64("id", id),
				slog.String("url", current),
				slog.String("error", res.Error),
			)
		}
	}

	return s.repo.DeleteRecord(ctx, kind, id)
}

func (s *assetService) CreateDocument(ctx context.Context, in CreateDocumentInput, f asset.File) (*model.Document, error) {
	if err := s.valid.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	opts := asset.CustomerDocumentOptions(in.CustomerID)
	res := s.assets.Upload(ctx, f, opts)
	if !res.Success {
		return nil, &AssetError{Message: res.Error, Err: res.Err}
	}

	doc := &model.Document{
		CustomerID:   in.CustomerID,
		VehicleID:    in.VehicleID,
		DocumentType: in.DocumentType,
		FilePath:     res.URL,
	}
	if f.Name != "" {
		name := f.Name
		doc.FileName = &name
	}

	stored, err := s.repo.CreateDocument(ctx, doc)
	if err != nil {
		s.rollback(ctx, opts.Bucket, res.URL)
		return nil, fmt.Errorf("db save failed: %w", err)
	}
	return stored, nil
}

func (s *assetService) findSlot(ctx context.Context, kind model.AssetKind, id int64) (*model.AssetSlot, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidKind, kind)
	}
	slot, err := s.repo.FindSlot(ctx, kind, id)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return slot, nil
}

// rollback removes an object whose URL could not be saved.
// It runs even when ctx is already canceled.
func (s *assetService) rollback(ctx context.Context, bucket asset.Bucket, url string) {
	res := s.assets.Delete(context.WithoutCancel(ctx), bucket, url)
	if !res.Success {
		s.logger.ErrorContext(ctx, "rollback delete failed",
			slog.String("bucket", string(bucket)),
			slog.String("url", url),
			slog.String("error", res.Error),
		)
	}
}

func mapRepoError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func optionsFor(slot model.AssetSlot) asset.Options {
	switch slot.Kind {
	case model.KindVehicle:
		return asset.VehicleImageOptions()
	case model.KindCampaign:
		return asset.CampaignImageOptions()
	default:
		return asset.CustomerDocumentOptions(slot.OwnerID)
	}
}

func bucketFor(kind model.AssetKind) asset.Bucket {
	switch kind {
	case model.KindVehicle:
		return asset.BucketVehicleImages
	case model.KindCampaign:
		return asset.BucketCampaignImages
	default:
		return asset.BucketDocuments
	}
}
