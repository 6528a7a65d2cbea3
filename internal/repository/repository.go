package repository

import (
	"context"
	"errors"

	"github.com/bugrarslan/mirza-admin/internal/model"
)

// SlotRepository persists the URL slots of vehicles, campaigns and documents.
// SQL only; lookups of missing rows return an error matching sql.ErrNoRows.
type SlotRepository interface {
	// FindSlot returns the current slot of the entity.
	FindSlot(ctx context.Context, kind model.AssetKind, id int64) (*model.AssetSlot, error)

	// SetSlotURL stores url (nil clears the slot) on an existing row.
	SetSlotURL(ctx context.Context, kind model.AssetKind, id int64, url *string) error

	// DeleteRecord removes the entity row. Missing rows are not an error.
	DeleteRecord(ctx context.Context, kind model.AssetKind, id int64) error

	// CreateDocument inserts a document row and returns it as stored.
	CreateDocument(ctx context.Context, doc *model.Document) (*model.Document, error)
}

// ErrUnknownKind is returned for an asset kind without a backing table.
var ErrUnknownKind = errors.New("unknown asset kind")
