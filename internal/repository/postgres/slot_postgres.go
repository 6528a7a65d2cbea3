package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/bugrarslan/mirza-admin/internal/model"
	"github.com/bugrarslan/mirza-admin/internal/repository"
)

type slotTable struct {
	name   string
	column string
	owner  string
}

// Table and column names are fixed here and never taken from input.
var slotTables = map[model.AssetKind]slotTable{
	model.KindVehicle:  {name: "vehicles", column: "image_url", owner: "''"},
	model.KindCampaign: {name: "campaigns", column: "image_url", owner: "''"},
	model.KindDocument: {name: "documents", column: "file_path", owner: "customer_id::text"},
}

// SlotPostgres is a PostgreSQL implementation of repository.SlotRepository.
type SlotPostgres struct {
	db *sql.DB
}

// NewSlotPostgres creates a new SlotPostgres repository.
func NewSlotPostgres(db *sql.DB) *SlotPostgres {
	return &SlotPostgres{db: db}
}

var _ repository.SlotRepository = (*SlotPostgres)(nil)

func tableFor(kind model.AssetKind) (slotTable, error) {
	t, ok := slotTables[kind]
	if !ok {
		return slotTable{}, fmt.Errorf("%w: %q", repository.ErrUnknownKind, kind)
	}
	return t, nil
}

// FindSlot reads the URL column of one row.
func (r *SlotPostgres) FindSlot(ctx context.Context, kind model.AssetKind, id int64) (*model.AssetSlot, error) {
	t, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	q := fmt.Sprintf(`SELECT id, %s, %s FROM %s WHERE id = $1`, t.column, t.owner, t.name)
	slot := model.AssetSlot{Kind: kind}
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&slot.ID, &slot.URL, &slot.OwnerID); err != nil {
		return nil, fmt.Errorf("find %s %d: %w", kind, id, err)
	}
	return &slot, nil
}

// SetSlotURL updates the URL column. It returns sql.ErrNoRows when no row matched.
func (r *SlotPostgres) SetSlotURL(ctx context.Context, kind model.AssetKind, id int64, url *string) error {
	t, err := tableFor(kind)
	if err != nil {
		return err
	}

	q := fmt.Sprintf(`UPDATE %s SET %s = $1 WHERE id = $2`, t.name, t.column)
	res, err := r.db.ExecContext(ctx, q, url, id)
	if err != nil {
		return fmt.Errorf("update %s %d: %w", kind, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("update %s %d: %w", kind, id, sql.ErrNoRows)
	}
	return nil
}

// DeleteRecord removes the row. It does not return an error if the row does not exist.
func (r *SlotPostgres) DeleteRecord(ctx context.Context, kind model.AssetKind, id int64) error {
	t, err := tableFor(kind)
	if err != nil {
		return err
	}

	q := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, t.name)
	if _, err := r.db.ExecContext(ctx, q, id); err != nil {
		return fmt.Errorf("delete %s %d: %w", kind, id, err)
	}
	return nil
}

// CreateDocument inserts a document row and returns the stored record.
func (r *SlotPostgres) CreateDocument(ctx context.Context, doc *model.Document) (*model.Document, error) {
	const q = `
		INSERT INTO documents (customer_id, vehicle_id, document_type, file_path, file_name)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, customer_id::text, vehicle_id, document_type, file_path, file_name, created_at
	`
	row := r.db.QueryRowContext(ctx, q,
		doc.CustomerID,
		doc.VehicleID,
		doc.DocumentType,
		doc.FilePath,
		doc.FileName,
	)
	var out model.Document
	if err := row.Scan(
		&out.ID,
		&out.CustomerID,
		&out.VehicleID,
		&out.DocumentType,
		&out.FilePath,
		&out.FileName,
		&out.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &out, nil
}
