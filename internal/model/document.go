package model

import "time"

// Document is a customer file such as an invoice or a signed contract.
// FilePath holds the public URL of the stored object.
type Document struct {
	ID           int64     `json:"id"`
	CustomerID   string    `json:"customer_id"`
	VehicleID    *int64    `json:"vehicle_id,omitempty"`
	DocumentType string    `json:"document_type"`
	FilePath     string    `json:"file_path"`
	FileName     *string   `json:"file_name,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
