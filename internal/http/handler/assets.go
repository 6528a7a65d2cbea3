package handler

import (
	"io"
	"strconv"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/bugrarslan/mirza-admin/internal/asset"
	"github.com/bugrarslan/mirza-admin/internal/model"
	"github.com/bugrarslan/mirza-admin/internal/service"
)

// formFileField is the multipart field carrying the upload.
const formFileField = "file"

func parseID(c *fiber.Ctx) (int64, bool) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	return id, err == nil && id > 0
}

// openFormFile opens the uploaded file. A missing or generic content type is
// replaced by one sniffed from the first bytes.
func openFormFile(c *fiber.Ctx) (asset.File, io.Closer, error) {
	fh, err := c.FormFile(formFileField)
	if err != nil {
		return asset.File{}, nil, writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
	}

	f, err := fh.Open()
	if err != nil {
		return asset.File{}, nil, writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
	}

	ct := fh.Header.Get(fiber.HeaderContentType)
	if ct == "" || ct == fiber.MIMEOctetStream {
		mt, err := mimetype.DetectReader(f)
		if err == nil {
			_, err = f.Seek(0, io.SeekStart)
		}
		if err != nil {
			f.Close()
			return asset.File{}, nil, writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot read uploaded file")
		}
		ct = mt.String()
	}

	return asset.File{
		Name:        fh.Filename,
		ContentType: ct,
		Size:        fh.Size,
		Body:        f,
	}, f, nil
}

// AttachAsset stores the uploaded file in the entity's slot, replacing any current file.
//
//	@Summary	Upload or replace an entity file
//	@Tags		assets
//	@Accept		multipart/form-data
//	@Produce	json
//	@Param		id		path		int		true	"Entity ID"
//	@Param		file	formData	file	true	"File to store"
//	@Success	200		{object}	model.AssetSlot
//	@Failure	400		{object}	errorPayload
//	@Failure	404		{object}	errorPayload
//	@Failure	413		{object}	errorPayload
//	@Failure	415		{object}	errorPayload
//	@Failure	502		{object}	errorPayload
//	@Router		/vehicles/{id}/image [put]
//	@Router		/campaigns/{id}/image [put]
//	@Router		/documents/{id}/file [put]
func AttachAsset(svc service.AssetService, kind model.AssetKind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		file, closer, err := openFormFile(c)
		if closer == nil {
			return err
		}
		defer closer.Close()

		slot, err := svc.Attach(c.UserContext(), kind, id, file)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(slot)
	}
}

// DetachAsset removes the stored file and clears the slot.
//
//	@Summary	Remove an entity image
//	@Tags		assets
//	@Param		id	path	int	true	"Entity ID"
//	@Success	204
//	@Failure	400	{object}	errorPayload
//	@Failure	404	{object}	errorPayload
//	@Failure	502	{object}	errorPayload
//	@Router		/vehicles/{id}/image [delete]
//	@Router		/campaigns/{id}/image [delete]
func DetachAsset(svc service.AssetService, kind model.AssetKind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := svc.Detach(c.UserContext(), kind, id); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// DeleteRecord deletes the entity and its stored file.
//
//	@Summary	Delete an entity with its file
//	@Tags		assets
//	@Param		id	path	int	true	"Entity ID"
//	@Success	204
//	@Failure	400	{object}	errorPayload
//	@Failure	404	{object}	errorPayload
//	@Router		/vehicles/{id} [delete]
//	@Router		/campaigns/{id} [delete]
//	@Router		/documents/{id} [delete]
func DeleteRecord(svc service.AssetService, kind model.AssetKind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := svc.DeleteRecord(c.UserContext(), kind, id); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// CreateDocument godoc
//
//	@Summary	Upload a customer document
//	@Tags		documents
//	@Accept		multipart/form-data
//	@Produce	json
//	@Param		customerID		path		string	true	"Customer UUID"
//	@Param		document_type	formData	string	true	"invoice, contract, receipt or other"
//	@Param		vehicle_id		formData	int		false	"Related vehicle"
//	@Param		file			formData	file	true	"Document file"
//	@Success	201				{object}	model.Document
//	@Failure	400				{object}	errorPayload
//	@Failure	413				{object}	errorPayload
//	@Failure	415				{object}	errorPayload
//	@Failure	502				{object}	errorPayload
//	@Router		/customers/{customerID}/documents [post]
func CreateDocument(svc service.AssetService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		customerID, err := uuid.Parse(c.Params("customerID"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		in := service.CreateDocumentInput{
			CustomerID:   customerID.String(),
			DocumentType: c.FormValue("document_type"),
		}
		if v := c.FormValue("vehicle_id"); v != "" {
			vehicleID, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return writeError(c, fiber.StatusBadRequest, "INVALID_INPUT", "invalid vehicle_id")
			}
			in.VehicleID = &vehicleID
		}

		file, closer, err := openFormFile(c)
		if closer == nil {
			return err
		}
		defer closer.Close()

		doc, err := svc.CreateDocument(c.UserContext(), in, file)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(doc)
	}
}
