package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/bugrarslan/mirza-admin/internal/asset"
	"github.com/bugrarslan/mirza-admin/internal/http/middleware"
	"github.com/bugrarslan/mirza-admin/internal/service"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// requestIDFromCtx extracts request_id previously stored by middleware.RequestID.
func requestIDFromCtx(c *fiber.Ctx) string {
	if v := c.Locals(middleware.RequestIDLocalKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// writeError writes a standardized JSON error response without leaking internal errors.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "INVALID_ID", "NOT_FOUND", "INTERNAL_ERROR")
// - message: human-readable safe message (no internal details)
func writeError(c *fiber.Ctx, status int, code, message string) error {
	res := errorPayload{
		RequestID: requestIDFromCtx(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
		},
	}
	return c.Status(status).JSON(res)
}

// writeServiceError maps service and asset errors to a response.
// Asset failures carry a message that is already safe to display.
func writeServiceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "resource not found")
	case errors.Is(err, service.ErrSlotRequired):
		return writeError(c, fiber.StatusBadRequest, "SLOT_REQUIRED", "this file cannot be removed, replace it instead")
	case errors.Is(err, service.ErrInvalidInput):
		return writeError(c, fiber.StatusBadRequest, "INVALID_INPUT", "invalid input")
	}

	var ae *service.AssetError
	if !errors.As(err, &ae) {
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}

	switch {
	case errors.Is(ae.Err, asset.ErrFileRequired):
		return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", ae.Message)
	case errors.Is(ae.Err, asset.ErrFileTooLarge):
		return writeError(c, fiber.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", ae.Message)
	case errors.Is(ae.Err, asset.ErrTypeNotAllowed):
		return writeError(c, fiber.StatusUnsupportedMediaType, "UNSUPPORTED_FILE_TYPE", ae.Message)
	case errors.Is(ae.Err, asset.ErrStore):
		return writeError(c, fiber.StatusBadGateway, "STORAGE_ERROR", ae.Message)
	case errors.Is(ae.Err, asset.ErrCanceled):
		return writeError(c, fiber.StatusRequestTimeout, "CANCELED", ae.Message)
	default:
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", ae.Message)
	}
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		if e, ok := err.(*fiber.Error); ok {
			status = e.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, status, "FILE_TOO_LARGE", "request body too large")
		default:
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}
