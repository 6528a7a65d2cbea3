package asset

import (
	"errors"
	"io"
)

var (
	ErrFileRequired   = errors.New("file is required")
	ErrFileTooLarge   = errors.New("file too large")
	ErrTypeNotAllowed = errors.New("file type not allowed")
	ErrInvalidOptions = errors.New("invalid upload options")
	ErrStore          = errors.New("object store failure")
	ErrCanceled       = errors.New("operation canceled")
	ErrUnexpected     = errors.New("unexpected failure")
)

// user-facing messages
const (
	msgFileRequired   = "Please choose a file to upload."
	msgInvalidOptions = "Upload settings are invalid."
	msgUploadFailed   = "An error occurred while uploading the file."
	msgDeleteFailed   = "An error occurred while deleting the file."
	msgCanceled       = "The operation was canceled."
	msgUnexpected     = "An unexpected error occurred."
)

// File is a candidate upload. Size must be the exact byte length of Body.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

// UploadResult is returned by Upload and Replace. URL and Path are set iff Success;
// Error holds a message fit for display iff not. Err carries the cause for errors.Is.
type UploadResult struct {
	Success bool   `json:"success"`
	URL     string `json:"url,omitempty"`
	Path    string `json:"path,omitempty"`
	Error   string `json:"error,omitempty"`
	Err     error  `json:"-"`
}

// DeleteResult is returned by Delete.
type DeleteResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Err     error  `json:"-"`
}

func uploadFailure(err error, msg string) UploadResult {
	return UploadResult{Error: msg, Err: err}
}

func deleteFailure(err error, msg string) DeleteResult {
	return DeleteResult{Error: msg, Err: err}
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrFileTooLarge), errors.Is(err, ErrTypeNotAllowed),
		errors.Is(err, ErrFileRequired), errors.Is(err, ErrInvalidOptions):
		return "rejected"
	case errors.Is(err, ErrStore):
		return "store_error"
	case errors.Is(err, ErrCanceled):
		return "canceled"
	default:
		return "error"
	}
}
