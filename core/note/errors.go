package note

import "errors"

var (
	ErrNotFound             = errors.New("note not found")
	ErrMissingTitle         = errors.New("note title is missing")
	ErrNoFileSelected       = errors.New("no file selected")
	ErrFileTooLarge         = errors.New("file is too large")
	ErrStorageQuotaExceeded = errors.New("storage quota exceeded")
	ErrUploadInProgress     = errors.New("an upload is already in progress")
	ErrUnknownAction        = errors.New("unknown action")
)

// user-facing messages
const (
	MsgMissingTitle         = "Please fill in a title."
	MsgNoFileSelected       = "Please select a file."
	MsgStorageQuotaExceeded = "Storage full! Delete some old notes to make space."
	MsgUploadInProgress     = "Please wait for the current upload to finish."
)
