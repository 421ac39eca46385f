package project

import "errors"

// Document state errors. A failed operation leaves the store unchanged.
var (
	ErrDuplicateDocument = errors.New("document is already open")
	ErrUnknownDocument   = errors.New("document is not open")
	ErrStaleVersion      = errors.New("document version is not newer than the current version")
	ErrInvalidRange      = errors.New("edit range is outside the document")
	// ErrContentMismatch is reported when the text sent with a save differs from the tracked content.
	ErrContentMismatch = errors.New("saved text does not match the tracked content")
)
