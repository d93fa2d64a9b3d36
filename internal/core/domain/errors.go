// internal/core/domain/errors.go
package domain

import "errors"

// Sentinel errors shared across services and handlers. Callers classify
// failures with errors.Is and map them to transport status codes.
var (
	// ErrNotFound indicates a lookup or mutation on an unknown identity.
	ErrNotFound = errors.New("not found")

	// ErrValidation indicates a missing or malformed required field.
	ErrValidation = errors.New("validation failed")

	// ErrConflict indicates a duplicate unique key (barcode, phone).
	ErrConflict = errors.New("already exists")

	// ErrProcessingFailed indicates an image decode, compress or write
	// failure. The caller may retry with a different payload.
	ErrProcessingFailed = errors.New("photo processing failed")
)
