package apperrors

import "errors"

var (
	// ErrNotFound indicates a referenced file or entity is absent.
	ErrNotFound = errors.New("not found")
	// ErrInvalidFormat indicates a container or structured content could not
	// be parsed as expected (bad archive, malformed model description).
	ErrInvalidFormat = errors.New("invalid format")
	// ErrValidation indicates a binding references something that does not exist.
	ErrValidation = errors.New("validation failed")
)
