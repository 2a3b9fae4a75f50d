package memo

import (
	"errors"

	"gmemo/internal/validation"
)

var (
	// ErrNotFound covers both a missing memo and a memo owned by someone else.
	ErrNotFound = errors.New("memo not found")
	// ErrUnauthenticated is returned when no identity is attached to a request.
	ErrUnauthenticated = errors.New("authentication required")
)

// ValidationError lists per-field messages for rejected input.
type ValidationError = validation.Errors

func IsValidation(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}
