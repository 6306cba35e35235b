package usecase

import (
	"errors"
	"fmt"

	"cineclub/pkg/utils"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrValidation         = errors.New("validation failed")
	ErrEditConflict       = errors.New("the review was changed by someone else, reload and try again")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrConflict           = errors.New("already exists")

	// ErrMovieNotFound narrows ErrNotFound to the referenced movie.
	ErrMovieNotFound = fmt.Errorf("movie %w", ErrNotFound)

	// ErrAlreadyReviewed is a validation failure, errors.Is(err, ErrValidation) holds.
	ErrAlreadyReviewed = fmt.Errorf("%w: you have already reviewed this movie, you can edit your existing review", ErrValidation)
)

// ValidationError carries per-field messages for the client.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	return "validation failed: " + utils.FormatValidationErrors(e.Fields)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func newValidationError(fields map[string]string) error {
	return &ValidationError{Fields: fields}
}
