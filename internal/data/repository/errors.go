package repository

import "errors"

var (
	// ErrNotFound is returned by mutations that matched no row.
	ErrNotFound = errors.New("record not found")
	// ErrVersionConflict is returned when a versioned update matched no row.
	ErrVersionConflict = errors.New("version conflict")
	// ErrDuplicate is returned when a row that must be unique already exists.
	ErrDuplicate = errors.New("duplicate record")
)
