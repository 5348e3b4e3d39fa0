package model

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors shared across repositories and use cases
var (
	// ErrNotFound is returned when a referenced entity does not exist
	ErrNotFound = goerr.New("entity not found")

	// ErrValidation is returned when an entity carries out-of-range or
	// malformed values and is rejected before any calculation
	ErrValidation = goerr.New("validation failed")

	// ErrConflict is returned when an operation would violate a uniqueness
	// or referential constraint (e.g. duplicate risk triple, deleting an
	// asset other assets still depend on)
	ErrConflict = goerr.New("conflicting operation")
)
