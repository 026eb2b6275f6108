package domain

import "errors"

// Sentinel errors for profile operations.
var (
	// ErrProfileNotFound indicates no live user exists for the requested id.
	// HTTP Status: 404 Not Found
	ErrProfileNotFound = errors.New("profile not found")

	// ErrNoValues indicates a write was requested without any column to set.
	ErrNoValues = errors.New("no values to write")
)
