package repository

import "errors"

// Common repository errors
var (
	// ErrNotFound is returned when a record is not found
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateEmail is returned when saving a user with an email already in use
	ErrDuplicateEmail = errors.New("user with this email already exists")

	// ErrDuplicateUsername is returned when saving a user with a username already in use
	ErrDuplicateUsername = errors.New("user with this username already exists")

	// ErrDuplicateToken is returned when saving a token with an existing hash
	ErrDuplicateToken = errors.New("token with this hash already exists")
)
