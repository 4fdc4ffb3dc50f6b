package storage

import "errors"

// Sentinel errors for storage operations.
var (
	// ErrNotFound is returned when a row does not exist, is revoked, or is
	// not owned by the requesting user.
	ErrNotFound = errors.New("not found")

	// ErrEmailTaken is returned when a user insert or update violates the
	// email uniqueness constraint.
	ErrEmailTaken = errors.New("email already taken")

	// ErrUsernameTaken is returned when a user insert or update violates
	// the username uniqueness constraint.
	ErrUsernameTaken = errors.New("username already taken")
)
