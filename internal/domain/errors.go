package domain

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized indicates the caller's credentials were rejected.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates the operator lacks the role required for the action.
	ErrForbidden = errors.New("forbidden")

	// ErrConflict indicates a write was rejected because the record changed
	// since it was read. Callers may re-read and retry.
	ErrConflict = errors.New("conflict: record changed since it was read")
)
