package shared

import "errors"

// Sentinel errors shared across handlers.
var (
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials covers both unknown accounts and wrong
	// passwords so responses do not leak which one failed.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrCSRFTokenMissing is returned when a mutating request arrives
	// without a token.
	ErrCSRFTokenMissing = errors.New("csrf token missing")
	// ErrCSRFTokenMismatch is returned when the submitted token does not
	// match the session token.
	ErrCSRFTokenMismatch = errors.New("csrf token mismatch")
)
