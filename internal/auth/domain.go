package auth

import (
	"errors"
	"time"
)

// User is an operator account. Customers do not log in; accounts exist
// for the staff managing the store.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

var (
	// ErrNotFound indicates the user does not exist.
	ErrNotFound = errors.New("auth: user not found")
	// ErrEmailTaken indicates an email collision on registration.
	ErrEmailTaken = errors.New("auth: email already registered")
	// ErrWeakPassword rejects passwords shorter than eight characters.
	ErrWeakPassword = errors.New("auth: password must be at least 8 characters")
)
