package services

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist
	ErrNotFound = errors.New("record not found")

	// ErrInvalidCredentials indicates login with a wrong email or password
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrAccountDisabled indicates login on a deactivated account
	ErrAccountDisabled = errors.New("account is disabled")

	// ErrEmailExists indicates a user with the email already exists
	ErrEmailExists = errors.New("email already registered")
)
