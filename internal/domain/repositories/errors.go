package repositories

import "errors"

// Domain-specific repository errors
var (
	// ErrUserNotFound is returned when a user cannot be found
	ErrUserNotFound = errors.New("user not found")

	// ErrUserInactive is returned when a user exists but is inactive/disabled
	ErrUserInactive = errors.New("user is inactive")

	// ErrDuplicateEmail is returned when an account already uses the email
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrProfileNotFound is returned when a user has not completed profile setup
	ErrProfileNotFound = errors.New("profile not found")

	// ErrBookmarkNotFound is returned when a bookmark cannot be found
	ErrBookmarkNotFound = errors.New("bookmark not found")
)
