package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/devilmonastery/jobfinder/internal/domain/repositories"
)

var (
	// ErrInvalidCredentials is returned for an unknown email or a wrong password
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrEmailTaken is returned when registering an email that already has an account
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidEmail is returned for a missing or malformed email
	ErrInvalidEmail = errors.New("invalid email address")

	// ErrWeakPassword is returned for passwords shorter than the minimum
	ErrWeakPassword = errors.New("password too short")

	// ErrAccountDisabled is returned when a disabled account tries to sign in
	ErrAccountDisabled = errors.New("account disabled")

	// ErrTokenRevoked is returned for a token that was signed out
	ErrTokenRevoked = errors.New("token revoked")

	// ErrProfileIncomplete is matched by *ProfileIncompleteError
	ErrProfileIncomplete = errors.New("profile incomplete")

	// ErrInvalidOption is matched by *InvalidOptionError
	ErrInvalidOption = errors.New("invalid option")

	// ErrNoPreferredRole is returned for a home feed without a preferred role to search for
	ErrNoPreferredRole = errors.New("no preferred role set")

	// ErrEmptyQuery is returned for a blank search
	ErrEmptyQuery = errors.New("search query is empty")
)

// ProfileIncompleteError names the required profile fields left empty
type ProfileIncompleteError struct {
	Missing []string
}

func (e *ProfileIncompleteError) Error() string {
	return fmt.Sprintf("profile incomplete: missing %s", strings.Join(e.Missing, ", "))
}

func (e *ProfileIncompleteError) Is(target error) bool {
	return target == ErrProfileIncomplete
}

// InvalidOptionError is returned when a field is not one of its allowed options.
// Suggestion holds the closest allowed value, if any is close enough.
type InvalidOptionError struct {
	Field      string
	Value      string
	Suggestion string
}

func (e *InvalidOptionError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("invalid %s %q: did you mean %q?", e.Field, e.Value, e.Suggestion)
	}
	return fmt.Sprintf("invalid %s %q", e.Field, e.Value)
}

func (e *InvalidOptionError) Is(target error) bool {
	return target == ErrInvalidOption
}

// GetUserLookupFailureReason returns a short reason string for user lookup failures,
// used when logging failed sign-ins.
func GetUserLookupFailureReason(err error) string {
	if errors.Is(err, repositories.ErrUserNotFound) {
		return "user_not_found"
	}
	if errors.Is(err, repositories.ErrUserInactive) {
		return "user_inactive"
	}
	return "user_lookup_failed"
}

// IsUserInactive checks if the error indicates an inactive user.
func IsUserInactive(err error) bool {
	return errors.Is(err, repositories.ErrUserInactive)
}

// IsUserNotFound checks if the error indicates user not found.
func IsUserNotFound(err error) bool {
	return errors.Is(err, repositories.ErrUserNotFound)
}
