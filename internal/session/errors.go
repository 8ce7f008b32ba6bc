package session

import (
	"context"
	"errors"
	"fmt"
)

// Contexts passed to ErrorReporter.ReportError
const (
	ContextProfileCheck = "session.profile_check"
	ContextAuthSignal   = "session.auth_signal"
)

// ProfileCheckError is reported when the profile existence check fails or
// exceeds the configured timeout. The session resolves to
// AuthenticatedIncompleteProfile.
type ProfileCheckError struct {
	IdentityID string
	Err        error
}

func (e *ProfileCheckError) Error() string {
	return fmt.Sprintf("profile check for identity %s failed: %v", e.IdentityID, e.Err)
}

func (e *ProfileCheckError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the check was abandoned because it ran too long
func (e *ProfileCheckError) Timeout() bool {
	return errors.Is(e.Err, context.DeadlineExceeded)
}

// AuthSignalError is reported when the auth state source itself fails.
// The session resolves to Unauthenticated.
type AuthSignalError struct {
	Err error
}

func (e *AuthSignalError) Error() string {
	return fmt.Sprintf("auth state signal failed: %v", e.Err)
}

func (e *AuthSignalError) Unwrap() error {
	return e.Err
}
