package auth

import (
	"context"
	"errors"
	"time"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

// UserContext contains authenticated user information
type UserContext struct {
	UserID    string
	Email     string
	Role      string
	TokenID   string
	ExpiresAt time.Time
}

// contextKey is the key for storing user info in context
type contextKey string

const userContextKey contextKey = "user"

// UserFromClaims builds the request user from validated token claims
func UserFromClaims(c *Claims) *UserContext {
	return &UserContext{
		UserID:    c.UserID,
		Email:     c.Email,
		Role:      c.Role,
		TokenID:   c.TokenID,
		ExpiresAt: c.Expiry(),
	}
}

// GetUserFromContext extracts the authenticated user from the context
func GetUserFromContext(ctx context.Context) (*UserContext, error) {
	user, ok := ctx.Value(userContextKey).(*UserContext)
	if !ok || user == nil {
		return nil, ErrUnauthorized
	}
	return user, nil
}

// SetUserInContext stores the authenticated user in the context
func SetUserInContext(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// RequireAdmin checks if the user is an admin
func RequireAdmin(ctx context.Context) error {
	user, err := GetUserFromContext(ctx)
	if err != nil {
		return err
	}
	if user.Role != "admin" {
		return ErrForbidden
	}
	return nil
}
