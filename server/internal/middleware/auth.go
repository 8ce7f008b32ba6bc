package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/devilmonastery/jobfinder/internal/api"
	"github.com/devilmonastery/jobfinder/internal/auth"
)

// Authenticator validates an access token
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*auth.UserContext, error)
}

// TokenCookies reads the access token from a browser session cookie
type TokenCookies interface {
	GetToken(r *http.Request) (string, error)
}

// AuthMiddleware authenticates API requests from a bearer token or,
// failing that, the session cookie.
type AuthMiddleware struct {
	authenticator Authenticator
	cookies       TokenCookies
	log           *slog.Logger
}

// NewAuthMiddleware creates a new auth middleware. cookies may be nil.
func NewAuthMiddleware(authenticator Authenticator, cookies TokenCookies) *AuthMiddleware {
	return &AuthMiddleware{
		authenticator: authenticator,
		cookies:       cookies,
		log:           slog.Default().With(slog.String("component", "auth_middleware")),
	}
}

// RequireAuth rejects requests without a valid token and stores the
// caller in the request context.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := m.extractToken(r)
		if token == "" {
			unauthorized(w, "missing access token")
			return
		}

		user, err := m.authenticator.Authenticate(r.Context(), token)
		if err != nil {
			if !errors.Is(err, auth.ErrInvalidToken) && !errors.Is(err, auth.ErrExpiredToken) {
				m.log.Warn("token validation failed", slog.String("error", err.Error()))
			}
			unauthorized(w, "invalid or expired token")
			return
		}

		next.ServeHTTP(w, r.WithContext(auth.SetUserInContext(r.Context(), user)))
	})
}

func (m *AuthMiddleware) extractToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		const prefix = "Bearer "
		if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
			return strings.TrimSpace(header[len(prefix):])
		}
		return ""
	}
	if m.cookies != nil {
		if token, err := m.cookies.GetToken(r); err == nil {
			return token
		}
	}
	return ""
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="jobfinder"`)
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(api.ErrorResponse{Error: msg, Code: api.CodeUnauthorized})
}
