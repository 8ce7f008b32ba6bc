package client

import (
	"golang.org/x/oauth2"

	"github.com/devilmonastery/jobfinder/internal/auth"
)

// TokenManager is an interface for managing authentication tokens
// Different implementations can store tokens in files, sessions, databases, etc.
type TokenManager interface {
	// GetToken returns the current access token
	GetToken() (token string, err error)

	// GetTokenID returns the id embedded in the current token
	GetTokenID() (tokenID string, err error)

	// SaveToken stores both the access token and token ID
	SaveToken(token, tokenID string) error

	// ClearToken removes stored credentials
	ClearToken() error
}

// tokenSource exposes a TokenManager as an oauth2.TokenSource so requests
// carry the stored token as a bearer credential. The token is read on
// every request, so a login or logout takes effect immediately.
type tokenSource struct {
	tm TokenManager
}

func (s tokenSource) Token() (*oauth2.Token, error) {
	raw, err := s.tm.GetToken()
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return nil, ErrNotLoggedIn
	}
	tok := &oauth2.Token{AccessToken: raw, TokenType: "Bearer"}
	if claims, err := auth.ParseUnverified(raw); err == nil {
		tok.Expiry = claims.Expiry()
	}
	if !tok.Valid() {
		return nil, ErrSessionExpired
	}
	return tok, nil
}
