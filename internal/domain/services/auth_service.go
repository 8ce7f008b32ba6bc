package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/devilmonastery/jobfinder/internal/auth"
	"github.com/devilmonastery/jobfinder/internal/domain/entities"
	"github.com/devilmonastery/jobfinder/internal/domain/repositories"
	"github.com/devilmonastery/jobfinder/internal/pkg/metrics"
)

// TokenRevoker records signed-out token ids until they expire
type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// Session is an issued access token
type Session struct {
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expires_at"`
	User      *entities.User `json:"user"`
}

// AuthService provides business logic for email/password accounts
type AuthService struct {
	userRepo repositories.UserRepository
	jwt      *auth.JWTManager
	revoker  TokenRevoker
	log      *slog.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo repositories.UserRepository, jwt *auth.JWTManager, revoker TokenRevoker) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		jwt:      jwt,
		revoker:  revoker,
		log:      slog.Default().With(slog.String("component", "auth_service")),
	}
}

// Register creates an account and signs it in
func (s *AuthService) Register(ctx context.Context, email, password string) (*Session, error) {
	user, err := createLocalUser(ctx, s.userRepo, email, password, entities.RoleUser)
	if err != nil {
		return nil, err
	}
	metrics.AccountsRegistered.Inc()
	s.log.Info("account registered", slog.String("user_id", user.ID))
	return s.issue(user)
}

// Login checks the password and issues a new token.
// Unknown emails and wrong passwords both return ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		switch {
		case IsUserNotFound(err):
			s.log.Info("login failed", slog.String("reason", GetUserLookupFailureReason(err)))
			return nil, ErrInvalidCredentials
		case IsUserInactive(err):
			s.log.Info("login failed", slog.String("reason", GetUserLookupFailureReason(err)))
			return nil, ErrAccountDisabled
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !user.VerifyPassword(password) {
		s.log.Info("login failed", slog.String("reason", "bad_password"), slog.String("user_id", user.ID))
		return nil, ErrInvalidCredentials
	}

	now := time.Now()
	if err := s.userRepo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		s.log.Warn("failed to update last login", slog.String("user_id", user.ID), slog.String("error", err.Error()))
	} else {
		user.LastLogin = &now
	}

	return s.issue(user)
}

// Logout revokes the caller's token until it would have expired anyway
func (s *AuthService) Logout(ctx context.Context, user *auth.UserContext) error {
	if user.TokenID == "" {
		return nil
	}
	until := user.ExpiresAt
	if until.IsZero() {
		until = time.Now().Add(24 * time.Hour)
	}
	if err := s.revoker.Revoke(ctx, user.TokenID, until); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// Authenticate validates an access token and checks it was not signed out
func (s *AuthService) Authenticate(ctx context.Context, token string) (*auth.UserContext, error) {
	claims, err := s.jwt.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	revoked, err := s.revoker.IsRevoked(ctx, claims.TokenID)
	if err != nil {
		return nil, fmt.Errorf("failed to check token revocation: %w", err)
	}
	if revoked {
		return nil, ErrTokenRevoked
	}
	return auth.UserFromClaims(claims), nil
}

// IssueFor mints a session for an existing account without its password.
// Used by operator tooling; disabled accounts are refused.
func (s *AuthService) IssueFor(ctx context.Context, email string) (*Session, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByEmail(ctx, email)
	if IsUserInactive(err) {
		return nil, ErrAccountDisabled
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if !user.Active() {
		return nil, ErrAccountDisabled
	}
	return s.issue(user)
}

// Revoke denylists a token until it would have expired anyway
func (s *AuthService) Revoke(ctx context.Context, token string) (*auth.Claims, error) {
	claims, err := auth.ParseUnverified(token)
	if err != nil {
		return nil, err
	}
	if err := s.revoker.Revoke(ctx, claims.TokenID, claims.Expiry()); err != nil {
		return nil, fmt.Errorf("failed to revoke token: %w", err)
	}
	return claims, nil
}

// Me returns the account behind an authenticated request
func (s *AuthService) Me(ctx context.Context, userID string) (*entities.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *AuthService) issue(user *entities.User) (*Session, error) {
	tokenID, err := auth.GenerateTokenID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate token id: %w", err)
	}
	token, expiresAt, err := s.jwt.GenerateToken(user, tokenID)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = nil
	return &Session{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// createLocalUser validates credentials and stores a new account
func createLocalUser(ctx context.Context, repo repositories.UserRepository, email, password string, role entities.Role) (*entities.User, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if len(password) < entities.MinPasswordLength {
		return nil, fmt.Errorf("%w: must be at least %d characters", ErrWeakPassword, entities.MinPasswordLength)
	}

	exists, err := repo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check if user exists: %w", err)
	}
	if exists {
		return nil, ErrEmailTaken
	}

	hash, err := entities.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &entities.User{
		Email:        email,
		PasswordHash: &hash,
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := repo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}
