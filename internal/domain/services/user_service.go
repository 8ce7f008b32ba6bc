package services

import (
	"context"
	"fmt"
	"time"

	"github.com/devilmonastery/jobfinder/internal/domain/entities"
	"github.com/devilmonastery/jobfinder/internal/domain/repositories"
)

// UserService provides account administration
type UserService struct {
	userRepo repositories.UserRepository
}

// NewUserService creates a new user service
func NewUserService(userRepo repositories.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// CreateUser creates an account with the given role
func (s *UserService) CreateUser(ctx context.Context, email, password string, role entities.Role) (*entities.User, error) {
	if role != entities.RoleUser && role != entities.RoleAdmin {
		return nil, fmt.Errorf("invalid role: %s", role)
	}
	user, err := createLocalUser(ctx, s.userRepo, email, password, role)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = nil
	return user, nil
}

// ListUsers returns a page of users and the total matching count
func (s *UserService) ListUsers(ctx context.Context, opts repositories.ListUsersOptions) ([]*entities.User, int64, error) {
	if opts.Limit <= 0 || opts.Limit > 100 {
		opts.Limit = 50
	}
	if opts.Offset < 0 {
		opts.Offset = 0
	}
	users, total, err := s.userRepo.List(ctx, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return users, total, nil
}

// SetRole changes a user's role
func (s *UserService) SetRole(ctx context.Context, userID string, role entities.Role) (*entities.User, error) {
	if role != entities.RoleUser && role != entities.RoleAdmin {
		return nil, fmt.Errorf("invalid role: %s", role)
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	user.Role = role
	user.UpdatedAt = time.Now()
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

// ResetPassword replaces a user's password
func (s *UserService) ResetPassword(ctx context.Context, userID, password string) error {
	if len(password) < entities.MinPasswordLength {
		return fmt.Errorf("%w: must be at least %d characters", ErrWeakPassword, entities.MinPasswordLength)
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	hash, err := entities.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = &hash
	user.UpdatedAt = time.Now()
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}
