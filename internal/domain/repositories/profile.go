package repositories

import (
	"context"

	"github.com/devilmonastery/jobfinder/internal/domain/entities"
)

// ProfileRepository defines the interface for profile document access
type ProfileRepository interface {
	// Upsert creates or replaces the profile for profile.UserID
	Upsert(ctx context.Context, profile *entities.Profile) error

	// Get retrieves a profile; ErrProfileNotFound if setup was never completed
	Get(ctx context.Context, userID string) (*entities.Profile, error)

	// Exists checks whether a profile has been created for the user
	Exists(ctx context.Context, userID string) (bool, error)

	// SetAvatar stores the avatar URL on an existing profile
	SetAvatar(ctx context.Context, userID, avatarURL string) error
}
