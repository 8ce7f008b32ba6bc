package repositories

import (
	"context"

	"github.com/devilmonastery/jobfinder/internal/domain/entities"
)

// BookmarkRepository defines the interface for saved job access
type BookmarkRepository interface {
	// Create saves a bookmark; saving an already bookmarked job is a no-op
	Create(ctx context.Context, bookmark *entities.Bookmark) error

	// Delete removes a bookmark; ErrBookmarkNotFound if none exists
	Delete(ctx context.Context, userID, jobID string) error

	// Exists checks whether the user has bookmarked the job
	Exists(ctx context.Context, userID, jobID string) (bool, error)

	// ListByUser returns a user's bookmarks, newest first
	ListByUser(ctx context.Context, userID string, opts ListBookmarksOptions) ([]*entities.Bookmark, int64, error)

	// CountByUser returns how many jobs the user has bookmarked
	CountByUser(ctx context.Context, userID string) (int64, error)
}

// ListBookmarksOptions provides pagination options for listing bookmarks
type ListBookmarksOptions struct {
	Limit  int
	Offset int
}
