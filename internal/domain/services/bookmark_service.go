package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/devilmonastery/jobfinder/internal/domain/entities"
	"github.com/devilmonastery/jobfinder/internal/domain/repositories"
	"github.com/devilmonastery/jobfinder/internal/pkg/metrics"
)

// BookmarkService handles saved jobs
type BookmarkService struct {
	bookmarkRepo repositories.BookmarkRepository
}

// NewBookmarkService creates a new bookmark service
func NewBookmarkService(bookmarkRepo repositories.BookmarkRepository) *BookmarkService {
	return &BookmarkService{bookmarkRepo: bookmarkRepo}
}

// Toggle bookmarks the job, or removes the bookmark if it already exists.
// It returns whether the job is bookmarked afterwards.
func (s *BookmarkService) Toggle(ctx context.Context, userID string, job *entities.Job) (bool, error) {
	if job == nil || strings.TrimSpace(job.ID) == "" {
		return false, fmt.Errorf("job id is required")
	}

	exists, err := s.bookmarkRepo.Exists(ctx, userID, job.ID)
	if err != nil {
		return false, fmt.Errorf("failed to check bookmark: %w", err)
	}

	if exists {
		if err := s.bookmarkRepo.Delete(ctx, userID, job.ID); err != nil {
			return true, fmt.Errorf("failed to remove bookmark: %w", err)
		}
		metrics.BookmarkToggles.WithLabelValues("removed").Inc()
		return false, nil
	}

	if err := s.bookmarkRepo.Create(ctx, entities.NewBookmark(userID, job)); err != nil {
		return false, fmt.Errorf("failed to create bookmark: %w", err)
	}
	metrics.BookmarkToggles.WithLabelValues("added").Inc()
	return true, nil
}

// IsBookmarked reports whether the user saved the job
func (s *BookmarkService) IsBookmarked(ctx context.Context, userID, jobID string) (bool, error) {
	exists, err := s.bookmarkRepo.Exists(ctx, userID, jobID)
	if err != nil {
		return false, fmt.Errorf("failed to check bookmark: %w", err)
	}
	return exists, nil
}

// List returns the user's bookmarks, newest first, and the total count
func (s *BookmarkService) List(ctx context.Context, userID string, limit, offset int) ([]*entities.Bookmark, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	list, total, err := s.bookmarkRepo.ListByUser(ctx, userID, repositories.ListBookmarksOptions{Limit: limit, Offset: offset})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bookmarks: %w", err)
	}
	return list, total, nil
}

// Remove deletes a bookmark; repositories.ErrBookmarkNotFound if there is none
func (s *BookmarkService) Remove(ctx context.Context, userID, jobID string) error {
	return s.bookmarkRepo.Delete(ctx, userID, jobID)
}

// Count returns how many jobs the user has saved
func (s *BookmarkService) Count(ctx context.Context, userID string) (int64, error) {
	n, err := s.bookmarkRepo.CountByUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count bookmarks: %w", err)
	}
	return n, nil
}
