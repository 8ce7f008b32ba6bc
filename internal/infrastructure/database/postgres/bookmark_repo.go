package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/devilmonastery/jobfinder/internal/domain/entities"
	"github.com/devilmonastery/jobfinder/internal/domain/repositories"
	"github.com/devilmonastery/jobfinder/internal/pkg/idgen"
	"github.com/devilmonastery/jobfinder/internal/pkg/metrics"
)

// BookmarkRepository implements repositories.BookmarkRepository for PostgreSQL
type BookmarkRepository struct {
	db  *sqlx.DB
	log *slog.Logger
}

// NewBookmarkRepository creates a new PostgreSQL bookmark repository
func NewBookmarkRepository(db *sqlx.DB) repositories.BookmarkRepository {
	return &BookmarkRepository{
		db:  db,
		log: slog.Default().With(slog.String("repo", "bookmark")),
	}
}

const bookmarkColumns = `id, user_id, job_id, title, company, location, employment_type, salary, bookmarked_at`

// Create saves a bookmark. Saving a job twice keeps the first bookmark.
func (r *BookmarkRepository) Create(ctx context.Context, bookmark *entities.Bookmark) error {
	start := time.Now()
	var err error
	var rowsAffected int64
	defer func() {
		metrics.RecordDBOperation("bookmark", "create", time.Since(start), rowsAffected, err)
	}()

	if bookmark.ID == "" {
		bookmark.ID = idgen.GenerateID()
	}
	if bookmark.BookmarkedAt.IsZero() {
		bookmark.BookmarkedAt = time.Now()
	}

	query := `INSERT INTO bookmarks (` + bookmarkColumns + `)
		VALUES (:id, :user_id, :job_id, :title, :company, :location, :employment_type, :salary, :bookmarked_at)
		ON CONFLICT (user_id, job_id) DO NOTHING`

	result, err := r.db.NamedExecContext(ctx, query, bookmark)
	if err != nil {
		return fmt.Errorf("failed to create bookmark: %w", err)
	}
	rowsAffected, _ = result.RowsAffected()
	return nil
}

// Delete removes a bookmark
func (r *BookmarkRepository) Delete(ctx context.Context, userID, jobID string) error {
	start := time.Now()
	var err error
	var rowsAffected int64
	defer func() {
		metrics.RecordDBOperation("bookmark", "delete", time.Since(start), rowsAffected, err)
	}()

	result, err := r.db.ExecContext(ctx, `DELETE FROM bookmarks WHERE user_id = $1 AND job_id = $2`, userID, jobID)
	if err != nil {
		return fmt.Errorf("failed to delete bookmark: %w", err)
	}
	rowsAffected, err = result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		err = repositories.ErrBookmarkNotFound
		return err
	}
	return nil
}

// Exists checks whether the user has bookmarked the job
func (r *BookmarkRepository) Exists(ctx context.Context, userID, jobID string) (bool, error) {
	start := time.Now()
	var err error
	defer func() {
		metrics.RecordDBOperation("bookmark", "exists", time.Since(start), -1, err)
	}()

	var exists bool
	err = r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM bookmarks WHERE user_id = $1 AND job_id = $2)`, userID, jobID)
	if err != nil {
		return false, fmt.Errorf("failed to check bookmark: %w", err)
	}
	return exists, nil
}

// ListByUser returns a user's bookmarks, newest first
func (r *BookmarkRepository) ListByUser(ctx context.Context, userID string, opts repositories.ListBookmarksOptions) ([]*entities.Bookmark, int64, error) {
	start := time.Now()
	var err error
	var rowCount int64
	defer func() {
		metrics.RecordDBOperation("bookmark", "list", time.Since(start), rowCount, err)
	}()

	var total int64
	err = r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM bookmarks WHERE user_id = $1`, userID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count bookmarks: %w", err)
	}

	limit := opts.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var bookmarks []*entities.Bookmark
	err = r.db.SelectContext(ctx, &bookmarks, `
		SELECT `+bookmarkColumns+`
		FROM bookmarks
		WHERE user_id = $1
		ORDER BY bookmarked_at DESC, id DESC
		LIMIT $2 OFFSET $3`, userID, limit, opts.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bookmarks: %w", err)
	}

	rowCount = int64(len(bookmarks))
	return bookmarks, total, nil
}

// CountByUser returns how many jobs the user has bookmarked
func (r *BookmarkRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	start := time.Now()
	var err error
	defer func() {
		metrics.RecordDBOperation("bookmark", "count", time.Since(start), -1, err)
	}()

	var count int64
	err = r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM bookmarks WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count bookmarks: %w", err)
	}
	return count, nil
}
