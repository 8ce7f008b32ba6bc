package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/devilmonastery/jobfinder/internal/domain/entities"
	"github.com/devilmonastery/jobfinder/internal/domain/repositories"
	"github.com/devilmonastery/jobfinder/internal/pkg/metrics"
)

// ProfileRepository implements repositories.ProfileRepository for PostgreSQL
type ProfileRepository struct {
	db  *sqlx.DB
	log *slog.Logger
}

// NewProfileRepository creates a new PostgreSQL profile repository
func NewProfileRepository(db *sqlx.DB) repositories.ProfileRepository {
	return &ProfileRepository{
		db:  db,
		log: slog.Default().With(slog.String("repo", "profile")),
	}
}

type profileRow struct {
	UserID        string         `db:"user_id"`
	Name          string         `db:"name"`
	City          string         `db:"city"`
	Education     string         `db:"education"`
	PreferredRole string         `db:"preferred_role"`
	Experience    string         `db:"experience"`
	Skills        []byte         `db:"skills"` // JSONB array
	Bio           string         `db:"bio"`
	AvatarURL     sql.NullString `db:"avatar_url"`
	CreatedAt     time.Time      `db:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at"`
}

func (r *profileRow) toEntity() (*entities.Profile, error) {
	p := &entities.Profile{
		UserID:        r.UserID,
		Name:          r.Name,
		City:          r.City,
		Education:     r.Education,
		PreferredRole: r.PreferredRole,
		Experience:    r.Experience,
		Bio:           r.Bio,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
	if len(r.Skills) > 0 {
		if err := json.Unmarshal(r.Skills, &p.Skills); err != nil {
			return nil, fmt.Errorf("failed to decode skills: %w", err)
		}
	}
	if r.AvatarURL.Valid {
		p.AvatarURL = &r.AvatarURL.String
	}
	return p, nil
}

// Upsert creates or replaces a profile. created_at survives replacement.
func (r *ProfileRepository) Upsert(ctx context.Context, profile *entities.Profile) error {
	start := time.Now()
	var err error
	defer func() {
		metrics.RecordDBOperation("profile", "upsert", time.Since(start), 1, err)
	}()

	skills := profile.Skills
	if skills == nil {
		skills = []string{}
	}
	skillsJSON, err := json.Marshal(skills)
	if err != nil {
		return fmt.Errorf("failed to encode skills: %w", err)
	}

	now := time.Now()
	profile.UpdatedAt = now

	query := `
		INSERT INTO profiles (
			user_id, name, city, education, preferred_role, experience, skills, bio, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
		ON CONFLICT (user_id) DO UPDATE SET
			name = EXCLUDED.name,
			city = EXCLUDED.city,
			education = EXCLUDED.education,
			preferred_role = EXCLUDED.preferred_role,
			experience = EXCLUDED.experience,
			skills = EXCLUDED.skills,
			bio = EXCLUDED.bio,
			updated_at = EXCLUDED.updated_at
		RETURNING created_at, avatar_url`

	var avatar sql.NullString
	err = r.db.QueryRowxContext(ctx, query,
		profile.UserID, profile.Name, profile.City, profile.Education,
		profile.PreferredRole, profile.Experience, skillsJSON, profile.Bio, now,
	).Scan(&profile.CreatedAt, &avatar)
	if err != nil {
		return fmt.Errorf("failed to upsert profile: %w", err)
	}
	if avatar.Valid {
		profile.AvatarURL = &avatar.String
	}

	r.log.Debug("profile saved", slog.String("user_id", profile.UserID))
	return nil
}

// Get retrieves a profile by user ID
func (r *ProfileRepository) Get(ctx context.Context, userID string) (*entities.Profile, error) {
	start := time.Now()
	var err error
	var rowCount int64
	defer func() {
		metrics.RecordDBOperation("profile", "get", time.Since(start), rowCount, err)
	}()

	var row profileRow
	err = r.db.GetContext(ctx, &row, `
		SELECT user_id, name, city, education, preferred_role, experience, skills, bio,
		       avatar_url, created_at, updated_at
		FROM profiles
		WHERE user_id = $1`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = repositories.ErrProfileNotFound
			return nil, err
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	rowCount = 1
	return row.toEntity()
}

// Exists checks whether a profile has been created for the user
func (r *ProfileRepository) Exists(ctx context.Context, userID string) (bool, error) {
	start := time.Now()
	var err error
	defer func() {
		metrics.RecordDBOperation("profile", "exists", time.Since(start), -1, err)
	}()

	var exists bool
	err = r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM profiles WHERE user_id = $1)`, userID)
	if err != nil {
		return false, fmt.Errorf("failed to check profile existence: %w", err)
	}
	return exists, nil
}

// SetAvatar stores the avatar URL on an existing profile
func (r *ProfileRepository) SetAvatar(ctx context.Context, userID, avatarURL string) error {
	start := time.Now()
	var err error
	var rowsAffected int64
	defer func() {
		metrics.RecordDBOperation("profile", "set_avatar", time.Since(start), rowsAffected, err)
	}()

	result, err := r.db.ExecContext(ctx,
		`UPDATE profiles SET avatar_url = $1, updated_at = $2 WHERE user_id = $3`,
		avatarURL, time.Now(), userID)
	if err != nil {
		return fmt.Errorf("failed to set avatar: %w", err)
	}

	rowsAffected, err = result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		err = repositories.ErrProfileNotFound
		return err
	}
	return nil
}
