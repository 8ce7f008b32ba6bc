package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/devilmonastery/jobfinder/internal/domain/entities"
	"github.com/devilmonastery/jobfinder/internal/domain/repositories"
	"github.com/devilmonastery/jobfinder/internal/pkg/metrics"
	"github.com/devilmonastery/jobfinder/internal/pkg/textutil"
	"github.com/devilmonastery/jobfinder/internal/render"
	"github.com/devilmonastery/jobfinder/internal/upload"
)

// ImageUploader stores an image and returns where it can be fetched
type ImageUploader interface {
	Upload(ctx context.Context, filename string, image io.Reader) (*upload.Result, error)
}

// ProfileInput is what profile setup submits
type ProfileInput struct {
	Name          string   `json:"name"`
	City          string   `json:"city"`
	Education     string   `json:"education"`
	PreferredRole string   `json:"preferred_role"`
	Experience    string   `json:"experience"`
	Skills        []string `json:"skills"`
	Bio           string   `json:"bio"`
}

// ProfileService handles business logic for profile documents
type ProfileService struct {
	profileRepo repositories.ProfileRepository
	uploader    ImageUploader
	log         *slog.Logger
}

// NewProfileService creates a new profile service. uploader may be nil
// when avatar upload is not configured.
func NewProfileService(profileRepo repositories.ProfileRepository, uploader ImageUploader) *ProfileService {
	return &ProfileService{
		profileRepo: profileRepo,
		uploader:    uploader,
		log:         slog.Default().With(slog.String("component", "profile_service")),
	}
}

// Save validates the input and creates or replaces the user's profile.
// The first successful save is what completes account setup.
func (s *ProfileService) Save(ctx context.Context, userID string, in ProfileInput) (*entities.Profile, error) {
	profile := &entities.Profile{
		UserID:        userID,
		Name:          strings.TrimSpace(in.Name),
		City:          strings.TrimSpace(in.City),
		Education:     strings.TrimSpace(in.Education),
		PreferredRole: strings.TrimSpace(in.PreferredRole),
		Experience:    strings.TrimSpace(in.Experience),
		Skills:        textutil.NormalizeSkills(in.Skills),
		Bio:           strings.TrimSpace(in.Bio),
		UpdatedAt:     time.Now(),
	}

	if missing := profile.MissingFields(); len(missing) > 0 {
		return nil, &ProfileIncompleteError{Missing: missing}
	}

	fields := []struct {
		name    string
		value   *string
		options []string
	}{
		{"education", &profile.Education, entities.EducationOptions},
		{"preferred_role", &profile.PreferredRole, entities.RoleOptions},
		{"experience", &profile.Experience, entities.ExperienceOptions},
	}
	for _, f := range fields {
		canonical, suggestion, ok := matchOption(*f.value, f.options)
		if !ok {
			return nil, &InvalidOptionError{Field: f.name, Value: *f.value, Suggestion: suggestion}
		}
		*f.value = canonical
	}

	if err := s.profileRepo.Upsert(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}

	metrics.ProfilesSaved.Inc()
	s.log.Debug("profile saved", slog.String("user_id", userID))
	return profile, nil
}

// Exists reports whether the user has completed profile setup
func (s *ProfileService) Exists(ctx context.Context, userID string) (bool, error) {
	exists, err := s.profileRepo.Exists(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("failed to check profile: %w", err)
	}
	return exists, nil
}

// Get returns the user's profile; repositories.ErrProfileNotFound before setup
func (s *ProfileService) Get(ctx context.Context, userID string) (*entities.Profile, error) {
	profile, err := s.profileRepo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrProfileNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return profile, nil
}

// SetAvatar uploads an image and stores its URL on the user's profile
func (s *ProfileService) SetAvatar(ctx context.Context, userID, filename string, image io.Reader) (*entities.Profile, error) {
	if s.uploader == nil {
		return nil, upload.ErrNotConfigured
	}

	exists, err := s.Exists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, repositories.ErrProfileNotFound
	}

	res, err := s.uploader.Upload(ctx, filename, image)
	if err != nil {
		return nil, fmt.Errorf("failed to upload avatar: %w", err)
	}

	if err := s.profileRepo.SetAvatar(ctx, userID, res.SecureURL); err != nil {
		return nil, fmt.Errorf("failed to store avatar: %w", err)
	}
	s.log.Info("avatar updated", slog.String("user_id", userID), slog.String("public_id", res.PublicID))

	return s.Get(ctx, userID)
}

// BioHTML renders a profile bio for display
func BioHTML(profile *entities.Profile) string {
	return render.HTML(profile.Bio)
}
