package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/devilmonastery/jobfinder/internal/domain/entities"
	"github.com/devilmonastery/jobfinder/internal/domain/repositories"
	"github.com/devilmonastery/jobfinder/internal/jobs"
	"github.com/devilmonastery/jobfinder/internal/jsearch"
)

// JobSearcher is the remote job search API
type JobSearcher interface {
	Search(ctx context.Context, params jsearch.SearchParams) ([]*entities.Job, error)
	JobDetails(ctx context.Context, jobID string) (*entities.Job, error)
}

// JobCache keeps recent search results and job details
type JobCache interface {
	GetSearch(ctx context.Context, query, country string, page int) ([]*entities.Job, bool, error)
	PutSearch(ctx context.Context, query, country string, page int, jobs []*entities.Job) error
	GetJob(ctx context.Context, jobID string) (*entities.Job, bool, error)
	PutJob(ctx context.Context, job *entities.Job) error
}

// JobService searches jobs on behalf of users
type JobService struct {
	searcher    JobSearcher
	cache       JobCache
	profileRepo repositories.ProfileRepository
	country     string
	log         *slog.Logger
}

// NewJobService creates a new job service. cache may be nil.
func NewJobService(searcher JobSearcher, cache JobCache, profileRepo repositories.ProfileRepository, country string) *JobService {
	return &JobService{
		searcher:    searcher,
		cache:       cache,
		profileRepo: profileRepo,
		country:     country,
		log:         slog.Default().With(slog.String("component", "job_service")),
	}
}

// Search runs a query and narrows the results with c
func (s *JobService) Search(ctx context.Context, query string, page int, c jobs.Criteria) ([]*entities.Job, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if page < 1 {
		page = 1
	}

	list, err := s.search(ctx, query, page)
	if err != nil {
		return nil, err
	}
	return jobs.Filter(list, c), nil
}

// HomeFeed searches for the user's preferred role. It returns the query used.
func (s *JobService) HomeFeed(ctx context.Context, userID string, page int, c jobs.Criteria) ([]*entities.Job, string, error) {
	profile, err := s.profileRepo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrProfileNotFound) {
			return nil, "", ErrNoPreferredRole
		}
		return nil, "", fmt.Errorf("failed to get profile: %w", err)
	}
	if strings.TrimSpace(profile.PreferredRole) == "" {
		return nil, "", ErrNoPreferredRole
	}

	list, err := s.Search(ctx, profile.PreferredRole, page, c)
	if err != nil {
		return nil, "", err
	}
	return list, profile.PreferredRole, nil
}

// Details returns one job by id
func (s *JobService) Details(ctx context.Context, jobID string) (*entities.Job, error) {
	if s.cache != nil {
		job, ok, err := s.cache.GetJob(ctx, jobID)
		if err != nil {
			s.log.Warn("job cache read failed", slog.String("job_id", jobID), slog.String("error", err.Error()))
		} else if ok {
			return job, nil
		}
	}

	job, err := s.searcher.JobDetails(ctx, jobID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.PutJob(ctx, job); err != nil {
			s.log.Warn("job cache write failed", slog.String("job_id", jobID), slog.String("error", err.Error()))
		}
	}
	return job, nil
}

func (s *JobService) search(ctx context.Context, query string, page int) ([]*entities.Job, error) {
	if s.cache != nil {
		list, ok, err := s.cache.GetSearch(ctx, query, s.country, page)
		if err != nil {
			s.log.Warn("search cache read failed", slog.String("query", query), slog.String("error", err.Error()))
		} else if ok {
			return list, nil
		}
	}

	list, err := s.searcher.Search(ctx, jsearch.SearchParams{
		Query:   query,
		Page:    page,
		Country: s.country,
	})
	if err != nil {
		return nil, err
	}
	s.log.Debug("job search", slog.String("query", query), slog.Int("page", page), slog.Int("results", len(list)))

	if s.cache != nil {
		if err := s.cache.PutSearch(ctx, query, s.country, page, list); err != nil {
			s.log.Warn("search cache write failed", slog.String("query", query), slog.String("error", err.Error()))
		}
	}
	return list, nil
}
