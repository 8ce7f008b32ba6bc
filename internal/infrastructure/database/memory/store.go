// Package memory implements the repositories in process memory.
// It backs the server's "memory" database driver for local runs and tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/devilmonastery/jobfinder/internal/domain/entities"
	"github.com/devilmonastery/jobfinder/internal/domain/repositories"
	"github.com/devilmonastery/jobfinder/internal/pkg/idgen"
)

// New returns repositories sharing one in-memory store
func New() *repositories.Repositories {
	s := &store{
		users:     map[string]entities.User{},
		profiles:  map[string]entities.Profile{},
		bookmarks: map[string][]entities.Bookmark{},
	}
	return &repositories.Repositories{
		Users:     (*userRepo)(s),
		Profiles:  (*profileRepo)(s),
		Bookmarks: (*bookmarkRepo)(s),
	}
}

type store struct {
	mu        sync.RWMutex
	users     map[string]entities.User
	profiles  map[string]entities.Profile
	bookmarks map[string][]entities.Bookmark // by user id, oldest first
}

type userRepo store

func (r *userRepo) Create(_ context.Context, user *entities.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, user.Email) {
			return repositories.ErrDuplicateEmail
		}
	}
	if user.ID == "" {
		user.ID = idgen.GenerateID()
	}
	now := time.Now()
	user.CreatedAt, user.UpdatedAt = now, now
	r.users[user.ID] = *user
	return nil
}

func (r *userRepo) find(match func(entities.User) bool) (*entities.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if match(u) {
			if !u.IsActive {
				return nil, repositories.ErrUserInactive
			}
			return &u, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *userRepo) GetByID(_ context.Context, id string) (*entities.User, error) {
	return r.find(func(u entities.User) bool { return u.ID == id })
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*entities.User, error) {
	email = strings.TrimSpace(email)
	return r.find(func(u entities.User) bool { return strings.EqualFold(u.Email, email) })
}

func (r *userRepo) Update(_ context.Context, user *entities.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return repositories.ErrUserNotFound
	}
	for id, u := range r.users {
		if id != user.ID && strings.EqualFold(u.Email, user.Email) {
			return repositories.ErrDuplicateEmail
		}
	}
	user.UpdatedAt = time.Now()
	r.users[user.ID] = *user
	return nil
}

func (r *userRepo) List(_ context.Context, opts repositories.ListUsersOptions) ([]*entities.User, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*entities.User
	for _, u := range r.users {
		if opts.Role != nil && u.Role != *opts.Role {
			continue
		}
		if opts.IsActive != nil && u.IsActive != *opts.IsActive {
			continue
		}
		if opts.Search != "" && !strings.Contains(strings.ToLower(u.Email), strings.ToLower(opts.Search)) {
			continue
		}
		u := u
		out = append(out, &u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	total := int64(len(out))
	return page(out, opts.Limit, opts.Offset), total, nil
}

func (r *userRepo) UpdateLastLogin(_ context.Context, userID string, loginTime time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return repositories.ErrUserNotFound
	}
	u.LastLogin = &loginTime
	r.users[userID] = u
	return nil
}

func (r *userRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, strings.TrimSpace(email)) {
			return true, nil
		}
	}
	return false, nil
}

type profileRepo store

func (r *profileRepo) Upsert(_ context.Context, profile *entities.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	if existing, ok := r.profiles[profile.UserID]; ok {
		profile.CreatedAt = existing.CreatedAt
		profile.AvatarURL = existing.AvatarURL
	} else {
		profile.CreatedAt = now
	}
	profile.UpdatedAt = now
	cp := *profile
	cp.Skills = append([]string(nil), profile.Skills...)
	r.profiles[profile.UserID] = cp
	return nil
}

func (r *profileRepo) Get(_ context.Context, userID string) (*entities.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.profiles[userID]
	if !ok {
		return nil, repositories.ErrProfileNotFound
	}
	p.Skills = append([]string(nil), p.Skills...)
	return &p, nil
}

func (r *profileRepo) Exists(_ context.Context, userID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.profiles[userID]
	return ok, nil
}

func (r *profileRepo) SetAvatar(_ context.Context, userID, avatarURL string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[userID]
	if !ok {
		return repositories.ErrProfileNotFound
	}
	p.AvatarURL = &avatarURL
	p.UpdatedAt = time.Now()
	r.profiles[userID] = p
	return nil
}

type bookmarkRepo store

func (r *bookmarkRepo) Create(_ context.Context, bookmark *entities.Bookmark) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bookmarks[bookmark.UserID] {
		if b.JobID == bookmark.JobID {
			return nil
		}
	}
	if bookmark.ID == "" {
		bookmark.ID = idgen.GenerateID()
	}
	bookmark.BookmarkedAt = time.Now()
	r.bookmarks[bookmark.UserID] = append(r.bookmarks[bookmark.UserID], *bookmark)
	return nil
}

func (r *bookmarkRepo) Delete(_ context.Context, userID, jobID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.bookmarks[userID]
	for i, b := range list {
		if b.JobID == jobID {
			r.bookmarks[userID] = append(list[:i:i], list[i+1:]...)
			return nil
		}
	}
	return repositories.ErrBookmarkNotFound
}

func (r *bookmarkRepo) Exists(_ context.Context, userID, jobID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, b := range r.bookmarks[userID] {
		if b.JobID == jobID {
			return true, nil
		}
	}
	return false, nil
}

func (r *bookmarkRepo) ListByUser(_ context.Context, userID string, opts repositories.ListBookmarksOptions) ([]*entities.Bookmark, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := r.bookmarks[userID]
	out := make([]*entities.Bookmark, 0, len(list))
	for i := len(list) - 1; i >= 0; i-- {
		b := list[i]
		out = append(out, &b)
	}
	return page(out, opts.Limit, opts.Offset), int64(len(list)), nil
}

func (r *bookmarkRepo) CountByUser(_ context.Context, userID string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.bookmarks[userID])), nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
