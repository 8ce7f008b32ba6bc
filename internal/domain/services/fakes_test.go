package services

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/devilmonastery/jobfinder/internal/domain/entities"
	"github.com/devilmonastery/jobfinder/internal/domain/repositories"
	"github.com/devilmonastery/jobfinder/internal/jsearch"
	"github.com/devilmonastery/jobfinder/internal/upload"
)

type memUsers struct {
	mu    sync.Mutex
	next  int
	users map[string]*entities.User
}

func newMemUsers() *memUsers {
	return &memUsers{users: map[string]*entities.User{}}
}

func (m *memUsers) Create(_ context.Context, user *entities.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, user.Email) {
			return repositories.ErrDuplicateEmail
		}
	}
	m.next++
	user.ID = fmt.Sprint(m.next)
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *memUsers) get(match func(*entities.User) bool) (*entities.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if match(u) {
			if !u.IsActive {
				return nil, repositories.ErrUserInactive
			}
			cp := *u
			return &cp, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (m *memUsers) GetByID(_ context.Context, id string) (*entities.User, error) {
	return m.get(func(u *entities.User) bool { return u.ID == id })
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*entities.User, error) {
	return m.get(func(u *entities.User) bool { return strings.EqualFold(u.Email, strings.TrimSpace(email)) })
}

func (m *memUsers) Update(_ context.Context, user *entities.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.ID]; !ok {
		return repositories.ErrUserNotFound
	}
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *memUsers) List(_ context.Context, opts repositories.ListUsersOptions) ([]*entities.User, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entities.User
	for _, u := range m.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	total := int64(len(out))
	if opts.Offset < len(out) {
		out = out[opts.Offset:]
	} else {
		out = nil
	}
	if len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, total, nil
}

func (m *memUsers) UpdateLastLogin(_ context.Context, userID string, t time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[userID]; ok {
		u.LastLogin = &t
	}
	return nil
}

func (m *memUsers) ExistsByEmail(_ context.Context, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

type memProfiles struct {
	mu       sync.Mutex
	profiles map[string]*entities.Profile
	err      error
}

func newMemProfiles() *memProfiles {
	return &memProfiles{profiles: map[string]*entities.Profile{}}
}

func (m *memProfiles) Upsert(_ context.Context, p *entities.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	cp := *p
	m.profiles[p.UserID] = &cp
	return nil
}

func (m *memProfiles) Get(_ context.Context, userID string) (*entities.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.profiles[userID]
	if !ok {
		return nil, repositories.ErrProfileNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memProfiles) Exists(_ context.Context, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	_, ok := m.profiles[userID]
	return ok, nil
}

func (m *memProfiles) SetAvatar(_ context.Context, userID, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[userID]
	if !ok {
		return repositories.ErrProfileNotFound
	}
	p.AvatarURL = &url
	return nil
}

type memBookmarks struct {
	mu    sync.Mutex
	items []*entities.Bookmark
}

func (m *memBookmarks) Create(_ context.Context, b *entities.Bookmark) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, it := range m.items {
		if it.UserID == b.UserID && it.JobID == b.JobID {
			return nil
		}
	}
	b.BookmarkedAt = time.Now()
	cp := *b
	m.items = append(m.items, &cp)
	return nil
}

func (m *memBookmarks) Delete(_ context.Context, userID, jobID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, it := range m.items {
		if it.UserID == userID && it.JobID == jobID {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return nil
		}
	}
	return repositories.ErrBookmarkNotFound
}

func (m *memBookmarks) Exists(_ context.Context, userID, jobID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, it := range m.items {
		if it.UserID == userID && it.JobID == jobID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memBookmarks) ListByUser(_ context.Context, userID string, opts repositories.ListBookmarksOptions) ([]*entities.Bookmark, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entities.Bookmark
	for i := len(m.items) - 1; i >= 0; i-- {
		if m.items[i].UserID == userID {
			out = append(out, m.items[i])
		}
	}
	return out, int64(len(out)), nil
}

func (m *memBookmarks) CountByUser(ctx context.Context, userID string) (int64, error) {
	_, n, err := m.ListByUser(ctx, userID, repositories.ListBookmarksOptions{})
	return n, err
}

type memRevoker struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

func (m *memRevoker) Revoke(_ context.Context, id string, until time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.revoked == nil {
		m.revoked = map[string]time.Time{}
	}
	m.revoked[id] = until
	return nil
}

func (m *memRevoker) IsRevoked(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.revoked[id]
	return ok, nil
}

type fakeSearcher struct {
	mu      sync.Mutex
	results map[string][]*entities.Job
	details map[string]*entities.Job
	queries []jsearch.SearchParams
	err     error
}

func (f *fakeSearcher) Search(_ context.Context, p jsearch.SearchParams) ([]*entities.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, p)
	if f.err != nil {
		return nil, f.err
	}
	return f.results[p.Query], nil
}

func (f *fakeSearcher) JobDetails(_ context.Context, id string) (*entities.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if job, ok := f.details[id]; ok {
		return job, nil
	}
	return nil, jsearch.ErrJobNotFound
}

func (f *fakeSearcher) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}

type mapCache struct {
	searches map[string][]*entities.Job
	jobs     map[string]*entities.Job
}

func newMapCache() *mapCache {
	return &mapCache{searches: map[string][]*entities.Job{}, jobs: map[string]*entities.Job{}}
}

func (c *mapCache) key(q, country string, page int) string {
	return fmt.Sprintf("%s|%s|%d", strings.ToLower(q), country, page)
}

func (c *mapCache) GetSearch(_ context.Context, q, country string, page int) ([]*entities.Job, bool, error) {
	v, ok := c.searches[c.key(q, country, page)]
	return v, ok, nil
}

func (c *mapCache) PutSearch(_ context.Context, q, country string, page int, jobs []*entities.Job) error {
	c.searches[c.key(q, country, page)] = jobs
	return nil
}

func (c *mapCache) GetJob(_ context.Context, id string) (*entities.Job, bool, error) {
	v, ok := c.jobs[id]
	return v, ok, nil
}

func (c *mapCache) PutJob(_ context.Context, job *entities.Job) error {
	c.jobs[job.ID] = job
	return nil
}

type fakeUploader struct {
	got []byte
	err error
}

func (f *fakeUploader) Upload(_ context.Context, filename string, r io.Reader) (*upload.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	f.got = b
	return &upload.Result{
		PublicID:  "avatars/" + filename,
		SecureURL: "https://res.example.com/demo/image/upload/avatars/" + filename,
	}, nil
}
