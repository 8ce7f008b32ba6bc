package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devilmonastery/jobfinder/internal/api"
	"github.com/devilmonastery/jobfinder/internal/auth"
	"github.com/devilmonastery/jobfinder/internal/client"
	"github.com/devilmonastery/jobfinder/internal/domain/services"
	memcache "github.com/devilmonastery/jobfinder/internal/infrastructure/cache/memory"
	memdb "github.com/devilmonastery/jobfinder/internal/infrastructure/database/memory"
	"github.com/devilmonastery/jobfinder/internal/jobs"
	"github.com/devilmonastery/jobfinder/internal/jsearch"
	"github.com/devilmonastery/jobfinder/internal/session"
	"github.com/devilmonastery/jobfinder/server/internal/cookies"
	"github.com/devilmonastery/jobfinder/server/internal/middleware"
)

const searchPayload = `{"status":"OK","data":[
	{"job_id":"a1","job_title":"Backend Developer","employer_name":"Acme","job_employment_type":"FULLTIME","job_city":"Pune"},
	{"job_id":"b2","job_title":"Go Engineer","employer_name":"Globex","job_employment_type":"CONTRACTOR","job_is_remote":true}
]}`

func fakeJSearch(t *testing.T) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/search":
			_, _ = io.WriteString(w, searchPayload)
		case "/job-details":
			if r.URL.Query().Get("job_id") != "a1" {
				_, _ = io.WriteString(w, `{"status":"OK","data":[]}`)
				return
			}
			_, _ = io.WriteString(w, `{"status":"OK","data":[{"job_id":"a1","job_title":"Backend Developer","employer_name":"Acme","job_description":"Build APIs\n• Go\n• SQL"}]}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestAPI(t *testing.T, cookieManager *cookies.Manager) *httptest.Server {
	t.Helper()
	repos := memdb.New()
	authSvc := services.NewAuthService(repos.Users, auth.NewJWTManager("handler-test-key", time.Hour), memcache.NewTokenDenylist())
	jobSvc := services.NewJobService(jsearch.NewClient(jsearch.Config{BaseURL: fakeJSearch(t).URL}), nil, repos.Profiles, "in")

	h := New(Deps{
		Auth:      authSvc,
		Profiles:  services.NewProfileService(repos.Profiles, nil),
		Jobs:      jobSvc,
		Bookmarks: services.NewBookmarkService(repos.Bookmarks),
		Cookies:   cookieManager,
	}, slog.Default())

	var tokenCookies middleware.TokenCookies
	if cookieManager != nil {
		tokenCookies = cookieManager
	}
	router := NewRouter(h, middleware.NewAuthMiddleware(authSvc, tokenCookies), slog.Default())
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

type memTokens struct{ token, tokenID string }

func (m *memTokens) GetToken() (string, error)   { return m.token, nil }
func (m *memTokens) GetTokenID() (string, error) { return m.tokenID, nil }
func (m *memTokens) SaveToken(t, id string) error {
	m.token, m.tokenID = t, id
	return nil
}
func (m *memTokens) ClearToken() error {
	m.token, m.tokenID = "", ""
	return nil
}

func TestAccountToMainFlow(t *testing.T) {
	ctx := context.Background()
	srv := newTestAPI(t, nil)
	tokens := &memTokens{}
	c := client.NewClient(srv.URL, tokens)

	reg, err := c.Register(ctx, "asha@example.com", "secret1")
	require.NoError(t, err)
	require.NotEmpty(t, tokens.token)
	userID := reg.User.ID

	exists, err := c.ProfileExists(ctx, userID)
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = c.HomeFeed(ctx, 1, jobs.Criteria{})
	assert.True(t, client.HasCode(err, api.CodeNoPreferredRole))

	_, err = c.SaveProfile(ctx, api.ProfileRequest{Name: "Asha"})
	assert.True(t, client.HasCode(err, api.CodeProfileIncomplete))

	saved, err := c.SaveProfile(ctx, api.ProfileRequest{
		Name: "Asha", City: "Pune", Education: "Masters",
		PreferredRole: "Backend Developer", Experience: "3-5",
		Skills: []string{"Go", "go"}, Bio: "Hello *world*",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Go"}, saved.Profile.Skills)
	assert.Contains(t, saved.BioHTML, "<em>world</em>")

	exists, err = c.ProfileExists(ctx, userID)
	require.NoError(t, err)
	assert.True(t, exists)

	feed, err := c.HomeFeed(ctx, 1, jobs.Criteria{Type: "Full-time"})
	require.NoError(t, err)
	assert.Equal(t, "Backend Developer", feed.Query)
	require.Len(t, feed.Jobs, 1)
	assert.Equal(t, "a1", feed.Jobs[0].ID)

	job, err := c.Job(ctx, "a1")
	require.NoError(t, err)
	assert.False(t, job.Bookmarked)
	assert.Contains(t, job.DescriptionHTML, "<li>Go</li>")

	toggled, err := c.ToggleBookmark(ctx, "a1")
	require.NoError(t, err)
	assert.True(t, toggled.Bookmarked)

	list, err := c.Bookmarks(ctx, 0, 0)
	require.NoError(t, err)
	require.EqualValues(t, 1, list.Total)
	assert.Equal(t, "Acme", list.Bookmarks[0].Company)

	profile, err := c.Profile(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, profile.BookmarkCount)

	require.NoError(t, c.RemoveBookmark(ctx, "a1"))
	err = c.RemoveBookmark(ctx, "a1")
	assert.True(t, client.HasCode(err, api.CodeNotFound))

	_, err = c.Job(ctx, "nope")
	assert.True(t, client.HasCode(err, api.CodeNotFound))

	stale := tokens.token
	require.NoError(t, c.Logout(ctx))
	_, err = client.NewClient(srv.URL, &memTokens{token: stale}).Profile(ctx)
	assert.True(t, client.HasCode(err, api.CodeUnauthorized), "revoked token must be rejected")
}

func TestProfileExistsOnlyForSelf(t *testing.T) {
	ctx := context.Background()
	srv := newTestAPI(t, nil)

	a := client.NewClient(srv.URL, &memTokens{})
	_, err := a.Register(ctx, "a@example.com", "secret1")
	require.NoError(t, err)
	b, err := client.NewClient(srv.URL, &memTokens{}).Register(ctx, "b@example.com", "secret1")
	require.NoError(t, err)

	_, err = a.ProfileExists(ctx, b.User.ID)
	assert.True(t, client.HasCode(err, api.CodeForbidden))
}

func TestAuthErrors(t *testing.T) {
	ctx := context.Background()
	srv := newTestAPI(t, nil)
	c := client.NewClient(srv.URL, &memTokens{})

	_, err := c.Register(ctx, "not-an-email", "secret1")
	assert.True(t, client.HasCode(err, api.CodeBadRequest))

	_, err = c.Register(ctx, "a@example.com", "secret1")
	require.NoError(t, err)
	_, err = c.Register(ctx, "a@example.com", "secret1")
	assert.True(t, client.HasCode(err, api.CodeEmailTaken))

	_, err = c.Login(ctx, "a@example.com", "wrong-pass")
	assert.True(t, client.HasCode(err, api.CodeInvalidCredentials))

	resp, err := http.Get(srv.URL + "/api/v1/profile")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(middleware.RequestIDHeader))
}

func TestSearchFilterAndPage(t *testing.T) {
	ctx := context.Background()
	srv := newTestAPI(t, nil)
	tokens := &memTokens{}
	c := client.NewClient(srv.URL, tokens)
	_, err := c.Register(ctx, "d@example.com", "secret1")
	require.NoError(t, err)

	tests := []struct {
		name     string
		query    string
		wantPage int
		wantIDs  []string
	}{
		{name: "filter narrows results", query: "q=developer&filter=globex", wantPage: 1, wantIDs: []string{"b2"}},
		{name: "negative page", query: "q=developer&page=-3", wantPage: 1, wantIDs: []string{"a1", "b2"}},
		{name: "zero page", query: "q=developer&page=0", wantPage: 1, wantIDs: []string{"a1", "b2"}},
		{name: "later page", query: "q=developer&page=2", wantPage: 2, wantIDs: []string{"a1", "b2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/v1/jobs/search?"+tt.query, nil)
			require.NoError(t, err)
			req.Header.Set("Authorization", "Bearer "+tokens.token)

			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()
			require.Equal(t, http.StatusOK, resp.StatusCode)

			var body api.JobsResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tt.wantPage, body.Page)
			ids := make([]string, len(body.Jobs))
			for i, j := range body.Jobs {
				ids[i] = j.ID
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}

	list, err := c.SearchJobs(ctx, "developer", 1, jobs.Criteria{Text: "acme"})
	require.NoError(t, err)
	require.Len(t, list.Jobs, 1)
	assert.Equal(t, "a1", list.Jobs[0].ID)
}

func TestProfileOptionsArePublic(t *testing.T) {
	srv := newTestAPI(t, nil)
	opts, err := client.NewClient(srv.URL, nil).ProfileOptions(context.Background())
	require.NoError(t, err)
	assert.Contains(t, opts.Education, "PhD")
	assert.Contains(t, opts.JobTypes, "Remote")
}

func TestSessionCookie(t *testing.T) {
	srv := newTestAPI(t, cookies.NewManager([]byte(strings.Repeat("s", 32)), false, time.Hour))
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	hc := &http.Client{Jar: jar}

	body := strings.NewReader(`{"email":"c@example.com","password":"secret1"}`)
	resp, err := hc.Post(srv.URL+"/api/v1/auth/register", "application/json", body)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, err = hc.Get(srv.URL + "/api/v1/auth/me")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var me struct {
		Email string `json:"email"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&me))
	assert.Equal(t, "c@example.com", me.Email)
}

func TestResolverAgainstAPI(t *testing.T) {
	ctx := context.Background()
	srv := newTestAPI(t, nil)
	c := client.NewClient(srv.URL, &memTokens{})
	reg, err := c.Register(ctx, "d@example.com", "secret1")
	require.NoError(t, err)

	r := session.NewResolver(c, session.WithCheckTimeout(5*time.Second))
	defer r.Close()

	r.Observe(reg.User.Identity())
	require.Eventually(t, func() bool {
		return r.Current().State == session.AuthenticatedIncompleteProfile
	}, 5*time.Second, 10*time.Millisecond)

	_, err = c.SaveProfile(ctx, api.ProfileRequest{
		Name: "D", City: "Goa", Education: "PhD", PreferredRole: "Data Scientist", Experience: "5+",
	})
	require.NoError(t, err)

	r.Observe(nil)
	r.Observe(reg.User.Identity())
	require.Eventually(t, func() bool {
		return r.Current().State == session.AuthenticatedComplete
	}, 5*time.Second, 10*time.Millisecond)
}
