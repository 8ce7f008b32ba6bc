package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/devilmonastery/jobfinder/internal/api"
	"github.com/devilmonastery/jobfinder/internal/auth"
	"github.com/devilmonastery/jobfinder/internal/domain/entities"
	"github.com/devilmonastery/jobfinder/internal/jobs"
	"github.com/devilmonastery/jobfinder/internal/pkg/urlutil"
)

var (
	// ErrNotLoggedIn is returned when an authenticated call has no stored token
	ErrNotLoggedIn = errors.New("not logged in")

	// ErrSessionExpired is returned when the stored token has expired
	ErrSessionExpired = errors.New("session expired, please log in again")
)

// APIError is a non-2xx response from the server
type APIError struct {
	Status int
	Body   api.ErrorResponse
}

func (e *APIError) Error() string {
	if e.Body.Error == "" {
		return fmt.Sprintf("server returned status %d", e.Status)
	}
	return e.Body.Error
}

// HasCode reports whether err is an APIError with the given code
func HasCode(err error, code string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Body.Code == code
}

// Client talks to the jobfinder HTTP API
type Client struct {
	baseURL      string
	tokenManager TokenManager
	public       *http.Client
	authed       *http.Client
	log          *slog.Logger
}

// NewClient creates an API client. If tokenManager is nil only the
// unauthenticated endpoints (register, login) can be used.
func NewClient(baseURL string, tokenManager TokenManager) *Client {
	public := &http.Client{Timeout: 30 * time.Second}
	c := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		tokenManager: tokenManager,
		public:       public,
		log:          slog.Default().With(slog.String("component", "api_client")),
	}
	if tokenManager != nil {
		c.authed = &http.Client{
			Timeout: public.Timeout,
			Transport: &oauth2.Transport{
				Source: tokenSource{tm: tokenManager},
				Base:   http.DefaultTransport,
			},
		}
	}
	return c
}

// TokenManager returns the token manager
func (c *Client) TokenManager() TokenManager {
	return c.tokenManager
}

// Register creates an account and stores the returned token
func (c *Client) Register(ctx context.Context, email, password string) (*api.AuthResponse, error) {
	return c.authenticate(ctx, "/auth/register", email, password)
}

// Login signs in and stores the returned token
func (c *Client) Login(ctx context.Context, email, password string) (*api.AuthResponse, error) {
	return c.authenticate(ctx, "/auth/login", email, password)
}

func (c *Client) authenticate(ctx context.Context, path, email, password string) (*api.AuthResponse, error) {
	var resp api.AuthResponse
	body := api.CredentialsRequest{Email: email, Password: password}
	if err := c.do(ctx, c.public, http.MethodPost, path, nil, body, &resp); err != nil {
		return nil, err
	}
	if c.tokenManager != nil {
		tokenID := ""
		if claims, err := auth.ParseUnverified(resp.Token); err == nil {
			tokenID = claims.TokenID
		}
		if err := c.tokenManager.SaveToken(resp.Token, tokenID); err != nil {
			return nil, fmt.Errorf("failed to save token: %w", err)
		}
	}
	return &resp, nil
}

// Logout revokes the token server-side and clears it locally.
// Local credentials are cleared even if the server call fails.
func (c *Client) Logout(ctx context.Context) error {
	if c.tokenManager == nil {
		return ErrNotLoggedIn
	}
	err := c.do(ctx, c.client(), http.MethodPost, "/auth/logout", nil, nil, nil)
	if clearErr := c.tokenManager.ClearToken(); clearErr != nil {
		return fmt.Errorf("failed to clear token: %w", clearErr)
	}
	if err != nil && !errors.Is(err, ErrNotLoggedIn) && !errors.Is(err, ErrSessionExpired) {
		return err
	}
	return nil
}

// Me returns the signed-in account
func (c *Client) Me(ctx context.Context) (*entities.User, error) {
	var user entities.User
	if err := c.do(ctx, c.client(), http.MethodGet, "/auth/me", nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ProfileExists reports whether the identity has completed profile setup
func (c *Client) ProfileExists(ctx context.Context, identityID string) (bool, error) {
	var resp api.ProfileExistsResponse
	path := "/users/" + url.PathEscape(identityID) + "/profile/exists"
	if err := c.do(ctx, c.client(), http.MethodGet, path, nil, nil, &resp); err != nil {
		return false, err
	}
	return resp.Exists, nil
}

// Profile returns the caller's profile
func (c *Client) Profile(ctx context.Context) (*api.ProfileResponse, error) {
	var resp api.ProfileResponse
	if err := c.do(ctx, c.client(), http.MethodGet, "/profile", nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ProfileOptions returns the choices offered by profile setup
func (c *Client) ProfileOptions(ctx context.Context) (*api.ProfileOptionsResponse, error) {
	var resp api.ProfileOptionsResponse
	if err := c.do(ctx, c.public, http.MethodGet, "/profile/options", nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SaveProfile creates or replaces the caller's profile
func (c *Client) SaveProfile(ctx context.Context, req api.ProfileRequest) (*api.ProfileResponse, error) {
	var resp api.ProfileResponse
	if err := c.do(ctx, c.client(), http.MethodPut, "/profile", nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UploadAvatar sends a profile picture
func (c *Client) UploadAvatar(ctx context.Context, filename string, image io.Reader) (*api.ProfileResponse, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("avatar", filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, image); err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/profile/avatar", nil, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	var resp api.ProfileResponse
	if err := c.send(c.client(), req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SearchJobs runs a job search, filtered server-side by c
func (c *Client) SearchJobs(ctx context.Context, query string, page int, crit jobs.Criteria) (*api.JobsResponse, error) {
	q := criteriaQuery(crit, page)
	q.Set("q", query)
	var resp api.JobsResponse
	if err := c.do(ctx, c.client(), http.MethodGet, "/jobs/search", q, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// HomeFeed returns jobs for the caller's preferred role
func (c *Client) HomeFeed(ctx context.Context, page int, crit jobs.Criteria) (*api.JobsResponse, error) {
	var resp api.JobsResponse
	if err := c.do(ctx, c.client(), http.MethodGet, "/jobs/home", criteriaQuery(crit, page), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Job returns one job with its rendered description
func (c *Client) Job(ctx context.Context, jobID string) (*api.JobResponse, error) {
	var resp api.JobResponse
	if err := c.do(ctx, c.client(), http.MethodGet, "/jobs/"+url.PathEscape(jobID), nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ToggleBookmark bookmarks a job, or removes the bookmark
func (c *Client) ToggleBookmark(ctx context.Context, jobID string) (*api.BookmarkToggleResponse, error) {
	var resp api.BookmarkToggleResponse
	if err := c.do(ctx, c.client(), http.MethodPost, "/bookmarks/"+url.PathEscape(jobID)+"/toggle", nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Bookmarks lists the caller's saved jobs, newest first
func (c *Client) Bookmarks(ctx context.Context, limit, offset int) (*api.BookmarksResponse, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	}
	var resp api.BookmarksResponse
	if err := c.do(ctx, c.client(), http.MethodGet, "/bookmarks", q, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RemoveBookmark deletes a saved job
func (c *Client) RemoveBookmark(ctx context.Context, jobID string) error {
	return c.do(ctx, c.client(), http.MethodDelete, "/bookmarks/"+url.PathEscape(jobID), nil, nil, nil)
}

func (c *Client) client() *http.Client {
	if c.authed == nil {
		return &http.Client{Transport: roundTripperFunc(func(*http.Request) (*http.Response, error) {
			return nil, ErrNotLoggedIn
		})}
	}
	return c.authed
}

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func criteriaQuery(crit jobs.Criteria, page int) url.Values {
	q := url.Values{}
	if page > 1 {
		q.Set("page", strconv.Itoa(page))
	}
	if crit.Text != "" {
		q.Set("filter", crit.Text)
	}
	if crit.Type != "" {
		q.Set("type", crit.Type)
	}
	if crit.Location != "" {
		q.Set("location", crit.Location)
	}
	return q
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Request, error) {
	u, err := urlutil.BuildAPIURL(c.baseURL, api.Prefix+path, query)
	if err != nil {
		return nil, err
	}
	return http.NewRequestWithContext(ctx, method, u, body)
}

func (c *Client) do(ctx context.Context, hc *http.Client, method, path string, query url.Values, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := c.newRequest(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(hc, req, out)
}

func (c *Client) send(hc *http.Client, req *http.Request, out interface{}) error {
	req.Header.Set("Accept", "application/json")

	resp, err := hc.Do(req)
	if err != nil {
		// unwrap the token source errors so callers can match them
		for _, sentinel := range []error{ErrNotLoggedIn, ErrSessionExpired} {
			if errors.Is(err, sentinel) {
				return sentinel
			}
		}
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	c.log.Debug("api call",
		slog.String("method", req.Method),
		slog.String("path", req.URL.Path),
		slog.Int("status", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		if err := json.Unmarshal(data, &apiErr.Body); err != nil {
			apiErr.Body.Error = strings.TrimSpace(string(data))
		}
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
