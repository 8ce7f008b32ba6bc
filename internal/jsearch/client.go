package jsearch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/devilmonastery/jobfinder/internal/domain/entities"
)

const (
	DefaultBaseURL = "https://jsearch.p.rapidapi.com"
	DefaultHost    = "jsearch.p.rapidapi.com"
)

// ErrJobNotFound is returned when job details come back empty
var ErrJobNotFound = errors.New("job not found")

// APIError is returned for any non-2xx response
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("job search API returned status %d", e.Status)
	}
	return fmt.Sprintf("job search API returned status %d: %s", e.Status, e.Message)
}

// Config configures the job search client
type Config struct {
	BaseURL string
	Host    string // sent as x-rapidapi-host
	APIKey  string // sent as x-rapidapi-key
	Timeout time.Duration
}

// Client calls the JSearch API
type Client struct {
	baseURL string
	host    string
	apiKey  string
	http    *http.Client
	log     *slog.Logger
}

// NewClient creates a client with metrics instrumentation on its transport
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Host == "" {
		cfg.Host = DefaultHost
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		host:    cfg.Host,
		apiKey:  cfg.APIKey,
		http: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: NewMetricsTransport(nil),
		},
		log: slog.Default().With(slog.String("component", "jsearch")),
	}
}

// SearchParams are the query parameters of a search call
type SearchParams struct {
	Query      string
	Page       int
	NumPages   int
	Country    string
	DatePosted string // all, today, 3days, week, month
}

func (p SearchParams) withDefaults() SearchParams {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.NumPages < 1 {
		p.NumPages = 1
	}
	if p.Country == "" {
		p.Country = "in"
	}
	if p.DatePosted == "" {
		p.DatePosted = "all"
	}
	return p
}

type envelope struct {
	Status    string          `json:"status"`
	RequestID string          `json:"request_id"`
	Data      []*entities.Job `json:"data"`
}

// Search returns the jobs matching params.Query
func (c *Client) Search(ctx context.Context, params SearchParams) ([]*entities.Job, error) {
	params = params.withDefaults()
	q := url.Values{}
	q.Set("query", params.Query)
	q.Set("page", strconv.Itoa(params.Page))
	q.Set("num_pages", strconv.Itoa(params.NumPages))
	q.Set("country", params.Country)
	q.Set("date_posted", params.DatePosted)

	env, err := c.get(ctx, "/search", q)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", params.Query, err)
	}

	c.log.Debug("search complete",
		slog.String("query", params.Query),
		slog.Int("results", len(env.Data)),
		slog.String("request_id", env.RequestID))
	return env.Data, nil
}

// JobDetails returns a single job by id
func (c *Client) JobDetails(ctx context.Context, jobID string) (*entities.Job, error) {
	q := url.Values{}
	q.Set("job_id", jobID)

	env, err := c.get(ctx, "/job-details", q)
	if err != nil {
		return nil, fmt.Errorf("job details %s: %w", jobID, err)
	}
	if len(env.Data) == 0 {
		return nil, ErrJobNotFound
	}
	return env.Data[0], nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values) (*envelope, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("x-rapidapi-key", c.apiKey)
	req.Header.Set("x-rapidapi-host", c.host)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &APIError{Status: resp.StatusCode, Message: apiMessage(body)}
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &env, nil
}

// apiMessage pulls "message" out of an error body, falling back to the raw text
func apiMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	return strings.TrimSpace(string(body))
}
