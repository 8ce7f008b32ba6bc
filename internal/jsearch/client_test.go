package jsearch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("x-rapidapi-key"))
		assert.Equal(t, DefaultHost, r.Header.Get("x-rapidapi-host"))

		q := r.URL.Query()
		assert.Equal(t, "Backend Developer", q.Get("query"))
		assert.Equal(t, "1", q.Get("page"))
		assert.Equal(t, "1", q.Get("num_pages"))
		assert.Equal(t, "in", q.Get("country"))
		assert.Equal(t, "all", q.Get("date_posted"))

		w.Header().Set("X-RateLimit-Requests-Remaining", "199")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"OK","request_id":"r1","data":[
			{"job_id":"a1","job_title":"Backend Developer","employer_name":"Acme","job_employment_type":"FULLTIME","job_city":"Pune","job_is_remote":false,"job_min_salary":50000},
			{"job_id":"b2","job_title":"Go Engineer","employer_name":"Globex","job_is_remote":true}
		]}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, APIKey: "secret"})
	jobs, err := c.Search(context.Background(), SearchParams{Query: "Backend Developer"})
	require.NoError(t, err)
	require.Len(t, jobs, 2)

	assert.Equal(t, "a1", jobs[0].ID)
	assert.Equal(t, "Acme", jobs[0].EmployerName)
	assert.Equal(t, "Pune", jobs[0].City)
	require.NotNil(t, jobs[0].MinSalary)
	assert.Equal(t, 50000.0, *jobs[0].MinSalary)
	assert.True(t, jobs[1].IsRemote)
}

func TestJobDetails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/job-details", r.URL.Path)
		if r.URL.Query().Get("job_id") == "missing" {
			_, _ = w.Write([]byte(`{"status":"OK","data":[]}`))
			return
		}
		_, _ = w.Write([]byte(`{"status":"OK","data":[{"job_id":"a1","job_title":"SRE","job_description":"Keep it **up**"}]}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL})

	job, err := c.JobDetails(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, "SRE", job.Title)
	assert.Equal(t, "Keep it **up**", job.Description)

	_, err = c.JobDetails(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestAPIError(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"json message", http.StatusTooManyRequests, `{"message":"You have exceeded the rate limit"}`, "You have exceeded the rate limit"},
		{"plain body", http.StatusBadGateway, "upstream down\n", "upstream down"},
		{"forbidden", http.StatusForbidden, `{"message":"You are not subscribed to this API."}`, "You are not subscribed to this API."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewClient(Config{BaseURL: srv.URL}).Search(context.Background(), SearchParams{Query: "x"})
			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr), "got %v", err)
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.message, apiErr.Message)
		})
	}
}

func TestNormalizeRoute(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/search", "/search"},
		{"/job-details", "/job-details"},
		{"/search/extra/segments", "/search"},
		{"", "/"},
	}
	for _, tt := range tests {
		if got := normalizeRoute(tt.path); got != tt.want {
			t.Errorf("normalizeRoute(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		status int
		err    error
		want   string
	}{
		{0, errors.New("i/o timeout"), "timeout"},
		{0, errors.New("connection reset by peer"), "connection"},
		{0, errors.New("boom"), "network"},
		{401, nil, "unauthorized"},
		{403, nil, "forbidden"},
		{429, nil, "rate_limited"},
		{503, nil, "server_error"},
		{418, nil, "client_error"},
	}
	for _, tt := range tests {
		if got := classifyError(tt.status, tt.err); got != tt.want {
			t.Errorf("classifyError(%d, %v) = %q, want %q", tt.status, tt.err, got, tt.want)
		}
	}
}
