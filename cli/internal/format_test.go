package cli

import (
	"bufio"
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devilmonastery/jobfinder/internal/api"
	"github.com/devilmonastery/jobfinder/internal/domain/entities"
	"github.com/devilmonastery/jobfinder/internal/session"
)

var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func TestJobsMarkdown(t *testing.T) {
	resp := &api.JobsResponse{
		Query: "go",
		Page:  2,
		Jobs: []*entities.Job{
			{ID: "a1", Title: "Go Engineer", EmployerName: "Acme", City: "Pune", EmploymentType: "FULLTIME", PostedAt: "2026-03-07T12:00:00Z"},
			{ID: "b2", Title: "SRE", EmployerName: "Globex", IsRemote: true},
		},
	}
	out := jobsMarkdown("Jobs", resp, now)
	assert.Contains(t, out, "1. **Go Engineer** at Acme")
	assert.Contains(t, out, "posted 3 days ago")
	assert.Contains(t, out, "`b2`")
	assert.Contains(t, out, "*page 2*")

	empty := jobsMarkdown("Jobs", &api.JobsResponse{Page: 1}, now)
	assert.Contains(t, empty, "No jobs found")
}

func TestJobMarkdown(t *testing.T) {
	out := jobMarkdown(&api.JobResponse{
		Job: &entities.Job{
			ID: "a1", Title: "Go Engineer", EmployerName: "Acme",
			Description: "We build things\n• Go\n• SQL", ApplyLink: "https://example.com/apply",
		},
		Bookmarked: true,
	}, now)
	assert.Contains(t, out, "# Go Engineer")
	assert.Contains(t, out, "★ Bookmarked")
	assert.Contains(t, out, "- Go\n- SQL")
	assert.Contains(t, out, "[Apply](https://example.com/apply)")
}

func TestProfileAndBookmarksMarkdown(t *testing.T) {
	out := profileMarkdown(&api.ProfileResponse{
		Profile:       &entities.Profile{Name: "Asha", City: "Pune", Education: "Masters", PreferredRole: "Backend Developer", Experience: "3-5", Skills: []string{"Go", "SQL"}},
		BookmarkCount: 4,
	})
	assert.Contains(t, out, "# Asha")
	assert.Contains(t, out, "**Skills:** Go, SQL")
	assert.Contains(t, out, "**Bookmarks:** 4")

	bm := bookmarksMarkdown(&api.BookmarksResponse{
		Total: 1,
		Bookmarks: []*entities.Bookmark{
			{JobID: "a1", Title: "Go Engineer", Company: "Acme", Location: "Pune", BookmarkedAt: now.Add(-2 * time.Hour)},
		},
	}, now)
	assert.Contains(t, bm, "# Bookmarks (1)")
	assert.Contains(t, bm, "Pune · saved 2 hours ago · `a1`")

	assert.Contains(t, bookmarksMarkdown(&api.BookmarksResponse{}, now), "Nothing saved yet")
}

func TestDescribeSession(t *testing.T) {
	identity := &entities.Identity{ID: "1", Email: "asha@example.com"}
	tests := []struct {
		snap session.Snapshot
		want string
	}{
		{session.Snapshot{State: session.Checking}, "Checking"},
		{session.Snapshot{State: session.Unauthenticated}, "jobfinder auth login"},
		{session.Snapshot{State: session.AuthenticatedIncompleteProfile, Identity: identity}, "jobfinder profile setup"},
		{session.Snapshot{State: session.AuthenticatedComplete, Identity: identity}, "Signed in as asha@example.com"},
	}
	for _, tt := range tests {
		t.Run(tt.snap.State.String(), func(t *testing.T) {
			assert.Contains(t, describeSession(tt.snap), tt.want)
		})
	}
}

func TestPromptProfile(t *testing.T) {
	opts := &api.ProfileOptionsResponse{
		Education:  entities.EducationOptions,
		Roles:      entities.RoleOptions,
		Experience: entities.ExperienceOptions,
	}
	req := api.ProfileRequest{Name: "Asha"}
	in := bufio.NewReader(strings.NewReader("Pune\n4\n2\nFresher\nGo, SQL ,\n"))
	var out bytes.Buffer

	require.NoError(t, promptProfile(in, &out, &req, opts))
	assert.Equal(t, "Asha", req.Name, "set fields are not asked again")
	assert.Equal(t, "Pune", req.City)
	assert.Equal(t, "Masters", req.Education, "numbers select from the list")
	assert.Equal(t, entities.RoleOptions[1], req.PreferredRole)
	assert.Equal(t, "Fresher", req.Experience, "free text is kept as typed")
	assert.Equal(t, []string{"Go", "SQL"}, req.Skills)
	assert.NotContains(t, out.String(), "Name:")
}

func TestMergeProfile(t *testing.T) {
	req := api.ProfileRequest{City: "Goa"}
	mergeProfile(&req, &api.ProfileResponse{Profile: &entities.Profile{Name: "Asha", City: "Pune", Skills: []string{"Go"}}})
	assert.Equal(t, "Asha", req.Name)
	assert.Equal(t, "Goa", req.City, "flags win over stored values")
	assert.Equal(t, []string{"Go"}, req.Skills)
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "less than a minute", formatDuration(30*time.Second))
	assert.Equal(t, "1 hour", formatDuration(time.Hour))
	assert.Equal(t, "2 days and 3 hours", formatDuration(51*time.Hour))
	assert.Equal(t, "1 day, 1 hour and 5 minutes", formatDuration(-(25*time.Hour + 5*time.Minute)))
}

func TestIsLocalhost(t *testing.T) {
	assert.True(t, isLocalhost("localhost:9091"))
	assert.True(t, isLocalhost("127.0.0.1:9091"))
	assert.True(t, isLocalhost("jobfinder-api:9091"))
	assert.False(t, isLocalhost("api.jobfinder.app:443"))
}
