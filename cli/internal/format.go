package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/devilmonastery/jobfinder/internal/api"
	"github.com/devilmonastery/jobfinder/internal/domain/entities"
	"github.com/devilmonastery/jobfinder/internal/pkg/timeutil"
	"github.com/devilmonastery/jobfinder/internal/render"
)

// jobsMarkdown renders a result page as a numbered list
func jobsMarkdown(title string, resp *api.JobsResponse, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	if len(resp.Jobs) == 0 {
		b.WriteString("No jobs found. Try another page or fewer filters.\n")
		return b.String()
	}
	for i, job := range resp.Jobs {
		fmt.Fprintf(&b, "%d. **%s** at %s\n", i+1, job.Title, job.EmployerName)
		fmt.Fprintf(&b, "   %s", jobMeta(job, now))
		fmt.Fprintf(&b, " · `%s`\n", job.ID)
	}
	fmt.Fprintf(&b, "\n*page %d*\n", resp.Page)
	return b.String()
}

// jobMeta is the one-line summary shown under a title
func jobMeta(job *entities.Job, now time.Time) string {
	parts := []string{job.DisplayLocation(), job.DisplayEmploymentType()}
	if salary := job.DisplaySalary(); salary != "" {
		parts = append(parts, salary)
	}
	if posted, ok := timeutil.ParsePosted(job.PostedAt); ok {
		parts = append(parts, "posted "+timeutil.Ago(posted, now))
	}
	return strings.Join(nonEmpty(parts), " · ")
}

// jobMarkdown renders a full listing
func jobMarkdown(resp *api.JobResponse, now time.Time) string {
	job := resp.Job
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", job.Title)
	fmt.Fprintf(&b, "**%s**\n\n", job.EmployerName)
	fmt.Fprintf(&b, "%s\n\n", jobMeta(job, now))
	if resp.Bookmarked {
		b.WriteString("★ Bookmarked\n\n")
	}
	if job.Description != "" {
		b.WriteString("## Description\n\n")
		b.WriteString(render.DescriptionMarkdown(job.Description))
		b.WriteString("\n\n")
	}
	if job.ApplyLink != "" {
		fmt.Fprintf(&b, "[Apply](%s)\n", job.ApplyLink)
	}
	return b.String()
}

// profileMarkdown renders the signed-in user's profile
func profileMarkdown(resp *api.ProfileResponse) string {
	p := resp.Profile
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", p.Name)
	fmt.Fprintf(&b, "- **City:** %s\n", p.City)
	fmt.Fprintf(&b, "- **Education:** %s\n", p.Education)
	fmt.Fprintf(&b, "- **Preferred role:** %s\n", p.PreferredRole)
	fmt.Fprintf(&b, "- **Experience:** %s\n", p.Experience)
	if len(p.Skills) > 0 {
		fmt.Fprintf(&b, "- **Skills:** %s\n", strings.Join(p.Skills, ", "))
	}
	if resp.AvatarThumb != "" {
		fmt.Fprintf(&b, "- **Avatar:** %s\n", resp.AvatarThumb)
	}
	fmt.Fprintf(&b, "- **Bookmarks:** %d\n", resp.BookmarkCount)
	if p.Bio != "" {
		fmt.Fprintf(&b, "\n%s\n", p.Bio)
	}
	return b.String()
}

// bookmarksMarkdown renders a page of saved jobs
func bookmarksMarkdown(resp *api.BookmarksResponse, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Bookmarks (%d)\n\n", resp.Total)
	if len(resp.Bookmarks) == 0 {
		b.WriteString("Nothing saved yet. Use `jobfinder jobs bookmark JOB_ID`.\n")
		return b.String()
	}
	for _, bm := range resp.Bookmarks {
		fmt.Fprintf(&b, "- **%s** at %s\n", bm.Title, bm.Company)
		meta := nonEmpty([]string{bm.Location, bm.Type, bm.Salary, "saved " + timeutil.Ago(bm.BookmarkedAt, now)})
		fmt.Fprintf(&b, "  %s · `%s`\n", strings.Join(meta, " · "), bm.JobID)
	}
	return b.String()
}

func nonEmpty(parts []string) []string {
	out := parts[:0:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return out
}
