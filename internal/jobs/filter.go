package jobs

import (
	"strings"

	"github.com/gosimple/slug"

	"github.com/devilmonastery/jobfinder/internal/domain/entities"
)

// Criteria narrows a result list. Empty fields match everything.
type Criteria struct {
	Text     string // matches title or employer
	Type     string // employment type, any spelling ("Full-time", "FULLTIME")
	Location string // matches job city
}

// Empty reports whether the criteria would match every job
func (c Criteria) Empty() bool {
	return strings.TrimSpace(c.Text) == "" &&
		strings.TrimSpace(c.Type) == "" &&
		strings.TrimSpace(c.Location) == ""
}

// NormalizeType folds an employment type to a comparable key,
// so "Full-time", "full time" and "FULLTIME" compare equal.
func NormalizeType(t string) string {
	return strings.ReplaceAll(slug.Make(t), "-", "")
}

var remoteType = NormalizeType("Remote")

// Match reports whether a job satisfies every non-empty criterion
func (c Criteria) Match(job *entities.Job) bool {
	if text := strings.ToLower(strings.TrimSpace(c.Text)); text != "" {
		if !strings.Contains(strings.ToLower(job.Title), text) &&
			!strings.Contains(strings.ToLower(job.EmployerName), text) {
			return false
		}
	}

	if t := NormalizeType(c.Type); t != "" {
		// the search API reports remote work as a flag, not an employment type
		if t == remoteType {
			if !job.IsRemote && NormalizeType(job.EmploymentType) != remoteType {
				return false
			}
		} else if NormalizeType(job.EmploymentType) != t {
			return false
		}
	}

	if loc := strings.ToLower(strings.TrimSpace(c.Location)); loc != "" {
		if !strings.Contains(strings.ToLower(job.City), loc) {
			return false
		}
	}

	return true
}

// Filter returns the jobs matching c, preserving order
func Filter(list []*entities.Job, c Criteria) []*entities.Job {
	if c.Empty() {
		return list
	}
	out := make([]*entities.Job, 0, len(list))
	for _, job := range list {
		if c.Match(job) {
			out = append(out, job)
		}
	}
	return out
}
