package entities

import "time"

// Bookmark is a job saved by a user, keyed by (user, job)
type Bookmark struct {
	ID           string    `json:"id" db:"id"`
	UserID       string    `json:"user_id" db:"user_id"`
	JobID        string    `json:"job_id" db:"job_id"`
	Title        string    `json:"title" db:"title"`
	Company      string    `json:"company" db:"company"`
	Location     string    `json:"location" db:"location"`
	Type         string    `json:"type" db:"employment_type"`
	Salary       string    `json:"salary" db:"salary"`
	BookmarkedAt time.Time `json:"bookmarked_at" db:"bookmarked_at"`
}

// NewBookmark snapshots the display fields of a job for the given user
func NewBookmark(userID string, job *Job) *Bookmark {
	return &Bookmark{
		UserID:   userID,
		JobID:    job.ID,
		Title:    job.Title,
		Company:  job.EmployerName,
		Location: job.DisplayLocation(),
		Type:     job.DisplayEmploymentType(),
		Salary:   job.DisplaySalary(),
	}
}
