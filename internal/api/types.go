// Package api holds the JSON request and response bodies shared by the
// server's HTTP handlers and the API client.
package api

import (
	"time"

	"github.com/devilmonastery/jobfinder/internal/domain/entities"
)

// Route prefix for every API endpoint
const Prefix = "/api/v1"

// Error codes carried in ErrorResponse.Code
const (
	CodeBadRequest         = "bad_request"
	CodeUnauthorized       = "unauthorized"
	CodeForbidden          = "forbidden"
	CodeNotFound           = "not_found"
	CodeConflict           = "conflict"
	CodeInvalidCredentials = "invalid_credentials"
	CodeEmailTaken         = "email_taken"
	CodeProfileIncomplete  = "profile_incomplete"
	CodeInvalidOption      = "invalid_option"
	CodeNoPreferredRole    = "no_preferred_role"
	CodeUpstream           = "upstream_error"
	CodeRateLimited        = "rate_limited"
	CodeUnavailable        = "unavailable"
	CodeInternal           = "internal"
)

type ErrorResponse struct {
	Error   string   `json:"error"`
	Code    string   `json:"code"`
	Fields  []string `json:"fields,omitempty"`
	Suggest string   `json:"suggest,omitempty"`
}

type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expires_at"`
	User      *entities.User `json:"user"`
}

type ProfileRequest struct {
	Name          string   `json:"name"`
	City          string   `json:"city"`
	Education     string   `json:"education"`
	PreferredRole string   `json:"preferred_role"`
	Experience    string   `json:"experience"`
	Skills        []string `json:"skills"`
	Bio           string   `json:"bio"`
}

type ProfileResponse struct {
	Profile       *entities.Profile `json:"profile"`
	BioHTML       string            `json:"bio_html,omitempty"`
	AvatarThumb   string            `json:"avatar_thumb_url,omitempty"`
	BookmarkCount int64             `json:"bookmark_count"`
}

type ProfileExistsResponse struct {
	UserID string `json:"user_id"`
	Exists bool   `json:"exists"`
}

// ProfileOptionsResponse lists the choices offered by profile setup
type ProfileOptionsResponse struct {
	Education  []string `json:"education"`
	Roles      []string `json:"roles"`
	Experience []string `json:"experience"`
	JobTypes   []string `json:"job_types"`
}

type JobsResponse struct {
	Query string          `json:"query"`
	Page  int             `json:"page"`
	Jobs  []*entities.Job `json:"jobs"`
}

type JobResponse struct {
	Job             *entities.Job `json:"job"`
	DescriptionHTML string        `json:"description_html,omitempty"`
	Bookmarked      bool          `json:"bookmarked"`
}

type BookmarkToggleResponse struct {
	JobID      string `json:"job_id"`
	Bookmarked bool   `json:"bookmarked"`
}

type BookmarksResponse struct {
	Bookmarks []*entities.Bookmark `json:"bookmarks"`
	Total     int64                `json:"total"`
}
