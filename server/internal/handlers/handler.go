package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/devilmonastery/jobfinder/internal/api"
	"github.com/devilmonastery/jobfinder/internal/auth"
	"github.com/devilmonastery/jobfinder/internal/domain/repositories"
	"github.com/devilmonastery/jobfinder/internal/domain/services"
	"github.com/devilmonastery/jobfinder/internal/jsearch"
	"github.com/devilmonastery/jobfinder/internal/upload"
	"github.com/devilmonastery/jobfinder/server/internal/cookies"
	"github.com/devilmonastery/jobfinder/server/internal/middleware"
)

// Handler holds dependencies for all API handlers
type Handler struct {
	auth      *services.AuthService
	profiles  *services.ProfileService
	jobs      *services.JobService
	bookmarks *services.BookmarkService
	cookies   *cookies.Manager
	log       *slog.Logger
}

// Deps are the services the API is built on. Cookies may be nil.
type Deps struct {
	Auth      *services.AuthService
	Profiles  *services.ProfileService
	Jobs      *services.JobService
	Bookmarks *services.BookmarkService
	Cookies   *cookies.Manager
}

// New creates a new handler with dependencies
func New(deps Deps, logger *slog.Logger) *Handler {
	return &Handler{
		auth:      deps.Auth,
		profiles:  deps.Profiles,
		jobs:      deps.Jobs,
		bookmarks: deps.Bookmarks,
		cookies:   deps.Cookies,
		log:       logger.With(slog.String("component", "api_handler")),
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Warn("failed to encode response", slog.String("error", err.Error()))
	}
}

func (h *Handler) badRequest(w http.ResponseWriter, msg string) {
	h.writeJSON(w, http.StatusBadRequest, api.ErrorResponse{Error: msg, Code: api.CodeBadRequest})
}

// writeError maps service errors to HTTP responses
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := classify(err)
	if status >= 500 {
		h.log.Error("request failed",
			slog.String("request_id", middleware.RequestID(r.Context())),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()))
		if status == http.StatusInternalServerError {
			body.Error = "internal error"
		}
	}
	h.writeJSON(w, status, body)
}

func classify(err error) (int, api.ErrorResponse) {
	body := api.ErrorResponse{Error: err.Error()}

	var incomplete *services.ProfileIncompleteError
	var invalid *services.InvalidOptionError
	var searchErr *jsearch.APIError
	var uploadErr *upload.Error

	switch {
	case errors.As(err, &incomplete):
		body.Code, body.Fields = api.CodeProfileIncomplete, incomplete.Missing
		return http.StatusUnprocessableEntity, body
	case errors.As(err, &invalid):
		body.Code, body.Fields, body.Suggest = api.CodeInvalidOption, []string{invalid.Field}, invalid.Suggestion
		return http.StatusUnprocessableEntity, body
	case errors.Is(err, services.ErrInvalidCredentials):
		body.Code = api.CodeInvalidCredentials
		return http.StatusUnauthorized, body
	case errors.Is(err, auth.ErrUnauthorized), errors.Is(err, services.ErrTokenRevoked):
		body.Code = api.CodeUnauthorized
		return http.StatusUnauthorized, body
	case errors.Is(err, services.ErrAccountDisabled), errors.Is(err, repositories.ErrUserInactive), errors.Is(err, auth.ErrForbidden):
		body.Code = api.CodeForbidden
		return http.StatusForbidden, body
	case errors.Is(err, services.ErrEmailTaken):
		body.Code = api.CodeEmailTaken
		return http.StatusConflict, body
	case errors.Is(err, services.ErrInvalidEmail), errors.Is(err, services.ErrWeakPassword), errors.Is(err, services.ErrEmptyQuery):
		body.Code = api.CodeBadRequest
		return http.StatusBadRequest, body
	case errors.Is(err, services.ErrNoPreferredRole):
		body.Code = api.CodeNoPreferredRole
		return http.StatusUnprocessableEntity, body
	case errors.Is(err, repositories.ErrProfileNotFound),
		errors.Is(err, repositories.ErrBookmarkNotFound),
		errors.Is(err, repositories.ErrUserNotFound),
		errors.Is(err, jsearch.ErrJobNotFound):
		body.Code = api.CodeNotFound
		return http.StatusNotFound, body
	case errors.Is(err, upload.ErrImageTooLarge):
		body.Code = api.CodeBadRequest
		return http.StatusRequestEntityTooLarge, body
	case errors.Is(err, upload.ErrNotConfigured):
		body.Code = api.CodeUnavailable
		return http.StatusServiceUnavailable, body
	case errors.As(err, &searchErr) && searchErr.Status == http.StatusTooManyRequests:
		body.Code = api.CodeRateLimited
		return http.StatusTooManyRequests, body
	case errors.As(err, &searchErr), errors.As(err, &uploadErr):
		body.Code = api.CodeUpstream
		return http.StatusBadGateway, body
	case errors.Is(err, context.DeadlineExceeded):
		body.Code = api.CodeUpstream
		return http.StatusGatewayTimeout, body
	}

	body.Code = api.CodeInternal
	return http.StatusInternalServerError, body
}

// currentUser returns the authenticated caller; RequireAuth guarantees one
func currentUser(r *http.Request) *auth.UserContext {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		return &auth.UserContext{}
	}
	return user
}

// pathVar returns a decoded route variable; the router matches on the escaped path
func pathVar(r *http.Request, name string) string {
	raw := mux.Vars(r)[name]
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

func intQuery(r *http.Request, name string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return def
	}
	return v
}

// pageQuery reads a 1-based page number
func pageQuery(r *http.Request) int {
	if page := intQuery(r, "page", 1); page > 1 {
		return page
	}
	return 1
}

func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
