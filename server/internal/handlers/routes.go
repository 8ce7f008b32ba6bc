package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/devilmonastery/jobfinder/internal/api"
	"github.com/devilmonastery/jobfinder/server/internal/middleware"
)

// NewRouter wires every API route
func NewRouter(h *Handler, authMW *middleware.AuthMiddleware, logger *slog.Logger) *mux.Router {
	r := mux.NewRouter().UseEncodedPath()
	r.Use(middleware.LogRequest(logger))

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}).Methods(http.MethodGet)

	public := r.PathPrefix(api.Prefix).Subrouter()
	public.HandleFunc("/auth/register", h.Register).Methods(http.MethodPost)
	public.HandleFunc("/auth/login", h.Login).Methods(http.MethodPost)
	public.HandleFunc("/profile/options", h.ProfileOptions).Methods(http.MethodGet)

	private := r.PathPrefix(api.Prefix).Subrouter()
	private.Use(authMW.RequireAuth, middleware.TrackUser)

	private.HandleFunc("/auth/logout", h.Logout).Methods(http.MethodPost)
	private.HandleFunc("/auth/me", h.Me).Methods(http.MethodGet)

	private.HandleFunc("/users/{id}/profile/exists", h.ProfileExists).Methods(http.MethodGet)
	private.HandleFunc("/profile", h.GetProfile).Methods(http.MethodGet)
	private.HandleFunc("/profile", h.SaveProfile).Methods(http.MethodPut)
	private.HandleFunc("/profile/avatar", h.UploadAvatar).Methods(http.MethodPost)

	private.HandleFunc("/jobs/search", h.SearchJobs).Methods(http.MethodGet)
	private.HandleFunc("/jobs/home", h.HomeFeed).Methods(http.MethodGet)
	private.HandleFunc("/jobs/{id}", h.GetJob).Methods(http.MethodGet)

	private.HandleFunc("/bookmarks", h.ListBookmarks).Methods(http.MethodGet)
	private.HandleFunc("/bookmarks/{id}", h.BookmarkStatus).Methods(http.MethodGet)
	private.HandleFunc("/bookmarks/{id}", h.RemoveBookmark).Methods(http.MethodDelete)
	private.HandleFunc("/bookmarks/{id}/toggle", h.ToggleBookmark).Methods(http.MethodPost)

	return r
}
