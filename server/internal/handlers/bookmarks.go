package handlers

import (
	"net/http"

	"github.com/devilmonastery/jobfinder/internal/api"
	"github.com/devilmonastery/jobfinder/internal/domain/entities"
)

// ListBookmarks returns the caller's saved jobs
func (h *Handler) ListBookmarks(w http.ResponseWriter, r *http.Request) {
	list, total, err := h.bookmarks.List(r.Context(), currentUser(r).UserID, intQuery(r, "limit", 50), intQuery(r, "offset", 0))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if list == nil {
		list = []*entities.Bookmark{}
	}
	h.writeJSON(w, http.StatusOK, api.BookmarksResponse{Bookmarks: list, Total: total})
}

// ToggleBookmark saves a job, or removes it if it was already saved
func (h *Handler) ToggleBookmark(w http.ResponseWriter, r *http.Request) {
	userID := currentUser(r).UserID
	jobID := pathVar(r, "id")

	saved, err := h.bookmarks.IsBookmarked(r.Context(), userID, jobID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	// removal only needs the id; a new bookmark snapshots the job's details
	job := &entities.Job{ID: jobID}
	if !saved {
		job, err = h.jobs.Details(r.Context(), jobID)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
	}

	bookmarked, err := h.bookmarks.Toggle(r.Context(), userID, job)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, api.BookmarkToggleResponse{JobID: jobID, Bookmarked: bookmarked})
}

// BookmarkStatus reports whether the caller saved a job
func (h *Handler) BookmarkStatus(w http.ResponseWriter, r *http.Request) {
	jobID := pathVar(r, "id")
	saved, err := h.bookmarks.IsBookmarked(r.Context(), currentUser(r).UserID, jobID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, api.BookmarkToggleResponse{JobID: jobID, Bookmarked: saved})
}

// RemoveBookmark deletes a saved job
func (h *Handler) RemoveBookmark(w http.ResponseWriter, r *http.Request) {
	if err := h.bookmarks.Remove(r.Context(), currentUser(r).UserID, pathVar(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
