package handlers

import (
	"net/http"

	"github.com/devilmonastery/jobfinder/internal/api"
	"github.com/devilmonastery/jobfinder/internal/jobs"
	"github.com/devilmonastery/jobfinder/internal/render"
)

func criteriaFrom(r *http.Request) jobs.Criteria {
	q := r.URL.Query()
	return jobs.Criteria{
		Text:     q.Get("filter"),
		Type:     q.Get("type"),
		Location: q.Get("location"),
	}
}

// SearchJobs runs a free text job search
func (h *Handler) SearchJobs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	page := pageQuery(r)

	list, err := h.jobs.Search(r.Context(), query, page, criteriaFrom(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, api.JobsResponse{Query: query, Page: page, Jobs: list})
}

// HomeFeed searches for the caller's preferred role
func (h *Handler) HomeFeed(w http.ResponseWriter, r *http.Request) {
	page := pageQuery(r)

	list, query, err := h.jobs.HomeFeed(r.Context(), currentUser(r).UserID, page, criteriaFrom(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, api.JobsResponse{Query: query, Page: page, Jobs: list})
}

// GetJob returns one job with its rendered description and bookmark flag
func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request) {
	jobID := pathVar(r, "id")

	job, err := h.jobs.Details(r.Context(), jobID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	bookmarked, err := h.bookmarks.IsBookmarked(r.Context(), currentUser(r).UserID, jobID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, api.JobResponse{
		Job:             job,
		DescriptionHTML: render.DescriptionHTML(job.Description),
		Bookmarked:      bookmarked,
	})
}
