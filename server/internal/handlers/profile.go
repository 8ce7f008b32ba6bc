package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/devilmonastery/jobfinder/internal/api"
	"github.com/devilmonastery/jobfinder/internal/auth"
	"github.com/devilmonastery/jobfinder/internal/domain/entities"
	"github.com/devilmonastery/jobfinder/internal/domain/services"
	"github.com/devilmonastery/jobfinder/internal/pkg/urlutil"
	"github.com/devilmonastery/jobfinder/internal/upload"
)

const avatarThumbSize = 200

// ProfileExists answers the session gate's question for one identity.
// Callers may only ask about themselves unless they are admins.
func (h *Handler) ProfileExists(w http.ResponseWriter, r *http.Request) {
	userID := pathVar(r, "id")
	caller := currentUser(r)
	if caller.UserID != userID {
		if err := auth.RequireAdmin(r.Context()); err != nil {
			h.writeError(w, r, err)
			return
		}
	}

	exists, err := h.profiles.Exists(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, api.ProfileExistsResponse{UserID: userID, Exists: exists})
}

// ProfileOptions lists the choices offered by profile setup and job filters
func (h *Handler) ProfileOptions(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, api.ProfileOptionsResponse{
		Education:  entities.EducationOptions,
		Roles:      entities.RoleOptions,
		Experience: entities.ExperienceOptions,
		JobTypes:   entities.JobTypeOptions,
	})
}

// GetProfile returns the caller's profile
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.profiles.Get(r.Context(), currentUser(r).UserID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, h.profileResponse(r.Context(), profile))
}

// SaveProfile creates or replaces the caller's profile
func (h *Handler) SaveProfile(w http.ResponseWriter, r *http.Request) {
	var req api.ProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		h.badRequest(w, "invalid request body")
		return
	}

	profile, err := h.profiles.Save(r.Context(), currentUser(r).UserID, services.ProfileInput(req))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, h.profileResponse(r.Context(), profile))
}

// UploadAvatar accepts a multipart "avatar" image
func (h *Handler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, upload.MaxImageBytes+(1<<20))
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeError(w, r, upload.ErrImageTooLarge)
			return
		}
		h.badRequest(w, "expected a multipart form with an avatar file")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("avatar")
	if err != nil {
		h.badRequest(w, "missing avatar file")
		return
	}
	defer file.Close()

	profile, err := h.profiles.SetAvatar(r.Context(), currentUser(r).UserID, header.Filename, file)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, h.profileResponse(r.Context(), profile))
}

func (h *Handler) profileResponse(ctx context.Context, profile *entities.Profile) api.ProfileResponse {
	resp := api.ProfileResponse{
		Profile: profile,
		BioHTML: services.BioHTML(profile),
	}
	if profile.HasAvatar() {
		resp.AvatarThumb = urlutil.AvatarThumbnailURL(*profile.AvatarURL, avatarThumbSize)
	}
	count, err := h.bookmarks.Count(ctx, profile.UserID)
	if err != nil {
		h.log.Warn("failed to count bookmarks", slog.String("user_id", profile.UserID), slog.String("error", err.Error()))
	}
	resp.BookmarkCount = count
	return resp
}
