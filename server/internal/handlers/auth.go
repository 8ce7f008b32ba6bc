package handlers

import (
	"log/slog"
	"net/http"

	"github.com/devilmonastery/jobfinder/internal/api"
	"github.com/devilmonastery/jobfinder/internal/domain/services"
)

// Register creates an account
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req api.CredentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		h.badRequest(w, "invalid request body")
		return
	}
	sess, err := h.auth.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.signedIn(w, r, http.StatusCreated, sess)
}

// Login signs in with email and password
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req api.CredentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		h.badRequest(w, "invalid request body")
		return
	}
	sess, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.signedIn(w, r, http.StatusOK, sess)
}

func (h *Handler) signedIn(w http.ResponseWriter, r *http.Request, status int, sess *services.Session) {
	if h.cookies != nil {
		if err := h.cookies.SetToken(r, w, sess.Token); err != nil {
			h.log.Warn("failed to set session cookie", slog.String("error", err.Error()))
		}
	}
	h.writeJSON(w, status, api.AuthResponse{
		Token:     sess.Token,
		ExpiresAt: sess.ExpiresAt,
		User:      sess.User,
	})
}

// Logout revokes the caller's token
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.Logout(r.Context(), currentUser(r)); err != nil {
		h.writeError(w, r, err)
		return
	}
	if h.cookies != nil {
		if err := h.cookies.Clear(r, w); err != nil {
			h.log.Warn("failed to clear session cookie", slog.String("error", err.Error()))
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the caller's account
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.auth.Me(r.Context(), currentUser(r).UserID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, user)
}
