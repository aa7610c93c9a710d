package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Shivanand-hulikatti/event-rsvp/internal/auth"
	"github.com/Shivanand-hulikatti/event-rsvp/internal/model"
)

// Register handles POST /api/auth/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if err := readJSON(w, r, &req); err != nil {
		sendError(w, r, h.logger, err)
		return
	}
	res, err := h.users.Register(r.Context(), req)
	if err != nil {
		sendError(w, r, h.logger, err)
		return
	}
	sendSuccess(w, http.StatusCreated, res)
}

// Login handles POST /api/auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := readJSON(w, r, &req); err != nil {
		sendError(w, r, h.logger, err)
		return
	}
	res, err := h.users.Login(r.Context(), req)
	if err != nil {
		sendError(w, r, h.logger, err)
		return
	}
	sendSuccess(w, http.StatusOK, res)
}

// Me handles GET /api/auth/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	u, err := h.users.Profile(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		sendError(w, r, h.logger, err)
		return
	}
	sendSuccess(w, http.StatusOK, u)
}

// UpdateMe handles PUT /api/auth/me
func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var patch model.ProfilePatch
	if err := readJSON(w, r, &patch); err != nil {
		sendError(w, r, h.logger, err)
		return
	}
	u, err := h.users.UpdateProfile(r.Context(), auth.UserIDFromContext(r.Context()), patch)
	if err != nil {
		sendError(w, r, h.logger, err)
		return
	}
	sendSuccess(w, http.StatusOK, u)
}

// GetUser handles GET /api/users/{id}
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	u, err := h.users.Profile(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		sendError(w, r, h.logger, err)
		return
	}
	sendSuccess(w, http.StatusOK, u)
}
