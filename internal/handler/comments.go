package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Shivanand-hulikatti/event-rsvp/internal/auth"
	"github.com/Shivanand-hulikatti/event-rsvp/internal/model"
)

// ListComments handles GET /api/events/{id}/comments
func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	comments, err := h.comments.List(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		sendError(w, r, h.logger, err)
		return
	}
	sendSuccess(w, http.StatusOK, comments)
}

// CreateComment handles POST /api/events/{id}/comments
func (h *Handler) CreateComment(w http.ResponseWriter, r *http.Request) {
	var req model.CommentRequest
	if err := readJSON(w, r, &req); err != nil {
		sendError(w, r, h.logger, err)
		return
	}
	c, err := h.comments.Create(r.Context(), chi.URLParam(r, "id"), auth.UserIDFromContext(r.Context()), req)
	if err != nil {
		sendError(w, r, h.logger, err)
		return
	}
	sendSuccess(w, http.StatusCreated, c)
}

// DeleteComment handles DELETE /api/comments/{id}
func (h *Handler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	if err := h.comments.Delete(r.Context(), chi.URLParam(r, "id"), auth.UserIDFromContext(r.Context())); err != nil {
		sendError(w, r, h.logger, err)
		return
	}
	sendSuccess(w, http.StatusOK, nil)
}
