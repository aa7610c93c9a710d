package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Shivanand-hulikatti/event-rsvp/internal/auth"
	"github.com/Shivanand-hulikatti/event-rsvp/internal/model"
)

// eventBody populates an event for a response. A failed lookup of the user
// references must not hide a mutation that already happened, so the raw
// event is sent instead.
func (h *Handler) eventBody(ctx context.Context, e *model.Event) any {
	d, err := h.events.Populate(ctx, e)
	if err != nil {
		h.logger.WarnContext(ctx, "populate event", "event_id", e.ID, "error", err)
		return e
	}
	return d
}

// ListEvents handles GET /api/events
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	events, err := h.events.List(r.Context(), model.EventFilter{
		Category: model.Category(strings.TrimSpace(q.Get("category"))),
		Exclude:  strings.TrimSpace(q.Get("exclude")),
		Query:    q.Get("q"),
		When:     strings.ToLower(strings.TrimSpace(q.Get("when"))),
	})
	if err != nil {
		sendError(w, r, h.logger, err)
		return
	}
	sendSuccess(w, http.StatusOK, events)
}

// ListEventsByCreator handles GET /api/events/user/{userID}
func (h *Handler) ListEventsByCreator(w http.ResponseWriter, r *http.Request) {
	events, err := h.events.ListByCreator(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		sendError(w, r, h.logger, err)
		return
	}
	sendSuccess(w, http.StatusOK, events)
}

// GetEvent handles GET /api/events/{id}
func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	d, err := h.events.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		sendError(w, r, h.logger, err)
		return
	}
	sendSuccess(w, http.StatusOK, d)
}

// CreateEvent handles POST /api/events
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req model.CreateEventRequest
	if err := readJSON(w, r, &req); err != nil {
		sendError(w, r, h.logger, err)
		return
	}
	e, err := h.events.Create(r.Context(), auth.UserIDFromContext(r.Context()), req)
	if err != nil {
		sendError(w, r, h.logger, err)
		return
	}
	sendSuccess(w, http.StatusCreated, e)
}

// UpdateEvent handles PUT /api/events/{id}
func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	var patch model.EventPatch
	if err := readJSON(w, r, &patch); err != nil {
		sendError(w, r, h.logger, err)
		return
	}
	e, err := h.events.Update(r.Context(), chi.URLParam(r, "id"), auth.UserIDFromContext(r.Context()), patch)
	if err != nil {
		sendError(w, r, h.logger, err)
		return
	}
	sendSuccess(w, http.StatusOK, h.eventBody(r.Context(), e))
}

// DeleteEvent handles DELETE /api/events/{id}
func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := h.events.Delete(r.Context(), chi.URLParam(r, "id"), auth.UserIDFromContext(r.Context())); err != nil {
		sendError(w, r, h.logger, err)
		return
	}
	sendSuccess(w, http.StatusOK, nil)
}

// RSVP handles PUT /api/events/{id}/rsvp
func (h *Handler) RSVP(w http.ResponseWriter, r *http.Request) {
	var req model.RSVPRequest
	if err := readJSON(w, r, &req); err != nil {
		sendError(w, r, h.logger, err)
		return
	}
	req.Action = strings.ToLower(strings.TrimSpace(req.Action))
	if err := model.Validate(req); err != nil {
		sendError(w, r, h.logger, err)
		return
	}
	e, err := h.events.RSVP(r.Context(), chi.URLParam(r, "id"), auth.UserIDFromContext(r.Context()), req.Action)
	if err != nil {
		sendError(w, r, h.logger, err)
		return
	}
	sendSuccess(w, http.StatusOK, h.eventBody(r.Context(), e))
}

// Cancel handles PUT /api/events/{id}/cancel
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	e, err := h.events.Leave(r.Context(), chi.URLParam(r, "id"), auth.UserIDFromContext(r.Context()))
	if err != nil {
		sendError(w, r, h.logger, err)
		return
	}
	sendSuccess(w, http.StatusOK, h.eventBody(r.Context(), e))
}

// Collaborate handles PUT /api/events/{id}/collaborate
func (h *Handler) Collaborate(w http.ResponseWriter, r *http.Request) {
	var req model.CollaborateRequest
	if err := readJSON(w, r, &req); err != nil {
		sendError(w, r, h.logger, err)
		return
	}
	e, err := h.events.Collaborate(r.Context(), chi.URLParam(r, "id"), auth.UserIDFromContext(r.Context()), req.Email)
	if err != nil {
		sendError(w, r, h.logger, err)
		return
	}
	sendSuccess(w, http.StatusOK, h.eventBody(r.Context(), e))
}

// ToggleLike handles PUT /api/events/{id}/like
func (h *Handler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	e, err := h.events.ToggleLike(r.Context(), chi.URLParam(r, "id"), auth.UserIDFromContext(r.Context()))
	if err != nil {
		sendError(w, r, h.logger, err)
		return
	}
	sendSuccess(w, http.StatusOK, e)
}
