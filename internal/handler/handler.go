// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the service layer.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/Shivanand-hulikatti/event-rsvp/internal/service"
)

// Pinger reports whether the store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler holds all HTTP handlers for the API.
type Handler struct {
	events   *service.EventService
	users    *service.UserService
	comments *service.CommentService
	store    Pinger
	logger   *slog.Logger
}

// New constructs a Handler.
func New(
	events *service.EventService,
	users *service.UserService,
	comments *service.CommentService,
	store Pinger,
	logger *slog.Logger,
) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{events: events, users: users, comments: comments, store: store, logger: logger}
}

// RouterConfig carries the HTTP-level settings.
type RouterConfig struct {
	CORSOrigin  string
	ServiceName string
}

// NewRouter builds the full route table with the global middleware stack.
func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	if cfg.CORSOrigin == "" {
		cfg.CORSOrigin = "*"
	}
	requireAuth := RequireAuth(h.users, h.logger)

	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(Logger(h.logger))
	r.Use(CORS(cfg.CORSOrigin))

	r.Get("/health", h.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.Register)
			r.Post("/login", h.Login)
			r.With(requireAuth).Get("/me", h.Me)
			r.With(requireAuth).Put("/me", h.UpdateMe)
		})

		r.Get("/users/{id}", h.GetUser)

		r.Route("/events", func(r chi.Router) {
			r.Get("/", h.ListEvents)
			r.Get("/user/{userID}", h.ListEventsByCreator)
			r.Get("/{id}", h.GetEvent)
			r.Get("/{id}/comments", h.ListComments)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/", h.CreateEvent)
				r.Put("/{id}", h.UpdateEvent)
				r.Delete("/{id}", h.DeleteEvent)
				r.Put("/{id}/rsvp", h.RSVP)
				r.Put("/{id}/cancel", h.Cancel)
				r.Put("/{id}/collaborate", h.Collaborate)
				r.Put("/{id}/like", h.ToggleLike)
				r.Post("/{id}/comments", h.CreateComment)
			})
		})

		r.With(requireAuth).Delete("/comments/{id}", h.DeleteComment)
	})

	name := cfg.ServiceName
	if name == "" {
		name = "http.server"
	}
	return otelhttp.NewHandler(r, name)
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.store.Ping(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
