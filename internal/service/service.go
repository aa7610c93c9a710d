// Package service implements business logic, validation, and orchestration
// between HTTP handlers and the repository layer.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Shivanand-hulikatti/event-rsvp/internal/apperr"
)

var tracer = otel.Tracer("github.com/Shivanand-hulikatti/event-rsvp/internal/service")

// DefaultStoreTimeout applies when Options.StoreTimeout is zero.
const DefaultStoreTimeout = 5 * time.Second

// Options are shared by every service.
type Options struct {
	// StoreTimeout bounds each store round trip. A store that does not answer
	// in time fails the operation with StoreUnavailable; nothing is retried.
	StoreTimeout time.Duration
	Logger       *slog.Logger
	Now          func() time.Time
}

func (o Options) withDefaults() Options {
	if o.StoreTimeout <= 0 {
		o.StoreTimeout = DefaultStoreTimeout
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// call runs one store operation under the store deadline.
func call[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return fn(ctx)
}

// exec is call for operations that only return an error.
func exec(ctx context.Context, timeout time.Duration, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return fn(ctx)
}

// validID reports whether id can name a stored document. Ids are UUIDs, so
// anything else cannot exist.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func requireUser(userID string) error {
	if userID == "" {
		return apperr.ErrUnauthenticated
	}
	return nil
}

// fail records err on span and returns it.
func fail(span trace.Span, err error) error {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(apperr.CodeOf(err)))
	}
	return err
}
