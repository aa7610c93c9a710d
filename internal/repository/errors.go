package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Shivanand-hulikatti/event-rsvp/internal/apperr"
)

// translate maps driver errors onto the domain taxonomy. resource names the
// row kind for not-found messages; op prefixes everything else.
func translate(err error, resource, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFound(resource)
	}
	if isUnavailable(err) {
		return apperr.Unavailable(fmt.Errorf("%s: %w", op, err))
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return apperr.Wrap(apperr.CodeConflict, resource+" already exists", err)
		case pgerrcode.InvalidTextRepresentation:
			// A malformed uuid can never match a row.
			return apperr.NotFound(resource)
		case pgerrcode.CheckViolation:
			if pgErr.ConstraintName == "attendees_within_capacity" {
				return apperr.Wrap(apperr.CodeFull, apperr.ErrFull.Message, err)
			}
			return apperr.Wrap(apperr.CodeValidation, "value violates "+pgErr.ConstraintName, err)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// isUnavailable reports deadline and connection failures.
func isUnavailable(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return true
	}
	if pgconn.Timeout(err) {
		return true
	}
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
