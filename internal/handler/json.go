package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/Shivanand-hulikatti/event-rsvp/internal/apperr"
)

const maxBodyBytes = 1 << 20 // 1 MB

type successJSON struct {
	Status string `json:"status"`
	Data   any    `json:"data"`
}

type errorJSON struct {
	Status  string      `json:"status"`
	Code    apperr.Code `json:"code"`
	Message string      `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func sendSuccess(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, successJSON{Status: "success", Data: data})
}

// sendError writes err as a fail (4xx) or error (5xx) envelope. Causes of
// server-side failures are logged, never sent.
func sendError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	ae := apperr.From(err)
	status := ae.Code.HTTPStatus()

	body := errorJSON{Status: "fail", Code: ae.Code, Message: ae.Message}
	if status >= http.StatusInternalServerError {
		body.Status = "error"
		logger.ErrorContext(r.Context(), "request failed",
			"method", r.Method, "path", r.URL.Path, "code", ae.Code, "error", err)
	}
	writeJSON(w, status, body)
}

// readJSON decodes exactly one JSON value into dst, rejecting unknown fields
// and bodies over 1 MB.
func readJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return apperr.Wrap(apperr.CodeValidation, fmt.Sprintf("request body must not be larger than %d bytes", maxErr.Limit), err)
		case errors.Is(err, io.EOF):
			return apperr.Wrap(apperr.CodeValidation, "request body must not be empty", err)
		default:
			return apperr.Wrap(apperr.CodeValidation, "invalid request body: "+err.Error(), err)
		}
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return apperr.Validation("request body must only contain a single JSON value")
	}
	return nil
}
