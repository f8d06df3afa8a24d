package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"

	"github.com/fitscore/fitscore/internal/blob"
	"github.com/fitscore/fitscore/pkg/lcia"
)

// statusFor maps a domain error to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, lcia.ErrMissingValue), errors.Is(err, blob.ErrInvalidID):
		return http.StatusBadRequest
	case errors.Is(err, lcia.ErrInvalidValue):
		return http.StatusUnprocessableEntity
	case errors.Is(err, lcia.ErrNotFound), errors.Is(err, blob.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// errorKind labels err for metrics.
func errorKind(err error) string {
	switch {
	case errors.Is(err, lcia.ErrMissingValue):
		return "missing_value"
	case errors.Is(err, lcia.ErrInvalidValue):
		return "invalid_value"
	case errors.Is(err, lcia.ErrNotFound), errors.Is(err, blob.ErrNotFound):
		return "not_found"
	case errors.Is(err, blob.ErrInvalidID):
		return "invalid_id"
	case errors.Is(err, lcia.ErrBoundsInconsistent):
		return "bounds"
	default:
		return "internal"
	}
}

// writeDomainError logs err under a fresh exception id and writes the
// mapped response. Internal failures get a generic detail.
func (h *Handler) writeDomainError(w http.ResponseWriter, r *http.Request, endpoint string, err error) {
	status := statusFor(err)
	body := errorBody{Detail: err.Error(), ExceptionID: uuid.NewString()}

	var merr *multierror.Error
	if errors.As(err, &merr) {
		body.Detail = "multiple errors occurred"
		for _, e := range merr.WrappedErrors() {
			body.Errors = append(body.Errors, e.Error())
		}
	}
	if status == http.StatusInternalServerError {
		body.Detail = "internal error"
		body.Errors = nil
	}

	level := slog.LevelWarn
	if status >= 500 {
		level = slog.LevelError
	}
	h.logger.Log(r.Context(), level, "request failed",
		"exception_id", body.ExceptionID, "path", r.URL.Path, "status", status, "error", err)
	h.metrics.RecordError(errorKind(err), endpoint)
	writeJSON(w, status, body)
}
