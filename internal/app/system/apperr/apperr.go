// Package apperr defines the error taxonomy shared by the membership
// engine, the statistics pipeline, and the HTTP surface.
//
// Taxonomy:
//   - Unauthenticated: no identity on the request
//   - InvalidArgument: malformed/missing input, caught before any read
//   - NotFound: unresolved code, group, slot, or user
//   - PermissionDenied: role or claim insufficient
//   - Internal: unexpected store failure (including exhausted
//     transaction retries)
//
// Business-rule violations are always surfaced as one of these wrapped
// sentinels, never swallowed. Handlers map them to HTTP status codes
// with Status.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUnauthenticated  = errors.New("unauthenticated")
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrNotFound         = errors.New("not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrInternal         = errors.New("internal error")
)

// InvalidArgumentf wraps ErrInvalidArgument with a formatted detail.
func InvalidArgumentf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// NotFoundf wraps ErrNotFound with a formatted detail.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// PermissionDeniedf wraps ErrPermissionDenied with a formatted detail.
func PermissionDeniedf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrPermissionDenied, fmt.Sprintf(format, args...))
}

// Internalf wraps ErrInternal with a formatted detail. Use for store
// failures that are not one of the typed conditions; the underlying
// error should be included with %v, not %w, so callers match on the
// taxonomy rather than driver internals.
func Internalf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInternal, fmt.Sprintf(format, args...))
}

// Status maps an error to an HTTP status code. Unclassified errors are
// treated as internal.
func Status(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrPermissionDenied):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
