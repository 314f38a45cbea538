package api

import (
	"errors"
	"fmt"
)

// ErrNotAuthenticated signals that an authenticated-only call was made
// without a credential, or the service rejected the credential on a read
// that requires one. Callers use it to prompt for login rather than
// showing a generic fetch failure.
var ErrNotAuthenticated = errors.New("authentication required")

// Error is a non-2xx response from one of the backend services. Detail
// carries the structured "detail" field from the response body when the
// service provided one.
type Error struct {
	// StatusCode is the HTTP status returned by the service.
	StatusCode int
	// Detail is the service-supplied error description, if any.
	Detail string
}

// Error returns the service detail when present, otherwise a generic
// message with the status code.
func (e *Error) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("service returned status %d", e.StatusCode)
}

// AuthRejected reports whether err is a service response rejecting the
// presented credential.
func AuthRejected(err error) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 401 || apiErr.StatusCode == 403
	}
	return false
}
