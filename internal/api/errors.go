package api

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnavailable marks transport-level failures: the backend could not
	// be reached at all, or the circuit breaker is refusing calls.
	ErrUnavailable = errors.New("banking API unavailable")
)

// HTTPError is a non-2xx response from the banking API. Detail carries the
// server's `detail` field verbatim when present.
type HTTPError struct {
	Status int
	Detail string
}

func (e *HTTPError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("banking API returned %d: %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("banking API returned %d", e.Status)
}

// AsHTTPError unwraps err into an *HTTPError, or nil.
func AsHTTPError(err error) *HTTPError {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return nil
}

// IsUnauthorized reports whether err is a 401 from the backend. Callers must
// treat this as a forced-logout signal.
func IsUnauthorized(err error) bool {
	httpErr := AsHTTPError(err)
	return httpErr != nil && httpErr.Status == http.StatusUnauthorized
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	httpErr := AsHTTPError(err)
	return httpErr != nil && httpErr.Status == http.StatusNotFound
}

// IsConflict reports whether err is a 409 from the backend.
func IsConflict(err error) bool {
	httpErr := AsHTTPError(err)
	return httpErr != nil && httpErr.Status == http.StatusConflict
}

// IsValidationRejection reports whether err is a 422 from the backend.
func IsValidationRejection(err error) bool {
	httpErr := AsHTTPError(err)
	return httpErr != nil && httpErr.Status == http.StatusUnprocessableEntity
}

// IsUnavailable reports whether err is a transport-level failure rather than
// an HTTP response.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
