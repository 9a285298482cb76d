package remote

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/alexanderramin/taskflow/internal/domain"
)

var (
	// ErrUnavailable indicates the service could not be reached.
	ErrUnavailable = errors.New("service unavailable")

	// ErrTimeout indicates the request exceeded the configured timeout.
	ErrTimeout = errors.New("service request timed out")

	// ErrMalformedResponse indicates a 2xx response whose body could not be
	// decoded into the expected shape.
	ErrMalformedResponse = errors.New("malformed service response")
)

// APIError is a non-success answer from a service. Error returns the
// service's own message unchanged so it can be shown to the operator as is.
type APIError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s: status %d", e.Op, e.StatusCode)
}

// Is maps HTTP status codes onto the shared domain sentinels.
func (e *APIError) Is(target error) bool {
	switch e.StatusCode {
	case http.StatusPreconditionFailed:
		return target == domain.ErrConflict
	case http.StatusForbidden:
		return target == domain.ErrForbidden
	case http.StatusUnauthorized:
		return target == domain.ErrUnauthorized
	case http.StatusNotFound:
		return target == domain.ErrNotFound
	}
	return false
}

func errorCode(err error) string {
	var apiErr *APIError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTimeout):
		return "TIMEOUT"
	case errors.Is(err, ErrUnavailable):
		return "UNAVAILABLE"
	case errors.Is(err, ErrMalformedResponse):
		return "MALFORMED"
	case errors.As(err, &apiErr):
		return fmt.Sprintf("HTTP_%d", apiErr.StatusCode)
	default:
		return "UNKNOWN"
	}
}
