package graph

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrAuthExpired means the bearer credential was rejected. Retrying
	// cannot fix it; the caller has to re-authenticate.
	ErrAuthExpired      = errors.New("graph: credential expired or invalid")
	ErrRateLimited      = errors.New("graph: rate limited")
	ErrTimeout          = errors.New("graph: request timed out")
	ErrTransientNetwork = errors.New("graph: transient network error")
)

// StatusError is a non-2xx response.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("graph: %s %s: status %d", e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("graph: %s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

func (e *StatusError) Is(target error) bool {
	switch target {
	case ErrAuthExpired:
		return e.StatusCode == http.StatusUnauthorized
	case ErrRateLimited:
		return e.StatusCode == http.StatusTooManyRequests
	}
	return false
}

// IsNotFound reports whether err is a 404 from Graph.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusNotFound
}
