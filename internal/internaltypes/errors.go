package internaltypes

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	// ErrTransient marks timeouts and connection failures. Callers restart
	// their work instead of giving up.
	ErrTransient = errors.New("transient network failure")
)

// HTTPError is returned for responses with a status >= 400.
type HTTPError struct {
	Method string
	URL    string
	Status int
	Body   []byte
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s %s: http %d", e.Method, e.URL, e.Status)
}

func (e *HTTPError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
	}
	return false
}

func (e *HTTPError) IsClientError() bool { return e.Status >= 400 && e.Status < 500 }
func (e *HTTPError) IsServerError() bool { return e.Status >= 500 }

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var he *HTTPError
	if errors.As(err, &he) {
		return he.Status
	}
	return 0
}

func IsClientError(err error) bool {
	var he *HTTPError
	return errors.As(err, &he) && he.IsClientError()
}

func IsServerError(err error) bool {
	var he *HTTPError
	return errors.As(err, &he) && he.IsServerError()
}
