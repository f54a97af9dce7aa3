package builtwith

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

var (
	ErrMissingAPIKey = errors.New("missing BUILTWITH_API_KEY")
	ErrEmptyDomain   = errors.New("Domain cannot be empty.")
	ErrTimeout       = errors.New("Request timed out. Please try again.")
	ErrUnauthorized  = errors.New("Authentication failed. Please check your API key.")
	ErrNotFound      = errors.New("not found or invalid")
	ErrHTTPStatus    = errors.New("unexpected HTTP status")
	ErrTransport     = errors.New("request failed")
	ErrInvalidJSON   = errors.New("invalid JSON")
	ErrFileNotFound  = errors.New("JSON file not found")
)

// StatusError is a non-2xx answer that is neither 401 nor 404.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	body := e.Body
	if len(body) > 300 {
		body = body[:300] + "..."
	}
	return fmt.Sprintf("HTTP error %d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), body)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrHTTPStatus
}

// NotFoundError is a 404 for the looked-up domain.
type NotFoundError struct {
	Domain string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("Domain '%s' not found or invalid.", e.Domain)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// TransportError is a failed exchange that produced no usable response.
// Detail never carries the API key.
type TransportError struct {
	Detail string
}

func (e *TransportError) Error() string {
	return "Request failed: " + e.Detail
}

func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}
