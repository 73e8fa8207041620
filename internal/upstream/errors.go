package upstream

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformed marks a response body that could not be decoded or lacks
	// required metadata.
	ErrMalformed = errors.New("malformed response")

	// ErrCircuitOpen is returned without a network call while the breaker is open.
	ErrCircuitOpen = errors.New("circuit breaker open")

	errNoHTTPClient = errors.New("http client not configured")
)

// StatusError is a non-2xx upstream response.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Body)
}

// IsTransport reports whether err means no response was received at all,
// including calls short-circuited by an open breaker.
func IsTransport(err error) bool {
	if err == nil {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return false
	}
	return !errors.Is(err, ErrMalformed)
}
