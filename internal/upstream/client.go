package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/thirty-today/internal/metrics"
)

// UserAgent is sent on every outbound request; Wikimedia rejects anonymous clients.
const UserAgent = "thirty-today/1.0 (+https://github.com/edhwright/thirty-today)"

// maxErrorBody bounds how much of a failed response is kept for logging.
const maxErrorBody = 4 << 10

// Client performs JSON GETs against one upstream behind a circuit breaker.
type Client struct {
	name    string
	http    *http.Client
	circuit *gobreaker.CircuitBreaker
}

// NewClient creates a Client for the named upstream. The breaker opens after
// five consecutive calls without a response and half-opens again after two
// minutes.
func NewClient(name string, hc *http.Client) *Client {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    0,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= 5
		},
	})

	return &Client{
		name:    name,
		http:    hc,
		circuit: cb,
	}
}

func (c *Client) Name() string {
	return c.name
}

// GetJSON requests u and decodes a 2xx body into out. Non-2xx responses
// come back as *StatusError carrying the response text; bodies that do not
// decode wrap ErrMalformed.
func (c *Client) GetJSON(ctx context.Context, u string, out any) error {
	if c.http == nil {
		return errNoHTTPClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "application/json")

	// Only a call that got no response counts against the breaker; an
	// upstream that answers with an error status is still reachable.
	start := time.Now()
	result, err := c.circuit.Execute(func() (interface{}, error) {
		return c.http.Do(req)
	})
	elapsed := time.Since(start).Seconds()

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.RecordRequest(c.name, "circuit_open", elapsed)
			return fmt.Errorf("%s: %w: %v", c.name, ErrCircuitOpen, err)
		}
		metrics.RecordRequest(c.name, "transport", elapsed)
		return err
	}

	resp, ok := result.(*http.Response)
	if !ok {
		return fmt.Errorf("unexpected result type from circuit breaker")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		metrics.RecordRequest(c.name, statusOutcome(resp.StatusCode), elapsed)
		return &StatusError{Status: resp.StatusCode, Body: string(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		metrics.RecordRequest(c.name, "malformed", elapsed)
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	metrics.RecordRequest(c.name, "ok", elapsed)
	return nil
}

func statusOutcome(code int) string {
	switch {
	case code == http.StatusTooManyRequests:
		return "rate_limited"
	case code >= 500:
		return "server_error"
	default:
		return "client_error"
	}
}
