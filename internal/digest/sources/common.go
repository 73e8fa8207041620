package sources

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/i474232898/thirty-today/internal/digest"
	"github.com/i474232898/thirty-today/internal/paginate"
	"github.com/i474232898/thirty-today/internal/upstream"
)

// Config bundles what every source needs besides its credential.
type Config struct {
	Client *http.Client
	// Delay is the fixed pause between consecutive calls of one source.
	Delay time.Duration
	Log   *slog.Logger
	// BaseURL overrides the upstream endpoint; empty means production.
	BaseURL string
	// Pacer overrides the delay-based pacer.
	Pacer upstream.Pacer
}

func (c Config) pacer() upstream.Pacer {
	if c.Pacer != nil {
		return c.Pacer
	}
	return upstream.NewFixedDelay(c.Delay)
}

func (c Config) logger() *slog.Logger {
	if c.Log == nil {
		return slog.Default()
	}
	return c.Log
}

func (c Config) baseURL(def string) string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	return def
}

// unreachable turns a walk in which no call got a response into an error.
func unreachable(name string, stats paginate.Stats) error {
	if stats.Requests > 0 && stats.Completed == 0 {
		return fmt.Errorf("%s: %w", name, digest.ErrSourceUnreachable)
	}
	return nil
}

// publishedKey parses an upstream publication timestamp and returns its UTC
// calendar date. Both RFC 3339 and the "+0000" offset form are accepted.
func publishedKey(raw string) (digest.DateKey, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05-0700", "2006-01-02T15:04:05Z0700"} {
		if ts, err := time.Parse(layout, raw); err == nil {
			return digest.KeyOf(ts.UTC()), nil
		}
	}
	return "", fmt.Errorf("unrecognised timestamp %q", raw)
}
