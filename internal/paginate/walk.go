package paginate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/i474232898/thirty-today/internal/upstream"
)

// FetchFunc performs the request for one step and maps it to records.
type FetchFunc[T any] func(ctx context.Context, step int) (Page[T], error)

// Walker carries what a walk needs besides the strategy.
type Walker struct {
	// Source is the human-readable upstream name used in log lines.
	Source string
	Pacer  upstream.Pacer
	Log    *slog.Logger
	// Label names a step in log lines, e.g. "page 3" or "London".
	Label func(step int) string
}

// Stats summarises a walk.
type Stats struct {
	Requests  int
	Failures  int
	Completed int // requests that received any response
}

func (s *Stats) Add(o Stats) {
	s.Requests += o.Requests
	s.Failures += o.Failures
	s.Completed += o.Completed
}

// Walk requests steps according to s and returns every record gathered, in
// order. Failures are logged and handled per the strategy; Walk itself never
// fails, the worst case is an empty result.
func Walk[T any](ctx context.Context, w Walker, s Strategy, fetch FetchFunc[T]) ([]T, Stats) {
	var (
		out   []T
		stats Stats
	)
	log := w.logger()

	for step := s.Start(); s.Within(step); step++ {
		if err := w.Pacer.Wait(ctx); err != nil {
			log.Warn(fmt.Sprintf("%s: pacing interrupted, stopping", w.Source), slog.Any("err", err))
			break
		}

		stats.Requests++
		page, err := fetch(ctx, step)
		w.Pacer.Done()
		if err != nil {
			stats.Failures++
			if !upstream.IsTransport(err) {
				stats.Completed++
			}
			log.Warn(failureLine(w.Source, w.label(step), err))

			if s.Abandon(err) {
				log.Warn(fmt.Sprintf("%s: stopping after %s, keeping %d records", w.Source, w.label(step), len(out)))
				break
			}
			continue
		}

		stats.Completed++
		out = append(out, page.Items...)

		if !s.Continue(step, page.Meta) {
			break
		}
	}

	log.Debug(fmt.Sprintf("%s: collected %d records", w.Source, len(out)),
		slog.Int("requests", stats.Requests),
		slog.Int("failures", stats.Failures))
	return out, stats
}

func failureLine(source, label string, err error) string {
	var se *upstream.StatusError
	if errors.As(err, &se) {
		return fmt.Sprintf("%d: %s (%s) failed to fetch: %s", se.Status, source, label, se.Body)
	}
	return fmt.Sprintf("%s (%s) failed to fetch: %v", source, label, err)
}

func (w Walker) label(step int) string {
	if w.Label == nil {
		return fmt.Sprintf("step %d", step)
	}
	return w.Label(step)
}

func (w Walker) logger() *slog.Logger {
	if w.Log == nil {
		return slog.Default()
	}
	return w.Log
}
