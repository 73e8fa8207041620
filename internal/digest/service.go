package digest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/i474232898/thirty-today/internal/metrics"
)

// Sources are the four upstreams of a run. A nil source is skipped.
type Sources struct {
	Guardian Source[Article]
	NYTimes  Source[Article]
	Events   Source[Event]
	Weather  Source[WeatherReading]
}

// Service runs the sources one after another and persists the Document.
type Service struct {
	store   Store
	sources Sources
	log     *slog.Logger
	now     func() time.Time
}

// NewService creates a new Service.
func NewService(store Store, sources Sources, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		store:   store,
		sources: sources,
		log:     log,
		now:     time.Now,
	}
}

// SetClock replaces the invocation clock; used by tests.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Build queries every source over w and assembles the Document. Source
// failures only shrink the result; the run fails only when no source got a
// single response.
func (s *Service) Build(ctx context.Context, w Window) (Document, error) {
	log := s.log.With(slog.String("run_id", uuid.NewString()), slog.String("window", w.String()))
	log.Info("aggregator: run started")

	var ran, unreachable int
	track := func(err error) {
		ran++
		if errors.Is(err, ErrSourceUnreachable) {
			unreachable++
		}
	}

	guardian, err := collect(ctx, log, s.sources.Guardian, w)
	if s.sources.Guardian != nil {
		track(err)
	}
	nytimes, err := collect(ctx, log, s.sources.NYTimes, w)
	if s.sources.NYTimes != nil {
		track(err)
	}
	events, err := collect(ctx, log, s.sources.Events, w)
	if s.sources.Events != nil {
		track(err)
	}
	weather, err := collect(ctx, log, s.sources.Weather, w)
	if s.sources.Weather != nil {
		track(err)
	}

	if ran > 0 && unreachable == ran {
		metrics.RecordRun("unavailable")
		log.Error("aggregator: every source unreachable")
		return nil, ErrUpstreamUnavailable
	}

	doc := Assemble(w, guardian, nytimes, events, weather)
	log.Info("aggregator: run finished",
		slog.Int("guardian_articles", len(guardian)),
		slog.Int("nytimes_articles", len(nytimes)),
		slog.Int("wiki_events", len(events)),
		slog.Int("weather", len(weather)))
	return doc, nil
}

// Refresh builds the Document for the window around now and persists it.
func (s *Service) Refresh(ctx context.Context) (Document, error) {
	w := WindowAt(s.now())

	doc, err := s.Build(ctx, w)
	if err != nil {
		return nil, err
	}

	if s.store == nil {
		metrics.RecordRun("failed")
		return nil, fmt.Errorf("no document store configured")
	}
	if err := s.store.Save(ctx, doc); err != nil {
		metrics.RecordRun("failed")
		return nil, fmt.Errorf("persist document: %w", err)
	}

	metrics.RecordRun("ok")
	return doc, nil
}

// Latest delegates to the underlying store.
func (s *Service) Latest(ctx context.Context) (Document, error) {
	return s.store.Load(ctx)
}

func collect[T Dated](ctx context.Context, log *slog.Logger, src Source[T], w Window) ([]T, error) {
	if src == nil {
		return nil, nil
	}

	items, err := src.Fetch(ctx, w)
	if err != nil {
		log.Warn(fmt.Sprintf("aggregator: %s returned an error", src.Name()), slog.Any("err", err))
	}
	metrics.RecordCollected(src.Name(), len(items))
	log.Info(fmt.Sprintf("aggregator: %s collected %d records", src.Name(), len(items)))
	return items, err
}
