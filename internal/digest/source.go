package digest

import (
	"context"
	"errors"
)

// ErrSourceUnreachable is returned by a Source when none of its calls
// received a response.
var ErrSourceUnreachable = errors.New("source unreachable")

// ErrUpstreamUnavailable aborts a run in which every source was unreachable.
var ErrUpstreamUnavailable = errors.New("no upstream call completed")

// Source abstracts one upstream (news archive, events feed, weather station).
// Fetch returns whatever it gathered for the window; per-page failures are
// absorbed and only ErrSourceUnreachable is reported.
type Source[T Dated] interface {
	Name() string
	Fetch(ctx context.Context, w Window) ([]T, error)
}

// Store persists the single current Document.
type Store interface {
	Save(ctx context.Context, doc Document) error
	Load(ctx context.Context) (Document, error)
}
