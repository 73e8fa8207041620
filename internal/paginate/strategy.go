// Package paginate drives an upstream source through its requests: where to
// start, when to stop, and what a failed request means for the rest of the walk.
package paginate

import (
	"errors"

	"github.com/i474232898/thirty-today/internal/upstream"
)

// Meta is the pagination metadata a response declared. Sources fill the
// fields their upstream reports and leave the rest zero.
type Meta struct {
	TotalPages int
	Offset     int
	Hits       int
}

// Page is one decoded response mapped to records.
type Page[T any] struct {
	Items []T
	Meta  Meta
}

// Strategy is the per-source pagination contract.
type Strategy interface {
	// Start is the first step index requested.
	Start() int
	// Within is the safety valve: steps at or past the cap are never requested.
	Within(step int) bool
	// Continue reports whether another request follows a successful step.
	Continue(step int, m Meta) bool
	// Abandon reports whether a failed step ends the walk. When it does not,
	// the failed step is skipped and the walk moves on to step+1.
	Abandon(err error) bool
}

// TotalPages walks pages First.. while the current page is below the total the
// upstream declares, capped at Max (exclusive). A failed page is skipped, not
// re-requested.
type TotalPages struct {
	First int
	Max   int
}

func (s TotalPages) Start() int { return s.First }

func (s TotalPages) Within(step int) bool { return step < s.Max }

func (s TotalPages) Continue(step int, m Meta) bool { return step < m.TotalPages }

func (s TotalPages) Abandon(err error) bool { return abandonPaged(err) }

// Offset walks pages First.. while the declared result offset is below the
// declared hit count, capped at Max (exclusive).
type Offset struct {
	First int
	Max   int
}

func (s Offset) Start() int { return s.First }

func (s Offset) Within(step int) bool { return step < s.Max }

func (s Offset) Continue(_ int, m Meta) bool { return m.Offset < m.Hits }

func (s Offset) Abandon(err error) bool { return abandonPaged(err) }

// FixedList issues exactly Len calls, one per list entry. A failed entry
// contributes nothing and never stops the others.
type FixedList struct {
	Len int
}

func (s FixedList) Start() int { return 0 }

func (s FixedList) Within(step int) bool { return step < s.Len }

func (s FixedList) Continue(int, Meta) bool { return true }

func (s FixedList) Abandon(error) bool { return false }

// A paged source gives up only on a body it cannot read. Status errors,
// transport errors and an open breaker are per-page failures.
func abandonPaged(err error) bool {
	return errors.Is(err, upstream.ErrMalformed)
}
