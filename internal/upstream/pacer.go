package upstream

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Pacer gates each call of a source. Wait is invoked before every request
// and Done once the request has finished; the first Wait passes immediately.
type Pacer interface {
	Wait(ctx context.Context) error
	Done()
}

// FixedDelay holds every call until delay has passed since the previous call
// finished, however long that call took.
type FixedDelay struct {
	mu     sync.Mutex
	limit  rate.Limit
	bucket *rate.Limiter
}

// NewFixedDelay creates a pacer for one source. A non-positive delay disables pacing.
func NewFixedDelay(delay time.Duration) *FixedDelay {
	limit := rate.Inf
	if delay > 0 {
		limit = rate.Every(delay)
	}
	return &FixedDelay{limit: limit, bucket: rate.NewLimiter(limit, 1)}
}

func (p *FixedDelay) Wait(ctx context.Context) error {
	p.mu.Lock()
	bucket := p.bucket
	p.mu.Unlock()
	return bucket.Wait(ctx)
}

// Done restarts the interval at the moment the call completed.
func (p *FixedDelay) Done() {
	bucket := rate.NewLimiter(p.limit, 1)
	bucket.Allow()

	p.mu.Lock()
	p.bucket = bucket
	p.mu.Unlock()
}
