package paginate

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/thirty-today/internal/upstream"
)

type countingPacer struct {
	waits int
	dones int
}

func (p *countingPacer) Wait(context.Context) error {
	p.waits++
	return nil
}

func (p *countingPacer) Done() { p.dones++ }

func testWalker(p upstream.Pacer) Walker {
	return Walker{
		Source: "Test",
		Pacer:  p,
		Log:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func items(step, n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = step*1000 + i
	}
	return out
}

func TestTotalPagesFetchesEveryDeclaredPage(t *testing.T) {
	pacer := &countingPacer{}
	var requested []int

	got, stats := Walk(context.Background(), testWalker(pacer), TotalPages{First: 1, Max: 20},
		func(_ context.Context, step int) (Page[int], error) {
			requested = append(requested, step)
			return Page[int]{Items: items(step, 50), Meta: Meta{TotalPages: 3}}, nil
		})

	assert.Equal(t, []int{1, 2, 3}, requested)
	assert.Len(t, got, 150)
	assert.Equal(t, 1000, got[0])
	assert.Equal(t, 3049, got[149])
	assert.Equal(t, 3, pacer.waits)
	assert.Equal(t, Stats{Requests: 3, Completed: 3}, stats)
}

func TestTotalPagesSkipsFailedPage(t *testing.T) {
	var requested []int

	got, stats := Walk(context.Background(), testWalker(&countingPacer{}), TotalPages{First: 1, Max: 20},
		func(_ context.Context, step int) (Page[int], error) {
			requested = append(requested, step)
			if step == 2 {
				return Page[int]{}, &upstream.StatusError{Status: 500, Body: "boom"}
			}
			return Page[int]{Items: items(step, 2), Meta: Meta{TotalPages: 3}}, nil
		})

	assert.Equal(t, []int{1, 2, 3}, requested)
	assert.Equal(t, []int{1000, 1001, 3000, 3001}, got)
	assert.Equal(t, 1, stats.Failures)
	assert.Equal(t, 3, stats.Completed)
}

func TestTotalPagesRespectsCap(t *testing.T) {
	calls := 0
	_, stats := Walk(context.Background(), testWalker(&countingPacer{}), TotalPages{First: 1, Max: 20},
		func(_ context.Context, step int) (Page[int], error) {
			calls++
			return Page[int]{Items: items(step, 1), Meta: Meta{TotalPages: 500}}, nil
		})

	assert.Equal(t, 19, calls)
	assert.Equal(t, 19, stats.Requests)
}

func TestOffsetStopsOnMalformedPage(t *testing.T) {
	var requested []int

	got, _ := Walk(context.Background(), testWalker(&countingPacer{}), Offset{First: 0, Max: 100},
		func(_ context.Context, step int) (Page[int], error) {
			requested = append(requested, step)
			if step == 1 {
				return Page[int]{}, upstream.ErrMalformed
			}
			return Page[int]{Items: items(step, 10), Meta: Meta{Offset: step * 10, Hits: 45}}, nil
		})

	assert.Equal(t, []int{0, 1}, requested)
	assert.Len(t, got, 10)
}

func TestTotalPagesSkipsPagesWhileBreakerOpen(t *testing.T) {
	pacer := &countingPacer{}
	var requested []int

	got, stats := Walk(context.Background(), testWalker(pacer), TotalPages{First: 1, Max: 20},
		func(_ context.Context, step int) (Page[int], error) {
			requested = append(requested, step)
			if step <= 6 {
				return Page[int]{}, upstream.ErrCircuitOpen
			}
			return Page[int]{Items: items(step, 1), Meta: Meta{TotalPages: 8}}, nil
		})

	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8}, requested)
	assert.Equal(t, []int{7000, 8000}, got)
	assert.Equal(t, 8, pacer.dones)
	assert.Equal(t, Stats{Requests: 8, Failures: 6, Completed: 2}, stats)
}

func TestOffsetStopsWhenOffsetReachesHits(t *testing.T) {
	var requested []int

	_, _ = Walk(context.Background(), testWalker(&countingPacer{}), Offset{First: 0, Max: 100},
		func(_ context.Context, step int) (Page[int], error) {
			requested = append(requested, step)
			return Page[int]{Items: items(step, 10), Meta: Meta{Offset: step * 10, Hits: 25}}, nil
		})

	assert.Equal(t, []int{0, 1, 2, 3}, requested)
}

func TestFixedListContinuesPastFailures(t *testing.T) {
	pacer := &countingPacer{}
	var requested []int

	got, stats := Walk(context.Background(), testWalker(pacer), FixedList{Len: 3},
		func(_ context.Context, step int) (Page[int], error) {
			requested = append(requested, step)
			if step == 1 {
				return Page[int]{}, upstream.ErrMalformed
			}
			return Page[int]{Items: items(step, 1)}, nil
		})

	assert.Equal(t, []int{0, 1, 2}, requested)
	assert.Equal(t, []int{0, 2000}, got)
	assert.Equal(t, 3, pacer.waits)
	assert.Equal(t, 1, stats.Failures)
}

func TestWalkCountsTransportFailures(t *testing.T) {
	_, stats := Walk(context.Background(), testWalker(&countingPacer{}), FixedList{Len: 2},
		func(context.Context, int) (Page[int], error) {
			return Page[int]{}, errors.New("dial tcp: no route to host")
		})

	assert.Equal(t, Stats{Requests: 2, Failures: 2, Completed: 0}, stats)
}

type cancelledPacer struct{}

func (cancelledPacer) Wait(context.Context) error { return context.Canceled }

func (cancelledPacer) Done() {}

func TestWalkStopsWhenPacingInterrupted(t *testing.T) {
	got, stats := Walk(context.Background(), testWalker(cancelledPacer{}), FixedList{Len: 3},
		func(context.Context, int) (Page[int], error) {
			t.Fatal("fetch must not be called")
			return Page[int]{}, nil
		})

	require.Empty(t, got)
	assert.Zero(t, stats.Requests)
}
