package sources

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"time"

	"github.com/i474232898/thirty-today/internal/digest"
)

type countingPacer struct {
	waits int
}

func (p *countingPacer) Wait(context.Context) error {
	p.waits++
	return nil
}

func (p *countingPacer) Done() {}

func testConfig(srv *httptest.Server, pacer *countingPacer) Config {
	return Config{
		Client:  srv.Client(),
		Log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		BaseURL: srv.URL,
		Pacer:   pacer,
	}
}

var testWindow = digest.WindowAt(time.Date(2026, time.October, 16, 12, 0, 0, 0, time.UTC))
