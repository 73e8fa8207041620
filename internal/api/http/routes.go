package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/i474232898/thirty-today/internal/digest"
	"github.com/i474232898/thirty-today/internal/metrics"
	"github.com/i474232898/thirty-today/internal/render"
	"github.com/i474232898/thirty-today/internal/store"
)

const (
	ServiceName = "thirty-today"

	geoTimeout = 3 * time.Second
)

// DocumentSource yields the latest persisted document.
type DocumentSource interface {
	Latest(ctx context.Context) (digest.Document, error)
}

// TimezoneResolver maps a client IP to the viewer's timezone.
type TimezoneResolver interface {
	Timezone(ctx context.Context, ip string) *time.Location
}

// Deps are the collaborators of the HTTP handlers.
type Deps struct {
	Documents DocumentSource
	Locator   TimezoneResolver
	Log       *slog.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, deps Deps) {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Log == nil {
		deps.Log = slog.Default()
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": ServiceName,
		})
	})

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	app.Get("/", func(c *fiber.Ctx) error {
		doc, err := deps.Documents.Latest(c.UserContext())
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				metrics.RecordRender("unavailable")
				return fiber.NewError(fiber.StatusServiceUnavailable, "no data has been fetched yet")
			}
			metrics.RecordRender("failed")
			deps.Log.Error("http: load document", slog.Any("err", err))
			return fiber.NewError(fiber.StatusInternalServerError, "failed to load data")
		}

		viewerTZ := time.UTC
		if deps.Locator != nil {
			ctx, cancel := context.WithTimeout(c.UserContext(), geoTimeout)
			viewerTZ = deps.Locator.Timezone(ctx, c.IP())
			cancel()
		}

		page, err := render.Build(doc, deps.Now(), viewerTZ)
		if err != nil {
			metrics.RecordRender("failed")
			deps.Log.Error("http: build page", slog.Any("err", err))
			return fiber.NewError(fiber.StatusInternalServerError, "failed to render page")
		}

		c.Type("html", "utf-8")
		if err := render.Write(c, page); err != nil {
			metrics.RecordRender("failed")
			return err
		}
		metrics.RecordRender("ok")
		return nil
	})
}
