package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/cobra"

	httpapi "github.com/i474232898/thirty-today/internal/api/http"
	"github.com/i474232898/thirty-today/internal/config"
	"github.com/i474232898/thirty-today/internal/digest"
	"github.com/i474232898/thirty-today/internal/geo"
	"github.com/i474232898/thirty-today/internal/scheduler"
)

func newServeCmd() *cobra.Command {
	var refreshOnStart bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the page, optionally refreshing the document daily",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Load configuration.
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			// Cancelled on SIGINT/SIGTERM.
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			// Document store selected by STORE_BACKEND.
			st, closeStore, err := newStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			// Refreshing needs all three upstream keys.
			refreshing := cfg.RefreshAt != "" || refreshOnStart
			if refreshing {
				if err := cfg.Credentials.Validate(); err != nil {
					return fmt.Errorf("refresh enabled: %w", err)
				}
			}
			// Core service orchestrating sources and store.
			service := digest.NewService(st, newSources(sourceConfig(cfg, log), cfg.Credentials), log)

			// Scheduler that refreshes the document once a day.
			sched := scheduler.New(cfg.RefreshAt, service, log)
			if err := sched.Start(); err != nil {
				return fmt.Errorf("failed to start scheduler: %w", err)
			}
			defer sched.Stop()

			if refreshOnStart {
				go func() {
					if _, err := service.Refresh(ctx); err != nil {
						log.Error("initial refresh failed", "err", err)
					}
				}()
			}

			// Basic app configuration
			app := fiber.New(fiber.Config{
				AppName:               httpapi.ServiceName,
				DisableStartupMessage: true,
				ReadTimeout:           10 * time.Second,
				WriteTimeout:          10 * time.Second,
				ProxyHeader:           cfg.ProxyHeader,
				ErrorHandler: func(c *fiber.Ctx, err error) error {
					// Centralized error response
					code := fiber.StatusInternalServerError
					if e, ok := err.(*fiber.Error); ok {
						code = e.Code
					}
					return c.Status(code).JSON(fiber.Map{
						"error":   true,
						"message": err.Error(),
					})
				},
			})

			// Global middleware
			app.Use(fiberlogger.New())
			app.Use(recover.New())

			// Page, health and metrics routes.
			httpapi.RegisterRoutes(app, httpapi.Deps{
				Documents: service,
				Locator:   geo.NewLocator(&http.Client{Timeout: cfg.HTTPTimeout}, cfg.GeoBaseURL, log),
				Log:       log,
			})

			// Start server with graceful shutdown
			go func() {
				log.Info("listening", "port", cfg.Port)
				if err := app.Listen(":" + cfg.Port); err != nil {
					log.Error("fiber server stopped", "err", err)
					stop()
				}
			}()

			// Wait for termination signal
			<-ctx.Done()

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := app.ShutdownWithContext(shutdownCtx); err != nil {
				log.Error("error during shutdown", "err", err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&refreshOnStart, "refresh-on-start", false, "run one refresh in the background at startup")
	return cmd
}
