package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/redis/go-redis/v9"

	"github.com/i474232898/thirty-today/internal/config"
	"github.com/i474232898/thirty-today/internal/digest"
	"github.com/i474232898/thirty-today/internal/digest/sources"
	"github.com/i474232898/thirty-today/internal/store"
)

// newStore opens the configured backend. The returned func releases it.
func newStore(ctx context.Context, cfg *config.AppConfig) (digest.Store, func(), error) {
	switch cfg.StoreBackend {
	case "memory":
		return store.NewMemoryStore(), func() {}, nil
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("connect redis %s: %w", cfg.RedisAddr, err)
		}
		return store.NewRedisStore(client, cfg.RedisKey), func() { _ = client.Close() }, nil
	case "file", "":
		return store.NewFileStore(cfg.DataPath), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

// sourceConfig is what every source shares: one HTTP client and the pacing delay.
func sourceConfig(cfg *config.AppConfig, log *slog.Logger) sources.Config {
	return sources.Config{
		Client: &http.Client{Timeout: cfg.HTTPTimeout},
		Delay:  cfg.RequestDelay,
		Log:    log,
	}
}

// newSources builds the four upstream sources on one shared config.
func newSources(sc sources.Config, creds config.Credentials) digest.Sources {
	return digest.Sources{
		Guardian: sources.NewGuardianSource(sc, creds.GuardianAPIKey),
		NYTimes:  sources.NewNYTimesSource(sc, creds.NYTimesAPIKey, nil),
		Events:   sources.NewWikimediaSource(sc),
		Weather:  sources.NewMeteostatSource(sc, creds.MeteostatAPIKey, nil),
	}
}
