package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

var validate = validator.New()

// Credentials are the three upstream keys, in the order the fetch command takes them.
type Credentials struct {
	GuardianAPIKey  string `validate:"required"`
	NYTimesAPIKey   string `validate:"required"`
	MeteostatAPIKey string `validate:"required"`
}

// Validate checks all three keys are present.
func (c Credentials) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid credentials: %w", err)
	}
	return nil
}

type AppConfig struct {
	Credentials Credentials `validate:"-"`

	// RequestDelay is the fixed pause between consecutive calls to one upstream.
	RequestDelay time.Duration `validate:"gte=0"`
	HTTPTimeout  time.Duration `validate:"gt=0"`

	// Document store.
	StoreBackend string `validate:"oneof=file redis memory"`
	DataPath     string `validate:"required_if=StoreBackend file"`
	RedisAddr    string `validate:"required_if=StoreBackend redis"`
	RedisKey     string `validate:"required_if=StoreBackend redis"`

	Port        string `validate:"required,numeric"`
	ProxyHeader string

	// RefreshAt is an HH:MM UTC time for the daily in-process refresh; empty disables it.
	RefreshAt string `validate:"omitempty,datetime=15:04"`

	GeoBaseURL string `validate:"required,url"`
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", slog.Any("err", err))
	}
	cfg := &AppConfig{}

	cfg.Credentials = Credentials{
		GuardianAPIKey:  os.Getenv("GUARDIAN_API_KEY"),
		NYTimesAPIKey:   os.Getenv("NYTIMES_API_KEY"),
		MeteostatAPIKey: os.Getenv("METEOSTAT_API_KEY"),
	}

	delay, err := time.ParseDuration(getenvDefault("REQUEST_DELAY", "6s"))
	if err != nil {
		return nil, fmt.Errorf("invalid REQUEST_DELAY: %w", err)
	}
	cfg.RequestDelay = delay

	timeout, err := time.ParseDuration(getenvDefault("HTTP_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	cfg.StoreBackend = strings.ToLower(getenvDefault("STORE_BACKEND", "file"))
	cfg.DataPath = getenvDefault("DATA_PATH", "data.json")
	cfg.RedisAddr = os.Getenv("REDIS_ADDR")
	cfg.RedisKey = getenvDefault("REDIS_KEY", "thirty-today:document")

	cfg.Port = getenvDefault("PORT", "8080")
	cfg.ProxyHeader = os.Getenv("PROXY_HEADER")
	cfg.RefreshAt = os.Getenv("REFRESH_AT")
	cfg.GeoBaseURL = getenvDefault("GEO_BASE_URL", "http://ip-api.com/json")

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
