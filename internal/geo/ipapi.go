package geo

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/i474232898/thirty-today/internal/upstream"
)

const DefaultBaseURL = "http://ip-api.com/json"

var validate = validator.New()

// lookupResponse is the subset of the ip-api.com payload we use.
type lookupResponse struct {
	Status   string `json:"status" validate:"required,oneof=success fail"`
	Message  string `json:"message"`
	Timezone string `json:"timezone" validate:"required_if=Status success"`
}

// Locator resolves a viewer's timezone from their IP address.
type Locator struct {
	baseURL string
	client  *upstream.Client
	log     *slog.Logger
}

func NewLocator(hc *http.Client, baseURL string, log *slog.Logger) *Locator {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if log == nil {
		log = slog.Default()
	}
	return &Locator{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  upstream.NewClient("ipapi", hc),
		log:     log,
	}
}

// Timezone returns the IANA zone for ip, or UTC when the address is private,
// unknown to the provider, or the lookup fails.
func (l *Locator) Timezone(ctx context.Context, ip string) *time.Location {
	loc, err := l.lookup(ctx, ip)
	if err != nil {
		l.log.Debug("geo: falling back to UTC", slog.String("ip", ip), slog.Any("err", err))
		return time.UTC
	}
	return loc
}

func (l *Locator) lookup(ctx context.Context, ip string) (*time.Location, error) {
	addr := net.ParseIP(ip)
	if addr == nil {
		return nil, fmt.Errorf("invalid ip %q", ip)
	}
	if addr.IsLoopback() || addr.IsPrivate() || addr.IsUnspecified() {
		return nil, fmt.Errorf("non-routable ip %s", ip)
	}

	var resp lookupResponse
	if err := l.client.GetJSON(ctx, l.baseURL+"/"+url.PathEscape(ip), &resp); err != nil {
		return nil, err
	}
	if err := validate.Struct(resp); err != nil {
		return nil, fmt.Errorf("%w: %v", upstream.ErrMalformed, err)
	}
	if resp.Status != "success" {
		return nil, fmt.Errorf("lookup failed: %s", resp.Message)
	}

	return time.LoadLocation(resp.Timezone)
}
