package sources

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/i474232898/thirty-today/internal/digest"
	"github.com/i474232898/thirty-today/internal/paginate"
	"github.com/i474232898/thirty-today/internal/upstream"
)

const (
	meteostatBaseURL    = "https://meteostat.p.rapidapi.com/point/hourly"
	meteostatTimeLayout = "2006-01-02 15:04:05"
)

var (
	London  = digest.Location{Name: "London", Lon: -0.118092, Lat: 51.509865, TZ: "Europe/London"}
	NewYork = digest.Location{Name: "New York", Lon: -73.935242, Lat: 40.73061, TZ: "America/New_York"}
)

// DefaultLocations are the points weather is fetched for, in request order.
var DefaultLocations = []digest.Location{London, NewYork}

// MeteostatSource fetches hourly point observations, one call per location.
type MeteostatSource struct {
	apiKey    string
	baseURL   string
	locations []digest.Location
	client    *upstream.Client
	walker    paginate.Walker
}

func NewMeteostatSource(cfg Config, apiKey string, locations []digest.Location) *MeteostatSource {
	if len(locations) == 0 {
		locations = DefaultLocations
	}
	return &MeteostatSource{
		apiKey:    apiKey,
		baseURL:   cfg.baseURL(meteostatBaseURL),
		locations: locations,
		client:    upstream.NewClient("meteostat", cfg.Client),
		walker: paginate.Walker{
			Source: "Meteostat",
			Pacer:  cfg.pacer(),
			Log:    cfg.logger(),
		},
	}
}

func (s *MeteostatSource) Name() string {
	return "meteostat"
}

// Fetch returns every hourly reading in the window for each location. A
// failed location contributes no readings.
func (s *MeteostatSource) Fetch(ctx context.Context, w digest.Window) ([]digest.WeatherReading, error) {
	walker := s.walker
	walker.Label = func(step int) string { return s.locations[step].Name }

	readings, stats := paginate.Walk(ctx, walker, paginate.FixedList{Len: len(s.locations)}, func(ctx context.Context, step int) (paginate.Page[digest.WeatherReading], error) {
		return s.fetchLocation(ctx, w, s.locations[step])
	})
	return readings, unreachable(s.Name(), stats)
}

func (s *MeteostatSource) fetchLocation(ctx context.Context, w digest.Window, loc digest.Location) (paginate.Page[digest.WeatherReading], error) {
	values := url.Values{}
	values.Set("lat", fmt.Sprintf("%f", loc.Lat))
	values.Set("lon", fmt.Sprintf("%f", loc.Lon))
	values.Set("start", w.From.Format(time.DateOnly))
	values.Set("end", w.To.Format(time.DateOnly))
	if loc.TZ != "" {
		values.Set("tz", loc.TZ)
	}
	values.Set("rapidapi-key", s.apiKey)

	var payload struct {
		Data *[]struct {
			Time string   `json:"time"`
			Temp *float64 `json:"temp"`
			RHum *float64 `json:"rhum"`
			WSpd *float64 `json:"wspd"`
		} `json:"data"`
	}

	if err := s.client.GetJSON(ctx, s.baseURL+"?"+values.Encode(), &payload); err != nil {
		return paginate.Page[digest.WeatherReading]{}, err
	}
	if payload.Data == nil {
		return paginate.Page[digest.WeatherReading]{}, fmt.Errorf("%w: meteostat data missing", upstream.ErrMalformed)
	}

	readings := make([]digest.WeatherReading, 0, len(*payload.Data))
	for _, h := range *payload.Data {
		ts, err := time.Parse(meteostatTimeLayout, h.Time)
		if err != nil {
			s.walker.Log.Debug("meteostat: skipping hour", slog.String("time", h.Time), slog.Any("err", err))
			continue
		}
		readings = append(readings, digest.WeatherReading{
			Date:     digest.KeyOf(ts),
			Time:     h.Time,
			Location: loc,
			Temp:     h.Temp,
			RHum:     h.RHum,
			WSpd:     h.WSpd,
		})
	}

	return paginate.Page[digest.WeatherReading]{Items: readings}, nil
}
