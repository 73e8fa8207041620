package sources

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/i474232898/thirty-today/internal/digest"
	"github.com/i474232898/thirty-today/internal/paginate"
	"github.com/i474232898/thirty-today/internal/upstream"
)

const wikimediaBaseURL = "https://api.wikimedia.org/feed/v1/wikipedia/en/onthisday/events"

// PlaceholderDescription marks the calendar-day page Wikipedia attaches to
// most events; it says nothing about the event itself.
const PlaceholderDescription = "Day of the year"

// WikimediaSource fetches "on this day" events, one call per window date.
type WikimediaSource struct {
	baseURL string
	client  *upstream.Client
	walker  paginate.Walker
}

func NewWikimediaSource(cfg Config) *WikimediaSource {
	return &WikimediaSource{
		baseURL: strings.TrimSuffix(cfg.baseURL(wikimediaBaseURL), "/"),
		client:  upstream.NewClient("wikimedia", cfg.Client),
		walker: paginate.Walker{
			Source: "Wikimedia",
			Pacer:  cfg.pacer(),
			Log:    cfg.logger(),
		},
	}
}

func (s *WikimediaSource) Name() string {
	return "wikimedia"
}

// Fetch requests each window date in turn and keeps only the events of that
// date's year. A failed date contributes no events.
func (s *WikimediaSource) Fetch(ctx context.Context, w digest.Window) ([]digest.Event, error) {
	days := w.Days()

	walker := s.walker
	walker.Label = func(step int) string { return days[step].Format("01/02") }

	events, stats := paginate.Walk(ctx, walker, paginate.FixedList{Len: len(days)}, func(ctx context.Context, step int) (paginate.Page[digest.Event], error) {
		return s.fetchDay(ctx, days[step])
	})
	return events, unreachable(s.Name(), stats)
}

type wikiThumbnail struct {
	Source string `json:"source"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

func (s *WikimediaSource) fetchDay(ctx context.Context, day time.Time) (paginate.Page[digest.Event], error) {
	u := fmt.Sprintf("%s/%s", s.baseURL, day.Format("01/02"))

	var payload struct {
		Events *[]struct {
			Text  string `json:"text"`
			Year  int    `json:"year"`
			Pages []struct {
				Titles struct {
					Normalized string `json:"normalized"`
				} `json:"titles"`
				ContentURLs struct {
					Desktop struct {
						Page string `json:"page"`
					} `json:"desktop"`
				} `json:"content_urls"`
				Description string         `json:"description"`
				Extract     string         `json:"extract"`
				Thumbnail   *wikiThumbnail `json:"thumbnail"`
			} `json:"pages"`
		} `json:"events"`
	}

	if err := s.client.GetJSON(ctx, u, &payload); err != nil {
		return paginate.Page[digest.Event]{}, err
	}
	if payload.Events == nil {
		return paginate.Page[digest.Event]{}, fmt.Errorf("%w: wikimedia events missing", upstream.ErrMalformed)
	}

	key := digest.KeyOf(day)
	var events []digest.Event
	for _, e := range *payload.Events {
		if e.Year != day.Year() {
			continue
		}

		pages := make([]digest.EventPage, 0, len(e.Pages))
		for _, p := range e.Pages {
			if p.Description == PlaceholderDescription {
				continue
			}
			var thumb *digest.Thumbnail
			if p.Thumbnail != nil {
				thumb = &digest.Thumbnail{URL: p.Thumbnail.Source, Width: p.Thumbnail.Width, Height: p.Thumbnail.Height}
			}
			pages = append(pages, digest.EventPage{
				Title:       p.Titles.Normalized,
				WebURL:      p.ContentURLs.Desktop.Page,
				Description: p.Description,
				Abstract:    p.Extract,
				Thumbnail:   thumb,
			})
		}

		events = append(events, digest.Event{
			Date:     key,
			Headline: e.Text,
			Pages:    pages,
		})
	}

	return paginate.Page[digest.Event]{Items: events}, nil
}
