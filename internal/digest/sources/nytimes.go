package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/i474232898/thirty-today/internal/digest"
	"github.com/i474232898/thirty-today/internal/paginate"
	"github.com/i474232898/thirty-today/internal/upstream"
)

const (
	nytimesBaseURL   = "https://api.nytimes.com/svc/search/v2/articlesearch.json"
	nytimesMaxPages  = 100
	nytimesMediaRoot = "https://nytimes.com/"
)

// NYTimesSections restricts article search to the desks worth showing.
var NYTimesSections = []string{
	"Arts", "Automobiles", "Autos", "Blogs", "Books", "Business", "Education",
	"Front Page", "Giving", "Health", "Job Market", "Movies", "Multimedia",
	"National", "New York", "Olympics", "Opinion", "Public Editor", "Real Estate",
	"Science", "Sports", "Style", "Sunday Magazine", "Sunday Review", "Technology",
	"The Public Editor", "Theater", "Today's Headlines", "Travel", "U.S.",
	"Washington", "World", "Your Money",
}

// NYTimesSource pages through the New York Times article search.
type NYTimesSource struct {
	apiKey   string
	baseURL  string
	sections []string
	client   *upstream.Client
	walker   paginate.Walker
}

// NewNYTimesSource creates the source. A nil sections list applies
// NYTimesSections; an empty non-nil list disables the filter.
func NewNYTimesSource(cfg Config, apiKey string, sections []string) *NYTimesSource {
	if sections == nil {
		sections = NYTimesSections
	}
	return &NYTimesSource{
		apiKey:   apiKey,
		baseURL:  cfg.baseURL(nytimesBaseURL),
		sections: sections,
		client:   upstream.NewClient("nytimes", cfg.Client),
		walker: paginate.Walker{
			Source: "New York Times",
			Pacer:  cfg.pacer(),
			Log:    cfg.logger(),
			Label:  func(page int) string { return fmt.Sprintf("page %d", page) },
		},
	}
}

func (s *NYTimesSource) Name() string {
	return "nytimes"
}

// Fetch walks pages 0.. while the declared offset is below the hit count. A
// response without its meta object ends the walk with what was gathered.
func (s *NYTimesSource) Fetch(ctx context.Context, w digest.Window) ([]digest.Article, error) {
	strategy := paginate.Offset{First: 0, Max: nytimesMaxPages}

	articles, stats := paginate.Walk(ctx, s.walker, strategy, func(ctx context.Context, page int) (paginate.Page[digest.Article], error) {
		return s.fetchPage(ctx, w, page)
	})
	return articles, unreachable(s.Name(), stats)
}

type nytMultimedia struct {
	Type   string `json:"type"`
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// nytMultimediaList tolerates the newer object-shaped multimedia field by
// treating anything but an array as no media.
type nytMultimediaList []nytMultimedia

func (l *nytMultimediaList) UnmarshalJSON(b []byte) error {
	var items []nytMultimedia
	if err := json.Unmarshal(b, &items); err != nil {
		*l = nil
		return nil
	}
	*l = items
	return nil
}

func (s *NYTimesSource) fetchPage(ctx context.Context, w digest.Window, page int) (paginate.Page[digest.Article], error) {
	values := url.Values{}
	values.Set("api-key", s.apiKey)
	values.Set("begin_date", string(digest.KeyOf(w.From)))
	values.Set("end_date", string(digest.KeyOf(w.To)))
	values.Set("page", strconv.Itoa(page))
	if fq := sectionFilter(s.sections); fq != "" {
		values.Set("fq", fq)
	}

	var payload struct {
		Response *struct {
			Docs []struct {
				PubDate  string `json:"pub_date"`
				Headline struct {
					Main string `json:"main"`
				} `json:"headline"`
				WebURL         string            `json:"web_url"`
				Abstract       *string           `json:"abstract"`
				Multimedia     nytMultimediaList `json:"multimedia"`
				SectionName    string            `json:"section_name"`
				SubsectionName string            `json:"subsection_name"`
			} `json:"docs"`
			Meta *struct {
				Hits   int `json:"hits"`
				Offset int `json:"offset"`
			} `json:"meta"`
		} `json:"response"`
	}

	if err := s.client.GetJSON(ctx, s.baseURL+"?"+values.Encode(), &payload); err != nil {
		return paginate.Page[digest.Article]{}, err
	}
	if payload.Response == nil || payload.Response.Meta == nil {
		return paginate.Page[digest.Article]{}, fmt.Errorf("%w: nytimes response meta missing", upstream.ErrMalformed)
	}

	articles := make([]digest.Article, 0, len(payload.Response.Docs))
	for _, d := range payload.Response.Docs {
		key, err := publishedKey(d.PubDate)
		if err != nil {
			s.walker.Log.Debug("nytimes: skipping doc", slog.String("url", d.WebURL), slog.Any("err", err))
			continue
		}

		var thumb *digest.Thumbnail
		if len(d.Multimedia) > 1 && d.Multimedia[0].Type == "image" {
			m := d.Multimedia[0]
			thumb = &digest.Thumbnail{
				URL:    nytimesMediaRoot + strings.TrimPrefix(m.URL, "/"),
				Width:  m.Width,
				Height: m.Height,
			}
		}

		articles = append(articles, digest.Article{
			Date:       key,
			Headline:   d.Headline.Main,
			WebURL:     d.WebURL,
			Abstract:   d.Abstract,
			Thumbnail:  thumb,
			Section:    d.SectionName,
			Subsection: d.SubsectionName,
		})
	}

	return paginate.Page[digest.Article]{
		Items: articles,
		Meta: paginate.Meta{
			Offset: payload.Response.Meta.Offset,
			Hits:   payload.Response.Meta.Hits,
		},
	}, nil
}

// sectionFilter builds the Lucene filter `section_name:("A" "B")`.
func sectionFilter(sections []string) string {
	if len(sections) == 0 {
		return ""
	}
	quoted := make([]string, len(sections))
	for i, s := range sections {
		quoted[i] = strconv.Quote(s)
	}
	return "section_name:(" + strings.Join(quoted, " ") + ")"
}
