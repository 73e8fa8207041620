package sources

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/i474232898/thirty-today/internal/digest"
	"github.com/i474232898/thirty-today/internal/paginate"
	"github.com/i474232898/thirty-today/internal/upstream"
)

const (
	guardianBaseURL  = "https://content.guardianapis.com/search"
	guardianPageSize = 50
	guardianMaxPages = 20
)

// GuardianSource pages through the Guardian content search.
type GuardianSource struct {
	apiKey  string
	baseURL string
	client  *upstream.Client
	walker  paginate.Walker
}

func NewGuardianSource(cfg Config, apiKey string) *GuardianSource {
	return &GuardianSource{
		apiKey:  apiKey,
		baseURL: cfg.baseURL(guardianBaseURL),
		client:  upstream.NewClient("guardian", cfg.Client),
		walker: paginate.Walker{
			Source: "Guardian",
			Pacer:  cfg.pacer(),
			Log:    cfg.logger(),
			Label:  func(page int) string { return fmt.Sprintf("page %d", page) },
		},
	}
}

func (s *GuardianSource) Name() string {
	return "guardian"
}

// Fetch walks pages 1.. until the declared page count is reached, skipping
// pages that fail.
func (s *GuardianSource) Fetch(ctx context.Context, w digest.Window) ([]digest.Article, error) {
	strategy := paginate.TotalPages{First: 1, Max: guardianMaxPages}

	articles, stats := paginate.Walk(ctx, s.walker, strategy, func(ctx context.Context, page int) (paginate.Page[digest.Article], error) {
		return s.fetchPage(ctx, w, page)
	})
	return articles, unreachable(s.Name(), stats)
}

func (s *GuardianSource) fetchPage(ctx context.Context, w digest.Window, page int) (paginate.Page[digest.Article], error) {
	values := url.Values{}
	values.Set("api-key", s.apiKey)
	values.Set("from-date", w.From.Format(time.DateOnly))
	values.Set("to-date", w.To.Format(time.DateOnly))
	values.Set("page", strconv.Itoa(page))
	values.Set("page-size", strconv.Itoa(guardianPageSize))

	var payload struct {
		Response *struct {
			Pages   int `json:"pages"`
			Results []struct {
				WebPublicationDate string `json:"webPublicationDate"`
				WebTitle           string `json:"webTitle"`
				WebURL             string `json:"webUrl"`
				PillarName         string `json:"pillarName"`
				SectionName        string `json:"sectionName"`
			} `json:"results"`
		} `json:"response"`
	}

	if err := s.client.GetJSON(ctx, s.baseURL+"?"+values.Encode(), &payload); err != nil {
		return paginate.Page[digest.Article]{}, err
	}
	if payload.Response == nil {
		return paginate.Page[digest.Article]{}, fmt.Errorf("%w: guardian response object missing", upstream.ErrMalformed)
	}

	articles := make([]digest.Article, 0, len(payload.Response.Results))
	for _, r := range payload.Response.Results {
		key, err := publishedKey(r.WebPublicationDate)
		if err != nil {
			s.walker.Log.Debug("guardian: skipping result", slog.String("url", r.WebURL), slog.Any("err", err))
			continue
		}
		articles = append(articles, digest.Article{
			Date:       key,
			Headline:   r.WebTitle,
			WebURL:     r.WebURL,
			Section:    r.PillarName,
			Subsection: r.SectionName,
		})
	}

	return paginate.Page[digest.Article]{
		Items: articles,
		Meta:  paginate.Meta{TotalPages: payload.Response.Pages},
	}, nil
}
