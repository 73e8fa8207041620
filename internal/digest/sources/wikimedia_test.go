package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/thirty-today/internal/digest"
)

const wikiOctober16 = `{
  "events": [
    {
      "text": "A stampede at a football match in Guatemala City kills 84.",
      "year": 1996,
      "pages": [
        {
          "titles": {"normalized": "Estadio Mateo Flores"},
          "content_urls": {"desktop": {"page": "https://en.wikipedia.org/wiki/Estadio_Mateo_Flores"}},
          "description": "Stadium in Guatemala City",
          "extract": "The Estadio Doroteo Guamuch Flores is a multi-purpose stadium.",
          "thumbnail": {"source": "https://upload.wikimedia.org/stadium.jpg", "width": 320, "height": 213}
        },
        {
          "titles": {"normalized": "October 16"},
          "content_urls": {"desktop": {"page": "https://en.wikipedia.org/wiki/October_16"}},
          "description": "Day of the year",
          "extract": "October 16 is the 289th day of the year."
        }
      ]
    },
    {
      "text": "Something from another year.",
      "year": 1978,
      "pages": []
    }
  ]
}`

func TestWikimediaFiltersYearAndPlaceholder(t *testing.T) {
	var requested []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requested = append(requested, r.URL.Path)
		switch r.URL.Path {
		case "/10/16":
			_, _ = w.Write([]byte(wikiOctober16))
		case "/10/17":
			http.Error(w, "upstream down", http.StatusServiceUnavailable)
		default:
			_, _ = w.Write([]byte(`{"events":[]}`))
		}
	}))
	defer srv.Close()

	pacer := &countingPacer{}
	events, err := NewWikimediaSource(testConfig(srv, pacer)).Fetch(context.Background(), testWindow)
	require.NoError(t, err)

	assert.Equal(t, []string{"/10/15", "/10/16", "/10/17"}, requested)
	assert.Equal(t, 3, pacer.waits)

	require.Len(t, events, 1)
	e := events[0]
	assert.Equal(t, digest.DateKey("19961016"), e.Date)
	assert.Equal(t, "A stampede at a football match in Guatemala City kills 84.", e.Headline)

	require.Len(t, e.Pages, 1)
	p := e.Pages[0]
	assert.Equal(t, "Estadio Mateo Flores", p.Title)
	assert.Equal(t, "https://en.wikipedia.org/wiki/Estadio_Mateo_Flores", p.WebURL)
	assert.Equal(t, "Stadium in Guatemala City", p.Description)
	require.NotNil(t, p.Thumbnail)
	assert.Equal(t, 320, p.Thumbnail.Width)
}

func TestWikimediaMalformedDayDoesNotAbortOthers(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Path == "/10/15" {
			_, _ = w.Write([]byte(`{}`))
			return
		}
		_, _ = w.Write([]byte(`{"events":[{"text":"x","year":1996,"pages":[]}]}`))
	}))
	defer srv.Close()

	events, err := NewWikimediaSource(testConfig(srv, &countingPacer{})).Fetch(context.Background(), testWindow)
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	require.Len(t, events, 2)
	assert.Equal(t, digest.DateKey("19961016"), events[0].Date)
	assert.Equal(t, digest.DateKey("19961017"), events[1].Date)
	assert.NotNil(t, events[0].Pages)
}
