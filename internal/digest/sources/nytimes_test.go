package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/thirty-today/internal/digest"
)

const nytPageZero = `{
  "status": "OK",
  "response": {
    "docs": [
      {
        "pub_date": "1996-10-16T05:00:00+0000",
        "headline": {"main": "Clinton and Dole Clash"},
        "web_url": "https://www.nytimes.com/1996/10/16/us/debate.html",
        "abstract": "The candidates <b>sparred</b> over taxes.",
        "multimedia": [
          {"type": "image", "url": "images/1996/debate.jpg", "width": 600, "height": 400},
          {"type": "image", "url": "images/1996/debate-thumb.jpg", "width": 75, "height": 75}
        ],
        "section_name": "U.S.",
        "subsection_name": "Politics"
      },
      {
        "pub_date": "1996-10-17T05:00:00+0000",
        "headline": {"main": "Yankees Advance"},
        "web_url": "https://www.nytimes.com/1996/10/17/sports/yankees.html",
        "abstract": null,
        "multimedia": [],
        "section_name": "Sports"
      }
    ],
    "meta": {"hits": 25, "offset": 0, "time": 12}
  }
}`

func TestNYTimesStopsWhenMetaMissing(t *testing.T) {
	var requested []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		requested = append(requested, q.Get("page"))
		assert.Equal(t, "19961015", q.Get("begin_date"))
		assert.Equal(t, "19961017", q.Get("end_date"))
		assert.Contains(t, q.Get("fq"), `section_name:("Arts" "Automobiles"`)

		if q.Get("page") == "0" {
			_, _ = w.Write([]byte(nytPageZero))
			return
		}
		_, _ = w.Write([]byte(`{"status":"OK","response":{"docs":[]}}`))
	}))
	defer srv.Close()

	pacer := &countingPacer{}
	src := NewNYTimesSource(testConfig(srv, pacer), "key", nil)

	articles, err := src.Fetch(context.Background(), testWindow)
	require.NoError(t, err)

	assert.Equal(t, []string{"0", "1"}, requested)
	require.Len(t, articles, 2)

	a := articles[0]
	assert.Equal(t, digest.DateKey("19961016"), a.Date)
	assert.Equal(t, "Clinton and Dole Clash", a.Headline)
	require.NotNil(t, a.Abstract)
	assert.Equal(t, "The candidates <b>sparred</b> over taxes.", *a.Abstract)
	require.NotNil(t, a.Thumbnail)
	assert.Equal(t, "https://nytimes.com/images/1996/debate.jpg", a.Thumbnail.URL)
	assert.Equal(t, 600, a.Thumbnail.Width)
	assert.Equal(t, "U.S.", a.Section)
	assert.Equal(t, "Politics", a.Subsection)

	b := articles[1]
	assert.Equal(t, digest.DateKey("19961017"), b.Date)
	assert.Nil(t, b.Abstract)
	assert.Nil(t, b.Thumbnail)
}

func TestNYTimesPagesUntilOffsetReachesHits(t *testing.T) {
	var requested []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		requested = append(requested, page)
		offsets := map[string]string{"0": "0", "1": "10", "2": "20"}
		_, _ = w.Write([]byte(`{"response":{"docs":[],"meta":{"hits":15,"offset":` + offsets[page] + `}}}`))
	}))
	defer srv.Close()

	_, err := NewNYTimesSource(testConfig(srv, &countingPacer{}), "key", nil).Fetch(context.Background(), testWindow)
	require.NoError(t, err)
	assert.Equal(t, []string{"0", "1", "2"}, requested)
}

func TestNYTimesSkipsFailedPagesAndContinues(t *testing.T) {
	var requested []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		requested = append(requested, page)
		p, _ := strconv.Atoi(page)
		if p < 6 {
			http.Error(w, `{"fault":"rate limit"}`, http.StatusTooManyRequests)
			return
		}
		_, _ = fmt.Fprintf(w, `{"response":{"docs":[{
			"pub_date":"1996-10-16T05:00:00+0000",
			"headline":{"main":"Page %d"},
			"web_url":"https://example.com/%d",
			"section_name":"World"
		}],"meta":{"hits":70,"offset":%d}}}`, p, p, p*10)
	}))
	defer srv.Close()

	articles, err := NewNYTimesSource(testConfig(srv, &countingPacer{}), "key", nil).Fetch(context.Background(), testWindow)
	require.NoError(t, err)

	assert.Equal(t, []string{"0", "1", "2", "3", "4", "5", "6", "7"}, requested)
	require.Len(t, articles, 2)
	assert.Equal(t, "Page 6", articles[0].Headline)
	assert.Equal(t, "Page 7", articles[1].Headline)
}

func TestNYTimesToleratesObjectMultimedia(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"response":{"docs":[{
			"pub_date":"1996-10-16T05:00:00+0000",
			"headline":{"main":"Object media"},
			"web_url":"https://example.com",
			"multimedia":{"caption":"","default":{"url":"x"}},
			"section_name":"World"
		}],"meta":{"hits":1,"offset":1}}}`))
	}))
	defer srv.Close()

	articles, err := NewNYTimesSource(testConfig(srv, &countingPacer{}), "key", []string{}).Fetch(context.Background(), testWindow)
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Nil(t, articles[0].Thumbnail)
}

func TestSectionFilter(t *testing.T) {
	assert.Equal(t, `section_name:("Arts" "Today's Headlines")`, sectionFilter([]string{"Arts", "Today's Headlines"}))
	assert.Equal(t, "", sectionFilter(nil))
}
