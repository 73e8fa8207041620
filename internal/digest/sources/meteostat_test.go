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

func TestMeteostatFetchesEachLocation(t *testing.T) {
	var zones []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		zones = append(zones, q.Get("tz"))
		assert.Equal(t, "1996-10-15", q.Get("start"))
		assert.Equal(t, "1996-10-17", q.Get("end"))
		assert.Equal(t, "key", q.Get("rapidapi-key"))

		if q.Get("tz") == "America/New_York" {
			http.Error(w, "quota", http.StatusForbidden)
			return
		}
		_, _ = w.Write([]byte(`{"meta":{},"data":[
			{"time":"1996-10-15 23:00:00","temp":11.2,"rhum":87,"wspd":9.4},
			{"time":"1996-10-16 00:00:00","temp":null,"rhum":88,"wspd":7.6}
		]}`))
	}))
	defer srv.Close()

	pacer := &countingPacer{}
	readings, err := NewMeteostatSource(testConfig(srv, pacer), "key", nil).Fetch(context.Background(), testWindow)
	require.NoError(t, err)

	assert.Equal(t, []string{"Europe/London", "America/New_York"}, zones)
	assert.Equal(t, 2, pacer.waits)

	require.Len(t, readings, 2)
	assert.Equal(t, digest.DateKey("19961015"), readings[0].Date)
	assert.Equal(t, "London", readings[0].Location.Name)
	require.NotNil(t, readings[0].Temp)
	assert.InDelta(t, 11.2, *readings[0].Temp, 0.001)

	assert.Equal(t, digest.DateKey("19961016"), readings[1].Date)
	assert.Nil(t, readings[1].Temp)
	require.NotNil(t, readings[1].WSpd)
}
