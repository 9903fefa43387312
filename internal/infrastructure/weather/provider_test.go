package weather

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"activity_service/internal/domain/model"
)

var fixedNow = time.Date(2025, time.June, 14, 7, 30, 0, 0, time.UTC)

func newTestProvider(owm *OWMClient) *Provider {
	p := NewProvider(owm, zerolog.Nop())
	p.now = func() time.Time { return fixedNow }
	return p
}

func TestHeuristicUV(t *testing.T) {
	tests := []struct {
		hour int
		want int
	}{
		{6, 2}, {8, 2}, {9, 4}, {10, 7}, {13, 7}, {16, 7}, {17, 4}, {18, 2}, {21, 2},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HeuristicUV(tt.hour), "hour %d", tt.hour)
	}
}

func TestOneCallHour_Rainy(t *testing.T) {
	assert.True(t, OneCallHour{Rain: map[string]float64{"1h": 0.2}}.Rainy())
	assert.True(t, OneCallHour{Pop: 0.6, Clouds: 80}.Rainy())
	assert.False(t, OneCallHour{Pop: 0.6, Clouds: 40}.Rainy())
	assert.False(t, OneCallHour{Pop: 0.2, Clouds: 100}.Rainy())
}

func TestProvider_HeuristicOnly(t *testing.T) {
	p := newTestProvider(nil)

	wctx, err := p.GetWeatherContext(context.Background(), 40, -75, "UTC")
	require.NoError(t, err)

	assert.Equal(t, "UTC", wctx.TZName)
	assert.Equal(t, "2025-06-14", wctx.Date)
	require.Len(t, wctx.Hourly, 16)
	assert.Equal(t, time.Date(2025, time.June, 14, 6, 0, 0, 0, time.UTC), wctx.Hourly[0].Time)
	assert.Equal(t, time.Date(2025, time.June, 14, 21, 0, 0, 0, time.UTC), wctx.Hourly[15].Time)
	for _, h := range wctx.Hourly {
		assert.Equal(t, HeuristicUV(h.Time.Hour()), h.UVIndex)
		assert.False(t, h.Rain)
	}
	assert.Empty(t, wctx.Notes)
	assert.Nil(t, wctx.DailyUVI)
}

func TestProvider_UsesLocalDay(t *testing.T) {
	p := NewProvider(nil, zerolog.Nop())
	// 05:30 UTC is 22:30 PDT of the previous day
	p.now = func() time.Time { return time.Date(2025, time.June, 14, 5, 30, 0, 0, time.UTC) }

	wctx, err := p.GetWeatherContext(context.Background(), 34, -118, "America/Los_Angeles")
	require.NoError(t, err)
	assert.Equal(t, "2025-06-13", wctx.Date)

	la, err := time.LoadLocation("America/Los_Angeles")
	require.NoError(t, err)
	require.NotEmpty(t, wctx.Hourly)
	assert.True(t, time.Date(2025, time.June, 13, 6, 0, 0, 0, la).Equal(wctx.Hourly[0].Time))
}

func TestProvider_InvalidTimezone(t *testing.T) {
	_, err := newTestProvider(nil).GetWeatherContext(context.Background(), 0, 0, "Nowhere/Special")
	assert.ErrorIs(t, err, model.ErrInvalidRequest)
}

func TestProvider_AppliesForecast(t *testing.T) {
	at := func(h int) int64 { return time.Date(2025, time.June, 14, h, 0, 0, 0, time.UTC).Unix() }
	tomorrow := time.Date(2025, time.June, 15, 8, 0, 0, 0, time.UTC).Unix()

	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{
			"timezone": "UTC",
			"hourly": [
				{"dt": %d, "uvi": 9.1, "pop": 0.9, "clouds": 95},
				{"dt": %d, "uvi": 9.5, "rain": {"1h": 1.2}},
				{"dt": %d, "uvi": 1.0, "pop": 0.1, "clouds": 10},
				{"dt": %d, "rain": {"1h": 3.0}}
			],
			"daily": [{"dt": %d, "uvi": 8.4}]
		}`, at(8), at(15), at(19), tomorrow, at(12))
	}))
	defer srv.Close()

	p := newTestProvider(NewOWMClient(srv.URL, "secret", srv.Client()))
	wctx, err := p.GetWeatherContext(context.Background(), 40.5, -75.25, "UTC")
	require.NoError(t, err)

	assert.Contains(t, gotQuery, "appid=secret")
	assert.Contains(t, gotQuery, "lat=40.500000")

	rain := map[int]bool{}
	for _, h := range wctx.Hourly {
		if h.Rain {
			rain[h.Time.Hour()] = true
		}
		assert.Equal(t, HeuristicUV(h.Time.Hour()), h.UVIndex, "forecast UV does not override the heuristic")
	}
	assert.Equal(t, map[int]bool{8: true, 15: true}, rain)

	require.NotNil(t, wctx.DailyUVI)
	assert.InDelta(t, 8.4, *wctx.DailyUVI, 1e-9)
	assert.Equal(t, []string{"Daily max UV index (forecast): 8.4"}, wctx.Notes)
}

func TestProvider_ForecastFailureFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	p := newTestProvider(NewOWMClient(srv.URL, "bad", srv.Client()))
	wctx, err := p.GetWeatherContext(context.Background(), 40, -75, "UTC")
	require.NoError(t, err)

	require.Len(t, wctx.Hourly, 16)
	assert.Equal(t, []string{owmUnavailableNote}, wctx.Notes)
}
