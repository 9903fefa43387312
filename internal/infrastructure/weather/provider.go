// Package weather builds the hourly environmental-risk series for a location.
package weather

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"activity_service/internal/domain/model"
)

const (
	firstHour = 6
	lastHour  = 21
	// OneCall отдает 48 часов, берем только первые сутки
	forecastHours = 24
)

const owmUnavailableNote = "OpenWeatherMap unavailable or key missing — using heuristic UV/rain."

// Provider produces today's 06:00–21:00 series. UV always comes from the daytime
// heuristic; OpenWeatherMap, when configured, only marks rain hours and reports the
// daily maximum UV as a note.
type Provider struct {
	owm    *OWMClient
	now    func() time.Time
	logger zerolog.Logger
}

// NewProvider creates a provider; owm may be nil for heuristic-only operation.
func NewProvider(owm *OWMClient, logger zerolog.Logger) *Provider {
	return &Provider{
		owm:    owm,
		now:    time.Now,
		logger: logger.With().Str("component", "weather").Logger(),
	}
}

// HeuristicUV estimates the UV index for a local hour of day.
func HeuristicUV(hour int) int {
	switch {
	case hour >= 10 && hour <= 16:
		return 7
	case hour == 9 || hour == 17:
		return 4
	default:
		return 2
	}
}

func (p *Provider) GetWeatherContext(ctx context.Context, lat, lon float64, tzName string) (model.WeatherContext, error) {
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return model.WeatherContext{}, fmt.Errorf("%w: unknown timezone %q", model.ErrInvalidRequest, tzName)
	}

	today := p.now().In(loc)
	hourly := make([]model.HourlyRisk, 0, lastHour-firstHour+1)
	for h := firstHour; h <= lastHour; h++ {
		hourly = append(hourly, model.HourlyRisk{
			Time:    time.Date(today.Year(), today.Month(), today.Day(), h, 0, 0, 0, loc),
			UVIndex: HeuristicUV(h),
		})
	}

	wctx := model.WeatherContext{
		TZName: tzName,
		Date:   today.Format("2006-01-02"),
		Hourly: hourly,
		Notes:  []string{},
	}
	if p.owm == nil {
		return wctx, nil
	}

	forecast, err := p.owm.OneCall(ctx, lat, lon)
	if err != nil {
		p.logger.Warn().Err(err).Msg("openweathermap request failed")
		wctx.Notes = append(wctx.Notes, owmUnavailableNote)
		return wctx, nil
	}
	applyForecast(&wctx, forecast, today, loc)
	return wctx, nil
}

func applyForecast(wctx *model.WeatherContext, forecast *OneCallResponse, today time.Time, loc *time.Location) {
	hours := forecast.Hourly
	if len(hours) > forecastHours {
		hours = hours[:forecastHours]
	}

	rainHours := make(map[int]bool)
	for _, h := range hours {
		t := time.Unix(h.Dt, 0).In(loc)
		if sameDay(t, today) && h.Rainy() {
			rainHours[t.Hour()] = true
		}
	}
	for i := range wctx.Hourly {
		if rainHours[wctx.Hourly[i].Time.Hour()] {
			wctx.Hourly[i].Rain = true
		}
	}

	if len(forecast.Daily) > 0 && forecast.Daily[0].UVI != nil {
		uvi := *forecast.Daily[0].UVI
		wctx.DailyUVI = &uvi
		wctx.Notes = append(wctx.Notes, fmt.Sprintf("Daily max UV index (forecast): %g", uvi))
	}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
