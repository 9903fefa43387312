package model

import (
	"errors"
	"time"
)

var (
	ErrInvalidRequest      = errors.New("invalid request")
	ErrLocationNotFound    = errors.New("location not found")
	ErrInvalidCoordinates  = errors.New("invalid coordinates")
	ErrProviderUnavailable = errors.New("data provider unavailable")
)

// HourlyRisk - одна запись почасового ряда (локальное время, начало часа)
type HourlyRisk struct {
	Time    time.Time `json:"time"`
	UVIndex int       `json:"uv_index"`
	Rain    bool      `json:"rain"`
}

// TimeWindow is a recommended outdoor interval. End is exclusive.
type TimeWindow struct {
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	Reason string    `json:"reason"`
}

// WeatherContext is the hourly series for one local calendar day plus provider notes.
type WeatherContext struct {
	TZName   string       `json:"timezone"`
	Date     string       `json:"date"`
	Hourly   []HourlyRisk `json:"hourly"`
	DailyUVI *float64     `json:"daily_uvi,omitempty"`
	Notes    []string     `json:"notes"`
}

type SearchRequest struct {
	Address       string
	Lat           *float64
	Lon           *float64
	RadiusKm      float64
	Timezone      string
	Sensitivities SensitivitySet
	Include       []string
	Exclude       []string
	Limit         int
}

type SearchResult struct {
	ID            string            `json:"id"`
	Origin        Location          `json:"origin"`
	TZName        string            `json:"timezone"`
	RadiusKm      float64           `json:"radius_km"`
	Total         int               `json:"total"`
	Places        []ClassifiedPlace `json:"places"`
	Windows       []TimeWindow      `json:"windows"`
	WindowSummary string            `json:"window_summary"`
	Notes         []string          `json:"notes"`
}

type WindowsRequest struct {
	Lat           float64
	Lon           float64
	Timezone      string
	Sensitivities SensitivitySet
}

type WindowsResult struct {
	TZName  string       `json:"timezone"`
	Date    string       `json:"date"`
	Windows []TimeWindow `json:"windows"`
	Summary string       `json:"summary"`
	Notes   []string     `json:"notes"`
}
