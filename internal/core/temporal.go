package core

import (
	"strings"
	"time"

	"activity_service/internal/domain/model"
)

const maxGoodRisk = 2

// now is used only to anchor fallback windows when the series is empty.
var now = time.Now

// HourRisk accumulates the risk heuristic for a single hour.
func HourRisk(rec model.HourlyRisk, active model.SensitivitySet) int {
	risk := 0
	if active.Has(model.SensitivityUV) {
		switch {
		case rec.UVIndex >= 7:
			risk += 3
		case rec.UVIndex >= 4:
			risk += 2
		default:
			risk++
		}
	}
	if pollenActive(active) {
		h := rec.Time.Hour()
		if (h >= 5 && h <= 10) || (h >= 16 && h <= 20) {
			risk += 2
		} else {
			risk++
		}
		if rec.Rain {
			risk--
		}
	}
	if risk < 0 {
		risk = 0
	}
	return risk
}

func pollenActive(active model.SensitivitySet) bool {
	return active.Has(model.SensitivityPollen) || active.Has(model.SensitivityBreathing)
}

// GoodHours marks each hour whose accumulated risk is at most 2.
func GoodHours(hourly []model.HourlyRisk, active model.SensitivitySet) []bool {
	mask := make([]bool, len(hourly))
	for i, rec := range hourly {
		mask[i] = HourRisk(rec, active) <= maxGoodRisk
	}
	return mask
}

// hourRun is an inclusive [start, end] index range of consecutive good hours.
type hourRun struct {
	start, end int
}

func contiguousRuns(mask []bool) []hourRun {
	var runs []hourRun
	start := -1
	for i, good := range mask {
		if good && start < 0 {
			start = i
		}
		if start >= 0 && (!good || i == len(mask)-1) {
			end := i
			if !good {
				end = i - 1
			}
			runs = append(runs, hourRun{start: start, end: end})
			start = -1
		}
	}
	return runs
}

// RecommendWindows extracts contiguous low-risk windows from one day's hourly series.
// When no hour qualifies it returns the fixed early-morning and evening windows, so the
// result is never empty.
func RecommendWindows(hourly []model.HourlyRisk, active model.SensitivitySet) []model.TimeWindow {
	var windows []model.TimeWindow
	for _, run := range contiguousRuns(GoodHours(hourly, active)) {
		windows = append(windows, model.TimeWindow{
			Start:  hourly[run.start].Time,
			End:    hourly[run.end].Time.Add(time.Hour),
			Reason: windowReason(hourly[run.start:run.end+1], active),
		})
	}
	if len(windows) > 0 {
		return windows
	}

	day := now()
	if len(hourly) > 0 {
		day = hourly[0].Time
	}
	return fallbackWindows(day)
}

func windowReason(run []model.HourlyRisk, active model.SensitivitySet) string {
	var why []string
	if active.Has(model.SensitivityUV) {
		why = append(why, "lower UV")
	}
	if pollenActive(active) {
		reason := "lower pollen (est.)"
		for _, rec := range run {
			if rec.Rain {
				reason += " after rain"
				break
			}
		}
		why = append(why, reason)
	}
	if len(why) == 0 {
		return "comfortable"
	}
	return strings.Join(why, ", ")
}

func fallbackWindows(day time.Time) []model.TimeWindow {
	at := func(hour int) time.Time {
		return time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, day.Location())
	}
	return []model.TimeWindow{
		{Start: at(6), End: at(9), Reason: "early morning (heuristic)"},
		{Start: at(18), End: at(21), Reason: "evening (heuristic)"},
	}
}
