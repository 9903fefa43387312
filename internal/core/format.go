package core

import (
	"fmt"
	"strings"

	"activity_service/internal/domain/model"
)

const maxFormattedWindows = 3

// Badges returns short attribute labels for display next to a place.
func Badges(p model.ClassifiedPlace) []string {
	b := make([]string, 0, 8)
	if p.Indoor {
		b = append(b, "indoor")
	}
	if p.ShadedPossible {
		b = append(b, "shaded")
	}
	if p.Waterfront {
		b = append(b, "waterfront")
	}
	if p.Paved {
		b = append(b, "paved")
	}
	if p.WheelchairAccessible {
		b = append(b, "wheelchair")
	}
	switch p.PollenRisk {
	case model.PollenLow:
		b = append(b, "low-pollen")
	case model.PollenHigher:
		b = append(b, "higher-pollen")
	}
	if p.IsFree != nil && *p.IsFree {
		b = append(b, "free")
	}
	if p.IsPaid != nil && *p.IsPaid {
		b = append(b, "paid")
	}
	if p.RoadDistanceMeters != nil {
		switch {
		case *p.RoadDistanceMeters > 350:
			b = append(b, "away from traffic")
		case *p.RoadDistanceMeters < 120:
			b = append(b, "near traffic")
		}
	}
	return b
}

// FormatWindows renders up to three windows as "6:00 AM–9:00 AM (reason)" joined by "; ".
func FormatWindows(windows []model.TimeWindow) string {
	if len(windows) > maxFormattedWindows {
		windows = windows[:maxFormattedWindows]
	}
	parts := make([]string, 0, len(windows))
	for _, w := range windows {
		parts = append(parts, fmt.Sprintf("%s–%s (%s)", w.Start.Format("3:04 PM"), w.End.Format("3:04 PM"), w.Reason))
	}
	return strings.Join(parts, "; ")
}
