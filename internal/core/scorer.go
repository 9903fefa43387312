package core

import (
	"math"
	"sort"
	"strconv"

	"activity_service/internal/domain/model"
)

// adjustment returns the score delta one sensitivity contributes for a place.
// roadM is nil when no road data was available.
type adjustment func(a model.ClassifiedAttributes, roadM *float64) float64

// roadBands applies the shared <80 / <180 / <350 / else banding. No data, no delta.
func roadBands(roadM *float64, near, mid, far, clear float64) float64 {
	switch {
	case roadM == nil:
		return 0
	case *roadM < 80:
		return near
	case *roadM < 180:
		return mid
	case *roadM < 350:
		return far
	default:
		return clear
	}
}

func kindIn(k model.Kind, kinds ...model.Kind) bool {
	for _, x := range kinds {
		if k == x {
			return true
		}
	}
	return false
}

func when(cond bool, delta float64) float64 {
	if cond {
		return delta
	}
	return 0
}

var adjustments = map[model.Sensitivity]adjustment{
	model.SensitivityUV: func(a model.ClassifiedAttributes, _ *float64) float64 {
		return when(a.Indoor, 28) +
			when(a.ShadedPossible, 12) +
			when(a.Waterfront, 6) +
			when(kindIn(a.Kind, model.KindSportsField, model.KindRunningTrack), -5)
	},
	model.SensitivityPollen: func(a model.ClassifiedAttributes, _ *float64) float64 {
		return when(a.Indoor, 26) +
			when(a.Waterfront, 12) +
			when(a.PollenRisk == model.PollenHigher, -18) +
			when(a.PollenRisk == model.PollenLow, 8)
	},
	model.SensitivityBreathing: func(a model.ClassifiedAttributes, _ *float64) float64 {
		return when(a.Indoor, 12) +
			when(a.Waterfront, 8) +
			when(a.Paved, 6) +
			when(a.Kind == model.KindSportsField, -4)
	},
	model.SensitivitySmog: func(_ model.ClassifiedAttributes, roadM *float64) float64 {
		return roadBands(roadM, -24, -16, -8, 4)
	},
	model.SensitivityLowImpact: func(a model.ClassifiedAttributes, _ *float64) float64 {
		return when(a.Paved, 10) +
			when(a.Indoor, 6) +
			when(kindIn(a.Kind, model.KindRunningTrack, model.KindSwimmingPool, model.KindCycleway), 10) +
			when(kindIn(a.Kind, model.KindSportsField, model.KindPlayground), -4)
	},
	model.SensitivityNoise: func(a model.ClassifiedAttributes, roadM *float64) float64 {
		return roadBands(roadM, -22, -12, -6, 6) + when(a.QuietHint, 4)
	},
	model.SensitivityPrivacy: func(a model.ClassifiedAttributes, roadM *float64) float64 {
		return when(roadM != nil && *roadM > 350, 10) +
			when(a.QuietHint, 6) +
			when(kindIn(a.Kind, model.KindWaterfront, model.KindPlayground), -4)
	},
	model.SensitivityAccessibility: func(a model.ClassifiedAttributes, _ *float64) float64 {
		return when(a.WheelchairAccessible, 20) +
			when(a.Paved, 8) +
			when(kindIn(a.Kind, model.KindCommunityCenter, model.KindSportsCentre, model.KindSwimmingPool), 6)
	},
}

// publicOutdoorKinds get a small nudge regardless of the active sensitivities.
var publicOutdoorKinds = []model.Kind{
	model.KindPark,
	model.KindCycleway,
	model.KindRunningTrack,
	model.KindWaterfront,
	model.KindRecreationGround,
	model.KindFitnessStation,
}

const (
	baseScore          = 100.0
	decayPerKm         = 8.0
	publicOutdoorBonus = 6.0
)

// Score ranks a classified place for the active sensitivities. Scores are not
// normalised and may exceed 100 when bonuses stack.
func Score(a model.ClassifiedAttributes, active model.SensitivitySet, distanceKm float64, roadM *float64) float64 {
	score := math.Max(0, baseScore-distanceKm*decayPerKm)
	for _, s := range model.AllSensitivities {
		if active.Has(s) {
			score += adjustments[s](a, roadM)
		}
	}
	if kindIn(a.Kind, publicOutdoorKinds...) {
		score += publicOutdoorBonus
	}
	return roundTenth(score)
}

// roundTenth rounds the stored binary value to one decimal, ties to even:
// 97.549999... gives 97.5.
func roundTenth(x float64) float64 {
	v, _ := strconv.ParseFloat(strconv.FormatFloat(x, 'f', 1, 64), 64)
	return v
}

// Rank sorts places by score descending, breaking ties by distance ascending.
func Rank(places []model.ClassifiedPlace) {
	sort.SliceStable(places, func(i, j int) bool {
		if places[i].Score != places[j].Score {
			return places[i].Score > places[j].Score
		}
		return places[i].DistanceKm < places[j].DistanceKm
	})
}
