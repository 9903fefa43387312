package core

import (
	"strings"

	"activity_service/internal/domain/model"
)

// classRule is one entry of the classification ladder. Rules are evaluated in order
// and the first match wins, so the order of classRules is significant.
type classRule struct {
	match func(tags map[string]string) bool
	apply func(tags map[string]string, a *model.ClassifiedAttributes)
}

var pavedSurfaces = map[string]bool{
	"paved":         true,
	"asphalt":       true,
	"concrete":      true,
	"paving_stones": true,
	"wood":          true,
}

func tagIs(key, value string) func(map[string]string) bool {
	return func(tags map[string]string) bool {
		return tags[key] == value
	}
}

func oneOf(v string, values ...string) bool {
	for _, x := range values {
		if v == x {
			return true
		}
	}
	return false
}

// coveredIndoor: крытый объект, если indoor=yes или covered=yes
func coveredIndoor(tags map[string]string) bool {
	return tags["indoor"] == "yes" || tags["covered"] == "yes"
}

func pollenByIndoor(indoor bool) model.PollenRisk {
	if indoor {
		return model.PollenLow
	}
	return model.PollenMedium
}

var classRules = []classRule{
	{
		match: tagIs("amenity", "community_centre"),
		apply: func(_ map[string]string, a *model.ClassifiedAttributes) {
			a.Kind, a.Indoor, a.PollenRisk = model.KindCommunityCenter, true, model.PollenLow
		},
	},
	{
		match: tagIs("leisure", "swimming_pool"),
		apply: func(tags map[string]string, a *model.ClassifiedAttributes) {
			a.Kind, a.Indoor = model.KindSwimmingPool, coveredIndoor(tags)
			a.PollenRisk = pollenByIndoor(a.Indoor)
		},
	},
	{
		match: tagIs("leisure", "park"),
		apply: func(_ map[string]string, a *model.ClassifiedAttributes) {
			a.Kind, a.ShadedPossible, a.PollenRisk = model.KindPark, true, model.PollenHigher
		},
	},
	{
		match: tagIs("leisure", "playground"),
		apply: func(_ map[string]string, a *model.ClassifiedAttributes) {
			a.Kind, a.ShadedPossible, a.PollenRisk = model.KindPlayground, true, model.PollenHigher
		},
	},
	{
		match: tagIs("leisure", "fitness_station"),
		apply: func(_ map[string]string, a *model.ClassifiedAttributes) {
			a.Kind, a.ShadedPossible, a.PollenRisk = model.KindFitnessStation, true, model.PollenHigher
		},
	},
	{
		match: tagIs("leisure", "track"),
		apply: func(_ map[string]string, a *model.ClassifiedAttributes) {
			a.Kind, a.PollenRisk, a.Paved = model.KindRunningTrack, model.PollenMedium, true
		},
	},
	{
		match: func(tags map[string]string) bool {
			return tags["man_made"] == "pier" || tags["tourism"] == "beach"
		},
		apply: func(_ map[string]string, a *model.ClassifiedAttributes) {
			a.Kind, a.Waterfront, a.PollenRisk, a.Paved = model.KindWaterfront, true, model.PollenLow, true
		},
	},
	{
		match: tagIs("leisure", "pitch"),
		apply: func(_ map[string]string, a *model.ClassifiedAttributes) {
			a.Kind, a.PollenRisk = model.KindSportsField, model.PollenHigher
		},
	},
	{
		match: tagIs("leisure", "recreation_ground"),
		apply: func(_ map[string]string, a *model.ClassifiedAttributes) {
			a.Kind, a.PollenRisk = model.KindRecreationGround, model.PollenMedium
		},
	},
	{
		match: tagIs("leisure", "ice_rink"),
		apply: func(tags map[string]string, a *model.ClassifiedAttributes) {
			a.Kind, a.Indoor = model.KindIceRink, tags["indoor"] == "yes"
			a.PollenRisk = pollenByIndoor(a.Indoor)
		},
	},
	{
		match: tagIs("leisure", "sports_centre"),
		apply: func(tags map[string]string, a *model.ClassifiedAttributes) {
			a.Kind, a.Indoor = model.KindSportsCentre, coveredIndoor(tags)
			a.PollenRisk = pollenByIndoor(a.Indoor)
		},
	},
	{
		match: tagIs("highway", "cycleway"),
		apply: func(_ map[string]string, a *model.ClassifiedAttributes) {
			a.Kind, a.PollenRisk, a.Paved = model.KindCycleway, model.PollenMedium, true
		},
	},
	{
		match: tagIs("tourism", "museum"),
		apply: func(_ map[string]string, a *model.ClassifiedAttributes) {
			a.Kind, a.Indoor, a.PollenRisk = model.KindMuseum, true, model.PollenLow
		},
	},
	{
		match: tagIs("amenity", "marketplace"),
		apply: func(_ map[string]string, a *model.ClassifiedAttributes) {
			a.Kind, a.PollenRisk = model.KindMarketplace, model.PollenMedium
		},
	},
	{
		match: tagIs("amenity", "arts_centre"),
		apply: func(_ map[string]string, a *model.ClassifiedAttributes) {
			a.Kind, a.Indoor, a.PollenRisk = model.KindArtsCentre, true, model.PollenLow
		},
	},
	{
		match: func(tags map[string]string) bool {
			return tags["tourism"] == "attraction" && oneOf(tags["attraction"], "farm", "animal_park", "botanical_garden")
		},
		apply: func(tags map[string]string, a *model.ClassifiedAttributes) {
			switch tags["attraction"] {
			case "farm":
				a.Kind = model.KindFarmAttraction
			case "botanical_garden":
				a.Kind = model.KindBotanicalGarden
			default:
				a.Kind = model.KindAnimalPark
			}
		},
	},
	{
		match: func(tags map[string]string) bool {
			return tags["leisure"] == "garden" &&
				(oneOf(tags["garden"], "botanical", "arboretum") || oneOf(tags["garden:type"], "botanical", "arboretum"))
		},
		apply: func(_ map[string]string, a *model.ClassifiedAttributes) {
			a.Kind = model.KindBotanicalGarden
		},
	},
	{
		match: tagIs("shop", "farm"),
		apply: func(_ map[string]string, a *model.ClassifiedAttributes) {
			a.Kind = model.KindFarmShop
		},
	},
}

// fallbackKind uses the most specific raw tag value available.
func fallbackKind(tags map[string]string) model.Kind {
	for _, key := range []string{"leisure", "amenity", "tourism", "man_made"} {
		if v := tags[key]; v != "" {
			return model.Kind(v)
		}
	}
	return model.KindPublicPlace
}

// Classify maps an OSM tag dictionary to a place category and its derived attributes.
// It never fails: unknown tag combinations fall back to the raw tag value or "Public place".
func Classify(tags map[string]string) model.ClassifiedAttributes {
	a := model.ClassifiedAttributes{
		PollenRisk:           model.PollenMedium,
		Paved:                pavedSurfaces[tags["surface"]] || tags["tracktype"] == "grade1",
		WheelchairAccessible: tags["wheelchair"] == "yes",
		QuietHint:            quietHint(tags),
	}
	a.IsFree, a.IsPaid = feeFlags(tags)

	matched := false
	for _, rule := range classRules {
		if rule.match(tags) {
			rule.apply(tags, &a)
			matched = true
			break
		}
	}
	if !matched {
		a.Kind = fallbackKind(tags)
	}

	a.Activities = TagActivities(a.Kind, a.IsFree, a.IsPaid)
	return a
}

// quietHint is an approximation: unnamed places with unrestricted access tend to be
// less frequented. It is not an OSM signal.
func quietHint(tags map[string]string) bool {
	access, hasAccess := tags["access"]
	_, hasName := tags["name"]
	return (!hasAccess || access == "yes") && !hasName
}

// feeFlags derives IsFree and IsPaid independently; they may both be nil or,
// for unusual tags such as fee=no + access=private, disagree with intuition.
func feeFlags(tags map[string]string) (isFree, isPaid *bool) {
	fee := strings.ToLower(tags["fee"])
	access := strings.ToLower(tags["access"])

	switch fee {
	case "yes":
		isPaid = boolPtr(true)
	case "no":
		isPaid = boolPtr(false)
	}

	switch {
	case fee == "no" || access == "public" || access == "yes":
		isFree = boolPtr(true)
	case fee == "yes":
		isFree = boolPtr(false)
	}
	return isFree, isPaid
}

func boolPtr(v bool) *bool { return &v }
