package core

import (
	"sort"

	"activity_service/internal/domain/model"
)

// activityGroup associates several kinds with the same activity labels. Some outdoor
// groups deliberately share labels (a track is tagged "Beaches", a park "Sports fields").
type activityGroup struct {
	kinds  []model.Kind
	labels []string
}

var activityGroups = []activityGroup{
	{
		kinds:  []model.Kind{model.KindPark, model.KindRecreationGround, model.KindSportsField, model.KindPlayground},
		labels: []string{model.ActivityWalking, model.ActivityHiking, model.ActivityParks, model.ActivityPlaygrounds, model.ActivitySportsFields},
	},
	{
		kinds:  []model.Kind{model.KindCycleway, model.KindRunningTrack, model.KindWaterfront},
		labels: []string{model.ActivityWalking, model.ActivityRunning, model.ActivityCycling, model.ActivityBeaches, model.ActivityTracks, model.ActivityGreenways},
	},
	{
		kinds:  []model.Kind{model.KindSwimmingPool},
		labels: []string{model.ActivitySwimming},
	},
	{
		kinds:  []model.Kind{model.KindCommunityCenter, model.KindArtsCentre, model.KindMarketplace},
		labels: []string{model.ActivityCommunityEvents, model.ActivityCommunityCenters},
	},
	{
		kinds:  []model.Kind{model.KindMuseum},
		labels: []string{model.ActivityMuseums},
	},
	{
		kinds:  []model.Kind{model.KindBotanicalGarden},
		labels: []string{model.ActivityBotanicalGardens},
	},
	{
		kinds:  []model.Kind{model.KindZoo, model.KindAnimalPark},
		labels: []string{model.ActivityCommunityEvents},
	},
	{
		kinds:  []model.Kind{model.KindFarmAttraction, model.KindFarmShop},
		labels: []string{model.ActivityFarms},
	},
	{
		kinds:  []model.Kind{model.KindIceRink},
		labels: []string{model.ActivityIceSkating},
	},
}

// TagActivities returns the sorted activity labels a place of the given kind satisfies.
// The result is never nil.
func TagActivities(kind model.Kind, isFree, isPaid *bool) []string {
	set := make(map[string]struct{})
	for _, g := range activityGroups {
		for _, k := range g.kinds {
			if k == kind {
				for _, l := range g.labels {
					set[l] = struct{}{}
				}
				break
			}
		}
	}
	if isFree != nil && *isFree {
		set[model.ActivityFree] = struct{}{}
	}
	if isPaid != nil && *isPaid {
		set[model.ActivityPaid] = struct{}{}
	}

	out := make([]string, 0, len(set))
	for l := range set {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

// ActivityFilter is the include/exclude predicate over activity labels.
type ActivityFilter struct {
	Include map[string]struct{}
	Exclude map[string]struct{}
}

func NewActivityFilter(include, exclude []string) ActivityFilter {
	f := ActivityFilter{
		Include: make(map[string]struct{}, len(include)),
		Exclude: make(map[string]struct{}, len(exclude)),
	}
	for _, a := range include {
		f.Include[a] = struct{}{}
	}
	for _, a := range exclude {
		f.Exclude[a] = struct{}{}
	}
	return f
}

// Matches reports whether a place with the given activities passes. Exclusion
// always takes precedence over inclusion.
func (f ActivityFilter) Matches(activities []string) bool {
	included := len(f.Include) == 0
	for _, a := range activities {
		if _, ok := f.Exclude[a]; ok {
			return false
		}
		if _, ok := f.Include[a]; ok {
			included = true
		}
	}
	return included
}
