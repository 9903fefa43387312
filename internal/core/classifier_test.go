package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"activity_service/internal/domain/model"
)

func TestClassify_Kinds(t *testing.T) {
	tests := []struct {
		name   string
		tags   map[string]string
		kind   model.Kind
		indoor bool
		pollen model.PollenRisk
	}{
		{"community centre", map[string]string{"amenity": "community_centre"}, model.KindCommunityCenter, true, model.PollenLow},
		{"outdoor pool", map[string]string{"leisure": "swimming_pool"}, model.KindSwimmingPool, false, model.PollenMedium},
		{"covered pool", map[string]string{"leisure": "swimming_pool", "covered": "yes"}, model.KindSwimmingPool, true, model.PollenLow},
		{"park", map[string]string{"leisure": "park"}, model.KindPark, false, model.PollenHigher},
		{"playground", map[string]string{"leisure": "playground"}, model.KindPlayground, false, model.PollenHigher},
		{"fitness station", map[string]string{"leisure": "fitness_station"}, model.KindFitnessStation, false, model.PollenHigher},
		{"track", map[string]string{"leisure": "track"}, model.KindRunningTrack, false, model.PollenMedium},
		{"pier", map[string]string{"man_made": "pier"}, model.KindWaterfront, false, model.PollenLow},
		{"beach", map[string]string{"tourism": "beach"}, model.KindWaterfront, false, model.PollenLow},
		{"pitch", map[string]string{"leisure": "pitch"}, model.KindSportsField, false, model.PollenHigher},
		{"recreation ground", map[string]string{"leisure": "recreation_ground"}, model.KindRecreationGround, false, model.PollenMedium},
		{"indoor ice rink", map[string]string{"leisure": "ice_rink", "indoor": "yes"}, model.KindIceRink, true, model.PollenLow},
		{"covered ice rink is not indoor", map[string]string{"leisure": "ice_rink", "covered": "yes"}, model.KindIceRink, false, model.PollenMedium},
		{"sports centre", map[string]string{"leisure": "sports_centre", "indoor": "yes"}, model.KindSportsCentre, true, model.PollenLow},
		{"cycleway", map[string]string{"highway": "cycleway"}, model.KindCycleway, false, model.PollenMedium},
		{"museum", map[string]string{"tourism": "museum"}, model.KindMuseum, true, model.PollenLow},
		{"marketplace", map[string]string{"amenity": "marketplace"}, model.KindMarketplace, false, model.PollenMedium},
		{"arts centre", map[string]string{"amenity": "arts_centre"}, model.KindArtsCentre, true, model.PollenLow},
		{"farm attraction", map[string]string{"tourism": "attraction", "attraction": "farm"}, model.KindFarmAttraction, false, model.PollenMedium},
		{"botanical attraction", map[string]string{"tourism": "attraction", "attraction": "botanical_garden"}, model.KindBotanicalGarden, false, model.PollenMedium},
		{"animal park", map[string]string{"tourism": "attraction", "attraction": "animal_park"}, model.KindAnimalPark, false, model.PollenMedium},
		{"arboretum", map[string]string{"leisure": "garden", "garden:type": "arboretum"}, model.KindBotanicalGarden, false, model.PollenMedium},
		{"farm shop", map[string]string{"shop": "farm"}, model.KindFarmShop, false, model.PollenMedium},
		{"fallback to leisure value", map[string]string{"leisure": "nature_reserve"}, model.Kind("nature_reserve"), false, model.PollenMedium},
		{"fallback to tourism value", map[string]string{"tourism": "zoo"}, model.Kind("zoo"), false, model.PollenMedium},
		{"empty tags", map[string]string{}, model.KindPublicPlace, false, model.PollenMedium},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Classify(tt.tags)
			assert.Equal(t, tt.kind, a.Kind)
			assert.Equal(t, tt.indoor, a.Indoor)
			assert.Equal(t, tt.pollen, a.PollenRisk)
		})
	}
}

func TestClassify_FirstMatchWins(t *testing.T) {
	a := Classify(map[string]string{"amenity": "community_centre", "leisure": "park"})
	assert.Equal(t, model.KindCommunityCenter, a.Kind)
	assert.False(t, a.ShadedPossible)

	b := Classify(map[string]string{"leisure": "park", "tourism": "museum"})
	assert.Equal(t, model.KindPark, b.Kind)
	assert.False(t, b.Indoor)
}

func TestClassify_AttributeFlags(t *testing.T) {
	a := Classify(map[string]string{"leisure": "park", "surface": "asphalt", "wheelchair": "yes"})
	assert.True(t, a.ShadedPossible)
	assert.True(t, a.Paved)
	assert.True(t, a.WheelchairAccessible)

	pier := Classify(map[string]string{"man_made": "pier", "surface": "gravel"})
	assert.True(t, pier.Waterfront)
	assert.True(t, pier.Paved, "waterfront rule sets paved regardless of surface")

	grade := Classify(map[string]string{"highway": "track", "tracktype": "grade1"})
	assert.True(t, grade.Paved)

	dirt := Classify(map[string]string{"leisure": "park", "surface": "dirt"})
	assert.False(t, dirt.Paved)
}

func TestClassify_QuietHint(t *testing.T) {
	tests := []struct {
		name string
		tags map[string]string
		want bool
	}{
		{"unnamed, no access tag", map[string]string{"leisure": "park"}, true},
		{"unnamed, access yes", map[string]string{"leisure": "park", "access": "yes"}, true},
		{"unnamed, access private", map[string]string{"leisure": "park", "access": "private"}, false},
		{"named", map[string]string{"leisure": "park", "name": "Central Park"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.tags).QuietHint)
		})
	}
}

func TestClassify_FeeFlags(t *testing.T) {
	tests := []struct {
		name   string
		tags   map[string]string
		isFree *bool
		isPaid *bool
	}{
		{"no tags", map[string]string{}, nil, nil},
		{"fee yes", map[string]string{"fee": "yes"}, boolPtr(false), boolPtr(true)},
		{"fee YES is case-insensitive", map[string]string{"fee": "YES"}, boolPtr(false), boolPtr(true)},
		{"fee no", map[string]string{"fee": "no"}, boolPtr(true), boolPtr(false)},
		{"public access", map[string]string{"access": "public"}, boolPtr(true), nil},
		{"access yes", map[string]string{"access": "yes"}, boolPtr(true), nil},
		{"fee yes with public access", map[string]string{"fee": "yes", "access": "public"}, boolPtr(true), boolPtr(true)},
		{"fee no with private access", map[string]string{"fee": "no", "access": "private"}, boolPtr(true), boolPtr(false)},
		{"unknown fee value", map[string]string{"fee": "donation"}, nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Classify(tt.tags)
			assert.Equal(t, tt.isFree, a.IsFree)
			assert.Equal(t, tt.isPaid, a.IsPaid)
		})
	}
}

func TestClassify_PitchWithoutFeeOrAccess(t *testing.T) {
	a := Classify(map[string]string{"leisure": "pitch"})

	assert.Equal(t, model.KindSportsField, a.Kind)
	assert.Nil(t, a.IsFree)
	assert.Nil(t, a.IsPaid)
	assert.Contains(t, a.Activities, model.ActivitySportsFields)
	assert.NotContains(t, a.Activities, model.ActivityFree)
	assert.NotContains(t, a.Activities, model.ActivityPaid)
}

func TestClassify_TotalAndDeterministic(t *testing.T) {
	inputs := []map[string]string{
		nil,
		{},
		{"foo": "bar"},
		{"leisure": ""},
		{"amenity": "bench"},
		{"leisure": "garden"},
		{"tourism": "attraction", "attraction": "roller_coaster"},
	}
	valid := map[model.PollenRisk]bool{model.PollenLow: true, model.PollenMedium: true, model.PollenHigher: true}

	for _, tags := range inputs {
		a := Classify(tags)
		assert.NotEmpty(t, a.Kind)
		assert.True(t, valid[a.PollenRisk], "pollen risk %q", a.PollenRisk)
		require.NotNil(t, a.Activities)
		assert.Equal(t, a, Classify(tags))
	}
}
