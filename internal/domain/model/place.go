package model

// Kind is the semantic category assigned to a place by the classifier.
type Kind string

const (
	KindCommunityCenter  Kind = "Community center"
	KindSwimmingPool     Kind = "Swimming (pool)"
	KindPark             Kind = "Park"
	KindPlayground       Kind = "Playground / fitness area"
	KindFitnessStation   Kind = "Outdoor fitness station"
	KindRunningTrack     Kind = "Running track"
	KindWaterfront       Kind = "Boardwalk / beach / pier"
	KindSportsField      Kind = "Open sports field"
	KindRecreationGround Kind = "Recreation ground"
	KindIceRink          Kind = "Ice rink"
	KindSportsCentre     Kind = "Sports centre"
	KindCycleway         Kind = "Cycleway / greenway"
	KindMuseum           Kind = "Museum"
	KindMarketplace      Kind = "Marketplace"
	KindArtsCentre       Kind = "Arts centre"
	KindFarmAttraction   Kind = "Farm (attraction)"
	KindBotanicalGarden  Kind = "Botanical garden"
	KindAnimalPark       Kind = "Animal park"
	KindZoo              Kind = "Zoo"
	KindFarmShop         Kind = "Farm shop"
	KindPublicPlace      Kind = "Public place"
)

// PollenRisk is a coarse estimate of pollen exposure at a place.
type PollenRisk string

const (
	PollenLow    PollenRisk = "low"
	PollenMedium PollenRisk = "medium"
	PollenHigher PollenRisk = "higher"
)

// RawPlace - объект из OSM до классификации. После получения не изменяется.
type RawPlace struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Lat        float64           `json:"lat"`
	Lon        float64           `json:"lon"`
	DistanceKm float64           `json:"distance_km"`
	Tags       map[string]string `json:"tags"`
}

// ClassifiedAttributes holds everything the classifier derives from a tag map.
// IsFree and IsPaid are nil when the tags say nothing either way.
type ClassifiedAttributes struct {
	Kind                 Kind       `json:"kind"`
	Indoor               bool       `json:"indoor"`
	ShadedPossible       bool       `json:"shaded_possible"`
	Waterfront           bool       `json:"waterfront"`
	PollenRisk           PollenRisk `json:"pollen_risk"`
	Paved                bool       `json:"paved"`
	WheelchairAccessible bool       `json:"wheelchair"`
	QuietHint            bool       `json:"quiet_hint"`
	IsFree               *bool      `json:"is_free"`
	IsPaid               *bool      `json:"is_paid"`
	Activities           []string   `json:"activities"`
}

type ClassifiedPlace struct {
	RawPlace
	ClassifiedAttributes
	Score              float64  `json:"score"`
	RoadDistanceMeters *float64 `json:"road_distance_m"`
	Badges             []string `json:"badges"`
}

// Activity labels used for include/exclude filtering.
const (
	ActivityWalking          = "Walking"
	ActivityHiking           = "Hiking"
	ActivityRunning          = "Running"
	ActivityCycling          = "Cycling"
	ActivitySwimming         = "Swimming"
	ActivityMuseums          = "Museums"
	ActivityBotanicalGardens = "Botanical gardens"
	ActivityFarms            = "Farms"
	ActivityBeaches          = "Beaches"
	ActivityPlaygrounds      = "Playgrounds"
	ActivityFitnessStations  = "Fitness stations"
	ActivityCommunityEvents  = "Community events"
	ActivityIceSkating       = "Ice skating"
	ActivitySportsFields     = "Sports fields"
	ActivityParks            = "Parks"
	ActivityCommunityCenters = "Community centers"
	ActivityTracks           = "Tracks"
	ActivityGreenways        = "Greenways"
	ActivityFree             = "Free"
	ActivityPaid             = "Paid"
)

// AllActivities is the catalogue offered to clients for include/exclude selection.
var AllActivities = []string{
	ActivityWalking, ActivityHiking, ActivityRunning, ActivityCycling,
	ActivitySwimming, ActivityMuseums, ActivityBotanicalGardens,
	ActivityFarms, ActivityBeaches, ActivityPlaygrounds, ActivityFitnessStations,
	ActivityCommunityEvents, ActivityIceSkating, ActivitySportsFields,
	ActivityParks, ActivityCommunityCenters, ActivityTracks, ActivityGreenways,
	ActivityFree, ActivityPaid,
}
