package models

import "strings"

// UserProfile holds viewer attributes used for ad targeting. Profiles are
// treated as immutable for the duration of a recommendation request.
type UserProfile struct {
	AgeRange      string  `json:"age_range"`
	HouseholdSize int     `json:"household_size" validate:"min=1,max=8"`
	LocationZIP   *string `json:"location_zip,omitempty"`
	LocationMetro *string `json:"location_metro,omitempty"`
	// DietaryPreferences lists dietary preferences or exclusions, e.g. "low_sugar", "no_beef".
	DietaryPreferences []string `json:"dietary_preferences"`
	// BrandAffinities maps brand name to an affinity score in [0,1].
	BrandAffinities   map[string]float64 `json:"brand_affinities"`
	CuisineAffinities map[string]float64 `json:"cuisine_affinities"`
	// WatchTimeContext describes when the user watches, e.g. "late_night" or "weekend".
	WatchTimeContext  string          `json:"watch_time_context"`
	EngagementSignals map[string]bool `json:"engagement_signals"`
}

// Engagement signal names consulted by the targeting rules.
const (
	SignalOftenUsesDeals  = "often_uses_deals"
	SignalPrefersPremium  = "prefers_premium"
	SignalPrefersDelivery = "prefers_delivery"
	SignalPrefersPickup   = "prefers_pickup"
)

// BrandCocaCola is the brand key whose affinity steers beverage selection.
const BrandCocaCola = "Coca-Cola"

// BrandAffinity returns the affinity score for brand, or zero when absent.
func (u *UserProfile) BrandAffinity(brand string) float64 {
	if u == nil || u.BrandAffinities == nil {
		return 0
	}
	return u.BrandAffinities[brand]
}

// Signal reports whether the named engagement signal is set.
func (u *UserProfile) Signal(name string) bool {
	if u == nil || u.EngagementSignals == nil {
		return false
	}
	return u.EngagementSignals[name]
}

// DietarySet returns the dietary preferences lowercased as a set.
func (u *UserProfile) DietarySet() map[string]struct{} {
	set := make(map[string]struct{})
	if u == nil {
		return set
	}
	for _, p := range u.DietaryPreferences {
		set[strings.ToLower(p)] = struct{}{}
	}
	return set
}

// ZIP returns the location ZIP or an empty string.
func (u *UserProfile) ZIP() string {
	if u == nil || u.LocationZIP == nil {
		return ""
	}
	return *u.LocationZIP
}

// Clone returns a deep copy so callers can hand out profiles without
// sharing maps or slices.
func (u UserProfile) Clone() UserProfile {
	out := u
	if u.LocationZIP != nil {
		zip := *u.LocationZIP
		out.LocationZIP = &zip
	}
	if u.LocationMetro != nil {
		metro := *u.LocationMetro
		out.LocationMetro = &metro
	}
	out.DietaryPreferences = append([]string(nil), u.DietaryPreferences...)
	out.BrandAffinities = cloneFloatMap(u.BrandAffinities)
	out.CuisineAffinities = cloneFloatMap(u.CuisineAffinities)
	if u.EngagementSignals != nil {
		out.EngagementSignals = make(map[string]bool, len(u.EngagementSignals))
		for k, v := range u.EngagementSignals {
			out.EngagementSignals[k] = v
		}
	}
	return out
}

func cloneFloatMap(in map[string]float64) map[string]float64 {
	if in == nil {
		return nil
	}
	out := make(map[string]float64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
