// Package personas holds the curated viewer profiles used by demos and
// tool calls that pass a user key instead of a full profile.
package personas

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/patrickwarner/seamlessads/internal/models"
)

// ErrUnknownPersona is returned for keys outside the registry.
var ErrUnknownPersona = errors.New("unknown persona")

func str(s string) *string { return &s }

var registry = map[string]models.UserProfile{
	"A": {
		AgeRange:           "25-34",
		HouseholdSize:      2,
		LocationZIP:        str("94107"),
		LocationMetro:      str("SF Bay Area"),
		DietaryPreferences: []string{"comfort_food", "no_beef"},
		BrandAffinities:    map[string]float64{"Coca-Cola": 0.85, "Pepsi": 0.2},
		CuisineAffinities:  map[string]float64{"Italian": 0.7, "Mexican": 0.4},
		WatchTimeContext:   "late_night",
		EngagementSignals: map[string]bool{
			"often_pauses_for_food_scenes": true,
			models.SignalOftenUsesDeals:    true,
			models.SignalPrefersDelivery:   true,
		},
	},
	"B": {
		AgeRange:           "30-44",
		HouseholdSize:      1,
		LocationZIP:        str("98109"),
		LocationMetro:      str("Seattle Metro"),
		DietaryPreferences: []string{"balanced", "low_sugar"},
		BrandAffinities:    map[string]float64{"Spindrift": 0.6, "Coca-Cola": 0.3},
		CuisineAffinities:  map[string]float64{"Japanese": 0.6, "Mediterranean": 0.5},
		WatchTimeContext:   "weekday_evening",
		EngagementSignals: map[string]bool{
			models.SignalPrefersPickup:  true,
			models.SignalPrefersPremium: true,
		},
	},
}

// Keys returns the registered persona keys in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(registry))
	for k := range registry {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns a copy of the persona for key. Keys are matched after
// trimming and upper-casing, so " a " resolves to "A".
func Get(key string) (models.UserProfile, error) {
	p, ok := registry[strings.ToUpper(strings.TrimSpace(key))]
	if !ok {
		return models.UserProfile{}, fmt.Errorf("%w %q, available: %s", ErrUnknownPersona, key, strings.Join(Keys(), ", "))
	}
	return p.Clone(), nil
}
