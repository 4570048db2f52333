// Package logic holds the deterministic targeting steps of the
// recommendation pipeline: scene term extraction, the targeting context
// built from a profile and scene, and the selection trace returned to debug
// callers.
package logic

import (
	"github.com/patrickwarner/seamlessads/internal/models"
)

// targetingInput bundles what the targeting rules look at.
type targetingInput struct {
	user      *models.UserProfile
	diet      map[string]struct{}
	rawTags   []string
	episode   TermSet
	prominent TermSet
}

// attributeRule assigns value when match holds. Rules of a table are
// evaluated in order and later matches overwrite earlier ones.
type attributeRule struct {
	value string
	match func(in targetingInput) bool
}

func applyRules(def string, rules []attributeRule, in targetingInput) string {
	out := def
	for _, r := range rules {
		if r.match(in) {
			out = r.value
		}
	}
	return out
}

func hasDiet(diet map[string]struct{}, prefs ...string) bool {
	for _, p := range prefs {
		if _, ok := diet[p]; ok {
			return true
		}
	}
	return false
}

// rawTagIn matches scene tags exactly, without case folding.
func rawTagIn(tags []string, candidates ...string) bool {
	for _, tag := range tags {
		for _, c := range candidates {
			if tag == c {
				return true
			}
		}
	}
	return false
}

var priceSensitivityRules = []attributeRule{
	{models.PriceLow, func(in targetingInput) bool { return in.user.Signal(models.SignalOftenUsesDeals) }},
	{models.PriceHigh, func(in targetingInput) bool { return in.user.Signal(models.SignalPrefersPremium) }},
}

var healthTiltRules = []attributeRule{
	{models.HealthHealthy, func(in targetingInput) bool { return hasDiet(in.diet, "low_sugar", "low_fat", "healthy") }},
	{models.HealthIndulgent, func(in targetingInput) bool { return hasDiet(in.diet, "indulgent", "comfort_food") }},
}

var deliveryPreferenceRules = []attributeRule{
	{models.DeliveryDelivery, func(in targetingInput) bool { return in.user.Signal(models.SignalPrefersDelivery) }},
	{models.DeliveryPickup, func(in targetingInput) bool { return in.user.Signal(models.SignalPrefersPickup) }},
}

var targetCategoryRules = []attributeRule{
	{models.CategoryFrozen, func(in targetingInput) bool { return in.prominent.Has("pizza") }},
	{models.CategoryBeverage, func(in targetingInput) bool { return in.prominent.Intersects("beverage", "soda", "cola") }},
	{models.CategoryFrozen, func(in targetingInput) bool {
		return rawTagIn(in.rawTags, "pizza", "dinner", "late_night") ||
			in.episode.Intersects("late_night", "sleepover", "game_night")
	}},
	{models.CategoryBeverage, func(in targetingInput) bool {
		return rawTagIn(in.rawTags, "beverage", "soda", "cola", "drink") ||
			in.episode.Intersects("beverage", "soda", "cola")
	}},
}

// BuildTargetingContext derives the ad attributes for a user watching a
// scene. It is a pure function of its inputs.
func BuildTargetingContext(user *models.UserProfile, scene *models.SceneMetadata) models.AdAttributes {
	in := targetingInput{
		user:      user,
		diet:      user.DietarySet(),
		episode:   EpisodeTerms(scene),
		prominent: ProminentProducts(scene),
	}
	if scene != nil {
		in.rawTags = scene.SceneTags
	}
	return models.AdAttributes{
		TargetCategory:     applyRules(models.CategorySnacks, targetCategoryRules, in),
		PriceSensitivity:   applyRules(models.PriceMed, priceSensitivityRules, in),
		HealthTilt:         applyRules(models.HealthBalanced, healthTiltRules, in),
		DeliveryPreference: applyRules(models.DeliveryAny, deliveryPreferenceRules, in),
	}
}
