package selectors

import (
	"strings"

	logic "github.com/patrickwarner/seamlessads/internal/logic"
	"github.com/patrickwarner/seamlessads/internal/models"

	"go.uber.org/zap"
)

// CokeAffinityThreshold is the Coca-Cola affinity at which beverage rules
// lean on the brand.
const CokeAffinityThreshold = 0.6

// Term sets consulted by the selection rules.
var (
	pizzaTerms    = []string{"pizza", "slice", "cheesy"}
	beverageTerms = []string{"soda", "cola", "coke", "beverage", "drink", "can"}
	techTerms     = []string{"laptop", "computer", "device", "work", "surveillance", "lab", "investigation"}
	hangoutTerms  = []string{
		"kids",
		"friends",
		"sleepover",
		"game_night",
		"dungeons & dragons",
		"dungeons_and_dragons",
		"arcade",
		"suburb",
		"small_town",
	}
	beverageCategoryTerms = []string{"beverage", "soda", "cola"}
)

// RuleInput is everything a rule may inspect.
type RuleInput struct {
	User    *models.UserProfile
	Attrs   models.AdAttributes
	Signals logic.SceneSignals
}

func (in RuleInput) cokeAffinity() float64 {
	return in.User.BrandAffinity(models.BrandCocaCola)
}

// Rule maps a scene and user to a product key. Apply is only called when
// Match returned true and returns the key plus rationale lines.
type Rule struct {
	Name  string
	Match func(in RuleInput) bool
	Apply func(in RuleInput) (string, []string)
}

// DefaultRules returns the ordered selection rules. The first matching rule
// decides the product; the last rule always matches.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:  "episode_pizza",
			Match: func(in RuleInput) bool { return in.Signals.Prominent.Has("pizza") },
			Apply: func(in RuleInput) (string, []string) {
				return models.ProductPizza, []string{"Episode metadata shows prominent pizza presence"}
			},
		},
		{
			Name:  "episode_beverage",
			Match: func(in RuleInput) bool { return in.Signals.Prominent.Intersects(beverageCategoryTerms...) },
			Apply: func(in RuleInput) (string, []string) {
				r := []string{"Episode metadata shows prominent beverage presence"}
				if in.cokeAffinity() >= CokeAffinityThreshold {
					r = append(r, "User affinity tilts toward Coca-Cola")
				}
				return models.ProductCoke, r
			},
		},
		{
			Name:  "scene_pizza",
			Match: func(in RuleInput) bool { return in.Signals.All.Intersects(pizzaTerms...) },
			Apply: func(in RuleInput) (string, []string) {
				r := []string{"Scene contains food/hangout cues aligned with pizza"}
				if strings.Contains(in.User.WatchTimeContext, "late_night") || in.Signals.All.Intersects("late_night", "night") {
					r = append(r, "Night context favors warm comfort food")
				}
				return models.ProductPizza, r
			},
		},
		{
			Name:  "scene_tech",
			Match: func(in RuleInput) bool { return in.Signals.All.Intersects(techTerms...) },
			Apply: func(in RuleInput) (string, []string) {
				return models.ProductLaptop, []string{"Episode/scene suggests tech/work context"}
			},
		},
		{
			Name:  "scene_hangout",
			Match: func(in RuleInput) bool { return in.Signals.All.Intersects(hangoutTerms...) },
			Apply: func(in RuleInput) (string, []string) {
				return models.ProductPizza, []string{"Episode/scene suggests a group hangout vibe (pizza-friendly)"}
			},
		},
		{
			Name:  "scene_beverage",
			Match: func(in RuleInput) bool { return in.Signals.All.Intersects(beverageTerms...) },
			Apply: func(in RuleInput) (string, []string) {
				r := []string{"Scene contains beverage cues"}
				if in.cokeAffinity() >= CokeAffinityThreshold {
					r = append(r, "High Coca-Cola brand affinity")
				}
				return models.ProductCoke, r
			},
		},
		{
			Name: "brand_affinity",
			Match: func(in RuleInput) bool {
				return in.cokeAffinity() >= CokeAffinityThreshold &&
					(in.Attrs.TargetCategory == models.CategoryBeverage || in.Signals.All.Intersects(beverageCategoryTerms...))
			},
			Apply: func(in RuleInput) (string, []string) {
				return models.ProductCoke, []string{"No strong visual cues; fell back to top brand affinity (Coca-Cola)"}
			},
		},
		{
			Name:  "universal_default",
			Match: func(in RuleInput) bool { return true },
			Apply: func(in RuleInput) (string, []string) {
				r := []string{"Defaulted to universal placement"}
				switch in.Attrs.TargetCategory {
				case models.CategoryBeverage:
					return models.ProductCoke, append(r, "Targeting favors beverage category")
				case models.CategoryFrozen:
					return models.ProductPizza, append(r, "Targeting favors frozen category")
				}
				return models.ProductLaptop, r
			},
		},
	}
}

// RuleBasedSelector is the default Selector implementation. It walks an
// ordered rule table and stops at the first match.
type RuleBasedSelector struct {
	rules  []Rule
	logger *zap.Logger
}

// NewRuleBasedSelector constructs a RuleBasedSelector with DefaultRules.
func NewRuleBasedSelector() *RuleBasedSelector {
	return &RuleBasedSelector{rules: DefaultRules()}
}

// SetRules replaces the rule table. A table without a catch-all rule falls
// back to the laptop archetype.
func (s *RuleBasedSelector) SetRules(rules []Rule) {
	s.rules = rules
}

// SetLogger configures the logger for this selector.
func (s *RuleBasedSelector) SetLogger(logger *zap.Logger) {
	s.logger = logger
}

// Rules returns the rule names in evaluation order.
func (s *RuleBasedSelector) Rules() []string {
	names := make([]string, len(s.rules))
	for i, r := range s.rules {
		names[i] = r.Name
	}
	return names
}

// SelectProduct returns the product key and rationale for the scene.
func (s *RuleBasedSelector) SelectProduct(user *models.UserProfile, scene *models.SceneMetadata, attrs models.AdAttributes) (string, []string) {
	return s.performSelection(user, scene, attrs, nil)
}

// SelectProductWithTrace behaves like SelectProduct but records every rule
// evaluated in the provided SelectionTrace.
func (s *RuleBasedSelector) SelectProductWithTrace(user *models.UserProfile, scene *models.SceneMetadata, attrs models.AdAttributes, trace *logic.SelectionTrace) (string, []string) {
	return s.performSelection(user, scene, attrs, trace)
}

func (s *RuleBasedSelector) performSelection(user *models.UserProfile, scene *models.SceneMetadata, attrs models.AdAttributes, trace *logic.SelectionTrace) (string, []string) {
	in := RuleInput{User: user, Attrs: attrs, Signals: logic.CollectSignals(scene)}
	for _, r := range s.rules {
		if !r.Match(in) {
			trace.AddStep(r.Name, false)
			continue
		}
		key, rationale := r.Apply(in)
		trace.AddStepWithDetails(r.Name, true, map[string]string{"product_key": key})
		if s.logger != nil {
			s.logger.Debug("product selected",
				zap.String("rule", r.Name),
				zap.String("product_key", key),
				zap.Strings("rationale", rationale))
		}
		return key, rationale
	}
	trace.AddStep("no_rule", true)
	return models.ProductLaptop, []string{"Defaulted to universal placement"}
}
