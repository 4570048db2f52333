// Package ranking turns a selected product key into a catalog query and
// orders the candidates a catalog returns.
package ranking

import (
	"sort"

	"github.com/patrickwarner/seamlessads/internal/models"
)

// BrandBiasThreshold is the minimum affinity for a brand to be boosted by
// the ranker.
const BrandBiasThreshold = 0.5

// BuildQuery maps a product key to the catalog search term for the user.
func BuildQuery(productKey string, user *models.UserProfile) string {
	switch productKey {
	case models.ProductPizza:
		diet := user.DietarySet()
		for _, p := range []string{"vegetarian", "no_beef", "no_pork"} {
			if _, ok := diet[p]; ok {
				return "vegetarian frozen pizza"
			}
		}
		return "frozen pizza"
	case models.ProductCoke:
		if user.BrandAffinity(models.BrandCocaCola) >= 0.6 {
			return "Coca-Cola"
		}
		return "cola soda"
	case models.ProductLaptop:
		return "laptop computer"
	}
	return productKey
}

// PriceCeiling returns the primary-search max price for a sensitivity bucket.
func PriceCeiling(priceSensitivity string) float64 {
	switch priceSensitivity {
	case models.PriceLow:
		return 8.0
	case models.PriceHigh:
		return 20.0
	}
	return 12.0
}

// BrandBias returns the brands the user likes enough to boost, sorted by
// name so ranking does not depend on map iteration order.
func BrandBias(user *models.UserProfile) []string {
	if user == nil {
		return nil
	}
	var out []string
	for brand, score := range user.BrandAffinities {
		if score >= BrandBiasThreshold {
			out = append(out, brand)
		}
	}
	sort.Strings(out)
	return out
}
