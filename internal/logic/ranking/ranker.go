package ranking

import (
	"sort"
	"strings"

	"github.com/patrickwarner/seamlessads/internal/models"
)

// MissingPrice is the sort price of candidates without a price.
const MissingPrice = 999.0

// Rank orders candidates by stock status, then brand match, then price.
// In-stock candidates come first; a name containing any bias brand
// (case-insensitive) comes before one that does not; price ascends unless
// priceSensitivity is "high", where it descends. The sort is stable and the
// input slice is left untouched.
func Rank(candidates []models.Candidate, priceSensitivity string, brandBias []string) []models.Candidate {
	out := make([]models.Candidate, len(candidates))
	copy(out, candidates)

	lowered := make([]string, len(brandBias))
	for i, b := range brandBias {
		lowered[i] = strings.ToLower(b)
	}
	brandHit := make([]bool, len(out))
	for i, c := range out {
		brandHit[i] = hasBrand(strings.ToLower(c.Name), lowered)
	}

	idx := make([]int, len(out))
	for i := range idx {
		idx[i] = i
	}
	descending := priceSensitivity == models.PriceHigh
	sort.SliceStable(idx, func(a, b int) bool {
		ca, cb := out[idx[a]], out[idx[b]]
		if ca.Available() != cb.Available() {
			return ca.Available()
		}
		if brandHit[idx[a]] != brandHit[idx[b]] {
			return brandHit[idx[a]]
		}
		pa, pb := ca.PriceOr(MissingPrice), cb.PriceOr(MissingPrice)
		if descending {
			return pa > pb
		}
		return pa < pb
	})

	ranked := make([]models.Candidate, len(out))
	for i, j := range idx {
		ranked[i] = out[j]
	}
	return ranked
}

func hasBrand(name string, brands []string) bool {
	for _, b := range brands {
		if strings.Contains(name, b) {
			return true
		}
	}
	return false
}
