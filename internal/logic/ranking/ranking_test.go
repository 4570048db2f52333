package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/patrickwarner/seamlessads/internal/models"
)

func candidate(id, name string, price float64, inStock bool) models.Candidate {
	return models.Candidate{ID: id, Name: name, Price: models.Float(price), InStock: models.Bool(inStock)}
}

func ids(cs []models.Candidate) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.ID
	}
	return out
}

func TestBuildQuery(t *testing.T) {
	tests := []struct {
		name string
		key  string
		user models.UserProfile
		want string
	}{
		{"pizza", models.ProductPizza, models.UserProfile{}, "frozen pizza"},
		{"vegetarian pizza", models.ProductPizza, models.UserProfile{DietaryPreferences: []string{"Vegetarian"}}, "vegetarian frozen pizza"},
		{"no beef pizza", models.ProductPizza, models.UserProfile{DietaryPreferences: []string{"comfort_food", "no_beef"}}, "vegetarian frozen pizza"},
		{"no pork pizza", models.ProductPizza, models.UserProfile{DietaryPreferences: []string{"NO_PORK"}}, "vegetarian frozen pizza"},
		{"coke fan", models.ProductCoke, models.UserProfile{BrandAffinities: map[string]float64{"Coca-Cola": 0.6}}, "Coca-Cola"},
		{"coke generic", models.ProductCoke, models.UserProfile{BrandAffinities: map[string]float64{"Coca-Cola": 0.59}}, "cola soda"},
		{"laptop", models.ProductLaptop, models.UserProfile{}, "laptop computer"},
		{"unknown key", "headphones", models.UserProfile{}, "headphones"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := tt.user
			assert.Equal(t, tt.want, BuildQuery(tt.key, &user))
		})
	}
}

func TestPriceCeiling(t *testing.T) {
	assert.Equal(t, 8.0, PriceCeiling(models.PriceLow))
	assert.Equal(t, 12.0, PriceCeiling(models.PriceMed))
	assert.Equal(t, 20.0, PriceCeiling(models.PriceHigh))
	assert.Equal(t, 12.0, PriceCeiling(""))
}

func TestBrandBiasSorted(t *testing.T) {
	user := &models.UserProfile{BrandAffinities: map[string]float64{
		"Pepsi": 0.2, "Spindrift": 0.6, "Coca-Cola": 0.85, "Annie's": 0.5,
	}}
	assert.Equal(t, []string{"Annie's", "Coca-Cola", "Spindrift"}, BrandBias(user))
	assert.Empty(t, BrandBias(&models.UserProfile{}))
	assert.Nil(t, BrandBias(nil))
}

func TestRankStockThenBrandThenPrice(t *testing.T) {
	in := []models.Candidate{
		candidate("oos-cheap", "Store Cola", 1.00, false),
		candidate("generic", "Store Cola", 3.00, true),
		candidate("brand-pricey", "Coca-Cola Classic 12pk", 9.00, true),
		candidate("brand-cheap", "coca-cola zero", 5.00, true),
		candidate("generic-cheap", "Value Soda", 2.00, true),
	}

	got := Rank(in, models.PriceMed, []string{"Coca-Cola"})
	assert.Equal(t, []string{"brand-cheap", "brand-pricey", "generic-cheap", "generic", "oos-cheap"}, ids(got))
	assert.Equal(t, "oos-cheap", in[0].ID, "input must not be reordered")
}

func TestRankHighSensitivityDescends(t *testing.T) {
	in := []models.Candidate{
		candidate("a", "A", 4, true),
		candidate("b", "B", 12, true),
		candidate("c", "C", 8, true),
	}
	assert.Equal(t, []string{"b", "c", "a"}, ids(Rank(in, models.PriceHigh, nil)))
	assert.Equal(t, []string{"a", "c", "b"}, ids(Rank(in, models.PriceLow, nil)))
}

func TestRankStableOnTies(t *testing.T) {
	in := []models.Candidate{
		candidate("first", "X", 5, true),
		candidate("second", "Y", 5, true),
		candidate("third", "Z", 5, true),
	}
	assert.Equal(t, []string{"first", "second", "third"}, ids(Rank(in, models.PriceMed, nil)))
	assert.Equal(t, []string{"first", "second", "third"}, ids(Rank(in, models.PriceHigh, nil)))
}

func TestRankMissingFields(t *testing.T) {
	in := []models.Candidate{
		{ID: "no-price", Name: "Mystery"},
		candidate("priced", "Known", 50, true),
	}
	// missing stock counts as in stock, missing price sorts as 999
	assert.Equal(t, []string{"priced", "no-price"}, ids(Rank(in, models.PriceMed, nil)))
	assert.Equal(t, []string{"no-price", "priced"}, ids(Rank(in, models.PriceHigh, nil)))
}

func TestRankEmpty(t *testing.T) {
	assert.Empty(t, Rank(nil, models.PriceMed, []string{"Coca-Cola"}))
}
