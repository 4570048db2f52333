package retail

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchDeterministic(t *testing.T) {
	c := NewCatalog(nil)
	first := c.Search("https://www.amazon.com/", "headphones", 0)
	second := NewCatalog(nil).Search("https://www.amazon.com/", "headphones", 0)

	require.Len(t, first, 7)
	assert.Equal(t, first, second)

	p := first[0]
	assert.Equal(t, "headphones - Premium Edition", p.Name)
	assert.Len(t, p.ID, 12)
	assert.Equal(t, ProductID("https://www.amazon.com/", p.Name), p.ID)
	assert.Equal(t, "https://www.amazon.com/product/"+p.ID, p.URL)
	assert.Equal(t, "amazon.com", p.Retailer)
	assert.Equal(t, "USD", p.Currency)
	assert.False(t, p.InStock)
	assert.True(t, first[1].InStock)
	assert.False(t, first[4].InStock)
}

func TestSearchMaxPrice(t *testing.T) {
	c := NewCatalog(nil)
	got := c.Search("https://shop.example", "mug", 60)

	names := make([]string, 0, len(got))
	for _, p := range got {
		assert.LessOrEqual(t, p.Price, 60.0)
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"mug - Budget Option", "mug - Compact Version", "mug - Essential Pack"}, names)
	// stock follows the base listing position, not the filtered position
	assert.True(t, got[0].InStock)
	assert.False(t, got[1].InStock)
}

func TestLookupAndReset(t *testing.T) {
	c := NewCatalog(nil)
	got := c.Search("https://shop.example", "mug", 0)

	p, ok := c.Lookup(got[2].ID)
	require.True(t, ok)
	assert.Equal(t, got[2], p)

	_, ok = c.Lookup("nope")
	assert.False(t, ok)

	c.Reset()
	_, ok = c.Lookup(got[2].ID)
	assert.False(t, ok)
}

func TestRetailerName(t *testing.T) {
	assert.Equal(t, "bestbuy.com", RetailerName("https://www.bestbuy.com/site"))
	assert.Equal(t, "target.com", RetailerName("target.com/s"))
}
