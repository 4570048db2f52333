// Package retail serves the demo retailer catalog behind the search_products
// tool and remembers every product it hands out so carts can price them.
package retail

import (
	"crypto/md5"
	"encoding/hex"
	"net/url"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/patrickwarner/seamlessads/internal/models"
)

type baseProduct struct {
	suffix string
	price  float64
}

var baseProducts = []baseProduct{
	{"Premium Edition", 149.99},
	{"Standard", 79.99},
	{"Budget Option", 29.99},
	{"Professional Series", 299.99},
	{"Compact Version", 59.99},
	{"Deluxe Bundle", 199.99},
	{"Essential Pack", 49.99},
}

// Catalog generates deterministic retailer listings and caches them by id.
type Catalog struct {
	mu       sync.RWMutex
	products map[string]models.RetailProduct
	logger   *zap.Logger
}

// NewCatalog returns an empty Catalog.
func NewCatalog(logger *zap.Logger) *Catalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Catalog{products: make(map[string]models.RetailProduct), logger: logger}
}

// ProductID derives the stable 12 hex character id for a listing.
func ProductID(retailerURL, name string) string {
	sum := md5.Sum([]byte(retailerURL + ":" + name))
	return hex.EncodeToString(sum[:])[:12]
}

// RetailerName returns the host of retailerURL without "www.".
func RetailerName(retailerURL string) string {
	host := ""
	if u, err := url.Parse(retailerURL); err == nil {
		host = u.Host
	}
	if host == "" {
		rest := retailerURL
		if i := strings.Index(rest, "//"); i >= 0 {
			rest = rest[i+2:]
		}
		host, _, _ = strings.Cut(rest, "/")
	}
	return strings.ReplaceAll(host, "www.", "")
}

// Search lists the query's variants at retailerURL. A non-positive maxPrice
// disables the price filter. Every fourth base listing is out of stock.
func (c *Catalog) Search(retailerURL, query string, maxPrice float64) []models.RetailProduct {
	retailer := RetailerName(retailerURL)
	base := strings.TrimRight(retailerURL, "/")

	out := make([]models.RetailProduct, 0, len(baseProducts))
	for i, bp := range baseProducts {
		if maxPrice > 0 && bp.price > maxPrice {
			continue
		}
		name := query + " - " + bp.suffix
		id := ProductID(retailerURL, name)
		out = append(out, models.RetailProduct{
			ID:       id,
			Name:     name,
			Price:    bp.price,
			Currency: "USD",
			URL:      base + "/product/" + id,
			ImageURL: "https://via.placeholder.com/200?text=" + id,
			Retailer: retailer,
			InStock:  i%4 != 0,
		})
	}

	c.mu.Lock()
	for _, p := range out {
		c.products[p.ID] = p
	}
	c.mu.Unlock()

	c.logger.Debug("retail search",
		zap.String("retailer", retailer),
		zap.String("query", query),
		zap.Int("results", len(out)))
	return out
}

// Lookup returns a product previously returned by Search.
func (c *Catalog) Lookup(productID string) (models.RetailProduct, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.products[productID]
	return p, ok
}

// Reset forgets every cached product.
func (c *Catalog) Reset() {
	c.mu.Lock()
	c.products = make(map[string]models.RetailProduct)
	c.mu.Unlock()
}
