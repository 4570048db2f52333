package catalog

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/patrickwarner/seamlessads/internal/models"
)

// MockProvider names the deterministic mock backend.
const MockProvider = "kroger_mock"

const (
	mockVariants     = 5
	mockReturned     = 3
	mockBasePrice    = 6.49
	mockPriceStep    = 0.6
	mockDefaultLimit = 100.0
)

// MockKnownLimit caps how many generated products MockClient remembers.
const MockKnownLimit = 1000

// MockClient returns deterministic, query-shaped products. Generated ids are
// remembered so GetProduct can tell known products from unknown ones; once
// MockKnownLimit ids are held the oldest are forgotten first.
type MockClient struct {
	mu    sync.RWMutex
	known map[string]models.Candidate
	order []string
}

// NewMockClient returns an empty MockClient.
func NewMockClient() *MockClient {
	return &MockClient{known: make(map[string]models.Candidate)}
}

// Provider returns MockProvider.
func (m *MockClient) Provider() string { return MockProvider }

// TitleCase capitalizes the first letter of every word, e.g.
// "coca-cola zero" becomes "Coca-Cola Zero".
func TitleCase(s string) string {
	return cases.Title(language.English).String(s)
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

func prefix(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		r = r[:n]
	}
	return string(r)
}

// SearchProducts builds five variants of the query priced from
// min(max_price, 6.49) upward and returns the first three.
func (m *MockClient) SearchProducts(_ context.Context, query string, filters SearchFilters) (SearchResult, error) {
	maxPrice := filters.MaxPrice
	if maxPrice <= 0 {
		maxPrice = mockDefaultLimit
	}
	base := math.Min(maxPrice, mockBasePrice)
	name := TitleCase(query)
	idPrefix := prefix(query, 8)

	results := make([]models.Candidate, 0, mockVariants)
	for i := 1; i <= mockVariants; i++ {
		results = append(results, models.Candidate{
			ID:       fmt.Sprintf("kroger_generic_%s_%d", idPrefix, i),
			Name:     fmt.Sprintf("%s Variant %d", name, i),
			Price:    models.Float(roundCents(base + float64(i-1)*mockPriceStep)),
			Unit:     "item",
			Size:     "1 unit",
			InStock:  models.Bool(true),
			ImageURL: GenericImageURL,
		})
	}

	m.remember(results)

	return SearchResult{
		Results:  results[:mockReturned],
		Total:    len(results),
		Query:    query,
		Provider: MockProvider,
	}, nil
}

func (m *MockClient) remember(products []models.Candidate) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range products {
		if _, ok := m.known[c.ID]; !ok {
			m.order = append(m.order, c.ID)
		}
		m.known[c.ID] = c
	}
	if over := len(m.order) - MockKnownLimit; over > 0 {
		for _, id := range m.order[:over] {
			delete(m.known, id)
		}
		m.order = append([]string(nil), m.order[over:]...)
	}
}

// GetProduct returns a product produced by a recent search.
func (m *MockClient) GetProduct(_ context.Context, productID string) (models.Candidate, error) {
	m.mu.RLock()
	c, ok := m.known[productID]
	m.mu.RUnlock()
	if !ok {
		return models.Candidate{}, fmt.Errorf("product %s: %w", productID, ErrNotFound)
	}
	return c, nil
}

// AddToCart acknowledges every line.
func (m *MockClient) AddToCart(_ context.Context, items []CartLine) (CartReceipt, error) {
	return CartReceipt{ItemsAdded: len(items), Success: true, Provider: MockProvider}, nil
}

// GetCart returns an empty cart.
func (m *MockClient) GetCart(_ context.Context, cartID string) (RemoteCart, error) {
	return RemoteCart{CartID: cartID, Items: []CartLine{}, Subtotal: 0, Provider: MockProvider}, nil
}

// GetDeliveryOptions returns no windows. An empty ZIP reads as "00000".
func (m *MockClient) GetDeliveryOptions(_ context.Context, zip string) (DeliveryOptions, error) {
	if strings.TrimSpace(zip) == "" {
		zip = "00000"
	}
	return DeliveryOptions{ZIP: zip, Windows: []DeliveryWindow{}, Provider: MockProvider}, nil
}
