package catalog

import (
	"context"
	"sync"

	"github.com/patrickwarner/seamlessads/internal/db"
	"github.com/patrickwarner/seamlessads/internal/models"
)

type searchCall struct {
	Term    string
	Filters SearchFilters
}

// scriptedClient answers searches from a per-term table and records calls.
type scriptedClient struct {
	mu      sync.Mutex
	results map[string][]models.Candidate
	errs    map[string]error
	failAll error
	calls   []searchCall
}

func newScriptedClient() *scriptedClient {
	return &scriptedClient{results: map[string][]models.Candidate{}, errs: map[string]error{}}
}

func (s *scriptedClient) Provider() string { return "scripted" }

func (s *scriptedClient) SearchProducts(_ context.Context, term string, filters SearchFilters) (SearchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, searchCall{Term: term, Filters: filters})
	if s.failAll != nil {
		return SearchResult{}, s.failAll
	}
	if err := s.errs[term]; err != nil {
		return SearchResult{}, err
	}
	res := s.results[term]
	return SearchResult{Results: res, Total: len(res), Query: term, Provider: "scripted"}, nil
}

func (s *scriptedClient) GetProduct(_ context.Context, id string) (models.Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAll != nil {
		return models.Candidate{}, s.failAll
	}
	for _, cs := range s.results {
		for _, c := range cs {
			if c.ID == id {
				return c, nil
			}
		}
	}
	return models.Candidate{}, ErrNotFound
}

func (s *scriptedClient) AddToCart(context.Context, []CartLine) (CartReceipt, error) {
	return CartReceipt{Success: true, Provider: "scripted"}, nil
}

func (s *scriptedClient) GetCart(_ context.Context, id string) (RemoteCart, error) {
	return RemoteCart{CartID: id, Provider: "scripted"}, nil
}

func (s *scriptedClient) GetDeliveryOptions(_ context.Context, zip string) (DeliveryOptions, error) {
	return DeliveryOptions{ZIP: zip, Provider: "scripted"}, nil
}

func (s *scriptedClient) searchCalls() []searchCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]searchCall(nil), s.calls...)
}

// stallingClient blocks searches for the listed terms until the caller's
// context ends and delegates everything else.
type stallingClient struct {
	*scriptedClient
	stall map[string]bool
}

func (s *stallingClient) SearchProducts(ctx context.Context, term string, filters SearchFilters) (SearchResult, error) {
	if s.stall[term] {
		s.mu.Lock()
		s.calls = append(s.calls, searchCall{Term: term, Filters: filters})
		s.mu.Unlock()
		<-ctx.Done()
		return SearchResult{}, ctx.Err()
	}
	return s.scriptedClient.SearchProducts(ctx, term, filters)
}

// stallingStore is a ProductStore whose queries never return on their own.
type stallingStore struct{}

func (stallingStore) SearchCatalogProducts(ctx context.Context, _ string, _ float64, _ int) ([]db.CatalogProduct, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (stallingStore) GetCatalogProduct(ctx context.Context, _ string) (db.CatalogProduct, error) {
	<-ctx.Done()
	return db.CatalogProduct{}, ctx.Err()
}
