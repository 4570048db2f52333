package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/patrickwarner/seamlessads/internal/models"
)

// KrogerProvider names the live Kroger backend.
const KrogerProvider = "kroger_api"

// KrogerConfig configures the Kroger API client.
type KrogerConfig struct {
	ClientID     string
	ClientSecret string
	// AccessToken skips the client-credentials exchange when set.
	AccessToken string
	// LocationID pins searches to a store; otherwise it is resolved from the ZIP.
	LocationID string
	// BaseURL is the API root including the /v1 suffix.
	BaseURL string
	Timeout time.Duration
}

// KrogerClient talks to the Kroger public product API with an OAuth2
// client-credentials token. The token is acquired once and never refreshed.
type KrogerClient struct {
	cfg        KrogerConfig
	httpClient *http.Client
	logger     *zap.Logger

	tokenMu sync.Mutex
	token   string

	locMu     sync.RWMutex
	locations map[string]string
}

// NewKrogerClient validates credentials and returns a client. No network
// call is made until the first request.
func NewKrogerClient(cfg KrogerConfig, logger *zap.Logger) (*KrogerClient, error) {
	cfg.ClientID = strings.TrimSpace(cfg.ClientID)
	cfg.ClientSecret = strings.TrimSpace(cfg.ClientSecret)
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, fmt.Errorf("%w: set KROGER_CLIENT_ID and KROGER_CLIENT_SECRET", ErrMissingCredentials)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.kroger.com/v1"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KrogerClient{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger:    logger,
		token:     strings.TrimSpace(cfg.AccessToken),
		locations: make(map[string]string),
	}, nil
}

// Provider returns KrogerProvider.
func (k *KrogerClient) Provider() string { return KrogerProvider }

type krogerProduct struct {
	ProductID   string `json:"productId"`
	Description string `json:"description"`
	Brand       string `json:"brand"`
	Items       []struct {
		Price *struct {
			Regular float64 `json:"regular"`
			Promo   float64 `json:"promo"`
		} `json:"price"`
		SoldBy string `json:"soldBy"`
		Size   string `json:"size"`
	} `json:"items"`
	Images []struct {
		Perspective string `json:"perspective"`
		Sizes       []struct {
			Size string `json:"size"`
			URL  string `json:"url"`
		} `json:"sizes"`
	} `json:"images"`
}

// imageURL prefers the "medium" size of the first image that has any URL,
// falling back to that image's first URL.
func (p krogerProduct) imageURL() string {
	for _, img := range p.Images {
		first := ""
		for _, s := range img.Sizes {
			if s.URL == "" {
				continue
			}
			if strings.EqualFold(s.Size, "medium") {
				return s.URL
			}
			if first == "" {
				first = s.URL
			}
		}
		if first != "" {
			return first
		}
	}
	return ""
}

func (p krogerProduct) candidate() models.Candidate {
	price := 0.0
	unit := "each"
	size := ""
	if len(p.Items) > 0 {
		item := p.Items[0]
		if item.Price != nil {
			price = item.Price.Regular
		}
		if item.SoldBy != "" {
			unit = item.SoldBy
		}
		size = item.Size
	}
	if size == "" {
		size = "each"
	}
	return models.Candidate{
		ID:       p.ProductID,
		Name:     p.Description,
		Price:    models.Float(price),
		Unit:     unit,
		Size:     size,
		InStock:  models.Bool(true),
		ImageURL: p.imageURL(),
	}
}

// searchTerm pads short queries so the API accepts them.
func searchTerm(query string) string {
	term := strings.TrimSpace(query)
	if len([]rune(term)) >= 3 {
		return term
	}
	if query == "" {
		return "groceries"
	}
	return prefix(query+" grocery", 50)
}

// SearchProducts queries /products, resolving a store location from the ZIP
// when no location is configured.
func (k *KrogerClient) SearchProducts(ctx context.Context, query string, filters SearchFilters) (SearchResult, error) {
	limit := filters.Limit
	if limit <= 0 {
		limit = 10
	}
	params := url.Values{}
	params.Set("filter.term", searchTerm(query))
	params.Set("filter.limit", strconv.Itoa(limit))
	location := k.cfg.LocationID
	if location == "" {
		location = k.resolveLocation(ctx, filters.ZIP)
	}
	if location != "" {
		params.Set("filter.locationId", location)
	}

	var body struct {
		Data []krogerProduct `json:"data"`
	}
	if err := k.getJSON(ctx, "/products", params, &body); err != nil {
		return SearchResult{}, err
	}

	results := make([]models.Candidate, 0, len(body.Data))
	for _, p := range body.Data {
		results = append(results, p.candidate())
	}
	return SearchResult{Results: results, Total: len(results), Query: query, Provider: KrogerProvider}, nil
}

// GetProduct fetches one product by id.
func (k *KrogerClient) GetProduct(ctx context.Context, productID string) (models.Candidate, error) {
	params := url.Values{}
	if k.cfg.LocationID != "" {
		params.Set("filter.locationId", k.cfg.LocationID)
	}
	var body struct {
		Data *krogerProduct `json:"data"`
	}
	if err := k.getJSON(ctx, "/products/"+url.PathEscape(productID), params, &body); err != nil {
		return models.Candidate{}, err
	}
	if body.Data == nil || body.Data.ProductID == "" {
		return models.Candidate{}, fmt.Errorf("product %s: %w", productID, ErrNotFound)
	}
	return body.Data.candidate(), nil
}

// AddToCart reports that the public API has no cart support.
func (k *KrogerClient) AddToCart(_ context.Context, items []CartLine) (CartReceipt, error) {
	return CartReceipt{
		ItemsAdded: len(items),
		Success:    true,
		Provider:   KrogerProvider,
		Message:    "Kroger doesn't support cart API. Use search links to add items manually.",
	}, nil
}

// GetCart reports that the public API has no cart retrieval.
func (k *KrogerClient) GetCart(_ context.Context, cartID string) (RemoteCart, error) {
	return RemoteCart{
		CartID:   cartID,
		Items:    []CartLine{},
		Provider: KrogerProvider,
		Message:  "Kroger doesn't support cart retrieval via API.",
	}, nil
}

// GetDeliveryOptions returns no windows; the public API does not expose them.
func (k *KrogerClient) GetDeliveryOptions(_ context.Context, zip string) (DeliveryOptions, error) {
	return DeliveryOptions{ZIP: zip, Windows: []DeliveryWindow{}, Provider: KrogerProvider}, nil
}

// resolveLocation maps a ZIP to the nearest store id. Failures are logged
// and yield "" so the search runs without a location.
func (k *KrogerClient) resolveLocation(ctx context.Context, zip string) string {
	if zip == "" {
		return ""
	}
	k.locMu.RLock()
	loc, ok := k.locations[zip]
	k.locMu.RUnlock()
	if ok {
		return loc
	}

	params := url.Values{}
	params.Set("filter.zipCode.near", zip)
	params.Set("filter.limit", "1")
	var body struct {
		Data []struct {
			LocationID string `json:"locationId"`
		} `json:"data"`
	}
	if err := k.getJSON(ctx, "/locations", params, &body); err != nil {
		k.logger.Warn("kroger location lookup failed", zap.String("zip", zip), zap.Error(err))
		return ""
	}
	if len(body.Data) > 0 {
		loc = body.Data[0].LocationID
	}

	k.locMu.Lock()
	k.locations[zip] = loc
	k.locMu.Unlock()
	return loc
}

// accessToken returns the cached token, exchanging client credentials the
// first time it is needed.
func (k *KrogerClient) accessToken(ctx context.Context) (string, error) {
	k.tokenMu.Lock()
	defer k.tokenMu.Unlock()
	if k.token != "" {
		return k.token, nil
	}

	authURL := strings.Replace(k.cfg.BaseURL, "/v1", "", 1) + "/v1/connect/oauth2/token"
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("scope", "product.compact")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, authURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("create token request: %w", err)
	}
	req.SetBasicAuth(k.cfg.ClientID, k.cfg.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := k.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: token request: %w", ErrCatalogUnavailable, err)
	}
	defer k.closeBody(resp)

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("%w: token http %d: %s", ErrCatalogUnavailable, resp.StatusCode, string(body))
	}
	var tok struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", fmt.Errorf("%w: decode token: %w", ErrCatalogUnavailable, err)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("%w: empty access token", ErrCatalogUnavailable)
	}
	k.token = tok.AccessToken
	return k.token, nil
}

func (k *KrogerClient) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	token, err := k.accessToken(ctx)
	if err != nil {
		return err
	}
	u := k.cfg.BaseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := k.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrCatalogUnavailable, path, err)
	}
	defer k.closeBody(resp)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%s: %w", path, ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %s http %d: %s", ErrCatalogUnavailable, path, resp.StatusCode, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s: %w", ErrCatalogUnavailable, path, err)
	}
	return nil
}

func (k *KrogerClient) closeBody(resp *http.Response) {
	if err := resp.Body.Close(); err != nil {
		k.logger.Warn("failed to close response body", zap.Error(err))
	}
}
