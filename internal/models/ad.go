package models

// Product archetypes the recommender chooses among.
const (
	ProductPizza  = "pizza"
	ProductCoke   = "coke"
	ProductLaptop = "laptop"
)

// Target categories.
const (
	CategorySnacks   = "snacks"
	CategoryFrozen   = "frozen"
	CategoryBeverage = "beverage"
)

// Price sensitivity buckets.
const (
	PriceLow  = "low"
	PriceMed  = "med"
	PriceHigh = "high"
)

// Health tilts.
const (
	HealthIndulgent = "indulgent"
	HealthBalanced  = "balanced"
	HealthHealthy   = "healthy"
)

// Delivery preferences.
const (
	DeliveryPickup   = "pickup"
	DeliveryDelivery = "delivery"
	DeliveryAny      = "any"
)

// AdAttributes is the targeting context derived from a user profile and
// scene. It steers both product selection and result ranking.
type AdAttributes struct {
	TargetCategory     string `json:"target_category"`
	PriceSensitivity   string `json:"price_sensitivity"`
	HealthTilt         string `json:"health_tilt"`
	DeliveryPreference string `json:"delivery_preference"`
}

// Candidate is a raw product record returned by a catalog backend before
// ranking. Price and InStock are optional; use the accessor methods.
type Candidate struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Price    *float64 `json:"price,omitempty"`
	Unit     string   `json:"unit,omitempty"`
	Size     string   `json:"size,omitempty"`
	InStock  *bool    `json:"in_stock,omitempty"`
	ImageURL string   `json:"image_url,omitempty"`
}

// PriceOr returns the candidate price, or def when the backend omitted it.
func (c Candidate) PriceOr(def float64) float64 {
	if c.Price == nil {
		return def
	}
	return *c.Price
}

// Available reports stock status. Unknown stock counts as available.
func (c Candidate) Available() bool {
	return c.InStock == nil || *c.InStock
}

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }

// Bool returns a pointer to v.
func Bool(v bool) *bool { return &v }

// ProductResult is a ranked catalog product attached to an ad response.
type ProductResult struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Size      string  `json:"size"`
	Unit      string  `json:"unit"`
	InStock   bool    `json:"in_stock"`
	ImageURL  string  `json:"image_url"`
	// SearchQuery is the catalog term that produced this product.
	SearchQuery string `json:"kroger_search_query"`
}

// OverlaySpec describes where the ad overlay should be rendered.
type OverlaySpec struct {
	BBox               []float64 `json:"bbox"`
	DetectedLabel      string    `json:"detected_label"`
	SelectedProductKey string    `json:"selected_product_key"`
}

// AdResponse is the full recommendation for one scene and user.
type AdResponse struct {
	SceneID          string          `json:"scene_id"`
	TimestampRange   []float64       `json:"timestamp_range"`
	Overlay          OverlaySpec     `json:"overlay"`
	UserProfile      UserProfile     `json:"user_profile"`
	TargetingContext AdAttributes    `json:"targeting_context"`
	Results          []ProductResult `json:"kroger_results"`
	// Rationale explains the selection path in order.
	Rationale []string `json:"rationale"`
}
