package cart

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/patrickwarner/seamlessads/internal/models"
	"github.com/patrickwarner/seamlessads/internal/observability"
)

// PlaceholderPrice is charged for products the catalog has never listed.
const PlaceholderPrice = 99.99

// ProductLookup resolves product ids handed out by a product search.
type ProductLookup interface {
	Lookup(productID string) (models.RetailProduct, bool)
}

// Result is the reply to a mutating cart operation.
type Result struct {
	Success bool               `json:"success"`
	Message string             `json:"message"`
	Cart    models.CartSummary `json:"cart"`
}

// Service implements add, view, checkout and clear over a Store. Mutations
// are serialized within the process.
type Service struct {
	mu       sync.Mutex
	store    Store
	products ProductLookup
	logger   *zap.Logger
	metrics  observability.MetricsRegistry
	now      func() time.Time
	newID    func() string
}

// NewService returns a Service. products may be nil, in which case every
// product is priced as a placeholder.
func NewService(store Store, products ProductLookup, logger *zap.Logger, metrics observability.MetricsRegistry) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = observability.NewNoOpRegistry()
	}
	return &Service{
		store:    store,
		products: products,
		logger:   logger,
		metrics:  metrics,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    func() string { return uuid.NewString() },
	}
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

func recalculate(c *models.Cart, now time.Time) {
	total := 0.0
	count := 0
	for _, it := range c.Items {
		total += it.Subtotal
		count += it.Quantity
	}
	c.Total = roundCents(total)
	c.ItemCount = count
	c.UpdatedAt = now
}

func (s *Service) newCart(id string) models.Cart {
	now := s.now()
	return models.Cart{ID: id, Items: []models.CartItem{}, CreatedAt: now, UpdatedAt: now}
}

func (s *Service) record(op string, err error, ok bool) {
	outcome := "ok"
	switch {
	case err != nil:
		outcome = "error"
	case !ok:
		outcome = "rejected"
	}
	s.metrics.IncrementCartOperations(op, outcome)
}

// Add puts quantity units of productID into the cart. An empty cartID opens
// a new cart. Unknown products are added as placeholders; re-adding a
// product increases its quantity.
func (s *Service) Add(ctx context.Context, cartID, productID string, quantity int) (res Result, err error) {
	defer func() { s.record("add", err, res.Success) }()
	s.mu.Lock()
	defer s.mu.Unlock()

	cartID = strings.TrimSpace(cartID)
	var c models.Cart
	if cartID == "" {
		c = s.newCart(s.newID())
	} else {
		c, err = s.store.Get(ctx, cartID)
		if errors.Is(err, ErrCartNotFound) {
			return Result{Message: fmt.Sprintf("Cart %s not found", cartID), Cart: models.CartSummary{ID: cartID}}, nil
		}
		if err != nil {
			return Result{}, err
		}
	}

	if quantity < 1 {
		return Result{Message: "Quantity must be at least 1", Cart: c.Summary()}, nil
	}

	product, ok := models.RetailProduct{}, false
	if s.products != nil {
		product, ok = s.products.Lookup(productID)
	}
	if !ok {
		s.logger.Info("product not in cache, adding placeholder", zap.String("product_id", productID))
		product = models.RetailProduct{ID: productID, Name: "Product " + productID, Price: PlaceholderPrice, Currency: "USD"}
	}

	found := false
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity += quantity
			c.Items[i].Subtotal = roundCents(c.Items[i].Price * float64(c.Items[i].Quantity))
			found = true
			break
		}
	}
	if !found {
		c.Items = append(c.Items, models.CartItem{
			ProductID: productID,
			Name:      product.Name,
			Price:     product.Price,
			Quantity:  quantity,
			Subtotal:  roundCents(product.Price * float64(quantity)),
		})
	}
	recalculate(&c, s.now())

	if err := s.store.Save(ctx, c); err != nil {
		return Result{}, err
	}
	s.logger.Info("added to cart",
		zap.String("cart_id", c.ID),
		zap.String("product_id", productID),
		zap.Int("quantity", quantity))
	return Result{
		Success: true,
		Message: fmt.Sprintf("Added %dx %s to cart", quantity, product.Name),
		Cart:    c.Summary(),
	}, nil
}

// View returns the full cart.
func (s *Service) View(ctx context.Context, cartID string) (c models.Cart, err error) {
	defer func() { s.record("view", err, true) }()
	return s.store.Get(ctx, strings.TrimSpace(cartID))
}

// Checkout places a mock order for a non-empty cart and empties it. Unknown
// or empty carts produce an order with status "error" rather than a Go error.
func (s *Service) Checkout(ctx context.Context, cartID string) (order models.Order, err error) {
	defer func() { s.record("checkout", err, order.Status == models.OrderCompleted) }()
	s.mu.Lock()
	defer s.mu.Unlock()

	failed := func(msg string) models.Order {
		return models.Order{CartID: cartID, Status: models.OrderError, Items: []models.CartItem{}, Message: msg}
	}

	c, err := s.store.Get(ctx, strings.TrimSpace(cartID))
	if errors.Is(err, ErrCartNotFound) {
		return failed(fmt.Sprintf("Cart %s not found", cartID)), nil
	}
	if err != nil {
		return models.Order{}, err
	}
	if len(c.Items) == 0 {
		return failed("Cart is empty"), nil
	}

	orderID := "ORD-" + strings.ToUpper(strings.ReplaceAll(s.newID(), "-", "")[:8])
	order = models.Order{
		OrderID: &orderID,
		CartID:  c.ID,
		Status:  models.OrderCompleted,
		Total:   c.Total,
		Items:   c.Items,
		Message: fmt.Sprintf("Mock order %s placed successfully! Total: $%.2f", orderID, c.Total),
	}

	emptied := s.newCart(c.ID)
	emptied.CreatedAt = c.CreatedAt
	if err := s.store.Save(ctx, emptied); err != nil {
		return models.Order{}, err
	}
	s.logger.Info("mock order placed", zap.String("order_id", orderID), zap.String("cart_id", c.ID), zap.Float64("total", c.Total))
	return order, nil
}

// Clear empties the cart while keeping its id.
func (s *Service) Clear(ctx context.Context, cartID string) (res Result, err error) {
	defer func() { s.record("clear", err, res.Success) }()
	s.mu.Lock()
	defer s.mu.Unlock()

	cartID = strings.TrimSpace(cartID)
	c, err := s.store.Get(ctx, cartID)
	if errors.Is(err, ErrCartNotFound) {
		return Result{Message: fmt.Sprintf("Cart %s not found", cartID), Cart: models.CartSummary{ID: cartID}}, nil
	}
	if err != nil {
		return Result{}, err
	}

	emptied := s.newCart(c.ID)
	emptied.CreatedAt = c.CreatedAt
	if err := s.store.Save(ctx, emptied); err != nil {
		return Result{}, err
	}
	return Result{Success: true, Message: "Cart cleared", Cart: emptied.Summary()}, nil
}
