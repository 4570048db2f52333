package cart

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/patrickwarner/seamlessads/internal/db"
	"github.com/patrickwarner/seamlessads/internal/models"
	"github.com/patrickwarner/seamlessads/internal/observability"
)

type productTable map[string]models.RetailProduct

func (p productTable) Lookup(id string) (models.RetailProduct, bool) {
	prod, ok := p[id]
	return prod, ok
}

func newTestService(t *testing.T, store Store) (*Service, *observability.MockMetricsRegistry) {
	t.Helper()
	products := productTable{
		"p1": {ID: "p1", Name: "Widget", Price: 19.99, Currency: "USD"},
		"p2": {ID: "p2", Name: "Gadget", Price: 0.1, Currency: "USD"},
	}
	metrics := observability.NewMockMetricsRegistry()
	svc := NewService(store, products, zap.NewNop(), metrics)
	n := 0
	svc.newID = func() string {
		n++
		return fmt.Sprintf("abcdef%02d-0000-0000-0000-000000000000", n)
	}
	svc.now = func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) }
	return svc, metrics
}

func stores(t *testing.T) map[string]Store {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	rs := db.NewRedisStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	return map[string]Store{
		"memory": NewMemoryStore(),
		"redis":  NewRedisStore(rs, time.Hour),
	}
}

func TestAddViewCheckoutFlow(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			svc, metrics := newTestService(t, store)
			ctx := context.Background()

			res, err := svc.Add(ctx, "", "p1", 2)
			require.NoError(t, err)
			require.True(t, res.Success)
			assert.Equal(t, "Added 2x Widget to cart", res.Message)
			cartID := res.Cart.ID
			assert.Equal(t, "abcdef01-0000-0000-0000-000000000000", cartID)
			assert.Equal(t, 2, res.Cart.ItemCount)
			assert.InDelta(t, 39.98, res.Cart.Total, 1e-9)

			res, err = svc.Add(ctx, cartID, "p1", 1)
			require.NoError(t, err)
			assert.Equal(t, 3, res.Cart.ItemCount)
			assert.InDelta(t, 59.97, res.Cart.Total, 1e-9)

			res, err = svc.Add(ctx, cartID, "p2", 3)
			require.NoError(t, err)
			assert.InDelta(t, 60.27, res.Cart.Total, 1e-9)

			c, err := svc.View(ctx, cartID)
			require.NoError(t, err)
			require.Len(t, c.Items, 2)
			assert.Equal(t, 3, c.Items[0].Quantity)
			assert.InDelta(t, 59.97, c.Items[0].Subtotal, 1e-9)
			assert.InDelta(t, 0.3, c.Items[1].Subtotal, 1e-9)
			assert.Equal(t, 6, c.ItemCount)

			order, err := svc.Checkout(ctx, cartID)
			require.NoError(t, err)
			assert.Equal(t, models.OrderCompleted, order.Status)
			require.NotNil(t, order.OrderID)
			assert.Equal(t, "ORD-ABCDEF02", *order.OrderID)
			assert.InDelta(t, 60.27, order.Total, 1e-9)
			assert.Len(t, order.Items, 2)
			assert.Equal(t, "Mock order ORD-ABCDEF02 placed successfully! Total: $60.27", order.Message)

			c, err = svc.View(ctx, cartID)
			require.NoError(t, err)
			assert.Empty(t, c.Items)
			assert.Zero(t, c.Total)

			order, err = svc.Checkout(ctx, cartID)
			require.NoError(t, err)
			assert.Equal(t, models.OrderError, order.Status)
			assert.Nil(t, order.OrderID)
			assert.Equal(t, "Cart is empty", order.Message)

			assert.Equal(t, 3, metrics.Count("cart_operations", "add", "ok"))
			assert.Equal(t, 1, metrics.Count("cart_operations", "checkout", "ok"))
			assert.Equal(t, 1, metrics.Count("cart_operations", "checkout", "rejected"))
		})
	}
}

func TestCartsAreIsolated(t *testing.T) {
	svc, _ := newTestService(t, NewMemoryStore())
	ctx := context.Background()

	a, err := svc.Add(ctx, "", "p1", 1)
	require.NoError(t, err)
	b, err := svc.Add(ctx, "", "p2", 5)
	require.NoError(t, err)
	assert.NotEqual(t, a.Cart.ID, b.Cart.ID)

	ca, err := svc.View(ctx, a.Cart.ID)
	require.NoError(t, err)
	require.Len(t, ca.Items, 1)
	assert.Equal(t, "p1", ca.Items[0].ProductID)

	_, err = svc.Clear(ctx, b.Cart.ID)
	require.NoError(t, err)
	ca, err = svc.View(ctx, a.Cart.ID)
	require.NoError(t, err)
	assert.Len(t, ca.Items, 1)
}

func TestAddRejectsBadQuantity(t *testing.T) {
	svc, _ := newTestService(t, NewMemoryStore())
	ctx := context.Background()

	res, err := svc.Add(ctx, "", "p1", 0)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "Quantity must be at least 1", res.Message)
	assert.Zero(t, res.Cart.ItemCount)
}

func TestAddPlaceholderProduct(t *testing.T) {
	svc, _ := newTestService(t, NewMemoryStore())
	res, err := svc.Add(context.Background(), "", "zzz", 1)
	require.NoError(t, err)
	assert.Equal(t, "Added 1x Product zzz to cart", res.Message)
	assert.InDelta(t, PlaceholderPrice, res.Cart.Total, 1e-9)
}

func TestUnknownCart(t *testing.T) {
	svc, _ := newTestService(t, NewMemoryStore())
	ctx := context.Background()

	res, err := svc.Add(ctx, "missing", "p1", 1)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "Cart missing not found", res.Message)

	_, err = svc.View(ctx, "missing")
	assert.ErrorIs(t, err, ErrCartNotFound)

	order, err := svc.Checkout(ctx, "missing")
	require.NoError(t, err)
	assert.Equal(t, models.OrderError, order.Status)
	assert.Equal(t, "Cart missing not found", order.Message)
	assert.Zero(t, order.Total)

	cleared, err := svc.Clear(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, cleared.Success)
}

func TestClear(t *testing.T) {
	svc, _ := newTestService(t, NewMemoryStore())
	ctx := context.Background()

	res, err := svc.Add(ctx, "", "p1", 4)
	require.NoError(t, err)

	cleared, err := svc.Clear(ctx, res.Cart.ID)
	require.NoError(t, err)
	assert.True(t, cleared.Success)
	assert.Equal(t, "Cart cleared", cleared.Message)
	assert.Equal(t, models.CartSummary{ID: res.Cart.ID}, cleared.Cart)
}

func TestRedisStoreExpires(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	store := NewRedisStore(db.NewRedisStore(redis.NewClient(&redis.Options{Addr: mr.Addr()})), time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, models.Cart{ID: "c1", Items: []models.CartItem{}}))
	_, err = store.Get(ctx, "c1")
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)
	_, err = store.Get(ctx, "c1")
	assert.ErrorIs(t, err, ErrCartNotFound)
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, models.Cart{ID: "c1", Items: []models.CartItem{{ProductID: "p1", Quantity: 1}}}))

	c, err := store.Get(ctx, "c1")
	require.NoError(t, err)
	c.Items[0].Quantity = 99

	again, err := store.Get(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 1, again.Items[0].Quantity)

	require.NoError(t, store.Delete(ctx, "c1"))
	_, err = store.Get(ctx, "c1")
	assert.ErrorIs(t, err, ErrCartNotFound)
}
