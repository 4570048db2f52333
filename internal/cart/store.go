// Package cart implements per-cart shopping state for the shopping tools.
package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/patrickwarner/seamlessads/internal/db"
	"github.com/patrickwarner/seamlessads/internal/models"
)

// ErrCartNotFound is returned for unknown cart ids.
var ErrCartNotFound = errors.New("cart not found")

// Store persists carts by id. Implementations return copies so callers may
// mutate what they load.
type Store interface {
	Get(ctx context.Context, id string) (models.Cart, error)
	Save(ctx context.Context, c models.Cart) error
	Delete(ctx context.Context, id string) error
}

func cloneCart(c models.Cart) models.Cart {
	c.Items = append([]models.CartItem(nil), c.Items...)
	return c
}

// MemoryStore keeps carts in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	carts map[string]models.Cart
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: make(map[string]models.Cart)}
}

func (m *MemoryStore) Get(_ context.Context, id string) (models.Cart, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.carts[id]
	if !ok {
		return models.Cart{}, fmt.Errorf("%w: %s", ErrCartNotFound, id)
	}
	return cloneCart(c), nil
}

func (m *MemoryStore) Save(_ context.Context, c models.Cart) error {
	m.mu.Lock()
	m.carts[c.ID] = cloneCart(c)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.carts, id)
	m.mu.Unlock()
	return nil
}

// RedisStore keeps carts as JSON documents under cart:<id> with a sliding TTL.
type RedisStore struct {
	rs  *db.RedisStore
	ttl time.Duration
}

// NewRedisStore returns a RedisStore. A non-positive ttl keeps carts forever.
func NewRedisStore(rs *db.RedisStore, ttl time.Duration) *RedisStore {
	if ttl < 0 {
		ttl = 0
	}
	return &RedisStore{rs: rs, ttl: ttl}
}

func cartKey(id string) string { return "cart:" + id }

func (r *RedisStore) Get(ctx context.Context, id string) (models.Cart, error) {
	var c models.Cart
	if err := r.rs.GetJSON(ctx, cartKey(id), &c); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.Cart{}, fmt.Errorf("%w: %s", ErrCartNotFound, id)
		}
		return models.Cart{}, fmt.Errorf("load cart %s: %w", id, err)
	}
	return c, nil
}

func (r *RedisStore) Save(ctx context.Context, c models.Cart) error {
	if err := r.rs.SetJSON(ctx, cartKey(c.ID), c, r.ttl); err != nil {
		return fmt.Errorf("save cart %s: %w", c.ID, err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	if _, err := r.rs.Delete(ctx, cartKey(id)); err != nil {
		return fmt.Errorf("delete cart %s: %w", id, err)
	}
	return nil
}
