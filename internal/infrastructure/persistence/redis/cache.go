package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/brenobaldassim/cpsm-service/internal/domain/catalog"
	"github.com/brenobaldassim/cpsm-service/internal/infrastructure/monitoring"
	"github.com/brenobaldassim/cpsm-service/internal/pkg/logger"
)

// Cache is the Redis read-through cache for product lookups. Sale commits
// and product writes invalidate the affected keys; a miss is (nil, nil).
type Cache struct {
	client *redis.Client
	logger *logger.Logger
}

func NewCache(conn *Connection, log *logger.Logger) *Cache {
	client := monitoring.InstrumentRedisClient(conn.GetClient())

	return &Cache{
		client: client,
		logger: log,
	}
}

type cachedProduct struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	PriceCents int64     `json:"price_cents"`
	StockQty   int       `json:"stock_qty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func productKey(id string) string {
	return fmt.Sprintf("product:%s", id)
}

func (c *Cache) GetProduct(ctx context.Context, id string) (*catalog.Product, error) {
	result, err := c.client.Get(ctx, productKey(id)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var cached cachedProduct
	if err := json.Unmarshal([]byte(result), &cached); err != nil {
		// Treat a corrupt entry as a miss and drop it.
		c.logger.Warn("Dropping unreadable product cache entry", "product_id", id, "error", err)
		_ = c.client.Del(ctx, productKey(id)).Err()
		return nil, nil
	}

	return &catalog.Product{
		ID:         cached.ID,
		Name:       cached.Name,
		PriceCents: cached.PriceCents,
		StockQty:   cached.StockQty,
		CreatedAt:  cached.CreatedAt,
		UpdatedAt:  cached.UpdatedAt,
	}, nil
}

func (c *Cache) SetProduct(ctx context.Context, product *catalog.Product, expiration time.Duration) error {
	payload, err := json.Marshal(cachedProduct{
		ID:         product.ID,
		Name:       product.Name,
		PriceCents: product.PriceCents,
		StockQty:   product.StockQty,
		CreatedAt:  product.CreatedAt,
		UpdatedAt:  product.UpdatedAt,
	})
	if err != nil {
		return err
	}

	return c.client.Set(ctx, productKey(product.ID), payload, expiration).Err()
}

func (c *Cache) InvalidateProduct(ctx context.Context, id string) error {
	return c.client.Del(ctx, productKey(id)).Err()
}
