package ports

import (
	"context"
	"time"

	"github.com/brenobaldassim/cpsm-service/internal/domain/catalog"
)

// Cache is a read-through cache for product lookups on the hot paths.
// A miss returns (nil, nil); cache failures are never fatal to a request.
type Cache interface {
	GetProduct(ctx context.Context, id string) (*catalog.Product, error)
	SetProduct(ctx context.Context, product *catalog.Product, expiration time.Duration) error
	InvalidateProduct(ctx context.Context, id string) error
}
