package ports

import (
	"context"

	"github.com/brenobaldassim/cpsm-service/internal/domain/catalog"
)

type ProductRepository interface {
	GetProductByID(ctx context.Context, id string) (*catalog.Product, error)

	// GetProductsByIDs resolves a batch of ids in one query. Products that
	// do not exist are simply absent from the result; callers detect them
	// by set difference.
	GetProductsByIDs(ctx context.Context, ids []string) ([]*catalog.Product, error)

	ListProducts(ctx context.Context, limit, offset int) ([]*catalog.Product, error)
	CreateProduct(ctx context.Context, product *catalog.Product) error
	UpdateProduct(ctx context.Context, product *catalog.Product) error

	// DecrementStock applies a conditional decrement: it succeeds only if
	// the product currently holds at least qty units, and reports false
	// otherwise. Inside a unit of work this is the commit-time oversell
	// guard.
	DecrementStock(ctx context.Context, id string, qty int) (bool, error)
}
