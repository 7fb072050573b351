package ports

import (
	"context"

	"github.com/brenobaldassim/cpsm-service/internal/domain/sale"
)

type SaleRepository interface {
	GetSaleByID(ctx context.Context, id string) (*sale.Sale, error)
	ListSales(ctx context.Context, limit, offset int) ([]*sale.Sale, error)

	// CreateSale persists the sale and all of its items.
	CreateSale(ctx context.Context, s *sale.Sale) error
}
