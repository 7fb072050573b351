package sale

import (
	"github.com/brenobaldassim/cpsm-service/internal/domain/catalog"
	domainErrors "github.com/brenobaldassim/cpsm-service/internal/domain/errors"
)

// SaleService holds the pure validation and pricing rules of the sale
// transaction engine. It performs no I/O; the use case feeds it the
// products resolved during the batched lookup.
type SaleService struct{}

func NewSaleService() *SaleService {
	return &SaleService{}
}

// ValidateRequest checks the locally-detectable preconditions: a non-empty
// line list and strictly positive quantities. It runs before any lookup.
func (s *SaleService) ValidateRequest(lines []LineItemRequest) error {
	if len(lines) == 0 {
		return domainErrors.ErrNoItems
	}

	for _, line := range lines {
		if line.Quantity <= 0 {
			return domainErrors.ErrInvalidQuantity
		}
	}

	return nil
}

// MissingProducts returns the distinct product ids referenced by lines that
// are absent from the resolved set, preserving first-reference order.
func (s *SaleService) MissingProducts(lines []LineItemRequest, products map[string]*catalog.Product) []string {
	var missing []string
	seen := make(map[string]bool)

	for _, line := range lines {
		if seen[line.ProductID] {
			continue
		}
		seen[line.ProductID] = true

		if _, ok := products[line.ProductID]; !ok {
			missing = append(missing, line.ProductID)
		}
	}

	return missing
}

// CheckStock compares every line against the resolved product's stock and
// collects all shortages, in request order. Each line is checked against the
// stock value as read, independently of other lines for the same product;
// the conditional decrement at commit time is what ultimately prevents an
// oversell across duplicate lines.
func (s *SaleService) CheckStock(lines []LineItemRequest, products map[string]*catalog.Product) []domainErrors.StockShortage {
	var shortages []domainErrors.StockShortage

	for _, line := range lines {
		product, ok := products[line.ProductID]
		if !ok {
			continue
		}

		if !product.HasStock(line.Quantity) {
			shortages = append(shortages, domainErrors.StockShortage{
				ProductID:   product.ID,
				ProductName: product.Name,
				Requested:   line.Quantity,
				Available:   product.StockQty,
			})
		}
	}

	return shortages
}

// BuildItems snapshots the price of every line from the already-resolved
// products and computes the integer subtotals. Prices are not re-read after
// validation so the committed sale matches what was validated.
func (s *SaleService) BuildItems(lines []LineItemRequest, products map[string]*catalog.Product, newID func() string) []Item {
	items := make([]Item, 0, len(lines))

	for _, line := range lines {
		product := products[line.ProductID]
		items = append(items, *NewItem(newID(), product.ID, product.Name, line.Quantity, product.PriceCents))
	}

	return items
}
