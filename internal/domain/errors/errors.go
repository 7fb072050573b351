package errors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNoItems         = errors.New("at least one item required")
	ErrInvalidQuantity = errors.New("item quantity must be a positive integer")

	ErrClientNotFound  = errors.New("client not found")
	ErrProductNotFound = errors.New("one or more products not found")
	ErrSaleNotFound    = errors.New("sale not found")

	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrTransactionConflict marks a commit that failed on a transient
	// concurrency conflict (serialization failure, deadlock). The engine
	// retries these a bounded number of times.
	ErrTransactionConflict = errors.New("transaction conflict")
	ErrTransactionFailed   = errors.New("transaction failed")

	ErrRateLimited = errors.New("too many requests")
)

// StockShortage describes one line item whose requested quantity exceeds
// the product's available stock.
type StockShortage struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Requested   int    `json:"requested"`
	Available   int    `json:"available"`
}

// InsufficientStockError carries every failing line of a sale request, in
// request order, so the caller can render a complete correction at once.
type InsufficientStockError struct {
	Shortages []StockShortage
}

func (e *InsufficientStockError) Error() string {
	parts := make([]string, 0, len(e.Shortages))
	for _, s := range e.Shortages {
		name := s.ProductName
		if name == "" {
			name = s.ProductID
		}
		parts = append(parts, fmt.Sprintf("%s: %d requested, %d available", name, s.Requested, s.Available))
	}
	return strings.Join(parts, "; ")
}

func (e *InsufficientStockError) Unwrap() error {
	return ErrInsufficientStock
}

// ProductsNotFoundError lists the requested product ids that do not exist,
// so missing references are reported instead of silently dropped.
type ProductsNotFoundError struct {
	MissingIDs []string
}

func (e *ProductsNotFoundError) Error() string {
	return fmt.Sprintf("products not found: %s", strings.Join(e.MissingIDs, ", "))
}

func (e *ProductsNotFoundError) Unwrap() error {
	return ErrProductNotFound
}
