package catalog

import (
	"errors"
	"time"
)

// Product is the engine's read model of a catalog entry. Prices are stored
// in integer minor units (cents); the engine never sees floating point money.
type Product struct {
	ID         string
	Name       string
	PriceCents int64
	StockQty   int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func NewProduct(id, name string, priceCents int64, stockQty int) (*Product, error) {
	if id == "" {
		return nil, errors.New("product id cannot be empty")
	}

	if name == "" {
		return nil, errors.New("product name cannot be empty")
	}

	if priceCents < 0 {
		return nil, errors.New("product price cannot be negative")
	}

	if stockQty < 0 {
		return nil, errors.New("product stock cannot be negative")
	}

	now := time.Now().UTC()
	return &Product{
		ID:         id,
		Name:       name,
		PriceCents: priceCents,
		StockQty:   stockQty,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

func (p *Product) HasStock(quantity int) bool {
	return p.StockQty >= quantity
}
