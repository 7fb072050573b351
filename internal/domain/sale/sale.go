package sale

import (
	"errors"
	"time"
)

// Sale is the root aggregate created by the transaction engine. A sale and
// its items are written together in one transaction and never mutated
// afterwards: the captured prices and the total are historical facts.
type Sale struct {
	ID         string
	ClientID   string
	ClientName string
	SaleDate   time.Time
	TotalCents int64
	Items      []Item
	CreatedAt  time.Time
}

func NewSale(id, clientID string, saleDate time.Time, items []Item, createdAt time.Time) (*Sale, error) {
	if id == "" {
		return nil, errors.New("sale id cannot be empty")
	}

	if clientID == "" {
		return nil, errors.New("client id cannot be empty")
	}

	if len(items) == 0 {
		return nil, errors.New("sale must have at least one item")
	}

	if saleDate.IsZero() {
		saleDate = createdAt
	}

	s := &Sale{
		ID:        id,
		ClientID:  clientID,
		SaleDate:  saleDate,
		Items:     items,
		CreatedAt: createdAt,
	}

	for i := range s.Items {
		s.Items[i].SaleID = id
		s.TotalCents += s.Items[i].SubtotalCents
	}

	return s, nil
}

func (s *Sale) ItemCount() int {
	return len(s.Items)
}

// TotalConsistent reports whether the stored total still equals the sum of
// the item subtotals. Repositories use it as a read-time sanity check.
func (s *Sale) TotalConsistent() bool {
	var sum int64
	for _, item := range s.Items {
		sum += item.SubtotalCents
	}
	return sum == s.TotalCents
}
