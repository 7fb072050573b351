package sale

// LineItemRequest is one requested line of a sale before validation. It is
// supplied by the caller and never persisted directly.
type LineItemRequest struct {
	ProductID string
	Quantity  int
}

// Item is a persisted sale line. PriceCents is captured from the product at
// sale-creation time and is immutable afterwards, regardless of later
// product price edits.
type Item struct {
	ID            string
	SaleID        string
	ProductID     string
	ProductName   string
	Quantity      int
	PriceCents    int64
	SubtotalCents int64
}

func NewItem(id, productID, productName string, quantity int, priceCents int64) *Item {
	return &Item{
		ID:            id,
		ProductID:     productID,
		ProductName:   productName,
		Quantity:      quantity,
		PriceCents:    priceCents,
		SubtotalCents: int64(quantity) * priceCents,
	}
}
