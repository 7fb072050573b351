package sale

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/brenobaldassim/cpsm-service/internal/domain/catalog"
	domainErrors "github.com/brenobaldassim/cpsm-service/internal/domain/errors"
)

func productMap(products ...*catalog.Product) map[string]*catalog.Product {
	m := make(map[string]*catalog.Product, len(products))
	for _, p := range products {
		m[p.ID] = p
	}
	return m
}

func TestValidateRequestEmpty(t *testing.T) {
	svc := NewSaleService()
	if err := svc.ValidateRequest(nil); !errors.Is(err, domainErrors.ErrNoItems) {
		t.Fatalf("expected ErrNoItems, got %v", err)
	}
	if err := svc.ValidateRequest([]LineItemRequest{}); !errors.Is(err, domainErrors.ErrNoItems) {
		t.Fatalf("expected ErrNoItems, got %v", err)
	}
}

func TestValidateRequestQuantity(t *testing.T) {
	svc := NewSaleService()
	for _, qty := range []int{0, -1, -100} {
		err := svc.ValidateRequest([]LineItemRequest{{ProductID: "prod_1", Quantity: qty}})
		if !errors.Is(err, domainErrors.ErrInvalidQuantity) {
			t.Fatalf("qty %d: expected ErrInvalidQuantity, got %v", qty, err)
		}
	}
	if err := svc.ValidateRequest([]LineItemRequest{{ProductID: "prod_1", Quantity: 1}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestMissingProductsPreservesOrder(t *testing.T) {
	svc := NewSaleService()
	products := productMap(&catalog.Product{ID: "prod_b", Name: "B", PriceCents: 100, StockQty: 5})

	lines := []LineItemRequest{
		{ProductID: "prod_a", Quantity: 1},
		{ProductID: "prod_b", Quantity: 1},
		{ProductID: "prod_c", Quantity: 1},
		{ProductID: "prod_a", Quantity: 2},
	}

	missing := svc.MissingProducts(lines, products)
	if len(missing) != 2 || missing[0] != "prod_a" || missing[1] != "prod_c" {
		t.Fatalf("unexpected missing set: %v", missing)
	}
}

func TestCheckStockCollectsAllShortagesInRequestOrder(t *testing.T) {
	svc := NewSaleService()
	products := productMap(
		&catalog.Product{ID: "prod_a", Name: "Widget", PriceCents: 500, StockQty: 2},
		&catalog.Product{ID: "prod_b", Name: "Gadget", PriceCents: 900, StockQty: 10},
		&catalog.Product{ID: "prod_c", Name: "Sprocket", PriceCents: 50, StockQty: 0},
	)

	lines := []LineItemRequest{
		{ProductID: "prod_a", Quantity: 5},
		{ProductID: "prod_b", Quantity: 3},
		{ProductID: "prod_c", Quantity: 1},
	}

	shortages := svc.CheckStock(lines, products)
	if len(shortages) != 2 {
		t.Fatalf("expected 2 shortages, got %d: %v", len(shortages), shortages)
	}
	if shortages[0].ProductID != "prod_a" || shortages[0].Requested != 5 || shortages[0].Available != 2 {
		t.Fatalf("unexpected first shortage: %+v", shortages[0])
	}
	if shortages[1].ProductID != "prod_c" || shortages[1].Requested != 1 || shortages[1].Available != 0 {
		t.Fatalf("unexpected second shortage: %+v", shortages[1])
	}
}

func TestCheckStockDuplicateLinesCheckedIndependently(t *testing.T) {
	svc := NewSaleService()
	products := productMap(&catalog.Product{ID: "prod_a", Name: "Widget", PriceCents: 500, StockQty: 5})

	// Each line fits on its own even though together they ask for 8 of 5.
	// The conditional decrement at commit time is what refuses the overdraw.
	lines := []LineItemRequest{
		{ProductID: "prod_a", Quantity: 4},
		{ProductID: "prod_a", Quantity: 4},
	}

	if shortages := svc.CheckStock(lines, products); len(shortages) != 0 {
		t.Fatalf("expected no shortages from per-line check, got %v", shortages)
	}
}

func TestInsufficientStockErrorFormat(t *testing.T) {
	err := &domainErrors.InsufficientStockError{Shortages: []domainErrors.StockShortage{
		{ProductID: "prod_a", ProductName: "Widget", Requested: 5, Available: 2},
		{ProductID: "prod_c", ProductName: "Sprocket", Requested: 1, Available: 0},
	}}

	want := "Widget: 5 requested, 2 available; Sprocket: 1 requested, 0 available"
	if err.Error() != want {
		t.Fatalf("expected %q, got %q", want, err.Error())
	}
	if !errors.Is(err, domainErrors.ErrInsufficientStock) {
		t.Fatalf("expected error to unwrap to ErrInsufficientStock")
	}
}

func TestBuildItemsSnapshotsPriceAndSubtotal(t *testing.T) {
	svc := NewSaleService()
	products := productMap(
		&catalog.Product{ID: "prod_a", Name: "Widget", PriceCents: 1299, StockQty: 10},
		&catalog.Product{ID: "prod_b", Name: "Gadget", PriceCents: 35, StockQty: 10},
	)

	lines := []LineItemRequest{
		{ProductID: "prod_a", Quantity: 3},
		{ProductID: "prod_b", Quantity: 7},
	}

	var n int
	newID := func() string {
		n++
		return fmt.Sprintf("sitem_%d", n)
	}

	items := svc.BuildItems(lines, products, newID)
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].PriceCents != 1299 || items[0].SubtotalCents != 3897 {
		t.Fatalf("unexpected first item: %+v", items[0])
	}
	if items[1].PriceCents != 35 || items[1].SubtotalCents != 245 {
		t.Fatalf("unexpected second item: %+v", items[1])
	}
	if items[0].ProductName != "Widget" {
		t.Fatalf("expected product name snapshot, got %q", items[0].ProductName)
	}
	if items[0].ID != "sitem_1" || items[1].ID != "sitem_2" {
		t.Fatalf("unexpected item ids: %q, %q", items[0].ID, items[1].ID)
	}
}

func TestNewSaleSumsIntegerTotal(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	items := []Item{
		*NewItem("sitem_1", "prod_a", "Widget", 3, 1299),
		*NewItem("sitem_2", "prod_b", "Gadget", 7, 35),
	}

	s, err := NewSale("sale_1", "client_1", time.Time{}, items, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.TotalCents != 4142 {
		t.Fatalf("expected total 4142, got %d", s.TotalCents)
	}
	if !s.SaleDate.Equal(now) {
		t.Fatalf("expected zero sale date to default to creation time")
	}
	for _, item := range s.Items {
		if item.SaleID != "sale_1" {
			t.Fatalf("expected item stamped with sale id, got %q", item.SaleID)
		}
	}
	if !s.TotalConsistent() {
		t.Fatalf("expected consistent total")
	}
}

func TestNewSaleKeepsExplicitDate(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	saleDate := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	items := []Item{*NewItem("sitem_1", "prod_a", "Widget", 1, 100)}

	s, err := NewSale("sale_1", "client_1", saleDate, items, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !s.SaleDate.Equal(saleDate) {
		t.Fatalf("expected sale date %v, got %v", saleDate, s.SaleDate)
	}
}

func TestNewSaleRejectsEmptyItems(t *testing.T) {
	if _, err := NewSale("sale_1", "client_1", time.Time{}, nil, time.Now()); err == nil {
		t.Fatalf("expected error for sale without items")
	}
}

func TestNewItemSubtotalUsesInt64(t *testing.T) {
	// 2_000_000 units at 50_000 cents overflows int32 but not int64.
	item := NewItem("sitem_1", "prod_a", "Widget", 2000000, 50000)
	if item.SubtotalCents != 100000000000 {
		t.Fatalf("expected 100000000000, got %d", item.SubtotalCents)
	}
}
