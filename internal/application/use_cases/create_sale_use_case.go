package use_cases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/brenobaldassim/cpsm-service/internal/application/ports"
	"github.com/brenobaldassim/cpsm-service/internal/domain/catalog"
	"github.com/brenobaldassim/cpsm-service/internal/domain/client"
	domainErrors "github.com/brenobaldassim/cpsm-service/internal/domain/errors"
	"github.com/brenobaldassim/cpsm-service/internal/domain/sale"
	"github.com/brenobaldassim/cpsm-service/internal/pkg/clock"
	"github.com/brenobaldassim/cpsm-service/internal/pkg/generator"
	"github.com/brenobaldassim/cpsm-service/internal/pkg/logger"
)

// CreateSaleInput is a proposed sale: a client, one or more product lines,
// and an optional sale date (zero value means "moment of commit").
type CreateSaleInput struct {
	ClientID string
	Items    []sale.LineItemRequest
	SaleDate time.Time
}

// CreateSaleUseCase is the sale transaction engine. It validates a request
// fail-fast (request shape, client, products, stock), snapshots prices from
// the validation-time read, computes integer totals, and commits the stock
// decrements together with the sale insert in a single unit of work.
// Transient commit conflicts are retried a bounded number of times with a
// full re-validation pass on each attempt.
type CreateSaleUseCase struct {
	clientRepo  ports.ClientRepository
	productRepo ports.ProductRepository
	uow         ports.UnitOfWork
	cache       ports.Cache
	saleSvc     *sale.SaleService
	idGen       *generator.IDGenerator
	clk         clock.Clock
	log         *logger.Logger

	retryAttempts int
}

func NewCreateSaleUseCase(
	clientRepo ports.ClientRepository,
	productRepo ports.ProductRepository,
	uow ports.UnitOfWork,
	cache ports.Cache,
	clk clock.Clock,
	log *logger.Logger,
	retryAttempts int,
) *CreateSaleUseCase {
	if retryAttempts < 1 {
		retryAttempts = 1
	}

	return &CreateSaleUseCase{
		clientRepo:    clientRepo,
		productRepo:   productRepo,
		uow:           uow,
		cache:         cache,
		saleSvc:       sale.NewSaleService(),
		idGen:         generator.NewIDGenerator(),
		clk:           clk,
		log:           log,
		retryAttempts: retryAttempts,
	}
}

func (uc *CreateSaleUseCase) Execute(ctx context.Context, input CreateSaleInput) (*sale.Sale, error) {
	if err := uc.saleSvc.ValidateRequest(input.Items); err != nil {
		return nil, err
	}

	buyer, err := uc.clientRepo.GetClientByID(ctx, input.ClientID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrClientNotFound) {
			return nil, domainErrors.ErrClientNotFound
		}
		uc.log.Error("Failed to look up client", "error", err, "client_id", input.ClientID)
		return nil, err
	}

	var committed *sale.Sale
	for attempt := 0; attempt < uc.retryAttempts; attempt++ {
		committed, err = uc.attemptCommit(ctx, buyer, input)
		if err == nil {
			break
		}

		if !errors.Is(err, domainErrors.ErrTransactionConflict) {
			return nil, err
		}

		uc.log.Warn("Sale commit conflicted",
			"attempt", attempt+1,
			"client_id", input.ClientID,
			"error", err.Error(),
		)

		if attempt < uc.retryAttempts-1 {
			uc.clk.Sleep(time.Millisecond * time.Duration(50*(attempt+1)))
		}
	}

	if err != nil {
		return nil, fmt.Errorf("%w: %v", domainErrors.ErrTransactionFailed, err)
	}

	uc.invalidateProducts(ctx, input.Items)

	uc.log.Info("Sale committed",
		"sale_id", committed.ID,
		"client_id", committed.ClientID,
		"items", committed.ItemCount(),
		"total_cents", committed.TotalCents,
	)

	return committed, nil
}

// attemptCommit runs one full validate-then-commit pass. The product read
// here is the snapshot source for prices; stock is re-verified inside the
// transaction by the conditional decrement.
func (uc *CreateSaleUseCase) attemptCommit(ctx context.Context, buyer *client.Client, input CreateSaleInput) (*sale.Sale, error) {
	products, err := uc.resolveProducts(ctx, input.Items)
	if err != nil {
		return nil, err
	}

	if missing := uc.saleSvc.MissingProducts(input.Items, products); len(missing) > 0 {
		return nil, &domainErrors.ProductsNotFoundError{MissingIDs: missing}
	}

	if shortages := uc.saleSvc.CheckStock(input.Items, products); len(shortages) > 0 {
		return nil, &domainErrors.InsufficientStockError{Shortages: shortages}
	}

	items := uc.saleSvc.BuildItems(input.Items, products, uc.idGen.GenerateSaleItemID)

	newSale, err := sale.NewSale(uc.idGen.GenerateSaleID(), buyer.ID, input.SaleDate, items, uc.clk.Now())
	if err != nil {
		return nil, err
	}
	newSale.ClientName = buyer.Name

	tx, err := uc.uow.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin unit of work: %w", err)
	}
	defer tx.Rollback()

	for _, line := range input.Items {
		ok, decErr := tx.Products().DecrementStock(ctx, line.ProductID, line.Quantity)
		if decErr != nil {
			return nil, decErr
		}
		if !ok {
			// The validation pass accepted the request but the guarded
			// decrement refused it, either because a concurrent sale won
			// the stock or because duplicate lines of the same product
			// together exceed it. Rebuild the shortage list from a fresh
			// read so the caller sees current numbers.
			if rbErr := tx.Rollback(); rbErr != nil {
				uc.log.Error("Rollback failed after stock refusal", "error", rbErr)
			}
			return nil, uc.shortageFromCurrentStock(ctx, input.Items)
		}
	}

	if err := tx.Sales().CreateSale(ctx, newSale); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return newSale, nil
}

func (uc *CreateSaleUseCase) resolveProducts(ctx context.Context, lines []sale.LineItemRequest) (map[string]*catalog.Product, error) {
	ids := make([]string, 0, len(lines))
	seen := make(map[string]bool, len(lines))
	for _, line := range lines {
		if !seen[line.ProductID] {
			seen[line.ProductID] = true
			ids = append(ids, line.ProductID)
		}
	}

	resolved, err := uc.productRepo.GetProductsByIDs(ctx, ids)
	if err != nil {
		uc.log.Error("Failed to resolve products", "error", err)
		return nil, err
	}

	products := make(map[string]*catalog.Product, len(resolved))
	for _, p := range resolved {
		products[p.ID] = p
	}

	return products, nil
}

// shortageFromCurrentStock re-reads the referenced products and reports
// every line that no longer fits. When each line individually fits but the
// per-product demand summed across duplicate lines does not, the shortage
// is reported against that cumulative demand.
func (uc *CreateSaleUseCase) shortageFromCurrentStock(ctx context.Context, lines []sale.LineItemRequest) error {
	products, err := uc.resolveProducts(ctx, lines)
	if err != nil {
		return domainErrors.ErrInsufficientStock
	}

	shortages := uc.saleSvc.CheckStock(lines, products)
	if len(shortages) == 0 {
		demand := make(map[string]int, len(lines))
		for _, line := range lines {
			demand[line.ProductID] += line.Quantity
		}

		seen := make(map[string]bool, len(lines))
		for _, line := range lines {
			if seen[line.ProductID] {
				continue
			}
			seen[line.ProductID] = true

			product, ok := products[line.ProductID]
			if !ok {
				continue
			}
			if demand[line.ProductID] > product.StockQty {
				shortages = append(shortages, domainErrors.StockShortage{
					ProductID:   product.ID,
					ProductName: product.Name,
					Requested:   demand[line.ProductID],
					Available:   product.StockQty,
				})
			}
		}
	}

	if len(shortages) == 0 {
		// The refusal was observed but stock has already been replenished
		// or freed; report the kind without a line breakdown.
		return domainErrors.ErrInsufficientStock
	}

	return &domainErrors.InsufficientStockError{Shortages: shortages}
}

func (uc *CreateSaleUseCase) invalidateProducts(ctx context.Context, lines []sale.LineItemRequest) {
	if uc.cache == nil {
		return
	}

	seen := make(map[string]bool, len(lines))
	for _, line := range lines {
		if seen[line.ProductID] {
			continue
		}
		seen[line.ProductID] = true

		if err := uc.cache.InvalidateProduct(ctx, line.ProductID); err != nil {
			uc.log.Warn("Failed to invalidate product cache", "error", err, "product_id", line.ProductID)
		}
	}
}
