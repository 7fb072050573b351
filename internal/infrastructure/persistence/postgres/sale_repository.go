package postgres

import (
	"context"
	"database/sql"

	domainErrors "github.com/brenobaldassim/cpsm-service/internal/domain/errors"
	"github.com/brenobaldassim/cpsm-service/internal/domain/sale"
	"github.com/brenobaldassim/cpsm-service/internal/infrastructure/monitoring"
)

type SaleRepository struct {
	db   *sql.DB
	tx   *sql.Tx
	isTx bool
}

func NewSaleRepository(conn *Connection) *SaleRepository {
	return &SaleRepository{
		db:   conn.GetDB(),
		isTx: false,
	}
}

func (r *SaleRepository) GetSaleByID(ctx context.Context, id string) (*sale.Sale, error) {
	query := `
		SELECT s.id, s.client_id, c.name, s.sale_date, s.total_cents, s.created_at
		FROM sales s
		JOIN clients c ON c.id = s.client_id
		WHERE s.id = $1
	`

	var s sale.Sale
	var err error

	if r.isTx {
		err = r.tx.QueryRowContext(ctx, query, id).Scan(
			&s.ID, &s.ClientID, &s.ClientName, &s.SaleDate, &s.TotalCents, &s.CreatedAt,
		)
	} else {
		row := monitoring.InstrumentQueryRow(ctx, r.db, "SELECT", "sales", query, id)
		err = row.Scan(&s.ID, &s.ClientID, &s.ClientName, &s.SaleDate, &s.TotalCents, &s.CreatedAt)
	}

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domainErrors.ErrSaleNotFound
		}
		return nil, err
	}

	items, err := r.getSaleItems(ctx, s.ID)
	if err != nil {
		return nil, err
	}
	s.Items = items

	return &s, nil
}

func (r *SaleRepository) getSaleItems(ctx context.Context, saleID string) ([]sale.Item, error) {
	query := `
		SELECT id, sale_id, product_id, product_name, quantity, price_cents, subtotal_cents
		FROM sale_items
		WHERE sale_id = $1
		ORDER BY position
	`

	var rows *sql.Rows
	var err error

	if r.isTx {
		rows, err = r.tx.QueryContext(ctx, query, saleID)
	} else {
		rows, err = monitoring.InstrumentQuery(ctx, r.db, "SELECT", "sale_items", query, saleID)
	}

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []sale.Item

	for rows.Next() {
		var item sale.Item
		if err := rows.Scan(
			&item.ID, &item.SaleID, &item.ProductID, &item.ProductName,
			&item.Quantity, &item.PriceCents, &item.SubtotalCents,
		); err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

func (r *SaleRepository) ListSales(ctx context.Context, limit, offset int) ([]*sale.Sale, error) {
	query := `
		SELECT s.id, s.client_id, c.name, s.sale_date, s.total_cents, s.created_at
		FROM sales s
		JOIN clients c ON c.id = s.client_id
		ORDER BY s.created_at DESC
		LIMIT $1 OFFSET $2
	`

	var rows *sql.Rows
	var err error

	if r.isTx {
		rows, err = r.tx.QueryContext(ctx, query, limit, offset)
	} else {
		rows, err = monitoring.InstrumentQuery(ctx, r.db, "SELECT", "sales", query, limit, offset)
	}

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sales []*sale.Sale

	for rows.Next() {
		var s sale.Sale
		if err := rows.Scan(&s.ID, &s.ClientID, &s.ClientName, &s.SaleDate, &s.TotalCents, &s.CreatedAt); err != nil {
			return nil, err
		}
		sales = append(sales, &s)
	}

	return sales, rows.Err()
}

// CreateSale writes the sale row and every item row. Inside a unit of work
// it shares the caller's transaction; standalone it opens its own so the
// sale and its items never persist partially.
func (r *SaleRepository) CreateSale(ctx context.Context, s *sale.Sale) error {
	var tx *sql.Tx
	var err error

	if r.isTx {
		tx = r.tx
	} else {
		tx, err = r.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() {
			if err != nil {
				tx.Rollback()
			}
		}()
	}

	saleQuery := `
		INSERT INTO sales (id, client_id, sale_date, total_cents, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err = tx.ExecContext(ctx, saleQuery,
		s.ID, s.ClientID, s.SaleDate, s.TotalCents, s.CreatedAt,
	)
	if err != nil {
		return classifyTxError(err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO sale_items (id, sale_id, product_id, product_name, quantity, price_cents, subtotal_cents, position)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, item := range s.Items {
		_, err = stmt.ExecContext(ctx,
			item.ID, s.ID, item.ProductID, item.ProductName,
			item.Quantity, item.PriceCents, item.SubtotalCents, i,
		)
		if err != nil {
			return classifyTxError(err)
		}
	}

	if !r.isTx {
		return classifyTxError(tx.Commit())
	}

	return nil
}
