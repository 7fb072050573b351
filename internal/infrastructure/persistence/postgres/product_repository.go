package postgres

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"github.com/brenobaldassim/cpsm-service/internal/domain/catalog"
	domainErrors "github.com/brenobaldassim/cpsm-service/internal/domain/errors"
	"github.com/brenobaldassim/cpsm-service/internal/infrastructure/monitoring"
)

type ProductRepository struct {
	db   *sql.DB
	tx   *sql.Tx
	isTx bool
}

func NewProductRepository(conn *Connection) *ProductRepository {
	return &ProductRepository{
		db:   conn.GetDB(),
		isTx: false,
	}
}

func (r *ProductRepository) GetProductByID(ctx context.Context, id string) (*catalog.Product, error) {
	query := `
		SELECT id, name, price_cents, stock_qty, created_at, updated_at
		FROM products
		WHERE id = $1
	`

	var p catalog.Product
	var err error

	if r.isTx {
		err = r.tx.QueryRowContext(ctx, query, id).Scan(
			&p.ID, &p.Name, &p.PriceCents, &p.StockQty, &p.CreatedAt, &p.UpdatedAt,
		)
	} else {
		row := monitoring.InstrumentQueryRow(ctx, r.db, "SELECT", "products", query, id)
		err = row.Scan(&p.ID, &p.Name, &p.PriceCents, &p.StockQty, &p.CreatedAt, &p.UpdatedAt)
	}

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, &domainErrors.ProductsNotFoundError{MissingIDs: []string{id}}
		}
		return nil, err
	}

	monitoring.SetProductStock(p.ID, p.StockQty)

	return &p, nil
}

func (r *ProductRepository) GetProductsByIDs(ctx context.Context, ids []string) ([]*catalog.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `
		SELECT id, name, price_cents, stock_qty, created_at, updated_at
		FROM products
		WHERE id = ANY($1)
	`

	var rows *sql.Rows
	var err error

	if r.isTx {
		rows, err = r.tx.QueryContext(ctx, query, pq.Array(ids))
	} else {
		rows, err = monitoring.InstrumentQuery(ctx, r.db, "SELECT", "products", query, pq.Array(ids))
	}

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*catalog.Product

	for rows.Next() {
		var p catalog.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.PriceCents, &p.StockQty, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		products = append(products, &p)
	}

	return products, rows.Err()
}

func (r *ProductRepository) ListProducts(ctx context.Context, limit, offset int) ([]*catalog.Product, error) {
	query := `
		SELECT id, name, price_cents, stock_qty, created_at, updated_at
		FROM products
		ORDER BY name
		LIMIT $1 OFFSET $2
	`

	var rows *sql.Rows
	var err error

	if r.isTx {
		rows, err = r.tx.QueryContext(ctx, query, limit, offset)
	} else {
		rows, err = monitoring.InstrumentQuery(ctx, r.db, "SELECT", "products", query, limit, offset)
	}

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*catalog.Product

	for rows.Next() {
		var p catalog.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.PriceCents, &p.StockQty, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		products = append(products, &p)
	}

	return products, rows.Err()
}

func (r *ProductRepository) CreateProduct(ctx context.Context, p *catalog.Product) error {
	query := `
		INSERT INTO products (id, name, price_cents, stock_qty, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	var err error

	if r.isTx {
		_, err = r.tx.ExecContext(ctx, query,
			p.ID, p.Name, p.PriceCents, p.StockQty, p.CreatedAt, p.UpdatedAt,
		)
	} else {
		_, err = monitoring.InstrumentExec(ctx, r.db, "INSERT", "products", query,
			p.ID, p.Name, p.PriceCents, p.StockQty, p.CreatedAt, p.UpdatedAt,
		)
	}

	if err == nil {
		monitoring.SetProductStock(p.ID, p.StockQty)
	}

	return err
}

func (r *ProductRepository) UpdateProduct(ctx context.Context, p *catalog.Product) error {
	query := `
		UPDATE products
		SET name = $2, price_cents = $3, stock_qty = $4, updated_at = NOW()
		WHERE id = $1
	`

	var result sql.Result
	var err error

	if r.isTx {
		result, err = r.tx.ExecContext(ctx, query, p.ID, p.Name, p.PriceCents, p.StockQty)
	} else {
		result, err = monitoring.InstrumentExec(ctx, r.db, "UPDATE", "products", query,
			p.ID, p.Name, p.PriceCents, p.StockQty,
		)
	}

	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return &domainErrors.ProductsNotFoundError{MissingIDs: []string{p.ID}}
	}

	monitoring.SetProductStock(p.ID, p.StockQty)

	return nil
}

// DecrementStock is the commit-time oversell guard: the update only matches
// while stock_qty covers the requested quantity, so concurrent sales of the
// same product serialize on the row and stock can never go negative.
func (r *ProductRepository) DecrementStock(ctx context.Context, id string, qty int) (bool, error) {
	query := `
		UPDATE products
		SET stock_qty = stock_qty - $2, updated_at = NOW()
		WHERE id = $1 AND stock_qty >= $2
		RETURNING stock_qty
	`

	var remaining int
	var err error

	if r.isTx {
		err = r.tx.QueryRowContext(ctx, query, id, qty).Scan(&remaining)
	} else {
		row := monitoring.InstrumentQueryRow(ctx, r.db, "UPDATE", "products", query, id, qty)
		err = row.Scan(&remaining)
	}

	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, classifyTxError(err)
	}

	monitoring.SetProductStock(id, remaining)

	return true, nil
}
