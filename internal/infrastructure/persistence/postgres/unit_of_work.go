package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/brenobaldassim/cpsm-service/internal/application/ports"
)

// UnitOfWork opens SERIALIZABLE transactions for the sale commit path, so a
// stock decrement and the sale insert apply together or not at all.
type UnitOfWork struct {
	db *sql.DB
}

func NewUnitOfWork(conn *Connection) *UnitOfWork {
	return &UnitOfWork{db: conn.GetDB()}
}

func (u *UnitOfWork) Begin(ctx context.Context) (ports.UnitOfWorkTx, error) {
	tx, err := u.db.BeginTx(ctx, &sql.TxOptions{
		Isolation: sql.LevelSerializable,
	})
	if err != nil {
		return nil, err
	}

	return &unitOfWorkTx{
		tx:       tx,
		products: &ProductRepository{db: u.db, tx: tx, isTx: true},
		sales:    &SaleRepository{db: u.db, tx: tx, isTx: true},
	}, nil
}

type unitOfWorkTx struct {
	tx       *sql.Tx
	products *ProductRepository
	sales    *SaleRepository
}

func (t *unitOfWorkTx) Products() ports.ProductRepository {
	return t.products
}

func (t *unitOfWorkTx) Sales() ports.SaleRepository {
	return t.sales
}

func (t *unitOfWorkTx) Commit() error {
	return classifyTxError(t.tx.Commit())
}

func (t *unitOfWorkTx) Rollback() error {
	err := t.tx.Rollback()
	if errors.Is(err, sql.ErrTxDone) {
		return nil
	}
	return err
}
