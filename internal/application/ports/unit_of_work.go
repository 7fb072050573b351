package ports

import "context"

// UnitOfWork opens a transaction scope in which stock decrements and the
// sale insert either all apply or none do.
type UnitOfWork interface {
	Begin(ctx context.Context) (UnitOfWorkTx, error)
}

// UnitOfWorkTx exposes transaction-scoped repositories. Rollback after a
// successful Commit must be a no-op so callers can defer it.
type UnitOfWorkTx interface {
	Products() ProductRepository
	Sales() SaleRepository
	Commit() error
	Rollback() error
}
