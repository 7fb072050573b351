package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/lib/pq"

	domainErrors "github.com/brenobaldassim/cpsm-service/internal/domain/errors"
	"github.com/brenobaldassim/cpsm-service/internal/infrastructure/monitoring"
)

const (
	sqlstateSerializationFailure = "40001"
	sqlstateDeadlockDetected     = "40P01"
)

// classifyTxError maps driver-level transient conflicts (serialization
// failures under SERIALIZABLE, deadlocks) onto ErrTransactionConflict so
// the engine can retry them. Everything else passes through unchanged.
func classifyTxError(err error) error {
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if string(pqErr.Code) == sqlstateSerializationFailure || string(pqErr.Code) == sqlstateDeadlockDetected {
			monitoring.RecordCommitRetry()
			return fmt.Errorf("%w: %v", domainErrors.ErrTransactionConflict, err)
		}
	}

	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		if pgxErr.Code == sqlstateSerializationFailure || pgxErr.Code == sqlstateDeadlockDetected {
			monitoring.RecordCommitRetry()
			return fmt.Errorf("%w: %v", domainErrors.ErrTransactionConflict, err)
		}
	}

	return err
}
