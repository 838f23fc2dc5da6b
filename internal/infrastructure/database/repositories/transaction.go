package repositories

import (
	"context"
	"errors"
	"fmt"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mufasadev/contribution-reconciler/internal/domain/models"
	"github.com/mufasadev/contribution-reconciler/internal/domain/repositories"
	"github.com/mufasadev/contribution-reconciler/pkg/log"
	"github.com/mufasadev/contribution-reconciler/pkg/postgresql"
	"github.com/rs/zerolog"
	"time"
)

// maxSerializationRetries bounds re-execution on SQLSTATE 40001.
const maxSerializationRetries = 3

type TransactionRepositoryImpl struct {
	db     postgresql.Client
	logger *zerolog.Logger
}

// NewTransactionRepositoryImpl creates new instance of TransactionRepositoryImpl.
func NewTransactionRepositoryImpl(db postgresql.Client) repositories.TransactionRepository {
	return &TransactionRepositoryImpl{
		db:     db,
		logger: log.Component("transaction_repository"),
	}
}

const selectTransaction = `
SELECT id, gateway, gateway_transaction_id, payment_method, status, amount, created_at, updated_at
FROM transactions`

// GetByGatewayTransactionID returns transaction by gateway transaction id.
func (r *TransactionRepositoryImpl) GetByGatewayTransactionID(ctx context.Context, gatewayTransactionID string) (*models.Transaction, error) {
	return r.getOne(ctx, selectTransaction+" WHERE gateway_transaction_id = $1", gatewayTransactionID)
}

// GetByID returns transaction by id.
func (r *TransactionRepositoryImpl) GetByID(ctx context.Context, id string) (*models.Transaction, error) {
	return r.getOne(ctx, selectTransaction+" WHERE id = $1", id)
}

const listPending = selectTransaction + `
WHERE gateway = $1 AND status = 'pending' AND created_at < $2
ORDER BY created_at
LIMIT $3`

// ListPending returns the oldest pending transactions of a gateway.
func (r *TransactionRepositoryImpl) ListPending(ctx context.Context, gateway models.Gateway, createdBefore time.Time, limit int) ([]models.Transaction, error) {
	rows, err := r.db.Query(ctx, listPending, string(gateway), createdBefore, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending: %w", err)
	}
	defer rows.Close()

	txs := make([]models.Transaction, 0, limit)
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("list pending: %w", err)
		}
		txs = append(txs, *tx)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("list pending: %w", err)
	}

	return txs, nil
}

const updateStatusIfCurrent = `
UPDATE transactions
SET status = $3, updated_at = now()
WHERE id = $1 AND status = $2`

// UpdateStatusIfCurrent is a compare-and-set on the status column. Zero
// affected rows means another writer changed the status first.
func (r *TransactionRepositoryImpl) UpdateStatusIfCurrent(ctx context.Context, id string, expected, next models.Status) (bool, error) {
	var err error
	for attempt := 0; attempt < maxSerializationRetries; attempt++ {
		var tag pgconn.CommandTag
		tag, err = r.db.Exec(ctx, updateStatusIfCurrent, id, string(expected), string(next))
		if err == nil {
			return tag.RowsAffected() == 1, nil
		}

		if !isSerializationError(err) {
			break
		}
		// retry transaction if serialization error occurs (SQLSTATE 40001)
		r.logger.Debug().Err(err).Str("transaction_id", id).Int("attempt", attempt+1).Msg("serialization failure, retrying")
	}

	return false, fmt.Errorf("update status: %w", err)
}

func (r *TransactionRepositoryImpl) getOne(ctx context.Context, query string, args ...interface{}) (*models.Transaction, error) {
	tx, err := scanTransaction(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return tx, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanTransaction(row scanner) (*models.Transaction, error) {
	var (
		tx                             models.Transaction
		gateway, paymentMethod, status string
	)
	err := row.Scan(
		&tx.ID,
		&gateway,
		&tx.GatewayTransactionID,
		&paymentMethod,
		&status,
		&tx.Amount,
		&tx.CreatedAt,
		&tx.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	tx.Gateway = models.Gateway(gateway)
	tx.PaymentMethod = models.PaymentMethod(paymentMethod)
	tx.Status = models.Status(status)
	return &tx, nil
}

func isSerializationError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.SQLState() == repositories.SerializationError
}
