package repositories

import (
	"context"
	"github.com/mufasadev/contribution-reconciler/internal/domain/models"
	"time"
)

const (
	SerializationError = "40001"
)

type TransactionRepository interface {
	// GetByGatewayTransactionID returns nil, nil when no row matches.
	GetByGatewayTransactionID(ctx context.Context, gatewayTransactionID string) (*models.Transaction, error)
	// GetByID returns nil, nil when no row matches.
	GetByID(ctx context.Context, id string) (*models.Transaction, error)
	// ListPending returns pending transactions of gateway created before
	// createdBefore, oldest first, at most limit rows.
	ListPending(ctx context.Context, gateway models.Gateway, createdBefore time.Time, limit int) ([]models.Transaction, error)
	// UpdateStatusIfCurrent sets next only while the stored status still
	// equals expected. It reports whether the row was changed.
	UpdateStatusIfCurrent(ctx context.Context, id string, expected, next models.Status) (bool, error)
}
