package gateways

import (
	"context"
	"github.com/mufasadev/contribution-reconciler/internal/domain/models"
)

// StatusQuerier asks a gateway for the current native status of a
// transaction. Errors are transient from the caller's point of view.
type StatusQuerier interface {
	QueryStatus(ctx context.Context, tx models.Transaction) (models.NativeStatus, error)
}

// Registry resolves the querier serving a gateway.
type Registry map[models.Gateway]StatusQuerier

func (r Registry) Lookup(gateway models.Gateway) (StatusQuerier, bool) {
	q, ok := r[gateway]
	return q, ok && q != nil
}
