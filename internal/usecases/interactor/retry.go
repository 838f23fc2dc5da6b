package interactor

import (
	"context"
	"github.com/mufasadev/contribution-reconciler/internal/domain/models"
	apperrors "github.com/mufasadev/contribution-reconciler/internal/errors"
	"github.com/mufasadev/contribution-reconciler/internal/usecases/dtos"
	"github.com/mufasadev/contribution-reconciler/pkg/log"
	"github.com/mufasadev/contribution-reconciler/pkg/util/repeat"
	"github.com/rs/zerolog"
)

// RetryInteractor retries a Reconciler while the transaction is not visible
// yet. Every other outcome is returned as is.
type RetryInteractor struct {
	next   Reconciler
	policy repeat.Policy
	logger *zerolog.Logger
}

func NewRetryInteractor(next Reconciler, policy repeat.Policy) *RetryInteractor {
	return &RetryInteractor{
		next:   next,
		policy: policy,
		logger: log.Component("retry"),
	}
}

func (r *RetryInteractor) Reconcile(ctx context.Context, gatewayTransactionID string, proposed models.Status, opts ...ReconcileOption) dtos.ReconcileResult {
	var result dtos.ReconcileResult

	err := repeat.Backoff(ctx, r.policy, func(attempt int) bool {
		result = r.next.Reconcile(ctx, gatewayTransactionID, proposed, opts...)
		if result.TransactionFound || result.Err != nil {
			return false
		}
		r.logger.Debug().
			Str("gateway_transaction_id", gatewayTransactionID).
			Int("attempt", attempt).
			Dur("next_delay", r.policy.Delay(attempt)).
			Msg("transaction not visible yet")
		return true
	})

	switch {
	case err == nil:
	case apperrors.Is(err, repeat.ErrAttemptsExhausted):
		result.Err = apperrors.NewTransactionNotVisibleError(gatewayTransactionID)
		r.logger.Warn().
			Str("gateway_transaction_id", gatewayTransactionID).
			Int("attempts", r.policy.MaxAttempts).
			Msg(result.Err.Error())
	default:
		result.Err = err
	}

	return result
}
