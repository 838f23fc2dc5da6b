package interactor

import (
	"context"
	"fmt"
	"github.com/mufasadev/contribution-reconciler/internal/domain/models"
	"github.com/mufasadev/contribution-reconciler/internal/domain/repositories"
	apperrors "github.com/mufasadev/contribution-reconciler/internal/errors"
	"github.com/mufasadev/contribution-reconciler/internal/usecases/dtos"
	"github.com/mufasadev/contribution-reconciler/pkg/log"
	"github.com/rs/zerolog"
)

// Reconciler applies a proposed canonical status to the transaction found by
// its gateway transaction id.
type Reconciler interface {
	Reconcile(ctx context.Context, gatewayTransactionID string, proposed models.Status, opts ...ReconcileOption) dtos.ReconcileResult
}

type reconcileOptions struct {
	deferInvalidation bool
}

type ReconcileOption func(*reconcileOptions)

// WithDeferredInvalidation leaves cache invalidation to the caller, which is
// expected to call InvalidateCaches once for a whole batch.
func WithDeferredInvalidation() ReconcileOption {
	return func(o *reconcileOptions) {
		o.deferInvalidation = true
	}
}

// conflictRetries is how many times a lost conditional update is re-read and
// re-evaluated before giving up.
const conflictRetries = 1

type ReconcileInteractor struct {
	transactionRepository repositories.TransactionRepository
	cacheInvalidator      repositories.CacheInvalidator
	invalidatePatterns    []string
	logger                *zerolog.Logger
}

func NewReconcileInteractor(transactionRepository repositories.TransactionRepository, cacheInvalidator repositories.CacheInvalidator, invalidatePatterns []string) *ReconcileInteractor {
	return &ReconcileInteractor{
		transactionRepository: transactionRepository,
		cacheInvalidator:      cacheInvalidator,
		invalidatePatterns:    invalidatePatterns,
		logger:                log.Component("reconcile"),
	}
}

// Reconcile never loops on a missing transaction; it reports
// TransactionFound=false and leaves retrying to the caller.
func (i *ReconcileInteractor) Reconcile(ctx context.Context, gatewayTransactionID string, proposed models.Status, opts ...ReconcileOption) dtos.ReconcileResult {
	tx, err := i.transactionRepository.GetByGatewayTransactionID(ctx, gatewayTransactionID)
	if err != nil {
		i.logger.Error().Err(err).
			Str("gateway_transaction_id", gatewayTransactionID).
			Msg(apperrors.ErrFailedReconcileTransaction)
		return dtos.ReconcileResult{Err: err}
	}
	if tx == nil {
		i.logger.Debug().Str("gateway_transaction_id", gatewayTransactionID).Msg("transaction not visible")
		return dtos.ReconcileResult{}
	}

	return i.Apply(ctx, *tx, proposed, opts...)
}

// Apply validates and applies proposed against tx, a snapshot read by the
// caller. A lost conditional update is re-read and re-evaluated once.
func (i *ReconcileInteractor) Apply(ctx context.Context, tx models.Transaction, proposed models.Status, opts ...ReconcileOption) dtos.ReconcileResult {
	var o reconcileOptions
	for _, opt := range opts {
		opt(&o)
	}

	result := dtos.ReconcileResult{TransactionFound: true, TransactionID: tx.ID}
	logger := i.logger.With().
		Str("transaction_id", tx.ID).
		Str("gateway_transaction_id", tx.GatewayTransactionID).
		Str("to", string(proposed)).
		Logger()

	if _, ok := models.ValidStatuses[proposed]; !ok {
		result.Err = apperrors.NewBadRequestError(fmt.Sprintf("unknown status %q", proposed))
		return result
	}

	for attempt := 0; ; attempt++ {
		result.PreviousStatus = tx.Status
		result.FinalStatus = tx.Status
		result.Decision = models.EvaluateTransition(tx.Status, proposed)

		switch result.Decision {
		case models.TransitionNoop:
			result.Success = true
			return result
		case models.TransitionIllegal:
			logger.Info().Str("from", string(tx.Status)).Msg("ignoring stale status signal")
			result.Success = true
			return result
		}

		applied, err := i.transactionRepository.UpdateStatusIfCurrent(ctx, tx.ID, tx.Status, proposed)
		if err != nil {
			logger.Error().Err(err).Msg(apperrors.ErrFailedReconcileTransaction)
			result.Err = err
			return result
		}
		if applied {
			result.Success = true
			result.StatusUpdated = true
			result.FinalStatus = proposed
			logger.Info().Str("from", string(tx.Status)).Msg("transaction status updated")
			if !o.deferInvalidation {
				i.InvalidateCaches(ctx, tx.ID)
			}
			return result
		}

		if attempt >= conflictRetries {
			break
		}

		logger.Debug().Str("expected", string(tx.Status)).Msg("conditional update lost, re-reading")
		current, err := i.transactionRepository.GetByID(ctx, tx.ID)
		if err != nil {
			logger.Error().Err(err).Msg(apperrors.ErrFailedReconcileTransaction)
			result.Err = err
			return result
		}
		if current == nil {
			result.Err = apperrors.NewNotFoundError("transaction", tx.ID)
			return result
		}
		tx = *current
	}

	result.Err = apperrors.NewConcurrentWriteConflictError(tx.ID)
	logger.Warn().Err(result.Err).Msg(apperrors.ErrFailedReconcileTransaction)
	return result
}

// InvalidateCaches drops the configured read models and the records of the
// given transactions. Failures are logged only: the status change it follows
// has already been committed.
func (i *ReconcileInteractor) InvalidateCaches(ctx context.Context, transactionIDs ...string) {
	if i.cacheInvalidator == nil {
		return
	}

	targets := make([]string, 0, len(i.invalidatePatterns)+len(transactionIDs))
	targets = append(targets, i.invalidatePatterns...)
	for _, id := range transactionIDs {
		targets = append(targets, CacheKey(id))
	}
	if len(targets) == 0 {
		return
	}

	if err := i.cacheInvalidator.Invalidate(ctx, targets...); err != nil {
		i.logger.Warn().Err(err).Strs("targets", targets).Msg(apperrors.ErrFailedInvalidateCache)
	}
}

// CacheKey is the cache key of a single transaction record.
func CacheKey(transactionID string) string {
	return "transaction:" + transactionID
}

// normalize maps a native status and logs values missing from the tables.
func normalize(logger *zerolog.Logger, gateway models.Gateway, method models.PaymentMethod, native models.NativeStatus) models.Status {
	status, recognized := models.Normalize(gateway, method, native)
	if !recognized {
		logger.Warn().
			Str("gateway", string(gateway)).
			Str("payment_method", string(method)).
			Str("native_status", native.String()).
			Msg("unrecognized gateway status, treating as pending")
	}
	return status
}
