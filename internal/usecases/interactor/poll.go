package interactor

import (
	"context"
	"github.com/mufasadev/contribution-reconciler/internal/domain/gateways"
	"github.com/mufasadev/contribution-reconciler/internal/domain/models"
	"github.com/mufasadev/contribution-reconciler/internal/domain/repositories"
	apperrors "github.com/mufasadev/contribution-reconciler/internal/errors"
	"github.com/mufasadev/contribution-reconciler/internal/usecases/dtos"
	"github.com/mufasadev/contribution-reconciler/pkg/log"
	"github.com/rs/zerolog"
	"time"
)

type PollSettings struct {
	BatchSize    int
	MinAge       time.Duration
	ExpireAfter  time.Duration
	LockTTL      time.Duration
	QueryTimeout time.Duration
}

// PollLockKey is the lock key guarding poll runs of a gateway.
func PollLockKey(gateway models.Gateway) string {
	return "reconcile:poll:" + string(gateway)
}

type PollInteractor struct {
	transactionRepository repositories.TransactionRepository
	gateways              gateways.Registry
	core                  *ReconcileInteractor
	reconciler            Reconciler
	lockGuard             *LockGuard
	settings              PollSettings
	now                   func() time.Time
	logger                *zerolog.Logger
}

// NewPollInteractor wires a poll run. reconciler is the retrying wrapper
// around core.
func NewPollInteractor(
	transactionRepository repositories.TransactionRepository,
	registry gateways.Registry,
	core *ReconcileInteractor,
	reconciler Reconciler,
	lockGuard *LockGuard,
	settings PollSettings,
) *PollInteractor {
	return &PollInteractor{
		transactionRepository: transactionRepository,
		gateways:              registry,
		core:                  core,
		reconciler:            reconciler,
		lockGuard:             lockGuard,
		settings:              settings,
		now:                   time.Now,
		logger:                log.Component("poll"),
	}
}

// Execute runs one poll cycle for gateway. A run that finds the lock held
// returns a skipped summary and touches nothing.
func (p *PollInteractor) Execute(ctx context.Context, gateway models.Gateway) (dtos.PollSummary, error) {
	summary := dtos.PollSummary{Gateway: gateway}
	logger := p.logger.With().Str("gateway", string(gateway)).Logger()

	querier, ok := p.gateways.Lookup(gateway)
	if !ok {
		return summary, apperrors.NewBadRequestError(apperrors.ErrUnknownGateway + ": " + string(gateway))
	}

	lease := p.lockGuard.TryAcquire(ctx, PollLockKey(gateway), p.settings.LockTTL)
	if !lease.Proceed() {
		summary.Skipped = true
		logger.Info().Msg("poll already running elsewhere, skipping")
		return summary, nil
	}
	defer p.lockGuard.Release(context.WithoutCancel(ctx), lease)
	summary.LockDegraded = lease.FailOpen

	now := p.now()
	pending, err := p.transactionRepository.ListPending(ctx, gateway, now.Add(-p.settings.MinAge), p.settings.BatchSize)
	if err != nil {
		logger.Error().Err(err).Msg(apperrors.ErrFailedPollTransactions)
		return summary, err
	}
	summary.Total = len(pending)

	changed := make([]string, 0, len(pending))
	for _, tx := range pending {
		txLogger := logger.With().
			Str("transaction_id", tx.ID).
			Str("gateway_transaction_id", tx.GatewayTransactionID).
			Logger()

		if tx.ExpiredAt(now, p.settings.ExpireAfter) {
			result := p.core.Apply(ctx, tx, models.StatusRefused, WithDeferredInvalidation())
			if result.Err != nil {
				summary.Errored++
				continue
			}
			if result.StatusUpdated {
				summary.Expired++
				changed = append(changed, tx.ID)
				txLogger.Info().Dur("age", tx.Age(now)).Msg("pending transaction expired")
			}
			continue
		}

		native, err := queryGateway(ctx, querier, tx, p.settings.QueryTimeout)
		if err != nil {
			summary.Errored++
			txLogger.Warn().Err(err).Msg(apperrors.ErrFailedQueryGateway)
			continue
		}

		status := normalize(&txLogger, gateway, tx.PaymentMethod, native)
		result := p.reconciler.Reconcile(ctx, tx.GatewayTransactionID, status, WithDeferredInvalidation())
		if result.Err != nil {
			summary.Errored++
			continue
		}
		if result.StatusUpdated {
			summary.Updated++
			changed = append(changed, tx.ID)
		}
	}

	if len(changed) > 0 {
		p.core.InvalidateCaches(ctx, changed...)
	}

	logger.Info().
		Int("total", summary.Total).
		Int("updated", summary.Updated).
		Int("expired", summary.Expired).
		Int("errored", summary.Errored).
		Bool("lock_degraded", summary.LockDegraded).
		Msg("poll cycle finished")

	return summary, nil
}

// queryGateway asks querier for the native status of tx within timeout.
func queryGateway(ctx context.Context, querier gateways.StatusQuerier, tx models.Transaction, timeout time.Duration) (models.NativeStatus, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	native, err := querier.QueryStatus(ctx, tx)
	if err != nil {
		return native, apperrors.NewGatewayQueryError(string(tx.Gateway), err)
	}
	return native, nil
}
