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

// ResyncInteractor reconciles one transaction on operator request. It calls
// the core directly: the operator is waiting and can simply retry.
type ResyncInteractor struct {
	transactionRepository repositories.TransactionRepository
	gateways              gateways.Registry
	core                  *ReconcileInteractor
	expireAfter           time.Duration
	queryTimeout          time.Duration
	now                   func() time.Time
	logger                *zerolog.Logger
}

func NewResyncInteractor(
	transactionRepository repositories.TransactionRepository,
	registry gateways.Registry,
	core *ReconcileInteractor,
	expireAfter, queryTimeout time.Duration,
) *ResyncInteractor {
	return &ResyncInteractor{
		transactionRepository: transactionRepository,
		gateways:              registry,
		core:                  core,
		expireAfter:           expireAfter,
		queryTimeout:          queryTimeout,
		now:                   time.Now,
		logger:                log.Component("resync"),
	}
}

func (i *ResyncInteractor) Resync(ctx context.Context, transactionID string) (*dtos.ResyncResult, error) {
	if transactionID == "" {
		return nil, apperrors.NewBadRequestError(apperrors.ErrTransactionIDRequired)
	}

	tx, err := i.transactionRepository.GetByID(ctx, transactionID)
	if err != nil {
		i.logger.Error().Err(err).Str("transaction_id", transactionID).Msg(apperrors.ErrFailedResyncTransaction)
		return nil, err
	}
	if tx == nil {
		return nil, apperrors.NewNotFoundError("transaction", transactionID)
	}

	logger := i.logger.With().
		Str("transaction_id", tx.ID).
		Str("gateway", string(tx.Gateway)).
		Logger()

	out := &dtos.ResyncResult{
		TransactionID: tx.ID,
		OldStatus:     tx.Status,
		NewStatus:     tx.Status,
	}

	if tx.Status == models.StatusRefunded {
		out.Source = dtos.ResyncSourceTerminal
		return out, nil
	}

	var proposed models.Status
	if tx.ExpiredAt(i.now(), i.expireAfter) {
		out.Source = dtos.ResyncSourceExpired
		proposed = models.StatusRefused
	} else {
		querier, ok := i.gateways.Lookup(tx.Gateway)
		if !ok {
			return nil, apperrors.NewBadRequestError(apperrors.ErrUnknownGateway + ": " + string(tx.Gateway))
		}

		native, err := queryGateway(ctx, querier, *tx, i.queryTimeout)
		if err != nil {
			logger.Warn().Err(err).Msg(apperrors.ErrFailedQueryGateway)
			return nil, err
		}
		out.Source = dtos.ResyncSourceGateway
		out.NativeStatus = native.String()
		proposed = normalize(&logger, tx.Gateway, tx.PaymentMethod, native)
	}

	result := i.core.Apply(ctx, *tx, proposed)
	if result.Err != nil {
		logger.Error().Err(result.Err).Msg(apperrors.ErrFailedResyncTransaction)
		return nil, result.Err
	}

	out.OldStatus = result.PreviousStatus
	out.NewStatus = result.FinalStatus
	out.Updated = result.StatusUpdated
	return out, nil
}
