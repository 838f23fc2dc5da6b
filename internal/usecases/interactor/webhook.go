package interactor

import (
	"context"
	apperrors "github.com/mufasadev/contribution-reconciler/internal/errors"
	"github.com/mufasadev/contribution-reconciler/internal/usecases/dtos"
	"github.com/mufasadev/contribution-reconciler/pkg/log"
	"github.com/rs/zerolog"
)

type WebhookInteractor struct {
	reconciler Reconciler
	logger     *zerolog.Logger
}

func NewWebhookInteractor(reconciler Reconciler) *WebhookInteractor {
	return &WebhookInteractor{
		reconciler: reconciler,
		logger:     log.Component("webhook"),
	}
}

// Process reconciles every event of hook and returns how many were handled.
// All events are attempted; a *WebhookDeliveryError reports the ones that
// failed.
func (i *WebhookInteractor) Process(ctx context.Context, hook dtos.Webhook) (int, error) {
	logger := i.logger.With().
		Str("gateway", string(hook.Gateway)).
		Str("kind", hook.Kind.String()).
		Logger()

	processed := 0
	var errs []error
	for _, event := range hook.Events {
		status := normalize(&logger, hook.Gateway, event.PaymentMethod, event.Native)
		result := i.reconciler.Reconcile(ctx, event.GatewayTransactionID, status)
		if result.Err != nil {
			logger.Error().Err(result.Err).
				Str("gateway_transaction_id", event.GatewayTransactionID).
				Msg(apperrors.ErrFailedProcessWebhook)
			errs = append(errs, result.Err)
			continue
		}
		processed++
	}

	if len(errs) > 0 {
		return processed, apperrors.NewWebhookDeliveryError(len(errs), len(hook.Events), apperrors.Join(errs...))
	}

	logger.Info().Int("events", processed).Msg("webhook processed")
	return processed, nil
}
