package handlers

import (
	"context"
	"github.com/mufasadev/contribution-reconciler/internal/errors"
	"github.com/mufasadev/contribution-reconciler/internal/usecases/dtos"
	"github.com/mufasadev/contribution-reconciler/pkg/log"
	"github.com/rs/zerolog"
	"io"
	"net/http"
)

const maxWebhookBody = 1 << 20

type WebhookProcessor interface {
	Process(ctx context.Context, hook dtos.Webhook) (int, error)
}

type WebhookHandler struct {
	processor WebhookProcessor
	logger    *zerolog.Logger
}

func NewWebhookHandler(processor WebhookProcessor) *WebhookHandler {
	return &WebhookHandler{processor: processor, logger: log.Component("webhook_handler")}
}

// Bank receives PIX batches and boleto notifications.
func (h *WebhookHandler) Bank(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, dtos.ParseBankWebhook)
}

// Checkout receives sale status notifications.
func (h *WebhookHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, dtos.ParseCheckoutWebhook)
}

func (h *WebhookHandler) handle(w http.ResponseWriter, r *http.Request, parse func([]byte) dtos.Webhook) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		// an oversized or truncated body can never match a payload shape
		h.logger.Warn().Err(err).Int("bytes", len(body)).Msg(errors.ErrFailedDecodeRequestBody)
		writeJSON(w, http.StatusOK, dtos.WebhookAck{Received: true, Kind: dtos.WebhookUnrecognized.String()})
		return
	}

	hook := parse(body)
	if hook.Kind == dtos.WebhookUnrecognized {
		// acknowledged so the sender does not redeliver a payload that never parses
		h.logger.Info().Str("gateway", string(hook.Gateway)).Int("bytes", len(body)).Msg("ignoring unrecognized webhook payload")
		writeJSON(w, http.StatusOK, dtos.WebhookAck{Received: true, Kind: hook.Kind.String()})
		return
	}

	processed, err := h.processor.Process(context.WithoutCancel(r.Context()), hook)
	if err != nil {
		h.logger.Error().Err(err).Str("gateway", string(hook.Gateway)).Msg(errors.ErrFailedProcessWebhook)
		errors.HandleHTTPError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dtos.WebhookAck{Received: true, Kind: hook.Kind.String(), Processed: processed})
}
