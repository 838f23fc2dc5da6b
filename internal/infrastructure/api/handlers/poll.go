package handlers

import (
	"context"
	"github.com/go-chi/chi/v5"
	"github.com/mufasadev/contribution-reconciler/internal/domain/models"
	"github.com/mufasadev/contribution-reconciler/internal/errors"
	http2 "github.com/mufasadev/contribution-reconciler/internal/infrastructure/api/http"
	"github.com/mufasadev/contribution-reconciler/internal/usecases/dtos"
	"github.com/mufasadev/contribution-reconciler/pkg/log"
	"github.com/rs/zerolog"
	"net/http"
)

type PollExecutor interface {
	Execute(ctx context.Context, gateway models.Gateway) (dtos.PollSummary, error)
}

type PollHandler struct {
	executor PollExecutor
	logger   *zerolog.Logger
}

func NewPollHandler(executor PollExecutor) *PollHandler {
	return &PollHandler{executor: executor, logger: log.Component("poll_handler")}
}

// Reconcile runs one poll cycle for the gateway in the path. Safe to call
// repeatedly: overlapping calls are skipped by the poll lock.
func (h *PollHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	gateway := models.Gateway(chi.URLParam(r, http2.GatewayParam))
	if _, ok := models.ValidGateways[gateway]; !ok {
		errors.HandleHTTPError(w, errors.NewNotFoundError("gateway", string(gateway)))
		return
	}

	summary, err := h.executor.Execute(context.WithoutCancel(r.Context()), gateway)
	if err != nil {
		h.logger.Error().Err(err).Str("gateway", string(gateway)).Msg(errors.ErrFailedPollTransactions)
		errors.HandleHTTPError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}
