package handlers

import (
	"context"
	"github.com/go-chi/chi/v5"
	"github.com/mufasadev/contribution-reconciler/internal/errors"
	http2 "github.com/mufasadev/contribution-reconciler/internal/infrastructure/api/http"
	"github.com/mufasadev/contribution-reconciler/internal/usecases/dtos"
	"github.com/mufasadev/contribution-reconciler/pkg/log"
	"github.com/rs/zerolog"
	"net/http"
)

type Resyncer interface {
	Resync(ctx context.Context, transactionID string) (*dtos.ResyncResult, error)
}

type ResyncHandler struct {
	resyncer Resyncer
	logger   *zerolog.Logger
}

func NewResyncHandler(resyncer Resyncer) *ResyncHandler {
	return &ResyncHandler{resyncer: resyncer, logger: log.Component("resync_handler")}
}

func (h *ResyncHandler) Resync(w http.ResponseWriter, r *http.Request) {
	transactionID := chi.URLParam(r, http2.TransactionIDParam)
	if transactionID == "" {
		errors.HandleHTTPError(w, errors.NewBadRequestError(errors.ErrTransactionIDRequired))
		return
	}

	result, err := h.resyncer.Resync(context.WithoutCancel(r.Context()), transactionID)
	if err != nil {
		h.logger.Error().Err(err).Str("transaction_id", transactionID).Msg(errors.ErrFailedResyncTransaction)
		errors.HandleHTTPError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
