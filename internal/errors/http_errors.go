package errors

import (
	"encoding/json"
	"net/http"
)

type HTTPError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// HandleHTTPError handles http errors
func HandleHTTPError(w http.ResponseWriter, err error) {
	httpErr := &HTTPError{
		Code:    http.StatusInternalServerError,
		Message: "Internal server error",
	}

	var (
		badRequest   *BadRequestError
		unauthorized *UnauthorizedError
		notFound     *NotFoundError
		conflict     *ConcurrentWriteConflictError
		gatewayErr   *GatewayQueryError
		notVisible   *TransactionNotVisibleError
		delivery     *WebhookDeliveryError
	)
	switch {
	case As(err, &delivery):
		httpErr = &HTTPError{Code: http.StatusInternalServerError, Message: delivery.Error()}
	case As(err, &badRequest):
		httpErr = &HTTPError{Code: http.StatusBadRequest, Message: badRequest.Error()}
	case As(err, &unauthorized):
		httpErr = &HTTPError{Code: http.StatusUnauthorized, Message: unauthorized.Error()}
	case As(err, &notFound):
		httpErr = &HTTPError{Code: http.StatusNotFound, Message: notFound.Error()}
	case As(err, &conflict):
		httpErr = &HTTPError{Code: http.StatusConflict, Message: conflict.Error()}
	case As(err, &gatewayErr):
		httpErr = &HTTPError{Code: http.StatusBadGateway, Message: gatewayErr.Error()}
	case As(err, &notVisible):
		// 5xx so the webhook sender redelivers later
		httpErr = &HTTPError{Code: http.StatusInternalServerError, Message: notVisible.Error()}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpErr.Code)
	json.NewEncoder(w).Encode(httpErr)
}
