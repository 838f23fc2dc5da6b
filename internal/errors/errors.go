package errors

import (
	"errors"
	"fmt"
)

const (
	ErrorFailedToConnectToTheDatabase = "Failed to connect to the database"
	ErrorFailedToConnectToRedis       = "Failed to connect to redis"
	ErrorFailedToRunMigrations        = "Failed to run database migrations"
	ErrorInvalidConfiguration         = "Invalid configuration"
	ErrorFailedToRunTheServer         = "Failed to run the server"
	ErrorFailedToShutdownTheServer    = "Failed to shutdown the server"
	ErrFailedDecodeRequestBody        = "Failed to decode request body"
	ErrFailedReconcileTransaction     = "Failed to reconcile transaction"
	ErrFailedPollTransactions         = "Failed to poll pending transactions"
	ErrFailedResyncTransaction        = "Failed to resync transaction"
	ErrFailedProcessWebhook           = "Failed to process webhook"
	ErrFailedInvalidateCache          = "Failed to invalidate cache"
	ErrFailedQueryGateway             = "Failed to query gateway"
	ErrLockUnavailable                = "Lock store unavailable, running without mutual exclusion"
	ErrFailedReleaseLock              = "Failed to release lock"
	ErrMissingBearerToken             = "Bearer token is required"
	ErrInvalidBearerToken             = "Invalid bearer token"
	ErrUnknownGateway                 = "Unknown gateway"
	ErrTransactionIDRequired          = "Transaction ID is required"
)

type BadRequestError struct {
	Message string
}

func NewBadRequestError(message string) *BadRequestError {
	return &BadRequestError{Message: message}
}

func (e *BadRequestError) Error() string {
	return fmt.Sprintf("Bad request: %s", e.Message)
}

type UnauthorizedError struct {
	Message string
}

func NewUnauthorizedError(message string) *UnauthorizedError {
	return &UnauthorizedError{Message: message}
}

func (e *UnauthorizedError) Error() string {
	return fmt.Sprintf("Unauthorized: %s", e.Message)
}

type NotFoundError struct {
	Resource string
	ID       string
}

func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// TransactionNotVisibleError means the reconciliation key did not resolve to
// a transaction, possibly because the creating write is not visible yet.
type TransactionNotVisibleError struct {
	GatewayTransactionID string
}

func NewTransactionNotVisibleError(gatewayTransactionID string) *TransactionNotVisibleError {
	return &TransactionNotVisibleError{GatewayTransactionID: gatewayTransactionID}
}

func (e *TransactionNotVisibleError) Error() string {
	return fmt.Sprintf("transaction with gateway id %s not found", e.GatewayTransactionID)
}

// ConcurrentWriteConflictError means a conditional status update lost the race
// twice in a row.
type ConcurrentWriteConflictError struct {
	TransactionID string
}

func NewConcurrentWriteConflictError(transactionID string) *ConcurrentWriteConflictError {
	return &ConcurrentWriteConflictError{TransactionID: transactionID}
}

func (e *ConcurrentWriteConflictError) Error() string {
	return fmt.Sprintf("transaction %s was modified concurrently", e.TransactionID)
}

// GatewayQueryError wraps a failed status query against a gateway.
type GatewayQueryError struct {
	Gateway string
	Err     error
}

func NewGatewayQueryError(gateway string, err error) *GatewayQueryError {
	return &GatewayQueryError{Gateway: gateway, Err: err}
}

func (e *GatewayQueryError) Error() string {
	return fmt.Sprintf("gateway %s query failed: %v", e.Gateway, e.Err)
}

func (e *GatewayQueryError) Unwrap() error {
	return e.Err
}

// WebhookDeliveryError means at least one event of a webhook payload was not
// handled. It always maps to a 5xx so the sender redelivers the payload.
type WebhookDeliveryError struct {
	Failed int
	Total  int
	Err    error
}

func NewWebhookDeliveryError(failed, total int, err error) *WebhookDeliveryError {
	return &WebhookDeliveryError{Failed: failed, Total: total, Err: err}
}

func (e *WebhookDeliveryError) Error() string {
	return fmt.Sprintf("%d of %d webhook events failed: %v", e.Failed, e.Total, e.Err)
}

func (e *WebhookDeliveryError) Unwrap() error {
	return e.Err
}

func Is(err, target error) bool {
	return errors.Is(err, target)
}

func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

func Join(errs ...error) error {
	return errors.Join(errs...)
}
