package dtos

import "github.com/mufasadev/contribution-reconciler/internal/domain/models"

// ReconcileResult is the outcome of applying one proposed status.
type ReconcileResult struct {
	TransactionFound bool
	Success          bool
	StatusUpdated    bool
	TransactionID    string
	PreviousStatus   models.Status
	FinalStatus      models.Status
	Decision         models.TransitionDecision
	Err              error
}

// PollSummary is returned by the cron trigger.
type PollSummary struct {
	Gateway      models.Gateway `json:"gateway"`
	Total        int            `json:"total"`
	Updated      int            `json:"updated"`
	Expired      int            `json:"expired"`
	Errored      int            `json:"errored"`
	Skipped      bool           `json:"skipped"`
	LockDegraded bool           `json:"lockDegraded"`
}

const (
	ResyncSourceGateway  = "gateway"
	ResyncSourceExpired  = "expired"
	ResyncSourceTerminal = "terminal"
)

// ResyncResult is returned by the manual resync endpoint.
type ResyncResult struct {
	TransactionID string        `json:"transactionId"`
	OldStatus     models.Status `json:"oldStatus"`
	NewStatus     models.Status `json:"newStatus"`
	Updated       bool          `json:"updated"`
	Source        string        `json:"source"`
	NativeStatus  string        `json:"nativeStatus,omitempty"`
}
