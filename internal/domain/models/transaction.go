package models

import (
	"github.com/shopspring/decimal"
	"time"
)

type Gateway string

const (
	GatewayBank     Gateway = "bank"
	GatewayCheckout Gateway = "checkout"
)

var ValidGateways = map[Gateway]struct{}{
	GatewayBank:     {},
	GatewayCheckout: {},
}

type PaymentMethod string

const (
	PaymentMethodPix    PaymentMethod = "pix"
	PaymentMethodBoleto PaymentMethod = "boleto"
	PaymentMethodCard   PaymentMethod = "card"
)

// Transaction is a contribution as stored by the transaction store.
// GatewayTransactionID is the reconciliation lookup key.
type Transaction struct {
	ID                   string          `db:"id"`
	Gateway              Gateway         `db:"gateway"`
	GatewayTransactionID string          `db:"gateway_transaction_id"`
	PaymentMethod        PaymentMethod   `db:"payment_method"`
	Status               Status          `db:"status"`
	Amount               decimal.Decimal `db:"amount"`
	CreatedAt            time.Time       `db:"created_at"`
	UpdatedAt            time.Time       `db:"updated_at"`
}

// Age returns how long the transaction has existed at now.
func (t Transaction) Age(now time.Time) time.Duration {
	return now.Sub(t.CreatedAt)
}

// ExpiredAt reports whether a pending transaction has outlived threshold.
func (t Transaction) ExpiredAt(now time.Time, threshold time.Duration) bool {
	return t.Status == StatusPending && threshold > 0 && t.Age(now) > threshold
}
