package dtos

import (
	"bytes"
	"encoding/json"
	"fmt"
	"github.com/mufasadev/contribution-reconciler/internal/domain/models"
	"strconv"
	"strings"
)

type WebhookKind int

const (
	WebhookUnrecognized WebhookKind = iota
	WebhookPixBatch
	WebhookBoleto
	WebhookCheckoutSale
)

func (k WebhookKind) String() string {
	switch k {
	case WebhookPixBatch:
		return "pix_batch"
	case WebhookBoleto:
		return "boleto"
	case WebhookCheckoutSale:
		return "checkout_sale"
	default:
		return "unrecognized"
	}
}

// settledPixStatus is implied by a PIX notification without a status: the
// PIX callback is only sent for received payments.
const settledPixStatus = "CONCLUIDA"

// WebhookEvent is one status signal extracted from a payload.
type WebhookEvent struct {
	GatewayTransactionID string
	PaymentMethod        models.PaymentMethod
	Native               models.NativeStatus
}

// Webhook is a parsed payload. Kind is WebhookUnrecognized when the body
// matched none of the known shapes; Events is empty then.
type Webhook struct {
	Gateway models.Gateway
	Kind    WebhookKind
	Events  []WebhookEvent
}

type PixNotification struct {
	TxID       string `json:"txid"`
	EndToEndID string `json:"endToEndId"`
	Valor      string `json:"valor"`
	Horario    string `json:"horario"`
	Status     string `json:"status"`
}

type PixBatchPayload struct {
	Pix []PixNotification `json:"pix"`
}

type BoletoPayload struct {
	NossoNumero string `json:"nossoNumero"`
	Status      string `json:"status"`
}

// StatusCode accepts a JSON number or a numeric string.
type StatusCode int

func (c *StatusCode) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if unquoted, err := strconv.Unquote(raw); err == nil {
		raw = strings.TrimSpace(unquoted)
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("status code %s is not an integer", string(data))
	}
	*c = StatusCode(n)
	return nil
}

type CheckoutSalePayload struct {
	ID            string      `json:"id"`
	Status        *StatusCode `json:"status"`
	PaymentMethod string      `json:"payment_method"`
}

// ParseBankWebhook tries the PIX batch shape, then the boleto shape.
func ParseBankWebhook(body []byte) Webhook {
	hook := Webhook{Gateway: models.GatewayBank}

	if events, ok := parsePixBatch(body); ok {
		hook.Kind = WebhookPixBatch
		hook.Events = events
		return hook
	}
	if event, ok := parseBoleto(body); ok {
		hook.Kind = WebhookBoleto
		hook.Events = []WebhookEvent{event}
		return hook
	}

	return hook
}

// ParseCheckoutWebhook accepts a single sale status notification.
func ParseCheckoutWebhook(body []byte) Webhook {
	hook := Webhook{Gateway: models.GatewayCheckout}

	var p CheckoutSalePayload
	if err := json.Unmarshal(body, &p); err != nil {
		return hook
	}
	id := strings.TrimSpace(p.ID)
	if id == "" || p.Status == nil {
		return hook
	}

	method := models.PaymentMethod(strings.ToLower(strings.TrimSpace(p.PaymentMethod)))
	if method == "" {
		method = models.PaymentMethodCard
	}

	hook.Kind = WebhookCheckoutSale
	hook.Events = []WebhookEvent{{
		GatewayTransactionID: id,
		PaymentMethod:        method,
		Native:               models.CodeStatus(int(*p.Status)),
	}}
	return hook
}

func parsePixBatch(body []byte) ([]WebhookEvent, bool) {
	var p PixBatchPayload
	if err := json.Unmarshal(body, &p); err != nil || len(p.Pix) == 0 {
		return nil, false
	}

	events := make([]WebhookEvent, 0, len(p.Pix))
	for _, n := range p.Pix {
		txid := strings.TrimSpace(n.TxID)
		if txid == "" {
			return nil, false
		}
		status := strings.TrimSpace(n.Status)
		if status == "" {
			status = settledPixStatus
		}
		events = append(events, WebhookEvent{
			GatewayTransactionID: txid,
			PaymentMethod:        models.PaymentMethodPix,
			Native:               models.TextStatus(status),
		})
	}
	return events, true
}

func parseBoleto(body []byte) (WebhookEvent, bool) {
	var p BoletoPayload
	dec := json.NewDecoder(bytes.NewReader(body))
	if err := dec.Decode(&p); err != nil {
		return WebhookEvent{}, false
	}
	nossoNumero := strings.TrimSpace(p.NossoNumero)
	status := strings.TrimSpace(p.Status)
	if nossoNumero == "" || status == "" {
		return WebhookEvent{}, false
	}
	return WebhookEvent{
		GatewayTransactionID: nossoNumero,
		PaymentMethod:        models.PaymentMethodBoleto,
		Native:               models.TextStatus(status),
	}, true
}

// WebhookAck is the body of a 200 webhook response.
type WebhookAck struct {
	Received  bool   `json:"received"`
	Kind      string `json:"kind"`
	Processed int    `json:"processed"`
}
