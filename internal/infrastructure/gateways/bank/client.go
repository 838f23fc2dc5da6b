package bank

import (
	"context"
	"fmt"
	"github.com/go-resty/resty/v2"
	"github.com/mufasadev/contribution-reconciler/internal/config"
	"github.com/mufasadev/contribution-reconciler/internal/domain/gateways"
	"github.com/mufasadev/contribution-reconciler/internal/domain/models"
	"strings"
	"time"
)

const (
	pixChargePath = "/v2/cob/{id}"
	boletoPath    = "/v2/boletos/{id}"
)

// statusResponse covers both the PIX charge and the boleto lookup bodies.
type statusResponse struct {
	Status   string `json:"status"`
	Situacao string `json:"situacao"`
}

var _ gateways.StatusQuerier = (*Client)(nil)

// Client queries gateway A: PIX charges by txid and boletos by nossoNumero.
type Client struct {
	http *resty.Client
}

func NewClient(cfg config.BankGateway, timeout time.Duration) *Client {
	http := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	if cfg.ClientID != "" {
		http.SetBasicAuth(cfg.ClientID, cfg.ClientSecret)
	}
	return &Client{http: http}
}

func (c *Client) QueryStatus(ctx context.Context, tx models.Transaction) (models.NativeStatus, error) {
	var path string
	switch tx.PaymentMethod {
	case models.PaymentMethodPix:
		path = pixChargePath
	case models.PaymentMethodBoleto:
		path = boletoPath
	default:
		return models.NativeStatus{}, fmt.Errorf("bank gateway does not serve payment method %q", tx.PaymentMethod)
	}
	if tx.GatewayTransactionID == "" {
		return models.NativeStatus{}, fmt.Errorf("transaction %s has no gateway transaction id", tx.ID)
	}

	var body statusResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("id", tx.GatewayTransactionID).
		SetResult(&body).
		Get(path)
	if err != nil {
		return models.NativeStatus{}, err
	}
	if resp.IsError() {
		return models.NativeStatus{}, fmt.Errorf("GET %s: %s", resp.Request.URL, resp.Status())
	}

	status := body.Status
	if status == "" {
		status = body.Situacao
	}
	if status == "" {
		return models.NativeStatus{}, fmt.Errorf("GET %s: response has no status", resp.Request.URL)
	}

	return models.TextStatus(status), nil
}
