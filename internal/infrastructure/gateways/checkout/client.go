package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"github.com/go-resty/resty/v2"
	"github.com/mufasadev/contribution-reconciler/internal/config"
	"github.com/mufasadev/contribution-reconciler/internal/domain/gateways"
	"github.com/mufasadev/contribution-reconciler/internal/domain/models"
	"strconv"
	"strings"
	"time"
)

const salePath = "/api/v1/sales/{id}"

type saleResponse struct {
	ID     string          `json:"id"`
	Status json.RawMessage `json:"status"`
}

var _ gateways.StatusQuerier = (*Client)(nil)

// Client queries gateway B, which reports integer sale statuses.
type Client struct {
	http *resty.Client
}

func NewClient(cfg config.CheckoutGateway, timeout time.Duration) *Client {
	http := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	if cfg.APIKey != "" {
		http.SetAuthToken(cfg.APIKey)
	}
	return &Client{http: http}
}

func (c *Client) QueryStatus(ctx context.Context, tx models.Transaction) (models.NativeStatus, error) {
	if tx.GatewayTransactionID == "" {
		return models.NativeStatus{}, fmt.Errorf("transaction %s has no gateway transaction id", tx.ID)
	}

	var body saleResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("id", tx.GatewayTransactionID).
		SetResult(&body).
		Get(salePath)
	if err != nil {
		return models.NativeStatus{}, err
	}
	if resp.IsError() {
		return models.NativeStatus{}, fmt.Errorf("GET %s: %s", resp.Request.URL, resp.Status())
	}

	raw := bytes.TrimSpace(body.Status)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return models.NativeStatus{}, fmt.Errorf("GET %s: response has no status", resp.Request.URL)
	}

	return parseStatus(raw), nil
}

// parseStatus keeps non numeric values as text so they normalize as
// unrecognized instead of failing the query.
func parseStatus(raw []byte) models.NativeStatus {
	text := string(raw)
	if unquoted, err := strconv.Unquote(text); err == nil {
		text = unquoted
	}
	text = strings.TrimSpace(text)
	if code, err := strconv.Atoi(text); err == nil {
		return models.CodeStatus(code)
	}
	return models.TextStatus(text)
}
