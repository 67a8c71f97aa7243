package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/paaavkata/crypto-arbitrage-scanner/pkg/utils"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const DefaultTimeout = 5 * time.Second

// Client is the HTTP transport shared by all adapters. Requests are never
// retried; a failed fetch is simply missing from the current cycle.
type Client struct {
	client  *resty.Client
	timeout time.Duration
}

func NewClient(timeout time.Duration, logger logrus.FieldLogger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	client := resty.New()
	client.SetTimeout(timeout)
	client.SetRetryCount(0)
	client.SetHeader("Accept", "application/json")
	client.SetLogger(logger)

	return &Client{
		client:  client,
		timeout: timeout,
	}
}

// getJSON issues a GET and decodes a 2xx JSON body into out.
func (c *Client) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.R().SetContext(ctx).Get(endpoint)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	if !resp.IsSuccess() {
		return fmt.Errorf("unexpected status code %d", resp.StatusCode())
	}

	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return nil
}

// expandTemplate substitutes the symbol into an endpoint template. Both
// "{symbol}" and the bare "{}" placeholder are accepted.
func expandTemplate(template, symbol string) string {
	escaped := url.QueryEscape(symbol)
	expanded := strings.ReplaceAll(template, "{symbol}", escaped)
	return strings.ReplaceAll(expanded, "{}", escaped)
}

func positivePrice(field string, value decimal.Decimal) (float64, error) {
	if !value.IsPositive() {
		return 0, fmt.Errorf("missing or non-positive %s %q", field, value.String())
	}
	return utils.DecimalToFloat(value), nil
}
