package exchange

import (
	"context"
	"fmt"

	"github.com/paaavkata/crypto-arbitrage-scanner/pkg/models"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const (
	BybitName     = "bybit"
	BybitEndpoint = "https://api.bybit.com/v2/public/tickers?symbol={symbol}"
)

type bybitResponse struct {
	RetCode int           `json:"ret_code"`
	RetMsg  string        `json:"ret_msg"`
	Result  []bybitTicker `json:"result"`
}

type bybitTicker struct {
	Symbol    string          `json:"symbol"`
	LastPrice decimal.Decimal `json:"last_price"`
}

type Bybit struct {
	client   *Client
	endpoint string
	logger   logrus.FieldLogger
}

func NewBybit(client *Client, endpoint string, logger logrus.FieldLogger) *Bybit {
	if endpoint == "" {
		endpoint = BybitEndpoint
	}
	return &Bybit{
		client:   client,
		endpoint: endpoint,
		logger:   logger,
	}
}

func (b *Bybit) Name() string {
	return BybitName
}

func (b *Bybit) FetchPrice(ctx context.Context, symbol string) (models.PriceQuote, bool) {
	price, err := b.fetch(ctx, symbol)
	if err != nil {
		logFailure(b.logger, BybitName, symbol, err)
		return models.PriceQuote{}, false
	}
	return newQuote(BybitName, symbol, price), true
}

func (b *Bybit) fetch(ctx context.Context, symbol string) (float64, error) {
	var resp bybitResponse
	if err := b.client.getJSON(ctx, expandTemplate(b.endpoint, symbol), &resp); err != nil {
		return 0, err
	}

	if resp.RetCode != 0 {
		return 0, fmt.Errorf("API error %d: %s", resp.RetCode, resp.RetMsg)
	}

	if len(resp.Result) == 0 {
		return 0, fmt.Errorf("empty result")
	}

	return positivePrice("result[0].last_price", resp.Result[0].LastPrice)
}
