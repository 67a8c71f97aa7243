package exchange

import (
	"context"

	"github.com/paaavkata/crypto-arbitrage-scanner/pkg/models"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const (
	BinanceName     = "binance"
	BinanceEndpoint = "https://api.binance.com/api/v3/ticker/price?symbol={symbol}"
)

type binanceTicker struct {
	Symbol string          `json:"symbol"`
	Price  decimal.Decimal `json:"price"`
}

type Binance struct {
	client   *Client
	endpoint string
	logger   logrus.FieldLogger
}

func NewBinance(client *Client, endpoint string, logger logrus.FieldLogger) *Binance {
	if endpoint == "" {
		endpoint = BinanceEndpoint
	}
	return &Binance{
		client:   client,
		endpoint: endpoint,
		logger:   logger,
	}
}

func (b *Binance) Name() string {
	return BinanceName
}

func (b *Binance) FetchPrice(ctx context.Context, symbol string) (models.PriceQuote, bool) {
	var ticker binanceTicker
	if err := b.client.getJSON(ctx, expandTemplate(b.endpoint, symbol), &ticker); err != nil {
		logFailure(b.logger, BinanceName, symbol, err)
		return models.PriceQuote{}, false
	}

	price, err := positivePrice("price", ticker.Price)
	if err != nil {
		logFailure(b.logger, BinanceName, symbol, err)
		return models.PriceQuote{}, false
	}

	return newQuote(BinanceName, symbol, price), true
}
