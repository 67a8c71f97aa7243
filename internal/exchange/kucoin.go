package exchange

import (
	"context"
	"fmt"
	"strings"

	"github.com/paaavkata/crypto-arbitrage-scanner/pkg/models"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const (
	KuCoinName     = "kucoin"
	KuCoinEndpoint = "https://api.kucoin.com/api/v1/market/orderbook/level1?symbol={symbol}"

	kucoinSuccessCode = "200000"
)

// Longest quotes first so that e.g. "USDT" wins over "USD".
var kucoinQuoteAssets = []string{"USDT", "USDC", "BUSD", "DAI", "BTC", "ETH", "KCS", "TRX", "USD", "EUR"}

type kucoinResponse struct {
	Code string        `json:"code"`
	Msg  string        `json:"msg"`
	Data *kucoinLevel1 `json:"data"`
}

type kucoinLevel1 struct {
	Sequence string          `json:"sequence"`
	Price    decimal.Decimal `json:"price"`
	Size     decimal.Decimal `json:"size"`
	Time     int64           `json:"time"`
}

type KuCoin struct {
	client   *Client
	endpoint string
	logger   logrus.FieldLogger
}

func NewKuCoin(client *Client, endpoint string, logger logrus.FieldLogger) *KuCoin {
	if endpoint == "" {
		endpoint = KuCoinEndpoint
	}
	return &KuCoin{
		client:   client,
		endpoint: endpoint,
		logger:   logger,
	}
}

func (k *KuCoin) Name() string {
	return KuCoinName
}

func (k *KuCoin) FetchPrice(ctx context.Context, symbol string) (models.PriceQuote, bool) {
	price, err := k.fetch(ctx, symbol)
	if err != nil {
		logFailure(k.logger, KuCoinName, symbol, err)
		return models.PriceQuote{}, false
	}
	return newQuote(KuCoinName, symbol, price), true
}

func (k *KuCoin) fetch(ctx context.Context, symbol string) (float64, error) {
	var resp kucoinResponse
	if err := k.client.getJSON(ctx, expandTemplate(k.endpoint, KuCoinSymbol(symbol)), &resp); err != nil {
		return 0, err
	}

	if resp.Code != kucoinSuccessCode {
		return 0, fmt.Errorf("API error %s: %s", resp.Code, resp.Msg)
	}

	if resp.Data == nil {
		return 0, fmt.Errorf("missing data")
	}

	return positivePrice("data.price", resp.Data.Price)
}

// KuCoinSymbol converts "BTCUSDT" into KuCoin's dashed "BTC-USDT" form.
// Symbols that already contain a dash or have no known quote asset are
// returned unchanged.
func KuCoinSymbol(symbol string) string {
	if strings.Contains(symbol, "-") {
		return symbol
	}
	for _, quote := range kucoinQuoteAssets {
		if len(symbol) > len(quote) && strings.HasSuffix(symbol, quote) {
			return symbol[:len(symbol)-len(quote)] + "-" + quote
		}
	}
	return symbol
}
