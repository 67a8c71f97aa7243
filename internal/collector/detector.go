package collector

import (
	"github.com/paaavkata/crypto-arbitrage-scanner/pkg/models"
	"github.com/paaavkata/crypto-arbitrage-scanner/pkg/utils"
)

const (
	DefaultProfitThreshold = 0.5
	// MinQuotes is the quorum of exchanges needed to evaluate a spread.
	MinQuotes = 2
)

type Detector struct {
	threshold float64
}

func NewDetector(threshold float64) *Detector {
	return &Detector{threshold: threshold}
}

func (d *Detector) Threshold() float64 {
	return d.threshold
}

// Detect returns the buy-low/sell-high opportunity for the snapshot when its
// spread exceeds the threshold. Exchanges are visited in name order and only a
// strictly better price replaces the current pick, so ties go to the
// lexicographically smallest exchange.
func (d *Detector) Detect(snapshot models.PriceSnapshot) (*models.Opportunity, bool) {
	if snapshot.Len() < MinQuotes {
		return nil, false
	}

	var buy, sell models.PriceQuote
	for i, name := range snapshot.Exchanges() {
		quote := snapshot.Quotes[name]
		if i == 0 {
			buy, sell = quote, quote
			continue
		}
		if quote.Price < buy.Price {
			buy = quote
		}
		if quote.Price > sell.Price {
			sell = quote
		}
	}

	// Every quote carries the same price.
	if buy.Exchange == sell.Exchange {
		return nil, false
	}

	profit := utils.SpreadPercent(buy.Price, sell.Price)
	if profit <= d.threshold {
		return nil, false
	}

	detectedAt := buy.ObservedAt
	if sell.ObservedAt.After(detectedAt) {
		detectedAt = sell.ObservedAt
	}

	return &models.Opportunity{
		Symbol:        snapshot.Symbol,
		BuyExchange:   buy.Exchange,
		SellExchange:  sell.Exchange,
		BuyPrice:      buy.Price,
		SellPrice:     sell.Price,
		ProfitPercent: profit,
		DetectedAt:    detectedAt,
	}, true
}
