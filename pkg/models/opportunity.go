package models

import (
	"sort"
	"time"

	"github.com/paaavkata/crypto-arbitrage-scanner/pkg/utils"
)

type PriceQuote struct {
	Exchange   string    `json:"exchange"`
	Symbol     string    `json:"symbol"`
	Price      float64   `json:"price"`
	ObservedAt time.Time `json:"observed_at"`
}

// PriceSnapshot holds the quotes gathered for one symbol during one scan
// cycle, keyed by exchange name.
type PriceSnapshot struct {
	Symbol string
	Quotes map[string]PriceQuote
}

func NewPriceSnapshot(symbol string) PriceSnapshot {
	return PriceSnapshot{
		Symbol: symbol,
		Quotes: make(map[string]PriceQuote),
	}
}

func (s PriceSnapshot) Len() int {
	return len(s.Quotes)
}

// Exchanges returns the exchange names present in the snapshot in
// lexicographic order.
func (s PriceSnapshot) Exchanges() []string {
	names := make([]string, 0, len(s.Quotes))
	for name := range s.Quotes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type Opportunity struct {
	ID            int64     `db:"id"`
	Symbol        string    `db:"symbol"`
	BuyExchange   string    `db:"buy_exchange"`
	SellExchange  string    `db:"sell_exchange"`
	BuyPrice      float64   `db:"buy_price"`
	SellPrice     float64   `db:"sell_price"`
	ProfitPercent float64   `db:"profit_percent"`
	DetectedAt    time.Time `db:"detected_at"`
	Timestamp     time.Time `db:"timestamp"`
}

// OpportunityResponse is the public JSON shape of a stored opportunity.
type OpportunityResponse struct {
	Symbol        string    `json:"symbol"`
	BuyExchange   string    `json:"buy_exchange"`
	SellExchange  string    `json:"sell_exchange"`
	BuyPrice      float64   `json:"buy_price"`
	SellPrice     float64   `json:"sell_price"`
	ProfitPercent float64   `json:"profit_percent"`
	Timestamp     time.Time `json:"timestamp"`
}

// Response converts a stored opportunity into its public shape with the
// profit rounded to two decimals.
func (o Opportunity) Response() OpportunityResponse {
	return OpportunityResponse{
		Symbol:        o.Symbol,
		BuyExchange:   o.BuyExchange,
		SellExchange:  o.SellExchange,
		BuyPrice:      o.BuyPrice,
		SellPrice:     o.SellPrice,
		ProfitPercent: utils.RoundHalfUp(o.ProfitPercent, 2),
		Timestamp:     o.Timestamp,
	}
}

func NewOpportunityResponses(opportunities []Opportunity) []OpportunityResponse {
	out := make([]OpportunityResponse, 0, len(opportunities))
	for _, o := range opportunities {
		out = append(out, o.Response())
	}
	return out
}
