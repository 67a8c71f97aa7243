package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/paaavkata/crypto-arbitrage-scanner/pkg/models"
	"github.com/paaavkata/crypto-arbitrage-scanner/pkg/utils"
	"github.com/sirupsen/logrus"
)

// OpportunityStore is the append-only sink for detected opportunities. The
// store assigns ID and Timestamp on insert.
type OpportunityStore interface {
	InsertOpportunity(ctx context.Context, opp *models.Opportunity) error
}

type Processor struct {
	store  OpportunityStore
	logger *logrus.Logger
}

func NewProcessor(store OpportunityStore, logger *logrus.Logger) *Processor {
	return &Processor{
		store:  store,
		logger: logger,
	}
}

// Record persists opp and returns the identity assigned by the store. On
// success opp carries the stored ID and Timestamp.
func (p *Processor) Record(ctx context.Context, opp *models.Opportunity) (int64, error) {
	start := time.Now()

	// Prices are NUMERIC(20,8), profit NUMERIC(12,6)
	opp.BuyPrice = utils.NormalizeDecimal(opp.BuyPrice, 20, 8)
	opp.SellPrice = utils.NormalizeDecimal(opp.SellPrice, 20, 8)
	opp.ProfitPercent = utils.NormalizeDecimal(opp.ProfitPercent, 12, 6)

	if err := p.store.InsertOpportunity(ctx, opp); err != nil {
		p.logger.WithError(err).WithFields(logrus.Fields{
			"symbol":        opp.Symbol,
			"buy_exchange":  opp.BuyExchange,
			"sell_exchange": opp.SellExchange,
		}).Error("Failed to record opportunity")
		return 0, fmt.Errorf("failed to record opportunity for %s: %w", opp.Symbol, err)
	}

	p.logger.WithFields(logrus.Fields{
		"id":             opp.ID,
		"symbol":         opp.Symbol,
		"buy_exchange":   opp.BuyExchange,
		"sell_exchange":  opp.SellExchange,
		"buy_price":      opp.BuyPrice,
		"sell_price":     opp.SellPrice,
		"profit_percent": opp.ProfitPercent,
		"duration_ms":    time.Since(start).Milliseconds(),
	}).Info("Recorded arbitrage opportunity")

	return opp.ID, nil
}
