package database

import (
	"context"
	"fmt"
	"time"

	"github.com/paaavkata/crypto-arbitrage-scanner/pkg/database"
	"github.com/paaavkata/crypto-arbitrage-scanner/pkg/models"
	"github.com/sirupsen/logrus"
)

const (
	priceScale  = 8
	profitScale = 6
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS opportunities (
        id             BIGSERIAL PRIMARY KEY,
        symbol         TEXT NOT NULL,
        buy_exchange   TEXT NOT NULL,
        sell_exchange  TEXT NOT NULL,
        buy_price      NUMERIC(20, 8) NOT NULL,
        sell_price     NUMERIC(20, 8) NOT NULL,
        profit_percent NUMERIC(12, 6) NOT NULL,
        detected_at    TIMESTAMPTZ NOT NULL,
        timestamp      TIMESTAMPTZ NOT NULL DEFAULT NOW()
    )`,
	`CREATE INDEX IF NOT EXISTS idx_opportunities_timestamp ON opportunities (timestamp DESC, id DESC)`,
}

type Repository struct {
	db     *database.DB
	logger *logrus.Logger
}

func NewRepository(db *database.DB, logger *logrus.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}

	r.logger.Info("Opportunities schema is up to date")
	return nil
}

// InsertOpportunity appends opp and fills in the ID and Timestamp assigned by
// the database.
func (r *Repository) InsertOpportunity(ctx context.Context, opp *models.Opportunity) error {
	query := `
        INSERT INTO opportunities (symbol, buy_exchange, sell_exchange, buy_price, sell_price, profit_percent, detected_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id, timestamp
    `

	detectedAt := opp.DetectedAt
	if detectedAt.IsZero() {
		detectedAt = time.Now().UTC()
	}

	err := r.db.QueryRowContext(ctx, query,
		opp.Symbol, opp.BuyExchange, opp.SellExchange,
		database.NewDecimal(opp.BuyPrice, priceScale),
		database.NewDecimal(opp.SellPrice, priceScale),
		database.NewDecimal(opp.ProfitPercent, profitScale),
		detectedAt,
	).Scan(&opp.ID, &opp.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to insert opportunity: %w", err)
	}

	opp.DetectedAt = detectedAt
	return nil
}

// GetRecentOpportunities returns up to limit opportunities, newest first.
func (r *Repository) GetRecentOpportunities(ctx context.Context, limit int) ([]models.Opportunity, error) {
	query := `
        SELECT id, symbol, buy_exchange, sell_exchange, buy_price, sell_price, profit_percent, detected_at, timestamp
        FROM opportunities
        ORDER BY timestamp DESC, id DESC
        LIMIT $1
    `

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent opportunities: %w", err)
	}
	defer rows.Close()

	opportunities := make([]models.Opportunity, 0, limit)
	for rows.Next() {
		var (
			opp                         models.Opportunity
			buyPrice, sellPrice, profit database.Decimal
		)
		if err := rows.Scan(
			&opp.ID, &opp.Symbol, &opp.BuyExchange, &opp.SellExchange,
			&buyPrice, &sellPrice, &profit, &opp.DetectedAt, &opp.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("failed to scan opportunity: %w", err)
		}

		opp.BuyPrice = buyPrice.Float64()
		opp.SellPrice = sellPrice.Float64()
		opp.ProfitPercent = profit.Float64()
		opportunities = append(opportunities, opp)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate opportunities: %w", err)
	}

	return opportunities, nil
}

func (r *Repository) HealthCheck(ctx context.Context) error {
	return r.db.HealthCheck(ctx)
}
