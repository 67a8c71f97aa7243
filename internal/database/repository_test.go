package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/paaavkata/crypto-arbitrage-scanner/pkg/database"
	"github.com/paaavkata/crypto-arbitrage-scanner/pkg/models"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var opportunityColumns = []string{
	"id", "symbol", "buy_exchange", "sell_exchange", "buy_price", "sell_price", "profit_percent", "detected_at", "timestamp",
}

func newMockRepository(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	logger, _ := test.NewNullLogger()
	return NewRepository(database.Wrap(sqlDB, logger), logger), mock
}

func TestRepository_EnsureSchema(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS opportunities").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE INDEX IF NOT EXISTS idx_opportunities_timestamp").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_EnsureSchemaError(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS opportunities").WillReturnError(errors.New("permission denied"))

	err := repo.EnsureSchema(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "permission denied")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_InsertOpportunity(t *testing.T) {
	repo, mock := newMockRepository(t)
	detectedAt := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	storedAt := detectedAt.Add(50 * time.Millisecond)

	mock.ExpectQuery("INSERT INTO opportunities").
		WithArgs("BTCUSDT", "binance", "kucoin", "100", "100.6", "0.6", detectedAt).
		WillReturnRows(sqlmock.NewRows([]string{"id", "timestamp"}).AddRow(int64(7), storedAt))

	opp := &models.Opportunity{
		Symbol:        "BTCUSDT",
		BuyExchange:   "binance",
		SellExchange:  "kucoin",
		BuyPrice:      100,
		SellPrice:     100.6,
		ProfitPercent: 0.5999999999999943,
		DetectedAt:    detectedAt,
	}
	require.NoError(t, repo.InsertOpportunity(context.Background(), opp))

	assert.Equal(t, int64(7), opp.ID)
	assert.Equal(t, storedAt, opp.Timestamp)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_InsertOpportunityError(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery("INSERT INTO opportunities").WillReturnError(errors.New("disk full"))

	opp := &models.Opportunity{Symbol: "ETHUSDT", BuyPrice: 1, SellPrice: 2, ProfitPercent: 100}
	err := repo.InsertOpportunity(context.Background(), opp)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Zero(t, opp.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetRecentOpportunities(t *testing.T) {
	repo, mock := newMockRepository(t)
	newest := time.Date(2024, 5, 1, 12, 1, 0, 0, time.UTC)
	older := newest.Add(-time.Minute)

	rows := sqlmock.NewRows(opportunityColumns).
		AddRow(int64(2), "ETHUSDT", "kucoin", "bybit", []byte("3000.00000000"), []byte("3021.00000000"), []byte("0.700000"), newest, newest).
		AddRow(int64(1), "BTCUSDT", "binance", "kucoin", []byte("100.00000000"), []byte("100.60000000"), []byte("0.600000"), older, older)

	mock.ExpectQuery("SELECT (.+) FROM opportunities ORDER BY timestamp DESC, id DESC LIMIT").
		WithArgs(10).
		WillReturnRows(rows)

	opportunities, err := repo.GetRecentOpportunities(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, opportunities, 2)

	assert.Equal(t, int64(2), opportunities[0].ID)
	assert.Equal(t, "ETHUSDT", opportunities[0].Symbol)
	assert.Equal(t, 3021.0, opportunities[0].SellPrice)

	assert.Equal(t, "BTCUSDT", opportunities[1].Symbol)
	assert.Equal(t, "binance", opportunities[1].BuyExchange)
	assert.Equal(t, "kucoin", opportunities[1].SellExchange)
	assert.Equal(t, 100.0, opportunities[1].BuyPrice)
	assert.Equal(t, 100.6, opportunities[1].SellPrice)
	assert.Equal(t, 0.6, opportunities[1].ProfitPercent)
	assert.Equal(t, older, opportunities[1].Timestamp)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetRecentOpportunitiesErrors(t *testing.T) {
	t.Run("query", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		mock.ExpectQuery("SELECT (.+) FROM opportunities").WillReturnError(errors.New("connection reset"))

		_, err := repo.GetRecentOpportunities(context.Background(), 10)
		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("scan", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		now := time.Now()
		rows := sqlmock.NewRows(opportunityColumns).
			AddRow(int64(1), "BTCUSDT", "binance", "kucoin", "oops", "1", "1", now, now)
		mock.ExpectQuery("SELECT (.+) FROM opportunities").WillReturnRows(rows)

		_, err := repo.GetRecentOpportunities(context.Background(), 10)
		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		mock.ExpectQuery("SELECT (.+) FROM opportunities").WillReturnRows(sqlmock.NewRows(opportunityColumns))

		opportunities, err := repo.GetRecentOpportunities(context.Background(), 10)
		require.NoError(t, err)
		assert.NotNil(t, opportunities)
		assert.Empty(t, opportunities)
	})
}
