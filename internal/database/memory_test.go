package database

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/paaavkata/crypto-arbitrage-scanner/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func steppingClock(start time.Time, step time.Duration) func() time.Time {
	var mu sync.Mutex
	current := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		current = current.Add(step)
		return current
	}
}

func TestMemoryRepository_RecentNewestFirst(t *testing.T) {
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	repo := NewMemoryRepository(WithClock(steppingClock(start, time.Second)))
	ctx := context.Background()

	for i := 1; i <= 15; i++ {
		opp := &models.Opportunity{Symbol: "BTCUSDT", BuyPrice: 100, SellPrice: 100 + float64(i), ProfitPercent: float64(i)}
		require.NoError(t, repo.InsertOpportunity(ctx, opp))
		assert.Equal(t, int64(i), opp.ID)
		assert.Equal(t, start.Add(time.Duration(i)*time.Second), opp.Timestamp)
	}

	recent, err := repo.GetRecentOpportunities(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 10)
	for i, opp := range recent {
		assert.Equal(t, int64(15-i), opp.ID)
		if i > 0 {
			assert.True(t, recent[i-1].Timestamp.After(opp.Timestamp))
		}
	}
}

func TestMemoryRepository_RoundTrip(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	opp := &models.Opportunity{
		Symbol:        "XRPUSDT",
		BuyExchange:   "binance",
		SellExchange:  "bybit",
		BuyPrice:      0.52341,
		SellPrice:     0.52701,
		ProfitPercent: 0.687797329,
	}
	require.NoError(t, repo.InsertOpportunity(ctx, opp))
	assert.False(t, opp.DetectedAt.IsZero())

	recent, err := repo.GetRecentOpportunities(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "XRPUSDT", recent[0].Symbol)
	assert.Equal(t, 0.52341, recent[0].BuyPrice)
	assert.Equal(t, 0.52701, recent[0].SellPrice)
	assert.Equal(t, 0.687797, recent[0].ProfitPercent)
	assert.NoError(t, repo.HealthCheck(ctx))
}

func TestMemoryRepository_Empty(t *testing.T) {
	recent, err := NewMemoryRepository().GetRecentOpportunities(context.Background(), 10)
	require.NoError(t, err)
	assert.NotNil(t, recent)
	assert.Empty(t, recent)
}
