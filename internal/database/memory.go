package database

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/paaavkata/crypto-arbitrage-scanner/pkg/models"
	"github.com/paaavkata/crypto-arbitrage-scanner/pkg/utils"
)

type MemoryOption func(*MemoryRepository)

// WithClock overrides the clock used to stamp inserted rows.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *MemoryRepository) {
		m.now = now
	}
}

// MemoryRepository is a process-local opportunities store with the same
// ordering and precision rules as the postgres table. Rows are lost on exit.
type MemoryRepository struct {
	mu     sync.RWMutex
	nextID int64
	rows   []models.Opportunity
	now    func() time.Time
}

func NewMemoryRepository(opts ...MemoryOption) *MemoryRepository {
	m := &MemoryRepository{
		now: time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *MemoryRepository) InsertOpportunity(_ context.Context, opp *models.Opportunity) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	opp.ID = m.nextID
	opp.Timestamp = m.now().UTC()
	if opp.DetectedAt.IsZero() {
		opp.DetectedAt = opp.Timestamp
	}

	row := *opp
	row.BuyPrice = utils.NormalizeTo(row.BuyPrice, priceScale)
	row.SellPrice = utils.NormalizeTo(row.SellPrice, priceScale)
	row.ProfitPercent = utils.NormalizeTo(row.ProfitPercent, profitScale)
	m.rows = append(m.rows, row)
	return nil
}

func (m *MemoryRepository) GetRecentOpportunities(_ context.Context, limit int) ([]models.Opportunity, error) {
	m.mu.RLock()
	rows := make([]models.Opportunity, len(m.rows))
	copy(rows, m.rows)
	m.mu.RUnlock()

	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].Timestamp.Equal(rows[j].Timestamp) {
			return rows[i].Timestamp.After(rows[j].Timestamp)
		}
		return rows[i].ID > rows[j].ID
	})

	if limit >= 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func (m *MemoryRepository) HealthCheck(context.Context) error {
	return nil
}
