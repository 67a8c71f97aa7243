package collector

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/paaavkata/crypto-arbitrage-scanner/internal/exchange"
	"github.com/paaavkata/crypto-arbitrage-scanner/pkg/models"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// stubAdapter serves fixed prices per symbol. A symbol without a price
// behaves like a failed fetch.
type stubAdapter struct {
	name    string
	prices  map[string]float64
	calls   atomic.Int32
	entered chan struct{}
	release chan struct{}
}

func newStub(name string, prices map[string]float64) *stubAdapter {
	return &stubAdapter{name: name, prices: prices}
}

func (s *stubAdapter) Name() string { return s.name }

func (s *stubAdapter) FetchPrice(ctx context.Context, symbol string) (models.PriceQuote, bool) {
	s.calls.Add(1)
	if s.entered != nil {
		s.entered <- struct{}{}
	}
	if s.release != nil {
		select {
		case <-s.release:
		case <-ctx.Done():
			return models.PriceQuote{}, false
		}
	}

	price, ok := s.prices[symbol]
	if !ok {
		return models.PriceQuote{}, false
	}
	return models.PriceQuote{
		Exchange:   s.name,
		Symbol:     symbol,
		Price:      price,
		ObservedAt: time.Now().UTC(),
	}, true
}

func newTestRegistry(t *testing.T, adapters ...exchange.Adapter) *exchange.Registry {
	t.Helper()
	registry := exchange.NewRegistry()
	for _, adapter := range adapters {
		require.NoError(t, registry.Register(adapter))
	}
	return registry
}

func newTestLogger() *logrus.Logger {
	logger, _ := test.NewNullLogger()
	return logger
}

type MockOpportunityStore struct {
	mock.Mock
}

func (m *MockOpportunityStore) InsertOpportunity(ctx context.Context, opp *models.Opportunity) error {
	args := m.Called(ctx, opp)
	return args.Error(0)
}

// fakeStore assigns sequential IDs and fails for the listed symbols.
type fakeStore struct {
	mu     sync.Mutex
	nextID int64
	fail   map[string]error
	stored []models.Opportunity
}

func (f *fakeStore) InsertOpportunity(_ context.Context, opp *models.Opportunity) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err, ok := f.fail[opp.Symbol]; ok {
		return err
	}
	f.nextID++
	opp.ID = f.nextID
	opp.Timestamp = time.Now().UTC()
	f.stored = append(f.stored, *opp)
	return nil
}

type spyCache struct {
	mu     sync.Mutex
	quotes []models.PriceQuote
	err    error
}

func (c *spyCache) SetLatestQuotes(_ context.Context, quotes []models.PriceQuote) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.quotes = append(c.quotes, quotes...)
	return c.err
}

type spyPublisher struct {
	mu        sync.Mutex
	published [][]models.Opportunity
}

func (p *spyPublisher) Publish(opportunities []models.Opportunity) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, opportunities)
}
