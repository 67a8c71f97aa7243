package collector

import (
	"context"
	"sync"
	"time"

	"github.com/paaavkata/crypto-arbitrage-scanner/internal/exchange"
	"github.com/paaavkata/crypto-arbitrage-scanner/pkg/models"
	"github.com/sirupsen/logrus"
)

type Fetcher struct {
	registry *exchange.Registry
	logger   *logrus.Logger
}

func NewFetcher(registry *exchange.Registry, logger *logrus.Logger) *Fetcher {
	return &Fetcher{
		registry: registry,
		logger:   logger,
	}
}

// Collect asks every registered exchange for the symbol's price in parallel.
// Exchanges that fail are left out of the snapshot; the adapter has already
// logged why.
func (f *Fetcher) Collect(ctx context.Context, symbol string) models.PriceSnapshot {
	start := time.Now()
	snapshot := models.NewPriceSnapshot(symbol)

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)

	for _, adapter := range f.registry.Adapters() {
		wg.Add(1)
		go func(adapter exchange.Adapter) {
			defer wg.Done()

			quote, ok := adapter.FetchPrice(ctx, symbol)
			if !ok {
				return
			}

			mu.Lock()
			snapshot.Quotes[adapter.Name()] = quote
			mu.Unlock()
		}(adapter)
	}

	wg.Wait()

	f.logger.WithFields(logrus.Fields{
		"symbol":      symbol,
		"exchanges":   f.registry.Len(),
		"quotes":      snapshot.Len(),
		"duration_ms": time.Since(start).Milliseconds(),
	}).Debug("Collected prices")

	return snapshot
}
