package collector

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/paaavkata/crypto-arbitrage-scanner/pkg/models"
	"github.com/sirupsen/logrus"
)

const DefaultMaxConcurrentSymbols = 4

// QuoteCache keeps the most recent quote per exchange and symbol.
type QuoteCache interface {
	SetLatestQuotes(ctx context.Context, quotes []models.PriceQuote) error
}

// Publisher receives the opportunities recorded during a cycle.
type Publisher interface {
	Publish(opportunities []models.Opportunity)
}

type CycleStats struct {
	Symbols            int
	Quotes             int
	InsufficientQuotes int
	Opportunities      int
	PersistFailures    int
	Duration           time.Duration
}

type CycleResult struct {
	ID            uuid.UUID
	StartedAt     time.Time
	Opportunities []models.Opportunity
	Stats         CycleStats
}

type ScannerOption func(*Scanner)

func WithQuoteCache(cache QuoteCache) ScannerOption {
	return func(s *Scanner) {
		s.cache = cache
	}
}

func WithPublisher(publisher Publisher) ScannerOption {
	return func(s *Scanner) {
		s.publisher = publisher
	}
}

func WithMaxConcurrentSymbols(n int) ScannerOption {
	return func(s *Scanner) {
		if n > 0 {
			s.maxConcurrent = n
		}
	}
}

// Scanner runs one scan cycle over the configured symbols. It keeps no state
// between cycles.
type Scanner struct {
	symbols       []string
	fetcher       *Fetcher
	detector      *Detector
	processor     *Processor
	cache         QuoteCache
	publisher     Publisher
	maxConcurrent int
	logger        *logrus.Logger
}

func NewScanner(symbols []string, fetcher *Fetcher, detector *Detector, processor *Processor, logger *logrus.Logger, opts ...ScannerOption) *Scanner {
	s := &Scanner{
		symbols:       append([]string(nil), symbols...),
		fetcher:       fetcher,
		detector:      detector,
		processor:     processor,
		maxConcurrent: DefaultMaxConcurrentSymbols,
		logger:        logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type symbolOutcome struct {
	quotes         int
	insufficient   bool
	opportunity    *models.Opportunity
	persistFailure bool
}

// RunCycle collects, detects and records for every symbol. A failure for one
// symbol never affects another; the returned opportunities are those stored
// during this cycle, ordered by symbol.
func (s *Scanner) RunCycle(ctx context.Context) CycleResult {
	result := CycleResult{
		ID:        uuid.New(),
		StartedAt: time.Now().UTC(),
	}
	logger := s.logger.WithField("cycle_id", result.ID.String())
	logger.WithField("symbols", len(s.symbols)).Info("Starting scan cycle")

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, s.maxConcurrent)
	)

	for _, symbol := range s.symbols {
		if ctx.Err() != nil {
			logger.WithError(ctx.Err()).Warn("Scan cycle cancelled")
			break
		}

		sem <- struct{}{}
		wg.Add(1)
		go func(symbol string) {
			defer wg.Done()
			defer func() { <-sem }()

			outcome := s.scanSymbol(ctx, logger, symbol)

			mu.Lock()
			defer mu.Unlock()
			result.Stats.Symbols++
			result.Stats.Quotes += outcome.quotes
			if outcome.insufficient {
				result.Stats.InsufficientQuotes++
			}
			if outcome.persistFailure {
				result.Stats.PersistFailures++
			}
			if outcome.opportunity != nil {
				result.Opportunities = append(result.Opportunities, *outcome.opportunity)
			}
		}(symbol)
	}

	wg.Wait()

	sort.Slice(result.Opportunities, func(i, j int) bool {
		return result.Opportunities[i].Symbol < result.Opportunities[j].Symbol
	})
	result.Stats.Opportunities = len(result.Opportunities)
	result.Stats.Duration = time.Since(result.StartedAt)

	if s.publisher != nil && len(result.Opportunities) > 0 {
		s.publisher.Publish(result.Opportunities)
	}

	entry := logger.WithFields(logrus.Fields{
		"symbols":             result.Stats.Symbols,
		"quotes":              result.Stats.Quotes,
		"insufficient_quotes": result.Stats.InsufficientQuotes,
		"opportunities":       result.Stats.Opportunities,
		"persist_failures":    result.Stats.PersistFailures,
		"duration_ms":         result.Stats.Duration.Milliseconds(),
	})
	if result.Stats.PersistFailures > 0 {
		entry.Warn("Scan cycle completed with persistence failures")
	} else {
		entry.Info("Scan cycle completed")
	}

	return result
}

func (s *Scanner) scanSymbol(ctx context.Context, logger *logrus.Entry, symbol string) symbolOutcome {
	snapshot := s.fetcher.Collect(ctx, symbol)
	outcome := symbolOutcome{quotes: snapshot.Len()}

	if s.cache != nil && snapshot.Len() > 0 {
		quotes := make([]models.PriceQuote, 0, snapshot.Len())
		for _, name := range snapshot.Exchanges() {
			quotes = append(quotes, snapshot.Quotes[name])
		}
		if err := s.cache.SetLatestQuotes(ctx, quotes); err != nil {
			logger.WithError(err).WithField("symbol", symbol).Warn("Failed to cache quotes")
		}
	}

	if snapshot.Len() < MinQuotes {
		outcome.insufficient = true
		logger.WithFields(logrus.Fields{
			"symbol": symbol,
			"quotes": snapshot.Len(),
		}).Debug("Not enough quotes to evaluate spread")
		return outcome
	}

	opp, ok := s.detector.Detect(snapshot)
	if !ok {
		return outcome
	}

	if _, err := s.processor.Record(ctx, opp); err != nil {
		outcome.persistFailure = true
		return outcome
	}

	outcome.opportunity = opp
	return outcome
}
