package collector

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const DefaultScanInterval = 60 * time.Second

// Scheduler fires a scan cycle every interval. A tick that arrives while the
// previous cycle is still running is skipped rather than queued.
type Scheduler struct {
	scanner  *Scanner
	cron     *cron.Cron
	job      cron.Job
	initial  sync.WaitGroup
	logger   *logrus.Logger
	interval time.Duration
}

func NewScheduler(scanner *Scanner, interval time.Duration, logger *logrus.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultScanInterval
	}

	cronLogger := cron.PrintfLogger(logger)
	cronScheduler := cron.New(
		cron.WithSeconds(),
		cron.WithLogger(cronLogger),
		cron.WithChain(cron.Recover(cronLogger)),
	)

	return &Scheduler{
		scanner:  scanner,
		cron:     cronScheduler,
		logger:   logger,
		interval: interval,
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.WithField("interval", s.interval).Info("Starting arbitrage scan scheduler")

	// The initial run and the periodic runs share one skip guard.
	s.job = cron.NewChain(
		cron.SkipIfStillRunning(cron.VerbosePrintfLogger(s.logger)),
	).Then(cron.FuncJob(func() {
		s.scan(ctx)
	}))

	_, err := s.cron.AddJob(fmt.Sprintf("@every %s", s.interval), s.job)
	if err != nil {
		return fmt.Errorf("failed to schedule scan: %w", err)
	}

	s.cron.Start()

	// Run initial scan
	s.initial.Add(1)
	go func() {
		defer s.initial.Done()
		s.job.Run()
	}()

	s.logger.Info("Arbitrage scan scheduler started successfully")
	return nil
}

// Stop halts the schedule. The returned context is done once any running
// cycle has finished.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("Stopping arbitrage scan scheduler")
	cronCtx := s.cron.Stop()

	done, cancel := context.WithCancel(context.Background())
	go func() {
		<-cronCtx.Done()
		s.initial.Wait()
		cancel()
	}()
	return done
}

func (s *Scheduler) scan(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	result := s.scanner.RunCycle(ctx)
	for _, opp := range result.Opportunities {
		s.logger.WithFields(logrus.Fields{
			"cycle_id":       result.ID.String(),
			"symbol":         opp.Symbol,
			"buy_exchange":   opp.BuyExchange,
			"sell_exchange":  opp.SellExchange,
			"profit_percent": fmt.Sprintf("%.2f", opp.ProfitPercent),
		}).Info("Arbitrage opportunity")
	}
}
