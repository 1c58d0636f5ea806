package pricerefresh

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/wealth-one/wealth_service/internal/domain/entities"
	"github.com/wealth-one/wealth_service/internal/domain/services/prices"
)

// SymbolSource lists the symbols that currently need quotes.
type SymbolSource interface {
	ListActiveSymbols(ctx context.Context) ([]string, error)
}

// Scheduler periodically refreshes the price caches for every symbol held by
// any user, so dashboards stay warm without each request paying for provider
// round trips.
type Scheduler struct {
	cron         *cron.Cron
	schedule     string
	refreshLimit time.Duration
	logger       *zap.Logger

	targets []target

	mu      sync.Mutex
	lastRun time.Time
	running bool
}

type target struct {
	class  entities.AssetClass
	cache  *prices.Cache
	source SymbolSource
}

// NewScheduler creates a price refresh scheduler. schedule accepts cron
// expressions and @every shorthands.
func NewScheduler(schedule string, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:         cron.New(),
		schedule:     schedule,
		refreshLimit: 2 * time.Minute,
		logger:       logger,
	}
}

// Register adds one cache plus its symbol source to the refresh cycle.
func (s *Scheduler) Register(class entities.AssetClass, cache *prices.Cache, source SymbolSource) {
	s.targets = append(s.targets, target{class: class, cache: cache, source: source})
}

// Start schedules the refresh job and runs one cycle immediately in the
// background to warm the caches.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.runOnce); err != nil {
		return fmt.Errorf("invalid refresh schedule %q: %w", s.schedule, err)
	}
	s.cron.Start()
	go s.runOnce()

	s.logger.Info("Price refresh scheduler started", zap.String("schedule", s.schedule))
	return nil
}

// Stop halts the scheduler and waits for a running cycle to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Price refresh scheduler stopped")
}

func (s *Scheduler) runOnce() {
	s.mu.Lock()
	if s.running {
		// A slow provider must not pile up overlapping cycles.
		s.mu.Unlock()
		s.logger.Warn("Skipping price refresh, previous cycle still running")
		return
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.lastRun = time.Now()
		s.mu.Unlock()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), s.refreshLimit)
	defer cancel()

	for _, t := range s.targets {
		symbols, err := t.source.ListActiveSymbols(ctx)
		if err != nil {
			s.logger.Error("Failed to list symbols for refresh",
				zap.String("class", string(t.class)),
				zap.Error(err),
			)
			continue
		}
		if len(symbols) == 0 {
			continue
		}

		result := t.cache.Refresh(ctx, symbols)
		if len(result.Failed) > 0 {
			s.logger.Warn("Price refresh cycle had failures",
				zap.String("class", string(t.class)),
				zap.Strings("failed", result.Failed),
			)
		}
	}
}
