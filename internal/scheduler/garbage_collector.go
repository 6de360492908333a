package scheduler

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/doodl/internal/logger"
)

// DefaultGCInterval is used when no interval is configured
const DefaultGCInterval = time.Hour

// Purger drops expired entries and reports how many were removed.
type Purger interface {
	Purge(now time.Time) int
	Count() int
}

// GarbageCollector handles cleanup of expired metadata cache entries
type GarbageCollector struct {
	cache    Purger
	logger   logger.Logger
	interval time.Duration
	now      func() time.Time
	stopCh   chan struct{}
}

// NewGarbageCollector creates a new garbage collector
func NewGarbageCollector(
	cache Purger,
	log logger.Logger,
	interval time.Duration,
) *GarbageCollector {
	if interval <= 0 {
		interval = DefaultGCInterval
	}

	return &GarbageCollector{
		cache:    cache,
		logger:   log,
		interval: interval,
		now:      time.Now,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the periodic garbage collection process
func (gc *GarbageCollector) Start(ctx context.Context) error {
	// Run immediately on start
	if err := gc.Collect(ctx); err != nil {
		gc.logger.Warn("initial garbage collection failed",
			logger.Error(err))
	}

	ticker := time.NewTicker(gc.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := gc.Collect(ctx); err != nil {
					gc.logger.Error("garbage collection failed",
						logger.Error(err))
				}
			case <-gc.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the garbage collector
func (gc *GarbageCollector) Stop() {
	close(gc.stopCh)
}

// Collect removes metadata cache entries whose TTL has elapsed
func (gc *GarbageCollector) Collect(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	purged := gc.cache.Purge(gc.now())

	if purged > 0 {
		gc.logger.Info("garbage collection completed",
			logger.Int("entries_purged", purged),
			logger.Int("entries_left", gc.cache.Count()))
	} else {
		gc.logger.Debug("no items to garbage collect")
	}

	return nil
}
