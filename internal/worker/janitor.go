package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/waterapps/portal/internal/metrics"
)

// DefaultJanitorInterval is used when no interval is configured.
const DefaultJanitorInterval = 15 * time.Minute

// Cleaner removes expired session values and reports how many were removed.
type Cleaner interface {
	Cleanup(ctx context.Context) (int64, error)
}

// Janitor periodically purges expired session values from stores that
// cannot expire them natively.
type Janitor struct {
	cleaner  Cleaner
	interval time.Duration
	logger   *slog.Logger

	// Internal state
	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// JanitorConfig holds configuration for the janitor.
type JanitorConfig struct {
	Cleaner  Cleaner
	Interval time.Duration
	Logger   *slog.Logger
}

// NewJanitor creates a new session janitor.
func NewJanitor(cfg JanitorConfig) *Janitor {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultJanitorInterval
	}

	return &Janitor{
		cleaner:  cfg.Cleaner,
		interval: interval,
		logger:   logger.With("component", "janitor"),
	}
}

// Start runs one sweep immediately and then one per interval until Stop is
// called or ctx is cancelled.
func (j *Janitor) Start(ctx context.Context) error {
	j.mu.Lock()
	if j.running {
		j.mu.Unlock()
		return nil
	}
	j.running = true
	j.stopCh = make(chan struct{})
	j.doneCh = make(chan struct{})
	stopCh, doneCh := j.stopCh, j.doneCh
	j.mu.Unlock()

	j.logger.Info("janitor starting", "interval", j.interval)

	go func() {
		defer close(doneCh)
		j.loop(ctx, stopCh)
	}()

	return nil
}

// Stop gracefully stops the janitor and waits for the running sweep.
func (j *Janitor) Stop() {
	j.mu.Lock()
	if !j.running {
		j.mu.Unlock()
		return
	}
	close(j.stopCh)
	doneCh := j.doneCh
	j.mu.Unlock()

	<-doneCh

	j.mu.Lock()
	j.running = false
	j.mu.Unlock()

	j.logger.Info("janitor stopped")
}

// Running reports whether the sweep loop is active.
func (j *Janitor) Running() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.running
}

func (j *Janitor) loop(ctx context.Context, stopCh <-chan struct{}) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.Sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			j.logger.Info("janitor context cancelled")
			return
		case <-stopCh:
			return
		case <-ticker.C:
			j.Sweep(ctx)
		}
	}
}

// Sweep runs a single cleanup pass.
func (j *Janitor) Sweep(ctx context.Context) int64 {
	start := time.Now()
	removed, err := j.cleaner.Cleanup(ctx)
	if err != nil {
		j.logger.Error("session cleanup failed", "error", err)
		return 0
	}
	if removed > 0 {
		metrics.SessionValuesExpired.Add(float64(removed))
		j.logger.Info("expired session values removed",
			"removed", removed,
			"duration", time.Since(start),
		)
	}
	return removed
}
