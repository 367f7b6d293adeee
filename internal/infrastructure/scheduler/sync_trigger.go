// Package scheduler contains the periodic trigger that drives tracking
// synchronization runs in the background.
package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	apptracking "github.com/oms/backend/internal/application/tracking"
)

// SyncRunner runs one tracking synchronization pass
type SyncRunner interface {
	Sync(ctx context.Context, req apptracking.SyncRequest) (*apptracking.SyncResult, error)
}

// SyncTriggerConfig holds configuration for the sync trigger
type SyncTriggerConfig struct {
	// Interval is how often a synchronization run is started
	Interval time.Duration
	// RunOnStart triggers a run immediately instead of waiting one interval
	RunOnStart bool
}

// DefaultSyncTriggerConfig returns default sync trigger configuration
func DefaultSyncTriggerConfig() SyncTriggerConfig {
	return SyncTriggerConfig{
		Interval:   15 * time.Minute,
		RunOnStart: false,
	}
}

// SyncTrigger periodically runs tracking synchronization for all active
// tenants
type SyncTrigger struct {
	config SyncTriggerConfig
	runner SyncRunner
	logger *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewSyncTrigger creates a new sync trigger
func NewSyncTrigger(config SyncTriggerConfig, runner SyncRunner, logger *zap.Logger) *SyncTrigger {
	return &SyncTrigger{
		config: config,
		runner: runner,
		logger: logger.Named("sync_trigger"),
	}
}

// Start starts the sync trigger
func (t *SyncTrigger) Start(ctx context.Context) error {
	t.mu.Lock()
	if t.isRunning {
		t.mu.Unlock()
		return nil
	}
	t.isRunning = true
	t.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel

	t.wg.Add(1)
	go t.runLoop(ctx)

	t.logger.Info("Sync trigger started", zap.Duration("interval", t.config.Interval))
	return nil
}

// Stop stops the sync trigger and waits for an in-flight run to finish
func (t *SyncTrigger) Stop(ctx context.Context) error {
	t.mu.Lock()
	if !t.isRunning {
		t.mu.Unlock()
		return nil
	}
	t.isRunning = false
	t.mu.Unlock()

	if t.cancel != nil {
		t.cancel()
	}

	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		t.logger.Info("Sync trigger stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// runLoop runs synchronization passes until the context is cancelled
func (t *SyncTrigger) runLoop(ctx context.Context) {
	defer t.wg.Done()

	if t.config.RunOnStart {
		t.runOnce(ctx)
	}

	ticker := time.NewTicker(t.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.runOnce(ctx)
		}
	}
}

// runOnce performs one synchronization pass over all active tenants
func (t *SyncTrigger) runOnce(ctx context.Context) {
	result, err := t.runner.Sync(ctx, apptracking.SyncRequest{})
	if err != nil {
		t.logger.Error("Scheduled sync run failed", zap.Error(err))
		return
	}

	var events, shipments int
	for _, tenant := range result.Tenants {
		events += tenant.EventsProcessed
		shipments += tenant.ShipmentsCreated
	}
	t.logger.Info("Scheduled sync run completed",
		zap.Int("tenants", len(result.Tenants)),
		zap.Int("events", events),
		zap.Int("shipments_created", shipments),
		zap.Duration("duration", result.Duration),
	)
}
