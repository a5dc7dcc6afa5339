package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/nikgithub05/travel-buddy/internal/connectivity"
	"github.com/nikgithub05/travel-buddy/internal/logging"
)

// Reconciler runs one reconciliation cycle.
type Reconciler interface {
	RunCycle(ctx context.Context) CycleReport
}

// SyncScheduler runs a reconciliation cycle on a fixed period, skipping
// ticks while the probe reports no connectivity. Every cycle scans all
// records; nothing is remembered between cycles except the last report.
type SyncScheduler struct {
	engine    Reconciler
	probe     connectivity.Probe
	interval  time.Duration
	logger    logging.Logger
	publisher EventPublisher

	cycleMu sync.Mutex // one cycle at a time, ticker or on demand

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	last   *CycleReport
}

// NewSyncScheduler creates a new SyncScheduler.
func NewSyncScheduler(engine Reconciler, probe connectivity.Probe, interval time.Duration, logger logging.Logger) *SyncScheduler {
	return &SyncScheduler{
		engine:   engine,
		probe:    probe,
		interval: interval,
		logger:   logger,
	}
}

// WithPublisher publishes each cycle report as EventSyncCompleted.
func (s *SyncScheduler) WithPublisher(p EventPublisher) *SyncScheduler {
	s.publisher = p
	return s
}

// Start launches the background loop. It returns an error if the loop is
// already running.
func (s *SyncScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		return errors.New("sync scheduler already started")
	}
	if s.interval <= 0 {
		return errors.New("sync interval must be positive")
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.loop(ctx, s.done)

	s.logger.Info(ctx, "sync scheduler started", "interval", s.interval)
	return nil
}

// Stop cancels the loop and blocks until an in-flight cycle has finished.
func (s *SyncScheduler) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	// wait out a cycle started through Trigger
	s.cycleMu.Lock()
	s.cycleMu.Unlock()
	s.logger.Info(context.Background(), "sync scheduler stopped")
}

func (s *SyncScheduler) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Trigger(ctx)
		}
	}
}

// Trigger runs one cycle now if the probe reports connectivity. The bool
// is false when the cycle was skipped. Once started, a cycle runs to the
// end even if ctx is cancelled, so a pass is never cut mid-iteration.
func (s *SyncScheduler) Trigger(ctx context.Context) (CycleReport, bool) {
	s.cycleMu.Lock()
	defer s.cycleMu.Unlock()

	if ctx.Err() != nil {
		return CycleReport{}, false
	}
	if !s.probe.IsConnected(ctx) {
		s.logger.Info(ctx, "offline, sync cycle skipped")
		return CycleReport{}, false
	}

	report := s.engine.RunCycle(context.WithoutCancel(ctx))

	s.mu.Lock()
	s.last = &report
	s.mu.Unlock()

	publishEvent(ctx, s.publisher, s.logger, EventSyncCompleted, report)
	return report, true
}

// LastReport returns the most recent completed cycle, if any.
func (s *SyncScheduler) LastReport() (CycleReport, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return CycleReport{}, false
	}
	return *s.last, true
}
