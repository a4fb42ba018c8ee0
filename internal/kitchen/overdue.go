package kitchen

import (
	"context"
	"sync"
	"time"

	"github.com/appetiteclub/lifecycle/internal/lifecycle"
	"github.com/aquamarinepk/aqm"
	"github.com/google/uuid"
)

const defaultOverdueInterval = 30 * time.Second

// OverdueWatcher periodically looks for tickets past their estimated
// delivery time and raises one OrderDelayed notification per ticket.
type OverdueWatcher struct {
	service  *Service
	interval time.Duration
	logger   aqm.Logger

	mu       sync.Mutex
	notified map[uuid.UUID]struct{}
	cancel   context.CancelFunc
	done     chan struct{}
}

func NewOverdueWatcher(service *Service, interval time.Duration, logger aqm.Logger) *OverdueWatcher {
	if interval <= 0 {
		interval = defaultOverdueInterval
	}
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &OverdueWatcher{
		service:  service,
		interval: interval,
		logger:   logger,
		notified: make(map[uuid.UUID]struct{}),
	}
}

func (w *OverdueWatcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancel != nil {
		return nil
	}

	runCtx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.done = make(chan struct{})
	go w.run(runCtx, w.done)

	w.logger.Info("overdue watcher started", "interval", w.interval.String())
	return nil
}

func (w *OverdueWatcher) Stop(ctx context.Context) error {
	w.mu.Lock()
	cancel, done := w.cancel, w.done
	w.cancel, w.done = nil, nil
	w.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	w.logger.Info("overdue watcher stopped")
	return nil
}

func (w *OverdueWatcher) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := w.Scan(ctx); err != nil {
				w.logger.Error("overdue scan failed", "error", err)
			}
		}
	}
}

// Scan emits OrderDelayed for every overdue ticket not yet reported and
// returns the intents it emitted.
func (w *OverdueWatcher) Scan(ctx context.Context) ([]lifecycle.NotificationIntent, error) {
	overdue, err := w.service.OverdueTickets(ctx)
	if err != nil {
		return nil, err
	}

	now := w.service.now()
	current := make(map[uuid.UUID]struct{}, len(overdue))
	var intents []lifecycle.NotificationIntent

	w.mu.Lock()
	for _, t := range overdue {
		current[t.ID] = struct{}{}
		if _, seen := w.notified[t.ID]; seen {
			continue
		}
		intents = append(intents, lifecycle.OrderDelayed(t, now))
	}
	w.notified = current
	w.mu.Unlock()

	if len(intents) > 0 {
		w.service.Emit(ctx, intents...)
		w.logger.Info("overdue tickets reported", "count", len(intents))
	}
	return intents, nil
}
