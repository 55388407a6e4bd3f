// internal/app/system/workers/notificationcleanup.go
package workers

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	notificationstore "github.com/artom-sites/choirhub/internal/app/store/notifications"
	"github.com/artom-sites/choirhub/internal/app/system/timeouts"
)

// NotificationCleanup is a background worker that deletes notification
// records older than the retention window.
type NotificationCleanup struct {
	notifications *notificationstore.Store
	log           *zap.Logger
	interval      time.Duration
	retention     time.Duration
	stopCh        chan struct{}
	wg            sync.WaitGroup
}

// NewNotificationCleanup creates the cleanup worker.
//
// Parameters:
//   - store: the notifications store
//   - logger: zap logger for logging
//   - interval: how often to run cleanup (e.g., 1 hour)
//   - retention: how long notification records are kept (e.g., 720h)
func NewNotificationCleanup(store *notificationstore.Store, logger *zap.Logger, interval, retention time.Duration) *NotificationCleanup {
	return &NotificationCleanup{
		notifications: store,
		log:           logger,
		interval:      interval,
		retention:     retention,
		stopCh:        make(chan struct{}),
	}
}

// Start begins the background cleanup loop.
func (w *NotificationCleanup) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("notification cleanup worker started",
		zap.Duration("interval", w.interval),
		zap.Duration("retention", w.retention))
}

// Stop signals the worker to stop and waits for it to finish.
func (w *NotificationCleanup) Stop() {
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("notification cleanup worker stopped")
}

func (w *NotificationCleanup) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.cleanup()
		}
	}
}

func (w *NotificationCleanup) cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), timeouts.Long())
	defer cancel()

	count, err := w.notifications.CleanupOlderThan(ctx, w.retention)
	if err != nil {
		w.log.Error("failed to delete expired notifications", zap.Error(err))
		return
	}

	if count > 0 {
		w.log.Info("deleted expired notifications", zap.Int64("count", count))
	}
}
