// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"

	"github.com/artom-sites/choirhub/internal/app/stats"
	groupstore "github.com/artom-sites/choirhub/internal/app/store/groups"
	notificationstore "github.com/artom-sites/choirhub/internal/app/store/notifications"
	servicestore "github.com/artom-sites/choirhub/internal/app/store/services"
	statsstore "github.com/artom-sites/choirhub/internal/app/store/stats"
	"github.com/artom-sites/choirhub/internal/app/system/workers"
)

// Background workers started in Startup and stopped in Shutdown.
var (
	statsWatcher *stats.Watcher
	notifCleanup *workers.NotificationCleanup
)

// Startup runs one-time application initialization after DB connections
// and schema setup are complete, but before the HTTP handler is built.
// ChoirHub starts its two background workers here: the stats
// change-stream watcher and the notification retention cleanup.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	db := deps.MongoDatabase
	services := servicestore.New(db)
	agg := stats.NewAggregator(db, logger, groupstore.New(db), services, statsstore.New(db))

	// Pre-images let the watcher's change guard see the document state
	// before each write. Servers without support degrade to recomputing
	// on every service update.
	if err := services.EnablePreImages(ctx); err != nil {
		logger.Warn("change-stream pre-images unavailable; every service update will trigger a stats recompute",
			zap.Error(err))
	}

	statsWatcher = stats.NewWatcher(services, agg, logger)
	statsWatcher.Start()

	notifCleanup = workers.NewNotificationCleanup(
		notificationstore.New(db), logger,
		appCfg.NotificationCleanupInterval, appCfg.NotificationRetention)
	notifCleanup.Start()

	return nil
}
