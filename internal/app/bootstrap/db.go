// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"

	"github.com/artom-sites/choirhub/internal/app/system/indexes"
)

// EnsureSchema creates collection indexes. Index creation is idempotent
// on the server, so this runs on every startup.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if err := indexes.Ensure(ctx, deps.MongoDatabase); err != nil {
		return err
	}
	logger.Info("collection indexes ensured")
	return nil
}
