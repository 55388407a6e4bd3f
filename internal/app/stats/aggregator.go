// internal/app/stats/aggregator.go
package stats

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	groupstore "github.com/artom-sites/choirhub/internal/app/store/groups"
	servicestore "github.com/artom-sites/choirhub/internal/app/store/services"
	statsstore "github.com/artom-sites/choirhub/internal/app/store/stats"
	"github.com/artom-sites/choirhub/internal/app/system/txn"
)

// scaleWarnThreshold is the service count past which the whole-history
// recompute starts to deserve attention. The recompute stays correct,
// it just reads the group's entire service list every time.
const scaleWarnThreshold = 1000

// Aggregator drives summary recomputation.
type Aggregator struct {
	db       *mongo.Database
	log      *zap.Logger
	groups   *groupstore.Store
	services *servicestore.Store
	stats    *statsstore.Store
}

func NewAggregator(db *mongo.Database, log *zap.Logger, groups *groupstore.Store, services *servicestore.Store, st *statsstore.Store) *Aggregator {
	return &Aggregator{db: db, log: log, groups: groups, services: services, stats: st}
}

// Recompute rebuilds one group's summary. The read of group + services
// and the summary write run in a single transaction so the summary
// never reflects a state no client could have observed. The write is a
// full overwrite; duplicate or out-of-order recomputes converge.
func (a *Aggregator) Recompute(ctx context.Context, groupID primitive.ObjectID) error {
	return txn.Run(ctx, a.db, a.log, func(ctx context.Context) error {
		g, err := a.groups.GetByID(ctx, groupID)
		if err == groupstore.ErrNotFound {
			// Group deleted; drop the orphaned summary.
			return a.stats.Delete(ctx, groupID)
		}
		if err != nil {
			return err
		}
		services, err := a.services.FindByGroup(ctx, groupID)
		if err != nil {
			return err
		}
		if len(services) > scaleWarnThreshold {
			a.log.Warn("group exceeds full-recompute comfort zone",
				zap.String("group_id", groupID.Hex()),
				zap.Int("services", len(services)))
		}
		sum := Compute(groupID, services, g.Members, time.Now().UTC())
		return a.stats.Upsert(ctx, &sum)
	})
}
