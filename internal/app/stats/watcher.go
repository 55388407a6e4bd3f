// internal/app/stats/watcher.go
package stats

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	servicestore "github.com/artom-sites/choirhub/internal/app/store/services"
	"github.com/artom-sites/choirhub/internal/app/system/timeouts"
	"github.com/artom-sites/choirhub/internal/domain/models"
)

// Watcher is a background worker that follows the services change
// stream and feeds each write through the change guard. It is the
// per-document write trigger of the system: engine code never has to
// remember to recompute after touching a service (the merge rewrite is
// the one exception, because it deliberately writes below the guard's
// threshold).
type Watcher struct {
	services *servicestore.Store
	agg      *Aggregator
	log      *zap.Logger
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

func NewWatcher(services *servicestore.Store, agg *Aggregator, log *zap.Logger) *Watcher {
	return &Watcher{services: services, agg: agg, log: log}
}

// Start opens the change stream and begins dispatching. When the
// deployment does not support change streams (standalone dev servers)
// the watcher logs a warning and stays idle; summaries then refresh
// only through inline recomputes and the backfill job.
func (w *Watcher) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.wg.Add(1)
	go w.run(ctx)
	w.log.Info("stats watcher started")
}

// Stop closes the stream and waits for the dispatch loop to drain.
func (w *Watcher) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
	w.log.Info("stats watcher stopped")
}

// changeEvent is the slice of the change-stream document the guard
// needs: the post-image, the pre-image when the server has one, and the
// document key for deletes.
type changeEvent struct {
	OperationType string          `bson:"operationType"`
	FullDocument  *models.Service `bson:"fullDocument"`
	BeforeDoc     *models.Service `bson:"fullDocumentBeforeChange"`
	DocumentKey   struct {
		ID primitive.ObjectID `bson:"_id"`
	} `bson:"documentKey"`
}

func (w *Watcher) run(ctx context.Context) {
	defer w.wg.Done()

	opts := options.ChangeStream().
		SetFullDocument(options.UpdateLookup).
		SetFullDocumentBeforeChange(options.WhenAvailable)
	stream, err := w.services.Collection().Watch(ctx, bson.A{}, opts)
	if err != nil {
		w.log.Warn("change streams unavailable; stats updates degrade to inline and backfill recomputes",
			zap.Error(err))
		return
	}
	defer stream.Close(context.Background())

	for stream.Next(ctx) {
		var ev changeEvent
		if err := stream.Decode(&ev); err != nil {
			w.log.Error("decode change event", zap.Error(err))
			continue
		}
		w.dispatch(ev)
	}
	if err := stream.Err(); err != nil && ctx.Err() == nil {
		w.log.Error("stats change stream closed", zap.Error(err))
	}
}

func (w *Watcher) dispatch(ev changeEvent) {
	var before, after *models.Service
	switch ev.OperationType {
	case "insert":
		after = ev.FullDocument
	case "delete":
		before = ev.BeforeDoc
	case "update", "replace":
		before, after = ev.BeforeDoc, ev.FullDocument
		if after == nil {
			return
		}
		// Without a pre-image (collection not configured for them) the
		// guard cannot prove the write is vote-only, so recompute.
		if before != nil && !ShouldRecompute(before, after) {
			return
		}
	default:
		return
	}

	var groupID primitive.ObjectID
	switch {
	case after != nil:
		groupID = after.GroupID
	case before != nil:
		groupID = before.GroupID
	default:
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeouts.Long())
	defer cancel()
	if err := w.agg.Recompute(ctx, groupID); err != nil {
		w.log.Error("recompute after service change failed",
			zap.String("group_id", groupID.Hex()), zap.Error(err))
	}
}
