// Package membership is the transaction engine for group membership.
// Every mutating operation follows the same shape: resolve and validate
// outside the transaction, then re-read every touched document inside
// txn.Run, mutate in memory, and write documents back whole. Slot
// offsets are recomputed inside each transaction and never persisted.
//
// After a successful mutation the engine re-syncs the caller's claims
// cache best-effort; a sync failure is logged and never fails the
// operation.
package membership

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/artom-sites/choirhub/internal/app/identity"
	groupstore "github.com/artom-sites/choirhub/internal/app/store/groups"
	principalstore "github.com/artom-sites/choirhub/internal/app/store/principals"
	servicestore "github.com/artom-sites/choirhub/internal/app/store/services"
	statsstore "github.com/artom-sites/choirhub/internal/app/store/stats"
	userstore "github.com/artom-sites/choirhub/internal/app/store/users"
)

// Engine executes membership operations.
type Engine struct {
	db         *mongo.Database
	log        *zap.Logger
	users      *userstore.Store
	groups     *groupstore.Store
	services   *servicestore.Store
	stats      *statsstore.Store
	principals *principalstore.Store
	authz      *identity.Authorizer
	syncer     *identity.Syncer
	recompute  func(context.Context, primitive.ObjectID) error
}

// Deps bundles the engine's collaborators.
type Deps struct {
	DB         *mongo.Database
	Log        *zap.Logger
	Users      *userstore.Store
	Groups     *groupstore.Store
	Services   *servicestore.Store
	Stats      *statsstore.Store
	Principals *principalstore.Store
	Authz      *identity.Authorizer
	Syncer     *identity.Syncer

	// Recompute refreshes a group's statistics summary. Operations that
	// rewrite attendance history call it directly because the change
	// guard deliberately ignores attendance-set updates.
	Recompute func(context.Context, primitive.ObjectID) error
}

func NewEngine(d Deps) *Engine {
	return &Engine{
		db:         d.DB,
		log:        d.Log,
		users:      d.Users,
		groups:     d.Groups,
		services:   d.Services,
		stats:      d.Stats,
		principals: d.Principals,
		authz:      d.Authz,
		syncer:     d.Syncer,
		recompute:  d.Recompute,
	}
}

// recomputeStats refreshes the group's summary. Best-effort; a failed
// recompute is repaired by the next trigger or by the backfill job.
func (e *Engine) recomputeStats(ctx context.Context, groupID primitive.ObjectID) {
	if e.recompute == nil {
		return
	}
	if err := e.recompute(ctx, groupID); err != nil {
		e.log.Warn("stats recompute failed",
			zap.String("group_id", groupID.Hex()), zap.Error(err))
	}
}

// syncClaims refreshes the claims cache after a mutation. Best-effort.
func (e *Engine) syncClaims(ctx context.Context, uid string) {
	if err := e.syncer.SyncClaims(ctx, uid); err != nil {
		e.log.Warn("claims sync failed", zap.String("uid", uid), zap.Error(err))
	}
}
