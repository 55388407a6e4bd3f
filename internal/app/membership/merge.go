// internal/app/membership/merge.go
package membership

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/artom-sites/choirhub/internal/app/system/apperr"
	"github.com/artom-sites/choirhub/internal/app/system/txn"
	"github.com/artom-sites/choirhub/internal/domain/models"
)

// MergeSlots folds the roster slot fromID into toID, for rosters where
// the same person ended up as two entries (a manual entry plus a shadow
// slot, or two manual entries).
//
// The attendance rewrite runs first, outside the roster transaction: it
// is chunked, idempotent, and safe to re-run, while holding a
// transaction open across an unbounded service history is not. Only
// after every service record references toID does the roster
// transaction remove the from slot and carry its account links over.
func (e *Engine) MergeSlots(ctx context.Context, callerUID string, groupID primitive.ObjectID, fromID, toID string) (*models.Group, error) {
	if fromID == toID {
		return nil, apperr.InvalidArgumentf("cannot merge a slot into itself")
	}
	ok, err := e.authz.IsGroupAdmin(ctx, callerUID, groupID)
	if err != nil {
		return nil, apperr.Internalf("authorize: %v", err)
	}
	if !ok {
		return nil, apperr.PermissionDeniedf("merge requires an elevated role")
	}

	// Validate both slots exist before touching attendance history.
	g, err := e.groups.GetByID(ctx, groupID)
	if err != nil {
		return nil, apperr.Internalf("load group: %v", err)
	}
	if g.SlotByID(fromID) < 0 {
		return nil, apperr.NotFoundf("roster slot %s", fromID)
	}
	if g.SlotByID(toID) < 0 {
		return nil, apperr.NotFoundf("roster slot %s", toID)
	}

	rewritten, err := e.services.ReplaceMemberID(ctx, groupID, fromID, toID)
	if err != nil {
		return nil, apperr.Internalf("rewrite attendance: %v", err)
	}
	if rewritten > 0 {
		e.log.Info("merge rewrote attendance records",
			zap.String("group_id", groupID.Hex()),
			zap.String("from", fromID), zap.String("to", toID),
			zap.Int("services", rewritten))
	}

	var out *models.Group
	err = txn.Run(ctx, e.db, e.log, func(ctx context.Context) error {
		g, err := e.groups.GetByID(ctx, groupID)
		if err != nil {
			return apperr.Internalf("load group: %v", err)
		}
		fi := g.SlotByID(fromID)
		if fi < 0 {
			// Already merged by a concurrent or retried call.
			out = g
			return nil
		}
		from := g.Members[fi]
		ti := g.SlotByID(toID)
		if ti < 0 {
			return apperr.NotFoundf("roster slot %s", toID)
		}

		g.Members = append(g.Members[:fi], g.Members[fi+1:]...)
		to := &g.Members[g.SlotByID(toID)]

		if from.AccountUID != "" {
			if to.AccountUID == "" {
				to.AccountUID = from.AccountUID
			} else if to.AccountUID != from.AccountUID {
				to.LinkedUserIDs = appendUnique(to.LinkedUserIDs, from.AccountUID)
			}
		}
		for _, id := range from.LinkedUserIDs {
			if id != to.AccountUID {
				to.LinkedUserIDs = appendUnique(to.LinkedUserIDs, id)
			}
		}
		if from.HasAccount {
			to.HasAccount = true
			// The absorbed slot id itself is recorded as a link: the
			// account association must stay discoverable under the old id
			// after the slot is gone.
			if fromID != to.AccountUID {
				to.LinkedUserIDs = appendUnique(to.LinkedUserIDs, fromID)
			}
		}
		to.Role = models.UpgradeRole(to.Role, from.Role)
		to.Permissions = models.UnionPermissions(to.Permissions, from.Permissions)

		if err := e.groups.Replace(ctx, g); err != nil {
			return apperr.Internalf("update group: %v", err)
		}
		out = g
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Attendance sets changed under the guard's radar; refresh directly.
	e.recomputeStats(ctx, groupID)
	if from := out.SlotByID(toID); from >= 0 {
		if uid := out.Members[from].AccountUID; uid != "" {
			e.syncClaims(ctx, uid)
		}
	}
	return out, nil
}

func appendUnique(list []string, v string) []string {
	for _, x := range list {
		if x == v {
			return list
		}
	}
	return append(list, v)
}
