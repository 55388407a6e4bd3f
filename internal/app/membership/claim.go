// internal/app/membership/claim.go
package membership

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	userstore "github.com/artom-sites/choirhub/internal/app/store/users"
	"github.com/artom-sites/choirhub/internal/app/system/apperr"
	"github.com/artom-sites/choirhub/internal/app/system/txn"
	"github.com/artom-sites/choirhub/internal/domain/models"
)

// ClaimSlot links the caller's account to the roster slot slotID ("this
// manual entry is me"). The caller is detached from any slot they were
// linked to before, so at most one slot per group resolves to a given
// account. If the caller arrived through a join that auto-created a
// shadow slot under their own UID, that shadow is marked duplicate
// rather than deleted: its id may already appear in attendance sets.
func (e *Engine) ClaimSlot(ctx context.Context, callerUID string, groupID primitive.ObjectID, slotID string) (*models.Group, error) {
	if slotID == callerUID {
		return nil, apperr.InvalidArgumentf("cannot claim own shadow slot")
	}

	var out *models.Group
	err := txn.Run(ctx, e.db, e.log, func(ctx context.Context) error {
		u, err := e.users.GetByID(ctx, callerUID)
		if err == userstore.ErrNotFound {
			return apperr.NotFoundf("user %s", callerUID)
		}
		if err != nil {
			return apperr.Internalf("load user: %v", err)
		}
		if _, ok := u.MembershipByGroup(groupID); !ok {
			return apperr.PermissionDeniedf("not a member of group %s", groupID.Hex())
		}

		g, err := e.groups.GetByID(ctx, groupID)
		if err != nil {
			return apperr.Internalf("load group: %v", err)
		}
		ti := g.SlotByID(slotID)
		if ti < 0 {
			return apperr.NotFoundf("roster slot %s", slotID)
		}
		target := &g.Members[ti]
		if target.ResolvesTo(callerUID) {
			out = g
			return nil
		}

		// Detach from the previously claimed slot, if any.
		if pi := g.SlotResolvingTo(callerUID); pi >= 0 {
			prev := &g.Members[pi]
			if prev.AccountUID == callerUID {
				prev.AccountUID = ""
			}
			kept := prev.LinkedUserIDs[:0]
			for _, id := range prev.LinkedUserIDs {
				if id != callerUID {
					kept = append(kept, id)
				}
			}
			prev.LinkedUserIDs = kept
			prev.HasAccount = prev.AccountUID != "" || len(prev.LinkedUserIDs) > 0
		}

		if target.AccountUID == "" {
			target.AccountUID = callerUID
		} else {
			target.LinkedUserIDs = append(target.LinkedUserIDs, callerUID)
		}
		target.HasAccount = true

		// The caller's shadow slot (id == UID, no accountUid) is now
		// redundant; soft-delete it so the roster stops double counting
		// while its attendance history stays resolvable.
		if si := g.SlotByID(callerUID); si >= 0 && si != ti {
			shadow := &g.Members[si]
			if shadow.AccountUID == "" {
				shadow.IsDuplicate = true
			}
		}

		if err := e.groups.Replace(ctx, g); err != nil {
			return apperr.Internalf("update group: %v", err)
		}
		out = g
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.syncClaims(ctx, callerUID)
	return out, nil
}
