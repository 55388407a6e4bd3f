// internal/app/membership/delete.go
package membership

import (
	"context"

	"go.uber.org/zap"

	userstore "github.com/artom-sites/choirhub/internal/app/store/users"
	"github.com/artom-sites/choirhub/internal/app/system/apperr"
	"github.com/artom-sites/choirhub/internal/app/system/txn"
)

// DeleteSelf deletes the caller's own account. See deleteAccount for
// what removal means for rosters.
func (e *Engine) DeleteSelf(ctx context.Context, callerUID string) error {
	return e.deleteAccount(ctx, callerUID)
}

// DeleteUser deletes another user's account. The caller must hold an
// elevated role somewhere; self-deletion goes through DeleteSelf so the
// audit trail distinguishes the two.
func (e *Engine) DeleteUser(ctx context.Context, callerUID, targetUID string) error {
	if targetUID == callerUID {
		return apperr.InvalidArgumentf("use self-deletion to remove your own account")
	}
	ok, err := e.authz.HasElevatedAnywhere(ctx, callerUID)
	if err != nil {
		return apperr.Internalf("authorize: %v", err)
	}
	if !ok {
		return apperr.PermissionDeniedf("deleting accounts requires an elevated role")
	}
	return e.deleteAccount(ctx, targetUID)
}

// deleteAccount removes the user document and principal, and detaches
// the account from every roster it is linked to. Roster slots are kept,
// demoted back to unlinked entries: the person may still sing in the
// group, they just no longer have an account, and attendance history
// keyed by the slot id stays intact.
func (e *Engine) deleteAccount(ctx context.Context, uid string) error {
	err := txn.Run(ctx, e.db, e.log, func(ctx context.Context) error {
		u, err := e.users.GetByID(ctx, uid)
		if err == userstore.ErrNotFound {
			return apperr.NotFoundf("user %s", uid)
		}
		if err != nil {
			return apperr.Internalf("load user: %v", err)
		}

		for _, m := range u.Memberships {
			g, err := e.groups.GetByID(ctx, m.GroupID)
			if err != nil {
				return apperr.Internalf("load group %s: %v", m.GroupID.Hex(), err)
			}
			changed := false
			for i := range g.Members {
				slot := &g.Members[i]
				if !slot.ResolvesTo(uid) {
					continue
				}
				if slot.AccountUID == uid {
					slot.AccountUID = ""
				}
				kept := slot.LinkedUserIDs[:0]
				for _, id := range slot.LinkedUserIDs {
					if id != uid {
						kept = append(kept, id)
					}
				}
				slot.LinkedUserIDs = kept
				slot.HasAccount = slot.AccountUID != "" || len(slot.LinkedUserIDs) > 0
				changed = true
			}
			if changed {
				if err := e.groups.Replace(ctx, g); err != nil {
					return apperr.Internalf("update group %s: %v", g.ID.Hex(), err)
				}
			}
		}

		if err := e.users.Delete(ctx, uid); err != nil && err != userstore.ErrNotFound {
			return apperr.Internalf("delete user: %v", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := e.principals.Delete(ctx, uid); err != nil {
		e.log.Warn("principal delete failed", zap.String("uid", uid), zap.Error(err))
	}
	return nil
}
