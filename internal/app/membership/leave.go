// internal/app/membership/leave.go
package membership

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	userstore "github.com/artom-sites/choirhub/internal/app/store/users"
	"github.com/artom-sites/choirhub/internal/app/system/apperr"
	"github.com/artom-sites/choirhub/internal/app/system/txn"
)

// LeaveGroup removes the caller from a group: the membership mirror
// entry goes away, the roster slot that resolves to the caller (if any)
// is removed, and the active-group pointer is cleared when it pointed
// at this group. Attendance records keep the departed slot's id; the
// stats pipeline tolerates ids that no longer appear on the roster.
func (e *Engine) LeaveGroup(ctx context.Context, callerUID string, groupID primitive.ObjectID) error {
	err := txn.Run(ctx, e.db, e.log, func(ctx context.Context) error {
		u, err := e.users.GetByID(ctx, callerUID)
		if err == userstore.ErrNotFound {
			return apperr.NotFoundf("user %s", callerUID)
		}
		if err != nil {
			return apperr.Internalf("load user: %v", err)
		}
		if _, ok := u.MembershipByGroup(groupID); !ok {
			return apperr.NotFoundf("not a member of group %s", groupID.Hex())
		}

		g, err := e.groups.GetByID(ctx, groupID)
		if err != nil {
			return apperr.Internalf("load group: %v", err)
		}

		if i := g.SlotResolvingTo(callerUID); i >= 0 {
			g.Members = append(g.Members[:i], g.Members[i+1:]...)
			if err := e.groups.Replace(ctx, g); err != nil {
				return apperr.Internalf("update group: %v", err)
			}
		}

		kept := u.Memberships[:0]
		for _, m := range u.Memberships {
			if m.GroupID != groupID {
				kept = append(kept, m)
			}
		}
		u.Memberships = kept
		if u.GroupID != nil && *u.GroupID == groupID {
			u.GroupID = nil
			u.GroupName = ""
			u.Role = ""
			u.Voice = ""
		}
		if err := e.users.Replace(ctx, u); err != nil {
			return apperr.Internalf("update user: %v", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	e.syncClaims(ctx, callerUID)
	return nil
}

// SetActiveGroup switches the caller's active-group pointer to one of
// their existing memberships.
func (e *Engine) SetActiveGroup(ctx context.Context, callerUID string, groupID primitive.ObjectID) error {
	err := txn.Run(ctx, e.db, e.log, func(ctx context.Context) error {
		u, err := e.users.GetByID(ctx, callerUID)
		if err == userstore.ErrNotFound {
			return apperr.NotFoundf("user %s", callerUID)
		}
		if err != nil {
			return apperr.Internalf("load user: %v", err)
		}
		m, ok := u.MembershipByGroup(groupID)
		if !ok {
			return apperr.NotFoundf("not a member of group %s", groupID.Hex())
		}
		gid := groupID
		u.GroupID = &gid
		u.GroupName = m.GroupName
		u.Role = m.Role

		g, err := e.groups.GetByID(ctx, groupID)
		if err != nil {
			return apperr.Internalf("load group: %v", err)
		}
		u.Voice = ""
		if i := g.SlotResolvingTo(callerUID); i >= 0 {
			u.Voice = g.Members[i].Voice
		}
		if err := e.users.Replace(ctx, u); err != nil {
			return apperr.Internalf("update user: %v", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	e.syncClaims(ctx, callerUID)
	return nil
}
