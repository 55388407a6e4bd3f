// internal/app/membership/join.go
package membership

import (
	"context"

	userstore "github.com/artom-sites/choirhub/internal/app/store/users"
	"github.com/artom-sites/choirhub/internal/app/system/apperr"
	"github.com/artom-sites/choirhub/internal/app/system/txn"
	"github.com/artom-sites/choirhub/internal/domain/models"
)

// JoinResult is what a join returns to the client: the joined group,
// the caller's effective role, and the unlinked roster slots the caller
// may claim as "this is me".
type JoinResult struct {
	Group         *models.Group       `json:"group"`
	Role          string              `json:"role"`
	UnlinkedSlots []models.RosterSlot `json:"unlinked_slots,omitempty"`
	AlreadyMember bool                `json:"already_member"`
}

// JoinGroup joins the caller to the group an invite code resolves to.
//
// Joining is additive and idempotent: the membership role only
// escalates, admin-code permissions union into the existing set, and a
// join that changes nothing is a successful no-op. A join never creates
// a roster slot; linking the caller to a slot is the claim operation's
// job. If a slot already resolves to the caller its role and
// permissions are brought up to the granted level.
func (e *Engine) JoinGroup(ctx context.Context, callerUID, code string) (*JoinResult, error) {
	rc, err := e.resolveCode(ctx, code)
	if err != nil {
		return nil, err
	}

	var res *JoinResult
	err = txn.Run(ctx, e.db, e.log, func(ctx context.Context) error {
		u, err := e.users.GetByID(ctx, callerUID)
		if err == userstore.ErrNotFound {
			return apperr.NotFoundf("user %s", callerUID)
		}
		if err != nil {
			return apperr.Internalf("load user: %v", err)
		}
		g, err := e.groups.GetByID(ctx, rc.group.ID)
		if err != nil {
			return apperr.Internalf("load group: %v", err)
		}

		role := rc.role
		perms := rc.permissions
		existing, isMember := u.MembershipByGroup(g.ID)
		if isMember {
			role = models.UpgradeRole(existing.Role, rc.role)
		}
		perms = models.UnionPermissions(u.Permissions, perms)

		userChanged := false
		if !isMember {
			u.Memberships = append(u.Memberships, models.Membership{
				GroupID:   g.ID,
				GroupName: g.Name,
				Role:      role,
				GroupType: g.Type,
			})
			userChanged = true
		} else if existing.Role != role {
			for i := range u.Memberships {
				if u.Memberships[i].GroupID == g.ID {
					u.Memberships[i].Role = role
				}
			}
			userChanged = true
		}
		if !models.SamePermissions(u.Permissions, perms) {
			u.Permissions = perms
			userChanged = true
		}
		if u.GroupID == nil || *u.GroupID == g.ID {
			gid := g.ID
			if u.GroupID == nil || u.GroupName != g.Name || u.Role != role {
				u.GroupID = &gid
				u.GroupName = g.Name
				u.Role = role
				userChanged = true
			}
		}

		groupChanged := false
		if i := g.SlotResolvingTo(callerUID); i >= 0 {
			slot := &g.Members[i]
			upgraded := models.UpgradeRole(slot.Role, role)
			if slot.Role != upgraded {
				slot.Role = upgraded
				groupChanged = true
			}
			merged := models.UnionPermissions(slot.Permissions, rc.permissions)
			if !models.SamePermissions(slot.Permissions, merged) {
				slot.Permissions = merged
				groupChanged = true
			}
		}

		if userChanged {
			if err := e.users.Replace(ctx, u); err != nil {
				return apperr.Internalf("update user: %v", err)
			}
		}
		if groupChanged {
			if err := e.groups.Replace(ctx, g); err != nil {
				return apperr.Internalf("update group: %v", err)
			}
		}

		res = &JoinResult{
			Group:         g,
			Role:          role,
			UnlinkedSlots: g.UnlinkedSlots(),
			AlreadyMember: isMember,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.syncClaims(ctx, callerUID)
	return res, nil
}
