// internal/app/membership/update.go
package membership

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	userstore "github.com/artom-sites/choirhub/internal/app/store/users"
	"github.com/artom-sites/choirhub/internal/app/system/apperr"
	"github.com/artom-sites/choirhub/internal/app/system/txn"
	"github.com/artom-sites/choirhub/internal/domain/models"
)

// UpdateMemberInput is a merge patch for a roster slot. Nil fields are
// left untouched.
type UpdateMemberInput struct {
	Name        *string
	Voice       *string
	Role        *string
	Permissions *[]string
}

// UpdateMember patches a roster slot. Admin-only. A missing slot is an
// error, never an implicit create: slot creation is an explicit roster
// action, and a typo in a slot id must not mint phantom members.
//
// When the slot is account-linked, role, voice, and permission changes
// mirror onto the linked user's membership entry, and onto the
// active-group fields when this group is their active group.
func (e *Engine) UpdateMember(ctx context.Context, callerUID string, groupID primitive.ObjectID, slotID string, in UpdateMemberInput) (*models.Group, error) {
	ok, err := e.authz.IsGroupAdmin(ctx, callerUID, groupID)
	if err != nil {
		return nil, apperr.Internalf("authorize: %v", err)
	}
	if !ok {
		return nil, apperr.PermissionDeniedf("roster updates require an elevated role")
	}
	if in.Role != nil && models.RoleRank(*in.Role) == 0 {
		return nil, apperr.InvalidArgumentf("unknown role %q", *in.Role)
	}

	var out *models.Group
	var linkedUID string
	err = txn.Run(ctx, e.db, e.log, func(ctx context.Context) error {
		linkedUID = ""
		g, err := e.groups.GetByID(ctx, groupID)
		if err != nil {
			return apperr.Internalf("load group: %v", err)
		}
		i := g.SlotByID(slotID)
		if i < 0 {
			return apperr.NotFoundf("roster slot %s", slotID)
		}
		slot := &g.Members[i]

		if in.Name != nil {
			slot.Name = *in.Name
		}
		if in.Voice != nil {
			slot.Voice = *in.Voice
		}
		if in.Role != nil {
			slot.Role = *in.Role
		}
		if in.Permissions != nil {
			slot.Permissions = *in.Permissions
		}

		if err := e.groups.Replace(ctx, g); err != nil {
			return apperr.Internalf("update group: %v", err)
		}

		if slot.AccountUID != "" {
			u, err := e.users.GetByID(ctx, slot.AccountUID)
			if err == userstore.ErrNotFound {
				// Link points at a deleted account; the roster write
				// already succeeded, nothing to mirror.
				out = g
				return nil
			}
			if err != nil {
				return apperr.Internalf("load linked user: %v", err)
			}
			for mi := range u.Memberships {
				if u.Memberships[mi].GroupID == groupID && in.Role != nil {
					u.Memberships[mi].Role = *in.Role
				}
			}
			if u.GroupID != nil && *u.GroupID == groupID {
				if in.Role != nil {
					u.Role = *in.Role
				}
				if in.Voice != nil {
					u.Voice = *in.Voice
				}
				if in.Permissions != nil {
					u.Permissions = *in.Permissions
				}
			}
			if err := e.users.Replace(ctx, u); err != nil {
				return apperr.Internalf("update linked user: %v", err)
			}
			linkedUID = u.ID
		}
		out = g
		return nil
	})
	if err != nil {
		return nil, err
	}

	if linkedUID != "" {
		e.syncClaims(ctx, linkedUID)
	}
	return out, nil
}
