// internal/app/identity/authorizer.go
package identity

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	principalstore "github.com/artom-sites/choirhub/internal/app/store/principals"
	userstore "github.com/artom-sites/choirhub/internal/app/store/users"
	"github.com/artom-sites/choirhub/internal/domain/models"
)

// Authorizer answers role questions for a caller. Checks read the
// claims cache first and fall back to the users collection on a miss,
// because claims are synced outside membership transactions and may
// lag the datastore.
type Authorizer struct {
	users      *userstore.Store
	principals *principalstore.Store
	log        *zap.Logger
}

func NewAuthorizer(users *userstore.Store, principals *principalstore.Store, log *zap.Logger) *Authorizer {
	return &Authorizer{users: users, principals: principals, log: log}
}

// RoleInGroup returns the caller's role in the group, or "" when the
// caller is not a member.
func (a *Authorizer) RoleInGroup(ctx context.Context, uid string, groupID primitive.ObjectID) (string, error) {
	if p, err := a.principals.GetByUID(ctx, uid); err == nil {
		if role, ok := p.Claims.RoleIn(groupID.Hex()); ok {
			return role, nil
		}
	} else if err != principalstore.ErrNotFound {
		a.log.Warn("claims lookup failed, falling back to datastore",
			zap.String("uid", uid), zap.Error(err))
	}
	role, ok, err := a.users.HasMembership(ctx, uid, groupID)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", nil
	}
	return role, nil
}

// IsMember reports whether the caller belongs to the group in any role.
func (a *Authorizer) IsMember(ctx context.Context, uid string, groupID primitive.ObjectID) (bool, error) {
	role, err := a.RoleInGroup(ctx, uid, groupID)
	if err != nil {
		return false, err
	}
	return role != "", nil
}

// IsGroupAdmin reports whether the caller holds an elevated role in the
// group.
func (a *Authorizer) IsGroupAdmin(ctx context.Context, uid string, groupID primitive.ObjectID) (bool, error) {
	role, err := a.RoleInGroup(ctx, uid, groupID)
	if err != nil {
		return false, err
	}
	return models.IsElevatedRole(role), nil
}

// HasElevatedAnywhere reports whether the caller holds an elevated role
// in at least one group.
func (a *Authorizer) HasElevatedAnywhere(ctx context.Context, uid string) (bool, error) {
	if p, err := a.principals.GetByUID(ctx, uid); err == nil && len(p.Claims.Groups) > 0 {
		for _, role := range p.Claims.Groups {
			if models.IsElevatedRole(role) {
				return true, nil
			}
		}
		return false, nil
	}
	u, err := a.users.GetByID(ctx, uid)
	if err == userstore.ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	for _, m := range u.Memberships {
		if models.IsElevatedRole(m.Role) {
			return true, nil
		}
	}
	if len(u.Memberships) == 0 && u.GroupID != nil && models.IsElevatedRole(u.Role) {
		return true, nil
	}
	return false, nil
}

// IsSuperAdmin reports whether the caller carries the super-admin claim.
func (a *Authorizer) IsSuperAdmin(ctx context.Context, uid string) (bool, error) {
	p, err := a.principals.GetByUID(ctx, uid)
	if err == principalstore.ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return p.Claims.SuperAdmin, nil
}
