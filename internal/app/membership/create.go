// internal/app/membership/create.go
package membership

import (
	"context"
	"strings"

	"github.com/dalemusser/waffle/pantry/text"

	userstore "github.com/artom-sites/choirhub/internal/app/store/users"
	"github.com/artom-sites/choirhub/internal/app/system/apperr"
	"github.com/artom-sites/choirhub/internal/app/system/txn"
	"github.com/artom-sites/choirhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CreateGroupInput carries the fields of a group-creation request.
type CreateGroupInput struct {
	Name string
	Type string
}

// CreateGroup creates a group with fresh invite codes and seats the
// caller as its head. The new group becomes the caller's active group.
func (e *Engine) CreateGroup(ctx context.Context, callerUID string, in CreateGroupInput) (*models.Group, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.InvalidArgumentf("group name is required")
	}
	if !models.IsValidGroupType(in.Type) {
		return nil, apperr.InvalidArgumentf("unknown group type %q", in.Type)
	}

	memberCode, err := GenerateCode()
	if err != nil {
		return nil, apperr.Internalf("generate member code: %v", err)
	}
	regentCode, err := GenerateCode()
	if err != nil {
		return nil, apperr.Internalf("generate regent code: %v", err)
	}

	g := &models.Group{
		ID:         primitive.NewObjectID(),
		Name:       name,
		NameCI:     text.Fold(name),
		Type:       in.Type,
		MemberCode: memberCode,
		RegentCode: regentCode,
	}

	err = txn.Run(ctx, e.db, e.log, func(ctx context.Context) error {
		u, err := e.users.GetByID(ctx, callerUID)
		if err == userstore.ErrNotFound {
			return apperr.NotFoundf("user %s", callerUID)
		}
		if err != nil {
			return apperr.Internalf("load user: %v", err)
		}

		g.Members = []models.RosterSlot{{
			ID:         callerUID,
			Name:       u.FullName,
			Role:       models.RoleHead,
			HasAccount: true,
			AccountUID: callerUID,
		}}
		if err := e.groups.Insert(ctx, g); err != nil {
			return apperr.Internalf("insert group: %v", err)
		}

		u.Memberships = append(u.Memberships, models.Membership{
			GroupID:   g.ID,
			GroupName: g.Name,
			Role:      models.RoleHead,
			GroupType: g.Type,
		})
		gid := g.ID
		u.GroupID = &gid
		u.GroupName = g.Name
		u.Role = models.RoleHead
		if err := e.users.Replace(ctx, u); err != nil {
			return apperr.Internalf("update user: %v", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.syncClaims(ctx, callerUID)
	return g, nil
}
