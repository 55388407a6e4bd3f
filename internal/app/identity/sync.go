// internal/app/identity/sync.go
package identity

import (
	"context"
	"strings"

	"go.uber.org/zap"

	principalstore "github.com/artom-sites/choirhub/internal/app/store/principals"
	userstore "github.com/artom-sites/choirhub/internal/app/store/users"
	"github.com/artom-sites/choirhub/internal/domain/models"
)

// Syncer rebuilds the claims cache of a principal from the user's
// membership mirror. Sync runs after every mutating membership
// operation, outside that operation's transaction: a sync failure never
// rolls back the operation, it only leaves the cache stale until the
// next sync, and every read path falls back to the users collection.
type Syncer struct {
	users       *userstore.Store
	principals  *principalstore.Store
	superAdmins []string
	log         *zap.Logger
}

func NewSyncer(users *userstore.Store, principals *principalstore.Store, superAdmins []string, log *zap.Logger) *Syncer {
	return &Syncer{users: users, principals: principals, superAdmins: superAdmins, log: log}
}

// SyncClaims derives fresh claims for uid and writes them to the
// principal record. Best-effort: callers log the returned error and
// move on.
func (s *Syncer) SyncClaims(ctx context.Context, uid string) error {
	u, err := s.users.GetByID(ctx, uid)
	if err == userstore.ErrNotFound {
		// Account deleted; clear the cache if the principal survives.
		err = s.principals.SetClaims(ctx, uid, models.Claims{})
		if err == principalstore.ErrNotFound {
			return nil
		}
		return err
	}
	if err != nil {
		return err
	}
	claims := DeriveClaims(u, s.superAdmins)
	if err := s.principals.SetClaims(ctx, uid, claims); err != nil && err != principalstore.ErrNotFound {
		return err
	}
	return nil
}

// DeriveClaims computes the claims cache from a user document. The
// membership mirror is authoritative; when it is empty, legacy records
// that only carry the active-group pointer still yield a claim for that
// group.
func DeriveClaims(u *models.User, superAdminEmails []string) models.Claims {
	claims := models.Claims{}
	if len(u.Memberships) > 0 {
		claims.Groups = make(map[string]string, len(u.Memberships))
		for _, m := range u.Memberships {
			claims.Groups[m.GroupID.Hex()] = m.Role
		}
	} else if u.GroupID != nil {
		role := u.Role
		if role == "" {
			role = models.RoleMember
		}
		claims.Groups = map[string]string{u.GroupID.Hex(): role}
	}
	for _, email := range superAdminEmails {
		if strings.EqualFold(email, u.Email) {
			claims.SuperAdmin = true
			break
		}
	}
	return claims
}
