// internal/app/identity/sync_test.go
package identity

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/artom-sites/choirhub/internal/domain/models"
)

func TestDeriveClaimsFromMemberships(t *testing.T) {
	g1 := primitive.NewObjectID()
	g2 := primitive.NewObjectID()
	u := &models.User{
		ID:    "uid-1",
		Email: "singer@example.com",
		Memberships: []models.Membership{
			{GroupID: g1, Role: models.RoleMember},
			{GroupID: g2, Role: models.RoleHead},
		},
	}

	claims := DeriveClaims(u, nil)
	if len(claims.Groups) != 2 {
		t.Fatalf("groups = %d, want 2", len(claims.Groups))
	}
	if role, _ := claims.RoleIn(g1.Hex()); role != models.RoleMember {
		t.Errorf("role in g1 = %q, want member", role)
	}
	if role, _ := claims.RoleIn(g2.Hex()); role != models.RoleHead {
		t.Errorf("role in g2 = %q, want head", role)
	}
	if claims.SuperAdmin {
		t.Error("SuperAdmin = true, want false")
	}
}

func TestDeriveClaimsLegacyActiveGroupFallback(t *testing.T) {
	g := primitive.NewObjectID()
	u := &models.User{
		ID:      "uid-legacy",
		GroupID: &g,
		Role:    models.RoleRegent,
	}

	claims := DeriveClaims(u, nil)
	role, ok := claims.RoleIn(g.Hex())
	if !ok || role != models.RoleRegent {
		t.Fatalf("role = %q ok=%v, want regent via legacy fallback", role, ok)
	}
}

func TestDeriveClaimsLegacyDefaultsToMember(t *testing.T) {
	g := primitive.NewObjectID()
	u := &models.User{ID: "uid-legacy", GroupID: &g}

	claims := DeriveClaims(u, nil)
	if role, _ := claims.RoleIn(g.Hex()); role != models.RoleMember {
		t.Fatalf("role = %q, want member default", role)
	}
}

func TestDeriveClaimsSuperAdminAllowList(t *testing.T) {
	u := &models.User{ID: "uid-admin", Email: "Ops@Example.COM"}

	claims := DeriveClaims(u, []string{"ops@example.com"})
	if !claims.SuperAdmin {
		t.Fatal("SuperAdmin = false, want true (case-insensitive match)")
	}
	if len(claims.Groups) != 0 {
		t.Errorf("groups = %d, want 0", len(claims.Groups))
	}
}

func TestDeriveClaimsNoGroups(t *testing.T) {
	u := &models.User{ID: "uid-bare", Email: "bare@example.com"}

	claims := DeriveClaims(u, nil)
	if len(claims.Groups) != 0 || claims.SuperAdmin {
		t.Fatalf("claims = %+v, want empty", claims)
	}
}
