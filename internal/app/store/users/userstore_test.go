// internal/app/store/users/userstore_test.go
package userstore_test

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"

	userstore "github.com/artom-sites/choirhub/internal/app/store/users"
	"github.com/artom-sites/choirhub/internal/domain/models"
	"github.com/artom-sites/choirhub/internal/testutil"
)

func TestAddNotificationTokenMovesTokenBetweenUsers(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	fx := testutil.NewFixtures(t, db)
	store := userstore.New(db)

	fx.CreateUser(ctx, "uid-a", "A")
	fx.CreateUser(ctx, "uid-b", "B")

	if err := store.AddNotificationToken(ctx, "uid-a", "tok-1"); err != nil {
		t.Fatalf("first add: %v", err)
	}
	// Same device registers under a different account.
	if err := store.AddNotificationToken(ctx, "uid-b", "tok-1"); err != nil {
		t.Fatalf("second add: %v", err)
	}

	var a, b models.User
	if err := db.Collection("users").FindOne(ctx, bson.M{"_id": "uid-a"}).Decode(&a); err != nil {
		t.Fatal(err)
	}
	if err := db.Collection("users").FindOne(ctx, bson.M{"_id": "uid-b"}).Decode(&b); err != nil {
		t.Fatal(err)
	}
	if len(a.NotificationTokens) != 0 {
		t.Errorf("uid-a tokens = %v, want token removed", a.NotificationTokens)
	}
	if len(b.NotificationTokens) != 1 || b.NotificationTokens[0] != "tok-1" {
		t.Errorf("uid-b tokens = %v, want [tok-1]", b.NotificationTokens)
	}
}

func TestAddNotificationTokenIsIdempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	fx := testutil.NewFixtures(t, db)
	store := userstore.New(db)

	fx.CreateUser(ctx, "uid-a", "A")
	for i := 0; i < 3; i++ {
		if err := store.AddNotificationToken(ctx, "uid-a", "tok-1"); err != nil {
			t.Fatalf("add %d: %v", i, err)
		}
	}

	var a models.User
	if err := db.Collection("users").FindOne(ctx, bson.M{"_id": "uid-a"}).Decode(&a); err != nil {
		t.Fatal(err)
	}
	if len(a.NotificationTokens) != 1 {
		t.Errorf("tokens = %v, want single entry", a.NotificationTokens)
	}
}

func TestHasMembershipLegacyActiveGroupFallback(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	fx := testutil.NewFixtures(t, db)
	store := userstore.New(db)

	fx.CreateUser(ctx, "uid-legacy", "Legacy")
	g := fx.CreateGroup(ctx, "Old Choir", nil)

	// Legacy documents carry only the active-group fields, no
	// memberships mirror.
	gid := g.ID
	if _, err := db.Collection("users").UpdateByID(ctx, "uid-legacy", bson.M{
		"$set": bson.M{"group_id": gid, "group_name": g.Name, "role": models.RoleRegent},
	}); err != nil {
		t.Fatal(err)
	}

	role, ok, err := store.HasMembership(ctx, "uid-legacy", gid)
	if err != nil {
		t.Fatalf("HasMembership: %v", err)
	}
	if !ok || role != models.RoleRegent {
		t.Errorf("got (%q, %v), want legacy regent membership", role, ok)
	}

	_, ok, err = store.HasMembership(ctx, "uid-missing", gid)
	if err != nil || ok {
		t.Errorf("missing user: got (ok=%v, err=%v), want clean negative", ok, err)
	}
}
