// internal/app/store/services/servicestore_test.go
package servicestore_test

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	servicestore "github.com/artom-sites/choirhub/internal/app/store/services"
	"github.com/artom-sites/choirhub/internal/testutil"
)

func TestVoteMovesBetweenSets(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	fx := testutil.NewFixtures(t, db)
	store := servicestore.New(db)

	g := fx.CreateGroup(ctx, "Vox", nil)
	svc := fx.CreateService(ctx, g.ID, time.Date(2025, 5, 4, 10, 0, 0, 0, time.UTC), false)

	if err := store.Vote(ctx, svc.ID, "uid-1", true); err != nil {
		t.Fatalf("vote present: %v", err)
	}
	if err := store.Vote(ctx, svc.ID, "uid-1", false); err != nil {
		t.Fatalf("vote absent: %v", err)
	}

	got, err := store.GetByID(ctx, svc.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.ConfirmedMembers) != 0 {
		t.Errorf("confirmed = %v, want vote moved out", got.ConfirmedMembers)
	}
	if len(got.AbsentMembers) != 1 || got.AbsentMembers[0] != "uid-1" {
		t.Errorf("absent = %v, want [uid-1]", got.AbsentMembers)
	}
}

func TestVoteRejectsFinalizedAndDeleted(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	fx := testutil.NewFixtures(t, db)
	store := servicestore.New(db)

	g := fx.CreateGroup(ctx, "Vox", nil)
	final := fx.CreateService(ctx, g.ID, time.Date(2025, 5, 4, 10, 0, 0, 0, time.UTC), true)
	if err := store.Vote(ctx, final.ID, "uid-1", true); err != servicestore.ErrNotFound {
		t.Errorf("vote on finalized: err = %v, want ErrNotFound", err)
	}

	gone := fx.CreateService(ctx, g.ID, time.Date(2025, 5, 11, 10, 0, 0, 0, time.UTC), false)
	if err := store.SoftDelete(ctx, gone.ID); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}
	if err := store.Vote(ctx, gone.ID, "uid-1", true); err != servicestore.ErrNotFound {
		t.Errorf("vote on deleted: err = %v, want ErrNotFound", err)
	}
}

func TestSoftDeleteOnlyOnce(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	fx := testutil.NewFixtures(t, db)
	store := servicestore.New(db)

	g := fx.CreateGroup(ctx, "Vox", nil)
	svc := fx.CreateService(ctx, g.ID, time.Date(2025, 5, 4, 10, 0, 0, 0, time.UTC), false)

	if err := store.SoftDelete(ctx, svc.ID); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if err := store.SoftDelete(ctx, svc.ID); err != servicestore.ErrNotFound {
		t.Errorf("second delete: err = %v, want ErrNotFound", err)
	}
}

func TestReplaceMemberID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	fx := testutil.NewFixtures(t, db)
	store := servicestore.New(db)

	g := fx.CreateGroup(ctx, "Vox", nil)
	s1 := fx.CreateService(ctx, g.ID, time.Date(2025, 5, 4, 10, 0, 0, 0, time.UTC), true)
	s2 := fx.CreateService(ctx, g.ID, time.Date(2025, 5, 11, 10, 0, 0, 0, time.UTC), true)
	s3 := fx.CreateService(ctx, g.ID, time.Date(2025, 5, 18, 10, 0, 0, 0, time.UTC), true)

	seed := func(id interface{}, update bson.M) {
		if _, err := db.Collection("services").UpdateByID(ctx, id, bson.M{"$set": update}); err != nil {
			t.Fatal(err)
		}
	}
	seed(s1.ID, bson.M{"confirmed_members": []string{"old", "other"}})
	// Both ids already present: replacement must collapse, not duplicate.
	seed(s2.ID, bson.M{"absent_members": []string{"old", "new"}})
	seed(s3.ID, bson.M{"confirmed_members": []string{"other"}})

	n, err := store.ReplaceMemberID(ctx, g.ID, "old", "new")
	if err != nil {
		t.Fatalf("ReplaceMemberID: %v", err)
	}
	if n != 2 {
		t.Errorf("affected = %d, want 2", n)
	}

	got1, err := store.GetByID(ctx, s1.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got1.HasMember("old") || !got1.HasMember("new") || !got1.HasMember("other") {
		t.Errorf("s1 confirmed = %v, want old rewritten to new", got1.ConfirmedMembers)
	}

	got2, err := store.GetByID(ctx, s2.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got2.AbsentMembers) != 1 || got2.AbsentMembers[0] != "new" {
		t.Errorf("s2 absent = %v, want single [new]", got2.AbsentMembers)
	}

	// Re-running is a no-op repair path.
	if _, err := store.ReplaceMemberID(ctx, g.ID, "old", "new"); err != nil {
		t.Fatalf("second run: %v", err)
	}
}

func TestEnablePreImages(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	store := servicestore.New(db)

	if err := store.EnablePreImages(ctx); err != nil {
		t.Skipf("server does not support change-stream pre-images: %v", err)
	}
	// Idempotent: enabling again must not fail once the collection exists.
	if err := store.EnablePreImages(ctx); err != nil {
		t.Fatalf("second EnablePreImages: %v", err)
	}

	cur, err := db.ListCollections(ctx, bson.M{"name": "services"})
	if err != nil {
		t.Fatal(err)
	}
	defer cur.Close(ctx)
	if !cur.Next(ctx) {
		t.Fatal("services collection missing")
	}
	var info struct {
		Options struct {
			PreImages struct {
				Enabled bool `bson:"enabled"`
			} `bson:"changeStreamPreAndPostImages"`
		} `bson:"options"`
	}
	if err := cur.Decode(&info); err != nil {
		t.Fatal(err)
	}
	if !info.Options.PreImages.Enabled {
		t.Error("changeStreamPreAndPostImages must be enabled on the collection")
	}
}

func TestFinalizeAll(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	fx := testutil.NewFixtures(t, db)
	store := servicestore.New(db)

	g := fx.CreateGroup(ctx, "Vox", nil)
	fx.CreateService(ctx, g.ID, time.Date(2025, 5, 4, 10, 0, 0, 0, time.UTC), false)
	fx.CreateService(ctx, g.ID, time.Date(2025, 5, 11, 10, 0, 0, 0, time.UTC), true)
	gone := fx.CreateService(ctx, g.ID, time.Date(2025, 5, 18, 10, 0, 0, 0, time.UTC), false)
	if err := store.SoftDelete(ctx, gone.ID); err != nil {
		t.Fatal(err)
	}

	n, err := store.FinalizeAll(ctx, g.ID)
	if err != nil {
		t.Fatalf("FinalizeAll: %v", err)
	}
	if n != 1 {
		t.Errorf("finalized = %d, want only the open live record", n)
	}

	all, err := store.FindByGroup(ctx, g.ID)
	if err != nil {
		t.Fatal(err)
	}
	for _, svc := range all {
		if svc.IsDeleted() {
			if svc.IsFinalized != false {
				t.Error("deleted record must stay untouched")
			}
			continue
		}
		if !svc.IsFinalized {
			t.Errorf("service %s not finalized", svc.ID.Hex())
		}
	}
}
