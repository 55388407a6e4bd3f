// internal/app/store/notifications/notificationstore_test.go
package notificationstore_test

import (
	"testing"
	"time"

	notificationstore "github.com/artom-sites/choirhub/internal/app/store/notifications"
	"github.com/artom-sites/choirhub/internal/domain/models"
	"github.com/artom-sites/choirhub/internal/testutil"
)

func TestListByUserNewestFirst(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	store := notificationstore.New(db)

	base := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		n := models.Notification{
			UserID:    "uid-1",
			Title:     "New service planned",
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}
		if err := store.Insert(ctx, &n); err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
		if n.ID == "" {
			t.Fatal("Insert must assign an id")
		}
	}
	if err := store.Insert(ctx, &models.Notification{UserID: "uid-other", Title: "x"}); err != nil {
		t.Fatal(err)
	}

	got, err := store.ListByUser(ctx, "uid-1", 2)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want limit applied", len(got))
	}
	if !got[0].CreatedAt.After(got[1].CreatedAt) {
		t.Errorf("order = %v then %v, want newest first", got[0].CreatedAt, got[1].CreatedAt)
	}
}

func TestCleanupOlderThan(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	store := notificationstore.New(db)

	old := models.Notification{UserID: "uid-1", Title: "stale",
		CreatedAt: time.Now().UTC().Add(-31 * 24 * time.Hour)}
	fresh := models.Notification{UserID: "uid-1", Title: "fresh"}
	if err := store.Insert(ctx, &old); err != nil {
		t.Fatal(err)
	}
	if err := store.Insert(ctx, &fresh); err != nil {
		t.Fatal(err)
	}

	n, err := store.CleanupOlderThan(ctx, 30*24*time.Hour)
	if err != nil {
		t.Fatalf("CleanupOlderThan: %v", err)
	}
	if n != 1 {
		t.Errorf("deleted = %d, want 1", n)
	}

	left, err := store.ListByUser(ctx, "uid-1", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(left) != 1 || left[0].Title != "fresh" {
		t.Errorf("remaining = %+v, want only the fresh record", left)
	}
}
