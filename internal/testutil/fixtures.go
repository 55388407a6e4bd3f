// internal/testutil/fixtures.go
package testutil

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/artom-sites/choirhub/internal/domain/models"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser creates a test user with the given uid and name.
func (f *Fixtures) CreateUser(ctx context.Context, uid, name string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	u := models.User{
		ID:         uid,
		FullName:   name,
		FullNameCI: text.Fold(name),
		Email:      uid + "@example.com",
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

// CreatePrincipal creates a test principal for the given uid.
func (f *Fixtures) CreatePrincipal(ctx context.Context, uid string) models.Principal {
	f.t.Helper()

	p := models.Principal{
		UID:       uid,
		Email:     uid + "@example.com",
		CreatedAt: time.Now().UTC(),
	}
	if _, err := f.db.Collection("principals").InsertOne(ctx, p); err != nil {
		f.t.Fatalf("failed to create test principal: %v", err)
	}
	return p
}

// CreateGroup creates a test group with the given name and roster.
func (f *Fixtures) CreateGroup(ctx context.Context, name string, members []models.RosterSlot) models.Group {
	f.t.Helper()

	now := time.Now().UTC()
	g := models.Group{
		ID:         primitive.NewObjectID(),
		Name:       name,
		NameCI:     text.Fold(name),
		Type:       models.GroupTypeChoir,
		MemberCode: "MEMBER" + strings.ToUpper(primitive.NewObjectID().Hex()[22:]),
		RegentCode: "REGENT" + strings.ToUpper(primitive.NewObjectID().Hex()[22:]),
		Members:    members,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, err := f.db.Collection("groups").InsertOne(ctx, g); err != nil {
		f.t.Fatalf("failed to create test group: %v", err)
	}
	return g
}

// AddMembership appends a membership entry to a user and optionally
// sets it as the active group.
func (f *Fixtures) AddMembership(ctx context.Context, uid string, g models.Group, role string, active bool) {
	f.t.Helper()

	var u models.User
	if err := f.db.Collection("users").FindOne(ctx, map[string]any{"_id": uid}).Decode(&u); err != nil {
		f.t.Fatalf("failed to load test user: %v", err)
	}
	u.Memberships = append(u.Memberships, models.Membership{
		GroupID:   g.ID,
		GroupName: g.Name,
		Role:      role,
		GroupType: g.Type,
	})
	if active {
		gid := g.ID
		u.GroupID = &gid
		u.GroupName = g.Name
		u.Role = role
	}
	if _, err := f.db.Collection("users").ReplaceOne(ctx, map[string]any{"_id": uid}, u); err != nil {
		f.t.Fatalf("failed to update test user: %v", err)
	}
}

// CreateService creates a test service record for the group.
func (f *Fixtures) CreateService(ctx context.Context, groupID primitive.ObjectID, date time.Time, finalized bool) models.Service {
	f.t.Helper()

	now := time.Now().UTC()
	s := models.Service{
		ID:          primitive.NewObjectID(),
		GroupID:     groupID,
		Date:        date,
		IsFinalized: finalized,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := f.db.Collection("services").InsertOne(ctx, s); err != nil {
		f.t.Fatalf("failed to create test service: %v", err)
	}
	return s
}
