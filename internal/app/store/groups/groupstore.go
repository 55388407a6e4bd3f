// internal/app/store/groups/groupstore.go
package groupstore

import (
	"context"
	"errors"
	"time"

	"github.com/artom-sites/choirhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when no group document matches.
var ErrNotFound = errors.New("group not found")

// AdminCodeScanLimit bounds the admin-code fallback scan to the most
// recently created groups. Admin codes live inside an embedded array and
// cannot be indexed as a global namespace; a bounded scan is the
// documented trade-off.
const AdminCodeScanLimit = 500

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("groups")}
}

// GetByID fetches a group by id.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Group, error) {
	var g models.Group
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&g)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// Insert creates a group document.
func (s *Store) Insert(ctx context.Context, g *models.Group) error {
	now := time.Now().UTC()
	g.CreatedAt = now
	g.UpdatedAt = now
	_, err := s.c.InsertOne(ctx, g)
	return err
}

// Replace overwrites the full group document. Every engine transaction
// re-reads the group and replaces it whole; roster offsets computed
// before the read are never used for the write.
func (s *Store) Replace(ctx context.Context, g *models.Group) error {
	g.UpdatedAt = time.Now().UTC()
	res, err := s.c.ReplaceOne(ctx, bson.M{"_id": g.ID}, g)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// FindByMemberCode resolves a member invite code.
func (s *Store) FindByMemberCode(ctx context.Context, code string) (*models.Group, error) {
	return s.findByCodeField(ctx, "member_code", code)
}

// FindByRegentCode resolves a regent invite code.
func (s *Store) FindByRegentCode(ctx context.Context, code string) (*models.Group, error) {
	return s.findByCodeField(ctx, "regent_code", code)
}

func (s *Store) findByCodeField(ctx context.Context, field, code string) (*models.Group, error) {
	var g models.Group
	err := s.c.FindOne(ctx, bson.M{field: code}).Decode(&g)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// FindByAdminCode scans the admin codes of the AdminCodeScanLimit most
// recently created groups for the given code. Returns the group and the
// matching admin code entry.
func (s *Store) FindByAdminCode(ctx context.Context, code string) (*models.Group, *models.AdminCode, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(AdminCodeScanLimit)
	cur, err := s.c.Find(ctx, bson.M{"admin_codes.code": code}, opts)
	if err != nil {
		return nil, nil, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var g models.Group
		if err := cur.Decode(&g); err != nil {
			return nil, nil, err
		}
		for i := range g.AdminCodes {
			if g.AdminCodes[i].Code == code {
				return &g, &g.AdminCodes[i], nil
			}
		}
	}
	if err := cur.Err(); err != nil {
		return nil, nil, err
	}
	return nil, nil, ErrNotFound
}

// IterateAll walks every group, invoking fn per document. Used by the
// backfill job; errors from fn abort the walk.
func (s *Store) IterateAll(ctx context.Context, fn func(*models.Group) error) error {
	cur, err := s.c.Find(ctx, bson.M{})
	if err != nil {
		return err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var g models.Group
		if err := cur.Decode(&g); err != nil {
			return err
		}
		if err := fn(&g); err != nil {
			return err
		}
	}
	return cur.Err()
}

// EnsureIndexes creates the groups collection indexes. Invite codes are
// deliberately not unique: codes are generated independently per group
// and the admin-code namespace (embedded array) could not participate in
// a global uniqueness guarantee anyway.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "member_code", Value: 1}}},
		{Keys: bson.D{{Key: "regent_code", Value: 1}}},
		{Keys: bson.D{{Key: "admin_codes.code", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "name_ci", Value: 1}}},
	})
	return err
}
