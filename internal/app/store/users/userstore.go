// internal/app/store/users/userstore.go
package userstore

// Terminology: User Identifiers
//   - UID / uid: the identity-principal id (string _id of the users and
//     principals collections)
//   - SlotID: a roster slot id, either a UID or "manual_<uuid>"

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

// ErrNotFound is returned when no user document matches.
var ErrNotFound = errors.New("user not found")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// GetByID fetches a user by UID.
func (s *Store) GetByID(ctx context.Context, uid string) (*models.User, error) {
	var u models.User
	err := s.c.FindOne(ctx, bson.M{"_id": uid}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Insert creates a user document.
func (s *Store) Insert(ctx context.Context, u *models.User) error {
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	_, err := s.c.InsertOne(ctx, u)
	return err
}

// Replace overwrites the full user document. The membership engine
// always re-reads inside its transaction and writes the whole document,
// so field-level update conflicts cannot arise.
func (s *Store) Replace(ctx context.Context, u *models.User) error {
	u.UpdatedAt = time.Now().UTC()
	res, err := s.c.ReplaceOne(ctx, bson.M{"_id": u.ID}, u)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the user document.
func (s *Store) Delete(ctx context.Context, uid string) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": uid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// AddNotificationToken registers a push token on the user and removes
// the same token from every other user. A token showing up on a second
// account means the device changed hands (or the token was stolen);
// leaving it on the first account would leak notifications.
func (s *Store) AddNotificationToken(ctx context.Context, uid, token string) error {
	if _, err := s.c.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$ne": uid}, "notification_tokens": token},
		bson.M{"$pull": bson.M{"notification_tokens": token}},
	); err != nil {
		return err
	}
	res, err := s.c.UpdateByID(ctx, uid, bson.M{
		"$addToSet": bson.M{"notification_tokens": token},
		"$set":      bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// HasMembership reports whether the user's membership mirror contains
// the group. This is the datastore-fallback path for authorization
// checks when the claims cache misses.
func (s *Store) HasMembership(ctx context.Context, uid string, groupID primitive.ObjectID) (string, bool, error) {
	u, err := s.GetByID(ctx, uid)
	if err == ErrNotFound {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	if m, ok := u.MembershipByGroup(groupID); ok {
		return m.Role, true, nil
	}
	// Legacy records may predate the memberships mirror and carry only
	// the active-group fields.
	if len(u.Memberships) == 0 && u.GroupID != nil && *u.GroupID == groupID {
		return u.Role, true, nil
	}
	return "", false, nil
}

// FindByEmail fetches a user by email.
func (s *Store) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.c.FindOne(ctx, bson.M{"email": email}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// EnsureIndexes creates the users collection indexes.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "notification_tokens", Value: 1}}},
		{Keys: bson.D{{Key: "memberships.group_id", Value: 1}}},
	})
	return err
}
