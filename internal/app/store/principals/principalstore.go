// internal/app/store/principals/principalstore.go
package principalstore

import (
	"context"
	"errors"
	"time"

	"github.com/artom-sites/choirhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when no principal matches.
var ErrNotFound = errors.New("principal not found")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("principals")}
}

// GetByUID fetches a principal by uid.
func (s *Store) GetByUID(ctx context.Context, uid string) (*models.Principal, error) {
	var p models.Principal
	err := s.c.FindOne(ctx, bson.M{"_id": uid}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByEmail fetches a principal by email.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.Principal, error) {
	var p models.Principal
	err := s.c.FindOne(ctx, bson.M{"email": email}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByGoogleSubject fetches a principal by its Google account subject.
func (s *Store) GetByGoogleSubject(ctx context.Context, sub string) (*models.Principal, error) {
	var p models.Principal
	err := s.c.FindOne(ctx, bson.M{"google_subject": sub}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Insert creates a principal.
func (s *Store) Insert(ctx context.Context, p *models.Principal) error {
	p.CreatedAt = time.Now().UTC()
	_, err := s.c.InsertOne(ctx, p)
	return err
}

// SetClaims overwrites the derived claims cache. Runs outside the
// membership transaction, best-effort; stale claims are tolerated by the
// datastore-fallback read path.
func (s *Store) SetClaims(ctx context.Context, uid string, claims models.Claims) error {
	res, err := s.c.UpdateByID(ctx, uid, bson.M{
		"$set": bson.M{
			"claims":           claims,
			"claims_synced_at": time.Now().UTC(),
		},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SetGoogleSubject links a Google account subject to the principal.
func (s *Store) SetGoogleSubject(ctx context.Context, uid, subject string) error {
	res, err := s.c.UpdateByID(ctx, uid, bson.M{
		"$set": bson.M{"google_subject": subject},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the principal (account deletion).
func (s *Store) Delete(ctx context.Context, uid string) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"_id": uid})
	return err
}

// EnsureIndexes creates the principals collection indexes.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "google_subject", Value: 1}},
			Options: options.Index().SetUnique(true).SetPartialFilterExpression(
				bson.M{"google_subject": bson.M{"$exists": true}},
			)},
	})
	return err
}
