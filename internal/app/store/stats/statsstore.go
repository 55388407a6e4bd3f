// internal/app/store/stats/statsstore.go
package statsstore

import (
	"context"
	"errors"

	"github.com/artom-sites/choirhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when a group has no summary yet.
var ErrNotFound = errors.New("stats summary not found")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("stats_summaries")}
}

// Get fetches the summary for a group.
func (s *Store) Get(ctx context.Context, groupID primitive.ObjectID) (*models.StatsSummary, error) {
	var sum models.StatsSummary
	err := s.c.FindOne(ctx, bson.M{"_id": groupID}).Decode(&sum)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sum, nil
}

// Upsert fully overwrites the summary document. The write is idempotent:
// duplicate or out-of-order recomputations converge because the summary
// is a pure function of current state and later overwrites win.
func (s *Store) Upsert(ctx context.Context, sum *models.StatsSummary) error {
	_, err := s.c.ReplaceOne(ctx,
		bson.M{"_id": sum.ID},
		sum,
		options.Replace().SetUpsert(true),
	)
	return err
}

// Delete removes a group's summary (used when a group is deleted).
func (s *Store) Delete(ctx context.Context, groupID primitive.ObjectID) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"_id": groupID})
	return err
}
