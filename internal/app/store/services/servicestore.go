// internal/app/store/services/servicestore.go
package servicestore

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

// ErrNotFound is returned when no service document matches.
var ErrNotFound = errors.New("service not found")

// BulkChunkSize caps the number of writes per bulk batch for the
// merge-rewrite and backfill-finalize paths.
const BulkChunkSize = 500

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("services")}
}

// GetByID fetches a service by id.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Service, error) {
	var svc models.Service
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&svc)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &svc, nil
}

// Insert creates a service record.
func (s *Store) Insert(ctx context.Context, svc *models.Service) error {
	now := time.Now().UTC()
	svc.CreatedAt = now
	svc.UpdatedAt = now
	_, err := s.c.InsertOne(ctx, svc)
	return err
}

// FindByGroup returns all service records of a group, soft-deleted
// included (the aggregator filters), sorted by date ascending for
// deterministic downstream processing.
func (s *Store) FindByGroup(ctx context.Context, groupID primitive.ObjectID) ([]models.Service, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"group_id": groupID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Service
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Vote records one member's attendance vote, moving the slot id into the
// chosen set and out of the other. Field-level update on purpose: votes
// from different members must not overwrite each other, and vote-only
// writes are exactly what the stats change guard ignores.
func (s *Store) Vote(ctx context.Context, id primitive.ObjectID, slotID string, present bool) error {
	confirmed, absent := "confirmed_members", "absent_members"
	to, from := confirmed, absent
	if !present {
		to, from = absent, confirmed
	}
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "is_finalized": false, "deleted_at": nil},
		bson.M{
			"$addToSet": bson.M{to: slotID},
			"$pull":     bson.M{from: slotID},
			"$set":      bson.M{"updated_at": time.Now().UTC()},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SetFinalized flips the finalization flag.
func (s *Store) SetFinalized(ctx context.Context, id primitive.ObjectID, finalized bool) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "deleted_at": nil},
		bson.M{"$set": bson.M{"is_finalized": finalized, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SetSongs replaces the song list.
func (s *Store) SetSongs(ctx context.Context, id primitive.ObjectID, songs []models.SongRef) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "deleted_at": nil},
		bson.M{"$set": bson.M{"songs": songs, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SoftDelete marks the record deleted. Records are never hard-deleted;
// attendance history stays addressable by slot id.
func (s *Store) SoftDelete(ctx context.Context, id primitive.ObjectID) error {
	now := time.Now().UTC()
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "deleted_at": nil},
		bson.M{"$set": bson.M{"deleted_at": now, "updated_at": now}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ReplaceMemberID rewrites every attendance set of the group's services,
// substituting toID for fromID. Runs as chunked bulk writes, not one
// transaction: the rewrite is idempotent, so a partial failure is
// repaired by re-running. Add-then-remove ordering keeps every
// intermediate state a superset of the final one.
func (s *Store) ReplaceMemberID(ctx context.Context, groupID primitive.ObjectID, fromID, toID string) (int, error) {
	filter := bson.M{
		"group_id": groupID,
		"$or": []bson.M{
			{"confirmed_members": fromID},
			{"absent_members": fromID},
		},
	}
	cur, err := s.c.Find(ctx, filter, options.Find().SetProjection(bson.M{
		"_id": 1, "confirmed_members": 1, "absent_members": 1,
	}))
	if err != nil {
		return 0, err
	}
	defer cur.Close(ctx)

	var affected []models.Service
	if err := cur.All(ctx, &affected); err != nil {
		return 0, err
	}
	if len(affected) == 0 {
		return 0, nil
	}

	addWrites := make([]mongo.WriteModel, 0, len(affected))
	pullWrites := make([]mongo.WriteModel, 0, len(affected))
	for i := range affected {
		svc := &affected[i]
		add := bson.M{}
		for _, id := range svc.ConfirmedMembers {
			if id == fromID {
				add["confirmed_members"] = toID
			}
		}
		for _, id := range svc.AbsentMembers {
			if id == fromID {
				add["absent_members"] = toID
			}
		}
		if len(add) > 0 {
			addWrites = append(addWrites, mongo.NewUpdateOneModel().
				SetFilter(bson.M{"_id": svc.ID}).
				SetUpdate(bson.M{"$addToSet": add}))
		}
		pullWrites = append(pullWrites, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": svc.ID}).
			SetUpdate(bson.M{"$pull": bson.M{
				"confirmed_members": fromID,
				"absent_members":    fromID,
			}}))
	}

	if err := s.bulkChunked(ctx, addWrites); err != nil {
		return 0, err
	}
	if err := s.bulkChunked(ctx, pullWrites); err != nil {
		return 0, err
	}
	return len(affected), nil
}

// FinalizeAll marks every non-deleted service of the group finalized.
// Used by the backfill job for historical records predating the
// finalization concept; chunked so a huge group cannot exceed a single
// batch's limits.
func (s *Store) FinalizeAll(ctx context.Context, groupID primitive.ObjectID) (int, error) {
	cur, err := s.c.Find(ctx,
		bson.M{"group_id": groupID, "deleted_at": nil, "is_finalized": false},
		options.Find().SetProjection(bson.M{"_id": 1}),
	)
	if err != nil {
		return 0, err
	}
	defer cur.Close(ctx)

	var ids []primitive.ObjectID
	for cur.Next(ctx) {
		var row struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if err := cur.Decode(&row); err != nil {
			return 0, err
		}
		ids = append(ids, row.ID)
	}
	if err := cur.Err(); err != nil {
		return 0, err
	}

	now := time.Now().UTC()
	writes := make([]mongo.WriteModel, 0, len(ids))
	for _, id := range ids {
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": id}).
			SetUpdate(bson.M{"$set": bson.M{"is_finalized": true, "updated_at": now}}))
	}
	if err := s.bulkChunked(ctx, writes); err != nil {
		return 0, err
	}
	return len(ids), nil
}

func (s *Store) bulkChunked(ctx context.Context, writes []mongo.WriteModel) error {
	for start := 0; start < len(writes); start += BulkChunkSize {
		end := start + BulkChunkSize
		if end > len(writes) {
			end = len(writes)
		}
		_, err := s.c.BulkWrite(ctx, writes[start:end], options.BulkWrite().SetOrdered(false))
		if err != nil {
			return err
		}
	}
	return nil
}

// Collection exposes the underlying collection for the change-stream
// watcher.
func (s *Store) Collection() *mongo.Collection {
	return s.c
}

// EnablePreImages configures the collection to record change-stream
// pre-images. The watcher needs the pre-image to prove an update is
// vote-only; without it every update event forces a recompute.
func (s *Store) EnablePreImages(ctx context.Context) error {
	db := s.c.Database()
	if err := db.CreateCollection(ctx, s.c.Name()); err != nil {
		var cmdErr mongo.CommandError
		if !errors.As(err, &cmdErr) || cmdErr.Name != "NamespaceExists" {
			return err
		}
	}
	return db.RunCommand(ctx, bson.D{
		{Key: "collMod", Value: s.c.Name()},
		{Key: "changeStreamPreAndPostImages", Value: bson.D{{Key: "enabled", Value: true}}},
	}).Err()
}

// EnsureIndexes creates the services collection indexes.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "group_id", Value: 1}, {Key: "date", Value: 1}}},
		{Keys: bson.D{{Key: "group_id", Value: 1}, {Key: "deleted_at", Value: 1}}},
	})
	return err
}
