// internal/domain/models/service.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Service is one attendance event record (a rehearsal or presentation).
// Services are append-heavy: during open voting, ConfirmedMembers and
// AbsentMembers receive concurrent writes from many members. They are
// never hard-deleted, only soft-deleted via DeletedAt.
type Service struct {
	ID      primitive.ObjectID `bson:"_id" json:"id"`
	GroupID primitive.ObjectID `bson:"group_id" json:"group_id"`
	Date    time.Time          `bson:"date" json:"date"`

	Songs []SongRef `bson:"songs,omitempty" json:"songs,omitempty"`

	// Slot-id sets. Members vote themselves into exactly one of the two.
	ConfirmedMembers []string `bson:"confirmed_members,omitempty" json:"confirmed_members,omitempty"`
	AbsentMembers    []string `bson:"absent_members,omitempty" json:"absent_members,omitempty"`

	IsFinalized bool       `bson:"is_finalized" json:"is_finalized"`
	DeletedAt   *time.Time `bson:"deleted_at,omitempty" json:"deleted_at,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// SongRef references a song performed at a service.
type SongRef struct {
	SongID string `bson:"song_id" json:"song_id"`
	Title  string `bson:"title" json:"title"`
}

// IsDeleted reports whether the service is soft-deleted.
func (s *Service) IsDeleted() bool {
	return s.DeletedAt != nil
}

// HasMember reports whether slotID appears in either attendance set.
func (s *Service) HasMember(slotID string) bool {
	for _, id := range s.ConfirmedMembers {
		if id == slotID {
			return true
		}
	}
	for _, id := range s.AbsentMembers {
		if id == slotID {
			return true
		}
	}
	return false
}
