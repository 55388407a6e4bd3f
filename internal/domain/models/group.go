// internal/domain/models/group.go
package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Allowed group types.
const (
	GroupTypeChoir    = "choir"
	GroupTypeBand     = "band"
	GroupTypeMinistry = "ministry"
	GroupTypeOther    = "other"
)

// IsValidGroupType reports whether t is one of the allowed group types.
func IsValidGroupType(t string) bool {
	switch t {
	case GroupTypeChoir, GroupTypeBand, GroupTypeMinistry, GroupTypeOther:
		return true
	}
	return false
}

// Group is the per-group document. The roster is embedded: every
// membership transaction re-reads the document and re-locates slots by
// scanning Members inside its own transaction. Offsets must never be
// carried across transaction boundaries.
type Group struct {
	ID     primitive.ObjectID `bson:"_id" json:"id"`
	Name   string             `bson:"name" json:"name"`
	NameCI string             `bson:"name_ci" json:"name_ci"`
	Type   string             `bson:"type" json:"type"`

	// Invite codes. Generated independently per group; cross-group
	// uniqueness is not enforced (resolution order is deterministic, so
	// a collision is stable).
	MemberCode string      `bson:"member_code" json:"-"`
	RegentCode string      `bson:"regent_code" json:"-"`
	AdminCodes []AdminCode `bson:"admin_codes,omitempty" json:"-"`

	Members []RosterSlot `bson:"members" json:"members"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// AdminCode is an extra invite code carrying a permission set.
type AdminCode struct {
	Code        string   `bson:"code" json:"code"`
	Label       string   `bson:"label" json:"label"`
	Permissions []string `bson:"permissions,omitempty" json:"permissions,omitempty"`
}

// ManualSlotPrefix marks roster slots that were created by hand and have
// no backing account. The remainder of the id is a UUID.
const ManualSlotPrefix = "manual_"

// RosterSlot is one embedded roster entry.
//
// Invariant: at most one slot per group may carry AccountUID == U for a
// given user U. Claim and merge are the only writers responsible for
// preserving it.
type RosterSlot struct {
	ID    string `bson:"id" json:"id"` // user UID or "manual_<uuid>"
	Name  string `bson:"name" json:"name"`
	Voice string `bson:"voice,omitempty" json:"voice,omitempty"`
	Role  string `bson:"role" json:"role"`

	HasAccount    bool     `bson:"has_account" json:"has_account"`
	AccountUID    string   `bson:"account_uid,omitempty" json:"account_uid,omitempty"`
	LinkedUserIDs []string `bson:"linked_user_ids,omitempty" json:"linked_user_ids,omitempty"`

	// Soft-delete marker. A duplicate slot is never hard-deleted because
	// attendance history is keyed by slot id.
	IsDuplicate bool `bson:"is_duplicate,omitempty" json:"is_duplicate,omitempty"`

	Permissions []string `bson:"permissions,omitempty" json:"permissions,omitempty"`
}

// IsManual reports whether the slot is an accountless manual entry.
func (s *RosterSlot) IsManual() bool {
	return strings.HasPrefix(s.ID, ManualSlotPrefix)
}

// ResolvesTo reports whether the slot is linked to the given user, either
// as the primary account or through LinkedUserIDs.
func (s *RosterSlot) ResolvesTo(uid string) bool {
	if s.AccountUID == uid {
		return true
	}
	for _, id := range s.LinkedUserIDs {
		if id == uid {
			return true
		}
	}
	return false
}

// SlotByID returns the index of the roster slot with the given id, or -1.
// Callers inside a transaction must use the index immediately; it is
// invalid after any write.
func (g *Group) SlotByID(id string) int {
	for i := range g.Members {
		if g.Members[i].ID == id {
			return i
		}
	}
	return -1
}

// SlotResolvingTo returns the index of the first slot linked to uid, or -1.
func (g *Group) SlotResolvingTo(uid string) int {
	for i := range g.Members {
		if g.Members[i].ResolvesTo(uid) {
			return i
		}
	}
	return -1
}

// ActiveRosterSize counts slots that are not marked duplicate. This is
// the totalMembers denominator for attendance percentages.
func (g *Group) ActiveRosterSize() int {
	n := 0
	for i := range g.Members {
		if !g.Members[i].IsDuplicate {
			n++
		}
	}
	return n
}

// UnlinkedSlots returns the roster slots that have no linked account and
// are not duplicates. These are the candidates offered to a freshly
// joined user for the "is this you?" claim flow.
func (g *Group) UnlinkedSlots() []RosterSlot {
	var out []RosterSlot
	for i := range g.Members {
		s := g.Members[i]
		if !s.HasAccount && s.AccountUID == "" && !s.IsDuplicate {
			out = append(out, s)
		}
	}
	return out
}
