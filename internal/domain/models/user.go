// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is the per-user profile document.
//
// NOTE:
//   - The _id is the identity-principal UID (a string issued at signup),
//     not an ObjectID. Roster slots reference users by this UID, and
//     manual roster slots use a "manual_" prefixed synthetic id, so the
//     two share one string namespace.
//   - GroupID/GroupName/Role are the active-group pointer. If GroupID is
//     set, a matching entry must exist in Memberships.
//   - This document is mutated only by the membership engine.
type User struct {
	ID         string `bson:"_id" json:"id"`
	FullName   string `bson:"full_name" json:"full_name"`
	FullNameCI string `bson:"full_name_ci" json:"full_name_ci"` // lowercase, diacritics-stripped
	Email      string `bson:"email" json:"email"`

	// Active-group pointer.
	GroupID   *primitive.ObjectID `bson:"group_id,omitempty" json:"group_id,omitempty"`
	GroupName string              `bson:"group_name,omitempty" json:"group_name,omitempty"`
	Role      string              `bson:"role,omitempty" json:"role,omitempty"`
	Voice     string              `bson:"voice,omitempty" json:"voice,omitempty"`

	Permissions []string     `bson:"permissions,omitempty" json:"permissions,omitempty"`
	Memberships []Membership `bson:"memberships,omitempty" json:"memberships,omitempty"`

	NotificationTokens []string `bson:"notification_tokens,omitempty" json:"-"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Membership is one entry of the per-user membership mirror.
// Unique by GroupID within a user.
type Membership struct {
	GroupID   primitive.ObjectID `bson:"group_id" json:"group_id"`
	GroupName string             `bson:"group_name" json:"group_name"`
	Role      string             `bson:"role" json:"role"`
	GroupType string             `bson:"group_type,omitempty" json:"group_type,omitempty"`
}

// MembershipByGroup returns the membership entry for groupID, if any.
func (u *User) MembershipByGroup(groupID primitive.ObjectID) (Membership, bool) {
	for _, m := range u.Memberships {
		if m.GroupID == groupID {
			return m, true
		}
	}
	return Membership{}, false
}
