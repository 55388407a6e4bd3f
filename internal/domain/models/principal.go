// internal/domain/models/principal.go
package models

import "time"

// Principal is the identity record a session authenticates against.
// Claims are a derived cache of the user's memberships: they are written
// by the claims sync after every mutating membership operation, outside
// the operation's transaction, and are therefore eventually consistent.
// Every authorization check must fall back to the users collection when
// the claims cache misses.
type Principal struct {
	UID   string `bson:"_id" json:"uid"`
	Email string `bson:"email" json:"email"`

	// Exactly one of these is set, depending on the auth method.
	PasswordHash  string `bson:"password_hash,omitempty" json:"-"`
	GoogleSubject string `bson:"google_subject,omitempty" json:"-"`

	Claims         Claims    `bson:"claims" json:"claims"`
	ClaimsSyncedAt time.Time `bson:"claims_synced_at,omitempty" json:"claims_synced_at,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// Claims is the authorization-claims cache attached to a principal.
// Groups maps group id (hex) to the user's role in that group.
type Claims struct {
	Groups     map[string]string `bson:"groups,omitempty" json:"groups,omitempty"`
	SuperAdmin bool              `bson:"super_admin,omitempty" json:"super_admin,omitempty"`
}

// RoleIn returns the cached role for the given group id hex, if present.
func (c Claims) RoleIn(groupIDHex string) (string, bool) {
	role, ok := c.Groups[groupIDHex]
	return role, ok
}
