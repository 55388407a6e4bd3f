// internal/domain/models/notification.go
package models

import "time"

// Notification is one delivery record handed to the push transport. The
// transport consumes it as opaque data; the backend only guarantees the
// CreatedAt field, which the cleanup worker uses to expire records after
// the retention window.
type Notification struct {
	ID     string `bson:"_id" json:"id"` // uuid
	UserID string `bson:"user_id" json:"user_id"`
	Title  string `bson:"title" json:"title"`
	Body   string `bson:"body" json:"body"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
