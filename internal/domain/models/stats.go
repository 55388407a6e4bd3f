// internal/domain/models/stats.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StatsSummary is the derived analytics document, one per group, keyed
// by the group id. It is entirely a pure function of the group's
// non-deleted services and its roster size. The only writers are the
// statistics aggregator and the backfill job; any other writer is a bug.
type StatsSummary struct {
	ID primitive.ObjectID `bson:"_id" json:"group_id"`

	TotalServices     int `bson:"total_services" json:"total_services"`
	AverageAttendance int `bson:"average_attendance" json:"average_attendance"`

	// Most recent entries by date, chronological order, capped at
	// TrendLimit in the live path.
	AttendanceTrend []TrendEntry `bson:"attendance_trend,omitempty" json:"attendance_trend,omitempty"`

	TopSongs []SongCount `bson:"top_songs,omitempty" json:"top_songs,omitempty"`
	AllSongs []SongCount `bson:"all_songs,omitempty" json:"all_songs,omitempty"`

	MemberStats map[string]MemberStat `bson:"member_stats,omitempty" json:"member_stats,omitempty"`

	ComputedAt time.Time `bson:"computed_at" json:"computed_at"`
}

// Caps for the live aggregation path.
const (
	TrendLimit    = 10
	TopSongsLimit = 20
)

// TrendEntry is one attendance data point.
type TrendEntry struct {
	Date       time.Time `bson:"date" json:"date"`
	Percentage int       `bson:"percentage" json:"percentage"`
	Present    int       `bson:"present" json:"present"`
	Total      int       `bson:"total" json:"total"`
}

// SongCount is a song frequency entry.
type SongCount struct {
	SongID string `bson:"song_id" json:"song_id"`
	Title  string `bson:"title" json:"title"`
	Count  int    `bson:"count" json:"count"`
}

// MemberStat accumulates per-slot attendance over finalized records.
type MemberStat struct {
	PresentCount       int `bson:"present_count" json:"present_count"`
	AbsentCount        int `bson:"absent_count" json:"absent_count"`
	ServicesWithRecord int `bson:"services_with_record" json:"services_with_record"`
	AttendanceRate     int `bson:"attendance_rate" json:"attendance_rate"`
}
