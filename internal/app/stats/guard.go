// Package stats derives each group's statistics summary from its
// service records. The pipeline has three pure stages (change guard,
// live compute, backfill compute) and two impure drivers (the
// change-stream watcher and the transactional aggregator).
package stats

import (
	"time"

	"github.com/artom-sites/choirhub/internal/domain/models"
)

// ShouldRecompute decides whether a service write warrants refreshing
// the group summary. before is nil on create, after is nil on a hard
// delete (which only replication tooling performs, but the watcher sees
// it regardless).
//
// Vote writes during open voting are the overwhelming majority of
// service updates and change nothing the summary reads until the record
// is finalized, so changes confined to the attendance sets are ignored.
func ShouldRecompute(before, after *models.Service) bool {
	if before == nil || after == nil {
		return true
	}
	if before.IsFinalized != after.IsFinalized {
		return true
	}
	if !sameDeletedAt(before.DeletedAt, after.DeletedAt) {
		return true
	}
	// Song edits count everywhere in song frequencies, but only a
	// finalized record's songs have been reported yet.
	if after.IsFinalized && !sameSongs(before.Songs, after.Songs) {
		return true
	}
	return false
}

func sameDeletedAt(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func sameSongs(a, b []models.SongRef) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].SongID != b[i].SongID || a[i].Title != b[i].Title {
			return false
		}
	}
	return true
}
