// internal/app/stats/guard_test.go
package stats

import (
	"testing"
	"time"

	"github.com/artom-sites/choirhub/internal/domain/models"
)

func svc(mut ...func(*models.Service)) *models.Service {
	s := &models.Service{
		Date:        time.Date(2025, 3, 2, 10, 0, 0, 0, time.UTC),
		IsFinalized: false,
	}
	for _, m := range mut {
		m(s)
	}
	return s
}

func TestGuardCreateAndDelete(t *testing.T) {
	if !ShouldRecompute(nil, svc()) {
		t.Error("create must recompute")
	}
	if !ShouldRecompute(svc(), nil) {
		t.Error("hard delete must recompute")
	}
}

func TestGuardVoteOnlyWriteIgnored(t *testing.T) {
	before := svc()
	after := svc(func(s *models.Service) {
		s.ConfirmedMembers = []string{"uid-1", "uid-2"}
		s.AbsentMembers = []string{"manual_x"}
	})
	if ShouldRecompute(before, after) {
		t.Error("vote-only write must not recompute")
	}
}

func TestGuardFinalizeFlip(t *testing.T) {
	before := svc()
	after := svc(func(s *models.Service) { s.IsFinalized = true })
	if !ShouldRecompute(before, after) {
		t.Error("finalization flip must recompute")
	}
	if !ShouldRecompute(after, before) {
		t.Error("un-finalization must recompute")
	}
}

func TestGuardSoftDelete(t *testing.T) {
	now := time.Now().UTC()
	before := svc()
	after := svc(func(s *models.Service) { s.DeletedAt = &now })
	if !ShouldRecompute(before, after) {
		t.Error("soft delete must recompute")
	}
	if !ShouldRecompute(after, before) {
		t.Error("restore must recompute")
	}
	same := svc(func(s *models.Service) { s.DeletedAt = &now })
	if ShouldRecompute(after, same) {
		t.Error("unchanged deleted_at must not recompute")
	}
}

func TestGuardSongChange(t *testing.T) {
	songsA := []models.SongRef{{SongID: "s1", Title: "Amazing Grace"}}
	songsB := []models.SongRef{{SongID: "s2", Title: "How Great Thou Art"}}

	openBefore := svc(func(s *models.Service) { s.Songs = songsA })
	openAfter := svc(func(s *models.Service) { s.Songs = songsB })
	if ShouldRecompute(openBefore, openAfter) {
		t.Error("song edit on an open record must not recompute")
	}

	finBefore := svc(func(s *models.Service) { s.IsFinalized = true; s.Songs = songsA })
	finAfter := svc(func(s *models.Service) { s.IsFinalized = true; s.Songs = songsB })
	if !ShouldRecompute(finBefore, finAfter) {
		t.Error("song edit on a finalized record must recompute")
	}

	finSame := svc(func(s *models.Service) { s.IsFinalized = true; s.Songs = songsA })
	if ShouldRecompute(finBefore, finSame) {
		t.Error("identical song list must not recompute")
	}
}
