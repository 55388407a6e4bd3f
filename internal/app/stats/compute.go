// internal/app/stats/compute.go
package stats

import (
	"math"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/artom-sites/choirhub/internal/domain/models"
)

// Compute derives a group's summary from its full service list and
// roster. Pure and deterministic: equal inputs yield equal summaries,
// which is what makes the overwrite-upsert idempotent. Soft-deleted
// records are excluded everywhere; trend, average, and member stats
// additionally consider only finalized records, because an open
// record's attendance sets are still moving.
//
// Attendance in the live path is presence-by-default:
// present = totalMembers − |absent|. Members who never voted count as
// present, matching how attendance is actually taken (absences get
// reported, presence does not).
func Compute(groupID primitive.ObjectID, services []models.Service, roster []models.RosterSlot, now time.Time) models.StatsSummary {
	total := 0
	for i := range services {
		if !services[i].IsDeleted() {
			total++
		}
	}

	rosterSize := 0
	for i := range roster {
		if !roster[i].IsDuplicate {
			rosterSize++
		}
	}

	finalized := make([]models.Service, 0, total)
	for i := range services {
		s := services[i]
		if !s.IsDeleted() && s.IsFinalized {
			finalized = append(finalized, s)
		}
	}
	sort.SliceStable(finalized, func(i, j int) bool {
		if !finalized[i].Date.Equal(finalized[j].Date) {
			return finalized[i].Date.Before(finalized[j].Date)
		}
		return finalized[i].ID.Hex() < finalized[j].ID.Hex()
	})

	sum := models.StatsSummary{
		ID:            groupID,
		TotalServices: total,
		ComputedAt:    now,
	}

	// Trend and average over finalized records.
	var pctSum int
	trend := make([]models.TrendEntry, 0, len(finalized))
	for i := range finalized {
		s := &finalized[i]
		present := rosterSize - len(s.AbsentMembers)
		if present < 0 {
			present = 0
		}
		pct := 0
		if rosterSize > 0 {
			pct = roundPct(present, rosterSize)
		}
		pctSum += pct
		trend = append(trend, models.TrendEntry{
			Date:       s.Date,
			Percentage: pct,
			Present:    present,
			Total:      rosterSize,
		})
	}
	if len(trend) > 0 {
		sum.AverageAttendance = int(math.Round(float64(pctSum) / float64(len(trend))))
	}
	if len(trend) > models.TrendLimit {
		trend = trend[len(trend)-models.TrendLimit:]
	}
	sum.AttendanceTrend = trend

	// Member stats from the explicit vote sets of finalized records.
	members := make(map[string]models.MemberStat, rosterSize)
	for i := range roster {
		if !roster[i].IsDuplicate {
			members[roster[i].ID] = models.MemberStat{AttendanceRate: 100}
		}
	}
	for i := range finalized {
		s := &finalized[i]
		for _, id := range s.ConfirmedMembers {
			m := members[id]
			m.PresentCount++
			m.ServicesWithRecord++
			members[id] = m
		}
		for _, id := range s.AbsentMembers {
			m := members[id]
			m.AbsentCount++
			m.ServicesWithRecord++
			members[id] = m
		}
	}
	for id, m := range members {
		if m.ServicesWithRecord > 0 {
			m.AttendanceRate = roundPct(m.PresentCount, m.PresentCount+m.AbsentCount)
			members[id] = m
		}
	}
	sum.MemberStats = members

	// Song frequencies over every non-deleted record, open ones included:
	// the song list is set when the service is planned, not when it is
	// finalized.
	sum.AllSongs = countSongs(services)
	if len(sum.AllSongs) > models.TopSongsLimit {
		sum.TopSongs = sum.AllSongs[:models.TopSongsLimit]
	} else {
		sum.TopSongs = sum.AllSongs
	}

	return sum
}

func countSongs(services []models.Service) []models.SongCount {
	counts := make(map[string]*models.SongCount)
	for i := range services {
		s := &services[i]
		if s.IsDeleted() {
			continue
		}
		for _, song := range s.Songs {
			if c, ok := counts[song.SongID]; ok {
				c.Count++
			} else {
				counts[song.SongID] = &models.SongCount{
					SongID: song.SongID,
					Title:  song.Title,
					Count:  1,
				}
			}
		}
	}
	out := make([]models.SongCount, 0, len(counts))
	for _, c := range counts {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].SongID < out[j].SongID
	})
	return out
}

func roundPct(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(whole) * 100))
}
