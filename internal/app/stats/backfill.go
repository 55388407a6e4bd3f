// internal/app/stats/backfill.go
package stats

import (
	"context"
	"math"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	groupstore "github.com/artom-sites/choirhub/internal/app/store/groups"
	servicestore "github.com/artom-sites/choirhub/internal/app/store/services"
	statsstore "github.com/artom-sites/choirhub/internal/app/store/stats"
	"github.com/artom-sites/choirhub/internal/domain/models"
)

// Backfill recomputes every group's summary from scratch. It exists for
// two historical migrations: service records created before the
// finalization concept (all left open, so the live path sees nothing)
// and summaries produced by older formula versions. Re-runnable; each
// run fully overwrites.
type Backfill struct {
	groups   *groupstore.Store
	services *servicestore.Store
	stats    *statsstore.Store
	log      *zap.Logger
}

func NewBackfill(groups *groupstore.Store, services *servicestore.Store, stats *statsstore.Store, log *zap.Logger) *Backfill {
	return &Backfill{groups: groups, services: services, stats: stats, log: log}
}

// BackfillReport summarizes one run.
type BackfillReport struct {
	Groups    int `json:"groups"`
	Skipped   int `json:"skipped"`
	Finalized int `json:"finalized"`
}

// Run walks every group. A failing group is logged and skipped so one
// corrupt document cannot wedge the whole migration.
func (b *Backfill) Run(ctx context.Context) (*BackfillReport, error) {
	report := &BackfillReport{}
	err := b.groups.IterateAll(ctx, func(g *models.Group) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := b.runGroup(ctx, g)
		if err != nil {
			report.Skipped++
			b.log.Warn("backfill skipped group",
				zap.String("group_id", g.ID.Hex()), zap.Error(err))
			return nil
		}
		report.Groups++
		report.Finalized += n
		return nil
	})
	if err != nil {
		return report, err
	}
	b.log.Info("backfill complete",
		zap.Int("groups", report.Groups),
		zap.Int("skipped", report.Skipped),
		zap.Int("finalized", report.Finalized))
	return report, nil
}

func (b *Backfill) runGroup(ctx context.Context, g *models.Group) (int, error) {
	finalized, err := b.services.FinalizeAll(ctx, g.ID)
	if err != nil {
		return 0, err
	}
	services, err := b.services.FindByGroup(ctx, g.ID)
	if err != nil {
		return 0, err
	}
	sum := BackfillCompute(g.ID, services, g.Members, time.Now().UTC())
	if err := b.stats.Upsert(ctx, &sum); err != nil {
		return 0, err
	}
	return finalized, nil
}

// RealRoster filters the roster down to slots that plausibly denote
// actual singers. Old rosters accumulated bookkeeping entries:
// account-linked slots with neither a voice part nor a leadership role
// are app accounts that were never placed in the choir, and counting
// them deflates every historical percentage.
func RealRoster(roster []models.RosterSlot) []models.RosterSlot {
	out := make([]models.RosterSlot, 0, len(roster))
	for i := range roster {
		s := roster[i]
		if s.IsDuplicate {
			continue
		}
		if s.HasAccount && s.Voice == "" && !models.IsElevatedRole(s.Role) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// BackfillCompute is the historical variant of Compute. Records
// predating open voting carry only explicit confirmations, so presence
// is counted from the confirmed set (present = |confirmed|) instead of
// presence-by-default, and the trend is not capped: the whole history
// is being reconstructed, not displayed.
func BackfillCompute(groupID primitive.ObjectID, services []models.Service, roster []models.RosterSlot, now time.Time) models.StatsSummary {
	real := RealRoster(roster)
	rosterSize := len(real)

	total := 0
	kept := make([]models.Service, 0, len(services))
	for i := range services {
		s := services[i]
		if s.IsDeleted() {
			continue
		}
		total++
		if s.IsFinalized {
			kept = append(kept, s)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		if !kept[i].Date.Equal(kept[j].Date) {
			return kept[i].Date.Before(kept[j].Date)
		}
		return kept[i].ID.Hex() < kept[j].ID.Hex()
	})

	sum := models.StatsSummary{
		ID:            groupID,
		TotalServices: total,
		ComputedAt:    now,
	}

	var pctSum int
	trend := make([]models.TrendEntry, 0, len(kept))
	for i := range kept {
		s := &kept[i]
		present := len(s.ConfirmedMembers)
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
	sum.AttendanceTrend = trend

	members := make(map[string]models.MemberStat, rosterSize)
	for i := range real {
		members[real[i].ID] = models.MemberStat{AttendanceRate: 100}
	}
	for i := range kept {
		s := &kept[i]
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

	sum.AllSongs = countSongs(services)
	if len(sum.AllSongs) > models.TopSongsLimit {
		sum.TopSongs = sum.AllSongs[:models.TopSongsLimit]
	} else {
		sum.TopSongs = sum.AllSongs
	}
	return sum
}
