// internal/app/stats/compute_test.go
package stats

import (
	"reflect"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/artom-sites/choirhub/internal/domain/models"
)

func roster(n int) []models.RosterSlot {
	out := make([]models.RosterSlot, n)
	for i := range out {
		out[i] = models.RosterSlot{ID: slotID(i), Name: "Singer", Role: models.RoleMember}
	}
	return out
}

func slotID(i int) string {
	return "slot-" + string(rune('a'+i))
}

func finalizedService(date time.Time, absent []string) models.Service {
	return models.Service{
		ID:            primitive.NewObjectID(),
		Date:          date,
		IsFinalized:   true,
		AbsentMembers: absent,
	}
}

func TestComputeEightyPercentScenario(t *testing.T) {
	gid := primitive.NewObjectID()
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	services := []models.Service{
		finalizedService(time.Date(2025, 5, 4, 10, 0, 0, 0, time.UTC),
			[]string{slotID(0), slotID(1)}),
	}

	sum := Compute(gid, services, roster(10), now)

	if sum.TotalServices != 1 {
		t.Fatalf("TotalServices = %d, want 1", sum.TotalServices)
	}
	if len(sum.AttendanceTrend) != 1 {
		t.Fatalf("trend entries = %d, want 1", len(sum.AttendanceTrend))
	}
	e := sum.AttendanceTrend[0]
	if e.Percentage != 80 || e.Present != 8 || e.Total != 10 {
		t.Errorf("trend = {pct:%d present:%d total:%d}, want {80 8 10}",
			e.Percentage, e.Present, e.Total)
	}
	if sum.AverageAttendance != 80 {
		t.Errorf("AverageAttendance = %d, want 80", sum.AverageAttendance)
	}
}

func TestComputeIsDeterministic(t *testing.T) {
	gid := primitive.NewObjectID()
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	base := time.Date(2025, 1, 5, 10, 0, 0, 0, time.UTC)

	var services []models.Service
	for i := 0; i < 15; i++ {
		s := finalizedService(base.AddDate(0, 0, 7*i), []string{slotID(i % 4)})
		s.Songs = []models.SongRef{{SongID: "s1", Title: "Doxology"}}
		s.ConfirmedMembers = []string{slotID(5)}
		services = append(services, s)
	}

	a := Compute(gid, services, roster(8), now)
	b := Compute(gid, services, roster(8), now)
	if !reflect.DeepEqual(a, b) {
		t.Fatal("identical inputs produced different summaries")
	}
}

func TestComputeTrendKeepsMostRecentChronological(t *testing.T) {
	gid := primitive.NewObjectID()
	now := time.Now().UTC()
	base := time.Date(2025, 1, 5, 10, 0, 0, 0, time.UTC)

	var services []models.Service
	for i := 0; i < models.TrendLimit+5; i++ {
		services = append(services, finalizedService(base.AddDate(0, 0, 7*i), nil))
	}

	sum := Compute(gid, services, roster(4), now)
	if len(sum.AttendanceTrend) != models.TrendLimit {
		t.Fatalf("trend entries = %d, want %d", len(sum.AttendanceTrend), models.TrendLimit)
	}
	wantFirst := base.AddDate(0, 0, 7*5)
	if !sum.AttendanceTrend[0].Date.Equal(wantFirst) {
		t.Errorf("trend starts at %v, want %v (oldest entries dropped)",
			sum.AttendanceTrend[0].Date, wantFirst)
	}
	for i := 1; i < len(sum.AttendanceTrend); i++ {
		if sum.AttendanceTrend[i].Date.Before(sum.AttendanceTrend[i-1].Date) {
			t.Fatal("trend is not chronological")
		}
	}
}

func TestComputeSongOrdering(t *testing.T) {
	gid := primitive.NewObjectID()
	now := time.Now().UTC()
	date := time.Date(2025, 2, 2, 10, 0, 0, 0, time.UTC)

	mk := func(songs ...models.SongRef) models.Service {
		s := finalizedService(date, nil)
		s.Songs = songs
		return s
	}
	b := models.SongRef{SongID: "b", Title: "Be Thou My Vision"}
	a := models.SongRef{SongID: "a", Title: "Abide With Me"}
	c := models.SongRef{SongID: "c", Title: "Come Thou Fount"}

	services := []models.Service{mk(b, c), mk(b, a), mk(c)}
	sum := Compute(gid, services, roster(3), now)

	want := []models.SongCount{
		{SongID: "b", Title: "Be Thou My Vision", Count: 2},
		{SongID: "c", Title: "Come Thou Fount", Count: 2},
		{SongID: "a", Title: "Abide With Me", Count: 1},
	}
	if !reflect.DeepEqual(sum.AllSongs, want) {
		t.Errorf("AllSongs = %+v, want %+v (count desc, id asc)", sum.AllSongs, want)
	}
}

func TestComputeSongsIncludeOpenButNotDeleted(t *testing.T) {
	gid := primitive.NewObjectID()
	now := time.Now().UTC()
	date := time.Date(2025, 2, 2, 10, 0, 0, 0, time.UTC)

	open := models.Service{
		ID: primitive.NewObjectID(), Date: date,
		Songs: []models.SongRef{{SongID: "x", Title: "X"}},
	}
	del := open
	del.ID = primitive.NewObjectID()
	delAt := now
	del.DeletedAt = &delAt

	sum := Compute(gid, []models.Service{open, del}, roster(3), now)
	if len(sum.AllSongs) != 1 || sum.AllSongs[0].Count != 1 {
		t.Fatalf("AllSongs = %+v, want single count of 1", sum.AllSongs)
	}
	if sum.TotalServices != 1 {
		t.Errorf("TotalServices = %d, want 1 (deleted excluded)", sum.TotalServices)
	}
}

func TestComputeMemberStats(t *testing.T) {
	gid := primitive.NewObjectID()
	now := time.Now().UTC()
	date := time.Date(2025, 2, 2, 10, 0, 0, 0, time.UTC)

	s1 := finalizedService(date, []string{slotID(1)})
	s1.ConfirmedMembers = []string{slotID(0)}
	s2 := finalizedService(date.AddDate(0, 0, 7), []string{slotID(1)})
	s2.ConfirmedMembers = []string{slotID(0), slotID(1)}

	sum := Compute(gid, []models.Service{s1, s2}, roster(3), now)

	m0 := sum.MemberStats[slotID(0)]
	if m0.PresentCount != 2 || m0.AbsentCount != 0 || m0.AttendanceRate != 100 {
		t.Errorf("slot 0 = %+v, want 2 present, rate 100", m0)
	}
	m1 := sum.MemberStats[slotID(1)]
	if m1.PresentCount != 1 || m1.AbsentCount != 2 || m1.ServicesWithRecord != 3 {
		t.Errorf("slot 1 = %+v, want 1 present / 2 absent over 3 records", m1)
	}
	if m1.AttendanceRate != 33 {
		t.Errorf("slot 1 rate = %d, want 33", m1.AttendanceRate)
	}
	m2 := sum.MemberStats[slotID(2)]
	if m2.ServicesWithRecord != 0 || m2.AttendanceRate != 100 {
		t.Errorf("slot 2 = %+v, want no records and default rate 100", m2)
	}
}

func TestBackfillComputeCountsConfirmedOnly(t *testing.T) {
	gid := primitive.NewObjectID()
	now := time.Now().UTC()
	date := time.Date(2024, 9, 1, 10, 0, 0, 0, time.UTC)

	s := finalizedService(date, nil)
	s.ConfirmedMembers = []string{slotID(0), slotID(1)}

	sum := BackfillCompute(gid, []models.Service{s}, roster(4), now)
	e := sum.AttendanceTrend[0]
	if e.Present != 2 || e.Total != 4 || e.Percentage != 50 {
		t.Errorf("trend = {present:%d total:%d pct:%d}, want {2 4 50}",
			e.Present, e.Total, e.Percentage)
	}
}

func TestRealRosterHeuristic(t *testing.T) {
	roster := []models.RosterSlot{
		{ID: "a", Voice: "soprano", HasAccount: true},
		{ID: "b", HasAccount: true, Role: models.RoleMember},
		{ID: "c", HasAccount: true, Role: models.RoleRegent},
		{ID: "d", Voice: "bass"},
		{ID: "e", IsDuplicate: true, Voice: "alto"},
	}

	real := RealRoster(roster)
	got := make([]string, 0, len(real))
	for _, s := range real {
		got = append(got, s.ID)
	}
	want := []string{"a", "c", "d"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("real roster = %v, want %v", got, want)
	}
}
