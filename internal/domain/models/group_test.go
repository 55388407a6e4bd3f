// internal/domain/models/group_test.go
package models

import "testing"

func TestRosterSlotResolvesTo(t *testing.T) {
	s := RosterSlot{ID: "manual_x", AccountUID: "uid-1", LinkedUserIDs: []string{"uid-2"}}
	if !s.ResolvesTo("uid-1") || !s.ResolvesTo("uid-2") {
		t.Error("slot must resolve to primary and linked accounts")
	}
	if s.ResolvesTo("uid-3") {
		t.Error("slot must not resolve to unrelated uid")
	}
}

func TestActiveRosterSizeExcludesDuplicates(t *testing.T) {
	g := Group{Members: []RosterSlot{
		{ID: "a"},
		{ID: "b", IsDuplicate: true},
		{ID: "c"},
	}}
	if got := g.ActiveRosterSize(); got != 2 {
		t.Errorf("ActiveRosterSize = %d, want 2", got)
	}
}

func TestUnlinkedSlots(t *testing.T) {
	g := Group{Members: []RosterSlot{
		{ID: "manual_a"},
		{ID: "manual_b", HasAccount: true, AccountUID: "uid-1"},
		{ID: "manual_c", IsDuplicate: true},
		{ID: "uid-2", HasAccount: true, AccountUID: "uid-2"},
	}}
	got := g.UnlinkedSlots()
	if len(got) != 1 || got[0].ID != "manual_a" {
		t.Errorf("UnlinkedSlots = %+v, want only manual_a", got)
	}
}

func TestIsManual(t *testing.T) {
	manual := RosterSlot{ID: ManualSlotPrefix + "abc"}
	account := RosterSlot{ID: "some-uid"}
	if !manual.IsManual() || account.IsManual() {
		t.Error("IsManual must key off the manual_ prefix")
	}
}
