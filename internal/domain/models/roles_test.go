// internal/domain/models/roles_test.go
package models

import (
	"reflect"
	"testing"
)

func TestUpgradeRoleOnlyEscalates(t *testing.T) {
	cases := []struct {
		current, granted, want string
	}{
		{"", RoleMember, RoleMember},
		{RoleMember, RoleRegent, RoleRegent},
		{RoleRegent, RoleMember, RoleRegent},
		{RoleHead, RoleRegent, RoleHead},
		{RoleMember, RoleMember, RoleMember},
		{"bogus", RoleMember, RoleMember},
	}
	for _, c := range cases {
		if got := UpgradeRole(c.current, c.granted); got != c.want {
			t.Errorf("UpgradeRole(%q, %q) = %q, want %q", c.current, c.granted, got, c.want)
		}
	}
}

func TestIsElevatedRole(t *testing.T) {
	if IsElevatedRole(RoleMember) {
		t.Error("member must not be elevated")
	}
	if !IsElevatedRole(RoleRegent) || !IsElevatedRole(RoleHead) {
		t.Error("regent and head must be elevated")
	}
}

func TestUnionPermissions(t *testing.T) {
	got := UnionPermissions([]string{"a", "b"}, []string{"b", "c"})
	want := []string{"a", "b", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("UnionPermissions = %v, want %v", got, want)
	}
	if got := UnionPermissions(nil, nil); len(got) != 0 {
		t.Errorf("UnionPermissions(nil, nil) = %v, want empty", got)
	}
}

func TestSamePermissions(t *testing.T) {
	if !SamePermissions([]string{"a", "b"}, []string{"b", "a"}) {
		t.Error("order must not matter")
	}
	if SamePermissions([]string{"a"}, []string{"a", "b"}) {
		t.Error("different lengths must differ")
	}
}
