// internal/domain/models/roles.go
package models

// Group roles, in escalation order. "regent" is the conductor role;
// "head" administers the group.
const (
	RoleMember = "member"
	RoleRegent = "regent"
	RoleHead   = "head"
)

var roleRank = map[string]int{
	RoleMember: 1,
	RoleRegent: 2,
	RoleHead:   3,
}

// RoleRank returns the escalation rank of a role; unknown roles rank 0.
func RoleRank(role string) int {
	return roleRank[role]
}

// IsElevatedRole reports whether the role carries group-admin authority.
func IsElevatedRole(role string) bool {
	return role == RoleRegent || role == RoleHead
}

// UpgradeRole merges a current role with a newly granted one. Roles only
// escalate: joining with a lower-ranked code never downgrades.
func UpgradeRole(current, granted string) string {
	if RoleRank(granted) > RoleRank(current) {
		return granted
	}
	if RoleRank(current) == 0 {
		return granted
	}
	return current
}

// UnionPermissions merges two permission sets, preserving the order of a
// and appending unseen entries of b.
func UnionPermissions(a, b []string) []string {
	if len(b) == 0 {
		return a
	}
	seen := make(map[string]struct{}, len(a))
	out := make([]string, 0, len(a)+len(b))
	for _, p := range a {
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	for _, p := range b {
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// SamePermissions reports whether two permission sets contain the same
// entries, ignoring order.
func SamePermissions(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[string]struct{}, len(a))
	for _, p := range a {
		set[p] = struct{}{}
	}
	for _, p := range b {
		if _, ok := set[p]; !ok {
			return false
		}
	}
	return true
}
