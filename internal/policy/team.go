package policy

import "teamtasks/internal/model"

// CanViewTeam reports whether the caller's membership (nil if none) grants
// read access to the team.
func CanViewTeam(membership *model.Membership) bool {
	return membership != nil
}

// CanManageTeam reports whether the membership grants update/delete rights
// on the team and its member list.
func CanManageTeam(membership *model.Membership) bool {
	return membership != nil && membership.IsAdmin()
}
