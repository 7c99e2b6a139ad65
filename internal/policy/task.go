package policy

import "teamtasks/internal/model"

// Fields a task update may touch, per role. Everything else on the task
// (team, created_by, is_deleted, assignments, timestamps) is
// authority-assigned and never client-writable.
var (
	adminTaskFields = map[string]bool{
		"title":       true,
		"description": true,
		"status":      true,
		"due_date":    true,
	}
	memberTaskFields = map[string]bool{
		"status":      true,
		"description": true,
	}
)

// CanViewTask reports whether the membership grants read access to tasks of
// its team.
func CanViewTask(membership *model.Membership) bool {
	return membership != nil
}

// CanCreateTask reports whether the membership grants task creation in its
// team. Any member may create tasks.
func CanCreateTask(membership *model.Membership) bool {
	return membership != nil
}

// CanUpdateTask decides a partial task update given the set of field names
// present in the request. One forbidden field rejects the whole update, even
// when allowed fields are also present: the returned string names the first
// offending field.
func CanUpdateTask(membership *model.Membership, fields []string) (bool, string) {
	if membership == nil {
		return false, ""
	}
	allowed := memberTaskFields
	if membership.IsAdmin() {
		allowed = adminTaskFields
	}
	for _, f := range fields {
		if !allowed[f] {
			return false, f
		}
	}
	return true, ""
}

// CanDeleteTask reports whether the membership grants task deletion.
func CanDeleteTask(membership *model.Membership) bool {
	return membership != nil && membership.IsAdmin()
}

// CanAssignTask reports whether the membership grants assigning members.
func CanAssignTask(membership *model.Membership) bool {
	return membership != nil && membership.IsAdmin()
}

// CanViewActivity reports whether the membership grants reading the team's
// audit trail.
func CanViewActivity(membership *model.Membership) bool {
	return membership != nil && membership.IsAdmin()
}
