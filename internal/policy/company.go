// Package policy holds the per-entity authorization decisions. Every
// function is pure: it is handed the caller's identity and the already
// loaded entity or membership and answers allow/deny, so the rules are
// testable without a database.
//
// Authorization rules:
//   - Companies are visible and writable only to their owner; anyone
//     authenticated may create one and becomes its owner.
//   - Teams are visible to any member; updating, deleting, and membership
//     management require the admin role. Creating a team requires owning the
//     parent company.
//   - Tasks are visible to any member of their team. Members may change only
//     status and description; admins may also change title and due date.
//     Deleting and assigning are admin-only.
//
// Visibility denials are reported by handlers as 404, not 403, so callers
// cannot probe for the existence of entities they cannot see.
package policy

import (
	"teamtasks/internal/model"

	"github.com/google/uuid"
)

// CanViewCompany reports whether the user can see the company. Companies are
// scoped to their owner: non-owners do not see them at all.
func CanViewCompany(userID uuid.UUID, company *model.Company) bool {
	return company != nil && company.OwnerID == userID
}

// CanUpdateCompany reports whether the user may rename the company.
func CanUpdateCompany(userID uuid.UUID, company *model.Company) bool {
	return company != nil && company.OwnerID == userID
}

// CanDeleteCompany reports whether the user may delete the company and
// everything under it.
func CanDeleteCompany(userID uuid.UUID, company *model.Company) bool {
	return company != nil && company.OwnerID == userID
}

// CanCreateTeamIn reports whether the user may create teams under the
// company. Ownership of the company is the only gate; team membership plays
// no part at this boundary.
func CanCreateTeamIn(userID uuid.UUID, company *model.Company) bool {
	return company != nil && company.OwnerID == userID
}
