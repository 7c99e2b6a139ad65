package repository

import "errors"

// Common repository errors
var (
	// ErrCompanyNotFound is returned when a company is not found
	ErrCompanyNotFound = errors.New("company not found")

	// ErrTeamNotFound is returned when a team is not found
	ErrTeamNotFound = errors.New("team not found")

	// ErrMembershipNotFound is returned when a membership is not found
	ErrMembershipNotFound = errors.New("membership not found")

	// ErrAlreadyMember is returned when the (user, team) pair already exists
	ErrAlreadyMember = errors.New("user is already a member of this team")

	// ErrNotAMember is returned when the target user holds no membership in the team
	ErrNotAMember = errors.New("user is not a member of this team")

	// ErrLastAdmin is returned when removing or demoting the team's sole admin
	ErrLastAdmin = errors.New("cannot remove the last admin, transfer ownership first")

	// ErrSelfRemoval is returned when an admin tries to remove themselves
	ErrSelfRemoval = errors.New("cannot remove yourself from the team, transfer ownership first")

	// ErrSelfRoleChange is returned when an admin tries to change their own role
	ErrSelfRoleChange = errors.New("cannot change your own role, ask another admin")

	// ErrAlreadyAssigned is returned when the membership is already in the task's assignment set
	ErrAlreadyAssigned = errors.New("member is already assigned to this task")
)
