package model

import (
	"time"

	"github.com/google/uuid"
)

// Membership grants a user a role within one team. It is the unit of
// authorization: task and team permissions are decided against the caller's
// membership, not the user record.
type Membership struct {
	ID       uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	UserID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_memberships_user_team"`
	TeamID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_memberships_user_team;index"`
	Role     string    `gorm:"not null;check:role IN ('admin', 'member')"`
	JoinedAt time.Time `gorm:"autoCreateTime"`

	User User `gorm:"foreignKey:UserID"`
	Team Team `gorm:"foreignKey:TeamID;constraint:OnDelete:CASCADE"`
}

// Team roles
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// ValidRole reports whether s is one of the closed set of team roles.
func ValidRole(s string) bool {
	return s == RoleAdmin || s == RoleMember
}

// IsAdmin reports whether the membership carries the admin role.
func (m *Membership) IsAdmin() bool {
	return m.Role == RoleAdmin
}
