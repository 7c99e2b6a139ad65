package model

import (
	"time"

	"github.com/google/uuid"
)

type Task struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	Title       string    `gorm:"not null"`
	Description string
	Status      string `gorm:"not null;default:'todo';check:status IN ('todo', 'in_progress', 'done')"`
	DueDate     *time.Time
	TeamID      uuid.UUID  `gorm:"type:uuid;not null;index"`
	CreatedBy   uuid.UUID  `gorm:"type:uuid;not null"`
	AssignedTo  *uuid.UUID `gorm:"type:uuid"`
	IsDeleted   bool       `gorm:"not null;default:false;index"`
	DeletedAt   *time.Time
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`

	Team     Team       `gorm:"foreignKey:TeamID;constraint:OnDelete:CASCADE"`
	Creator  Membership `gorm:"foreignKey:CreatedBy"`
	Assignee Membership `gorm:"foreignKey:AssignedTo;constraint:OnDelete:SET NULL"`

	// Assignments is the authoritative multi-assignee set; AssignedTo is the
	// legacy single-assignee column kept in sync with the first assignment.
	Assignments []TaskAssignment `gorm:"foreignKey:TaskID"`
}

// Task statuses
const (
	StatusTodo       = "todo"
	StatusInProgress = "in_progress"
	StatusDone       = "done"
)

// ValidStatus reports whether s is one of the closed set of task statuses.
func ValidStatus(s string) bool {
	return s == StatusTodo || s == StatusInProgress || s == StatusDone
}

// TaskAssignment links a task to one assigned membership.
type TaskAssignment struct {
	TaskID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	MembershipID uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`

	Task       Task       `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE"`
	Membership Membership `gorm:"foreignKey:MembershipID;constraint:OnDelete:CASCADE"`
}
