package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ActivityLog is an append-only record of a state-changing action. Entries
// are written synchronously after the triggering mutation commits and are
// never read back by business logic. References to team/task/user are weak:
// they null out when the target is deleted instead of blocking the delete.
type ActivityLog struct {
	ID           uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	Action       string     `gorm:"not null;check:action IN ('task_created', 'task_assigned', 'task_status_changed', 'member_added', 'member_removed')"`
	PerformedBy  uuid.UUID  `gorm:"type:uuid;not null"`
	TeamID       *uuid.UUID `gorm:"type:uuid;index"`
	TaskID       *uuid.UUID `gorm:"type:uuid"`
	TargetUserID *uuid.UUID `gorm:"type:uuid"`
	Timestamp    time.Time  `gorm:"autoCreateTime;index"`
	Details      JSONMap    `gorm:"type:jsonb"`

	Performer  User  `gorm:"foreignKey:PerformedBy"`
	Team       *Team `gorm:"foreignKey:TeamID;constraint:OnDelete:SET NULL"`
	Task       *Task `gorm:"foreignKey:TaskID;constraint:OnDelete:SET NULL"`
	TargetUser *User `gorm:"foreignKey:TargetUserID;constraint:OnDelete:SET NULL"`
}

// Audit actions
const (
	ActionTaskCreated       = "task_created"
	ActionTaskAssigned      = "task_assigned"
	ActionTaskStatusChanged = "task_status_changed"
	ActionMemberAdded       = "member_added"
	ActionMemberRemoved     = "member_removed"
)

// JSONMap stores an opaque key-value payload in a jsonb column.
type JSONMap map[string]any

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

func (m *JSONMap) Scan(value any) error {
	if value == nil {
		*m = nil
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.New("unsupported type for JSONMap")
	}
	return json.Unmarshal(data, m)
}
