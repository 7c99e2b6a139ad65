package model

import (
	"time"

	"github.com/google/uuid"
)

type Team struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	Name      string    `gorm:"not null"`
	CompanyID uuid.UUID `gorm:"type:uuid;not null;index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`

	Company     Company      `gorm:"foreignKey:CompanyID;constraint:OnDelete:CASCADE"`
	Memberships []Membership `gorm:"foreignKey:TeamID"`
}
