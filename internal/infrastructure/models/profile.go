package models

import (
	"time"

	"github.com/google/uuid"
)

// Profile mirrors the provider-issued identity id as its primary key,
// which is what makes profile creation idempotent under concurrent
// OAuth callbacks.
type Profile struct {
	ID                uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Email             string     `gorm:"type:varchar(255);not null"`
	DisplayName       string     `gorm:"type:varchar(100);not null"`
	Role              string     `gorm:"type:varchar(50);not null;default:'applicant'"`
	IsProfileComplete bool       `gorm:"not null;default:false"`
	DOB               *time.Time `gorm:"type:date"`
	School            *string    `gorm:"type:varchar(255)"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (Profile) TableName() string {
	return "profile"
}
