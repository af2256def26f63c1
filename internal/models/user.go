package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Email        string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Name         string         `gorm:"size:100;not null;default:''" json:"name"`
	PasswordHash string         `gorm:"size:255" json:"-"`
	Role         string         `gorm:"size:20;not null;index" json:"role"` // FAMILY | CAREGIVER | ADMIN
	FacilityID   *uint          `gorm:"index" json:"facility_id"`         // nil for family accounts
	GoogleID     *string        `gorm:"uniqueIndex;size:255" json:"-"`    // nil for email signups
	FCMToken     string         `gorm:"size:512" json:"-"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	Facility *Facility `gorm:"foreignKey:FacilityID" json:"facility,omitempty"`
}

// DisplayName falls back to the email local part when no name is set.
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	local, _, _ := strings.Cut(u.Email, "@")
	return local
}
