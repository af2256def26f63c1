package models

import (
	"time"

	"gorm.io/gorm"
)

// Post is a facility-wide announcement written by staff.
type Post struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	FacilityID uint           `gorm:"not null;index" json:"facility_id"`
	AuthorID   uint           `gorm:"not null;index" json:"author_id"`
	Title      string         `gorm:"size:200;not null" json:"title"`
	Content    string         `gorm:"type:text" json:"content"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`

	Facility Facility `gorm:"foreignKey:FacilityID;constraint:OnDelete:CASCADE" json:"-"`
	Author   User     `gorm:"foreignKey:AuthorID" json:"-"`
}

func (Post) TableName() string {
	return "posts"
}
