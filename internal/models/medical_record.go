package models

import "time"

type MedicalRecord struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ResidentID  uint      `gorm:"not null;index" json:"resident_id"`
	AuthorID    uint      `gorm:"not null;index" json:"author_id"`
	Category    string    `gorm:"size:30;not null" json:"category"` // e.g. vitals, medication, checkup
	Title       string    `gorm:"size:200;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	RecordedAt  time.Time `gorm:"index" json:"recorded_at"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Resident Resident `gorm:"foreignKey:ResidentID;constraint:OnDelete:CASCADE" json:"-"`
	Author   User     `gorm:"foreignKey:AuthorID" json:"-"`
}

func (MedicalRecord) TableName() string {
	return "medical_records"
}
