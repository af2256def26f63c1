package models

import "time"

type Resident struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	FacilityID  uint       `gorm:"not null;index" json:"facility_id"`
	Name        string     `gorm:"size:100;not null" json:"name"`
	Room        string     `gorm:"size:30" json:"room"`
	DateOfBirth *time.Time `json:"date_of_birth"`
	Gender      string     `gorm:"size:10" json:"gender"`
	CareLevel   string     `gorm:"size:30" json:"care_level"`
	Notes       string     `gorm:"type:text" json:"notes"`
	AdmittedAt  *time.Time `json:"admitted_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	Facility Facility `gorm:"foreignKey:FacilityID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

func (Resident) TableName() string {
	return "residents"
}

// ResidentSummary is what any authenticated account may see of a resident.
type ResidentSummary struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	FacilityID   uint   `json:"facility_id"`
	FacilityName string `json:"facility_name,omitempty"`
}

func (r *Resident) Summary() ResidentSummary {
	return ResidentSummary{
		ID:           r.ID,
		Name:         r.Name,
		FacilityID:   r.FacilityID,
		FacilityName: r.Facility.Name,
	}
}
