package models

import "time"

// ResidentFamilyLink is one family account's claim to a relationship with one
// resident. A row exists while the request is pending or approved; rejection
// deletes it. At most one row per (resident_id, user_id).
type ResidentFamilyLink struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	ResidentID   uint       `gorm:"not null;uniqueIndex:idx_resident_user" json:"resident_id"`
	UserID       uint       `gorm:"not null;uniqueIndex:idx_resident_user;index" json:"user_id"`
	Relationship string     `gorm:"size:50;not null" json:"relationship"`
	IsApproved   bool       `gorm:"not null;default:false;index" json:"is_approved"`
	ApprovedByID *uint      `json:"approved_by_id"`
	ApprovedAt   *time.Time `json:"approved_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	Resident   *Resident `gorm:"foreignKey:ResidentID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"resident,omitempty"`
	User       *User     `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"user,omitempty"`
	ApprovedBy *User     `gorm:"foreignKey:ApprovedByID;constraint:OnDelete:SET NULL" json:"-"`

	// ResidentSummary stands in for Resident when the requester is not yet connected.
	ResidentSummary *ResidentSummary `gorm:"-" json:"resident_summary,omitempty"`
}

func (ResidentFamilyLink) TableName() string {
	return "resident_family_links"
}
