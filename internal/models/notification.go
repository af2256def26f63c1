package models

import "time"

// Notification is immutable apart from IsRead; only its recipient may mark or delete it.
type Notification struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	Type        string    `gorm:"size:50;not null;index" json:"type"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Content     *string   `gorm:"type:text" json:"content"`
	RelatedID   *uint     `json:"related_id"`
	RelatedType *string   `gorm:"size:50" json:"related_type"` // lookup only, never an ownership edge
	IsRead      bool      `gorm:"not null;default:false;index" json:"is_read"`
	CreatedAt   time.Time `json:"created_at"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Notification) TableName() string {
	return "notifications"
}
