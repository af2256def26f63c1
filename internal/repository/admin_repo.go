package repository

import (
	"context"

	"carehub/internal/models"

	"gorm.io/gorm"
)

// DashboardStats summarises one facility for its admins.
type DashboardStats struct {
	FacilityID        uint  `json:"facility_id"`
	TotalResidents    int64 `json:"total_residents"`
	TotalStaff        int64 `json:"total_staff"`
	PendingRequests   int64 `json:"pending_requests"`
	ConnectedFamilies int64 `json:"connected_families"`
	MedicalRecords    int64 `json:"medical_records"`
	Posts             int64 `json:"posts"`
}

type AdminRepository struct {
	db *gorm.DB
}

func NewAdminRepository(db *gorm.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

func (r *AdminRepository) GetDashboardStats(ctx context.Context, facilityID uint) (*DashboardStats, error) {
	s := DashboardStats{FacilityID: facilityID}
	db := r.db.WithContext(ctx)
	if err := db.Model(&models.Resident{}).Where("facility_id = ?", facilityID).Count(&s.TotalResidents).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.User{}).Where("facility_id = ? AND role IN ?", facilityID, staffRoles).Count(&s.TotalStaff).Error; err != nil {
		return nil, err
	}
	links := func(approved bool, dst *int64) error {
		return db.Model(&models.ResidentFamilyLink{}).
			Joins("INNER JOIN residents ON residents.id = resident_family_links.resident_id").
			Where("residents.facility_id = ? AND resident_family_links.is_approved = ?", facilityID, approved).
			Count(dst).Error
	}
	if err := links(false, &s.PendingRequests); err != nil {
		return nil, err
	}
	if err := links(true, &s.ConnectedFamilies); err != nil {
		return nil, err
	}
	if err := db.Model(&models.MedicalRecord{}).
		Joins("INNER JOIN residents ON residents.id = medical_records.resident_id").
		Where("residents.facility_id = ?", facilityID).
		Count(&s.MedicalRecords).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Post{}).Where("facility_id = ?", facilityID).Count(&s.Posts).Error; err != nil {
		return nil, err
	}
	return &s, nil
}
