package repository

import (
	"context"

	"carehub/internal/models"

	"gorm.io/gorm"
)

type ResidentRepository struct {
	db *gorm.DB
}

func NewResidentRepository(db *gorm.DB) *ResidentRepository {
	return &ResidentRepository{db: db}
}

func (r *ResidentRepository) Create(ctx context.Context, res *models.Resident) error {
	return r.db.WithContext(ctx).Omit("Facility").Create(res).Error
}

func (r *ResidentRepository) GetByID(ctx context.Context, id uint) (*models.Resident, error) {
	var res models.Resident
	err := r.db.WithContext(ctx).Preload("Facility").First(&res, id).Error
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *ResidentRepository) ListByFacility(ctx context.Context, facilityID uint, search string, limit, offset int) ([]models.Resident, error) {
	var list []models.Resident
	q := r.db.WithContext(ctx).Preload("Facility").Where("facility_id = ?", facilityID)
	if search != "" {
		q = q.Where("name LIKE ?", "%"+search+"%")
	}
	err := q.Order("name ASC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}

// ListConnectedToUser returns residents the user holds an approved link to.
func (r *ResidentRepository) ListConnectedToUser(ctx context.Context, userID uint) ([]models.Resident, error) {
	var list []models.Resident
	err := r.db.WithContext(ctx).Preload("Facility").
		Joins("INNER JOIN resident_family_links l ON l.resident_id = residents.id").
		Where("l.user_id = ? AND l.is_approved = ?", userID, true).
		Order("residents.name ASC").
		Find(&list).Error
	return list, err
}
