package repository

import (
	"context"

	"carehub/internal/models"

	"gorm.io/gorm"
)

type FacilityRepository struct {
	db *gorm.DB
}

func NewFacilityRepository(db *gorm.DB) *FacilityRepository {
	return &FacilityRepository{db: db}
}

func (r *FacilityRepository) Create(ctx context.Context, f *models.Facility) error {
	return r.db.WithContext(ctx).Create(f).Error
}

func (r *FacilityRepository) GetByID(ctx context.Context, id uint) (*models.Facility, error) {
	var f models.Facility
	err := r.db.WithContext(ctx).First(&f, id).Error
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *FacilityRepository) List(ctx context.Context) ([]models.Facility, error) {
	var list []models.Facility
	err := r.db.WithContext(ctx).Order("name ASC").Find(&list).Error
	return list, err
}
