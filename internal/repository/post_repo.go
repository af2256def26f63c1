package repository

import (
	"context"

	"carehub/internal/models"

	"gorm.io/gorm"
)

type PostRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) *PostRepository {
	return &PostRepository{db: db}
}

func (r *PostRepository) Create(ctx context.Context, p *models.Post) error {
	return r.db.WithContext(ctx).Omit("Facility", "Author").Create(p).Error
}

func (r *PostRepository) ListByFacilities(ctx context.Context, facilityIDs []uint, limit, offset int) ([]models.Post, error) {
	var list []models.Post
	if len(facilityIDs) == 0 {
		return list, nil
	}
	err := r.db.WithContext(ctx).Where("facility_id IN ?", facilityIDs).
		Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}
