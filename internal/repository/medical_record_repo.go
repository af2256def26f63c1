package repository

import (
	"context"

	"carehub/internal/models"

	"gorm.io/gorm"
)

type MedicalRecordRepository struct {
	db *gorm.DB
}

func NewMedicalRecordRepository(db *gorm.DB) *MedicalRecordRepository {
	return &MedicalRecordRepository{db: db}
}

func (r *MedicalRecordRepository) Create(ctx context.Context, rec *models.MedicalRecord) error {
	return r.db.WithContext(ctx).Omit("Resident", "Author").Create(rec).Error
}

func (r *MedicalRecordRepository) ListByResident(ctx context.Context, residentID uint, limit, offset int) ([]models.MedicalRecord, error) {
	var list []models.MedicalRecord
	err := r.db.WithContext(ctx).Where("resident_id = ?", residentID).
		Order("recorded_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}
