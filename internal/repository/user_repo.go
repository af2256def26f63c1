package repository

import (
	"context"

	"carehub/internal/domain"
	"carehub/internal/models"

	"gorm.io/gorm"
)

var staffRoles = []string{domain.RoleCaregiver, domain.RoleAdmin}

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *UserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	err := r.db.WithContext(ctx).First(&u, id).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetProfile loads a user together with its facility.
func (r *UserRepository) GetProfile(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	err := r.db.WithContext(ctx).Preload("Facility").First(&u, id).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	var u models.User
	err := r.db.WithContext(ctx).Where("google_id = ?", googleID).First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) Update(ctx context.Context, u *models.User) error {
	return r.db.WithContext(ctx).Save(u).Error
}

func (r *UserRepository) UpdateFCMToken(ctx context.Context, userID uint, token string) error {
	return r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Update("fcm_token", token).Error
}

// ListStaffIDsByFacility returns caregiver and admin ids of one facility.
func (r *UserRepository) ListStaffIDsByFacility(ctx context.Context, facilityID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("facility_id = ? AND role IN ?", facilityID, staffRoles).
		Pluck("id", &ids).Error
	return ids, err
}

func (r *UserRepository) ListStaffByFacility(ctx context.Context, facilityID uint, limit, offset int) ([]models.User, error) {
	var list []models.User
	err := r.db.WithContext(ctx).
		Where("facility_id = ? AND role IN ?", facilityID, staffRoles).
		Order("name ASC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}
