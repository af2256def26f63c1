package repository

import (
	"context"
	"time"

	"carehub/internal/models"

	"gorm.io/gorm"
)

type FamilyLinkRepository struct {
	db *gorm.DB
}

func NewFamilyLinkRepository(db *gorm.DB) *FamilyLinkRepository {
	return &FamilyLinkRepository{db: db}
}

// Transaction runs fn against a repository bound to a single database transaction.
func (r *FamilyLinkRepository) Transaction(ctx context.Context, fn func(tx *FamilyLinkRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&FamilyLinkRepository{db: tx})
	})
}

func (r *FamilyLinkRepository) Create(ctx context.Context, link *models.ResidentFamilyLink) error {
	return r.db.WithContext(ctx).Omit("Resident", "User", "ApprovedBy").Create(link).Error
}

func (r *FamilyLinkRepository) GetByID(ctx context.Context, id uint) (*models.ResidentFamilyLink, error) {
	var link models.ResidentFamilyLink
	err := r.db.WithContext(ctx).Preload("Resident").Preload("User").First(&link, id).Error
	if err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *FamilyLinkRepository) GetByPair(ctx context.Context, residentID, userID uint) (*models.ResidentFamilyLink, error) {
	var link models.ResidentFamilyLink
	err := r.db.WithContext(ctx).Where("resident_id = ? AND user_id = ?", residentID, userID).First(&link).Error
	if err != nil {
		return nil, err
	}
	return &link, nil
}

// Approve flips a pending link to approved. It returns the number of rows
// changed, which is zero when the link is gone or already approved.
func (r *FamilyLinkRepository) Approve(ctx context.Context, id, approverID uint, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.ResidentFamilyLink{}).
		Where("id = ? AND is_approved = ?", id, false).
		Updates(map[string]interface{}{
			"is_approved":    true,
			"approved_by_id": approverID,
			"approved_at":    at,
		})
	return res.RowsAffected, res.Error
}

// DeletePending removes a link only while it is still pending.
func (r *FamilyLinkRepository) DeletePending(ctx context.Context, id uint) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ? AND is_approved = ?", id, false).Delete(&models.ResidentFamilyLink{})
	return res.RowsAffected, res.Error
}

func (r *FamilyLinkRepository) DeleteByPair(ctx context.Context, residentID, userID uint) (int64, error) {
	res := r.db.WithContext(ctx).Where("resident_id = ? AND user_id = ?", residentID, userID).Delete(&models.ResidentFamilyLink{})
	return res.RowsAffected, res.Error
}

// ListPendingByFacility returns pending links whose resident belongs to facilityID.
func (r *FamilyLinkRepository) ListPendingByFacility(ctx context.Context, facilityID uint, limit, offset int) ([]models.ResidentFamilyLink, error) {
	var list []models.ResidentFamilyLink
	err := r.db.WithContext(ctx).
		Joins("INNER JOIN residents ON residents.id = resident_family_links.resident_id").
		Where("residents.facility_id = ? AND resident_family_links.is_approved = ?", facilityID, false).
		Preload("Resident").Preload("User").
		Order("resident_family_links.created_at ASC").
		Limit(limit).Offset(offset).
		Find(&list).Error
	return list, err
}

func (r *FamilyLinkRepository) ListByUserID(ctx context.Context, userID uint, limit, offset int) ([]models.ResidentFamilyLink, error) {
	var list []models.ResidentFamilyLink
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Preload("Resident.Facility").
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&list).Error
	return list, err
}

// ListByUserAndResidents returns the user's links for the given residents, keyed by resident id.
func (r *FamilyLinkRepository) ListByUserAndResidents(ctx context.Context, userID uint, residentIDs []uint) (map[uint]*models.ResidentFamilyLink, error) {
	out := make(map[uint]*models.ResidentFamilyLink, len(residentIDs))
	if len(residentIDs) == 0 {
		return out, nil
	}
	var list []models.ResidentFamilyLink
	err := r.db.WithContext(ctx).Where("user_id = ? AND resident_id IN ?", userID, residentIDs).Find(&list).Error
	if err != nil {
		return nil, err
	}
	for i := range list {
		out[list[i].ResidentID] = &list[i]
	}
	return out, nil
}

func (r *FamilyLinkRepository) ListApprovedUserIDsByResident(ctx context.Context, residentID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.ResidentFamilyLink{}).
		Where("resident_id = ? AND is_approved = ?", residentID, true).
		Pluck("user_id", &ids).Error
	return ids, err
}

// ListApprovedUserIDsByFacility returns distinct family users connected to any resident of the facility.
func (r *FamilyLinkRepository) ListApprovedUserIDsByFacility(ctx context.Context, facilityID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.ResidentFamilyLink{}).
		Distinct("resident_family_links.user_id").
		Joins("INNER JOIN residents ON residents.id = resident_family_links.resident_id").
		Where("residents.facility_id = ? AND resident_family_links.is_approved = ?", facilityID, true).
		Pluck("resident_family_links.user_id", &ids).Error
	return ids, err
}

// ListConnectedFacilityIDs returns facilities where the user has at least one approved link.
func (r *FamilyLinkRepository) ListConnectedFacilityIDs(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.ResidentFamilyLink{}).
		Distinct("residents.facility_id").
		Joins("INNER JOIN residents ON residents.id = resident_family_links.resident_id").
		Where("resident_family_links.user_id = ? AND resident_family_links.is_approved = ?", userID, true).
		Pluck("residents.facility_id", &ids).Error
	return ids, err
}
