package repository

import (
	"context"
	"errors"

	"carehub/internal/models"

	"gorm.io/gorm"
)

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	return r.db.WithContext(ctx).Omit("User").Create(n).Error
}

func (r *NotificationRepository) ListByUserID(ctx context.Context, userID uint, unreadOnly bool, limit, offset int) ([]models.Notification, error) {
	var list []models.Notification
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}
	err := q.Order("created_at DESC").Order("id DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}

func (r *NotificationRepository) CountUnread(ctx context.Context, userID uint) (int64, error) {
	var c int64
	err := r.db.WithContext(ctx).Model(&models.Notification{}).Where("user_id = ? AND is_read = ?", userID, false).Count(&c).Error
	return c, err
}

// MarkRead returns the number of matched rows; zero means the id does not belong to userID.
func (r *NotificationRepository) MarkRead(ctx context.Context, id, userID uint) (int64, error) {
	var n models.Notification
	err := r.db.WithContext(ctx).Select("id").Where("id = ? AND user_id = ?", id, userID).First(&n).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	res := r.db.WithContext(ctx).Model(&models.Notification{}).Where("id = ?", n.ID).Update("is_read", true)
	if res.Error != nil {
		return 0, res.Error
	}
	return 1, nil
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Notification{}).Where("user_id = ? AND is_read = ?", userID, false).Update("is_read", true)
	return res.RowsAffected, res.Error
}

func (r *NotificationRepository) Delete(ctx context.Context, id, userID uint) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.Notification{})
	return res.RowsAffected, res.Error
}
