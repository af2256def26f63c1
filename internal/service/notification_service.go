package service

import (
	"context"
	"fmt"

	"carehub/internal/domain"
	"carehub/internal/models"
	"carehub/internal/repository"

	"go.uber.org/zap"
)

// Pusher delivers a stored notification to a device. FCMService implements it.
type Pusher interface {
	Push(ctx context.Context, token string, n *models.Notification) error
}

type NotificationService struct {
	repo     *repository.NotificationRepository
	userRepo *repository.UserRepository
	linkRepo *repository.FamilyLinkRepository
	pusher   Pusher
	log      *zap.Logger
}

func NewNotificationService(
	repo *repository.NotificationRepository,
	userRepo *repository.UserRepository,
	linkRepo *repository.FamilyLinkRepository,
	pusher Pusher,
	log *zap.Logger,
) *NotificationService {
	return &NotificationService{repo: repo, userRepo: userRepo, linkRepo: linkRepo, pusher: pusher, log: log}
}

// Notify stores one notification for one recipient and returns it. It never
// fails the caller: storage errors and unknown types are logged and yield nil.
func (s *NotificationService) Notify(ctx context.Context, userID uint, notifType, title string, content *string, relatedID *uint, relatedType *string) *models.Notification {
	if !domain.IsNotificationType(notifType) {
		s.log.Warn("notification dropped: unknown type",
			zap.Uint("user_id", userID), zap.String("type", notifType))
		return nil
	}
	n := &models.Notification{
		UserID:      userID,
		Type:        notifType,
		Title:       title,
		Content:     content,
		RelatedID:   relatedID,
		RelatedType: relatedType,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		s.log.Warn("notification not stored",
			zap.Uint("user_id", userID), zap.String("type", notifType), zap.Error(err))
		return nil
	}
	s.push(ctx, n)
	return n
}

func (s *NotificationService) push(ctx context.Context, n *models.Notification) {
	if s.pusher == nil || s.userRepo == nil {
		return
	}
	u, err := s.userRepo.GetByID(ctx, n.UserID)
	if err != nil || u.FCMToken == "" {
		return
	}
	if err := s.pusher.Push(ctx, u.FCMToken, n); err != nil {
		s.log.Warn("push failed", zap.Uint("user_id", n.UserID), zap.Uint("notification_id", n.ID), zap.Error(err))
	}
}

// NotifyFamilyApproved tells the requester their link to resident was approved.
func (s *NotificationService) NotifyFamilyApproved(ctx context.Context, userID uint, resident *models.Resident) *models.Notification {
	title := fmt.Sprintf("Your connection to %s was approved", resident.Name)
	content := fmt.Sprintf("You can now follow updates about %s.", resident.Name)
	relatedType := domain.RelatedResident
	return s.Notify(ctx, userID, domain.NotificationFamilyApproved, title, &content, &resident.ID, &relatedType)
}

// NotifyResidentFamilies sends one notification to every approved family member of a resident.
// It returns how many were stored.
func (s *NotificationService) NotifyResidentFamilies(ctx context.Context, residentID uint, notifType, title string, content *string, relatedID *uint, relatedType *string) int {
	ids, err := s.linkRepo.ListApprovedUserIDsByResident(ctx, residentID)
	if err != nil {
		s.log.Warn("fan-out to resident families skipped", zap.Uint("resident_id", residentID), zap.Error(err))
		return 0
	}
	return s.notifyEach(ctx, ids, 0, notifType, title, content, relatedID, relatedType)
}

// NotifyFacilityMembers sends one notification to every staff member and every
// connected family member of a facility, except excludeUserID.
func (s *NotificationService) NotifyFacilityMembers(ctx context.Context, facilityID, excludeUserID uint, notifType, title string, content *string, relatedID *uint, relatedType *string) int {
	staff, err := s.userRepo.ListStaffIDsByFacility(ctx, facilityID)
	if err != nil {
		s.log.Warn("fan-out to facility staff skipped", zap.Uint("facility_id", facilityID), zap.Error(err))
	}
	families, err := s.linkRepo.ListApprovedUserIDsByFacility(ctx, facilityID)
	if err != nil {
		s.log.Warn("fan-out to facility families skipped", zap.Uint("facility_id", facilityID), zap.Error(err))
	}
	return s.notifyEach(ctx, append(staff, families...), excludeUserID, notifType, title, content, relatedID, relatedType)
}

func (s *NotificationService) notifyEach(ctx context.Context, userIDs []uint, excludeUserID uint, notifType, title string, content *string, relatedID *uint, relatedType *string) int {
	seen := make(map[uint]struct{}, len(userIDs))
	sent := 0
	for _, id := range userIDs {
		if id == excludeUserID {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if s.Notify(ctx, id, notifType, title, content, relatedID, relatedType) != nil {
			sent++
		}
	}
	return sent
}

func (s *NotificationService) List(ctx context.Context, caller domain.Caller, unreadOnly bool, limit, offset int) ([]models.Notification, error) {
	return s.repo.ListByUserID(ctx, caller.UserID, unreadOnly, limit, offset)
}

func (s *NotificationService) UnreadCount(ctx context.Context, caller domain.Caller) (int64, error) {
	return s.repo.CountUnread(ctx, caller.UserID)
}

func (s *NotificationService) MarkRead(ctx context.Context, caller domain.Caller, id uint) error {
	n, err := s.repo.MarkRead(ctx, id, caller.UserID)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotification
	}
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, caller domain.Caller) (int64, error) {
	return s.repo.MarkAllRead(ctx, caller.UserID)
}

func (s *NotificationService) Delete(ctx context.Context, caller domain.Caller, id uint) error {
	n, err := s.repo.Delete(ctx, id, caller.UserID)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotification
	}
	return nil
}
