package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"carehub/internal/domain"
	"carehub/internal/models"
	"carehub/internal/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ConnectionService owns the family-resident link lifecycle:
// request (pending) -> approve (connected) | reject (row deleted).
type ConnectionService struct {
	linkRepo     *repository.FamilyLinkRepository
	residentRepo *repository.ResidentRepository
	notifSvc     *NotificationService
	log          *zap.Logger
	now          func() time.Time
}

func NewConnectionService(
	linkRepo *repository.FamilyLinkRepository,
	residentRepo *repository.ResidentRepository,
	notifSvc *NotificationService,
	log *zap.Logger,
) *ConnectionService {
	return &ConnectionService{
		linkRepo:     linkRepo,
		residentRepo: residentRepo,
		notifSvc:     notifSvc,
		log:          log,
		now:          time.Now,
	}
}

// RequestConnection creates a pending link between the calling family account and a resident.
// No notification is sent at this point; the requester hears back only on approval.
func (s *ConnectionService) RequestConnection(ctx context.Context, caller domain.Caller, residentID uint, relationship string) (*models.ResidentFamilyLink, error) {
	if !caller.IsFamily() {
		return nil, ErrNotFamily
	}
	relationship = strings.TrimSpace(relationship)
	if relationship == "" {
		return nil, ErrRelationshipRequired
	}
	if len([]rune(relationship)) > domain.MaxRelationshipLength {
		return nil, ErrRelationshipTooLong
	}
	resident, err := s.residentRepo.GetByID(ctx, residentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrResidentAbsent
		}
		return nil, err
	}

	link := &models.ResidentFamilyLink{
		ResidentID:   resident.ID,
		UserID:       caller.UserID,
		Relationship: relationship,
	}
	err = s.linkRepo.Transaction(ctx, func(tx *repository.FamilyLinkRepository) error {
		existing, err := tx.GetByPair(ctx, resident.ID, caller.UserID)
		switch {
		case err == nil && existing.IsApproved:
			return ErrAlreadyConnected
		case err == nil:
			return ErrRequestPending
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}
		return tx.Create(ctx, link)
	})
	if err != nil {
		// A concurrent request for the same pair won the insert.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrRequestPending
		}
		return nil, err
	}
	link.Resident = resident
	s.log.Info("family request created",
		zap.Uint("link_id", link.ID),
		zap.Uint("resident_id", resident.ID),
		zap.Uint("user_id", caller.UserID))
	withholdResident(link)
	return link, nil
}

// ResolveConnection approves or rejects a pending link. Only staff of the
// resident's facility may do so. Approval notifies the requester; rejection
// deletes the row so the family member may ask again later.
func (s *ConnectionService) ResolveConnection(ctx context.Context, caller domain.Caller, linkID uint, action string) (*models.ResidentFamilyLink, error) {
	if !caller.IsStaff() {
		return nil, ErrNotStaff
	}
	if action != domain.ActionApprove && action != domain.ActionReject {
		return nil, ErrInvalidAction
	}
	// An unknown id is NotFound even for other facilities: the resident, and so
	// its facility, is only reachable through the link.
	link, err := s.linkRepo.GetByID(ctx, linkID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLinkAbsent
		}
		return nil, err
	}
	if link.Resident == nil || !caller.InFacility(link.Resident.FacilityID) {
		return nil, ErrCrossFacility
	}
	if link.IsApproved {
		return nil, ErrNoPendingLink
	}

	if action == domain.ActionReject {
		n, err := s.linkRepo.DeletePending(ctx, link.ID)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			return nil, ErrNoPendingLink
		}
		s.log.Info("family request rejected",
			zap.Uint("link_id", link.ID), zap.Uint("staff_id", caller.UserID))
		return nil, nil
	}

	at := s.now()
	n, err := s.linkRepo.Approve(ctx, link.ID, caller.UserID, at)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrNoPendingLink
	}
	approver := caller.UserID
	link.IsApproved = true
	link.ApprovedByID = &approver
	link.ApprovedAt = &at
	s.log.Info("family request approved",
		zap.Uint("link_id", link.ID), zap.Uint("staff_id", caller.UserID))

	// Outside the approval write: a lost notification leaves the link approved.
	s.notifSvc.NotifyFamilyApproved(ctx, link.UserID, link.Resident)
	return link, nil
}

// Unlink removes a link in any state. Family members may remove their own
// link; staff may remove any link to a resident of their facility.
func (s *ConnectionService) Unlink(ctx context.Context, caller domain.Caller, residentID, userID uint) error {
	resident, err := s.residentRepo.GetByID(ctx, residentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrResidentAbsent
		}
		return err
	}
	switch {
	case caller.IsFamily():
		if caller.UserID != userID {
			return ErrNotLinkOwner
		}
	case caller.IsStaff():
		if !caller.InFacility(resident.FacilityID) {
			return ErrCrossFacility
		}
	default:
		return ErrNotLinkOwner
	}
	n, err := s.linkRepo.DeleteByPair(ctx, residentID, userID)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrLinkAbsent
	}
	s.log.Info("family link removed",
		zap.Uint("resident_id", residentID),
		zap.Uint("user_id", userID),
		zap.Uint("by", caller.UserID))
	return nil
}

// ListRequests returns what the caller should see on the requests screen:
// staff get the pending queue of their facility, family get their own links.
func (s *ConnectionService) ListRequests(ctx context.Context, caller domain.Caller, limit, offset int) ([]models.ResidentFamilyLink, error) {
	switch {
	case caller.IsStaff():
		if caller.FacilityID == nil {
			return nil, ErrCrossFacility
		}
		return s.linkRepo.ListPendingByFacility(ctx, *caller.FacilityID, limit, offset)
	case caller.IsFamily():
		links, err := s.linkRepo.ListByUserID(ctx, caller.UserID, limit, offset)
		if err != nil {
			return nil, err
		}
		for i := range links {
			withholdResident(&links[i])
		}
		return links, nil
	default:
		return nil, ErrForbidden
	}
}

// withholdResident swaps the full resident record on a pending link for its
// public summary before it reaches the family member.
func withholdResident(link *models.ResidentFamilyLink) {
	if link.IsApproved || link.Resident == nil {
		return
	}
	summary := link.Resident.Summary()
	link.ResidentSummary = &summary
	link.Resident = nil
}
