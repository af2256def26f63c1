package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"carehub/internal/domain"
	"carehub/internal/models"
	"carehub/internal/repository"
)

// RecordService manages medical records and facility posts, the two feeds a
// connected family member may read.
type RecordService struct {
	recordRepo  *repository.MedicalRecordRepository
	postRepo    *repository.PostRepository
	linkRepo    *repository.FamilyLinkRepository
	residentSvc *ResidentService
	notifSvc    *NotificationService
	now         func() time.Time
}

func NewRecordService(
	recordRepo *repository.MedicalRecordRepository,
	postRepo *repository.PostRepository,
	linkRepo *repository.FamilyLinkRepository,
	residentSvc *ResidentService,
	notifSvc *NotificationService,
) *RecordService {
	return &RecordService{
		recordRepo:  recordRepo,
		postRepo:    postRepo,
		linkRepo:    linkRepo,
		residentSvc: residentSvc,
		notifSvc:    notifSvc,
		now:         time.Now,
	}
}

type CreateRecordInput struct {
	Category    string
	Title       string
	Description string
	RecordedAt  *time.Time
}

func (s *RecordService) CreateMedicalRecord(ctx context.Context, caller domain.Caller, residentID uint, in CreateRecordInput) (*models.MedicalRecord, error) {
	if !caller.IsStaff() {
		return nil, ErrNotStaff
	}
	title := strings.TrimSpace(in.Title)
	if title == "" || strings.TrimSpace(in.Category) == "" {
		return nil, fmt.Errorf("%w: category and title are required", ErrValidation)
	}
	resident, _, err := s.residentSvc.Load(ctx, caller, residentID, func(a Actions) bool { return a.ViewRecords })
	if err != nil {
		return nil, err
	}
	recordedAt := s.now()
	if in.RecordedAt != nil {
		recordedAt = *in.RecordedAt
	}
	rec := &models.MedicalRecord{
		ResidentID:  resident.ID,
		AuthorID:    caller.UserID,
		Category:    strings.TrimSpace(in.Category),
		Title:       title,
		Description: in.Description,
		RecordedAt:  recordedAt,
	}
	if err := s.recordRepo.Create(ctx, rec); err != nil {
		return nil, err
	}
	content := fmt.Sprintf("%s: %s", rec.Category, rec.Title)
	relatedType := domain.RelatedMedicalRecord
	s.notifSvc.NotifyResidentFamilies(ctx, resident.ID, domain.NotificationMedicalRecordCreated,
		fmt.Sprintf("New record for %s", resident.Name), &content, &rec.ID, &relatedType)
	return rec, nil
}

func (s *RecordService) ListMedicalRecords(ctx context.Context, caller domain.Caller, residentID uint, limit, offset int) ([]models.MedicalRecord, error) {
	resident, _, err := s.residentSvc.Load(ctx, caller, residentID, func(a Actions) bool { return a.ViewRecords })
	if err != nil {
		return nil, err
	}
	return s.recordRepo.ListByResident(ctx, resident.ID, limit, offset)
}

func (s *RecordService) CreatePost(ctx context.Context, caller domain.Caller, title, content string) (*models.Post, error) {
	if !caller.IsStaff() {
		return nil, ErrNotStaff
	}
	if caller.FacilityID == nil {
		return nil, ErrCrossFacility
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	p := &models.Post{
		FacilityID: *caller.FacilityID,
		AuthorID:   caller.UserID,
		Title:      title,
		Content:    content,
	}
	if err := s.postRepo.Create(ctx, p); err != nil {
		return nil, err
	}
	relatedType := domain.RelatedPost
	s.notifSvc.NotifyFacilityMembers(ctx, p.FacilityID, caller.UserID, domain.NotificationPostCreated,
		p.Title, nil, &p.ID, &relatedType)
	return p, nil
}

// ListPosts returns posts of the caller's facility (staff) or of every
// facility where the caller has an approved link (family).
func (s *RecordService) ListPosts(ctx context.Context, caller domain.Caller, limit, offset int) ([]models.Post, error) {
	var facilityIDs []uint
	switch {
	case caller.IsStaff():
		if caller.FacilityID == nil {
			return nil, ErrCrossFacility
		}
		facilityIDs = []uint{*caller.FacilityID}
	case caller.IsFamily():
		ids, err := s.linkRepo.ListConnectedFacilityIDs(ctx, caller.UserID)
		if err != nil {
			return nil, err
		}
		facilityIDs = ids
	default:
		return nil, ErrForbidden
	}
	return s.postRepo.ListByFacilities(ctx, facilityIDs, limit, offset)
}
