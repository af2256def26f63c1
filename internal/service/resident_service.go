package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"carehub/internal/domain"
	"carehub/internal/models"
	"carehub/internal/repository"

	"gorm.io/gorm"
)

type ResidentService struct {
	residentRepo *repository.ResidentRepository
	visibility   *VisibilityService
}

func NewResidentService(residentRepo *repository.ResidentRepository, visibility *VisibilityService) *ResidentService {
	return &ResidentService{residentRepo: residentRepo, visibility: visibility}
}

type CreateResidentInput struct {
	Name        string
	Room        string
	DateOfBirth *time.Time
	Gender      string
	CareLevel   string
	Notes       string
	AdmittedAt  *time.Time
}

// Create admits a resident into the caller's facility.
func (s *ResidentService) Create(ctx context.Context, caller domain.Caller, in CreateResidentInput) (*models.Resident, error) {
	if !caller.IsStaff() {
		return nil, ErrNotStaff
	}
	if caller.FacilityID == nil {
		return nil, ErrCrossFacility
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	r := &models.Resident{
		FacilityID:  *caller.FacilityID,
		Name:        name,
		Room:        in.Room,
		DateOfBirth: in.DateOfBirth,
		Gender:      in.Gender,
		CareLevel:   in.CareLevel,
		Notes:       in.Notes,
		AdmittedAt:  in.AdmittedAt,
	}
	if err := s.residentRepo.Create(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// ResidentView is a resident as seen by one caller: the full record only when
// the gate allows it, the public summary otherwise.
type ResidentView struct {
	Summary models.ResidentSummary `json:"summary"`
	Detail  *models.Resident       `json:"detail,omitempty"`
	Access  *Access                `json:"access"`
}

func (s *ResidentService) Get(ctx context.Context, caller domain.Caller, id uint) (*ResidentView, error) {
	r, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	access, err := s.visibility.ResidentAccess(ctx, caller, r)
	if err != nil {
		return nil, err
	}
	v := &ResidentView{Summary: r.Summary(), Access: access}
	if access.Actions.ViewResident {
		v.Detail = r
	}
	return v, nil
}

// Load returns a resident after checking the caller may see its full record.
func (s *ResidentService) Load(ctx context.Context, caller domain.Caller, id uint, need func(Actions) bool) (*models.Resident, *Access, error) {
	r, err := s.load(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	access, err := s.visibility.ResidentAccess(ctx, caller, r)
	if err != nil {
		return nil, nil, err
	}
	if !need(access.Actions) {
		return nil, nil, ErrNotConnected
	}
	return r, access, nil
}

// List returns residents for staff (their facility) or, for family, the
// public summaries of one facility's residents with the caller's state.
func (s *ResidentService) List(ctx context.Context, caller domain.Caller, facilityID *uint, search string, limit, offset int) ([]ResidentView, error) {
	var target uint
	switch {
	case caller.IsStaff():
		if caller.FacilityID == nil {
			return nil, ErrCrossFacility
		}
		target = *caller.FacilityID
	case caller.IsFamily():
		if facilityID == nil {
			residents, err := s.residentRepo.ListConnectedToUser(ctx, caller.UserID)
			if err != nil {
				return nil, err
			}
			return s.views(ctx, caller, residents)
		}
		target = *facilityID
	default:
		return nil, ErrForbidden
	}
	residents, err := s.residentRepo.ListByFacility(ctx, target, search, limit, offset)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, caller, residents)
}

func (s *ResidentService) views(ctx context.Context, caller domain.Caller, residents []models.Resident) ([]ResidentView, error) {
	access, err := s.visibility.AccessMany(ctx, caller, residents)
	if err != nil {
		return nil, err
	}
	out := make([]ResidentView, 0, len(residents))
	for i := range residents {
		a := access[residents[i].ID]
		if a == nil {
			continue
		}
		v := ResidentView{Summary: residents[i].Summary(), Access: a}
		if a.Actions.ViewResident {
			v.Detail = &residents[i]
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *ResidentService) load(ctx context.Context, id uint) (*models.Resident, error) {
	r, err := s.residentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrResidentAbsent
		}
		return nil, err
	}
	return r, nil
}
