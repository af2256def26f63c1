package service

import (
	"context"
	"errors"

	"carehub/internal/domain"
	"carehub/internal/models"
	"carehub/internal/repository"

	"gorm.io/gorm"
)

// ConnectionState is a family account's standing towards one resident.
// Pending moves only through staff action: approve to Connected, reject back
// to Disconnected.
type ConnectionState string

const (
	StateDisconnected ConnectionState = "DISCONNECTED"
	StatePending      ConnectionState = "PENDING"
	StateConnected    ConnectionState = "CONNECTED"
)

// Actions lists what the caller may do with a resident.
type Actions struct {
	RequestConnection bool `json:"request_connection"`
	ViewRequest       bool `json:"view_request"`
	ViewResident      bool `json:"view_resident"`
	ViewRecords       bool `json:"view_records"`
	ViewPosts         bool `json:"view_posts"`
	Unlink            bool `json:"unlink"`
}

// DeriveConnectionState maps a family caller's link row to its state. Staff
// are not modelled here; their authority comes from facility membership.
func DeriveConnectionState(role string, link *models.ResidentFamilyLink) ConnectionState {
	if role != domain.RoleFamily || link == nil {
		return StateDisconnected
	}
	if link.IsApproved {
		return StateConnected
	}
	return StatePending
}

func AllowedActions(state ConnectionState) Actions {
	switch state {
	case StateConnected:
		return Actions{ViewRequest: true, ViewResident: true, ViewRecords: true, ViewPosts: true, Unlink: true}
	case StatePending:
		return Actions{ViewRequest: true}
	default:
		return Actions{RequestConnection: true}
	}
}

func staffActions() Actions {
	return Actions{ViewRequest: true, ViewResident: true, ViewRecords: true, ViewPosts: true, Unlink: true}
}

// Access is the outcome of the visibility gate for one caller and one resident.
type Access struct {
	State   ConnectionState            `json:"connection_state,omitempty"`
	Staff   bool                       `json:"staff"`
	Actions Actions                    `json:"allowed_actions"`
	Link    *models.ResidentFamilyLink `json:"-"`
}

type VisibilityService struct {
	linkRepo *repository.FamilyLinkRepository
}

func NewVisibilityService(linkRepo *repository.FamilyLinkRepository) *VisibilityService {
	return &VisibilityService{linkRepo: linkRepo}
}

// ResidentAccess runs the gate. Staff of the resident's facility bypass it,
// staff of any other facility are refused, family callers are judged by
// their link row.
func (s *VisibilityService) ResidentAccess(ctx context.Context, caller domain.Caller, resident *models.Resident) (*Access, error) {
	switch {
	case caller.IsStaff():
		if !caller.InFacility(resident.FacilityID) {
			return nil, ErrCrossFacility
		}
		return &Access{Staff: true, Actions: staffActions()}, nil
	case caller.IsFamily():
		link, err := s.linkRepo.GetByPair(ctx, resident.ID, caller.UserID)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}
			link = nil
		}
		state := DeriveConnectionState(caller.Role, link)
		return &Access{State: state, Actions: AllowedActions(state), Link: link}, nil
	default:
		return nil, ErrForbidden
	}
}

// AccessMany evaluates the gate for a family caller over a list of residents
// with one query.
func (s *VisibilityService) AccessMany(ctx context.Context, caller domain.Caller, residents []models.Resident) (map[uint]*Access, error) {
	out := make(map[uint]*Access, len(residents))
	if caller.IsStaff() {
		for _, r := range residents {
			if caller.InFacility(r.FacilityID) {
				out[r.ID] = &Access{Staff: true, Actions: staffActions()}
			}
		}
		return out, nil
	}
	if !caller.IsFamily() {
		return nil, ErrForbidden
	}
	ids := make([]uint, 0, len(residents))
	for _, r := range residents {
		ids = append(ids, r.ID)
	}
	links, err := s.linkRepo.ListByUserAndResidents(ctx, caller.UserID, ids)
	if err != nil {
		return nil, err
	}
	for _, r := range residents {
		state := DeriveConnectionState(caller.Role, links[r.ID])
		out[r.ID] = &Access{State: state, Actions: AllowedActions(state), Link: links[r.ID]}
	}
	return out, nil
}
