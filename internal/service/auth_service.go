package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"carehub/config"
	"carehub/internal/auth"
	"carehub/internal/domain"
	"carehub/internal/models"
	"carehub/internal/repository"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Tokens is an access/refresh pair issued on login.
type Tokens struct {
	Access  string `json:"access_token"`
	Refresh string `json:"refresh_token"`
}

type AuthService struct {
	cfg      *config.Config
	userRepo *repository.UserRepository
}

func NewAuthService(cfg *config.Config, userRepo *repository.UserRepository) *AuthService {
	return &AuthService{cfg: cfg, userRepo: userRepo}
}

// Register creates a family account. Staff accounts are provisioned by admins.
func (s *AuthService) Register(ctx context.Context, email, name, password string) (*models.User, *Tokens, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	_, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil {
		return nil, nil, ErrEmailExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, err
	}
	u := &models.User{
		Email:        email,
		Name:         strings.TrimSpace(name),
		PasswordHash: string(hash),
		Role:         domain.RoleFamily,
	}
	if err := s.userRepo.Create(ctx, u); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, nil, ErrEmailExists
		}
		return nil, nil, err
	}
	tokens, err := s.issue(u)
	if err != nil {
		return u, nil, err
	}
	return u, tokens, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, *Tokens, error) {
	u, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrInvalidCreds
		}
		return nil, nil, err
	}
	if u.PasswordHash == "" {
		return nil, nil, ErrInvalidCreds
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, nil, ErrInvalidCreds
	}
	tokens, err := s.issue(u)
	if err != nil {
		return nil, nil, err
	}
	return u, tokens, nil
}

// LoginWithGoogle finds or creates the family account bound to a Google id.
// An existing account with the same email is linked instead of duplicated.
func (s *AuthService) LoginWithGoogle(ctx context.Context, googleID, email, name string) (*models.User, *Tokens, bool, error) {
	u, err := s.userRepo.GetByGoogleID(ctx, googleID)
	if err == nil {
		tokens, err := s.issue(u)
		return u, tokens, false, err
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, false, err
	}
	gid := googleID
	email = strings.ToLower(strings.TrimSpace(email))
	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil {
		existing.GoogleID = &gid
		if err := s.userRepo.Update(ctx, existing); err != nil {
			return nil, nil, false, err
		}
		tokens, err := s.issue(existing)
		return existing, tokens, false, err
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, false, err
	}
	u = &models.User{
		Email:    email,
		Name:     name,
		GoogleID: &gid,
		Role:     domain.RoleFamily,
	}
	if err := s.userRepo.Create(ctx, u); err != nil {
		return nil, nil, false, err
	}
	tokens, err := s.issue(u)
	return u, tokens, true, err
}

func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*Tokens, error) {
	userID, err := auth.ParseRefreshToken(&s.cfg.JWT, refreshToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}
	return s.issue(u)
}

// CreateStaff provisions a caregiver or admin in the calling admin's facility.
func (s *AuthService) CreateStaff(ctx context.Context, caller domain.Caller, email, name, password, role string) (*models.User, error) {
	if caller.Role != domain.RoleAdmin {
		return nil, ErrNotAdmin
	}
	if caller.FacilityID == nil {
		return nil, ErrCrossFacility
	}
	if !domain.IsStaff(role) {
		return nil, ErrInvalidRole
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	facilityID := *caller.FacilityID
	u := &models.User{
		Email:        strings.ToLower(strings.TrimSpace(email)),
		Name:         strings.TrimSpace(name),
		PasswordHash: string(hash),
		Role:         role,
		FacilityID:   &facilityID,
	}
	if err := s.userRepo.Create(ctx, u); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailExists
		}
		return nil, err
	}
	return u, nil
}

func (s *AuthService) Me(ctx context.Context, caller domain.Caller) (*models.User, error) {
	u, err := s.userRepo.GetProfile(ctx, caller.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}
	return u, nil
}

func (s *AuthService) RegisterFCMToken(ctx context.Context, caller domain.Caller, token string) error {
	return s.userRepo.UpdateFCMToken(ctx, caller.UserID, token)
}

func (s *AuthService) issue(u *models.User) (*Tokens, error) {
	access, err := auth.GenerateAccessToken(&s.cfg.JWT, u.ID, u.Email, u.Role, u.FacilityID)
	if err != nil {
		return nil, err
	}
	refresh, err := auth.GenerateRefreshToken(&s.cfg.JWT, u.ID)
	if err != nil {
		return nil, err
	}
	return &Tokens{Access: access, Refresh: refresh}, nil
}
