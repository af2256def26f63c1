package service

import (
	"context"
	"testing"
	"time"

	"carehub/config"
	"carehub/internal/auth"
	"carehub/internal/domain"
	"carehub/internal/repository"
	"carehub/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthService(t *testing.T) (*AuthService, *config.Config, *repository.UserRepository) {
	t.Helper()
	db := testutil.NewTestDB(t)
	cfg := &config.Config{JWT: config.JWTConfig{
		AccessSecret:  "access",
		RefreshSecret: "refresh",
		AccessExpiry:  time.Minute,
		RefreshExpiry: time.Hour,
		Issuer:        "carehub-test",
	}}
	userRepo := repository.NewUserRepository(db)
	return NewAuthService(cfg, userRepo), cfg, userRepo
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc, cfg, _ := newAuthService(t)

	u, tokens, err := svc.Register(ctx, " Daughter@Example.com ", "Min", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, "daughter@example.com", u.Email)
	assert.Equal(t, domain.RoleFamily, u.Role)
	assert.Nil(t, u.FacilityID)
	assert.NotEqual(t, "s3cret-pass", u.PasswordHash)

	claims, err := auth.ParseAccessToken(&cfg.JWT, tokens.Access)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.Equal(t, domain.RoleFamily, claims.Role)

	_, _, err = svc.Register(ctx, "daughter@example.com", "Min", "another-pass")
	assert.ErrorIs(t, err, ErrEmailExists)
	assert.ErrorIs(t, err, ErrConflict)

	_, _, err = svc.Login(ctx, "daughter@example.com", "wrong-pass")
	assert.ErrorIs(t, err, ErrInvalidCreds)
	_, _, err = svc.Login(ctx, "nobody@example.com", "s3cret-pass")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	logged, tokens, err := svc.Login(ctx, "DAUGHTER@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, u.ID, logged.ID)

	refreshed, err := svc.Refresh(ctx, tokens.Refresh)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.Access)

	_, err = svc.Refresh(ctx, tokens.Access)
	assert.ErrorIs(t, err, ErrUnauthenticated, "an access token is not a refresh token")
}

func TestLoginWithGoogle(t *testing.T) {
	ctx := context.Background()
	svc, _, userRepo := newAuthService(t)

	u, tokens, isNew, err := svc.LoginWithGoogle(ctx, "g-1", "son@example.com", "Jun")
	require.NoError(t, err)
	assert.True(t, isNew)
	assert.Equal(t, domain.RoleFamily, u.Role)
	assert.NotEmpty(t, tokens.Access)

	again, _, isNew, err := svc.LoginWithGoogle(ctx, "g-1", "son@example.com", "Jun")
	require.NoError(t, err)
	assert.False(t, isNew)
	assert.Equal(t, u.ID, again.ID)

	existing, _, err := svc.Register(ctx, "niece@example.com", "Ara", "password123")
	require.NoError(t, err)
	linked, _, isNew, err := svc.LoginWithGoogle(ctx, "g-2", "niece@example.com", "Ara")
	require.NoError(t, err)
	assert.False(t, isNew)
	assert.Equal(t, existing.ID, linked.ID)

	stored, err := userRepo.GetByGoogleID(ctx, "g-2")
	require.NoError(t, err)
	assert.Equal(t, existing.ID, stored.ID)
}

func TestCreateStaff(t *testing.T) {
	ctx := context.Background()
	svc, _, userRepo := newAuthService(t)
	facilityID := uint(3)
	admin := domain.Caller{UserID: 1, Role: domain.RoleAdmin, FacilityID: &facilityID}
	caregiver := domain.Caller{UserID: 2, Role: domain.RoleCaregiver, FacilityID: &facilityID}

	u, err := svc.CreateStaff(ctx, admin, "nurse@example.com", "Nurse", "password123", domain.RoleCaregiver)
	require.NoError(t, err)
	require.NotNil(t, u.FacilityID)
	assert.Equal(t, facilityID, *u.FacilityID)

	_, err = svc.CreateStaff(ctx, caregiver, "x@example.com", "X", "password123", domain.RoleCaregiver)
	assert.ErrorIs(t, err, ErrNotAdmin)
	_, err = svc.CreateStaff(ctx, admin, "x@example.com", "X", "password123", domain.RoleFamily)
	assert.ErrorIs(t, err, ErrInvalidRole)
	_, err = svc.CreateStaff(ctx, admin, "nurse@example.com", "Nurse", "password123", domain.RoleAdmin)
	assert.ErrorIs(t, err, ErrEmailExists)

	_, _, err = svc.Login(ctx, "nurse@example.com", "password123")
	require.NoError(t, err)

	me, err := svc.Me(ctx, testutil.CallerOf(u))
	require.NoError(t, err)
	assert.Equal(t, "nurse@example.com", me.Email)

	require.NoError(t, svc.RegisterFCMToken(ctx, testutil.CallerOf(u), "device-9"))
	stored, err := userRepo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "device-9", stored.FCMToken)
}
