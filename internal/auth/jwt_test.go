package auth

import (
	"testing"
	"time"

	"carehub/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testJWTConfig() *config.JWTConfig {
	return &config.JWTConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessExpiry:  time.Minute,
		RefreshExpiry: time.Hour,
		Issuer:        "carehub-test",
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	cfg := testJWTConfig()
	facilityID := uint(7)

	token, err := GenerateAccessToken(cfg, 42, "staff@example.com", "CAREGIVER", &facilityID)
	require.NoError(t, err)

	claims, err := ParseAccessToken(cfg, token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "CAREGIVER", claims.Role)
	require.NotNil(t, claims.FacilityID)
	assert.Equal(t, uint(7), *claims.FacilityID)
}

func TestAccessTokenWithoutFacility(t *testing.T) {
	cfg := testJWTConfig()

	token, err := GenerateAccessToken(cfg, 3, "family@example.com", "FAMILY", nil)
	require.NoError(t, err)

	claims, err := ParseAccessToken(cfg, token)
	require.NoError(t, err)
	assert.Nil(t, claims.FacilityID)
}

func TestParseAccessToken_WrongSecret(t *testing.T) {
	cfg := testJWTConfig()
	token, err := GenerateAccessToken(cfg, 1, "a@example.com", "FAMILY", nil)
	require.NoError(t, err)

	other := testJWTConfig()
	other.AccessSecret = "other"
	_, err = ParseAccessToken(other, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseAccessToken_Expired(t *testing.T) {
	cfg := testJWTConfig()
	cfg.AccessExpiry = -time.Minute
	token, err := GenerateAccessToken(cfg, 1, "a@example.com", "FAMILY", nil)
	require.NoError(t, err)

	_, err = ParseAccessToken(cfg, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshToken(t *testing.T) {
	cfg := testJWTConfig()
	token, err := GenerateRefreshToken(cfg, 99)
	require.NoError(t, err)

	userID, err := ParseRefreshToken(cfg, token)
	require.NoError(t, err)
	assert.Equal(t, uint(99), userID)

	_, err = ParseRefreshToken(cfg, "garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
