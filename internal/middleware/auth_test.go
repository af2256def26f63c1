package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"carehub/config"
	"carehub/internal/auth"
	"carehub/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthRequiredSetsCaller(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := &config.JWTConfig{AccessSecret: "s", AccessExpiry: time.Minute, Issuer: "test"}
	facilityID := uint(4)
	token, err := auth.GenerateAccessToken(cfg, 9, "cg@example.com", domain.RoleCaregiver, &facilityID)
	require.NoError(t, err)

	var got domain.Caller
	r := gin.New()
	r.GET("/staff", AuthRequired(cfg), StaffRequired(), func(c *gin.Context) {
		got, _ = GetCaller(c)
		c.Status(http.StatusOK)
	})
	r.GET("/admin", AuthRequired(cfg), AdminRequired(), func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/family", AuthRequired(cfg), RequireRole(domain.RoleFamily), func(c *gin.Context) { c.Status(http.StatusOK) })

	call := func(path, header string) int {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusUnauthorized, call("/staff", ""))
	assert.Equal(t, http.StatusUnauthorized, call("/staff", "Token "+token))
	assert.Equal(t, http.StatusUnauthorized, call("/staff", "Bearer garbage"))
	assert.Equal(t, http.StatusOK, call("/staff", "Bearer "+token))
	assert.Equal(t, domain.Caller{UserID: 9, Role: domain.RoleCaregiver, FacilityID: &facilityID}, got)
	assert.Equal(t, http.StatusForbidden, call("/admin", "Bearer "+token))
	assert.Equal(t, http.StatusForbidden, call("/family", "Bearer "+token))
}
