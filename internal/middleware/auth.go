package middleware

import (
	"net/http"
	"strings"

	"carehub/config"
	"carehub/internal/auth"
	"carehub/internal/domain"

	"github.com/gin-gonic/gin"
)

const callerKey = "caller"

// AuthRequired validates the bearer JWT and stores the caller in the context.
func AuthRequired(cfg *config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || scheme != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
			return
		}
		claims, err := auth.ParseAccessToken(cfg, token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}
		c.Set(callerKey, domain.Caller{
			UserID:     claims.UserID,
			Role:       claims.Role,
			FacilityID: claims.FacilityID,
		})
		c.Next()
	}
}

// RequireRole checks that the authenticated user has one of the allowed roles.
func RequireRole(allowed ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := GetCaller(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		for _, a := range allowed {
			if caller.Role == a {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	}
}

// GetCaller returns the authenticated caller (must be used after AuthRequired).
func GetCaller(c *gin.Context) (domain.Caller, bool) {
	v, exists := c.Get(callerKey)
	if !exists {
		return domain.Caller{}, false
	}
	caller, ok := v.(domain.Caller)
	return caller, ok
}

func GetUserID(c *gin.Context) uint {
	caller, _ := GetCaller(c)
	return caller.UserID
}
