package handler

import (
	"net/http"

	"carehub/internal/middleware"
	"carehub/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type MeHandler struct {
	authSvc *service.AuthService
	log     *zap.Logger
}

func NewMeHandler(authSvc *service.AuthService, log *zap.Logger) *MeHandler {
	return &MeHandler{authSvc: authSvc, log: log}
}

// GetProfile returns the current account and, for staff, its facility.
func (h *MeHandler) GetProfile(c *gin.Context) {
	caller, _ := middleware.GetCaller(c)
	u, err := h.authSvc.Me(c.Request.Context(), caller)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	resp := gin.H{
		"id":           u.ID,
		"email":        u.Email,
		"name":         u.DisplayName(),
		"role":         u.Role,
		"facility_id":  u.FacilityID,
		"has_password": u.PasswordHash != "",
		"created_at":   u.CreatedAt,
	}
	if u.Facility != nil {
		resp["facility"] = u.Facility
	}
	c.JSON(http.StatusOK, resp)
}

// RegisterFCMToken saves the device token used for push notifications.
func (h *MeHandler) RegisterFCMToken(c *gin.Context) {
	caller, _ := middleware.GetCaller(c)
	var req struct {
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token required"})
		return
	}
	if err := h.authSvc.RegisterFCMToken(c.Request.Context(), caller, req.Token); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
