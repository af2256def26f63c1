package handler

import (
	"net/http"

	"carehub/internal/middleware"
	"carehub/internal/repository"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AdminHandler struct {
	adminRepo *repository.AdminRepository
	userRepo  *repository.UserRepository
	log       *zap.Logger
}

func NewAdminHandler(adminRepo *repository.AdminRepository, userRepo *repository.UserRepository, log *zap.Logger) *AdminHandler {
	return &AdminHandler{adminRepo: adminRepo, userRepo: userRepo, log: log}
}

// Dashboard handles GET /admin/dashboard: counts for the admin's facility.
func (h *AdminHandler) Dashboard(c *gin.Context) {
	caller, _ := middleware.GetCaller(c)
	if caller.FacilityID == nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "no facility assigned"})
		return
	}
	stats, err := h.adminRepo.GetDashboardStats(c.Request.Context(), *caller.FacilityID)
	if err != nil {
		h.log.Error("dashboard stats failed", zap.Uint("facility_id", *caller.FacilityID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ListStaff handles GET /admin/staff.
func (h *AdminHandler) ListStaff(c *gin.Context) {
	caller, _ := middleware.GetCaller(c)
	if caller.FacilityID == nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "no facility assigned"})
		return
	}
	page, limit := parsePagination(c)
	staff, err := h.userRepo.ListStaffByFacility(c.Request.Context(), *caller.FacilityID, limit, offsetOf(page, limit))
	if err != nil {
		h.log.Error("list staff failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list staff"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": staff, "page": page, "limit": limit})
}
