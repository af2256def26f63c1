package handler

import (
	"context"
	"net/http"

	"carehub/internal/middleware"
	"carehub/internal/models"
	"carehub/internal/repository"
	"carehub/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	svc       *service.AuthService
	auditRepo *repository.AuditLogRepository
	log       *zap.Logger
}

func NewAuthHandler(svc *service.AuthService, auditRepo *repository.AuditLogRepository, log *zap.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, auditRepo: auditRepo, log: log}
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name" binding:"required,max=100"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// Register handles POST /auth/register. Only family accounts sign up themselves.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	u, tokens, err := h.svc.Register(c.Request.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	h.audit(c, u.ID, "register")
	c.JSON(http.StatusCreated, gin.H{
		"user":          u,
		"access_token":  tokens.Access,
		"refresh_token": tokens.Refresh,
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	u, tokens, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	h.audit(c, u.ID, "login")
	c.JSON(http.StatusOK, gin.H{
		"user":          u,
		"access_token":  tokens.Access,
		"refresh_token": tokens.Refresh,
	})
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	tokens, err := h.svc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"access_token":  tokens.Access,
		"refresh_token": tokens.Refresh,
	})
}

// CreateStaff handles POST /admin/staff.
func (h *AuthHandler) CreateStaff(c *gin.Context) {
	caller, _ := middleware.GetCaller(c)
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Name     string `json:"name" binding:"required,max=100"`
		Password string `json:"password" binding:"required,min=8"`
		Role     string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	u, err := h.svc.CreateStaff(c.Request.Context(), caller, req.Email, req.Name, req.Password, req.Role)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	h.audit(c, caller.UserID, "staff_created", withResource("user", u.ID))
	c.JSON(http.StatusCreated, u)
}

type auditOpt func(*models.AuditLog)

func withResource(resource string, id uint) auditOpt {
	return func(a *models.AuditLog) {
		a.Resource = resource
		a.ResourceID = uintString(id)
	}
}

func (h *AuthHandler) audit(c *gin.Context, userID uint, action string, opts ...auditOpt) {
	writeAudit(c, h.auditRepo, h.log, userID, action, opts...)
}

// writeAudit records who did what from where. A failed write is only logged.
func writeAudit(c *gin.Context, repo *repository.AuditLogRepository, log *zap.Logger, userID uint, action string, opts ...auditOpt) {
	if repo == nil {
		return
	}
	entry := &models.AuditLog{
		UserID:    &userID,
		Action:    action,
		Resource:  "auth",
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
	for _, o := range opts {
		o(entry)
	}
	if err := repo.Create(context.WithoutCancel(c.Request.Context()), entry); err != nil {
		log.Warn("audit log not written", zap.String("action", action), zap.Error(err))
	}
}
