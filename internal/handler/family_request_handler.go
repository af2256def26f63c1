package handler

import (
	"net/http"

	"carehub/internal/domain"
	"carehub/internal/middleware"
	"carehub/internal/repository"
	"carehub/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// FamilyRequestHandler serves the connection request and approval endpoints.
type FamilyRequestHandler struct {
	svc       *service.ConnectionService
	auditRepo *repository.AuditLogRepository
	log       *zap.Logger
}

func NewFamilyRequestHandler(svc *service.ConnectionService, auditRepo *repository.AuditLogRepository, log *zap.Logger) *FamilyRequestHandler {
	return &FamilyRequestHandler{svc: svc, auditRepo: auditRepo, log: log}
}

type createFamilyRequest struct {
	Relationship string `json:"relationship"`
}

// Create handles POST /residents/:id/family-requests.
func (h *FamilyRequestHandler) Create(c *gin.Context) {
	caller, _ := middleware.GetCaller(c)
	residentID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req createFamilyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	link, err := h.svc.RequestConnection(c.Request.Context(), caller, residentID, req.Relationship)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, link)
}

// List handles GET /family-requests: the pending queue for staff, own links for family.
func (h *FamilyRequestHandler) List(c *gin.Context) {
	caller, _ := middleware.GetCaller(c)
	page, limit := parsePagination(c)
	list, err := h.svc.ListRequests(c.Request.Context(), caller, limit, offsetOf(page, limit))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list, "page": page, "limit": limit})
}

type resolveFamilyRequest struct {
	Action string `json:"action"`
}

// Resolve handles PATCH /family-requests/:id with {"action": "approve"|"reject"}.
func (h *FamilyRequestHandler) Resolve(c *gin.Context) {
	caller, _ := middleware.GetCaller(c)
	linkID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req resolveFamilyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	link, err := h.svc.ResolveConnection(c.Request.Context(), caller, linkID, req.Action)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	writeAudit(c, h.auditRepo, h.log, caller.UserID, "family_request_"+req.Action, withResource("family_link", linkID))
	if req.Action == domain.ActionReject {
		c.JSON(http.StatusOK, gin.H{"id": linkID, "status": "rejected"})
		return
	}
	c.JSON(http.StatusOK, link)
}

// Unlink handles DELETE /residents/:id/family/:userId.
func (h *FamilyRequestHandler) Unlink(c *gin.Context) {
	caller, _ := middleware.GetCaller(c)
	residentID, ok := paramID(c, "id")
	if !ok {
		return
	}
	userID, ok := paramID(c, "userId")
	if !ok {
		return
	}
	if err := h.svc.Unlink(c.Request.Context(), caller, residentID, userID); err != nil {
		writeError(c, h.log, err)
		return
	}
	writeAudit(c, h.auditRepo, h.log, caller.UserID, "family_unlink", withResource("resident", residentID))
	c.Status(http.StatusNoContent)
}
