package handler

import (
	"net/http"

	"carehub/internal/middleware"
	"carehub/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type NotificationHandler struct {
	svc *service.NotificationService
	log *zap.Logger
}

func NewNotificationHandler(svc *service.NotificationService, log *zap.Logger) *NotificationHandler {
	return &NotificationHandler{svc: svc, log: log}
}

// List handles GET /me/notifications?unread=true&page=&limit=.
func (h *NotificationHandler) List(c *gin.Context) {
	caller, _ := middleware.GetCaller(c)
	page, limit := parsePagination(c)
	list, err := h.svc.List(c.Request.Context(), caller, c.Query("unread") == "true", limit, offsetOf(page, limit))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": list, "page": page, "limit": limit})
}

func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	caller, _ := middleware.GetCaller(c)
	n, err := h.svc.UnreadCount(c.Request.Context(), caller)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread": n})
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	caller, _ := middleware.GetCaller(c)
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.MarkRead(c.Request.Context(), caller, id); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	caller, _ := middleware.GetCaller(c)
	n, err := h.svc.MarkAllRead(c.Request.Context(), caller)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "updated": n})
}

func (h *NotificationHandler) Delete(c *gin.Context) {
	caller, _ := middleware.GetCaller(c)
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), caller, id); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
