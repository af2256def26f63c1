package handler

import (
	"net/http"
	"time"

	"carehub/internal/middleware"
	"carehub/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RecordHandler serves medical records and facility posts.
type RecordHandler struct {
	svc *service.RecordService
	log *zap.Logger
}

func NewRecordHandler(svc *service.RecordService, log *zap.Logger) *RecordHandler {
	return &RecordHandler{svc: svc, log: log}
}

type createRecordRequest struct {
	Category    string     `json:"category" binding:"required,max=30"`
	Title       string     `json:"title" binding:"required,max=200"`
	Description string     `json:"description"`
	RecordedAt  *time.Time `json:"recorded_at"`
}

func (h *RecordHandler) CreateMedicalRecord(c *gin.Context) {
	caller, _ := middleware.GetCaller(c)
	residentID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req createRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rec, err := h.svc.CreateMedicalRecord(c.Request.Context(), caller, residentID, service.CreateRecordInput{
		Category:    req.Category,
		Title:       req.Title,
		Description: req.Description,
		RecordedAt:  req.RecordedAt,
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

func (h *RecordHandler) ListMedicalRecords(c *gin.Context) {
	caller, _ := middleware.GetCaller(c)
	residentID, ok := paramID(c, "id")
	if !ok {
		return
	}
	page, limit := parsePagination(c)
	list, err := h.svc.ListMedicalRecords(c.Request.Context(), caller, residentID, limit, offsetOf(page, limit))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list, "page": page, "limit": limit})
}

func (h *RecordHandler) CreatePost(c *gin.Context) {
	caller, _ := middleware.GetCaller(c)
	var req struct {
		Title   string `json:"title" binding:"required,max=200"`
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p, err := h.svc.CreatePost(c.Request.Context(), caller, req.Title, req.Content)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *RecordHandler) ListPosts(c *gin.Context) {
	caller, _ := middleware.GetCaller(c)
	page, limit := parsePagination(c)
	list, err := h.svc.ListPosts(c.Request.Context(), caller, limit, offsetOf(page, limit))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list, "page": page, "limit": limit})
}
