package handler

import (
	"net/http"
	"strconv"
	"time"

	"carehub/internal/middleware"
	"carehub/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ResidentHandler struct {
	svc *service.ResidentService
	log *zap.Logger
}

func NewResidentHandler(svc *service.ResidentService, log *zap.Logger) *ResidentHandler {
	return &ResidentHandler{svc: svc, log: log}
}

type createResidentRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Room        string `json:"room" binding:"max=30"`
	DateOfBirth string `json:"date_of_birth"` // YYYY-MM-DD
	Gender      string `json:"gender" binding:"max=10"`
	CareLevel   string `json:"care_level" binding:"max=30"`
	Notes       string `json:"notes"`
	AdmittedAt  string `json:"admitted_at"` // YYYY-MM-DD
}

func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Create handles POST /residents (staff).
func (h *ResidentHandler) Create(c *gin.Context) {
	caller, _ := middleware.GetCaller(c)
	var req createResidentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	dob, err := parseDate(req.DateOfBirth)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date_of_birth format (use YYYY-MM-DD)"})
		return
	}
	admitted, err := parseDate(req.AdmittedAt)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid admitted_at format (use YYYY-MM-DD)"})
		return
	}
	r, err := h.svc.Create(c.Request.Context(), caller, service.CreateResidentInput{
		Name:        req.Name,
		Room:        req.Room,
		DateOfBirth: dob,
		Gender:      req.Gender,
		CareLevel:   req.CareLevel,
		Notes:       req.Notes,
		AdmittedAt:  admitted,
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

// List handles GET /residents?facility_id=&search=.
func (h *ResidentHandler) List(c *gin.Context) {
	caller, _ := middleware.GetCaller(c)
	page, limit := parsePagination(c)
	var facilityID *uint
	if v := c.Query("facility_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid facility_id"})
			return
		}
		fid := uint(id)
		facilityID = &fid
	}
	list, err := h.svc.List(c.Request.Context(), caller, facilityID, c.Query("search"), limit, offsetOf(page, limit))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list, "page": page, "limit": limit})
}

// Get handles GET /residents/:id. The body carries the caller's connection
// state and allowed actions; the full record only when they may see it.
func (h *ResidentHandler) Get(c *gin.Context) {
	caller, _ := middleware.GetCaller(c)
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	view, err := h.svc.Get(c.Request.Context(), caller, id)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, view)
}
