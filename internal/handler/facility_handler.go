package handler

import (
	"errors"
	"net/http"

	"carehub/internal/repository"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// FacilityHandler lets family members find the facility whose residents they
// want to browse.
type FacilityHandler struct {
	repo *repository.FacilityRepository
	log  *zap.Logger
}

func NewFacilityHandler(repo *repository.FacilityRepository, log *zap.Logger) *FacilityHandler {
	return &FacilityHandler{repo: repo, log: log}
}

func (h *FacilityHandler) List(c *gin.Context) {
	list, err := h.repo.List(c.Request.Context())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list})
}

func (h *FacilityHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	f, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "facility not found"})
			return
		}
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, f)
}
