package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db    *gorm.DB
	redis *redis.Client
}

func NewHealthHandler(db *gorm.DB, rdb *redis.Client) *HealthHandler {
	return &HealthHandler{db: db, redis: rdb}
}

// Check reports whether the database (and Redis, when configured) answer.
func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	resp := gin.H{"status": "ok", "database": "ok"}
	status := http.StatusOK
	if sqlDB, err := h.db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
		resp["database"] = "down"
		resp["status"] = "degraded"
		status = http.StatusServiceUnavailable
	}
	if h.redis != nil {
		resp["redis"] = "ok"
		if err := h.redis.Ping(ctx).Err(); err != nil {
			resp["redis"] = "down"
			resp["status"] = "degraded"
		}
	}
	c.JSON(status, resp)
}
