package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db *gorm.DB
}

func NewHealthHandler(db *gorm.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// CheckHealth reports whether the database answers.
// GET /health
func (h *HealthHandler) CheckHealth(c *gin.Context) {
	dbStatus := "ok"
	status := http.StatusOK
	if sqlDB, err := h.db.DB(); err != nil {
		dbStatus = "error: " + err.Error()
		status = http.StatusServiceUnavailable
	} else if err := sqlDB.PingContext(c.Request.Context()); err != nil {
		dbStatus = "error: " + err.Error()
		status = http.StatusServiceUnavailable
	}

	overall := "healthy"
	if status != http.StatusOK {
		overall = "unhealthy"
	}
	c.JSON(status, gin.H{
		"status":  overall,
		"service": "softdesk",
		"components": gin.H{
			"database": dbStatus,
		},
	})
}
