package main

import (
	"fmt"

	"github.com/xavierjeanne/softdesk/internal/config"
	"github.com/xavierjeanne/softdesk/internal/middleware"
	"github.com/xavierjeanne/softdesk/internal/models"
	"github.com/xavierjeanne/softdesk/internal/services"
	"github.com/xavierjeanne/softdesk/internal/utils"
	"github.com/xavierjeanne/softdesk/pkg/logger"
)

// appServices holds the long-lived collaborators of the server.
type appServices struct {
	auditService *services.AuditLogService
	authLimiter  *middleware.RateLimiter
}

// bootstrap connects and migrates the database and starts the schedulers.
func bootstrap(cfg *config.Config) (*appServices, error) {
	utils.SetJWTSecret(cfg.JWT.Secret)

	if err := models.InitDB(&cfg.Database, cfg.Log.Level); err != nil {
		return nil, err
	}
	if err := models.AutoMigrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	auditService := services.NewAuditLogService(models.GetDB(), cfg.Audit)
	if err := auditService.StartScheduler(); err != nil {
		return nil, fmt.Errorf("failed to schedule audit cleanup: %w", err)
	}

	return &appServices{
		auditService: auditService,
		authLimiter:  middleware.NewRateLimiter(cfg.RateLimit),
	}, nil
}

// shutdown stops the schedulers and closes the database.
func (s *appServices) shutdown() {
	s.auditService.StopScheduler()
	s.authLimiter.Stop()

	if sqlDB, err := models.GetDB().DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close database")
		}
	}
	logger.Info().Msg("all services stopped")
}
