package services

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/xavierjeanne/softdesk/internal/config"
	"github.com/xavierjeanne/softdesk/internal/models"
	"github.com/xavierjeanne/softdesk/pkg/logger"
	"gorm.io/gorm"
)

// AuditLogService stores the audit trail of write requests and prunes it on
// a schedule.
type AuditLogService struct {
	db            *gorm.DB
	cfg           config.AuditConfig
	cronScheduler *cron.Cron
}

func NewAuditLogService(db *gorm.DB, cfg config.AuditConfig) *AuditLogService {
	return &AuditLogService{db: db, cfg: cfg}
}

// Record stores entry. Failures are logged and never reach the request.
func (s *AuditLogService) Record(ctx context.Context, entry *models.SystemLog) {
	if !s.cfg.Enabled {
		return
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		logger.Error().Err(err).Str("action", entry.Action).Msg("failed to write audit log")
	}
}

// CleanupOldLogs deletes entries older than retentionDays and returns how
// many were removed. A non-positive retention keeps everything.
func (s *AuditLogService) CleanupOldLogs(ctx context.Context, retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		return 0, nil
	}

	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	result := s.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&models.SystemLog{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// StartScheduler runs the retention cleanup on cfg.CleanupSpec.
func (s *AuditLogService) StartScheduler() error {
	if !s.cfg.Enabled || s.cfg.RetentionDays <= 0 {
		logger.Info().Msg("audit log cleanup disabled")
		return nil
	}

	s.cronScheduler = cron.New()
	if _, err := s.cronScheduler.AddFunc(s.cfg.CleanupSpec, s.runCleanup); err != nil {
		return err
	}
	s.cronScheduler.Start()

	logger.Info().
		Str("spec", s.cfg.CleanupSpec).
		Int("retention_days", s.cfg.RetentionDays).
		Msg("audit log cleanup scheduled")
	return nil
}

func (s *AuditLogService) StopScheduler() {
	if s.cronScheduler != nil {
		<-s.cronScheduler.Stop().Done()
	}
}

func (s *AuditLogService) runCleanup() {
	deleted, err := s.CleanupOldLogs(context.Background(), s.cfg.RetentionDays)
	if err != nil {
		logger.Error().Err(err).Msg("audit log cleanup failed")
		return
	}
	if deleted > 0 {
		logger.Info().Int64("deleted", deleted).Int("retention_days", s.cfg.RetentionDays).Msg("audit logs cleaned up")
	}
}
