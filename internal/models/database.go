package models

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/xavierjeanne/softdesk/internal/config"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Open connects to the configured database without touching the package-level handle.
func Open(cfg *config.DatabaseConfig, logLevel string) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	case "mysql":
		dialector = mysql.Open(cfg.DSN)
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	gormConfig := &gorm.Config{
		Logger:         logger.Default.LogMode(gormLogLevel(logLevel)),
		TranslateError: true,
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}
	return db, nil
}

func InitDB(cfg *config.DatabaseConfig, logLevel string) error {
	db, err := Open(cfg, logLevel)
	if err != nil {
		return err
	}
	DB = db
	return nil
}

func gormLogLevel(level string) logger.LogLevel {
	switch level {
	case "debug":
		return logger.Info
	case "info", "warn":
		return logger.Warn
	default:
		return logger.Error
	}
}

// Migrate creates or updates the schema on db.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Project{},
		&Contributor{},
		&Issue{},
		&Comment{},
		&SystemLog{},
	)
}

func AutoMigrate() error {
	return Migrate(DB)
}

func GetDB() *gorm.DB {
	return DB
}

// Transaction runs fn in a single transaction on db. Check-then-write
// sequences (membership uniqueness, last-contributor counts) run here, so
// servers that support it get serializable isolation. SQLite transactions
// are serializable already.
func Transaction(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db.Dialector.Name() == "sqlite" {
		return db.WithContext(ctx).Transaction(fn)
	}
	return db.WithContext(ctx).Transaction(fn, &sql.TxOptions{Isolation: sql.LevelSerializable})
}
