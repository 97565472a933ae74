package database

import (
	"fmt"
	"time"

	"trackii-backend/internal/config"
	"trackii-backend/internal/models"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects using the configured driver. Duplicate-key errors are
// translated to gorm.ErrDuplicatedKey. SQL errors and slow queries are
// logged to zl.
func Open(cfg *config.Config, zl *zap.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DatabaseDriver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DatabaseDSN)
	default:
		dialector = postgres.Open(cfg.DatabaseDSN)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         NewGormLogger(zl),
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return db, nil
}

// NewGormLogger routes gorm's warnings through zap. Lookups that find no
// row are expected and stay silent.
func NewGormLogger(zl *zap.Logger) logger.Interface {
	if zl == nil {
		zl = zap.NewNop()
	}
	std, err := zap.NewStdLogAt(zl.Named("gorm"), zap.WarnLevel)
	if err != nil {
		std = zap.NewStdLog(zl.Named("gorm"))
	}
	return logger.New(std, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
		ParameterizedQueries:      true,
		Colorful:                  false,
	})
}

// Models lists every table owned by the service, reference data first.
func Models() []any {
	return []any{
		&models.Location{},
		&models.Route{},
		&models.RouteStep{},
		&models.Area{},
		&models.Family{},
		&models.Subfamily{},
		&models.Product{},
		&models.UnregisteredPart{},
		&models.User{},
		&models.Device{},
		&models.ErrorCategory{},
		&models.ErrorCode{},
		&models.WorkOrder{},
		&models.WipItem{},
		&models.StepExecution{},
		&models.ScanEvent{},
		&models.ScrapLog{},
		&models.ReworkLog{},
	}
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
