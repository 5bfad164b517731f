package pkg

import (
	"fmt"

	"github.com/SAP-F-2025/school-assessment-service/internal/config"
	"github.com/SAP-F-2025/school-assessment-service/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDatabase(cfg *config.Config) (*gorm.DB, error) {
	var logLevel logger.LogLevel
	if cfg.Environment == "production" {
		logLevel = logger.Error
	} else {
		logLevel = logger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

// Migrate creates the reference and assessment tables with their unique
// indexes and cascading foreign keys.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Grade{},
		&models.Class{},
		&models.Subject{},
		&models.GradeSubject{},
		&models.ExamType{},
		&models.Test{},
		&models.Question{},
		&models.Option{},
		&models.Submission{},
		&models.Answer{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}
