package services

import (
	"log/slog"
	"time"

	"github.com/SAP-F-2025/school-assessment-service/internal/cache"
	"github.com/SAP-F-2025/school-assessment-service/internal/events"
	"github.com/SAP-F-2025/school-assessment-service/internal/repositories"
	"github.com/SAP-F-2025/school-assessment-service/internal/validator"
)

type serviceManager struct {
	directory  DirectoryService
	authoring  AuthoringService
	attempt    AttemptService
	submission SubmissionService
	grading    GradingService
	analytics  AnalyticsService
	export     ExportService
}

// ManagerConfig carries the collaborators every service is built from.
type ManagerConfig struct {
	Repo              repositories.Repository
	Cache             cache.CacheService
	DirectoryCacheTTL time.Duration
	Publisher         events.EventPublisher
	Validator         *validator.Validator
	Logger            *slog.Logger
}

func NewServiceManager(cfg ManagerConfig) ServiceManager {
	if cfg.Validator == nil {
		cfg.Validator = validator.New()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	directory := NewDirectoryService(cfg.Repo, cfg.Cache, cfg.DirectoryCacheTTL, NewServiceLogger(cfg.Logger, "directory"))

	return &serviceManager{
		directory:  directory,
		authoring:  NewAuthoringService(cfg.Repo, directory, cfg.Validator, cfg.Publisher, NewServiceLogger(cfg.Logger, "authoring")),
		attempt:    NewAttemptService(cfg.Repo, directory, NewServiceLogger(cfg.Logger, "attempt")),
		submission: NewSubmissionService(cfg.Repo, cfg.Validator, cfg.Publisher, NewServiceLogger(cfg.Logger, "submission")),
		grading:    NewGradingService(cfg.Repo, directory, cfg.Validator, cfg.Publisher, NewServiceLogger(cfg.Logger, "grading")),
		analytics:  NewAnalyticsService(cfg.Repo, directory, NewServiceLogger(cfg.Logger, "analytics")),
		export:     NewExportService(cfg.Repo, NewServiceLogger(cfg.Logger, "export")),
	}
}

func (m *serviceManager) Directory() DirectoryService   { return m.directory }
func (m *serviceManager) Authoring() AuthoringService   { return m.authoring }
func (m *serviceManager) Attempt() AttemptService       { return m.attempt }
func (m *serviceManager) Submission() SubmissionService { return m.submission }
func (m *serviceManager) Grading() GradingService       { return m.grading }
func (m *serviceManager) Analytics() AnalyticsService   { return m.analytics }
func (m *serviceManager) Export() ExportService         { return m.export }
