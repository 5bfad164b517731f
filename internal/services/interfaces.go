package services

import (
	"context"

	"github.com/SAP-F-2025/school-assessment-service/internal/models"
)

// ===== SERVICE INTERFACES =====

type DirectoryService interface {
	ResolveClass(ctx context.Context, id uint) (*models.ClassRef, error)
	ResolveSubjectsForGrade(ctx context.Context, gradeID uint) ([]models.NamedRef, error)
	ResolveExamTypes(ctx context.Context) ([]models.NamedRef, error)
	ResolveNames(ctx context.Context, gradeSubjectIDs, examTypeIDs []uint) (*NameLookup, error)
	InvalidateCache(ctx context.Context, caller *models.Principal) error
}

type AuthoringService interface {
	CreateTest(ctx context.Context, draft *models.TestDraft, teacher *models.Principal) (*TestView, error)
	UpdateTest(ctx context.Context, testID uint, draft *models.TestDraft, teacher *models.Principal) (*TestView, error)
	SetPublished(ctx context.Context, testID uint, published bool, teacher *models.Principal) error
	DeleteTest(ctx context.Context, testID uint, teacher *models.Principal) error
	GetTest(ctx context.Context, testID uint, teacher *models.Principal) (*TestView, error)
	ListTests(ctx context.Context, teacher *models.Principal, filters models.TestFilters) (*TestListResponse, error)
}

type AttemptService interface {
	GetAttempt(ctx context.Context, testID uint, student *models.Principal) (*AttemptView, error)
	ListAvailableTests(ctx context.Context, student *models.Principal) ([]AvailableTest, error)
}

type SubmissionService interface {
	Submit(ctx context.Context, testID uint, req *models.SubmitRequest, student *models.Principal) (*SubmissionView, error)
}

type GradingService interface {
	GradeAnswer(ctx context.Context, submissionID, questionID uint, marks int, teacher *models.Principal) error
	FinalizeGrading(ctx context.Context, submissionID uint, teacher *models.Principal) (*SubmissionSummary, error)
	GradeSubmission(ctx context.Context, submissionID uint, req *models.GradeSubmissionRequest, teacher *models.Principal) (*SubmissionSummary, error)
	ListSubmissions(ctx context.Context, testID uint, teacher *models.Principal) ([]SubmissionSummary, error)
	GetSubmissionForGrading(ctx context.Context, submissionID uint, teacher *models.Principal) (*GradingView, error)
}

type AnalyticsService interface {
	StudentPerformance(ctx context.Context, studentID string, caller *models.Principal) (*models.StudentPerformance, error)
	ClassPerformance(ctx context.Context, classID uint, teacher *models.Principal) (*models.ClassPerformance, error)
}

type ExportService interface {
	ExportTestResults(ctx context.Context, testID uint, teacher *models.Principal) (*ExportFile, error)
}

// ServiceManager hands out every service built over one repository.
type ServiceManager interface {
	Directory() DirectoryService
	Authoring() AuthoringService
	Attempt() AttemptService
	Submission() SubmissionService
	Grading() GradingService
	Analytics() AnalyticsService
	Export() ExportService
}
