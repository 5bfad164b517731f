package repositories

import (
	"context"
	"time"

	"github.com/SAP-F-2025/school-assessment-service/internal/models"
)

// Repository groups the per-entity repositories. A Repository handed to a
// WithTransaction callback runs every call inside that transaction.
type Repository interface {
	Test() TestRepository
	Question() QuestionRepository
	Submission() SubmissionRepository
	Directory() DirectoryRepository
	Analytics() AnalyticsRepository

	WithTransaction(ctx context.Context, fn func(tx Repository) error) error
}

// ===== SHARED FILTER STRUCTS =====

type ResultFilter struct {
	StudentID *string `json:"student_id"`
	ClassID   *uint   `json:"class_id"`
	TeacherID *string `json:"teacher_id"`
}

// ===== REPOSITORIES =====

type TestRepository interface {
	// Create inserts the test together with its questions and their options.
	Create(ctx context.Context, test *models.Test) error
	GetByID(ctx context.Context, id uint) (*models.Test, error)
	// GetWithQuestions loads questions ordered by position with options ordered by index.
	GetWithQuestions(ctx context.Context, id uint) (*models.Test, error)
	// GetForUpdate loads the test row holding a row lock until the transaction ends.
	GetForUpdate(ctx context.Context, id uint) (*models.Test, error)
	UpdateFields(ctx context.Context, test *models.Test) error
	SetPublished(ctx context.Context, id uint, published bool) error
	Delete(ctx context.Context, id uint) error

	ListByTeacher(ctx context.Context, teacherID string, filters models.TestFilters) ([]*models.Test, int64, error)
	ListPublishedByClass(ctx context.Context, classID uint) ([]*models.Test, error)
}

type QuestionRepository interface {
	CreateBatch(ctx context.Context, questions []*models.Question) error
	UpdateFields(ctx context.Context, question *models.Question) error
	ReplaceOptions(ctx context.Context, questionID uint, options []models.Option) error
	DeleteByIDs(ctx context.Context, testID uint, ids []uint) error
}

type SubmissionRepository interface {
	// Create inserts the submission and its answers. A second submission for
	// the same (test, student) fails with ErrDuplicateKey.
	Create(ctx context.Context, submission *models.Submission) error
	GetByID(ctx context.Context, id uint) (*models.Submission, error)
	GetWithAnswers(ctx context.Context, id uint) (*models.Submission, error)
	// GetByTestAndStudent returns nil, nil when the student has not submitted.
	GetByTestAndStudent(ctx context.Context, testID uint, studentID string) (*models.Submission, error)
	ListByTest(ctx context.Context, testID uint) ([]*models.Submission, error)
	ListByStudentForTests(ctx context.Context, studentID string, testIDs []uint) ([]*models.Submission, error)
	CountByTests(ctx context.Context, testIDs []uint) (map[uint]int64, error)
	ExistsForTest(ctx context.Context, testID uint) (bool, error)

	UpsertAnswerMarks(ctx context.Context, submissionID, questionID uint, marks int) error
	SumAwarded(ctx context.Context, submissionID uint) (int, error)
	MarkGraded(ctx context.Context, submissionID uint, total int, gradedBy string, gradedAt time.Time) error
}

type DirectoryRepository interface {
	GetClass(ctx context.Context, id uint) (*models.Class, error)
	SubjectsForGrade(ctx context.Context, gradeID uint) ([]models.GradeSubjectRecord, error)
	GradeSubjectsByIDs(ctx context.Context, ids []uint) ([]models.GradeSubjectRecord, error)
	ExamTypes(ctx context.Context) ([]models.ExamType, error)
}

type AnalyticsRepository interface {
	// GradedResults returns only submissions with is_graded = true.
	GradedResults(ctx context.Context, filter ResultFilter) ([]models.GradedResult, error)
	AnswerMarks(ctx context.Context, submissionIDs []uint) ([]models.AnswerMark, error)
	PendingCount(ctx context.Context, filter ResultFilter) (int64, error)
}
