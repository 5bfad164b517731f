package services

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/school-assessment-service/internal/models"
	"github.com/SAP-F-2025/school-assessment-service/internal/repositories"
	"github.com/stretchr/testify/mock"
)

func testLogger() *ServiceLogger {
	return NewServiceLogger(slog.New(slog.NewTextHandler(io.Discard, nil)), "test")
}

// mockRepo runs WithTransaction callbacks against itself.
type mockRepo struct {
	tests     *mockTestRepo
	questions *mockQuestionRepo
	subs      *mockSubmissionRepo
	dir       *mockDirectoryRepo
	analytics *mockAnalyticsRepo
	txCount   int
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		tests:     &mockTestRepo{},
		questions: &mockQuestionRepo{},
		subs:      &mockSubmissionRepo{},
		dir:       &mockDirectoryRepo{},
		analytics: &mockAnalyticsRepo{},
	}
}

func (m *mockRepo) Test() repositories.TestRepository             { return m.tests }
func (m *mockRepo) Question() repositories.QuestionRepository     { return m.questions }
func (m *mockRepo) Submission() repositories.SubmissionRepository { return m.subs }
func (m *mockRepo) Directory() repositories.DirectoryRepository   { return m.dir }
func (m *mockRepo) Analytics() repositories.AnalyticsRepository   { return m.analytics }

func (m *mockRepo) WithTransaction(ctx context.Context, fn func(tx repositories.Repository) error) error {
	m.txCount++
	return fn(m)
}

func (m *mockRepo) assertExpectations(t mock.TestingT) {
	m.tests.AssertExpectations(t)
	m.questions.AssertExpectations(t)
	m.subs.AssertExpectations(t)
	m.dir.AssertExpectations(t)
	m.analytics.AssertExpectations(t)
}

// ===== TEST REPOSITORY =====

type mockTestRepo struct{ mock.Mock }

// testResult accepts either a *models.Test or a func producing one, for
// tests whose row only exists after an earlier call ran.
func testResult(args mock.Arguments) (*models.Test, error) {
	switch v := args.Get(0).(type) {
	case *models.Test:
		return v, args.Error(1)
	case func() *models.Test:
		return v(), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTestRepo) Create(ctx context.Context, test *models.Test) error {
	return m.Called(ctx, test).Error(0)
}

func (m *mockTestRepo) GetByID(ctx context.Context, id uint) (*models.Test, error) {
	return testResult(m.Called(ctx, id))
}

func (m *mockTestRepo) GetWithQuestions(ctx context.Context, id uint) (*models.Test, error) {
	return testResult(m.Called(ctx, id))
}

func (m *mockTestRepo) GetForUpdate(ctx context.Context, id uint) (*models.Test, error) {
	return testResult(m.Called(ctx, id))
}

func (m *mockTestRepo) UpdateFields(ctx context.Context, test *models.Test) error {
	return m.Called(ctx, test).Error(0)
}

func (m *mockTestRepo) SetPublished(ctx context.Context, id uint, published bool) error {
	return m.Called(ctx, id, published).Error(0)
}

func (m *mockTestRepo) Delete(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockTestRepo) ListByTeacher(ctx context.Context, teacherID string, filters models.TestFilters) ([]*models.Test, int64, error) {
	args := m.Called(ctx, teacherID, filters)
	tests, _ := args.Get(0).([]*models.Test)
	return tests, args.Get(1).(int64), args.Error(2)
}

func (m *mockTestRepo) ListPublishedByClass(ctx context.Context, classID uint) ([]*models.Test, error) {
	args := m.Called(ctx, classID)
	tests, _ := args.Get(0).([]*models.Test)
	return tests, args.Error(1)
}

// ===== QUESTION REPOSITORY =====

type mockQuestionRepo struct{ mock.Mock }

func (m *mockQuestionRepo) CreateBatch(ctx context.Context, questions []*models.Question) error {
	return m.Called(ctx, questions).Error(0)
}

func (m *mockQuestionRepo) UpdateFields(ctx context.Context, question *models.Question) error {
	return m.Called(ctx, question).Error(0)
}

func (m *mockQuestionRepo) ReplaceOptions(ctx context.Context, questionID uint, options []models.Option) error {
	return m.Called(ctx, questionID, options).Error(0)
}

func (m *mockQuestionRepo) DeleteByIDs(ctx context.Context, testID uint, ids []uint) error {
	return m.Called(ctx, testID, ids).Error(0)
}

// ===== SUBMISSION REPOSITORY =====

type mockSubmissionRepo struct{ mock.Mock }

func submissionResult(args mock.Arguments) (*models.Submission, error) {
	if s, ok := args.Get(0).(*models.Submission); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockSubmissionRepo) Create(ctx context.Context, submission *models.Submission) error {
	return m.Called(ctx, submission).Error(0)
}

func (m *mockSubmissionRepo) GetByID(ctx context.Context, id uint) (*models.Submission, error) {
	return submissionResult(m.Called(ctx, id))
}

func (m *mockSubmissionRepo) GetWithAnswers(ctx context.Context, id uint) (*models.Submission, error) {
	return submissionResult(m.Called(ctx, id))
}

func (m *mockSubmissionRepo) GetByTestAndStudent(ctx context.Context, testID uint, studentID string) (*models.Submission, error) {
	return submissionResult(m.Called(ctx, testID, studentID))
}

func (m *mockSubmissionRepo) ListByTest(ctx context.Context, testID uint) ([]*models.Submission, error) {
	args := m.Called(ctx, testID)
	subs, _ := args.Get(0).([]*models.Submission)
	return subs, args.Error(1)
}

func (m *mockSubmissionRepo) ListByStudentForTests(ctx context.Context, studentID string, testIDs []uint) ([]*models.Submission, error) {
	args := m.Called(ctx, studentID, testIDs)
	subs, _ := args.Get(0).([]*models.Submission)
	return subs, args.Error(1)
}

func (m *mockSubmissionRepo) CountByTests(ctx context.Context, testIDs []uint) (map[uint]int64, error) {
	args := m.Called(ctx, testIDs)
	counts, _ := args.Get(0).(map[uint]int64)
	return counts, args.Error(1)
}

func (m *mockSubmissionRepo) ExistsForTest(ctx context.Context, testID uint) (bool, error) {
	args := m.Called(ctx, testID)
	return args.Bool(0), args.Error(1)
}

func (m *mockSubmissionRepo) UpsertAnswerMarks(ctx context.Context, submissionID, questionID uint, marks int) error {
	return m.Called(ctx, submissionID, questionID, marks).Error(0)
}

func (m *mockSubmissionRepo) SumAwarded(ctx context.Context, submissionID uint) (int, error) {
	args := m.Called(ctx, submissionID)
	return args.Int(0), args.Error(1)
}

func (m *mockSubmissionRepo) MarkGraded(ctx context.Context, submissionID uint, total int, gradedBy string, gradedAt time.Time) error {
	return m.Called(ctx, submissionID, total, gradedBy, gradedAt).Error(0)
}

// ===== DIRECTORY REPOSITORY =====

type mockDirectoryRepo struct{ mock.Mock }

func (m *mockDirectoryRepo) GetClass(ctx context.Context, id uint) (*models.Class, error) {
	args := m.Called(ctx, id)
	if c, ok := args.Get(0).(*models.Class); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDirectoryRepo) SubjectsForGrade(ctx context.Context, gradeID uint) ([]models.GradeSubjectRecord, error) {
	args := m.Called(ctx, gradeID)
	rows, _ := args.Get(0).([]models.GradeSubjectRecord)
	return rows, args.Error(1)
}

func (m *mockDirectoryRepo) GradeSubjectsByIDs(ctx context.Context, ids []uint) ([]models.GradeSubjectRecord, error) {
	args := m.Called(ctx, ids)
	rows, _ := args.Get(0).([]models.GradeSubjectRecord)
	return rows, args.Error(1)
}

func (m *mockDirectoryRepo) ExamTypes(ctx context.Context) ([]models.ExamType, error) {
	args := m.Called(ctx)
	rows, _ := args.Get(0).([]models.ExamType)
	return rows, args.Error(1)
}

// ===== ANALYTICS REPOSITORY =====

type mockAnalyticsRepo struct{ mock.Mock }

func (m *mockAnalyticsRepo) GradedResults(ctx context.Context, filter repositories.ResultFilter) ([]models.GradedResult, error) {
	args := m.Called(ctx, filter)
	rows, _ := args.Get(0).([]models.GradedResult)
	return rows, args.Error(1)
}

func (m *mockAnalyticsRepo) AnswerMarks(ctx context.Context, submissionIDs []uint) ([]models.AnswerMark, error) {
	args := m.Called(ctx, submissionIDs)
	rows, _ := args.Get(0).([]models.AnswerMark)
	return rows, args.Error(1)
}

func (m *mockAnalyticsRepo) PendingCount(ctx context.Context, filter repositories.ResultFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

// ===== FIXTURES =====

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }
func uintPtr(v uint) *uint    { return &v }

func teacherPrincipal(id string) *models.Principal {
	return &models.Principal{ID: id, Role: models.RoleTeacher, SchoolID: "school-1"}
}

func studentPrincipal(id string, classID uint) *models.Principal {
	return &models.Principal{ID: id, Role: models.RoleStudent, ClassID: uintPtr(classID), SchoolID: "school-1"}
}

func subjectRecord(id uint, gradeID uint, name string) models.GradeSubjectRecord {
	return models.GradeSubjectRecord{
		ID:      id,
		GradeID: gradeID,
		Subject: models.NewRelation(&models.Subject{ID: id * 10, Name: name}),
	}
}

// mcqTest builds a published three-question MCQ test worth 5 marks each,
// where option 0 is always correct.
func mcqTest() *models.Test {
	test := &models.Test{
		ID:              1,
		Title:           "Algebra quiz",
		DurationMinutes: 30,
		IsPublished:     true,
		ClassID:         7,
		GradeSubjectID:  3,
		ExamTypeID:      2,
		TeacherID:       "teacher-1",
	}
	for i := 0; i < 3; i++ {
		test.Questions = append(test.Questions, models.Question{
			ID:                 uint(101 + i),
			TestID:             1,
			Key:                []string{"q-a", "q-b", "q-c"}[i],
			Position:           i,
			Text:               "Question",
			Type:               models.QuestionMCQ,
			Marks:              5,
			Chapter:            "Algebra",
			Topic:              "Linear equations",
			CorrectOptionIndex: intPtr(0),
			Options: []models.Option{
				{Index: 0, Text: "right"},
				{Index: 1, Text: "wrong"},
			},
		})
	}
	return test
}
