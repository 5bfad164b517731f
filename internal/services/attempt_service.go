package services

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/school-assessment-service/internal/models"
	"github.com/SAP-F-2025/school-assessment-service/internal/repositories"
)

type attemptService struct {
	repo      repositories.Repository
	directory DirectoryService
	log       *ServiceLogger
}

func NewAttemptService(repo repositories.Repository, directory DirectoryService, log *ServiceLogger) AttemptService {
	return &attemptService{
		repo:      repo,
		directory: directory,
		log:       log,
	}
}

// authorizeAttempt loads a test for a student. Missing and unpublished
// tests are not found; a student outside the test's class is refused.
func authorizeAttempt(ctx context.Context, repo repositories.Repository, testID uint, student *models.Principal, action string) (*models.Test, error) {
	if err := requireStudent(student, testID, "test", action); err != nil {
		return nil, err
	}

	test, err := repo.Test().GetWithQuestions(ctx, testID)
	if err != nil {
		return nil, mapRepoError("load test", err, ErrTestNotFound)
	}
	if !test.IsPublished {
		return nil, ErrTestNotPublished
	}
	if !student.InClass(test.ClassID) {
		return nil, fmt.Errorf("%w: %w", ErrNotEnrolled,
			NewPermissionError(student.ID, testID, "test", action, "not enrolled in the test's class"))
	}
	return test, nil
}

// GetAttempt returns the student projection of a test: no correct option,
// no expected answer text. A prior submission comes back with it.
func (s *attemptService) GetAttempt(ctx context.Context, testID uint, student *models.Principal) (view *AttemptView, err error) {
	op := s.log.WithOperation(ctx, "get_attempt", principalID(student))
	defer func() { op.LogResult(testID, "test", err) }()

	test, err := authorizeAttempt(ctx, s.repo, testID, student, "attempt")
	if err != nil {
		return nil, err
	}

	names, err := s.directory.ResolveNames(ctx, []uint{test.GradeSubjectID}, []uint{test.ExamTypeID})
	if err != nil {
		return nil, err
	}
	className := models.UnknownClass
	if class, classErr := s.directory.ResolveClass(ctx, test.ClassID); classErr == nil {
		className = class.Name
	}

	view = &AttemptView{
		Test:      toTestHeader(test, className, names),
		Questions: make([]StudentQuestionView, 0, len(test.Questions)),
	}
	for i := range test.Questions {
		view.Questions = append(view.Questions, toStudentQuestionView(&test.Questions[i]))
	}

	prior, err := s.repo.Submission().GetByTestAndStudent(ctx, testID, student.ID)
	if err != nil {
		return nil, newPersistenceError("load prior submission", err)
	}
	if prior != nil {
		view.Submission = toSubmissionView(prior, test.TotalMarks())
	}
	return view, nil
}

// ListAvailableTests lists the published tests of the student's class with
// the student's status on each.
func (s *attemptService) ListAvailableTests(ctx context.Context, student *models.Principal) ([]AvailableTest, error) {
	if err := requireStudent(student, 0, "test", "list"); err != nil {
		return nil, err
	}
	if student.ClassID == nil {
		return []AvailableTest{}, nil
	}

	tests, err := s.repo.Test().ListPublishedByClass(ctx, *student.ClassID)
	if err != nil {
		return nil, newPersistenceError("list published tests", err)
	}
	if len(tests) == 0 {
		return []AvailableTest{}, nil
	}

	ids := make([]uint, len(tests))
	subjectIDs := make([]uint, len(tests))
	examTypeIDs := make([]uint, len(tests))
	for i, t := range tests {
		ids[i] = t.ID
		subjectIDs[i] = t.GradeSubjectID
		examTypeIDs[i] = t.ExamTypeID
	}

	submissions, err := s.repo.Submission().ListByStudentForTests(ctx, student.ID, ids)
	if err != nil {
		return nil, newPersistenceError("list student submissions", err)
	}
	byTest := make(map[uint]*models.Submission, len(submissions))
	for _, sub := range submissions {
		byTest[sub.TestID] = sub
	}

	names, err := s.directory.ResolveNames(ctx, subjectIDs, examTypeIDs)
	if err != nil {
		return nil, err
	}
	className := models.UnknownClass
	if class, classErr := s.directory.ResolveClass(ctx, *student.ClassID); classErr == nil {
		className = class.Name
	}

	available := make([]AvailableTest, 0, len(tests))
	for _, t := range tests {
		sub := byTest[t.ID]
		item := AvailableTest{
			TestHeader: toTestHeader(t, className, names),
			Status:     sub.Status(),
		}
		if sub != nil {
			id := sub.ID
			item.SubmissionID = &id
			if sub.IsGraded {
				percentage := models.Percentage(sub.TotalMarksObtained, sub.SnapshotTotalMarks(t.TotalMarks()))
				item.Percentage = &percentage
			}
		}
		available = append(available, item)
	}
	return available, nil
}
