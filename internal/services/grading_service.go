package services

import (
	"context"
	"fmt"
	"time"

	"github.com/SAP-F-2025/school-assessment-service/internal/events"
	"github.com/SAP-F-2025/school-assessment-service/internal/models"
	"github.com/SAP-F-2025/school-assessment-service/internal/repositories"
	"github.com/SAP-F-2025/school-assessment-service/internal/validator"
)

type gradingService struct {
	repo      repositories.Repository
	directory DirectoryService
	validator *validator.Validator
	publisher events.EventPublisher
	log       *ServiceLogger
	now       func() time.Time
}

func NewGradingService(
	repo repositories.Repository,
	directory DirectoryService,
	validator *validator.Validator,
	publisher events.EventPublisher,
	log *ServiceLogger,
) GradingService {
	return &gradingService{
		repo:      repo,
		directory: directory,
		validator: validator,
		publisher: publisher,
		log:       log,
		now:       time.Now,
	}
}

// loadForGrading resolves a submission and its test and checks the caller
// owns the test. Publication state does not matter here.
func (s *gradingService) loadForGrading(ctx context.Context, repo repositories.Repository, submissionID uint, teacher *models.Principal, action string) (*models.Submission, *models.Test, error) {
	if err := requireTeacher(teacher, submissionID, "submission", action); err != nil {
		return nil, nil, err
	}

	submission, err := repo.Submission().GetWithAnswers(ctx, submissionID)
	if err != nil {
		return nil, nil, mapRepoError("load submission", err, ErrSubmissionNotFound)
	}
	test, err := repo.Test().GetWithQuestions(ctx, submission.TestID)
	if err != nil {
		return nil, nil, mapRepoError("load test", err, ErrTestNotFound)
	}
	if err := checkOwner(test, teacher, action); err != nil {
		return nil, nil, err
	}
	return submission, test, nil
}

func checkMarks(test *models.Test, questionID uint, marks int) error {
	question, ok := test.QuestionByID()[questionID]
	if !ok {
		return fmt.Errorf("%w: question %d", ErrQuestionNotInTest, questionID)
	}
	if marks < 0 || marks > question.Marks {
		return fmt.Errorf("%w: %d not in [0, %d] for question %d", ErrMarksOutOfRange, marks, question.Marks, questionID)
	}
	return nil
}

// GradeAnswer stores marks for one answer. On a submission that is already
// graded the total is recomputed in the same transaction, so readers never
// see answer marks that disagree with the finalized total.
func (s *gradingService) GradeAnswer(ctx context.Context, submissionID, questionID uint, marks int, teacher *models.Principal) (err error) {
	op := s.log.WithOperation(ctx, "grade_answer", principalID(teacher))
	defer func() { op.LogResult(submissionID, "submission", err) }()

	submission, test, err := s.loadForGrading(ctx, s.repo, submissionID, teacher, "grade")
	if err != nil {
		return err
	}
	if err = checkMarks(test, questionID, marks); err != nil {
		return err
	}
	if submission.IsGraded {
		_, err = s.gradeAndFinalize(ctx, submissionID, []models.QuestionGrade{{QuestionID: questionID, Marks: marks}}, teacher)
		return err
	}
	if err = s.repo.Submission().UpsertAnswerMarks(ctx, submissionID, questionID, marks); err != nil {
		return newPersistenceError("grade answer", err)
	}
	return nil
}

// FinalizeGrading recomputes the total from the stored answer marks and
// marks the submission graded. Running it again recomputes the same total.
func (s *gradingService) FinalizeGrading(ctx context.Context, submissionID uint, teacher *models.Principal) (summary *SubmissionSummary, err error) {
	op := s.log.WithOperation(ctx, "finalize_grading", principalID(teacher))
	defer func() { op.LogResult(submissionID, "submission", err) }()

	return s.gradeAndFinalize(ctx, submissionID, nil, teacher)
}

// GradeSubmission applies every grade and finalizes in one transaction.
// All grades are checked before any is written.
func (s *gradingService) GradeSubmission(ctx context.Context, submissionID uint, req *models.GradeSubmissionRequest, teacher *models.Principal) (summary *SubmissionSummary, err error) {
	op := s.log.WithOperation(ctx, "grade_submission", principalID(teacher))
	defer func() { op.LogResult(submissionID, "submission", err) }()

	if req == nil {
		return nil, NewValidationError("body", "is required", nil)
	}
	if err = s.validator.ValidateStruct(req); err != nil {
		return nil, err
	}
	return s.gradeAndFinalize(ctx, submissionID, req.Grades, teacher)
}

func (s *gradingService) gradeAndFinalize(ctx context.Context, submissionID uint, grades []models.QuestionGrade, teacher *models.Principal) (*SubmissionSummary, error) {
	var (
		submission *models.Submission
		test       *models.Test
	)

	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		var err error
		submission, test, err = s.loadForGrading(ctx, tx, submissionID, teacher, "grade")
		if err != nil {
			return err
		}

		for _, g := range grades {
			if err := checkMarks(test, g.QuestionID, g.Marks); err != nil {
				return err
			}
		}
		for _, g := range grades {
			if err := tx.Submission().UpsertAnswerMarks(ctx, submissionID, g.QuestionID, g.Marks); err != nil {
				return newPersistenceError("grade answer", err)
			}
		}

		total, err := tx.Submission().SumAwarded(ctx, submissionID)
		if err != nil {
			return newPersistenceError("sum awarded marks", err)
		}
		gradedAt := s.now().UTC()
		if err := tx.Submission().MarkGraded(ctx, submissionID, total, teacher.ID, gradedAt); err != nil {
			return mapRepoError("mark graded", err, ErrSubmissionNotFound)
		}

		gradedBy := teacher.ID
		submission.IsGraded = true
		submission.TotalMarksObtained = total
		submission.GradedAt = &gradedAt
		submission.GradedBy = &gradedBy
		return nil
	})
	if err != nil {
		return nil, err
	}

	summary := toSubmissionSummary(submission, test.TotalMarks())
	publish(ctx, s.publisher, s.log, events.NewEvent(events.EventSubmissionGraded, events.SubmissionGradedEvent{
		SubmissionID:       submission.ID,
		TestID:             test.ID,
		StudentID:          submission.StudentID,
		TotalMarksObtained: summary.TotalMarksObtained,
		TotalMarks:         summary.TotalMarks,
		Percentage:         summary.Percentage,
		GradedAt:           *submission.GradedAt,
	}), submission.ID)

	return &summary, nil
}

func (s *gradingService) ListSubmissions(ctx context.Context, testID uint, teacher *models.Principal) ([]SubmissionSummary, error) {
	if err := requireTeacher(teacher, testID, "test", "list submissions"); err != nil {
		return nil, err
	}
	test, err := s.repo.Test().GetWithQuestions(ctx, testID)
	if err != nil {
		return nil, mapRepoError("load test", err, ErrTestNotFound)
	}
	if err := checkOwner(test, teacher, "list submissions"); err != nil {
		return nil, err
	}

	submissions, err := s.repo.Submission().ListByTest(ctx, testID)
	if err != nil {
		return nil, newPersistenceError("list submissions", err)
	}

	total := test.TotalMarks()
	summaries := make([]SubmissionSummary, 0, len(submissions))
	for _, sub := range submissions {
		summaries = append(summaries, toSubmissionSummary(sub, total))
	}
	return summaries, nil
}

// GetSubmissionForGrading pairs every question of the test with the
// student's answer, if any. Questions without an answer row show up
// unanswered at zero marks.
func (s *gradingService) GetSubmissionForGrading(ctx context.Context, submissionID uint, teacher *models.Principal) (*GradingView, error) {
	submission, test, err := s.loadForGrading(ctx, s.repo, submissionID, teacher, "read")
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

	byQuestion := make(map[uint]*models.Answer, len(submission.Answers))
	for i := range submission.Answers {
		byQuestion[submission.Answers[i].QuestionID] = &submission.Answers[i]
	}

	view := &GradingView{
		Submission: toSubmissionSummary(submission, test.TotalMarks()),
		Test:       toTestHeader(test, className, names),
		Answers:    make([]GradingAnswerView, 0, len(test.Questions)),
	}
	for i := range test.Questions {
		q := &test.Questions[i]
		item := GradingAnswerView{TeacherQuestionView: toTeacherQuestionView(q)}
		if a, ok := byQuestion[q.ID]; ok {
			item.Answered = a.SelectedOptionIndex != nil || a.FreeTextAnswer != nil
			item.SelectedOptionIndex = a.SelectedOptionIndex
			item.FreeTextAnswer = a.FreeTextAnswer
			item.MarksAwarded = a.MarksAwarded
		}
		view.Answers = append(view.Answers, item)
	}
	return view, nil
}
