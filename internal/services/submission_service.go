package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/SAP-F-2025/school-assessment-service/internal/events"
	"github.com/SAP-F-2025/school-assessment-service/internal/models"
	"github.com/SAP-F-2025/school-assessment-service/internal/repositories"
	"github.com/SAP-F-2025/school-assessment-service/internal/validator"
	"gorm.io/datatypes"
)

type submissionService struct {
	repo      repositories.Repository
	validator *validator.Validator
	publisher events.EventPublisher
	log       *ServiceLogger
	now       func() time.Time
}

func NewSubmissionService(
	repo repositories.Repository,
	validator *validator.Validator,
	publisher events.EventPublisher,
	log *ServiceLogger,
) SubmissionService {
	return &submissionService{
		repo:      repo,
		validator: validator,
		publisher: publisher,
		log:       log,
		now:       time.Now,
	}
}

// Submit records the student's single submission. Every question of the
// test gets exactly one answer row, unanswered ones included, all at zero
// marks. Scoring is left entirely to grading.
func (s *submissionService) Submit(ctx context.Context, testID uint, req *models.SubmitRequest, student *models.Principal) (view *SubmissionView, err error) {
	var submissionID uint
	op := s.log.WithOperation(ctx, "submit", principalID(student))
	defer func() { op.LogResult(submissionID, "submission", err) }()

	if req == nil {
		return nil, NewValidationError("body", "is required", nil)
	}
	if err = s.validator.ValidateStruct(req); err != nil {
		return nil, err
	}

	test, err := authorizeAttempt(ctx, s.repo, testID, student, "submit")
	if err != nil {
		return nil, err
	}

	// Fast path only; the unique index on (test_id, student_id) is the guard.
	existing, err := s.repo.Submission().GetByTestAndStudent(ctx, testID, student.ID)
	if err != nil {
		return nil, newPersistenceError("check prior submission", err)
	}
	if existing != nil {
		return nil, ErrAlreadySubmitted
	}

	answers, err := buildAnswers(test, req.Answers)
	if err != nil {
		return nil, err
	}

	submission := &models.Submission{
		TestID:           testID,
		StudentID:        student.ID,
		SubmittedAt:      s.now().UTC(),
		TimeTakenSeconds: req.TimeTakenSeconds,
		Answers:          answers,
		Snapshot: datatypes.JSONMap{
			"test_title":     test.Title,
			"total_marks":    test.TotalMarks(),
			"question_count": len(test.Questions),
		},
	}

	if err = s.repo.Submission().Create(ctx, submission); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrAlreadySubmitted
		}
		return nil, newPersistenceError("create submission", err)
	}
	submissionID = submission.ID

	publish(ctx, s.publisher, s.log, events.NewEvent(events.EventSubmissionReceived, events.SubmissionReceivedEvent{
		SubmissionID: submission.ID,
		TestID:       test.ID,
		TestTitle:    test.Title,
		StudentID:    student.ID,
		TeacherID:    test.TeacherID,
		SubmittedAt:  submission.SubmittedAt,
	}), submission.ID)

	return toSubmissionView(submission, test.TotalMarks()), nil
}

// buildAnswers produces one answer per test question in question order.
// Inputs for unknown question ids are ignored; a later input for the same
// question replaces an earlier one.
func buildAnswers(test *models.Test, inputs []models.AnswerInput) ([]models.Answer, error) {
	byQuestion := make(map[uint]*models.AnswerInput, len(inputs))
	for i := range inputs {
		byQuestion[inputs[i].QuestionID] = &inputs[i]
	}

	var errs ValidationErrors
	answers := make([]models.Answer, 0, len(test.Questions))
	for i := range test.Questions {
		q := &test.Questions[i]
		answer := models.Answer{QuestionID: q.ID, MarksAwarded: 0}

		if in, ok := byQuestion[q.ID]; ok {
			if q.Type.IsMCQ() {
				if in.SelectedOptionIndex != nil {
					idx := *in.SelectedOptionIndex
					if idx < 0 || idx >= len(q.Options) {
						errs.Add(fmt.Sprintf("answers[question_id=%d].selected_option_index", q.ID), "is not an option of the question", idx)
					} else {
						answer.SelectedOptionIndex = &idx
					}
				}
			} else if in.FreeTextAnswer != nil {
				if text := strings.TrimSpace(*in.FreeTextAnswer); text != "" {
					answer.FreeTextAnswer = &text
				}
			}
		}

		answers = append(answers, answer)
	}

	if err := errs.OrNil(); err != nil {
		return nil, err
	}
	return answers, nil
}
