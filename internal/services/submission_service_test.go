package services

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/SAP-F-2025/school-assessment-service/internal/events"
	"github.com/SAP-F-2025/school-assessment-service/internal/models"
	"github.com/SAP-F-2025/school-assessment-service/internal/repositories"
	"github.com/SAP-F-2025/school-assessment-service/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newSubmission(repo *mockRepo, publisher events.EventPublisher) SubmissionService {
	return NewSubmissionService(repo, validator.New(), publisher, testLogger())
}

func newAttempt(repo *mockRepo) AttemptService {
	return NewAttemptService(repo, NewDirectoryService(repo, nil, 0, testLogger()), testLogger())
}

func TestSubmissionService_Submit_RecordsEveryQuestionUnscored(t *testing.T) {
	repo := newMockRepo()
	repo.tests.On("GetWithQuestions", mock.Anything, uint(1)).Return(mcqTest(), nil)
	repo.subs.On("GetByTestAndStudent", mock.Anything, uint(1), "student-1").Return(nil, nil)

	var stored *models.Submission
	repo.subs.On("Create", mock.Anything, mock.AnythingOfType("*models.Submission")).
		Run(func(args mock.Arguments) {
			stored = args.Get(1).(*models.Submission)
			stored.ID = 11
		}).Return(nil)

	publisher := events.NewMockEventPublisher(slog.New(slog.NewTextHandler(io.Discard, nil)))
	req := &models.SubmitRequest{
		TimeTakenSeconds: 600,
		Answers: []models.AnswerInput{
			{QuestionID: 101, SelectedOptionIndex: intPtr(0)},
			{QuestionID: 102, SelectedOptionIndex: intPtr(1)},
			{QuestionID: 999, SelectedOptionIndex: intPtr(0)},
		},
	}

	view, err := newSubmission(repo, publisher).Submit(context.Background(), 1, req, studentPrincipal("student-1", 7))
	require.NoError(t, err)

	require.Len(t, stored.Answers, 3, "one answer per question, unknown ids ignored")
	assert.Equal(t, 0, *stored.Answers[0].SelectedOptionIndex)
	assert.Equal(t, 1, *stored.Answers[1].SelectedOptionIndex)
	assert.Nil(t, stored.Answers[2].SelectedOptionIndex)
	for _, a := range stored.Answers {
		assert.Zero(t, a.MarksAwarded)
	}
	assert.False(t, stored.IsGraded)
	assert.Zero(t, stored.TotalMarksObtained)
	assert.Equal(t, 15, stored.Snapshot["total_marks"])

	assert.Equal(t, models.SubmissionPending, view.Status)
	assert.Nil(t, view.TotalMarksObtained, "marks stay hidden until graded")
	assert.Nil(t, view.Answers[0].MarksAwarded)

	published := publisher.GetPublishedEvents()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventSubmissionReceived, published[0].Type)
}

func TestSubmissionService_Submit_Duplicate(t *testing.T) {
	t.Run("existing row", func(t *testing.T) {
		repo := newMockRepo()
		repo.tests.On("GetWithQuestions", mock.Anything, uint(1)).Return(mcqTest(), nil)
		repo.subs.On("GetByTestAndStudent", mock.Anything, uint(1), "student-1").
			Return(&models.Submission{ID: 11, TestID: 1, StudentID: "student-1"}, nil)

		_, err := newSubmission(repo, nil).Submit(context.Background(), 1, &models.SubmitRequest{}, studentPrincipal("student-1", 7))
		assert.ErrorIs(t, err, ErrAlreadySubmitted)
		assert.Equal(t, KindConflict, KindOf(err))
		repo.subs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("concurrent insert loses on the unique index", func(t *testing.T) {
		repo := newMockRepo()
		repo.tests.On("GetWithQuestions", mock.Anything, uint(1)).Return(mcqTest(), nil)
		repo.subs.On("GetByTestAndStudent", mock.Anything, uint(1), "student-1").Return(nil, nil)
		repo.subs.On("Create", mock.Anything, mock.Anything).Return(repositories.ErrDuplicateKey)

		_, err := newSubmission(repo, nil).Submit(context.Background(), 1, &models.SubmitRequest{}, studentPrincipal("student-1", 7))
		assert.ErrorIs(t, err, ErrAlreadySubmitted)
		assert.Equal(t, KindConflict, KindOf(err))
	})
}

func TestSubmissionService_Submit_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		test     func() *models.Test
		student  *models.Principal
		req      *models.SubmitRequest
		wantKind ErrorKind
	}{
		{
			name:     "different class",
			test:     mcqTest,
			student:  studentPrincipal("student-1", 8),
			req:      &models.SubmitRequest{},
			wantKind: KindAuthorization,
		},
		{
			name: "unpublished test",
			test: func() *models.Test {
				t := mcqTest()
				t.IsPublished = false
				return t
			},
			student:  studentPrincipal("student-1", 7),
			req:      &models.SubmitRequest{},
			wantKind: KindNotFound,
		},
		{
			name:     "teacher cannot submit",
			test:     mcqTest,
			student:  teacherPrincipal("teacher-1"),
			req:      &models.SubmitRequest{},
			wantKind: KindAuthorization,
		},
		{
			name:     "negative time",
			test:     mcqTest,
			student:  studentPrincipal("student-1", 7),
			req:      &models.SubmitRequest{TimeTakenSeconds: -1},
			wantKind: KindValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMockRepo()
			repo.tests.On("GetWithQuestions", mock.Anything, uint(1)).Return(tt.test(), nil)

			_, err := newSubmission(repo, nil).Submit(context.Background(), 1, tt.req, tt.student)
			assert.Equal(t, tt.wantKind, KindOf(err))
			repo.subs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestSubmissionService_Submit_OptionOutOfRange(t *testing.T) {
	repo := newMockRepo()
	repo.tests.On("GetWithQuestions", mock.Anything, uint(1)).Return(mcqTest(), nil)
	repo.subs.On("GetByTestAndStudent", mock.Anything, uint(1), "student-1").Return(nil, nil)

	req := &models.SubmitRequest{Answers: []models.AnswerInput{{QuestionID: 101, SelectedOptionIndex: intPtr(5)}}}
	_, err := newSubmission(repo, nil).Submit(context.Background(), 1, req, studentPrincipal("student-1", 7))
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestAttemptService_GetAttempt_HidesAnswerKey(t *testing.T) {
	repo := newMockRepo()
	test := mcqTest()
	test.Questions = append(test.Questions, models.Question{
		ID: 104, TestID: 1, Key: "q-d", Position: 3, Text: "Explain", Type: models.QuestionEssay,
		Marks: 5, Chapter: "Algebra", Topic: "Proofs", ExpectedAnswerText: strPtr("model answer"),
	})
	repo.tests.On("GetWithQuestions", mock.Anything, uint(1)).Return(test, nil)
	repo.subs.On("GetByTestAndStudent", mock.Anything, uint(1), "student-1").Return(nil, nil)
	stubDirectory(repo)

	view, err := newAttempt(repo).GetAttempt(context.Background(), 1, studentPrincipal("student-1", 7))
	require.NoError(t, err)

	require.Len(t, view.Questions, 4)
	assert.Len(t, view.Questions[0].Options, 2)
	assert.Empty(t, view.Questions[3].Options)
	assert.Nil(t, view.Submission)
	assert.Equal(t, 20, view.Test.TotalMarks)

	payload, err := json.Marshal(view)
	require.NoError(t, err)
	assert.NotContains(t, string(payload), "correct_option_index")
	assert.NotContains(t, string(payload), "expected_answer_text")
	assert.NotContains(t, string(payload), "model answer")
}

func TestAttemptService_GetAttempt_NotEnrolled(t *testing.T) {
	repo := newMockRepo()
	repo.tests.On("GetWithQuestions", mock.Anything, uint(1)).Return(mcqTest(), nil)

	_, err := newAttempt(repo).GetAttempt(context.Background(), 1, studentPrincipal("student-1", 8))
	assert.ErrorIs(t, err, ErrNotEnrolled)
	assert.Equal(t, KindAuthorization, KindOf(err))
}

func TestAttemptService_ListAvailableTests(t *testing.T) {
	repo := newMockRepo()
	stubDirectory(repo)

	first := mcqTest()
	second := mcqTest()
	second.ID = 2
	third := mcqTest()
	third.ID = 3
	repo.tests.On("ListPublishedByClass", mock.Anything, uint(7)).Return([]*models.Test{first, second, third}, nil)
	repo.subs.On("ListByStudentForTests", mock.Anything, "student-1", []uint{1, 2, 3}).Return([]*models.Submission{
		{ID: 21, TestID: 1, StudentID: "student-1"},
		{ID: 22, TestID: 2, StudentID: "student-1", IsGraded: true, TotalMarksObtained: 5},
	}, nil)

	available, err := newAttempt(repo).ListAvailableTests(context.Background(), studentPrincipal("student-1", 7))
	require.NoError(t, err)
	require.Len(t, available, 3)

	assert.Equal(t, models.SubmissionPending, available[0].Status)
	assert.Nil(t, available[0].Percentage)
	assert.Equal(t, models.SubmissionGraded, available[1].Status)
	assert.Equal(t, 33, *available[1].Percentage)
	assert.Equal(t, models.SubmissionNotStarted, available[2].Status)
	assert.Nil(t, available[2].SubmissionID)
}
