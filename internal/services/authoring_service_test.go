package services

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/SAP-F-2025/school-assessment-service/internal/events"
	"github.com/SAP-F-2025/school-assessment-service/internal/models"
	"github.com/SAP-F-2025/school-assessment-service/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newAuthoring(repo *mockRepo, publisher events.EventPublisher) AuthoringService {
	directory := NewDirectoryService(repo, nil, 0, testLogger())
	return NewAuthoringService(repo, directory, validator.New(), publisher, testLogger())
}

func stubDirectory(repo *mockRepo) {
	repo.dir.On("GetClass", mock.Anything, uint(7)).Return(&models.Class{ID: 7, Name: "7A", GradeID: 9}, nil)
	repo.dir.On("SubjectsForGrade", mock.Anything, uint(9)).Return([]models.GradeSubjectRecord{subjectRecord(3, 9, "Mathematics")}, nil)
	repo.dir.On("GradeSubjectsByIDs", mock.Anything, []uint{3}).Return([]models.GradeSubjectRecord{subjectRecord(3, 9, "Mathematics")}, nil)
	repo.dir.On("ExamTypes", mock.Anything).Return([]models.ExamType{{ID: 2, Name: "Midterm"}}, nil)
}

func validDraft() *models.TestDraft {
	return &models.TestDraft{
		Title:           "Algebra quiz",
		DurationMinutes: 30,
		ClassID:         7,
		GradeSubjectID:  3,
		ExamTypeID:      2,
		Questions: []models.QuestionDraft{
			{
				Text:               "2x = 4, x = ?",
				Type:               models.QuestionMCQ,
				Marks:              5,
				Chapter:            "Algebra",
				Topic:              "Linear equations",
				Options:            []string{"1", "", "2"},
				CorrectOptionIndex: intPtr(2),
			},
			{
				Text:               "Explain substitution",
				Type:               models.QuestionEssay,
				Marks:              10,
				Chapter:            "Algebra",
				Topic:              "Systems",
				ExpectedAnswerText: strPtr("  Replace one variable  "),
			},
		},
	}
}

func TestAuthoringService_CreateTest(t *testing.T) {
	repo := newMockRepo()
	stubDirectory(repo)

	var created *models.Test
	repo.tests.On("Create", mock.Anything, mock.AnythingOfType("*models.Test")).
		Run(func(args mock.Arguments) {
			created = args.Get(1).(*models.Test)
			created.ID = 1
			for i := range created.Questions {
				created.Questions[i].ID = uint(100 + i)
			}
		}).Return(nil)
	repo.tests.On("GetWithQuestions", mock.Anything, uint(1)).
		Return(func() *models.Test { return created }, nil)

	view, err := newAuthoring(repo, nil).CreateTest(context.Background(), validDraft(), teacherPrincipal("teacher-1"))
	require.NoError(t, err)

	assert.Equal(t, 1, repo.txCount)
	assert.Equal(t, "teacher-1", created.TeacherID)
	assert.False(t, created.IsPublished)
	require.Len(t, created.Questions, 2)

	mcq := created.Questions[0]
	require.Len(t, mcq.Options, 2, "blank options are dropped")
	assert.Equal(t, "2", mcq.Options[1].Text)
	assert.Equal(t, 1, *mcq.CorrectOptionIndex, "correct index follows the dense option order")
	assert.NotEmpty(t, mcq.Key)

	essay := created.Questions[1]
	assert.Empty(t, essay.Options)
	assert.Nil(t, essay.CorrectOptionIndex)
	assert.Equal(t, "Replace one variable", *essay.ExpectedAnswerText)
	assert.NotEqual(t, mcq.Key, essay.Key)

	assert.Equal(t, 15, view.TotalMarks)
	assert.Equal(t, 2, view.QuestionCount)
	assert.Equal(t, "7A", view.ClassName)
	assert.Equal(t, "Mathematics", view.SubjectName)
	assert.Equal(t, "Midterm", view.ExamTypeName)
	assert.Equal(t, 1, *view.Questions[0].CorrectOptionIndex)
}

func TestAuthoringService_CreateTest_Validation(t *testing.T) {
	t.Run("blank title", func(t *testing.T) {
		repo := newMockRepo()
		draft := validDraft()
		draft.Title = "   "

		_, err := newAuthoring(repo, nil).CreateTest(context.Background(), draft, teacherPrincipal("teacher-1"))
		assert.Equal(t, KindValidation, KindOf(err))
		assert.Zero(t, repo.txCount)
	})

	t.Run("mcq with one option", func(t *testing.T) {
		repo := newMockRepo()
		draft := validDraft()
		draft.Questions[0].Options = []string{"only", "  "}
		draft.Questions[0].CorrectOptionIndex = intPtr(0)

		_, err := newAuthoring(repo, nil).CreateTest(context.Background(), draft, teacherPrincipal("teacher-1"))
		var errs ValidationErrors
		require.ErrorAs(t, err, &errs)
		assert.Equal(t, "questions[0].options", errs[0].Field)
	})

	t.Run("unresolved references", func(t *testing.T) {
		repo := newMockRepo()
		repo.dir.On("GetClass", mock.Anything, uint(7)).Return(nil, gorm.ErrRecordNotFound)
		repo.dir.On("ExamTypes", mock.Anything).Return([]models.ExamType{{ID: 5, Name: "Final"}}, nil)

		_, err := newAuthoring(repo, nil).CreateTest(context.Background(), validDraft(), teacherPrincipal("teacher-1"))
		var errs ValidationErrors
		require.ErrorAs(t, err, &errs)
		fields := []string{}
		for _, e := range errs {
			fields = append(fields, e.Field)
		}
		assert.ElementsMatch(t, []string{"class_id", "exam_type_id"}, fields)
		assert.Zero(t, repo.txCount)
	})

	t.Run("students cannot author", func(t *testing.T) {
		repo := newMockRepo()
		_, err := newAuthoring(repo, nil).CreateTest(context.Background(), validDraft(), studentPrincipal("student-1", 7))
		assert.Equal(t, KindAuthorization, KindOf(err))
	})
}

func TestAuthoringService_UpdateTest_WithSubmissions(t *testing.T) {
	existing := mcqTest()

	t.Run("removing a question is refused", func(t *testing.T) {
		repo := newMockRepo()
		stubDirectory(repo)
		repo.tests.On("GetForUpdate", mock.Anything, uint(1)).Return(mcqTest(), nil)
		repo.tests.On("GetWithQuestions", mock.Anything, uint(1)).Return(mcqTest(), nil)
		repo.subs.On("ExistsForTest", mock.Anything, uint(1)).Return(true, nil)

		draft := draftFromTest(existing)
		draft.Questions = draft.Questions[:2]

		_, err := newAuthoring(repo, nil).UpdateTest(context.Background(), 1, draft, teacherPrincipal("teacher-1"))
		assert.ErrorIs(t, err, ErrTestHasSubmissions)
		assert.Equal(t, KindConflict, KindOf(err))
		repo.questions.AssertNotCalled(t, "DeleteByIDs", mock.Anything, mock.Anything, mock.Anything)
		repo.tests.AssertNotCalled(t, "UpdateFields", mock.Anything, mock.Anything)
	})

	t.Run("editing in place keeps question ids", func(t *testing.T) {
		repo := newMockRepo()
		stubDirectory(repo)
		repo.tests.On("GetForUpdate", mock.Anything, uint(1)).Return(mcqTest(), nil)
		repo.tests.On("GetWithQuestions", mock.Anything, uint(1)).Return(mcqTest(), nil)
		repo.subs.On("ExistsForTest", mock.Anything, uint(1)).Return(true, nil)
		repo.tests.On("UpdateFields", mock.Anything, mock.AnythingOfType("*models.Test")).Return(nil)
		repo.questions.On("DeleteByIDs", mock.Anything, uint(1), []uint(nil)).Return(nil)
		repo.questions.On("CreateBatch", mock.Anything, []*models.Question(nil)).Return(nil)
		repo.questions.On("ReplaceOptions", mock.Anything, mock.Anything, mock.Anything).Return(nil)

		var updatedIDs []uint
		repo.questions.On("UpdateFields", mock.Anything, mock.AnythingOfType("*models.Question")).
			Run(func(args mock.Arguments) {
				updatedIDs = append(updatedIDs, args.Get(1).(*models.Question).ID)
			}).Return(nil)

		draft := draftFromTest(existing)
		draft.Questions[0].Text = "Reworded question"
		draft.Questions[1].Topic = "Simultaneous equations"

		_, err := newAuthoring(repo, nil).UpdateTest(context.Background(), 1, draft, teacherPrincipal("teacher-1"))
		require.NoError(t, err)
		assert.Equal(t, []uint{101, 102, 103}, updatedIDs)
		repo.assertExpectations(t)
	})

	t.Run("only the owner may update", func(t *testing.T) {
		repo := newMockRepo()
		stubDirectory(repo)
		repo.tests.On("GetForUpdate", mock.Anything, uint(1)).Return(mcqTest(), nil)

		_, err := newAuthoring(repo, nil).UpdateTest(context.Background(), 1, draftFromTest(existing), teacherPrincipal("teacher-2"))
		assert.ErrorIs(t, err, ErrNotTestOwner)
		assert.Equal(t, KindAuthorization, KindOf(err))
	})
}

func draftFromTest(test *models.Test) *models.TestDraft {
	draft := &models.TestDraft{
		Title:           test.Title,
		DurationMinutes: test.DurationMinutes,
		ClassID:         test.ClassID,
		GradeSubjectID:  test.GradeSubjectID,
		ExamTypeID:      test.ExamTypeID,
	}
	for _, q := range test.Questions {
		qs := models.QuestionDraft{
			Key:                q.Key,
			Text:               q.Text,
			Type:               q.Type,
			Marks:              q.Marks,
			Chapter:            q.Chapter,
			Topic:              q.Topic,
			CorrectOptionIndex: q.CorrectOptionIndex,
		}
		for _, o := range q.Options {
			qs.Options = append(qs.Options, o.Text)
		}
		draft.Questions = append(draft.Questions, qs)
	}
	return draft
}

func TestPlanQuestionUpdate(t *testing.T) {
	existing := mcqTest().Questions

	tests := []struct {
		name    string
		locked  bool
		mutate  func(drafts []models.QuestionDraft) []models.QuestionDraft
		wantErr bool
		removed []uint
		added   int
	}{
		{
			name:    "unlocked removal",
			mutate:  func(s []models.QuestionDraft) []models.QuestionDraft { return s[1:] },
			removed: []uint{101},
		},
		{
			name:    "locked removal",
			locked:  true,
			mutate:  func(s []models.QuestionDraft) []models.QuestionDraft { return s[1:] },
			wantErr: true,
		},
		{
			name:   "locked type change",
			locked: true,
			mutate: func(s []models.QuestionDraft) []models.QuestionDraft {
				s[0].Type = models.QuestionEssay
				return s
			},
			wantErr: true,
		},
		{
			name:   "locked lowered marks",
			locked: true,
			mutate: func(s []models.QuestionDraft) []models.QuestionDraft {
				s[2].Marks = 4
				return s
			},
			wantErr: true,
		},
		{
			name:   "locked raised marks",
			locked: true,
			mutate: func(s []models.QuestionDraft) []models.QuestionDraft {
				s[2].Marks = 6
				return s
			},
			wantErr: true,
		},
		{
			name:   "locked swapped options",
			locked: true,
			mutate: func(s []models.QuestionDraft) []models.QuestionDraft {
				s[1].Options = []string{"wrong", "right"}
				return s
			},
			wantErr: true,
		},
		{
			name:   "locked dropped option",
			locked: true,
			mutate: func(s []models.QuestionDraft) []models.QuestionDraft {
				s[1].Options = []string{"right", ""}
				return s
			},
			wantErr: true,
		},
		{
			name:   "locked new question",
			locked: true,
			mutate: func(s []models.QuestionDraft) []models.QuestionDraft {
				extra := s[0]
				extra.Key = ""
				return append(s, extra)
			},
			wantErr: true,
		},
		{
			name:   "locked wording and answer key edit",
			locked: true,
			mutate: func(s []models.QuestionDraft) []models.QuestionDraft {
				s[0].Text = "Solve for x"
				s[0].CorrectOptionIndex = intPtr(1)
				s[1].Chapter = "Equations"
				return s
			},
		},
		{
			name: "unlocked raised marks and new question",
			mutate: func(s []models.QuestionDraft) []models.QuestionDraft {
				s[2].Marks = 6
				s[1].Options = []string{"wrong", "right"}
				extra := s[0]
				extra.Key = ""
				return append(s, extra)
			},
			added: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			drafts := tt.mutate(draftFromTest(mcqTest()).Questions)
			plan, err := planQuestionUpdate(existing, drafts, tt.locked)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrTestHasSubmissions)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.removed, plan.removed)
			assert.Len(t, plan.added, tt.added)
			for _, q := range plan.added {
				assert.NotEmpty(t, q.Key)
				assert.Zero(t, q.ID)
			}
		})
	}
}

func TestAuthoringService_SetPublished(t *testing.T) {
	repo := newMockRepo()
	test := mcqTest()
	test.IsPublished = false
	repo.tests.On("GetByID", mock.Anything, uint(1)).Return(test, nil)
	repo.tests.On("SetPublished", mock.Anything, uint(1), true).Return(nil)

	publisher := events.NewMockEventPublisher(slog.New(slog.NewTextHandler(io.Discard, nil)))
	err := newAuthoring(repo, publisher).SetPublished(context.Background(), 1, true, teacherPrincipal("teacher-1"))
	require.NoError(t, err)

	published := publisher.GetPublishedEvents()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventTestPublished, published[0].Type)

	err = newAuthoring(repo, publisher).SetPublished(context.Background(), 1, true, teacherPrincipal("teacher-2"))
	assert.Equal(t, KindAuthorization, KindOf(err))
}

func TestAuthoringService_DeleteTest_NotFound(t *testing.T) {
	repo := newMockRepo()
	repo.tests.On("GetByID", mock.Anything, uint(9)).Return(nil, gorm.ErrRecordNotFound)

	err := newAuthoring(repo, nil).DeleteTest(context.Background(), 9, teacherPrincipal("teacher-1"))
	assert.ErrorIs(t, err, ErrTestNotFound)
	assert.Equal(t, KindNotFound, KindOf(err))
}
