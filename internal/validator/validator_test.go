package validator

import (
	"testing"

	"github.com/SAP-F-2025/school-assessment-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func validDraft() *models.TestDraft {
	return &models.TestDraft{
		Title:           "Algebra quiz",
		DurationMinutes: 30,
		ClassID:         1,
		GradeSubjectID:  2,
		ExamTypeID:      3,
		Questions: []models.QuestionDraft{
			{
				Text:               "2+2?",
				Type:               models.QuestionMCQ,
				Marks:              5,
				Chapter:            "Algebra",
				Topic:              "Addition",
				Options:            []string{"3", "4"},
				CorrectOptionIndex: intPtr(1),
			},
			{
				Text:    "Explain commutativity",
				Type:    models.QuestionEssay,
				Marks:   10,
				Chapter: "Algebra",
				Topic:   "Properties",
			},
		},
	}
}

func fields(err error) []string {
	var out []string
	if errs, ok := err.(ValidationErrors); ok {
		for _, e := range errs {
			out = append(out, e.Field)
		}
	}
	return out
}

func TestValidateTestDraft_Valid(t *testing.T) {
	assert.NoError(t, New().ValidateTestDraft(validDraft()))
}

func TestValidateTestDraft_StructRules(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.TestDraft)
		field  string
	}{
		{"blank title", func(s *models.TestDraft) { s.Title = "   " }, "TestDraft.title"},
		{"zero duration", func(s *models.TestDraft) { s.DurationMinutes = 0 }, "TestDraft.duration_minutes"},
		{"missing class", func(s *models.TestDraft) { s.ClassID = 0 }, "TestDraft.class_id"},
		{"no questions", func(s *models.TestDraft) { s.Questions = nil }, "TestDraft.questions"},
		{"zero marks", func(s *models.TestDraft) { s.Questions[0].Marks = 0 }, "TestDraft.questions[0].marks"},
		{"blank chapter", func(s *models.TestDraft) { s.Questions[1].Chapter = "" }, "TestDraft.questions[1].chapter"},
		{"blank topic", func(s *models.TestDraft) { s.Questions[1].Topic = " " }, "TestDraft.questions[1].topic"},
		{"unknown type", func(s *models.TestDraft) { s.Questions[1].Type = "TrueFalse" }, "TestDraft.questions[1].question_type"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			draft := validDraft()
			tc.mutate(draft)

			err := New().ValidateTestDraft(draft)
			require.Error(t, err)
			assert.Contains(t, fields(err), tc.field)
		})
	}
}

func TestValidateTestDraft_MCQRules(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.QuestionDraft)
		field  string
	}{
		{"one option", func(q *models.QuestionDraft) { q.Options = []string{"4"}; q.CorrectOptionIndex = intPtr(0) }, "questions[0].options"},
		{"blank options do not count", func(q *models.QuestionDraft) { q.Options = []string{"4", " ", ""} }, "questions[0].options"},
		{"missing correct index", func(q *models.QuestionDraft) { q.CorrectOptionIndex = nil }, "questions[0].correct_option_index"},
		{"correct index out of range", func(q *models.QuestionDraft) { q.CorrectOptionIndex = intPtr(2) }, "questions[0].correct_option_index"},
		{"correct index on blank option", func(q *models.QuestionDraft) {
			q.Options = []string{"3", "", "4"}
			q.CorrectOptionIndex = intPtr(1)
		}, "questions[0].correct_option_index"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			draft := validDraft()
			tc.mutate(&draft.Questions[0])

			err := New().ValidateTestDraft(draft)
			require.Error(t, err)
			assert.Contains(t, fields(err), tc.field)
		})
	}
}

func TestValidateTestDraft_FreeTextRejectsOptions(t *testing.T) {
	draft := validDraft()
	draft.Questions[1].Options = []string{"a", "b"}
	draft.Questions[1].CorrectOptionIndex = intPtr(0)

	err := New().ValidateTestDraft(draft)
	require.Error(t, err)
	assert.ElementsMatch(t, []string{"questions[1].options", "questions[1].correct_option_index"}, fields(err))
}

func TestValidateTestDraft_DuplicateKeys(t *testing.T) {
	draft := validDraft()
	draft.Questions[0].Key = "q-1"
	draft.Questions[1].Key = "q-1"

	err := New().ValidateTestDraft(draft)
	require.Error(t, err)
	assert.Equal(t, []string{"questions[1].key"}, fields(err))
}

func TestDenseIndex(t *testing.T) {
	options := []string{"a", "", "c", " ", "e"}

	idx, ok := DenseIndex(options, 4)
	assert.True(t, ok)
	assert.Equal(t, 2, idx)

	_, ok = DenseIndex(options, 3)
	assert.False(t, ok)

	_, ok = DenseIndex(options, -1)
	assert.False(t, ok)

	assert.Equal(t, []string{"a", "c", "e"}, NonEmptyOptions(options))
}
