package models

import "time"

// TestDraft is the authoring payload for creating or replacing a test.
type TestDraft struct {
	Title           string          `json:"title" validate:"not_blank,max=200"`
	Description     *string         `json:"description" validate:"omitempty,max=2000"`
	DurationMinutes int             `json:"duration_minutes" validate:"min=1,max=600"`
	ClassID         uint            `json:"class_id" validate:"required"`
	GradeSubjectID  uint            `json:"grade_subject_id" validate:"required"`
	ExamTypeID      uint            `json:"exam_type_id" validate:"required"`
	DueDate         *time.Time      `json:"due_date"`
	Questions       []QuestionDraft `json:"questions" validate:"required,min=1,dive"`
}

// QuestionDraft describes one question. Key is optional on create; on update
// a key matching an existing question edits that question in place.
type QuestionDraft struct {
	Key                string       `json:"key" validate:"omitempty,max=36"`
	Text               string       `json:"text" validate:"not_blank"`
	Type               QuestionType `json:"question_type" validate:"question_type"`
	Marks              int          `json:"marks" validate:"min=1"`
	Chapter            string       `json:"chapter" validate:"not_blank,max=200"`
	Topic              string       `json:"topic" validate:"not_blank,max=200"`
	Options            []string     `json:"options"`
	CorrectOptionIndex *int         `json:"correct_option_index"`
	ExpectedAnswerText *string      `json:"expected_answer_text"`
}

// AnswerInput is one entry of a student's answer payload.
type AnswerInput struct {
	QuestionID          uint    `json:"question_id" validate:"required"`
	SelectedOptionIndex *int    `json:"selected_option_index"`
	FreeTextAnswer      *string `json:"free_text_answer"`
}

type SubmitRequest struct {
	Answers          []AnswerInput `json:"answers" validate:"dive"`
	TimeTakenSeconds int           `json:"time_taken_seconds" validate:"gte=0"`
}

type QuestionGrade struct {
	QuestionID uint `json:"question_id" validate:"required"`
	Marks      int  `json:"marks" validate:"gte=0"`
}

type GradeSubmissionRequest struct {
	Grades []QuestionGrade `json:"grades" validate:"required,min=1,dive"`
}

type TestFilters struct {
	ClassID     *uint `form:"class_id"`
	IsPublished *bool `form:"is_published"`
	Limit       int   `form:"limit"`
	Offset      int   `form:"offset"`
}
