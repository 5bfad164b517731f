package models

import (
	"time"
)

type QuestionType string

const (
	QuestionMCQ             QuestionType = "MCQ"
	QuestionEssay           QuestionType = "Essay"
	QuestionShortAnswer     QuestionType = "ShortAnswer"
	QuestionVeryShortAnswer QuestionType = "VeryShortAnswer"
)

func (t QuestionType) IsMCQ() bool {
	return t == QuestionMCQ
}

func (t QuestionType) Valid() bool {
	switch t {
	case QuestionMCQ, QuestionEssay, QuestionShortAnswer, QuestionVeryShortAnswer:
		return true
	}
	return false
}

type Test struct {
	ID              uint       `json:"id" gorm:"primaryKey"`
	Title           string     `json:"title" gorm:"not null;size:200"`
	Description     *string    `json:"description" gorm:"type:text"`
	DurationMinutes int        `json:"duration_minutes" gorm:"not null"`
	IsPublished     bool       `json:"is_published" gorm:"default:false;index"`
	ClassID         uint       `json:"class_id" gorm:"not null;index"`
	GradeSubjectID  uint       `json:"grade_subject_id" gorm:"not null;index"`
	ExamTypeID      uint       `json:"exam_type_id" gorm:"not null;index"`
	TeacherID       string     `json:"teacher_id" gorm:"not null;size:255;index"`
	DueDate         *time.Time `json:"due_date"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`

	Questions   []Question   `json:"questions,omitempty" gorm:"foreignKey:TestID;constraint:OnDelete:CASCADE"`
	Submissions []Submission `json:"-" gorm:"foreignKey:TestID;constraint:OnDelete:CASCADE"`
}

// Question belongs to exactly one test. Key is a stable identity that
// survives edits; ID is the storage row id referenced by answers.
type Question struct {
	ID                 uint         `json:"id" gorm:"primaryKey"`
	TestID             uint         `json:"test_id" gorm:"not null;uniqueIndex:idx_questions_test_key;index"`
	Key                string       `json:"key" gorm:"not null;size:36;uniqueIndex:idx_questions_test_key"`
	Position           int          `json:"position" gorm:"not null"`
	Text               string       `json:"text" gorm:"type:text;not null"`
	Type               QuestionType `json:"question_type" gorm:"column:question_type;not null;size:20"`
	Marks              int          `json:"marks" gorm:"not null"`
	Chapter            string       `json:"chapter" gorm:"not null;size:200;index"`
	Topic              string       `json:"topic" gorm:"not null;size:200"`
	CorrectOptionIndex *int         `json:"correct_option_index"`
	ExpectedAnswerText *string      `json:"expected_answer_text" gorm:"type:text"`

	Options []Option `json:"options,omitempty" gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE"`
}

type Option struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	QuestionID uint   `json:"question_id" gorm:"not null;uniqueIndex:idx_options_question_idx"`
	Index      int    `json:"index" gorm:"column:idx;not null;uniqueIndex:idx_options_question_idx"`
	Text       string `json:"text" gorm:"type:text;not null"`
}

func (Test) TableName() string     { return "tests" }
func (Question) TableName() string { return "questions" }
func (Option) TableName() string   { return "options" }

// TotalMarks is the sum of the marks of every question.
func (t *Test) TotalMarks() int {
	total := 0
	for _, q := range t.Questions {
		total += q.Marks
	}
	return total
}

// QuestionByID indexes the loaded questions by row id.
func (t *Test) QuestionByID() map[uint]*Question {
	idx := make(map[uint]*Question, len(t.Questions))
	for i := range t.Questions {
		idx[t.Questions[i].ID] = &t.Questions[i]
	}
	return idx
}
