package services

import (
	"time"

	"github.com/SAP-F-2025/school-assessment-service/internal/models"
)

// ===== NAME LOOKUP =====

// NameLookup resolves ids to display names, falling back to the
// "Unknown X" sentinels for anything the directory did not return.
type NameLookup struct {
	Subjects  map[uint]string
	ExamTypes map[uint]string
}

func (n *NameLookup) Subject(gradeSubjectID uint) string {
	if n != nil {
		if name, ok := n.Subjects[gradeSubjectID]; ok {
			return name
		}
	}
	return models.UnknownSubject
}

func (n *NameLookup) ExamType(examTypeID uint) string {
	if n != nil {
		if name, ok := n.ExamTypes[examTypeID]; ok {
			return name
		}
	}
	return models.UnknownExamType
}

// ===== TEACHER VIEWS =====

type OptionView struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// TestHeader carries test metadata with resolved directory names.
type TestHeader struct {
	ID              uint       `json:"id"`
	Title           string     `json:"title"`
	Description     *string    `json:"description,omitempty"`
	DurationMinutes int        `json:"duration_minutes"`
	IsPublished     bool       `json:"is_published"`
	ClassID         uint       `json:"class_id"`
	ClassName       string     `json:"class_name"`
	GradeSubjectID  uint       `json:"grade_subject_id"`
	SubjectName     string     `json:"subject_name"`
	ExamTypeID      uint       `json:"exam_type_id"`
	ExamTypeName    string     `json:"exam_type_name"`
	DueDate         *time.Time `json:"due_date,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	TotalMarks      int        `json:"total_marks"`
	QuestionCount   int        `json:"question_count"`
}

// TeacherQuestionView exposes the answer key; only owners ever receive it.
type TeacherQuestionView struct {
	ID                 uint                `json:"id"`
	Key                string              `json:"key"`
	Position           int                 `json:"position"`
	Text               string              `json:"text"`
	Type               models.QuestionType `json:"question_type"`
	Marks              int                 `json:"marks"`
	Chapter            string              `json:"chapter"`
	Topic              string              `json:"topic"`
	Options            []OptionView        `json:"options,omitempty"`
	CorrectOptionIndex *int                `json:"correct_option_index,omitempty"`
	ExpectedAnswerText *string             `json:"expected_answer_text,omitempty"`
}

type TestView struct {
	TestHeader
	TeacherID string                `json:"teacher_id"`
	Questions []TeacherQuestionView `json:"questions"`
}

type TestSummary struct {
	TestHeader
	SubmissionCount int64 `json:"submission_count"`
}

type TestListResponse struct {
	Tests  []TestSummary `json:"tests"`
	Total  int64         `json:"total"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
}

// ===== STUDENT VIEWS =====

// StudentQuestionView has no answer key fields at all.
type StudentQuestionView struct {
	ID       uint                `json:"id"`
	Position int                 `json:"position"`
	Text     string              `json:"text"`
	Type     models.QuestionType `json:"question_type"`
	Marks    int                 `json:"marks"`
	Chapter  string              `json:"chapter"`
	Topic    string              `json:"topic"`
	Options  []OptionView        `json:"options,omitempty"`
}

type StudentAnswerView struct {
	QuestionID          uint    `json:"question_id"`
	SelectedOptionIndex *int    `json:"selected_option_index,omitempty"`
	FreeTextAnswer      *string `json:"free_text_answer,omitempty"`
	MarksAwarded        *int    `json:"marks_awarded,omitempty"`
}

// SubmissionView is what a student sees of their own submission. Marks
// stay hidden until the submission is graded.
type SubmissionView struct {
	ID                 uint                    `json:"id"`
	TestID             uint                    `json:"test_id"`
	Status             models.SubmissionStatus `json:"status"`
	SubmittedAt        time.Time               `json:"submitted_at"`
	TimeTakenSeconds   int                     `json:"time_taken_seconds"`
	TotalMarks         int                     `json:"total_marks"`
	TotalMarksObtained *int                    `json:"total_marks_obtained,omitempty"`
	Percentage         *int                    `json:"percentage,omitempty"`
	Answers            []StudentAnswerView     `json:"answers"`
}

type AttemptView struct {
	Test       TestHeader            `json:"test"`
	Questions  []StudentQuestionView `json:"questions"`
	Submission *SubmissionView       `json:"submission,omitempty"`
}

type AvailableTest struct {
	TestHeader
	Status       models.SubmissionStatus `json:"status"`
	SubmissionID *uint                   `json:"submission_id,omitempty"`
	Percentage   *int                    `json:"percentage,omitempty"`
}

// ===== GRADING VIEWS =====

type SubmissionSummary struct {
	ID                 uint                    `json:"id"`
	TestID             uint                    `json:"test_id"`
	StudentID          string                  `json:"student_id"`
	Status             models.SubmissionStatus `json:"status"`
	SubmittedAt        time.Time               `json:"submitted_at"`
	TimeTakenSeconds   int                     `json:"time_taken_seconds"`
	TotalMarksObtained int                     `json:"total_marks_obtained"`
	TotalMarks         int                     `json:"total_marks"`
	Percentage         int                     `json:"percentage"`
	GradedAt           *time.Time              `json:"graded_at,omitempty"`
}

type GradingAnswerView struct {
	TeacherQuestionView
	Answered            bool    `json:"answered"`
	SelectedOptionIndex *int    `json:"selected_option_index,omitempty"`
	FreeTextAnswer      *string `json:"free_text_answer,omitempty"`
	MarksAwarded        int     `json:"marks_awarded"`
}

type GradingView struct {
	Submission SubmissionSummary   `json:"submission"`
	Test       TestHeader          `json:"test"`
	Answers    []GradingAnswerView `json:"answers"`
}

// ===== EXPORT =====

type ExportFile struct {
	Filename    string
	ContentType string
	Content     []byte
}
