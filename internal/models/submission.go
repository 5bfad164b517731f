package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

type SubmissionStatus string

const (
	SubmissionNotStarted SubmissionStatus = "not_started"
	SubmissionPending    SubmissionStatus = "pending"
	SubmissionGraded     SubmissionStatus = "graded"
)

// Submission is one student's single attempt at a test. The pair
// (test_id, student_id) is unique at the storage layer.
type Submission struct {
	ID                 uint       `json:"id" gorm:"primaryKey"`
	TestID             uint       `json:"test_id" gorm:"not null;uniqueIndex:idx_submissions_test_student"`
	StudentID          string     `json:"student_id" gorm:"not null;size:255;uniqueIndex:idx_submissions_test_student;index"`
	SubmittedAt        time.Time  `json:"submitted_at" gorm:"not null"`
	TimeTakenSeconds   int        `json:"time_taken_seconds"`
	IsGraded           bool       `json:"is_graded" gorm:"default:false;index"`
	TotalMarksObtained int        `json:"total_marks_obtained" gorm:"default:0"`
	GradedAt           *time.Time `json:"graded_at"`
	GradedBy           *string    `json:"graded_by" gorm:"size:255"`

	// Snapshot freezes the test facts (title, total marks, question count)
	// as they stood when the student submitted.
	Snapshot datatypes.JSONMap `json:"snapshot,omitempty" gorm:"type:jsonb;not null;default:'{}'"`

	Answers []Answer `json:"answers,omitempty" gorm:"foreignKey:SubmissionID;constraint:OnDelete:CASCADE"`
}

// SnapshotTotalMarks returns the total marks frozen at submit time, or
// current when the snapshot does not carry one.
func (s *Submission) SnapshotTotalMarks(current int) int {
	switch v := s.Snapshot["total_marks"].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n)
		}
	}
	return current
}

type Answer struct {
	ID                  uint    `json:"id" gorm:"primaryKey"`
	SubmissionID        uint    `json:"submission_id" gorm:"not null;uniqueIndex:idx_answers_submission_question"`
	QuestionID          uint    `json:"question_id" gorm:"not null;uniqueIndex:idx_answers_submission_question;index"`
	SelectedOptionIndex *int    `json:"selected_option_index"`
	FreeTextAnswer      *string `json:"free_text_answer" gorm:"type:text"`
	MarksAwarded        int     `json:"marks_awarded" gorm:"default:0"`

	Question *Question `json:"-" gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE"`
}

func (Submission) TableName() string { return "submissions" }
func (Answer) TableName() string     { return "answers" }

// Status derives the lifecycle state of a possibly missing submission.
func (s *Submission) Status() SubmissionStatus {
	switch {
	case s == nil:
		return SubmissionNotStarted
	case s.IsGraded:
		return SubmissionGraded
	default:
		return SubmissionPending
	}
}

// SumAwarded totals marksAwarded over the loaded answers.
func (s *Submission) SumAwarded() int {
	total := 0
	for _, a := range s.Answers {
		total += a.MarksAwarded
	}
	return total
}
