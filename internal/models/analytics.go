package models

import (
	"math"
	"time"
)

// WeakAreaThreshold is the score below which a breakdown entry counts as weak.
const WeakAreaThreshold = 60

// WeakAreaLimit caps how many weak entries are surfaced per category.
const WeakAreaLimit = 3

// Percentage returns round(obtained/total*100), or 0 when total is not positive.
func Percentage(obtained, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(obtained) / float64(total) * 100))
}

// GradedResult is one graded submission joined with the test facts
// aggregation needs.
type GradedResult struct {
	SubmissionID   uint      `json:"submission_id"`
	TestID         uint      `json:"test_id"`
	StudentID      string    `json:"student_id"`
	GradeSubjectID uint      `json:"grade_subject_id"`
	ExamTypeID     uint      `json:"exam_type_id"`
	SubmittedAt    time.Time `json:"submitted_at"`
	MarksObtained  int       `json:"marks_obtained"`
	TotalMarks     int       `json:"total_marks"`
}

// AnswerMark is one graded answer with the chapter/topic of its question.
type AnswerMark struct {
	SubmissionID uint   `json:"submission_id"`
	QuestionID   uint   `json:"question_id"`
	Chapter      string `json:"chapter"`
	Topic        string `json:"topic"`
	MarksAwarded int    `json:"marks_awarded"`
	MaxMarks     int    `json:"max_marks"`
}

type SubjectScore struct {
	Subject       string `json:"subject"`
	Percentage    int    `json:"percentage"`
	MarksObtained int    `json:"marks_obtained"`
	TotalMarks    int    `json:"total_marks"`
	TestCount     int    `json:"test_count"`
}

// TrendPoint carries one exam type and, per subject present in it, the
// subject percentage. Absent subjects are gaps, not zeros.
type TrendPoint struct {
	ExamType string         `json:"exam_type"`
	Subjects map[string]int `json:"subjects"`
}

type BreakdownEntry struct {
	Name           string `json:"name"`
	AvgScore       int    `json:"avg_score"`
	TotalQuestions int    `json:"total_questions"`
	MarksAwarded   int    `json:"marks_awarded"`
	MarksMax       int    `json:"marks_max"`
	Weak           bool   `json:"weak"`
}

type WeakAreas struct {
	Chapters []BreakdownEntry `json:"chapters"`
	Topics   []BreakdownEntry `json:"topics"`
}

type StudentPerformance struct {
	StudentID         string           `json:"student_id"`
	GradedTests       int              `json:"graded_tests"`
	PendingTests      int              `json:"pending_tests"`
	OverallPercentage int              `json:"overall_percentage"`
	Subjects          []SubjectScore   `json:"subjects"`
	Trend             []TrendPoint     `json:"trend"`
	Chapters          []BreakdownEntry `json:"chapters"`
	Topics            []BreakdownEntry `json:"topics"`
	WeakAreas         WeakAreas        `json:"weak_areas"`
	GeneratedAt       time.Time        `json:"generated_at"`
}

type StudentSummary struct {
	StudentID         string         `json:"student_id"`
	GradedTests       int            `json:"graded_tests"`
	OverallPercentage int            `json:"overall_percentage"`
	Subjects          []SubjectScore `json:"subjects"`
}

type ClassPerformance struct {
	Class             ClassRef         `json:"class"`
	OverallPercentage int              `json:"overall_percentage"`
	Subjects          []SubjectScore   `json:"subjects"`
	Students          []StudentSummary `json:"students"`
	Chapters          []BreakdownEntry `json:"chapters"`
	Topics            []BreakdownEntry `json:"topics"`
	WeakAreas         WeakAreas        `json:"weak_areas"`
	GeneratedAt       time.Time        `json:"generated_at"`
}
