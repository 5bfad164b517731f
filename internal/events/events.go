package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents the kinds of domain events the service emits
type EventType string

const (
	EventTestPublished      EventType = "test.published"
	EventSubmissionReceived EventType = "submission.received"
	EventSubmissionGraded   EventType = "submission.graded"
)

const (
	eventSource  = "school-assessment-service"
	eventVersion = "1.0"
)

// Event is the envelope for every published event
type Event struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// NewEvent wraps data in an envelope with a fresh id and timestamp.
func NewEvent(eventType EventType, data interface{}) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Source:    eventSource,
		Version:   eventVersion,
		Data:      data,
	}
}

type TestPublishedEvent struct {
	TestID    uint       `json:"test_id"`
	Title     string     `json:"title"`
	ClassID   uint       `json:"class_id"`
	TeacherID string     `json:"teacher_id"`
	DueDate   *time.Time `json:"due_date,omitempty"`
}

type SubmissionReceivedEvent struct {
	SubmissionID uint      `json:"submission_id"`
	TestID       uint      `json:"test_id"`
	TestTitle    string    `json:"test_title"`
	StudentID    string    `json:"student_id"`
	TeacherID    string    `json:"teacher_id"`
	SubmittedAt  time.Time `json:"submitted_at"`
}

type SubmissionGradedEvent struct {
	SubmissionID       uint      `json:"submission_id"`
	TestID             uint      `json:"test_id"`
	StudentID          string    `json:"student_id"`
	TotalMarksObtained int       `json:"total_marks_obtained"`
	TotalMarks         int       `json:"total_marks"`
	Percentage         int       `json:"percentage"`
	GradedAt           time.Time `json:"graded_at"`
}

func (e TestPublishedEvent) ScopeTestID() uint      { return e.TestID }
func (e SubmissionReceivedEvent) ScopeTestID() uint { return e.TestID }
func (e SubmissionGradedEvent) ScopeTestID() uint   { return e.TestID }
