package services

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/school-assessment-service/internal/events"
	"github.com/SAP-F-2025/school-assessment-service/internal/models"
	"github.com/SAP-F-2025/school-assessment-service/internal/repositories"
)

func principalID(p *models.Principal) string {
	if p == nil {
		return ""
	}
	return p.ID
}

func requireTeacher(p *models.Principal, resourceID uint, resource, action string) error {
	if p == nil || p.ID == "" {
		return ErrAuthenticationMissing
	}
	if !p.IsTeacher() {
		return NewPermissionError(p.ID, resourceID, resource, action, "teacher role required")
	}
	return nil
}

func requireStudent(p *models.Principal, resourceID uint, resource, action string) error {
	if p == nil || p.ID == "" {
		return ErrAuthenticationMissing
	}
	if !p.IsStudent() {
		return NewPermissionError(p.ID, resourceID, resource, action, "student role required")
	}
	return nil
}

// checkOwner rejects any teacher other than the one who created the test.
func checkOwner(test *models.Test, teacher *models.Principal, action string) error {
	if err := requireTeacher(teacher, test.ID, "test", action); err != nil {
		return err
	}
	if test.TeacherID != teacher.ID {
		return fmt.Errorf("%w: %w", ErrNotTestOwner,
			NewPermissionError(teacher.ID, test.ID, "test", action, "not the owner of the test"))
	}
	return nil
}

// mapRepoError turns a missing row into the given sentinel and anything
// else into a PersistenceError.
func mapRepoError(op string, err error, notFound error) error {
	if err == nil {
		return nil
	}
	if notFound != nil && repositories.IsNotFoundError(err) {
		return notFound
	}
	return newPersistenceError(op, err)
}

// publish sends an event after the state it describes is committed.
// Failures are logged only.
func publish(ctx context.Context, publisher events.EventPublisher, log *ServiceLogger, event *events.Event, resourceID uint) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, event); err != nil {
		log.LogEventFailure(ctx, string(event.Type), resourceID, err)
	}
}

// ===== PROJECTIONS =====

func optionViews(options []models.Option) []OptionView {
	if len(options) == 0 {
		return nil
	}
	views := make([]OptionView, len(options))
	for i, o := range options {
		views[i] = OptionView{Index: o.Index, Text: o.Text}
	}
	return views
}

func toTeacherQuestionView(q *models.Question) TeacherQuestionView {
	view := TeacherQuestionView{
		ID:                 q.ID,
		Key:                q.Key,
		Position:           q.Position,
		Text:               q.Text,
		Type:               q.Type,
		Marks:              q.Marks,
		Chapter:            q.Chapter,
		Topic:              q.Topic,
		ExpectedAnswerText: q.ExpectedAnswerText,
	}
	if q.Type.IsMCQ() {
		view.Options = optionViews(q.Options)
		view.CorrectOptionIndex = q.CorrectOptionIndex
	}
	return view
}

func toStudentQuestionView(q *models.Question) StudentQuestionView {
	view := StudentQuestionView{
		ID:       q.ID,
		Position: q.Position,
		Text:     q.Text,
		Type:     q.Type,
		Marks:    q.Marks,
		Chapter:  q.Chapter,
		Topic:    q.Topic,
	}
	if q.Type.IsMCQ() {
		view.Options = optionViews(q.Options)
	}
	return view
}

func toTestHeader(test *models.Test, className string, names *NameLookup) TestHeader {
	return TestHeader{
		ID:              test.ID,
		Title:           test.Title,
		Description:     test.Description,
		DurationMinutes: test.DurationMinutes,
		IsPublished:     test.IsPublished,
		ClassID:         test.ClassID,
		ClassName:       className,
		GradeSubjectID:  test.GradeSubjectID,
		SubjectName:     names.Subject(test.GradeSubjectID),
		ExamTypeID:      test.ExamTypeID,
		ExamTypeName:    names.ExamType(test.ExamTypeID),
		DueDate:         test.DueDate,
		CreatedAt:       test.CreatedAt,
		TotalMarks:      test.TotalMarks(),
		QuestionCount:   len(test.Questions),
	}
}

func toSubmissionSummary(sub *models.Submission, currentTotal int) SubmissionSummary {
	totalMarks := sub.SnapshotTotalMarks(currentTotal)
	summary := SubmissionSummary{
		ID:                 sub.ID,
		TestID:             sub.TestID,
		StudentID:          sub.StudentID,
		Status:             sub.Status(),
		SubmittedAt:        sub.SubmittedAt,
		TimeTakenSeconds:   sub.TimeTakenSeconds,
		TotalMarksObtained: sub.TotalMarksObtained,
		TotalMarks:         totalMarks,
		GradedAt:           sub.GradedAt,
	}
	if sub.IsGraded {
		summary.Percentage = models.Percentage(sub.TotalMarksObtained, totalMarks)
	}
	return summary
}

// toSubmissionView hides every mark until the submission is graded.
func toSubmissionView(sub *models.Submission, currentTotal int) *SubmissionView {
	totalMarks := sub.SnapshotTotalMarks(currentTotal)
	view := &SubmissionView{
		ID:               sub.ID,
		TestID:           sub.TestID,
		Status:           sub.Status(),
		SubmittedAt:      sub.SubmittedAt,
		TimeTakenSeconds: sub.TimeTakenSeconds,
		TotalMarks:       totalMarks,
		Answers:          make([]StudentAnswerView, 0, len(sub.Answers)),
	}
	if sub.IsGraded {
		obtained := sub.TotalMarksObtained
		percentage := models.Percentage(obtained, totalMarks)
		view.TotalMarksObtained = &obtained
		view.Percentage = &percentage
	}
	for _, a := range sub.Answers {
		answer := StudentAnswerView{
			QuestionID:          a.QuestionID,
			SelectedOptionIndex: a.SelectedOptionIndex,
			FreeTextAnswer:      a.FreeTextAnswer,
		}
		if sub.IsGraded {
			marks := a.MarksAwarded
			answer.MarksAwarded = &marks
		}
		view.Answers = append(view.Answers, answer)
	}
	return view
}
