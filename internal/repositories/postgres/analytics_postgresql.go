package postgres

import (
	"context"

	"github.com/SAP-F-2025/school-assessment-service/internal/models"
	"github.com/SAP-F-2025/school-assessment-service/internal/repositories"
	"gorm.io/gorm"
)

type AnalyticsPostgreSQL struct {
	db *gorm.DB
}

func NewAnalyticsPostgreSQL(db *gorm.DB) repositories.AnalyticsRepository {
	return &AnalyticsPostgreSQL{db: db}
}

func (a *AnalyticsPostgreSQL) applyResultFilter(query *gorm.DB, filter repositories.ResultFilter) *gorm.DB {
	if filter.StudentID != nil {
		query = query.Where("submissions.student_id = ?", *filter.StudentID)
	}
	if filter.ClassID != nil {
		query = query.Where("tests.class_id = ?", *filter.ClassID)
	}
	if filter.TeacherID != nil {
		query = query.Where("tests.teacher_id = ?", *filter.TeacherID)
	}
	return query
}

// GradedResults reads finalized submissions only; a submission that is
// being graded is invisible here until is_graded flips. The total comes
// from the submit-time snapshot.
func (a *AnalyticsPostgreSQL) GradedResults(ctx context.Context, filter repositories.ResultFilter) ([]models.GradedResult, error) {
	query := a.db.WithContext(ctx).
		Table("submissions").
		Select(`submissions.id AS submission_id,
			submissions.test_id,
			submissions.student_id,
			tests.grade_subject_id,
			tests.exam_type_id,
			submissions.submitted_at,
			submissions.total_marks_obtained AS marks_obtained,
			COALESCE((submissions.snapshot->>'total_marks')::int,
				(SELECT SUM(q.marks) FROM questions q WHERE q.test_id = tests.id), 0) AS total_marks`).
		Joins("JOIN tests ON tests.id = submissions.test_id").
		Where("submissions.is_graded = ?", true)

	query = a.applyResultFilter(query, filter)

	var rows []models.GradedResult
	err := query.Order("submissions.submitted_at ASC, submissions.id ASC").Scan(&rows).Error
	return rows, err
}

func (a *AnalyticsPostgreSQL) AnswerMarks(ctx context.Context, submissionIDs []uint) ([]models.AnswerMark, error) {
	if len(submissionIDs) == 0 {
		return nil, nil
	}
	var rows []models.AnswerMark
	err := a.db.WithContext(ctx).
		Table("answers").
		Select(`answers.submission_id,
			answers.question_id,
			questions.chapter,
			questions.topic,
			answers.marks_awarded,
			questions.marks AS max_marks`).
		Joins("JOIN questions ON questions.id = answers.question_id").
		Where("answers.submission_id IN ?", submissionIDs).
		Order("answers.submission_id ASC, questions.position ASC").
		Scan(&rows).Error
	return rows, err
}

func (a *AnalyticsPostgreSQL) PendingCount(ctx context.Context, filter repositories.ResultFilter) (int64, error) {
	query := a.db.WithContext(ctx).
		Table("submissions").
		Joins("JOIN tests ON tests.id = submissions.test_id").
		Where("submissions.is_graded = ?", false)

	query = a.applyResultFilter(query, filter)

	var count int64
	err := query.Count(&count).Error
	return count, err
}
