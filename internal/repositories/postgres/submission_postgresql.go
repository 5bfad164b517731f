package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SAP-F-2025/school-assessment-service/internal/models"
	"github.com/SAP-F-2025/school-assessment-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SubmissionPostgreSQL struct {
	db *gorm.DB
}

func NewSubmissionPostgreSQL(db *gorm.DB) repositories.SubmissionRepository {
	return &SubmissionPostgreSQL{db: db}
}

// Create relies on the (test_id, student_id) unique index to reject a second
// submission, so concurrent duplicates cannot both succeed.
func (s *SubmissionPostgreSQL) Create(ctx context.Context, submission *models.Submission) error {
	err := s.db.WithContext(ctx).Create(submission).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return repositories.ErrDuplicateKey
	}
	if err != nil {
		return fmt.Errorf("failed to create submission: %w", err)
	}
	return nil
}

func (s *SubmissionPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Submission, error) {
	var submission models.Submission
	if err := s.db.WithContext(ctx).First(&submission, id).Error; err != nil {
		return nil, err
	}
	return &submission, nil
}

func (s *SubmissionPostgreSQL) GetWithAnswers(ctx context.Context, id uint) (*models.Submission, error) {
	var submission models.Submission
	err := s.db.WithContext(ctx).
		Preload("Answers", func(db *gorm.DB) *gorm.DB {
			return db.Order("question_id ASC")
		}).
		First(&submission, id).Error
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

func (s *SubmissionPostgreSQL) GetByTestAndStudent(ctx context.Context, testID uint, studentID string) (*models.Submission, error) {
	var submission models.Submission
	err := s.db.WithContext(ctx).
		Where("test_id = ? AND student_id = ?", testID, studentID).
		Preload("Answers", func(db *gorm.DB) *gorm.DB {
			return db.Order("question_id ASC")
		}).
		First(&submission).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &submission, nil
}

func (s *SubmissionPostgreSQL) ListByTest(ctx context.Context, testID uint) ([]*models.Submission, error) {
	var submissions []*models.Submission
	err := s.db.WithContext(ctx).
		Where("test_id = ?", testID).
		Order("submitted_at ASC").
		Find(&submissions).Error
	return submissions, err
}

func (s *SubmissionPostgreSQL) ListByStudentForTests(ctx context.Context, studentID string, testIDs []uint) ([]*models.Submission, error) {
	if len(testIDs) == 0 {
		return nil, nil
	}
	var submissions []*models.Submission
	err := s.db.WithContext(ctx).
		Where("student_id = ? AND test_id IN ?", studentID, testIDs).
		Find(&submissions).Error
	return submissions, err
}

func (s *SubmissionPostgreSQL) CountByTests(ctx context.Context, testIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(testIDs))
	if len(testIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		TestID uint
		Count  int64
	}
	err := s.db.WithContext(ctx).
		Model(&models.Submission{}).
		Select("test_id, COUNT(*) AS count").
		Where("test_id IN ?", testIDs).
		Group("test_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		counts[row.TestID] = row.Count
	}
	return counts, nil
}

func (s *SubmissionPostgreSQL) ExistsForTest(ctx context.Context, testID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("test_id = ?", testID).
		Limit(1).
		Count(&count).Error
	return count > 0, err
}

// UpsertAnswerMarks sets marks_awarded, creating an unanswered row when the
// submission has none for the question.
func (s *SubmissionPostgreSQL) UpsertAnswerMarks(ctx context.Context, submissionID, questionID uint, marks int) error {
	answer := models.Answer{
		SubmissionID: submissionID,
		QuestionID:   questionID,
		MarksAwarded: marks,
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "submission_id"}, {Name: "question_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"marks_awarded"}),
		}).
		Create(&answer).Error
}

func (s *SubmissionPostgreSQL) SumAwarded(ctx context.Context, submissionID uint) (int, error) {
	var total int
	err := s.db.WithContext(ctx).
		Model(&models.Answer{}).
		Select("COALESCE(SUM(marks_awarded), 0)").
		Where("submission_id = ?", submissionID).
		Scan(&total).Error
	return total, err
}

func (s *SubmissionPostgreSQL) MarkGraded(ctx context.Context, submissionID uint, total int, gradedBy string, gradedAt time.Time) error {
	result := s.db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("id = ?", submissionID).
		Updates(map[string]interface{}{
			"is_graded":            true,
			"total_marks_obtained": total,
			"graded_by":            gradedBy,
			"graded_at":            gradedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
