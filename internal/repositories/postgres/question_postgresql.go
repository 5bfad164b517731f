package postgres

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/school-assessment-service/internal/models"
	"github.com/SAP-F-2025/school-assessment-service/internal/repositories"
	"gorm.io/gorm"
)

type QuestionPostgreSQL struct {
	db *gorm.DB
}

func NewQuestionPostgreSQL(db *gorm.DB) repositories.QuestionRepository {
	return &QuestionPostgreSQL{db: db}
}

// CreateBatch inserts the questions with their options in one statement per table.
func (q *QuestionPostgreSQL) CreateBatch(ctx context.Context, questions []*models.Question) error {
	if len(questions) == 0 {
		return nil
	}
	if err := q.db.WithContext(ctx).Create(questions).Error; err != nil {
		return fmt.Errorf("failed to create questions: %w", err)
	}
	return nil
}

func (q *QuestionPostgreSQL) UpdateFields(ctx context.Context, question *models.Question) error {
	return q.db.WithContext(ctx).
		Model(&models.Question{}).
		Where("id = ? AND test_id = ?", question.ID, question.TestID).
		Updates(map[string]interface{}{
			"position":             question.Position,
			"text":                 question.Text,
			"question_type":        question.Type,
			"marks":                question.Marks,
			"chapter":              question.Chapter,
			"topic":                question.Topic,
			"correct_option_index": question.CorrectOptionIndex,
			"expected_answer_text": question.ExpectedAnswerText,
		}).Error
}

// ReplaceOptions swaps the option set of a question. Answers store the
// selected index, so callers must keep texts and order fixed once answers exist.
func (q *QuestionPostgreSQL) ReplaceOptions(ctx context.Context, questionID uint, options []models.Option) error {
	db := q.db.WithContext(ctx)
	if err := db.Where("question_id = ?", questionID).Delete(&models.Option{}).Error; err != nil {
		return fmt.Errorf("failed to delete options: %w", err)
	}
	if len(options) == 0 {
		return nil
	}
	for i := range options {
		options[i].ID = 0
		options[i].QuestionID = questionID
	}
	if err := db.Create(&options).Error; err != nil {
		return fmt.Errorf("failed to create options: %w", err)
	}
	return nil
}

func (q *QuestionPostgreSQL) DeleteByIDs(ctx context.Context, testID uint, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return q.db.WithContext(ctx).
		Where("test_id = ? AND id IN ?", testID, ids).
		Delete(&models.Question{}).Error
}
