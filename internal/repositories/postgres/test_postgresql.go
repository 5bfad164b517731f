package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/SAP-F-2025/school-assessment-service/internal/models"
	"github.com/SAP-F-2025/school-assessment-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TestPostgreSQL struct {
	db *gorm.DB
}

func NewTestPostgreSQL(db *gorm.DB) repositories.TestRepository {
	return &TestPostgreSQL{db: db}
}

// Create inserts the test and, through associations, its questions and options.
func (t *TestPostgreSQL) Create(ctx context.Context, test *models.Test) error {
	if err := t.db.WithContext(ctx).Create(test).Error; err != nil {
		return fmt.Errorf("failed to create test: %w", err)
	}
	return nil
}

func (t *TestPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Test, error) {
	var test models.Test
	if err := t.db.WithContext(ctx).First(&test, id).Error; err != nil {
		return nil, err
	}
	return &test, nil
}

// GetWithQuestions preloads questions and options with one query per level.
func (t *TestPostgreSQL) GetWithQuestions(ctx context.Context, id uint) (*models.Test, error) {
	var test models.Test
	err := t.db.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, id ASC")
		}).
		Preload("Questions.Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("idx ASC")
		}).
		First(&test, id).Error
	if err != nil {
		return nil, err
	}
	return &test, nil
}

func (t *TestPostgreSQL) GetForUpdate(ctx context.Context, id uint) (*models.Test, error) {
	var test models.Test
	err := t.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&test, id).Error
	if err != nil {
		return nil, err
	}
	return &test, nil
}

// UpdateFields writes the scalar columns only; questions are handled separately.
func (t *TestPostgreSQL) UpdateFields(ctx context.Context, test *models.Test) error {
	return t.db.WithContext(ctx).
		Model(&models.Test{}).
		Where("id = ?", test.ID).
		Updates(map[string]interface{}{
			"title":            test.Title,
			"description":      test.Description,
			"duration_minutes": test.DurationMinutes,
			"class_id":         test.ClassID,
			"grade_subject_id": test.GradeSubjectID,
			"exam_type_id":     test.ExamTypeID,
			"due_date":         test.DueDate,
			"updated_at":       time.Now(),
		}).Error
}

func (t *TestPostgreSQL) SetPublished(ctx context.Context, id uint, published bool) error {
	result := t.db.WithContext(ctx).
		Model(&models.Test{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_published": published,
			"updated_at":   time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes the test; foreign keys cascade to questions, options,
// submissions and answers.
func (t *TestPostgreSQL) Delete(ctx context.Context, id uint) error {
	result := t.db.WithContext(ctx).Delete(&models.Test{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (t *TestPostgreSQL) ListByTeacher(ctx context.Context, teacherID string, filters models.TestFilters) ([]*models.Test, int64, error) {
	query := t.db.WithContext(ctx).Model(&models.Test{}).Where("teacher_id = ?", teacherID)

	if filters.ClassID != nil {
		query = query.Where("class_id = ?", *filters.ClassID)
	}
	if filters.IsPublished != nil {
		query = query.Where("is_published = ?", *filters.IsPublished)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	var tests []*models.Test
	err := query.
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "test_id", "marks").Order("position ASC")
		}).
		Order("created_at DESC").
		Find(&tests).Error
	if err != nil {
		return nil, 0, err
	}

	return tests, total, nil
}

func (t *TestPostgreSQL) ListPublishedByClass(ctx context.Context, classID uint) ([]*models.Test, error) {
	var tests []*models.Test
	err := t.db.WithContext(ctx).
		Where("class_id = ? AND is_published = ?", classID, true).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "test_id", "marks").Order("position ASC")
		}).
		Order("created_at DESC").
		Find(&tests).Error
	return tests, err
}
