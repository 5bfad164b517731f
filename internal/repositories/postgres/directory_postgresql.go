package postgres

import (
	"context"

	"github.com/SAP-F-2025/school-assessment-service/internal/models"
	"github.com/SAP-F-2025/school-assessment-service/internal/repositories"
	"gorm.io/gorm"
)

type DirectoryPostgreSQL struct {
	db *gorm.DB
}

func NewDirectoryPostgreSQL(db *gorm.DB) repositories.DirectoryRepository {
	return &DirectoryPostgreSQL{db: db}
}

// gradeSubjectSelect embeds the subject as jsonb so every row carries its
// relation in one round trip. json_agg yields a list, which Relation
// collapses to a single record.
const gradeSubjectSelect = `grade_subjects.id, grade_subjects.grade_id,
	(SELECT json_agg(s) FROM subjects s WHERE s.id = grade_subjects.subject_id) AS subject`

func (d *DirectoryPostgreSQL) GetClass(ctx context.Context, id uint) (*models.Class, error) {
	var class models.Class
	if err := d.db.WithContext(ctx).First(&class, id).Error; err != nil {
		return nil, err
	}
	return &class, nil
}

func (d *DirectoryPostgreSQL) SubjectsForGrade(ctx context.Context, gradeID uint) ([]models.GradeSubjectRecord, error) {
	var rows []models.GradeSubjectRecord
	err := d.db.WithContext(ctx).
		Table("grade_subjects").
		Select(gradeSubjectSelect).
		Where("grade_subjects.grade_id = ?", gradeID).
		Order("grade_subjects.id ASC").
		Scan(&rows).Error
	return rows, err
}

func (d *DirectoryPostgreSQL) GradeSubjectsByIDs(ctx context.Context, ids []uint) ([]models.GradeSubjectRecord, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []models.GradeSubjectRecord
	err := d.db.WithContext(ctx).
		Table("grade_subjects").
		Select(gradeSubjectSelect).
		Where("grade_subjects.id IN ?", ids).
		Scan(&rows).Error
	return rows, err
}

func (d *DirectoryPostgreSQL) ExamTypes(ctx context.Context) ([]models.ExamType, error) {
	var examTypes []models.ExamType
	err := d.db.WithContext(ctx).Order("id ASC").Find(&examTypes).Error
	return examTypes, err
}
