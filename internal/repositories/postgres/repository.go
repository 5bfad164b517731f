package postgres

import (
	"context"

	"github.com/SAP-F-2025/school-assessment-service/internal/repositories"
	"gorm.io/gorm"
)

type repositoryPostgreSQL struct {
	db *gorm.DB
}

// NewRepository returns a Repository backed by db. db should be opened with
// TranslateError so unique violations surface as gorm.ErrDuplicatedKey.
func NewRepository(db *gorm.DB) repositories.Repository {
	return &repositoryPostgreSQL{db: db}
}

func (r *repositoryPostgreSQL) Test() repositories.TestRepository {
	return NewTestPostgreSQL(r.db)
}

func (r *repositoryPostgreSQL) Question() repositories.QuestionRepository {
	return NewQuestionPostgreSQL(r.db)
}

func (r *repositoryPostgreSQL) Submission() repositories.SubmissionRepository {
	return NewSubmissionPostgreSQL(r.db)
}

func (r *repositoryPostgreSQL) Directory() repositories.DirectoryRepository {
	return NewDirectoryPostgreSQL(r.db)
}

func (r *repositoryPostgreSQL) Analytics() repositories.AnalyticsRepository {
	return NewAnalyticsPostgreSQL(r.db)
}

func (r *repositoryPostgreSQL) WithTransaction(ctx context.Context, fn func(tx repositories.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&repositoryPostgreSQL{db: tx})
	})
}
