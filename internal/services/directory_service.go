package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SAP-F-2025/school-assessment-service/internal/cache"
	"github.com/SAP-F-2025/school-assessment-service/internal/models"
	"github.com/SAP-F-2025/school-assessment-service/internal/repositories"
)

const (
	classCacheKey         = "directory:class:%d"
	gradeSubjectsCacheKey = "directory:grade:%d:subjects"
	examTypesCacheKey     = "directory:exam_types"
	directoryCachePattern = "directory:*"
)

// directoryService reads reference data. Only reference data goes through
// the cache; graded results never do.
type directoryService struct {
	repo  repositories.Repository
	cache cache.CacheService
	ttl   time.Duration
	log   *ServiceLogger
}

func NewDirectoryService(repo repositories.Repository, cacheService cache.CacheService, ttl time.Duration, log *ServiceLogger) DirectoryService {
	if cacheService == nil {
		cacheService = cache.NoopCache{}
	}
	return &directoryService{
		repo:  repo,
		cache: cacheService,
		ttl:   ttl,
		log:   log,
	}
}

func (s *directoryService) ResolveClass(ctx context.Context, id uint) (*models.ClassRef, error) {
	key := fmt.Sprintf(classCacheKey, id)
	var ref models.ClassRef
	if s.cached(ctx, key, &ref) {
		return &ref, nil
	}

	class, err := s.repo.Directory().GetClass(ctx, id)
	if err != nil {
		return nil, mapRepoError("resolve class", err, ErrClassNotFound)
	}

	ref = models.ClassRef{ID: class.ID, Name: class.Name, GradeID: class.GradeID}
	if ref.Name == "" {
		ref.Name = models.UnknownClass
	}
	s.store(ctx, key, ref)
	return &ref, nil
}

// ResolveSubjectsForGrade returns the grade-subject ids of a grade with their
// subject names. A mapping whose subject row is missing is kept under the
// "Unknown Subject" name.
func (s *directoryService) ResolveSubjectsForGrade(ctx context.Context, gradeID uint) ([]models.NamedRef, error) {
	key := fmt.Sprintf(gradeSubjectsCacheKey, gradeID)
	var refs []models.NamedRef
	if s.cached(ctx, key, &refs) {
		return refs, nil
	}

	records, err := s.repo.Directory().SubjectsForGrade(ctx, gradeID)
	if err != nil {
		return nil, newPersistenceError("resolve subjects for grade", err)
	}

	refs = make([]models.NamedRef, 0, len(records))
	for _, r := range records {
		refs = append(refs, models.NamedRef{ID: r.ID, Name: r.SubjectName()})
	}
	s.store(ctx, key, refs)
	return refs, nil
}

func (s *directoryService) ResolveExamTypes(ctx context.Context) ([]models.NamedRef, error) {
	var refs []models.NamedRef
	if s.cached(ctx, examTypesCacheKey, &refs) {
		return refs, nil
	}

	examTypes, err := s.repo.Directory().ExamTypes(ctx)
	if err != nil {
		return nil, newPersistenceError("resolve exam types", err)
	}

	refs = make([]models.NamedRef, 0, len(examTypes))
	for _, et := range examTypes {
		name := et.Name
		if name == "" {
			name = models.UnknownExamType
		}
		refs = append(refs, models.NamedRef{ID: et.ID, Name: name})
	}
	s.store(ctx, examTypesCacheKey, refs)
	return refs, nil
}

// ResolveNames batch-resolves subject and exam type names. Ids that do not
// resolve are left out and read back as the "Unknown X" sentinels.
func (s *directoryService) ResolveNames(ctx context.Context, gradeSubjectIDs, examTypeIDs []uint) (*NameLookup, error) {
	lookup := &NameLookup{
		Subjects:  make(map[uint]string),
		ExamTypes: make(map[uint]string),
	}

	if ids := uniqueIDs(gradeSubjectIDs); len(ids) > 0 {
		records, err := s.repo.Directory().GradeSubjectsByIDs(ctx, ids)
		if err != nil {
			return nil, newPersistenceError("resolve subject names", err)
		}
		for _, r := range records {
			lookup.Subjects[r.ID] = r.SubjectName()
		}
	}

	if len(examTypeIDs) > 0 {
		examTypes, err := s.ResolveExamTypes(ctx)
		if err != nil {
			return nil, err
		}
		for _, et := range examTypes {
			lookup.ExamTypes[et.ID] = et.Name
		}
	}

	return lookup, nil
}

// InvalidateCache drops every cached directory entry so the next lookups
// read fresh reference data. Admin only.
func (s *directoryService) InvalidateCache(ctx context.Context, caller *models.Principal) (err error) {
	start := time.Now()
	defer func() {
		s.log.LogOperation(ctx, "invalidate_cache", principalID(caller), 0, "directory", time.Since(start), err)
	}()

	if caller == nil || caller.ID == "" {
		return ErrAuthenticationMissing
	}
	if caller.Role != models.RoleAdmin {
		return NewPermissionError(caller.ID, 0, "directory", "invalidate", "admin role required")
	}

	removed, err := s.cache.DeletePattern(ctx, directoryCachePattern)
	if err != nil {
		return newPersistenceError("invalidate directory cache", err)
	}
	s.log.logger.InfoContext(ctx, "directory cache invalidated", "removed", removed)
	return nil
}

func (s *directoryService) cached(ctx context.Context, key string, dest interface{}) bool {
	err := s.cache.Get(ctx, key, dest)
	if err == nil {
		return true
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.log.logger.WarnContext(ctx, "directory cache read failed", "key", key, "error", err)
	}
	return false
}

func (s *directoryService) store(ctx context.Context, key string, value interface{}) {
	if s.ttl <= 0 {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.ttl); err != nil {
		s.log.logger.WarnContext(ctx, "directory cache write failed", "key", key, "error", err)
	}
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok || id == 0 {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// containsID reports whether refs holds the id.
func containsID(refs []models.NamedRef, id uint) bool {
	for _, r := range refs {
		if r.ID == id {
			return true
		}
	}
	return false
}
