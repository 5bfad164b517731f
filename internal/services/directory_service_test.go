package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/SAP-F-2025/school-assessment-service/internal/cache"
	"github.com/SAP-F-2025/school-assessment-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// memoryCache is a CacheService backed by a map of JSON payloads.
type memoryCache struct {
	items map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{items: make(map[string][]byte)}
}

func (m *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.items[key] = payload
	return nil
}

func (m *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	payload, ok := m.items[key]
	if !ok {
		return cache.ErrCacheMiss
	}
	return json.Unmarshal(payload, dest)
}

// DeletePattern only understands trailing-star patterns.
func (m *memoryCache) DeletePattern(ctx context.Context, pattern string) (int, error) {
	prefix := strings.TrimSuffix(pattern, "*")
	removed := 0
	for key := range m.items {
		if strings.HasPrefix(key, prefix) {
			delete(m.items, key)
			removed++
		}
	}
	return removed, nil
}

func TestDirectoryService_ResolveClass(t *testing.T) {
	repo := newMockRepo()
	repo.dir.On("GetClass", mock.Anything, uint(7)).Return(&models.Class{ID: 7, Name: "7A", GradeID: 9}, nil).Once()
	repo.dir.On("GetClass", mock.Anything, uint(8)).Return(nil, gorm.ErrRecordNotFound)
	repo.dir.On("GetClass", mock.Anything, uint(9)).Return(nil, errors.New("connection reset"))

	service := NewDirectoryService(repo, newMemoryCache(), time.Minute, testLogger())

	class, err := service.ResolveClass(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, models.ClassRef{ID: 7, Name: "7A", GradeID: 9}, *class)

	cached, err := service.ResolveClass(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, *class, *cached)
	repo.dir.AssertNumberOfCalls(t, "GetClass", 1)

	_, err = service.ResolveClass(context.Background(), 8)
	assert.ErrorIs(t, err, ErrClassNotFound)

	_, err = service.ResolveClass(context.Background(), 9)
	assert.Equal(t, KindPersistence, KindOf(err))
}

func TestDirectoryService_ResolveSubjectsForGrade_MissingSubject(t *testing.T) {
	repo := newMockRepo()
	repo.dir.On("SubjectsForGrade", mock.Anything, uint(9)).Return([]models.GradeSubjectRecord{
		subjectRecord(3, 9, "Mathematics"),
		{ID: 4, GradeID: 9},
	}, nil)

	refs, err := NewDirectoryService(repo, nil, 0, testLogger()).ResolveSubjectsForGrade(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, []models.NamedRef{{ID: 3, Name: "Mathematics"}, {ID: 4, Name: models.UnknownSubject}}, refs)
}

func TestDirectoryService_ResolveNames(t *testing.T) {
	repo := newMockRepo()
	repo.dir.On("GradeSubjectsByIDs", mock.Anything, []uint{3, 5}).Return([]models.GradeSubjectRecord{subjectRecord(3, 9, "Mathematics")}, nil)
	repo.dir.On("ExamTypes", mock.Anything).Return([]models.ExamType{{ID: 2, Name: "Midterm"}, {ID: 6}}, nil)

	names, err := NewDirectoryService(repo, nil, 0, testLogger()).ResolveNames(context.Background(), []uint{3, 5, 3, 0}, []uint{2})
	require.NoError(t, err)

	assert.Equal(t, "Mathematics", names.Subject(3))
	assert.Equal(t, models.UnknownSubject, names.Subject(5))
	assert.Equal(t, "Midterm", names.ExamType(2))
	assert.Equal(t, models.UnknownExamType, names.ExamType(6))
	assert.Equal(t, models.UnknownExamType, names.ExamType(42))
}

func TestDirectoryService_InvalidateCache(t *testing.T) {
	repo := newMockRepo()
	repo.dir.On("GetClass", mock.Anything, uint(7)).Return(&models.Class{ID: 7, Name: "7A", GradeID: 9}, nil)

	memory := newMemoryCache()
	memory.items["session:abc"] = []byte(`"keep"`)
	service := NewDirectoryService(repo, memory, time.Minute, testLogger())

	_, err := service.ResolveClass(context.Background(), 7)
	require.NoError(t, err)

	err = service.InvalidateCache(context.Background(), teacherPrincipal("teacher-1"))
	assert.Equal(t, KindAuthorization, KindOf(err))

	err = service.InvalidateCache(context.Background(), &models.Principal{ID: "admin-1", Role: models.RoleAdmin})
	require.NoError(t, err)
	assert.NotContains(t, memory.items, "directory:class:7")
	assert.Contains(t, memory.items, "session:abc")

	_, err = service.ResolveClass(context.Background(), 7)
	require.NoError(t, err)
	repo.dir.AssertNumberOfCalls(t, "GetClass", 2)
}
