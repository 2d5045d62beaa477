package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"path"
	"sync"
	"time"

	"github.com/noah-isme/coursedesk-api/internal/models"
	appErrors "github.com/noah-isme/coursedesk-api/pkg/errors"
)

type courseRepoStub struct {
	courses   map[string]*models.Course
	counts    []models.SessionResponseCount
	findErr   error
	countsErr error
	findCalls int
}

func (s *courseRepoStub) FindByID(ctx context.Context, courseID string) (*models.Course, error) {
	s.findCalls++
	if s.findErr != nil {
		return nil, s.findErr
	}
	if course, ok := s.courses[courseID]; ok {
		return course, nil
	}
	return nil, sql.ErrNoRows
}

func (s *courseRepoStub) ResponseCounts(ctx context.Context, courseID string) ([]models.SessionResponseCount, error) {
	return s.counts, s.countsErr
}

type studentRepoStub struct {
	students  []models.Student
	listErr   error
	upsertErr error
	upserted  []models.Student
}

func (s *studentRepoStub) ListByCourse(ctx context.Context, courseID string) ([]models.Student, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.students, nil
}

func (s *studentRepoStub) Upsert(ctx context.Context, students []models.Student) error {
	s.upserted = append(s.upserted, students...)
	return s.upsertErr
}

// memoryCache is an in-memory CacheRepository.
type memoryCache struct {
	mu      sync.Mutex
	values  map[string][]byte
	deleted []string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{values: map[string][]byte{}}
}

func (m *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.values[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = raw
	return nil
}

func (m *memoryCache) Delete(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.values, k)
		m.deleted = append(m.deleted, k)
	}
	return nil
}

func (m *memoryCache) DeleteByPattern(ctx context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.values {
		if ok, _ := path.Match(pattern, k); ok {
			delete(m.values, k)
			m.deleted = append(m.deleted, k)
		}
	}
	return nil
}

type auditRecorderStub struct {
	mu   sync.Mutex
	logs []*models.AuditLog
	err  error
}

func (s *auditRecorderStub) Create(ctx context.Context, log *models.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = append(s.logs, log)
	return s.err
}

func strPtr(s string) *string { return &s }
