package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/fahadnasir13/actuaryhub-backend/common/errors"
	"github.com/fahadnasir13/actuaryhub-backend/services/jobs-api/internal/models"
	"github.com/fahadnasir13/actuaryhub-backend/services/jobs-api/internal/query"
)

// Memory keeps postings in process. Used for local development and tests.
type Memory struct {
	mu       sync.RWMutex
	postings map[int64]*models.JobPosting
	nextID   int64
}

func NewMemory() *Memory {
	return &Memory{
		postings: make(map[int64]*models.JobPosting),
		nextID:   1,
	}
}

func (m *Memory) List(_ context.Context, filter query.Filter) ([]*models.JobPosting, error) {
	m.mu.RLock()
	all := make([]*models.JobPosting, 0, len(m.postings))
	for _, p := range m.postings {
		all = append(all, p.Clone())
	}
	m.mu.RUnlock()

	return filter.Apply(all), nil
}

func (m *Memory) Get(_ context.Context, id int64) (*models.JobPosting, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.postings[id]
	if !ok {
		return nil, notFound(id)
	}
	return p.Clone(), nil
}

func (m *Memory) Create(_ context.Context, p *models.JobPosting) (*models.JobPosting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := p.Clone()
	stored.ID = m.nextID
	m.nextID++
	m.postings[stored.ID] = stored
	return stored.Clone(), nil
}

func (m *Memory) Update(_ context.Context, id int64, mutate func(*models.JobPosting) error) (*models.JobPosting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.postings[id]
	if !ok {
		return nil, notFound(id)
	}

	next := current.Clone()
	if err := mutate(next); err != nil {
		return nil, err
	}
	next.ID = id
	m.postings[id] = next
	return next.Clone(), nil
}

func (m *Memory) Delete(_ context.Context, id int64) (*models.JobPosting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.postings[id]
	if !ok {
		return nil, notFound(id)
	}
	delete(m.postings, id)
	return p, nil
}

func (m *Memory) Close() error {
	return nil
}

func notFound(id int64) error {
	return errors.NotFound(fmt.Sprintf("job posting %d not found", id), nil)
}
