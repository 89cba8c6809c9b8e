package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/bjarke-xyz/portfolio/internal/domain"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

// MemoryAppRepository keeps apps in process for tests. FailWith makes every
// call return the given error.
type MemoryAppRepository struct {
	mu   sync.RWMutex
	apps map[string]domain.Application
	last time.Time
	err  error
	now  func() time.Time
}

func NewMemoryApp() *MemoryAppRepository {
	return &MemoryAppRepository{
		apps: make(map[string]domain.Application),
		now:  time.Now,
	}
}

func (m *MemoryAppRepository) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// List implements domain.ApplicationRepository.
func (m *MemoryAppRepository) List(ctx context.Context) ([]domain.Application, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	apps := lo.Values(m.apps)
	sort.Slice(apps, func(i, j int) bool {
		if apps[i].CreatedAt.Equal(apps[j].CreatedAt) {
			return apps[i].ID > apps[j].ID
		}
		return apps[i].CreatedAt.After(apps[j].CreatedAt)
	})
	return apps, nil
}

// GetByID implements domain.ApplicationRepository.
func (m *MemoryAppRepository) GetByID(ctx context.Context, id string) (domain.Application, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return domain.Application{}, m.err
	}
	app, ok := m.apps[id]
	if !ok {
		return domain.Application{}, domain.ErrNotFound
	}
	return app, nil
}

// Create implements domain.ApplicationRepository.
func (m *MemoryAppRepository) Create(ctx context.Context, fields domain.AppFields) (domain.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return domain.Application{}, m.err
	}
	now := m.now().UTC()
	// created_at stays strictly increasing so ordering is total
	if !now.After(m.last) {
		now = m.last.Add(time.Microsecond)
	}
	m.last = now
	app := domain.Application{
		ID:          uuid.NewString(),
		Title:       fields.Title,
		Description: fields.Description,
		AppURL:      fields.AppURL,
		ImageURL:    fields.ImageURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	m.apps[app.ID] = app
	return app, nil
}

// Update implements domain.ApplicationRepository.
func (m *MemoryAppRepository) Update(ctx context.Context, id string, fields domain.AppFields) (domain.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return domain.Application{}, m.err
	}
	app, ok := m.apps[id]
	if !ok {
		return domain.Application{}, domain.ErrNotFound
	}
	app.Title = fields.Title
	app.Description = fields.Description
	app.AppURL = fields.AppURL
	app.ImageURL = fields.ImageURL
	app.UpdatedAt = m.now().UTC()
	m.apps[id] = app
	return app, nil
}

// Delete implements domain.ApplicationRepository.
func (m *MemoryAppRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.apps[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.apps, id)
	return nil
}
