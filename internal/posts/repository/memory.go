package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/CrowdUp-org/CrowdUp-sub002/internal/posts"
)

// MemoryRepo is an in-memory repository for unit tests.
type MemoryRepo struct {
	mu    sync.RWMutex
	store map[string]*posts.Post
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{store: make(map[string]*posts.Post)}
}

func (m *MemoryRepo) Create(ctx context.Context, p *posts.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.store[p.ID] = &cp
	return nil
}

func (m *MemoryRepo) Get(ctx context.Context, id string) (*posts.Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.store[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, ErrNotFound
}

// List returns posts newest first.
func (m *MemoryRepo) List(ctx context.Context) ([]*posts.Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*posts.Post, 0, len(m.store))
	for _, p := range m.store {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryRepo) Update(ctx context.Context, id string, title, content *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[id]
	if !ok {
		return ErrNotFound
	}
	if title != nil {
		p.Title = *title
	}
	if content != nil {
		p.Content = *content
	}
	p.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *MemoryRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[id]; !ok {
		return ErrNotFound
	}
	delete(m.store, id)
	return nil
}
