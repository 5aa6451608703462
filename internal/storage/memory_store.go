package storage

import (
	"sync"

	"github.com/oxygenesis/wipecert/internal/domain"
)

// Memory is an in-process Repository for tests and single-shot CLI runs.
type Memory struct {
	mu   sync.RWMutex
	data map[string]*domain.Bundle
}

func NewMemory() *Memory { return &Memory{data: make(map[string]*domain.Bundle)} }

func (m *Memory) Save(b *domain.Bundle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[b.Certificate.ID]; ok {
		return ErrAlreadyExists
	}
	cp := *b
	m.data[b.Certificate.ID] = &cp
	return nil
}

func (m *Memory) Get(id string) (*domain.Bundle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.data[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *Memory) List() ([]*domain.Bundle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.Bundle, 0, len(m.data))
	for _, b := range m.data {
		cp := *b
		out = append(out, &cp)
	}
	return out, nil
}

func (m *Memory) Close() error { return nil }

var _ Repository = (*Memory)(nil)
