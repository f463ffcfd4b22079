package store

import (
	"context"
	"sync"

	"github.com/matzehuels/witview/pkg/diagram"
)

// Memory keeps the diagram in process memory.
type Memory struct {
	Subscribers

	mu sync.RWMutex
	d  *diagram.Model
}

// NewMemory creates a store holding d, which may be nil.
func NewMemory(d *diagram.Model) *Memory {
	m := &Memory{}
	if d != nil {
		m.d = Prepare(d, nil)
	}
	return m
}

// Current implements Store.
func (m *Memory) Current(context.Context) (*diagram.Model, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.d.Clone(), nil
}

// Set implements Store.
func (m *Memory) Set(ctx context.Context, d *diagram.Model) error {
	if d == nil {
		return m.Clear(ctx)
	}
	m.mu.Lock()
	m.d = Prepare(d, m.d)
	stored := m.d
	m.mu.Unlock()

	m.Publish(ctx, stored)
	return nil
}

// Clear implements Store.
func (m *Memory) Clear(ctx context.Context) error {
	m.mu.Lock()
	m.d = nil
	m.mu.Unlock()

	m.Publish(ctx, nil)
	return nil
}
