// Package store holds the canonical diagram a coordinator projects.
//
// Three backends are provided:
//   - [Memory]: in-process, for tests and the HTTP server
//   - [File]: a JSON file on disk, for the CLI
//   - mongo.Store: a MongoDB document, for shared deployments
//
// Every backend bumps the diagram revision on Set and hands out copies, so
// callers can never mutate the stored diagram. Subscribers registered with
// Subscribe are called after every Set or Clear, which is how a
// viewmode.Coordinator learns about diagram changes.
package store

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/matzehuels/witview/pkg/diagram"
)

// Store is a diagram store backend.
type Store interface {
	// Current returns a copy of the stored diagram, or nil, nil when the
	// store is empty.
	Current(ctx context.Context) (*diagram.Model, error)

	// Set replaces the stored diagram. A diagram without an id is assigned
	// one. The stored revision is one above the previous one.
	Set(ctx context.Context, d *diagram.Model) error

	// Clear empties the store.
	Clear(ctx context.Context) error
}

// Subscriber is implemented by stores that publish changes.
type Subscriber interface {
	Subscribe(fn ChangeFunc) (cancel func())
}

// ChangeFunc is called with the new diagram after the store changed. d is
// nil when the store was cleared.
type ChangeFunc func(ctx context.Context, d *diagram.Model)

// NewID returns a fresh diagram id.
func NewID() string { return uuid.NewString() }

// Prepare copies d for storage, assigning an id when it has none and the
// revision following previous. previous may be nil.
func Prepare(d, previous *diagram.Model) *diagram.Model {
	out := d.Clone()
	if out.ID == "" {
		out.ID = NewID()
	}
	rev := out.Revision
	if previous != nil && previous.Revision > rev {
		rev = previous.Revision
	}
	out.Revision = rev + 1
	return out
}

// Subscribers is a set of change callbacks. Backends embed it to offer
// Subscribe and call Publish after every change.
type Subscribers struct {
	mu   sync.Mutex
	next int
	fns  []subscriber
}

type subscriber struct {
	id int
	fn ChangeFunc
}

// Subscribe registers fn and returns a function that removes it.
func (s *Subscribers) Subscribe(fn ChangeFunc) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	id := s.next
	s.fns = append(s.fns, subscriber{id: id, fn: fn})
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.fns = slices.DeleteFunc(s.fns, func(x subscriber) bool { return x.id == id })
	}
}

// Publish calls every subscriber with its own copy of d.
func (s *Subscribers) Publish(ctx context.Context, d *diagram.Model) {
	s.mu.Lock()
	fns := slices.Clone(s.fns)
	s.mu.Unlock()
	for _, sub := range fns {
		sub.fn(ctx, d.Clone())
	}
}
