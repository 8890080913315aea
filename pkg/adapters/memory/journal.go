package memory

import (
	"context"
	"sync"

	"github.com/aretw0/graft/pkg/domain"
)

// DefaultCapacity bounds a Journal created with a non-positive capacity.
const DefaultCapacity = 1024

// Journal implements ports.EventJournal in memory, keeping the most recent
// events up to its capacity.
// Safe for concurrent use.
type Journal struct {
	mu       sync.RWMutex
	events   []domain.NodeEvent
	capacity int
}

// NewJournal creates a new in-memory journal.
func NewJournal(capacity int) *Journal {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Journal{capacity: capacity}
}

// Append stores a copy of the event, evicting the oldest one when full.
func (j *Journal) Append(ctx context.Context, event *domain.NodeEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	if len(j.events) == j.capacity {
		copy(j.events, j.events[1:])
		j.events = j.events[:len(j.events)-1]
	}
	j.events = append(j.events, *event)
	return nil
}

// List returns up to limit events in append order. A limit of zero or less
// returns every retained event.
func (j *Journal) List(ctx context.Context, limit int64) ([]domain.NodeEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	j.mu.RLock()
	defer j.mu.RUnlock()

	n := int64(len(j.events))
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]domain.NodeEvent, n)
	copy(out, j.events[:n])
	return out, nil
}

// Len returns the number of retained events.
func (j *Journal) Len() int {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return len(j.events)
}
