package ports

import (
	"context"

	"github.com/aretw0/graft/pkg/domain"
)

// EventJournal records bridge events for later inspection.
// Events never carry the node itself, so journaling cannot extend a node's
// lifetime.
type EventJournal interface {
	// Append records one event.
	Append(ctx context.Context, event *domain.NodeEvent) error
	// List returns up to limit events in append order; limit <= 0 means all.
	List(ctx context.Context, limit int64) ([]domain.NodeEvent, error)
}
