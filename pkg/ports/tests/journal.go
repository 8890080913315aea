package tests

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aretw0/graft/pkg/domain"
	"github.com/aretw0/graft/pkg/ports"
)

// JournalContractTest verifies a ports.EventJournal implementation.
// newJournal must return an empty journal holding at least five events.
func JournalContractTest(t *testing.T, newJournal func() ports.EventJournal) {
	t.Helper()
	ctx := context.Background()

	event := func(i int) *domain.NodeEvent {
		typ := domain.EventAttach
		if i%2 == 1 {
			typ = domain.EventDetach
		}
		return &domain.NodeEvent{
			Timestamp: time.Unix(int64(1700000000+i), 0).UTC(),
			Type:      typ,
			NodeID:    fmt.Sprintf("node-%d", i),
			Observed:  true,
			Before:    domain.Lifecycle{Activation: domain.Inactive, Load: domain.Unloaded},
			After:     domain.Lifecycle{Activation: domain.Active, Load: domain.Loaded},
		}
	}

	// 1. A new journal is empty
	t.Run("Empty", func(t *testing.T) {
		events, err := newJournal().List(ctx, 0)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(events) != 0 {
			t.Errorf("len = %d, want 0", len(events))
		}
	})

	// 2. Events come back in append order with their fields intact
	t.Run("AppendOrder", func(t *testing.T) {
		j := newJournal()
		for i := 0; i < 3; i++ {
			if err := j.Append(ctx, event(i)); err != nil {
				t.Fatalf("Append failed: %v", err)
			}
		}

		events, err := j.List(ctx, 0)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(events) != 3 {
			t.Fatalf("len = %d, want 3", len(events))
		}
		for i, e := range events {
			want := event(i)
			if e.NodeID != want.NodeID || e.Type != want.Type {
				t.Errorf("event %d = %s/%s, want %s/%s", i, e.NodeID, e.Type, want.NodeID, want.Type)
			}
			if !e.Timestamp.Equal(want.Timestamp) {
				t.Errorf("event %d timestamp = %v, want %v", i, e.Timestamp, want.Timestamp)
			}
			if e.After != want.After || e.Before != want.Before || !e.Observed {
				t.Errorf("event %d lifecycle = %v -> %v, want %v -> %v", i, e.Before, e.After, want.Before, want.After)
			}
		}
	})

	// 3. A positive limit returns the oldest events first
	t.Run("Limit", func(t *testing.T) {
		j := newJournal()
		for i := 0; i < 5; i++ {
			if err := j.Append(ctx, event(i)); err != nil {
				t.Fatalf("Append failed: %v", err)
			}
		}

		events, err := j.List(ctx, 2)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(events) != 2 {
			t.Fatalf("len = %d, want 2", len(events))
		}
		if events[0].NodeID != "node-0" || events[1].NodeID != "node-1" {
			t.Errorf("got %s, %s; want node-0, node-1", events[0].NodeID, events[1].NodeID)
		}
	})
}
