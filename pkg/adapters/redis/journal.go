// Package redis records bridge lifecycle events in a Redis stream.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/graft/internal/logging"
	"github.com/aretw0/graft/pkg/domain"
	"github.com/aretw0/graft/pkg/observability"
	backend "github.com/redis/go-redis/v9"
)

const (
	defaultStream  = "graft:events"
	defaultTimeout = 2 * time.Second
	eventField     = "event"
)

// Journal appends NodeEvents to a Redis stream.
type Journal struct {
	client  *backend.Client
	stream  string
	maxLen  int64
	timeout time.Duration
	logger  *slog.Logger
}

type Option func(*Journal)

// WithStream sets the stream key.
func WithStream(stream string) Option {
	return func(j *Journal) {
		j.stream = stream
	}
}

// WithMaxLen trims the stream to at most n entries. Zero keeps everything.
func WithMaxLen(n int64) Option {
	return func(j *Journal) {
		j.maxLen = n
	}
}

// WithTimeout bounds each append made from a hook.
func WithTimeout(d time.Duration) Option {
	return func(j *Journal) {
		j.timeout = d
	}
}

// WithLogger configures a logger for append failures inside hooks.
func WithLogger(logger *slog.Logger) Option {
	return func(j *Journal) {
		j.logger = logger
	}
}

// New creates a journal connected to address.
func New(address, password string, db int, opts ...Option) *Journal {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a journal from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Journal {
	j := &Journal{
		client:  client,
		stream:  defaultStream,
		timeout: defaultTimeout,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Append writes one event to the stream.
func (j *Journal) Append(ctx context.Context, event *domain.NodeEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	args := &backend.XAddArgs{
		Stream: j.stream,
		Values: map[string]any{eventField: data},
	}
	if j.maxLen > 0 {
		args.MaxLen = j.maxLen
	}

	if err := j.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}
	return nil
}

// List returns up to limit events in append order. A limit of zero or less
// returns the whole stream.
func (j *Journal) List(ctx context.Context, limit int64) ([]domain.NodeEvent, error) {
	var (
		msgs []backend.XMessage
		err  error
	)
	if limit > 0 {
		msgs, err = j.client.XRangeN(ctx, j.stream, "-", "+", limit).Result()
	} else {
		msgs, err = j.client.XRange(ctx, j.stream, "-", "+").Result()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read events: %w", err)
	}

	events := make([]domain.NodeEvent, 0, len(msgs))
	for _, msg := range msgs {
		raw, ok := msg.Values[eventField].(string)
		if !ok {
			return nil, fmt.Errorf("entry %s has no %q field", msg.ID, eventField)
		}
		var e domain.NodeEvent
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			return nil, fmt.Errorf("failed to unmarshal entry %s: %w", msg.ID, err)
		}
		events = append(events, e)
	}
	return events, nil
}

// Hooks returns LifecycleHooks that append every event. Append errors are
// logged, never propagated.
func (j *Journal) Hooks() domain.LifecycleHooks {
	return observability.JournalHooks(j, j.logger, j.timeout)
}

// Close closes the underlying client.
func (j *Journal) Close() error {
	return j.client.Close()
}
