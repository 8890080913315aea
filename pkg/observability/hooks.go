package observability

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/graft/pkg/domain"
	"github.com/aretw0/graft/pkg/ports"
)

// LoggingHooks logs every attach and detach at info level.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	log := func(e *domain.NodeEvent) {
		attrs := []any{"node_id", e.NodeID}
		if e.Observed {
			attrs = append(attrs, "before", e.Before.Phase(), "after", e.After.Phase())
		}
		logger.Info("node_"+string(e.Type), attrs...)
	}
	return domain.LifecycleHooks{
		OnAttach: log,
		OnDetach: log,
	}
}

// JournalHooks appends every event to j, bounding each append by timeout.
// Bridge operations cannot fail, so append errors are only logged.
func JournalHooks(j ports.EventJournal, logger *slog.Logger, timeout time.Duration) domain.LifecycleHooks {
	record := func(e *domain.NodeEvent) {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := j.Append(ctx, e); err != nil {
			logger.Error("journal append failed", "node_id", e.NodeID, "type", e.Type, "error", err)
		}
	}
	return domain.LifecycleHooks{
		OnAttach: record,
		OnDetach: record,
	}
}

// ComposeHooks calls each set of hooks in argument order.
func ComposeHooks(hooks ...domain.LifecycleHooks) domain.LifecycleHooks {
	var onAttach, onDetach []func(*domain.NodeEvent)
	for _, h := range hooks {
		if h.OnAttach != nil {
			onAttach = append(onAttach, h.OnAttach)
		}
		if h.OnDetach != nil {
			onDetach = append(onDetach, h.OnDetach)
		}
	}
	return domain.LifecycleHooks{
		OnAttach: fanOut(onAttach),
		OnDetach: fanOut(onDetach),
	}
}

func fanOut(fns []func(*domain.NodeEvent)) func(*domain.NodeEvent) {
	if len(fns) == 0 {
		return nil
	}
	return func(e *domain.NodeEvent) {
		for _, fn := range fns {
			fn(e)
		}
	}
}
