package service

import (
	"context"
	"fmt"

	"kanban_board/internal/domain"
	"kanban_board/internal/logger"
)

// WriteSink applies a staged batch all-or-nothing.
type WriteSink interface {
	Commit(ctx context.Context, b *domain.Batch) error
}

// State is the cached board replica the services compute from.
type State interface {
	Columns() []domain.Column
	Tasks() []domain.Task
	// ApplyTentative updates the cache ahead of the commit.
	ApplyTentative(b *domain.Batch)
	// Resync requests fresh authoritative snapshots.
	Resync()
}

// commit applies b tentatively, then commits it. On failure the cache is
// resynced from the store; nothing is retried.
func commit(ctx context.Context, sink WriteSink, state State, op string, b *domain.Batch) error {
	state.ApplyTentative(b)

	if err := sink.Commit(ctx, b); err != nil {
		batchCommits.WithLabelValues(op, "error").Inc()
		state.Resync()
		logger.Error("batch commit failed", "operation", op, "mutations", b.Len(), "error", err)
		return fmt.Errorf("%s: %w: %w", op, ErrCommitFailed, err)
	}

	batchCommits.WithLabelValues(op, "ok").Inc()
	batchSize.Observe(float64(b.Len()))
	return nil
}
