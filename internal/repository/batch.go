package repository

import (
	"context"
	"fmt"

	"kanban_board/internal/domain"
	"kanban_board/internal/logger"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Notifier receives the collections touched by each committed batch.
type Notifier interface {
	Notify(ctx context.Context, collections ...string)
}

// BoardStore is the PostgreSQL board: a batch writer over the column and
// task tables plus the list queries the live view loads snapshots with.
type BoardStore struct {
	db       *pgxpool.Pool
	columns  *ColumnRepository
	tasks    *TaskRepository
	notifier Notifier
}

func NewBoardStore(db *pgxpool.Pool) *BoardStore {
	return &BoardStore{
		db:      db,
		columns: NewColumnRepository(db),
		tasks:   NewTaskRepository(db),
	}
}

func (s *BoardStore) SetNotifier(n Notifier) {
	s.notifier = n
}

func (s *BoardStore) ListColumns(ctx context.Context) ([]domain.Column, error) {
	return s.columns.List(ctx)
}

func (s *BoardStore) ListTasks(ctx context.Context) ([]domain.Task, error) {
	return s.tasks.List(ctx)
}

func (s *BoardStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Commit runs every mutation of b in one transaction.
func (s *BoardStore) Commit(ctx context.Context, b *domain.Batch) error {
	if b.Empty() {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for i, m := range b.Ops() {
		if err := s.apply(ctx, tx, m); err != nil {
			return fmt.Errorf("mutation %d (%s %s/%s): %w", i, m.Op, m.Collection, m.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	logger.Debug("batch committed", "mutations", b.Len())
	if s.notifier != nil {
		s.notifier.Notify(ctx, b.Collections()...)
	}
	return nil
}

func (s *BoardStore) apply(ctx context.Context, tx pgx.Tx, m domain.Mutation) error {
	switch m.Collection {
	case domain.CollectionColumns:
		switch m.Op {
		case domain.OpCreate:
			return s.columns.CreateWithTx(ctx, tx, m.Column)
		case domain.OpUpdate:
			return s.columns.UpdateWithTx(ctx, tx, m.ID, m.Fields)
		case domain.OpDelete:
			return s.columns.DeleteWithTx(ctx, tx, m.ID)
		}
	case domain.CollectionTasks:
		switch m.Op {
		case domain.OpCreate:
			return s.tasks.CreateWithTx(ctx, tx, m.Task)
		case domain.OpUpdate:
			return s.tasks.UpdateWithTx(ctx, tx, m.ID, m.Fields)
		case domain.OpDelete:
			return s.tasks.DeleteWithTx(ctx, tx, m.ID)
		}
	default:
		return fmt.Errorf("%w: %s", domain.ErrUnknownCollection, m.Collection)
	}
	return fmt.Errorf("unknown op %q", m.Op)
}
