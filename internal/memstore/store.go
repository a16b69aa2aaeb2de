// Package memstore is an in-process board store. It applies batches
// atomically and is used when no DATABASE_URL is configured and in tests.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"kanban_board/internal/domain"
)

// Notifier receives the collections touched by each committed batch.
type Notifier interface {
	Notify(ctx context.Context, collections ...string)
}

type Store struct {
	mu       sync.RWMutex
	columns  map[string]domain.Column
	tasks    map[string]domain.Task
	notifier Notifier

	// fault injection, see FailAfter
	failAfter int
	failErr   error
	commits   int
}

func New() *Store {
	return &Store{
		columns:   make(map[string]domain.Column),
		tasks:     make(map[string]domain.Task),
		failAfter: -1,
	}
}

func (s *Store) SetNotifier(n Notifier) {
	s.mu.Lock()
	s.notifier = n
	s.mu.Unlock()
}

// FailAfter makes the next commit fail with err once n mutations of the
// batch have been applied. The partial work is discarded.
func (s *Store) FailAfter(n int, err error) {
	s.mu.Lock()
	s.failAfter = n
	s.failErr = err
	s.mu.Unlock()
}

// Commits returns the number of successfully committed batches.
func (s *Store) Commits() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.commits
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Commit applies every mutation of b or none of them.
func (s *Store) Commit(ctx context.Context, b *domain.Batch) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	columns := make(map[string]domain.Column, len(s.columns))
	for id, c := range s.columns {
		columns[id] = c
	}
	tasks := make(map[string]domain.Task, len(s.tasks))
	for id, t := range s.tasks {
		tasks[id] = t
	}

	failAfter, failErr := s.failAfter, s.failErr
	s.failAfter, s.failErr = -1, nil

	for i, m := range b.Ops() {
		if failAfter >= 0 && i == failAfter {
			s.mu.Unlock()
			return failErr
		}
		if err := apply(columns, tasks, m); err != nil {
			s.mu.Unlock()
			return err
		}
	}
	if failAfter >= 0 && failAfter >= b.Len() {
		s.mu.Unlock()
		return failErr
	}

	for _, t := range tasks {
		if _, ok := columns[t.ColumnID]; !ok {
			s.mu.Unlock()
			return fmt.Errorf("%w: task %s -> column %s", domain.ErrDanglingColumnRef, t.ID, t.ColumnID)
		}
	}

	s.columns, s.tasks = columns, tasks
	s.commits++
	n := s.notifier
	s.mu.Unlock()

	if n != nil {
		n.Notify(ctx, b.Collections()...)
	}
	return nil
}

func apply(columns map[string]domain.Column, tasks map[string]domain.Task, m domain.Mutation) error {
	switch m.Collection {
	case domain.CollectionColumns:
		switch m.Op {
		case domain.OpCreate:
			if _, ok := columns[m.ID]; ok {
				return fmt.Errorf("%w: columns/%s", domain.ErrDocumentExists, m.ID)
			}
			columns[m.ID] = *m.Column
		case domain.OpUpdate:
			c, ok := columns[m.ID]
			if !ok {
				return fmt.Errorf("%w: columns/%s", domain.ErrDocumentNotFound, m.ID)
			}
			if err := c.Apply(m.Fields); err != nil {
				return err
			}
			columns[m.ID] = c
		case domain.OpDelete:
			delete(columns, m.ID)
		}
	case domain.CollectionTasks:
		switch m.Op {
		case domain.OpCreate:
			if _, ok := tasks[m.ID]; ok {
				return fmt.Errorf("%w: tasks/%s", domain.ErrDocumentExists, m.ID)
			}
			tasks[m.ID] = m.Task.Clone()
		case domain.OpUpdate:
			t, ok := tasks[m.ID]
			if !ok {
				return fmt.Errorf("%w: tasks/%s", domain.ErrDocumentNotFound, m.ID)
			}
			if err := t.Apply(m.Fields); err != nil {
				return err
			}
			tasks[m.ID] = t
		case domain.OpDelete:
			delete(tasks, m.ID)
		}
	default:
		return fmt.Errorf("%w: %s", domain.ErrUnknownCollection, m.Collection)
	}
	return nil
}

// ListColumns returns columns ascending by order.
func (s *Store) ListColumns(ctx context.Context) ([]domain.Column, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	res := make([]domain.Column, 0, len(s.columns))
	for _, c := range s.columns {
		res = append(res, c)
	}
	s.mu.RUnlock()

	sort.Slice(res, func(i, j int) bool {
		if res[i].Order != res[j].Order {
			return res[i].Order < res[j].Order
		}
		return res[i].ID < res[j].ID
	})
	return res, nil
}

// ListTasks returns tasks in creation order.
func (s *Store) ListTasks(ctx context.Context) ([]domain.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	res := make([]domain.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		res = append(res, t.Clone())
	}
	s.mu.RUnlock()

	sort.Slice(res, func(i, j int) bool {
		if !res[i].CreatedAt.Equal(res[j].CreatedAt) {
			return res[i].CreatedAt.Before(res[j].CreatedAt)
		}
		return res[i].ID < res[j].ID
	})
	return res, nil
}
