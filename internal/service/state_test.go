package service

import (
	"context"
	"testing"
	"time"

	"kanban_board/internal/domain"
	"kanban_board/internal/memstore"
)

// storeState reads straight from the memory store, so every read observes
// the last committed batch.
type storeState struct {
	store     *memstore.Store
	tentative int
	resyncs   int
}

func (s *storeState) Columns() []domain.Column {
	cols, _ := s.store.ListColumns(context.Background())
	return cols
}

func (s *storeState) Tasks() []domain.Task {
	tasks, _ := s.store.ListTasks(context.Background())
	return tasks
}

func (s *storeState) ApplyTentative(*domain.Batch) { s.tentative++ }
func (s *storeState) Resync()                      { s.resyncs++ }

func newBoard(t *testing.T, titles ...string) (*memstore.Store, *storeState) {
	t.Helper()
	store := memstore.New()
	b := domain.NewBatch()
	for i, title := range titles {
		b.CreateColumn(domain.Column{ID: title, Title: title, Order: i, CreatedAt: time.Unix(int64(i), 0)})
	}
	if err := store.Commit(context.Background(), b); err != nil {
		t.Fatalf("seed columns: %v", err)
	}
	return store, &storeState{store: store}
}

func addTask(t *testing.T, store *memstore.Store, id, columnID string, status domain.Status) {
	t.Helper()
	b := domain.NewBatch()
	b.CreateTask(domain.Task{
		ID:        id,
		Title:     id,
		Priority:  domain.PriorityMedium,
		Status:    status,
		ColumnID:  columnID,
		CreatedAt: time.Unix(100+int64(store.Commits()), 0),
	})
	if err := store.Commit(context.Background(), b); err != nil {
		t.Fatalf("seed task %s: %v", id, err)
	}
}

func columnIDs(cols []domain.Column) []string {
	ids := make([]string, len(cols))
	for i, c := range cols {
		ids[i] = c.ID
	}
	return ids
}

func assertDense(t *testing.T, cols []domain.Column) {
	t.Helper()
	for i, c := range cols {
		if c.Order != i {
			t.Fatalf("orders not dense: %s has order %d at index %d", c.ID, c.Order, i)
		}
	}
}
